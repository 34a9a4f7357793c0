package store

import (
	"context"
	"fmt"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PromptStore reads the prompt bank collection. Documents are immutable
// reference data seeded by the content pipeline; this store never writes.
type PromptStore struct {
	coll *mongo.Collection
}

func NewPromptStore(db *mongo.Database) *PromptStore {
	return &PromptStore{coll: db.Collection("prompts")}
}

func (s *PromptStore) GetPromptByID(ctx context.Context, hexID string) (*models.Prompt, error) {
	oid, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, fmt.Errorf("invalid prompt id %q: %w", hexID, err)
	}

	p := &models.Prompt{}
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // prompt not found
		}
		return nil, fmt.Errorf("failed to get prompt %s: %w", hexID, err)
	}

	return p, nil
}
