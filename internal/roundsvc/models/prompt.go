package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Prompt is a content-bank document: the trivia item a round is built
// around. Read-only here; the content pipeline owns the collection.
type Prompt struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Category string             `bson:"category" json:"category"`
	Title    string             `bson:"title" json:"title"` // short display line, e.g. the movie name
	Text     string             `bson:"text" json:"text"`   // the full prompt read by the moderator
	Answer   string             `bson:"answer" json:"answer"` // the single canonical real answer
	Language string             `bson:"language,omitempty" json:"language,omitempty"`
}
