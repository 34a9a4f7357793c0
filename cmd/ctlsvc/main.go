package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	config "github.com/bsparty/bullshit-services/configs"
	"github.com/bsparty/bullshit-services/internal/comm"
	natscli "github.com/bsparty/bullshit-services/internal/nats"
	"github.com/bsparty/bullshit-services/internal/roundsvc/db"
	"github.com/bsparty/bullshit-services/internal/roundsvc/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const SERVICE_NAME = "ctl"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

type roundInfo struct {
	ID      int64
	GameID  int64
	Number  int
	Phase   string
	GameEnd bool
}

func main() {
	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	// Connect to NATS
	n, err := natscli.Connect(SERVICE_NAME)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(1)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	countdown := config.CountdownSeconds()

	ctx := context.Background()
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		started, err := processCountdownRounds(ctx, dbpool, countdown)
		if err != nil {
			log.Printf("processCountdownRounds error: %v", err)
		} else {
			for _, r := range started {
				PublishRoundAdvanced(n, r)
			}
		}

		expired, err := processExpiredResults(ctx, dbpool)
		if err != nil {
			log.Printf("processExpiredResults error: %v", err)
			continue
		}
		for _, r := range expired {
			if r.GameEnd {
				PublishGameOver(n, r.GameID)
				continue
			}
			PublishRoundAdvanced(n, r)
		}
	}
}

// processCountdownRounds flips countdown rounds whose timer ran out into
// the answering phase. SKIP LOCKED keeps concurrent sweeper instances off
// each other's rows.
func processCountdownRounds(ctx context.Context, pool *pgxpool.Pool, countdownSec int) ([]roundInfo, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
        SELECT id, game_id, number
        FROM rounds
        WHERE phase = 'countdown'
          AND active
          AND phase_since < now() - make_interval(secs => $1)
        FOR UPDATE SKIP LOCKED
    `, countdownSec)
	if err != nil {
		return nil, fmt.Errorf("select countdown rounds: %w", err)
	}
	defer rows.Close()

	var candidates []roundInfo
	for rows.Next() {
		var r roundInfo
		if err := rows.Scan(&r.ID, &r.GameID, &r.Number); err != nil {
			return nil, fmt.Errorf("scan round row: %w", err)
		}
		candidates = append(candidates, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	var started []roundInfo
	for _, r := range candidates {
		if _, err := tx.Exec(ctx, `
            UPDATE rounds
            SET phase = 'answering', phase_since = now(), updated_at = now()
            WHERE id = $1
              AND phase = 'countdown'
              AND active
        `, r.ID); err != nil {
			return nil, fmt.Errorf("advance round %d: %w", r.ID, err)
		}
		r.Phase = "answering"
		started = append(started, r)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return started, nil
}

// processExpiredResults retires results rounds whose display window ended.
// The next round of the game (number+1) is activated into countdown when it
// exists; otherwise the game is marked complete.
func processExpiredResults(ctx context.Context, pool *pgxpool.Pool) ([]roundInfo, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
        SELECT id, game_id, number
        FROM rounds
        WHERE phase = 'results'
          AND active
          AND results_until IS NOT NULL
          AND results_until < now()
        FOR UPDATE SKIP LOCKED
    `)
	if err != nil {
		return nil, fmt.Errorf("select expired results rounds: %w", err)
	}
	defer rows.Close()

	var candidates []roundInfo
	for rows.Next() {
		var r roundInfo
		if err := rows.Scan(&r.ID, &r.GameID, &r.Number); err != nil {
			return nil, fmt.Errorf("scan round row: %w", err)
		}
		candidates = append(candidates, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	var processed []roundInfo
	for _, r := range candidates {
		if _, err := tx.Exec(ctx, `
            UPDATE rounds
            SET active = false, updated_at = now()
            WHERE id = $1
        `, r.ID); err != nil {
			return nil, fmt.Errorf("deactivate round %d: %w", r.ID, err)
		}

		var nextID int64
		err := tx.QueryRow(ctx, `
            UPDATE rounds
            SET active = true, phase = 'countdown', phase_since = now(), updated_at = now()
            WHERE game_id = $1
              AND number = $2
            RETURNING id
        `, r.GameID, r.Number+1).Scan(&nextID)
		if err != nil {
			// no next round: the game is done
			if _, err := tx.Exec(ctx, `
                UPDATE games
                SET status = 'complete', updated_at = now()
                WHERE id = $1
            `, r.GameID); err != nil {
				return nil, fmt.Errorf("complete game %d: %w", r.GameID, err)
			}
			processed = append(processed, roundInfo{GameID: r.GameID, GameEnd: true})
			continue
		}

		processed = append(processed, roundInfo{
			ID:     nextID,
			GameID: r.GameID,
			Number: r.Number + 1,
			Phase:  "countdown",
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return processed, nil
}

func PublishRoundAdvanced(n *natscli.Nats, r roundInfo) {
	data, err := json.Marshal(comm.RoundAdvanced{
		GameId:  r.GameID,
		RoundId: r.ID,
		Phase:   models.Phase(r.Phase),
	})
	if err != nil {
		log.Errorf("error [PublishRoundAdvanced] marshaling round %d: %v", r.ID, err)
		return
	}

	msg := &comm.WSMessage{
		Type:   "round-advanced",
		Data:   data,
		GameId: r.GameID,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("error [PublishRoundAdvanced] marshaling WSMessage: %v", err)
		return
	}

	if err := n.Conn.Publish(comm.SubjectGateway, payload); err != nil {
		log.Errorf("error publishing round-advanced for round %d: %v", r.ID, err)
	}
}

func PublishGameOver(n *natscli.Nats, gameID int64) {
	data, err := json.Marshal(comm.GameOver{GameId: gameID})
	if err != nil {
		log.Errorf("error [PublishGameOver] marshaling game %d: %v", gameID, err)
		return
	}

	msg := &comm.WSMessage{
		Type:   "game-over",
		Data:   data,
		GameId: gameID,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("error [PublishGameOver] marshaling WSMessage: %v", err)
		return
	}

	if err := n.Conn.Publish(comm.SubjectGateway, payload); err != nil {
		log.Errorf("error publishing game-over for game %d: %v", gameID, err)
	}
}
