package session

import "sync"

// Tracker holds the live round session per game. When a round advances the
// old session is dropped so late events for it have nothing left to mutate.
type Tracker struct {
	mu     sync.Mutex
	rounds map[int64]*Round // keyed by game id
}

func NewTracker() *Tracker {
	return &Tracker{rounds: make(map[int64]*Round)}
}

// Get returns the tracked session for the game, only if it matches the
// given round id. A session from a previous round is treated as absent.
func (t *Tracker) Get(gameID, roundID int64) (*Round, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.rounds[gameID]
	if !ok || r.roundID != roundID {
		return nil, false
	}
	return r, true
}

func (t *Tracker) Put(gameID int64, r *Round) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rounds[gameID] = r
}

// Drop discards the game's session if it still belongs to the given round.
func (t *Tracker) Drop(gameID, roundID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.rounds[gameID]; ok && r.roundID == roundID {
		delete(t.rounds, gameID)
	}
}

// DropGame discards whatever session the game holds, e.g. when the sweeper
// reports the round advanced. The next request rebuilds it lazily.
func (t *Tracker) DropGame(gameID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rounds, gameID)
}
