package session

import "testing"

func TestTrackerRoundIdentity(t *testing.T) {
	tr := NewTracker()
	round, players := testRound()
	sess := NewRound(round, players)

	tr.Put(5, sess)

	if _, ok := tr.Get(5, 1); !ok {
		t.Fatal("tracked session not found")
	}
	// a lookup for the next round must not see the old session
	if _, ok := tr.Get(5, 2); ok {
		t.Fatal("session from a previous round was returned")
	}
}

func TestTrackerDrop(t *testing.T) {
	tr := NewTracker()
	round, players := testRound()
	tr.Put(5, NewRound(round, players))

	// drop for a different round id leaves the session alone
	tr.Drop(5, 2)
	if _, ok := tr.Get(5, 1); !ok {
		t.Fatal("drop for another round removed the session")
	}

	tr.Drop(5, 1)
	if _, ok := tr.Get(5, 1); ok {
		t.Fatal("session survived its drop")
	}
}

func TestTrackerDropGame(t *testing.T) {
	tr := NewTracker()
	round, players := testRound()
	tr.Put(5, NewRound(round, players))

	tr.DropGame(5)
	if _, ok := tr.Get(5, 1); ok {
		t.Fatal("session survived DropGame")
	}
}
