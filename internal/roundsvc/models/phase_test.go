package models

import "testing"

func TestPhaseOrderMonotone(t *testing.T) {
	phases := []Phase{PhaseCountdown, PhaseAnswering, PhaseReading, PhaseVoting, PhaseResults}
	for i := 1; i < len(phases); i++ {
		if phases[i].Order() <= phases[i-1].Order() {
			t.Fatalf("%s should order after %s", phases[i], phases[i-1])
		}
	}
	if Phase("lobby").Order() != -1 {
		t.Fatal("unknown phase must order as -1")
	}
}

func TestPhaseNext(t *testing.T) {
	tests := []struct {
		from Phase
		want Phase
		ok   bool
	}{
		{PhaseCountdown, PhaseAnswering, true},
		{PhaseAnswering, PhaseReading, true},
		{PhaseReading, PhaseVoting, true},
		{PhaseVoting, PhaseResults, true},
		{PhaseResults, "", false},
	}

	for _, tc := range tests {
		got, ok := tc.from.Next()
		if got != tc.want || ok != tc.ok {
			t.Errorf("%s.Next() = %s,%v want %s,%v", tc.from, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPhaseCanAdvanceTo(t *testing.T) {
	if !PhaseAnswering.CanAdvanceTo(PhaseReading) {
		t.Fatal("answering -> reading must be allowed")
	}
	if PhaseAnswering.CanAdvanceTo(PhaseVoting) {
		t.Fatal("phase skipping must be rejected")
	}
	if PhaseVoting.CanAdvanceTo(PhaseReading) {
		t.Fatal("backward transition must be rejected")
	}
	if PhaseResults.CanAdvanceTo(PhaseCountdown) {
		t.Fatal("results never advances by phase write")
	}
}

func TestPhaseValid(t *testing.T) {
	for _, p := range []Phase{PhaseCountdown, PhaseAnswering, PhaseReading, PhaseVoting, PhaseResults} {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if Phase("").Valid() || Phase("done").Valid() {
		t.Error("unknown phases should be invalid")
	}
}
