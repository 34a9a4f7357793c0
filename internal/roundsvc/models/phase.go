package models

// Phase is the lifecycle stage of a round. Phases only ever move forward:
// countdown -> answering -> reading -> voting -> results.
type Phase string

const (
	PhaseCountdown Phase = "countdown"
	PhaseAnswering Phase = "answering"
	PhaseReading   Phase = "reading"
	PhaseVoting    Phase = "voting"
	PhaseResults   Phase = "results"
)

var phaseOrder = map[Phase]int{
	PhaseCountdown: 0,
	PhaseAnswering: 1,
	PhaseReading:   2,
	PhaseVoting:    3,
	PhaseResults:   4,
}

func (p Phase) String() string {
	return string(p)
}

func (p Phase) Valid() bool {
	_, ok := phaseOrder[p]
	return ok
}

// Order gives the position of the phase in the round lifecycle, -1 for an
// unknown phase. Observed phase values must be non-decreasing in this order.
func (p Phase) Order() int {
	o, ok := phaseOrder[p]
	if !ok {
		return -1
	}
	return o
}

// Next returns the following phase, or false from results (advancing past
// results means activating the next round, not a phase write).
func (p Phase) Next() (Phase, bool) {
	switch p {
	case PhaseCountdown:
		return PhaseAnswering, true
	case PhaseAnswering:
		return PhaseReading, true
	case PhaseReading:
		return PhaseVoting, true
	case PhaseVoting:
		return PhaseResults, true
	default:
		return "", false
	}
}

// CanAdvanceTo reports whether target is the immediate successor of p.
// Skipping phases is never allowed.
func (p Phase) CanAdvanceTo(target Phase) bool {
	next, ok := p.Next()
	return ok && next == target
}
