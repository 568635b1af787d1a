package booking

import (
	"fmt"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
)

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// transitions is the full adjacency table. COMPLETED is terminal for the
// status column; the verification sub-workflow lives in its own fields.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusRefunded:  {},
}

// CanTransition rejects any pair outside the adjacency table, naming the
// offending source/target pair.
func CanTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return httperr.ErrBusinessMsg(
		"invalid_transition",
		fmt.Sprintf("cannot transition booking from %s to %s", from, to),
	)
}

func InitialStatus() Status {
	return StatusPending
}

func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}
