package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
)

func TestCanTransition_AllowedMoves(t *testing.T) {
	allowed := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
	}

	for _, tc := range allowed {
		assert.NoError(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}
}

func TestCanTransition_BlockedMoves(t *testing.T) {
	blocked := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusRefunded},
		{StatusConfirmed, StatusPending},
		{StatusCompleted, StatusPending},
		{StatusCompleted, StatusConfirmed},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{StatusRefunded, StatusPending},
		{StatusRefunded, StatusConfirmed},
	}

	for _, tc := range blocked {
		err := CanTransition(tc.from, tc.to)
		assert.Error(t, err, "%s -> %s should be blocked", tc.from, tc.to)
		assert.True(t, httperr.IsBusiness(err, "invalid_transition"))
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	err := CanTransition(Status("archived"), StatusConfirmed)
	assert.Error(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusConfirmed))
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusRefunded))
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusPending, InitialStatus())
}
