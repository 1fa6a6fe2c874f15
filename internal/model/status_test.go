package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, in := range []string{"PENDING", "pending", " Pending "} {
		st, ok := ParseStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, StatusPending, st)
	}
	for _, in := range []string{"", "ACTIVE", "DONE", "cancelled now"} {
		_, ok := ParseStatus(in)
		assert.False(t, ok, in)
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusApproved.IsActive())
	assert.False(t, StatusRejected.IsActive())
	assert.False(t, StatusCancelled.IsActive())

	// Cancel and reschedule are allowed from the same non-terminal states.
	for _, st := range []Status{StatusPending, StatusApproved} {
		assert.True(t, st.CanCancel(), st)
		assert.True(t, st.CanReschedule(), st)
	}
	for _, st := range []Status{StatusRejected, StatusCancelled} {
		assert.False(t, st.CanCancel(), st)
		assert.False(t, st.CanReschedule(), st)
	}
}
