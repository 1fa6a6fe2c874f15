package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(h, m int) time.Time {
	return time.Date(2030, time.March, 10, h, m, 0, 0, time.UTC)
}

func TestIntervalIsValid(t *testing.T) {
	assert.True(t, NewInterval(at(9, 0), at(10, 0)).IsValid())
	assert.False(t, NewInterval(at(9, 0), at(9, 0)).IsValid(), "zero length is invalid")
	assert.False(t, NewInterval(at(10, 0), at(9, 0)).IsValid(), "inverted range is invalid")
}

func TestIntervalOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", NewInterval(at(9, 0), at(10, 0)), NewInterval(at(11, 0), at(12, 0)), false},
		{"partial", NewInterval(at(9, 0), at(10, 30)), NewInterval(at(10, 0), at(11, 0)), true},
		{"contained", NewInterval(at(9, 0), at(12, 0)), NewInterval(at(10, 0), at(11, 0)), true},
		{"identical", NewInterval(at(9, 0), at(10, 0)), NewInterval(at(9, 0), at(10, 0)), true},
		{"touching boundary", NewInterval(at(9, 0), at(10, 0)), NewInterval(at(10, 0), at(11, 0)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			// Overlap is symmetric regardless of argument order.
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a))
		})
	}
}

func TestNewIntervalNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	iv := NewInterval(
		time.Date(2030, time.March, 10, 11, 0, 0, 0, loc),
		time.Date(2030, time.March, 10, 12, 0, 0, 0, loc),
	)
	assert.Equal(t, time.UTC, iv.Start.Location())
	assert.Equal(t, at(9, 0), iv.Start)
	assert.Equal(t, time.Hour, iv.Duration())
}
