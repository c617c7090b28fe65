package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	testCases := []struct {
		state    State
		expected string
	}{
		{Ready, "ready"},
		{Running, "running"},
		{Blocked, "blocked"},
		{Zombie, "zombie"},
		{Terminated, "terminated"},
		{State(42), "invalid"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.state.String())
	}
}

func TestState_Predicates(t *testing.T) {
	testCases := []struct {
		state       State
		schedulable bool
		live        bool
	}{
		{Ready, true, true},
		{Running, true, true},
		{Blocked, false, true},
		{Zombie, false, false},
		{Terminated, false, false},
	}
	for _, tc := range testCases {
		t.Run(tc.state.String(), func(t *testing.T) {
			assert.Equal(t, tc.schedulable, tc.state.Schedulable())
			assert.Equal(t, tc.live, tc.state.Live())
		})
	}
}
