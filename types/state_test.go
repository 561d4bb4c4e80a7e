package types

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateInit, "Init"},
		{StateResolving, "Resolving"},
		{StateConstructing, "Constructing"},
		{StateReady, "Ready"},
		{StateFailed, "Failed"},
		{State(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateCanTransitionTo(t *testing.T) {
	tests := []struct {
		from State
		to   State
		want bool
	}{
		{StateInit, StateResolving, true},
		{StateInit, StateConstructing, false},
		{StateResolving, StateConstructing, true},
		{StateResolving, StateFailed, true},
		{StateResolving, StateReady, false},
		{StateConstructing, StateReady, true},
		{StateConstructing, StateFailed, true},
		{StateConstructing, StateResolving, false},
		{StateReady, StateResolving, false},
		{StateFailed, StateResolving, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
