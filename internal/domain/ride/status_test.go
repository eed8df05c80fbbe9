package ride

import "testing"

// TestCanTransitionTo verifies the state machine transition table.
func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusPending, StatusAccepted, true},
		{StatusAccepted, StatusArrived, true},
		{StatusArrived, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		// cancellation window closes once the driver has arrived
		{StatusPending, StatusCancelled, true},
		{StatusAccepted, StatusCancelled, true},
		{StatusArrived, StatusCancelled, false},
		{StatusInProgress, StatusCancelled, false},
		// invalid: terminal states have no outgoing transitions
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusAccepted, false},
		// invalid: skipping states
		{StatusPending, StatusArrived, false},
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusCompleted, false},
		{StatusAccepted, StatusInProgress, false},
		{StatusAccepted, StatusCompleted, false},
		{StatusArrived, StatusCompleted, false},
		// invalid: going backwards
		{StatusAccepted, StatusPending, false},
		{StatusInProgress, StatusArrived, false},
		// self-loops are not transitions
		{StatusPending, StatusPending, false},
		{StatusInProgress, StatusInProgress, false},
	}
	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		if got != tc.want {
			t.Errorf("CanTransitionTo(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"IN_PROGRESS", StatusInProgress, false},
		{" completed ", StatusCompleted, false},
		{"Cancelled", StatusCancelled, false},
		{"driving", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseStatus(%q) expected error, got %s", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStatus(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseStatus(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	all := []Status{StatusPending, StatusAccepted, StatusArrived, StatusInProgress, StatusCompleted, StatusCancelled}

	for _, s := range all {
		if s.Terminal() != (s == StatusCompleted || s == StatusCancelled) {
			t.Errorf("Terminal(%s) wrong", s)
		}
		if s.Active() == s.Terminal() {
			t.Errorf("Active(%s) and Terminal(%s) must partition the statuses", s, s)
		}
		if s.Cancellable() != (s == StatusPending || s == StatusAccepted) {
			t.Errorf("Cancellable(%s) wrong", s)
		}
	}

	if Status("driving").Valid() {
		t.Error("unknown status must not be valid")
	}
}
