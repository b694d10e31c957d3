package booking

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusWaiting, StatusBooked, true},
		{StatusWaiting, StatusFailed, true},
		{StatusWaiting, StatusCancelled, true},
		{StatusWaiting, StatusConfirmed, false},
		{StatusBooked, StatusConfirmed, true},
		{StatusBooked, StatusCancelled, true},
		{StatusBooked, StatusFailed, true},
		{StatusBooked, StatusWaiting, false},
		{StatusConfirmed, StatusCancelled, false},
		{StatusConfirmed, StatusBooked, false},
		{StatusFailed, StatusBooked, false},
		{StatusCancelled, StatusWaiting, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusConfirmed, StatusFailed, StatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusWaiting, StatusBooked} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestMinuteOfDay(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		480:  "08:00",
		495:  "08:15",
		1020: "17:00",
		1320: "22:00",
	}
	for min, want := range cases {
		if got := MinuteOfDay(min); got != want {
			t.Errorf("MinuteOfDay(%d) = %q, want %q", min, got, want)
		}
	}
}
