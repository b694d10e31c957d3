package booking

import (
	"slices"
	"testing"
)

func collect(seq func(yield func(int) bool)) []int {
	var out []int
	seq(func(t int) bool {
		out = append(out, t)
		return true
	})
	return out
}

func TestSlotLatticeSingleWindow(t *testing.T) {
	// 08:00-12:00 at 30 minutes gives eight starts.
	got := collect(slotLattice([]WorkingWindow{{StartMin: 480, EndMin: 720}}, 30))
	want := []int{480, 510, 540, 570, 600, 630, 660, 690}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSlotLatticePartialSlotDropped(t *testing.T) {
	// 08:00-08:50: only the 08:00 slot fits, the 20-minute remainder does not.
	got := collect(slotLattice([]WorkingWindow{{StartMin: 480, EndMin: 530}}, 30))
	if !slices.Equal(got, []int{480}) {
		t.Fatalf("got %v, want [480]", got)
	}
}

func TestSlotLatticeMultipleWindows(t *testing.T) {
	windows := []WorkingWindow{
		{StartMin: 480, EndMin: 540},
		{StartMin: 840, EndMin: 900},
	}
	got := collect(slotLattice(windows, 30))
	want := []int{480, 510, 840, 870}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSlotLatticeEarlyStop(t *testing.T) {
	var got []int
	for v := range slotLattice([]WorkingWindow{{StartMin: 480, EndMin: 720}}, 30) {
		got = append(got, v)
		if len(got) == 3 {
			break
		}
	}
	if !slices.Equal(got, []int{480, 510, 540}) {
		t.Fatalf("got %v", got)
	}
}

func TestAvailableSlotsFiltersOccupied(t *testing.T) {
	windows := []WorkingWindow{{StartMin: 480, EndMin: 720}}
	occupied := []*Booking{{StartMin: 540, EndMin: 570, Status: StatusBooked}}

	got := collect(availableSlots(windows, 30, occupied))

	// 09:00 is gone; the adjacent 08:30 and 09:30 slots survive because
	// touching intervals do not overlap.
	want := []int{480, 510, 570, 600, 630, 660, 690}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAvailableSlotsOffGridBooking(t *testing.T) {
	windows := []WorkingWindow{{StartMin: 480, EndMin: 660}}
	// A 08:15-08:45 booking knocks out both the 08:00 and 08:30 slots.
	occupied := []*Booking{{StartMin: 495, EndMin: 525}}

	got := collect(availableSlots(windows, 30, occupied))
	want := []int{540, 570, 600, 630}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		a, b, c, d int
		want       bool
	}{
		{480, 510, 480, 510, true},
		{480, 510, 495, 525, true},
		{480, 510, 510, 540, false},
		{510, 540, 480, 510, false},
		{480, 600, 510, 540, true},
		{480, 510, 540, 570, false},
	}
	for _, c := range cases {
		if got := overlaps(c.a, c.b, c.c, c.d); got != c.want {
			t.Errorf("overlaps(%d,%d,%d,%d) = %v, want %v", c.a, c.b, c.c, c.d, got, c.want)
		}
	}
}
