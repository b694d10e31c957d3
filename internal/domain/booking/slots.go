package booking

import "iter"

// slotLattice yields the candidate slot starts for the given windows: every
// step of slotMinutes from a window's start whose full slot still fits
// before the window's end. Windows are walked in input order; overlapping
// windows are the caller's problem. The sequence is lazy and restartable.
func slotLattice(windows []WorkingWindow, slotMinutes int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, w := range windows {
			for t := w.StartMin; t+slotMinutes <= w.EndMin; t += slotMinutes {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// availableSlots filters the lattice against the given occupied bookings,
// dropping every slot that overlaps one under half-open semantics.
func availableSlots(windows []WorkingWindow, slotMinutes int, occupied []*Booking) iter.Seq[int] {
	return func(yield func(int) bool) {
		for t := range slotLattice(windows, slotMinutes) {
			if slotFree(t, t+slotMinutes, occupied) {
				if !yield(t) {
					return
				}
			}
		}
	}
}

func slotFree(startMin, endMin int, occupied []*Booking) bool {
	for _, b := range occupied {
		if overlaps(startMin, endMin, b.StartMin, b.EndMin) {
			return false
		}
	}
	return true
}

// overlaps tests two half-open intervals [a,b) and [c,d). Touching
// intervals (b == c) do not overlap.
func overlaps(a, b, c, d int) bool {
	return a < d && c < b
}
