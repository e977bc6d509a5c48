package schedule

// Interval is a half-open [Start, End) booking interval in "HH:mm".
type Interval struct {
	Start string
	End   string
}

// Overlaps reports whether two half-open HH:mm intervals intersect.
func Overlaps(a, b Interval) (bool, error) {
	aStart, err := ParseClock(a.Start)
	if err != nil {
		return false, err
	}
	aEnd, err := ParseClock(a.End)
	if err != nil {
		return false, err
	}
	bStart, err := ParseClock(b.Start)
	if err != nil {
		return false, err
	}
	bEnd, err := ParseClock(b.End)
	if err != nil {
		return false, err
	}
	return aStart < bEnd && bStart < aEnd, nil
}

// FindConflict scans existing intervals and returns the index of the
// first one intersecting the candidate, or -1. Slot marking itself stays
// exact-start-match; this is the stricter check used by the booking
// guard on the create path.
func FindConflict(candidate Interval, existing []Interval) (int, error) {
	for i, e := range existing {
		hit, err := Overlaps(candidate, e)
		if err != nil {
			return -1, err
		}
		if hit {
			return i, nil
		}
	}
	return -1, nil
}
