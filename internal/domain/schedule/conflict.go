package schedule

// Conflicts reports whether the candidate appointment collides with an
// existing booking once the existing interval is widened by the buffer on
// both ends. Half-open semantics: a candidate starting exactly where the
// widened interval ends is free, and a gap of exactly the buffer between two
// appointments is allowed.
func Conflicts(candidate, existing Interval, bufferMinutes int) bool {
	return candidate.Overlaps(existing.Expand(bufferMinutes))
}

// IsAvailable checks a candidate against every existing active interval.
// Callers must pass only pending/confirmed bookings; cancelled, no-show and
// completed appointments never block a slot.
func IsAvailable(candidate Interval, existing []Interval, bufferMinutes int) bool {
	for _, iv := range existing {
		if Conflicts(candidate, iv, bufferMinutes) {
			return false
		}
	}
	return true
}

// FilterAvailable keeps the candidate start times whose full appointment
// interval stays clear of every existing booking.
func FilterAvailable(candidates []TimeOfDay, serviceDurationMinutes int, existing []Interval, bufferMinutes int) []TimeOfDay {
	available := make([]TimeOfDay, 0, len(candidates))
	for _, start := range candidates {
		iv, err := NewInterval(start, serviceDurationMinutes)
		if err != nil {
			continue
		}
		if IsAvailable(iv, existing, bufferMinutes) {
			available = append(available, start)
		}
	}
	return available
}
