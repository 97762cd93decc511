package timeline

import "math"

// DriftToleranceSeconds is how far the declared clip durations may drift
// from the audio duration before the mismatch advisory fires.
const DriftToleranceSeconds = 0.8

// Normalize returns a new clip sequence in which every Start satisfies the
// timeline invariant: clip[0] starts at 0 and each following clip starts
// where the previous one ends. Pure and idempotent; input order is preserved
// and the input slice is never mutated.
func Normalize(clips []Clip) []Clip {
	out := make([]Clip, len(clips))
	offset := 0.0
	for i, c := range clips {
		c.Start = offset
		offset += c.Duration
		out[i] = c
	}
	return out
}

// Total returns the timeline duration, the sum of all clip durations.
func (t Timeline) Total() float64 {
	total := 0.0
	for _, c := range t.Clips {
		total += c.Duration
	}
	return total
}

// ClipAt locates the clip whose interval [Start, Start+Duration) contains
// the timestamp. Exact boundary points resolve to the following clip. A
// timestamp at or past the end clamps to the last clip; negative or NaN
// timestamps are treated as 0. The second result is the clip index, the
// third is false only for an empty timeline.
//
// ClipAt assumes a freshly normalized sequence.
func (t Timeline) ClipAt(ts float64) (Clip, int, bool) {
	if t.Empty() {
		return Clip{}, 0, false
	}
	if math.IsNaN(ts) || ts < 0 {
		ts = 0
	}
	for i, c := range t.Clips {
		if ts >= c.Start && ts < c.End() {
			return c, i, true
		}
	}
	last := len(t.Clips) - 1
	return t.Clips[last], last, true
}

// Drift returns the signed difference between the audio duration and the
// timeline total, and whether it exceeds the advisory tolerance. The
// advisory is informational only; it never blocks preview or export.
func (t Timeline) Drift(audioDuration float64) (float64, bool) {
	drift := audioDuration - t.Total()
	return drift, math.Abs(drift) > DriftToleranceSeconds
}
