package timeline

import (
	"math"
	"testing"

	"github.com/kikiluvv/reelforge/internal/transition"
)

func clipsFromDurations(durations ...float64) []Clip {
	clips := make([]Clip, len(durations))
	for i, d := range durations {
		clips[i] = Clip{ID: string(rune('a' + i)), MediaID: "m", Duration: d}
	}
	return clips
}

func TestNormalizeStarts(t *testing.T) {
	cases := [][]float64{
		{4.0},
		{4.0, 3.0},
		{1.5, 2.25, 0.75, 10},
	}
	for _, durations := range cases {
		got := Normalize(clipsFromDurations(durations...))
		offset := 0.0
		for i, c := range got {
			if c.Start != offset {
				t.Errorf("durations %v: clip %d start = %v, want %v", durations, i, c.Start, offset)
			}
			offset += durations[i]
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once := Normalize(clipsFromDurations(2, 3, 4))
	twice := Normalize(once)
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("normalize not idempotent at clip %d: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestNormalizeDiscardsStaleStarts(t *testing.T) {
	clips := clipsFromDurations(2, 3)
	clips[0].Start = 99
	clips[1].Start = -7

	got := Normalize(clips)
	if got[0].Start != 0 || got[1].Start != 2 {
		t.Errorf("stale starts survived: %v, %v", got[0].Start, got[1].Start)
	}
	// The input must be left untouched.
	if clips[0].Start != 99 {
		t.Error("Normalize mutated its input")
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if got := Normalize(nil); len(got) != 0 {
		t.Errorf("normalizing nil produced %d clips", len(got))
	}
}

func TestClipAtCoversEveryInstant(t *testing.T) {
	tl := Timeline{Clips: Normalize(clipsFromDurations(4, 3, 2))}
	total := tl.Total()
	if total != 9 {
		t.Fatalf("total = %v, want 9", total)
	}
	for ts := 0.0; ts < total; ts += 0.05 {
		_, _, ok := tl.ClipAt(ts)
		if !ok {
			t.Fatalf("no clip found at %v", ts)
		}
	}
}

func TestClipAtBoundariesResolveForward(t *testing.T) {
	tl := Timeline{Clips: Normalize(clipsFromDurations(4, 3))}

	_, idx, _ := tl.ClipAt(4.0)
	if idx != 1 {
		t.Errorf("boundary t=4.0 resolved to clip %d, want 1", idx)
	}
	_, idx, _ = tl.ClipAt(0)
	if idx != 0 {
		t.Errorf("t=0 resolved to clip %d, want 0", idx)
	}
}

func TestClipAtClampsToLast(t *testing.T) {
	tl := Timeline{Clips: Normalize(clipsFromDurations(4, 3))}
	clip, idx, ok := tl.ClipAt(100)
	if !ok || idx != 1 || clip.Start != 4 {
		t.Errorf("past-the-end lookup: clip %d (start %v), ok=%v", idx, clip.Start, ok)
	}
	// Exactly at the end also clamps.
	if _, idx, _ := tl.ClipAt(7.0); idx != 1 {
		t.Errorf("t=total resolved to clip %d, want 1", idx)
	}
}

func TestClipAtBadTimestamps(t *testing.T) {
	tl := Timeline{Clips: Normalize(clipsFromDurations(4, 3))}
	if _, idx, _ := tl.ClipAt(-2); idx != 0 {
		t.Errorf("negative timestamp resolved to clip %d, want 0", idx)
	}
	if _, idx, _ := tl.ClipAt(math.NaN()); idx != 0 {
		t.Errorf("NaN timestamp resolved to clip %d, want 0", idx)
	}
}

func TestClipAtEmptyTimeline(t *testing.T) {
	var tl Timeline
	if _, _, ok := tl.ClipAt(0); ok {
		t.Error("empty timeline reported a clip")
	}
}

func TestRenderScenarioTwoClips(t *testing.T) {
	// Two clips: 4.0s image then 3.0s video. Rendering at t=5.0 selects
	// clip 2 with one second of local time elapsed.
	clips := []Clip{
		{ID: "c1", MediaID: "img", Duration: 4.0},
		{ID: "c2", MediaID: "vid", Duration: 3.0, Transition: transition.None},
	}
	tl := Timeline{Clips: Normalize(clips)}

	if tl.Clips[0].Start != 0.0 || tl.Clips[1].Start != 4.0 {
		t.Fatalf("starts = %v, %v; want 0.0, 4.0", tl.Clips[0].Start, tl.Clips[1].Start)
	}

	clip, idx, ok := tl.ClipAt(5.0)
	if !ok || idx != 1 {
		t.Fatalf("t=5.0 resolved to clip %d", idx)
	}
	if local := 5.0 - clip.Start; local != 1.0 {
		t.Errorf("local time = %v, want 1.0", local)
	}
}

func TestDriftAdvisory(t *testing.T) {
	tl := Timeline{Clips: Normalize(clipsFromDurations(4, 3))} // total 7.0

	cases := []struct {
		audio float64
		fires bool
	}{
		{7.0, false},
		{7.8, false},
		{6.2, false},
		{7.81, true},
		{6.19, true},
		{20, true},
	}
	for _, c := range cases {
		if _, fires := tl.Drift(c.audio); fires != c.fires {
			t.Errorf("audio %v: advisory = %v, want %v", c.audio, fires, c.fires)
		}
	}
}
