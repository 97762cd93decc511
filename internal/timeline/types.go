package timeline

import (
	"github.com/kikiluvv/reelforge/internal/transition"
)

// MediaKind distinguishes still images from video sources. It never changes
// after an asset is created.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaAsset is an ingested visual source. Assets are owned by the library
// (the Store); clips reference them by ID and never own them.
type MediaAsset struct {
	ID   string
	Kind MediaKind
	Name string
	Path string

	// Duration is the intrinsic duration in seconds. Required for video,
	// advisory for images.
	Duration float64
}

// Clip is one placement of a media asset on the timeline.
type Clip struct {
	ID      string
	MediaID string

	// Start is derived, never authoritative: Normalize recomputes it from
	// the ordered durations after every structural mutation.
	Start float64

	// Duration in seconds, always > 0. For video clips it equals the
	// asset's intrinsic duration and is immutable; for image clips it is
	// user-adjustable within [MinImageClipSeconds, MaxImageClipSeconds].
	Duration float64

	Transition transition.Kind
}

// End returns the exclusive end of the clip's interval.
func (c Clip) End() float64 { return c.Start + c.Duration }

// Timeline is the ordered sequence of clips; order is playback order.
type Timeline struct {
	Clips []Clip
}

// Empty reports whether the timeline has no clips.
func (t Timeline) Empty() bool { return len(t.Clips) == 0 }

// AudioTrack is the single active generated-audio asset. The core consumes
// it read-only: its duration drives the master clock and the drift advisory.
type AudioTrack struct {
	Path     string
	Voice    string
	Duration float64
}

// Composition pairs a normalized timeline with the active audio track at
// render time. It is recomputed whenever either input changes, never stored.
type Composition struct {
	Timeline Timeline
	Audio    AudioTrack
}
