package transition

import (
	"fmt"
	"math"
)

// Window is the fixed length, in seconds, of the effect applied at the
// start of a clip. After Window elapses the clip renders plain.
const Window = 0.6

// Kind identifies a clip-start transition.
type Kind string

const (
	None       Kind = "none"
	Crossfade  Kind = "crossfade"
	FadeIn     Kind = "fade-in"
	CineSweep  Kind = "cine-sweep"
	WhiteFlash Kind = "white-flash"
)

// Kinds lists every supported transition kind.
var Kinds = []Kind{None, Crossfade, FadeIn, CineSweep, WhiteFlash}

// Parse validates a transition name. The empty string means None.
func Parse(s string) (Kind, error) {
	if s == "" {
		return None, nil
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown transition kind %q", s)
}

// Shade is a full-frame color overlay composited on top of the drawn clip.
type Shade struct {
	R, G, B float64
	Alpha   float64
}

// Sweep reveals the frame left-to-right from under an opaque dark overlay.
// Reveal is the fraction of the canvas width already uncovered.
type Sweep struct {
	Reveal float64
}

// Effect describes the compositing work for one rendered frame.
type Effect struct {
	// CurrentAlpha is the opacity the active clip is drawn with.
	CurrentAlpha float64

	// DrawPrevious asks the renderer to draw the preceding clip first,
	// at PreviousAlpha. Only set for crossfade while a previous clip exists.
	DrawPrevious  bool
	PreviousAlpha float64

	Shade *Shade
	Sweep *Sweep
}

var plain = Effect{CurrentAlpha: 1}

// Resolve maps a transition kind and a local progress ratio to the overlay
// work for the frame. Progress is local clip time divided by Window; values
// outside [0,1] are clamped, and anything at or past 1 renders plain
// regardless of kind.
func Resolve(kind Kind, progress float64, hasPrevious bool) Effect {
	p := clamp01(progress)
	if p >= 1 {
		return plain
	}

	switch kind {
	case FadeIn:
		return Effect{
			CurrentAlpha: 1,
			Shade:        &Shade{R: 0, G: 0, B: 0, Alpha: 1 - p},
		}
	case Crossfade:
		if !hasPrevious {
			return plain
		}
		return Effect{
			CurrentAlpha:  p,
			DrawPrevious:  true,
			PreviousAlpha: 1 - p,
		}
	case WhiteFlash:
		return Effect{
			CurrentAlpha: 1,
			Shade:        &Shade{R: 1, G: 1, B: 1, Alpha: math.Max(0, 1-2*p)},
		}
	case CineSweep:
		return Effect{
			CurrentAlpha: 1,
			Sweep:        &Sweep{Reveal: p},
		}
	default:
		return plain
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
