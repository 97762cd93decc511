package render

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"

	"github.com/kikiluvv/reelforge/internal/media"
	"github.com/kikiluvv/reelforge/internal/timeline"
	"github.com/kikiluvv/reelforge/internal/transition"
)

// The output surface is fixed; all letterboxing math is relative to it.
const (
	CanvasWidth  = 1280
	CanvasHeight = 720
)

// Dark plate color for the cine-sweep unrevealed region.
const sweepR, sweepG, sweepB = 0.04, 0.04, 0.05

// Renderer draws one composition frame per call onto a fixed 1280x720
// surface. It never blocks on media readiness: a clip whose handle has not
// resolved yet simply leaves the previous frame on screen. Rendering
// failures degrade to a skipped draw, they never escape the render loop.
//
// Renderer is not safe for concurrent use; preview and export are mutually
// exclusive by construction and share one instance.
type Renderer struct {
	logger zerolog.Logger
	dc     *gg.Context
}

// New creates a renderer with a black surface.
func New(logger zerolog.Logger) *Renderer {
	r := &Renderer{
		logger: logger.With().Str("component", "render").Logger(),
		dc:     gg.NewContext(CanvasWidth, CanvasHeight),
	}
	r.clear()
	return r
}

// Image exposes the live surface.
func (r *Renderer) Image() image.Image { return r.dc.Image() }

// RGBA exposes the surface pixels for the capture device. The slice aliases
// the surface; callers must copy or consume it before the next Render.
func (r *Renderer) RGBA() *image.RGBA { return r.dc.Image().(*image.RGBA) }

// Render draws the frame for the given timestamp. The timeline must be
// freshly normalized.
func (r *Renderer) Render(ctx context.Context, tl timeline.Timeline, cache *media.Cache, ts float64) {
	if math.IsNaN(ts) || ts < 0 {
		ts = 0
	}

	clip, idx, ok := tl.ClipAt(ts)
	if !ok {
		// Empty timeline: background only.
		r.clear()
		return
	}

	local := ts - clip.Start

	handle, ok := cache.Lookup(clip.MediaID)
	if !ok {
		// Asset not decoded yet; keep whatever is on screen.
		return
	}

	eff := transition.Resolve(clip.Transition, local/transition.Window, idx > 0)

	r.clear()

	if eff.DrawPrevious && idx > 0 {
		prev := tl.Clips[idx-1]
		if prevHandle, ok := cache.Lookup(prev.MediaID); ok {
			// The previous clip keeps counting forward from where it left
			// off. The handle clamps video seeks strictly before the asset
			// end, so the outgoing clip freezes on its final frame.
			prevLocal := prev.Duration - (transition.Window - local)
			r.drawMedia(ctx, prevHandle, prevLocal, eff.PreviousAlpha)
		}
	}

	r.drawMedia(ctx, handle, local, eff.CurrentAlpha)

	if s := eff.Shade; s != nil && s.Alpha > 0 {
		r.dc.SetRGBA(s.R, s.G, s.B, s.Alpha)
		r.dc.DrawRectangle(0, 0, CanvasWidth, CanvasHeight)
		r.dc.Fill()
	}

	if s := eff.Sweep; s != nil {
		revealed := s.Reveal * CanvasWidth
		r.dc.SetRGBA(sweepR, sweepG, sweepB, 1)
		r.dc.DrawRectangle(revealed, 0, CanvasWidth-revealed, CanvasHeight)
		r.dc.Fill()
	}
}

func (r *Renderer) clear() {
	r.dc.SetRGB(0, 0, 0)
	r.dc.Clear()
}

// drawMedia letterboxes one media frame onto the surface at the given
// opacity. Extraction failures skip the draw: a dropped frame is invisible,
// a stalled loop is not.
func (r *Renderer) drawMedia(ctx context.Context, h media.Handle, local, alpha float64) {
	if alpha <= 0 {
		return
	}

	frame, err := h.Frame(ctx, local)
	if err != nil {
		r.logger.Debug().Err(err).Float64("local", local).Msg("frame unavailable, skipping draw")
		return
	}

	dst := r.RGBA()
	rect := Fit(frame.Bounds(), dst.Bounds())
	if rect.Empty() {
		return
	}

	var opts *xdraw.Options
	if alpha < 1 {
		opts = &xdraw.Options{
			SrcMask: image.NewUniform(color.Alpha16{A: uint16(alpha * 0xffff)}),
		}
	}
	xdraw.ApproxBiLinear.Scale(dst, rect, frame, frame.Bounds(), xdraw.Over, opts)
}
