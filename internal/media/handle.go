package media

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/kikiluvv/reelforge/internal/timeline"
)

const (
	// SeekToleranceSeconds is the drift a video handle accepts between its
	// current position and the requested time before it re-seeks. Seeking
	// every frame would thrash the decoder for nothing a viewer can see.
	SeekToleranceSeconds = 0.03

	// seekEndGuardSeconds keeps every seek strictly before the reported
	// end of the asset; decoders error out on the exact boundary.
	seekEndGuardSeconds = 0.05
)

// Handle is a playable media source resolved from an asset descriptor.
// Frame returns the image to show at the given local clip time.
type Handle interface {
	Kind() timeline.MediaKind
	Frame(ctx context.Context, local float64) (image.Image, error)
}

// FrameExtractor decodes one video frame at a timestamp. Implemented by
// ffmpeg.Executor; faked in tests.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, input string, at float64) (image.Image, error)
}

type imageHandle struct {
	img image.Image
}

// NewImageHandle wraps a decoded still image.
func NewImageHandle(img image.Image) Handle {
	return &imageHandle{img: img}
}

func (h *imageHandle) Kind() timeline.MediaKind { return timeline.MediaImage }

func (h *imageHandle) Frame(ctx context.Context, local float64) (image.Image, error) {
	return h.img, nil
}

type videoHandle struct {
	mu        sync.Mutex
	path      string
	duration  float64
	extractor FrameExtractor

	pos   float64
	frame image.Image
}

// NewVideoHandle wraps a decodable video resource. Frames are extracted on
// demand and the last one is kept so small drifts do not trigger a re-seek.
func NewVideoHandle(path string, duration float64, extractor FrameExtractor) (Handle, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("video %q has no intrinsic duration", path)
	}
	return &videoHandle{path: path, duration: duration, extractor: extractor}, nil
}

func (h *videoHandle) Kind() timeline.MediaKind { return timeline.MediaVideo }

func (h *videoHandle) Frame(ctx context.Context, local float64) (image.Image, error) {
	if math.IsNaN(local) || local < 0 {
		local = 0
	}
	if max := h.duration - seekEndGuardSeconds; local > max {
		local = math.Max(0, max)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.frame != nil && math.Abs(local-h.pos) <= SeekToleranceSeconds {
		return h.frame, nil
	}

	frame, err := h.extractor.ExtractFrame(ctx, h.path, local)
	if err != nil {
		return nil, err
	}
	h.pos = local
	h.frame = frame
	return frame, nil
}
