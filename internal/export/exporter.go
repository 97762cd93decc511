package export

import (
	"context"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/reelforge/internal/ffmpeg"
	"github.com/kikiluvv/reelforge/internal/render"
	"github.com/kikiluvv/reelforge/internal/timeline"
	"github.com/kikiluvv/reelforge/pkg/util"
)

// Encoding defaults for the final artifact.
const (
	DefaultFPS          = 30.0
	DefaultVideoBitrate = 4_000_000
)

// Options configure an export run.
type Options struct {
	FPS          float64
	VideoBitrate int
	VideoCodec   string
	AudioCodec   string
	OutDir       string
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.VideoBitrate <= 0 {
		o.VideoBitrate = DefaultVideoBitrate
	}
	if o.VideoCodec == "" {
		o.VideoCodec = ffmpeg.DefaultVideoCodec
	}
	if o.AudioCodec == "" {
		o.AudioCodec = ffmpeg.DefaultAudioCodec
	}
	if o.OutDir == "" {
		o.OutDir = "."
	}
	return o
}

// RenderFunc draws the composition frame for one timestamp and returns the
// surface pixels. The exporter copies nothing: the encoder consumes the
// frame before the next call.
type RenderFunc func(ts float64) *image.RGBA

// Exporter runs the offline export loop: it steps a synthetic clock at the
// output frame rate, renders each frame, and feeds the recording device.
// The audio track bounds the export, matching what playback would produce.
type Exporter struct {
	logger zerolog.Logger
	device CaptureDevice
	opts   Options
}

// NewExporter creates an exporter over the given capture device.
func NewExporter(logger zerolog.Logger, device CaptureDevice, opts Options) *Exporter {
	return &Exporter{
		logger: logger.With().Str("component", "export").Logger(),
		device: device,
		opts:   opts.withDefaults(),
	}
}

// Export renders the composition to a video artifact. An incomplete
// composition (no clips or no audio) is a logged no-op, not an error.
func (e *Exporter) Export(ctx context.Context, comp timeline.Composition, renderFrame RenderFunc) (*Artifact, error) {
	if comp.Timeline.Empty() || comp.Audio.Duration <= 0 {
		e.logger.Warn().Msg("nothing to export: composition needs clips and audio")
		return nil, nil
	}

	if err := util.EnsureDir(e.opts.OutDir); err != nil {
		return nil, fmt.Errorf("failed to prepare output directory: %w", err)
	}

	visual, err := e.device.CaptureVisualStream(render.CanvasWidth, render.CanvasHeight, e.opts.FPS)
	if err != nil {
		return nil, fmt.Errorf("failed to capture visual stream: %w", err)
	}

	audio, err := e.device.CaptureAudioStream(comp.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to capture audio stream: %w", err)
	}
	defer audio.Close()

	output := filepath.Join(e.opts.OutDir, e.artifactName(comp.Audio.Voice))
	rec, err := e.device.StartRecording(ctx, visual, audio, RecorderOptions{
		VideoBitrate: e.opts.VideoBitrate,
		VideoCodec:   e.opts.VideoCodec,
		AudioCodec:   e.opts.AudioCodec,
		Output:       output,
		OnProgress: func(frame int, fps float64) {
			e.logger.Debug().
				Int("frame", frame).
				Float64("encode_fps", fps).
				Msg("encoding")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start recording: %w", err)
	}

	e.logger.Info().
		Str("output", output).
		Float64("duration", comp.Audio.Duration).
		Float64("fps", e.opts.FPS).
		Msg("export started")

	// Timestamps derive from the frame index so float error never adds or
	// drops a frame over long tracks.
	frames := int(math.Ceil(comp.Audio.Duration*e.opts.FPS - 1e-9))
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			rec.Abort()
			return nil, ctx.Err()
		default:
		}

		if err := rec.WriteFrame(renderFrame(float64(i) / e.opts.FPS)); err != nil {
			rec.Abort()
			return nil, fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
	}

	artifact, err := rec.Finalize()
	if err != nil {
		return nil, fmt.Errorf("failed to finalize recording: %w", err)
	}

	e.logger.Info().
		Str("output", artifact.Path).
		Int("frames", frames).
		Int64("bytes", artifact.Size).
		Msg("export complete")
	return &artifact, nil
}

// artifactName embeds the narration voice and a timestamp so repeated
// exports never clobber each other.
func (e *Exporter) artifactName(voice string) string {
	label := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(voice), " ", "-"))
	if label == "" {
		label = "clip"
	}
	return fmt.Sprintf("%s_%s.mp4", label, time.Now().Format("20060102-150405"))
}
