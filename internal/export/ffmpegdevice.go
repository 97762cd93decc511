package export

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/reelforge/internal/ffmpeg"
	"github.com/kikiluvv/reelforge/internal/timeline"
	"github.com/kikiluvv/reelforge/pkg/util"
)

// FFmpegDevice records through an ffmpeg raw-video encoding session.
type FFmpegDevice struct {
	logger   zerolog.Logger
	executor *ffmpeg.Executor
}

// NewFFmpegDevice creates a capture device over the executor.
func NewFFmpegDevice(logger zerolog.Logger, executor *ffmpeg.Executor) *FFmpegDevice {
	return &FFmpegDevice{
		logger:   logger.With().Str("component", "capture").Logger(),
		executor: executor,
	}
}

func (d *FFmpegDevice) CaptureVisualStream(width, height int, fps float64) (VisualStream, error) {
	if width <= 0 || height <= 0 || fps <= 0 {
		return VisualStream{}, fmt.Errorf("invalid visual stream %dx%d @ %v fps", width, height, fps)
	}
	return VisualStream{Width: width, Height: height, FPS: fps}, nil
}

func (d *FFmpegDevice) CaptureAudioStream(track timeline.AudioTrack) (AudioStream, error) {
	if !util.FileExists(track.Path) {
		return nil, fmt.Errorf("audio track %s does not exist", track.Path)
	}
	return &fileAudioStream{path: track.Path}, nil
}

func (d *FFmpegDevice) StartRecording(ctx context.Context, visual VisualStream, audio AudioStream, opts RecorderOptions) (Recorder, error) {
	var progress ffmpeg.ProgressFunc
	if opts.OnProgress != nil {
		progress = func(p *ffmpeg.Progress) {
			opts.OnProgress(p.Frame, p.FPS)
		}
	}

	enc, err := d.executor.StartEncode(ctx, ffmpeg.EncodeOptions{
		Width:        visual.Width,
		Height:       visual.Height,
		FPS:          visual.FPS,
		AudioPath:    audio.Source(),
		Output:       opts.Output,
		VideoBitrate: opts.VideoBitrate,
		VideoCodec:   opts.VideoCodec,
		AudioCodec:   opts.AudioCodec,
		Progress:     progress,
	})
	if err != nil {
		return nil, err
	}
	return &ffmpegRecorder{enc: enc, output: opts.Output, frameSize: visual.Width * visual.Height * 4}, nil
}

// fileAudioStream sources audio straight from the narration file on disk.
type fileAudioStream struct {
	path string
}

func (s *fileAudioStream) Source() string { return s.path }
func (s *fileAudioStream) Close() error   { return nil }

type ffmpegRecorder struct {
	enc       *ffmpeg.Encode
	output    string
	frameSize int
}

func (r *ffmpegRecorder) WriteFrame(frame *image.RGBA) error {
	if len(frame.Pix) != r.frameSize {
		return fmt.Errorf("frame is %d bytes, want %d", len(frame.Pix), r.frameSize)
	}
	return r.enc.WriteFrame(frame.Pix)
}

func (r *ffmpegRecorder) Finalize() (Artifact, error) {
	if err := r.enc.Close(); err != nil {
		return Artifact{}, err
	}
	info, err := os.Stat(r.output)
	if err != nil {
		return Artifact{}, fmt.Errorf("encoder produced no output: %w", err)
	}
	return Artifact{Path: r.output, Size: info.Size()}, nil
}

func (r *ffmpegRecorder) Abort() {
	r.enc.Abort()
	util.CleanupFiles(r.output)
}
