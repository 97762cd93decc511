package export

import (
	"context"
	"image"

	"github.com/kikiluvv/reelforge/internal/timeline"
)

// VisualStream describes the frame geometry a recording will consume.
type VisualStream struct {
	Width  int
	Height int
	FPS    float64
}

// AudioStream is an acquired audio source. It must be closed exactly once,
// whether the recording that borrowed it succeeds or fails.
type AudioStream interface {
	// Source locates the underlying audio for the muxer.
	Source() string
	Close() error
}

// RecorderOptions configure one recording session.
type RecorderOptions struct {
	VideoBitrate int
	VideoCodec   string
	AudioCodec   string
	Output       string

	// OnProgress receives the encoder's own frame counter and throughput
	// while the recording runs.
	OnProgress func(frame int, fps float64)
}

// Artifact is a finished recording on disk.
type Artifact struct {
	Path string
	Size int64
}

// Recorder consumes rendered frames and produces an artifact on Finalize.
type Recorder interface {
	WriteFrame(frame *image.RGBA) error
	Finalize() (Artifact, error)
	// Abort tears the recording down without producing an artifact.
	Abort()
}

// CaptureDevice abstracts the recording backend so the export loop can be
// tested without an encoder on the machine.
type CaptureDevice interface {
	CaptureVisualStream(width, height int, fps float64) (VisualStream, error)
	CaptureAudioStream(track timeline.AudioTrack) (AudioStream, error)
	StartRecording(ctx context.Context, visual VisualStream, audio AudioStream, opts RecorderOptions) (Recorder, error)
}
