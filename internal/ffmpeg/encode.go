package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// EncodeOptions configures a raw-video encoding session: RGBA frames piped
// on stdin, muxed with the audio file into a single output.
type EncodeOptions struct {
	Width        int
	Height       int
	FPS          float64
	AudioPath    string
	Output       string
	VideoBitrate int
	VideoCodec   string
	AudioCodec   string

	// Progress receives encoder progress blocks while the session runs.
	Progress ProgressFunc
}

// Encode is a running encoding session. Frames are pushed with WriteFrame
// in presentation order; Close finalizes the container, Abort kills the
// session and discards the output.
type Encode struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	scanDone chan struct{}

	mu     sync.Mutex
	stderr strings.Builder

	frameSize int
	frames    int
}

// StartEncode spawns an ffmpeg process that consumes raw RGBA frames from
// stdin at a fixed rate and muxes them with the audio track. The `-shortest`
// flag ties the container length to the shorter stream, so a frame count
// derived from the audio duration yields a fully synchronized artifact.
// Progress blocks arrive on stderr and are dispatched to opts.Progress.
func (e *Executor) StartEncode(ctx context.Context, opts EncodeOptions) (*Encode, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid frame rate %v", opts.FPS)
	}
	if opts.AudioPath == "" {
		return nil, fmt.Errorf("audio path is required")
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}

	videoCodec := opts.VideoCodec
	if videoCodec == "" {
		videoCodec = DefaultVideoCodec
	}
	audioCodec := opts.AudioCodec
	if audioCodec == "" {
		audioCodec = DefaultAudioCodec
	}

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-progress", "pipe:2",
	}
	if e.threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", e.threads))
	}
	args = append(args,
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fmt.Sprintf("%.2f", opts.FPS),
		"-i", "pipe:0",
		"-i", opts.AudioPath,
		"-c:v", videoCodec,
		"-pix_fmt", DefaultPixFmt,
	)
	if opts.VideoBitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%d", opts.VideoBitrate))
	}
	args = append(args,
		"-c:a", audioCodec,
		"-shortest",
		"-movflags", "+faststart",
		opts.Output,
	)

	e.logger.Debug().
		Str("output", opts.Output).
		Float64("fps", opts.FPS).
		Int("bitrate", opts.VideoBitrate).
		Msg("starting raw-video encode")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	enc := &Encode{
		cmd:       cmd,
		scanDone:  make(chan struct{}),
		frameSize: opts.Width * opts.Height * 4,
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	enc.stdin = stdin

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg encoder: %w", err)
	}

	// Progress blocks and error output share stderr; the scanner splits
	// them apart until the process exits.
	go func() {
		defer close(enc.scanDone)
		e.streamOutput(stderr, opts.Progress, enc.logLine)
	}()

	return enc, nil
}

// WriteFrame pushes one raw RGBA frame. The pixel slice must be exactly
// width*height*4 bytes with no row padding.
func (enc *Encode) WriteFrame(pix []byte) error {
	if len(pix) != enc.frameSize {
		return fmt.Errorf("frame is %d bytes, want %d", len(pix), enc.frameSize)
	}
	if _, err := enc.stdin.Write(pix); err != nil {
		return fmt.Errorf("failed to write frame %d: %w\n%s", enc.frames, err, enc.stderrText())
	}
	enc.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (enc *Encode) Frames() int { return enc.frames }

// Close finishes the stream and waits for the encoder to finalize the
// container.
func (enc *Encode) Close() error {
	if err := enc.stdin.Close(); err != nil {
		enc.cmd.Process.Kill()
		<-enc.scanDone
		enc.cmd.Wait()
		return fmt.Errorf("failed to close encoder input: %w", err)
	}
	<-enc.scanDone
	if err := enc.cmd.Wait(); err != nil {
		return fmt.Errorf("encoder failed: %w\n%s", err, enc.stderrText())
	}
	return nil
}

// Abort kills the encoder without finalizing the output.
func (enc *Encode) Abort() {
	enc.stdin.Close()
	if enc.cmd.Process != nil {
		enc.cmd.Process.Kill()
	}
	<-enc.scanDone
	enc.cmd.Wait()
}

func (enc *Encode) logLine(line string) {
	enc.mu.Lock()
	defer enc.mu.Unlock()
	enc.stderr.WriteString(line)
	enc.stderr.WriteByte('\n')
}

func (enc *Encode) stderrText() string {
	enc.mu.Lock()
	defer enc.mu.Unlock()
	return enc.stderr.String()
}
