package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
)

// ExtractFrame decodes the video frame nearest to the given timestamp.
// The frame travels as PNG over a pipe so no temp file is needed. Callers
// are expected to clamp `at` strictly below the asset's duration; ffmpeg
// seeks past the last frame return an error.
func (e *Executor) ExtractFrame(ctx context.Context, input string, at float64) (image.Image, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if at < 0 {
		at = 0
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", at),
		"-i", input,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("frame extraction at %.3fs failed: %w\n%s", at, err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no frame decoded at %.3fs from %s", at, input)
	}

	frame, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extracted frame: %w", err)
	}
	return frame, nil
}
