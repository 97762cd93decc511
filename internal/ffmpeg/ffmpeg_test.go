package ffmpeg

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

func testLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

// makeTestVideo synthesizes a short test clip with lavfi so the tests carry
// no binary fixtures.
func makeTestVideo(t *testing.T, dir string, seconds float64) string {
	t.Helper()
	out := filepath.Join(dir, "test.mp4")
	cmd := exec.Command("ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=320x240:rate=25",
		"-f", "lavfi", "-i", "sine=frequency=440",
		"-t", fmt.Sprintf("%.1f", seconds),
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-c:a", "aac",
		out,
	)
	if err := cmd.Run(); err != nil {
		t.Skipf("could not synthesize test video: %v", err)
	}
	return out
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	exec, err := New(testLogger(), 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	if exec.ffmpegPath == "" {
		t.Error("ffmpeg path is empty")
	}
	if exec.ffprobePath == "" {
		t.Error("ffprobe path is empty")
	}
}

func TestStreamOutputParsesProgressBlocks(t *testing.T) {
	raw := "frame=10\n" +
		"fps=25.0\n" +
		"bitrate= 480.2kbits/s\n" +
		"out_time=00:00:00.400000\n" +
		"speed=1.2x\n" +
		"progress=continue\n" +
		"frame=20\n" +
		"fps=26.5\n" +
		"progress=end\n"

	var blocks []Progress
	var lines []string
	e := &Executor{}
	e.streamOutput(strings.NewReader(raw),
		func(p *Progress) { blocks = append(blocks, *p) },
		func(line string) { lines = append(lines, line) },
	)

	if len(blocks) != 2 {
		t.Fatalf("dispatched %d blocks, want 2", len(blocks))
	}
	first := blocks[0]
	if first.Frame != 10 || first.FPS != 25.0 {
		t.Errorf("first block = %+v", first)
	}
	if first.Bitrate != "480.2kbits/s" || first.Time != "00:00:00.400000" || first.Speed != "1.2x" {
		t.Errorf("first block fields = %+v", first)
	}
	if blocks[1].Frame != 20 {
		t.Errorf("second block frame = %d", blocks[1].Frame)
	}
	// Every raw line reaches the log handler.
	if len(lines) != 9 {
		t.Errorf("forwarded %d lines, want 9", len(lines))
	}
}

func TestStreamOutputSkipsEmptyBlocks(t *testing.T) {
	var blocks []Progress
	e := &Executor{}
	e.streamOutput(strings.NewReader("progress=end\n"),
		func(p *Progress) { blocks = append(blocks, *p) }, nil)
	if len(blocks) != 0 {
		t.Errorf("dispatched %d blocks for frameless stream, want 0", len(blocks))
	}
}

func TestProbe(t *testing.T) {
	skipIfNoFFmpeg(t)

	video := makeTestVideo(t, t.TempDir(), 2.0)
	e, err := New(testLogger(), 2)
	if err != nil {
		t.Fatal(err)
	}

	info, err := e.Probe(context.Background(), video)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if info.Width != 320 || info.Height != 240 {
		t.Errorf("dimensions = %dx%d, want 320x240", info.Width, info.Height)
	}
	if !info.HasVideo || !info.HasAudio {
		t.Errorf("stream flags: video=%v audio=%v", info.HasVideo, info.HasAudio)
	}
	if math.Abs(info.Seconds()-2.0) > 0.2 {
		t.Errorf("duration = %v, want ~2.0s", info.Seconds())
	}

	dur, err := e.MediaDuration(context.Background(), video)
	if err != nil {
		t.Fatalf("MediaDuration failed: %v", err)
	}
	if math.Abs(dur-2.0) > 0.2 {
		t.Errorf("MediaDuration = %v, want ~2.0", dur)
	}
}

func TestExtractFrame(t *testing.T) {
	skipIfNoFFmpeg(t)

	video := makeTestVideo(t, t.TempDir(), 2.0)
	e, err := New(testLogger(), 2)
	if err != nil {
		t.Fatal(err)
	}

	frame, err := e.ExtractFrame(context.Background(), video, 1.0)
	if err != nil {
		t.Fatalf("ExtractFrame failed: %v", err)
	}
	if b := frame.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("frame size = %dx%d, want 320x240", b.Dx(), b.Dy())
	}

	// Negative timestamps clamp to the first frame rather than failing.
	if _, err := e.ExtractFrame(context.Background(), video, -1.0); err != nil {
		t.Errorf("negative timestamp extraction failed: %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	video := makeTestVideo(t, dir, 2.0)
	out := filepath.Join(dir, "out.mp4")

	e, err := New(testLogger(), 2)
	if err != nil {
		t.Fatal(err)
	}

	const w, h, fps = 160, 90, 10.0
	var progressCalls atomic.Int32
	enc, err := e.StartEncode(context.Background(), EncodeOptions{
		Width: w, Height: h, FPS: fps,
		AudioPath:    video, // container with audio works as audio input
		Output:       out,
		VideoBitrate: 500_000,
		Progress: func(p *Progress) {
			progressCalls.Add(1)
		},
	})
	if err != nil {
		t.Fatalf("StartEncode failed: %v", err)
	}

	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < 20; i++ { // 2 seconds at 10 fps
		if err := enc.WriteFrame(frame.Pix); err != nil {
			t.Fatalf("WriteFrame %d failed: %v", i, err)
		}
	}
	if enc.Frames() != 20 {
		t.Errorf("frames = %d, want 20", enc.Frames())
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// The final progress block fires by the time Close returns.
	if progressCalls.Load() == 0 {
		t.Error("no progress blocks dispatched during encode")
	}

	info, err := e.Probe(context.Background(), out)
	if err != nil {
		t.Fatalf("probe of encoded output failed: %v", err)
	}
	if !info.HasVideo || !info.HasAudio {
		t.Errorf("encoded output streams: video=%v audio=%v", info.HasVideo, info.HasAudio)
	}
	if math.Abs(info.Seconds()-2.0) > 0.5 {
		t.Errorf("encoded duration = %v, want ~2.0", info.Seconds())
	}
}

func TestEncodeRejectsBadFrames(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	video := makeTestVideo(t, dir, 2.0)

	e, err := New(testLogger(), 2)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := e.StartEncode(context.Background(), EncodeOptions{
		Width: 160, Height: 90, FPS: 10,
		AudioPath: video,
		Output:    filepath.Join(dir, "bad.mp4"),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Abort()

	if err := enc.WriteFrame(make([]byte, 7)); err == nil {
		t.Error("expected error for wrong frame size")
	}
}
