package ffmpeg

import "time"

// MediaInfo contains probed metadata about a media file. Audio-only files
// leave the video fields zero.
type MediaInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	Bitrate    int64
	VideoCodec string
	HasVideo   bool
	HasAudio   bool
	AudioCodec string
	SampleRate int
}

// Seconds returns the probed duration as a float, the unit the timeline
// model works in.
func (i *MediaInfo) Seconds() float64 {
	return i.Duration.Seconds()
}

// Progress represents one ffmpeg progress block.
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// ProgressFunc is called periodically with progress information while an
// encoding session runs.
type ProgressFunc func(*Progress)

// Default encoding settings for the export artifact.
const (
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
	DefaultPixFmt     = "yuv420p"
)
