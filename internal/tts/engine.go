package tts

import "context"

// Voice describes one narration voice an engine can speak with.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   string `json:"gender"`
}

// Options tune a synthesis request.
type Options struct {
	Voice string
	Speed float64
	Pitch float64
}

// Result is a synthesized narration track on disk.
type Result struct {
	Path     string
	Duration float64
}

// Engine turns script text into a narration audio file.
type Engine interface {
	Synthesize(ctx context.Context, text string, opts Options) (*Result, error)
	Voices() []Voice
}

// DefaultVoices is the voice set offered when the provider does not expose
// its own catalog.
var DefaultVoices = []Voice{
	{ID: "nova", Name: "Nova", Language: "en-US", Gender: "female"},
	{ID: "atlas", Name: "Atlas", Language: "en-US", Gender: "male"},
	{ID: "stella", Name: "Stella", Language: "en-GB", Gender: "female"},
}
