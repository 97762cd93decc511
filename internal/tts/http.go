package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/reelforge/pkg/util"
)

// DurationProber measures the synthesized track so the composition can be
// checked against the timeline.
type DurationProber interface {
	MediaDuration(ctx context.Context, path string) (float64, error)
}

// HTTPConfig wires an HTTPEngine to a speech provider.
type HTTPConfig struct {
	// Endpoint receives a JSON synthesis request and answers with audio
	// bytes.
	Endpoint string
	// APIKeyEnv names the environment variable holding the bearer token.
	// Empty means the endpoint is unauthenticated.
	APIKeyEnv string
	// WorkDir receives the synthesized audio files.
	WorkDir string
	// Voices the provider offers; the first is the default.
	Voices []Voice
}

// HTTPEngine synthesizes narration through a JSON-over-HTTP speech provider
// and lands the result in the working directory.
type HTTPEngine struct {
	logger zerolog.Logger
	client *http.Client
	prober DurationProber
	cfg    HTTPConfig
}

// NewHTTPEngine creates an engine for the given provider.
func NewHTTPEngine(logger zerolog.Logger, prober DurationProber, cfg HTTPConfig) (*HTTPEngine, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("tts endpoint is required")
	}
	return &HTTPEngine{
		logger: logger.With().Str("component", "tts").Logger(),
		client: &http.Client{Timeout: 2 * time.Minute},
		prober: prober,
		cfg:    cfg,
	}, nil
}

// Voices lists the provider's voices.
func (e *HTTPEngine) Voices() []Voice { return e.cfg.Voices }

type synthesisRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
}

// Synthesize speaks the text and returns the narration file with its
// measured duration.
func (e *HTTPEngine) Synthesize(ctx context.Context, text string, opts Options) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("script text is empty")
	}

	voice := opts.Voice
	if voice == "" && len(e.cfg.Voices) > 0 {
		voice = e.cfg.Voices[0].ID
	}

	payload, err := json.Marshal(synthesisRequest{
		Text:  text,
		Voice: voice,
		Speed: opts.Speed,
		Pitch: opts.Pitch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKeyEnv != "" {
		key := os.Getenv(e.cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("environment variable %s is not set", e.cfg.APIKeyEnv)
		}
		req.Header.Set("Authorization", "Token "+key)
	}

	e.logger.Debug().
		Str("voice", voice).
		Int("chars", len(text)).
		Msg("requesting narration")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("speech provider returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read narration audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech provider returned no audio")
	}

	if err := util.EnsureDir(e.cfg.WorkDir); err != nil {
		return nil, err
	}
	path := filepath.Join(e.cfg.WorkDir, fmt.Sprintf("narration_%s.mp3", uuid.NewString()))
	if err := os.WriteFile(path, audio, 0644); err != nil {
		return nil, fmt.Errorf("failed to save narration: %w", err)
	}

	duration, err := e.prober.MediaDuration(ctx, path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to measure narration: %w", err)
	}

	e.logger.Info().
		Str("path", path).
		Float64("duration", duration).
		Msg("narration synthesized")
	return &Result{Path: path, Duration: duration}, nil
}
