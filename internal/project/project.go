package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/reelforge/internal/timeline"
	"github.com/kikiluvv/reelforge/internal/transition"
)

// Document is the on-disk project file: the asset library, the clip
// sequence and the narration selection, everything needed to rebuild a
// composition.
type Document struct {
	Name   string `yaml:"name"`
	Script string `yaml:"script,omitempty"`
	Voice  string `yaml:"voice,omitempty"`

	Assets []AssetEntry `yaml:"assets"`
	Clips  []ClipEntry  `yaml:"clips"`
	Audio  *AudioEntry  `yaml:"audio,omitempty"`
}

type AssetEntry struct {
	ID       string  `yaml:"id"`
	Kind     string  `yaml:"kind"`
	Name     string  `yaml:"name"`
	Path     string  `yaml:"path"`
	Duration float64 `yaml:"duration,omitempty"`
}

type ClipEntry struct {
	Media      string  `yaml:"media"`
	Duration   float64 `yaml:"duration,omitempty"`
	Transition string  `yaml:"transition,omitempty"`
}

type AudioEntry struct {
	Path     string  `yaml:"path"`
	Voice    string  `yaml:"voice,omitempty"`
	Duration float64 `yaml:"duration,omitempty"`
}

// Load reads a project document from file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	return &doc, nil
}

// Save writes the document to file.
func (d *Document) Save(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DurationProber measures media files whose durations the document omits.
type DurationProber interface {
	MediaDuration(ctx context.Context, path string) (float64, error)
}

// Build materializes the document into a live timeline store. Asset paths
// are resolved relative to baseDir; video and audio durations missing from
// the document are probed.
func (d *Document) Build(ctx context.Context, baseDir string, prober DurationProber) (*timeline.Store, error) {
	store := timeline.NewStore()

	for _, entry := range d.Assets {
		asset := timeline.MediaAsset{
			ID:       entry.ID,
			Kind:     timeline.MediaKind(entry.Kind),
			Name:     entry.Name,
			Path:     resolvePath(baseDir, entry.Path),
			Duration: entry.Duration,
		}
		if asset.Kind == timeline.MediaVideo && asset.Duration <= 0 {
			duration, err := prober.MediaDuration(ctx, asset.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to probe video %q: %w", entry.Name, err)
			}
			asset.Duration = duration
		}
		if _, err := store.AddAsset(asset); err != nil {
			return nil, err
		}
	}

	for i, entry := range d.Clips {
		kind, err := transition.Parse(entry.Transition)
		if err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		clip, err := store.AppendClip(entry.Media, kind)
		if err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		asset, _ := store.Asset(entry.Media)
		if asset.Kind == timeline.MediaImage && entry.Duration > 0 {
			if err := store.SetClipDuration(clip.ID, entry.Duration); err != nil {
				return nil, fmt.Errorf("clip %d: %w", i, err)
			}
		}
	}

	if d.Audio != nil {
		track := timeline.AudioTrack{
			Path:     resolvePath(baseDir, d.Audio.Path),
			Voice:    d.Audio.Voice,
			Duration: d.Audio.Duration,
		}
		if track.Duration <= 0 {
			duration, err := prober.MediaDuration(ctx, track.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to probe narration: %w", err)
			}
			track.Duration = duration
		}
		store.SetAudio(track)
	}

	return store, nil
}

// Snapshot captures a live store back into a document, preserving the
// script and voice fields.
func Snapshot(name, script, voice string, store *timeline.Store) *Document {
	doc := &Document{Name: name, Script: script, Voice: voice}

	for _, a := range store.Assets() {
		doc.Assets = append(doc.Assets, AssetEntry{
			ID:       a.ID,
			Kind:     string(a.Kind),
			Name:     a.Name,
			Path:     a.Path,
			Duration: a.Duration,
		})
	}

	for _, c := range store.Timeline().Clips {
		doc.Clips = append(doc.Clips, ClipEntry{
			Media:      c.MediaID,
			Duration:   c.Duration,
			Transition: string(c.Transition),
		})
	}

	if track, ok := store.Audio(); ok {
		doc.Audio = &AudioEntry{Path: track.Path, Voice: track.Voice, Duration: track.Duration}
	}
	return doc
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
