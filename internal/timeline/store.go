package timeline

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kikiluvv/reelforge/internal/transition"
)

// Image clip duration bounds, in seconds. Video clips always take the
// asset's intrinsic duration.
const (
	MinImageClipSeconds     = 0.5
	MaxImageClipSeconds     = 30.0
	DefaultImageClipSeconds = 4.0
)

// Store is the explicit state container for the asset library, the clip
// sequence and the active audio selection. Every structural mutation
// re-normalizes the sequence before it becomes observable, so readers only
// ever see clips whose Start fields satisfy the timeline invariant.
type Store struct {
	mu     sync.Mutex
	assets map[string]MediaAsset
	clips  []Clip
	audio  *AudioTrack
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{assets: make(map[string]MediaAsset)}
}

// AddAsset registers a media asset. Video assets must carry an intrinsic
// duration.
func (s *Store) AddAsset(a MediaAsset) (MediaAsset, error) {
	if a.Kind != MediaImage && a.Kind != MediaVideo {
		return MediaAsset{}, fmt.Errorf("invalid media kind %q", a.Kind)
	}
	if a.Kind == MediaVideo && a.Duration <= 0 {
		return MediaAsset{}, fmt.Errorf("video asset %q has no intrinsic duration", a.Name)
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assets[a.ID]; exists {
		return MediaAsset{}, fmt.Errorf("duplicate asset id %q", a.ID)
	}
	s.assets[a.ID] = a
	return a, nil
}

// RemoveAsset deletes an asset from the library. Clips referencing it become
// dangling and are dropped, then the remaining sequence is re-normalized.
func (s *Store) RemoveAsset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assets, id)

	kept := s.clips[:0]
	for _, c := range s.clips {
		if c.MediaID != id {
			kept = append(kept, c)
		}
	}
	s.clips = Normalize(kept)
}

// Asset looks up an asset by ID.
func (s *Store) Asset(id string) (MediaAsset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	return a, ok
}

// Assets returns a snapshot of the asset library.
func (s *Store) Assets() []MediaAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MediaAsset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, a)
	}
	return out
}

// AppendClip places an asset at the end of the timeline. Video clips take
// the asset's intrinsic duration; image clips start at the default duration.
func (s *Store) AppendClip(mediaID string, kind transition.Kind) (Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[mediaID]
	if !ok {
		return Clip{}, fmt.Errorf("unknown media id %q", mediaID)
	}

	duration := DefaultImageClipSeconds
	if asset.Kind == MediaVideo {
		duration = asset.Duration
	} else if asset.Duration > 0 {
		duration = clampImageDuration(asset.Duration)
	}

	clip := Clip{
		ID:         uuid.New().String(),
		MediaID:    mediaID,
		Duration:   duration,
		Transition: kind,
	}
	s.clips = Normalize(append(s.clips, clip))
	return s.clips[len(s.clips)-1], nil
}

// RemoveClip deletes a clip and re-normalizes.
func (s *Store) RemoveClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.clips[:0]
	for _, c := range s.clips {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.clips = Normalize(kept)
}

// MoveClip reorders a clip to the given index, clamped to the sequence
// bounds, then re-normalizes.
func (s *Store) MoveClip(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := -1
	for i, c := range s.clips {
		if c.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("unknown clip id %q", id)
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.clips)-1 {
		index = len(s.clips) - 1
	}

	clip := s.clips[from]
	rest := append(s.clips[:from], s.clips[from+1:]...)
	rest = append(rest, Clip{})
	copy(rest[index+1:], rest[index:])
	rest[index] = clip
	s.clips = Normalize(rest)
	return nil
}

// SetClipDuration adjusts an image clip's duration, clamped to the allowed
// range. Video clip durations are immutable.
func (s *Store) SetClipDuration(id string, seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.clips {
		if c.ID != id {
			continue
		}
		asset, ok := s.assets[c.MediaID]
		if !ok {
			return fmt.Errorf("clip %q references missing media %q", id, c.MediaID)
		}
		if asset.Kind == MediaVideo {
			return fmt.Errorf("video clip duration is fixed to the asset duration")
		}
		s.clips[i].Duration = clampImageDuration(seconds)
		s.clips = Normalize(s.clips)
		return nil
	}
	return fmt.Errorf("unknown clip id %q", id)
}

// SetTransition changes the transition applied at the start of a clip.
func (s *Store) SetTransition(id string, kind transition.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.clips {
		if c.ID == id {
			s.clips[i].Transition = kind
			return nil
		}
	}
	return fmt.Errorf("unknown clip id %q", id)
}

// SetAudio selects the active audio track.
func (s *Store) SetAudio(track AudioTrack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = &track
}

// ClearAudio removes the active audio selection.
func (s *Store) ClearAudio() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = nil
}

// Audio returns the active track, if one is selected.
func (s *Store) Audio() (AudioTrack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio == nil {
		return AudioTrack{}, false
	}
	return *s.audio, true
}

// Timeline returns a normalized snapshot of the clip sequence.
func (s *Store) Timeline() Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Timeline{Clips: Normalize(s.clips)}
}

// Composition pairs the current timeline with the active audio track. It
// reports false when no audio is selected or the timeline is empty, the
// configuration in which preview and export stay disabled.
func (s *Store) Composition() (Composition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio == nil || len(s.clips) == 0 {
		return Composition{}, false
	}
	return Composition{
		Timeline: Timeline{Clips: Normalize(s.clips)},
		Audio:    *s.audio,
	}, true
}

func clampImageDuration(d float64) float64 {
	if d < MinImageClipSeconds {
		return MinImageClipSeconds
	}
	if d > MaxImageClipSeconds {
		return MaxImageClipSeconds
	}
	return d
}
