package timeline

import (
	"testing"

	"github.com/kikiluvv/reelforge/internal/transition"
)

func storeWithAssets(t *testing.T) (*Store, MediaAsset, MediaAsset) {
	t.Helper()
	s := NewStore()
	img, err := s.AddAsset(MediaAsset{Kind: MediaImage, Name: "slide", Path: "slide.png"})
	if err != nil {
		t.Fatal(err)
	}
	vid, err := s.AddAsset(MediaAsset{Kind: MediaVideo, Name: "intro", Path: "intro.mp4", Duration: 3.0})
	if err != nil {
		t.Fatal(err)
	}
	return s, img, vid
}

func TestAddAssetValidation(t *testing.T) {
	s := NewStore()
	if _, err := s.AddAsset(MediaAsset{Kind: "gif"}); err == nil {
		t.Error("expected error for invalid kind")
	}
	if _, err := s.AddAsset(MediaAsset{Kind: MediaVideo, Name: "v"}); err == nil {
		t.Error("expected error for video without duration")
	}
	a, err := s.AddAsset(MediaAsset{Kind: MediaImage, Name: "i"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == "" {
		t.Error("asset was not assigned an id")
	}
}

func TestAppendClipDurations(t *testing.T) {
	s, img, vid := storeWithAssets(t)

	ic, err := s.AppendClip(img.ID, transition.FadeIn)
	if err != nil {
		t.Fatal(err)
	}
	if ic.Duration != DefaultImageClipSeconds {
		t.Errorf("image clip duration = %v, want default %v", ic.Duration, DefaultImageClipSeconds)
	}

	vc, err := s.AppendClip(vid.ID, transition.None)
	if err != nil {
		t.Fatal(err)
	}
	if vc.Duration != 3.0 {
		t.Errorf("video clip duration = %v, want intrinsic 3.0", vc.Duration)
	}
	if vc.Start != DefaultImageClipSeconds {
		t.Errorf("second clip start = %v, want %v", vc.Start, DefaultImageClipSeconds)
	}

	if _, err := s.AppendClip("nope", transition.None); err == nil {
		t.Error("expected error for unknown media id")
	}
}

func TestSetClipDuration(t *testing.T) {
	s, img, vid := storeWithAssets(t)
	ic, _ := s.AppendClip(img.ID, transition.None)
	vc, _ := s.AppendClip(vid.ID, transition.None)

	if err := s.SetClipDuration(ic.ID, 10); err != nil {
		t.Fatal(err)
	}
	tl := s.Timeline()
	if tl.Clips[0].Duration != 10 {
		t.Errorf("duration = %v, want 10", tl.Clips[0].Duration)
	}
	if tl.Clips[1].Start != 10 {
		t.Errorf("following clip start not re-normalized: %v", tl.Clips[1].Start)
	}

	// Clamped to the allowed range.
	s.SetClipDuration(ic.ID, 0.01)
	if d := s.Timeline().Clips[0].Duration; d != MinImageClipSeconds {
		t.Errorf("duration = %v, want clamped %v", d, MinImageClipSeconds)
	}
	s.SetClipDuration(ic.ID, 1e6)
	if d := s.Timeline().Clips[0].Duration; d != MaxImageClipSeconds {
		t.Errorf("duration = %v, want clamped %v", d, MaxImageClipSeconds)
	}

	if err := s.SetClipDuration(vc.ID, 5); err == nil {
		t.Error("expected error when editing a video clip duration")
	}
}

func TestMoveClipRenormalizes(t *testing.T) {
	s, img, vid := storeWithAssets(t)
	a, _ := s.AppendClip(img.ID, transition.None) // 4s
	s.AppendClip(vid.ID, transition.None)         // 3s

	if err := s.MoveClip(a.ID, 1); err != nil {
		t.Fatal(err)
	}
	tl := s.Timeline()
	if tl.Clips[0].MediaID != vid.ID || tl.Clips[1].MediaID != img.ID {
		t.Fatal("clip order not changed")
	}
	if tl.Clips[0].Start != 0 || tl.Clips[1].Start != 3.0 {
		t.Errorf("starts after reorder = %v, %v; want 0, 3", tl.Clips[0].Start, tl.Clips[1].Start)
	}

	// Out-of-range indices clamp instead of failing.
	if err := s.MoveClip(a.ID, 99); err != nil {
		t.Fatal(err)
	}
	if err := s.MoveClip("missing", 0); err == nil {
		t.Error("expected error for unknown clip")
	}
}

func TestRemoveAssetDropsDanglingClips(t *testing.T) {
	s, img, vid := storeWithAssets(t)
	s.AppendClip(img.ID, transition.None)
	s.AppendClip(vid.ID, transition.None)
	s.AppendClip(img.ID, transition.Crossfade)

	s.RemoveAsset(img.ID)

	tl := s.Timeline()
	if len(tl.Clips) != 1 {
		t.Fatalf("clips after asset removal = %d, want 1", len(tl.Clips))
	}
	if tl.Clips[0].MediaID != vid.ID || tl.Clips[0].Start != 0 {
		t.Errorf("surviving clip = %+v", tl.Clips[0])
	}
}

func TestCompositionGating(t *testing.T) {
	s, img, _ := storeWithAssets(t)

	if _, ok := s.Composition(); ok {
		t.Error("composition available with no clips and no audio")
	}

	s.AppendClip(img.ID, transition.None)
	if _, ok := s.Composition(); ok {
		t.Error("composition available without an active audio track")
	}

	s.SetAudio(AudioTrack{Path: "narration.mp3", Voice: "aria", Duration: 4.2})
	comp, ok := s.Composition()
	if !ok {
		t.Fatal("composition unavailable with clips and audio present")
	}
	if comp.Audio.Duration != 4.2 || comp.Timeline.Total() != DefaultImageClipSeconds {
		t.Errorf("unexpected composition: %+v", comp)
	}

	s.ClearAudio()
	if _, ok := s.Composition(); ok {
		t.Error("composition still available after audio removal")
	}
}
