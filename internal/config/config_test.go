package config

import (
	"context"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Export.FPS != 30 {
		t.Errorf("default fps = %v", cfg.Export.FPS)
	}
	if cfg.Preview.Addr != ":3456" {
		t.Errorf("default preview addr = %q", cfg.Preview.Addr)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := defaultConfig()
	cfg.OutDir = "/renders"
	cfg.Export.VideoBitrate = 2_000_000
	cfg.TTS.Voice = "atlas"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.OutDir != "/renders" {
		t.Errorf("out_dir = %q", loaded.OutDir)
	}
	if loaded.Export.VideoBitrate != 2_000_000 {
		t.Errorf("bitrate = %d", loaded.Export.VideoBitrate)
	}
	if loaded.TTS.Voice != "atlas" {
		t.Errorf("voice = %q", loaded.TTS.Voice)
	}
}

func TestContextCarrier(t *testing.T) {
	cfg := defaultConfig()
	cfg.WorkDir = "/scratch"

	ctx := WithConfig(context.Background(), cfg)
	if got := FromContext(ctx); got.WorkDir != "/scratch" {
		t.Errorf("work_dir from context = %q", got.WorkDir)
	}

	// A bare context yields defaults rather than nil.
	if got := FromContext(context.Background()); got == nil || got.WorkDir != "./work" {
		t.Errorf("defaults from bare context = %+v", got)
	}
}
