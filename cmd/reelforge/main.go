package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/reelforge/internal/config"
	"github.com/kikiluvv/reelforge/internal/export"
	"github.com/kikiluvv/reelforge/internal/ffmpeg"
	"github.com/kikiluvv/reelforge/internal/gui"
	"github.com/kikiluvv/reelforge/internal/logging"
	"github.com/kikiluvv/reelforge/internal/media"
	"github.com/kikiluvv/reelforge/internal/playback"
	"github.com/kikiluvv/reelforge/internal/project"
	"github.com/kikiluvv/reelforge/internal/render"
	"github.com/kikiluvv/reelforge/internal/server"
	"github.com/kikiluvv/reelforge/internal/timeline"
	"github.com/kikiluvv/reelforge/internal/tts"
	"github.com/kikiluvv/reelforge/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reelforge",
	Short: "reelforge - timeline composition and rendering engine",
	Long:  "Assembles images and video clips on an audio-synchronized timeline, previews the composition live, and exports it as a video artifact.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Provider keys live in .env during development
		godotenv.Load()

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(guiCmd)
	rootCmd.AddCommand(narrateCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(voicesCmd)
}

// session bundles everything a loaded project needs for preview or export.
type session struct {
	cfg      *config.Config
	executor *ffmpeg.Executor
	store    *timeline.Store
	comp     timeline.Composition
	cache    *media.Cache
	renderer *render.Renderer

	mu sync.Mutex
}

// openSession loads a project, decodes its assets and prepares a renderer.
func openSession(ctx context.Context, projectPath string) (*session, error) {
	cfg := config.FromContext(ctx)

	executor, err := ffmpeg.New(log.Logger, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, err
	}

	doc, err := project.Load(projectPath)
	if err != nil {
		return nil, err
	}

	store, err := doc.Build(ctx, filepath.Dir(projectPath), executor)
	if err != nil {
		return nil, err
	}

	comp, ok := store.Composition()
	if !ok {
		return nil, fmt.Errorf("project needs at least one clip and a narration track")
	}

	if drift, exceeded := comp.Timeline.Drift(comp.Audio.Duration); exceeded {
		log.Warn().
			Float64("drift", drift).
			Msg("timeline and narration lengths diverge; the shorter stream ends the video")
	}

	cache := media.NewCache()
	loader := media.NewLoader(log.Logger, executor, cache)
	if err := loader.LoadAll(ctx, store.Assets()); err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		executor: executor,
		store:    store,
		comp:     comp,
		cache:    cache,
		renderer: render.New(log.Logger),
	}, nil
}

// renderAt draws one frame. The mutex serializes the render loop against
// surface snapshots.
func (s *session) renderAt(ctx context.Context, ts float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.Render(ctx, s.comp.Timeline, s.cache, ts)
}

// snapshot copies the current surface for streaming.
func (s *session) snapshot() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.renderer.RGBA()
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

func (s *session) newPlayer(ctx context.Context) *playback.Player {
	clock := playback.NewTrackClock(s.comp.Audio.Duration)
	interval := util.FrameInterval(s.cfg.Export.FPS)
	scheduler := playback.NewTickerScheduler(interval)
	return playback.NewPlayer(log.Logger, clock, scheduler, func(ts float64) {
		s.renderAt(ctx, ts)
	})
}

var exportCmd = &cobra.Command{
	Use:   "export [project file]",
	Short: "Render the composition to a video artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx, args[0])
		if err != nil {
			return err
		}

		device := export.NewFFmpegDevice(log.Logger, s.executor)
		exporter := export.NewExporter(log.Logger, device, export.Options{
			FPS:          s.cfg.Export.FPS,
			VideoBitrate: s.cfg.Export.VideoBitrate,
			VideoCodec:   s.cfg.Export.VideoCodec,
			AudioCodec:   s.cfg.Export.AudioCodec,
			OutDir:       s.cfg.OutDir,
		})

		artifact, err := exporter.Export(ctx, s.comp, func(ts float64) *image.RGBA {
			s.renderer.Render(ctx, s.comp.Timeline, s.cache, ts)
			return s.renderer.RGBA()
		})
		if err != nil {
			return err
		}
		if artifact == nil {
			return nil
		}

		log.Info().
			Str("artifact", artifact.Path).
			Int64("bytes", artifact.Size).
			Msg("export finished")
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview [project file]",
	Short: "Serve a live preview over HTTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx, args[0])
		if err != nil {
			return err
		}

		player := s.newPlayer(ctx)
		defer player.Stop()

		preview := server.NewPreview(log.Logger, player, s.snapshot,
			s.comp.Audio.Duration, s.cfg.Preview.JPEGQuality, s.cfg.OutDir)
		return preview.ListenAndServe(ctx, s.cfg.Preview.Addr)
	},
}

var guiCmd = &cobra.Command{
	Use:   "gui [project file]",
	Short: "Open the desktop preview window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx, args[0])
		if err != nil {
			return err
		}

		player := s.newPlayer(ctx)
		gui.RunPreview(player, s.snapshot, s.comp.Audio.Duration)
		return nil
	},
}

var narrateCmd = &cobra.Command{
	Use:   "narrate [project file]",
	Short: "Synthesize the project script into a narration track",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.FromContext(ctx)

		doc, err := project.Load(args[0])
		if err != nil {
			return err
		}
		if doc.Script == "" {
			return fmt.Errorf("project has no script to narrate")
		}

		executor, err := ffmpeg.New(log.Logger, cfg.FFmpeg.Threads)
		if err != nil {
			return err
		}

		engine, err := tts.NewHTTPEngine(log.Logger, executor, tts.HTTPConfig{
			Endpoint:  cfg.TTS.Endpoint,
			APIKeyEnv: cfg.TTS.APIKeyEnv,
			WorkDir:   cfg.WorkDir,
			Voices:    tts.DefaultVoices,
		})
		if err != nil {
			return err
		}

		voice := doc.Voice
		if voice == "" {
			voice = cfg.TTS.Voice
		}

		result, err := engine.Synthesize(ctx, doc.Script, tts.Options{Voice: voice})
		if err != nil {
			return err
		}

		doc.Audio = &project.AudioEntry{
			Path:     result.Path,
			Voice:    voice,
			Duration: result.Duration,
		}
		if err := doc.Save(args[0]); err != nil {
			return err
		}

		log.Info().
			Str("narration", result.Path).
			Float64("duration", result.Duration).
			Msg("narration attached to project")
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [media file]",
	Short: "Inspect a media file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		executor, err := ffmpeg.New(log.Logger, cfg.FFmpeg.Threads)
		if err != nil {
			return err
		}

		info, err := executor.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("path:     %s\n", info.FilePath)
		fmt.Printf("duration: %s\n", util.FormatDuration(info.Duration))
		if info.HasVideo {
			fmt.Printf("video:    %s %dx%d @ %.2f fps\n", info.VideoCodec, info.Width, info.Height, info.FPS)
		}
		if info.HasAudio {
			fmt.Printf("audio:    %s %d Hz\n", info.AudioCodec, info.SampleRate)
		}
		return nil
	},
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List available narration voices",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, v := range tts.DefaultVoices {
			fmt.Printf("%-10s %-12s %-6s %s\n", v.ID, v.Name, v.Language, v.Gender)
		}
		return nil
	},
}
