package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/reelforge/internal/playback"
)

// streamFPS paces the MJPEG stream; the render loop runs on its own clock.
const streamFPS = 15

// Status is the transport state pushed to clients.
type Status struct {
	State    playback.State `json:"state"`
	Position float64        `json:"position"`
	Duration float64        `json:"duration"`
}

// SnapshotFunc returns a stable copy of the current preview frame.
type SnapshotFunc func() image.Image

// Preview serves the composition over HTTP: an MJPEG stream of the live
// surface, a websocket pushing transport status, and play/pause/stop
// controls driving the player.
type Preview struct {
	logger   zerolog.Logger
	player   *playback.Player
	snapshot SnapshotFunc
	duration float64
	quality  int
	outDir   string

	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewPreview creates a preview server for the given player and frame
// source.
func NewPreview(logger zerolog.Logger, player *playback.Player, snapshot SnapshotFunc, duration float64, jpegQuality int, outDir string) *Preview {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 80
	}
	return &Preview{
		logger:   logger.With().Str("component", "preview").Logger(),
		player:   player,
		snapshot: snapshot,
		duration: duration,
		quality:  jpegQuality,
		outDir:   outDir,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler builds the preview routing table.
func (p *Preview) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", p.handleStream)
	mux.HandleFunc("/ws", p.handleWS)
	mux.HandleFunc("/play", p.handlePlay)
	mux.HandleFunc("/pause", p.handlePause)
	mux.HandleFunc("/stop", p.handleStop)
	mux.HandleFunc("/status", p.handleStatus)
	if p.outDir != "" {
		// Finished exports are downloadable next to the live stream.
		mux.Handle("/artifacts/", http.StripPrefix("/artifacts/",
			http.FileServer(http.Dir(p.outDir))))
	}
	return mux
}

// ListenAndServe runs the preview server until the context is cancelled.
func (p *Preview) ListenAndServe(ctx context.Context, addr string) error {
	p.srv = &http.Server{Addr: addr, Handler: p.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		p.srv.Shutdown(shutdownCtx)
	}()

	p.logger.Info().Str("addr", addr).Msg("preview server listening")
	if err := p.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (p *Preview) status() Status {
	return Status{
		State:    p.player.State(),
		Position: p.player.Position(),
		Duration: p.duration,
	}
}

// handleStream serves the surface as multipart/x-mixed-replace MJPEG until
// the client disconnects.
func (p *Preview) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ticker := time.NewTicker(time.Second / streamFPS)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame := p.snapshot()
		if frame == nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\n\r\n")
		if err := jpeg.Encode(w, frame, &jpeg.Options{Quality: p.quality}); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")
		flusher.Flush()
	}
}

// handleWS pushes transport status over a websocket a few times a second.
func (p *Preview) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
		if err := conn.WriteJSON(p.status()); err != nil {
			return
		}
	}
}

func (p *Preview) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p.player.Play()
	p.writeStatus(w)
}

func (p *Preview) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p.player.Pause()
	p.writeStatus(w)
}

func (p *Preview) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p.player.Stop()
	p.writeStatus(w)
}

func (p *Preview) handleStatus(w http.ResponseWriter, r *http.Request) {
	p.writeStatus(w)
}

func (p *Preview) writeStatus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p.status())
}
