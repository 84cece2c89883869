// Package server is the browser front end. Each websocket connection is a
// session with its own viewer over the shared packed buffers; the page
// receives the buffers once and then one frame message per tick, and
// sends UI events back as JSON.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/app"
	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/logger"
)

//go:embed web
var webFS embed.FS

// ErrTooManySessions is returned when MaxSessions are already open.
var ErrTooManySessions = errors.New("server: too many sessions")

// Config holds server settings.
type Config struct {
	Addr          string
	TickRate      int
	MaxSessions   int
	WriteTimeout  time.Duration
	AllowedOrigin string
}

// Server serves the page, the layer textures and the websocket sessions.
type Server struct {
	cfg     Config
	globe   *app.Globe
	buffers []byte

	texMu      sync.RWMutex
	textures   map[texture.Layer][]byte // PNG
	texVersion uint64

	mu       sync.Mutex
	sessions map[*session]struct{}
	wg       sync.WaitGroup

	upgrader websocket.Upgrader
	log      *zap.Logger
}

// New creates a server over globe. The packed buffers are encoded once
// and shared by every session.
func New(cfg Config, globe *app.Globe) (*Server, error) {
	if cfg.TickRate <= 0 {
		return nil, fmt.Errorf("server: tick rate must be positive, got %d", cfg.TickRate)
	}
	buffers, err := EncodeBuffers(globe.Writer)
	if err != nil {
		return nil, fmt.Errorf("encoding buffers: %w", err)
	}
	s := &Server{
		cfg:      cfg,
		globe:    globe,
		buffers:  buffers,
		textures: make(map[texture.Layer][]byte),
		sessions: make(map[*session]struct{}),
		log:      logger.Named("server"),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s, nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.cfg.AllowedOrigin == "" {
		return true
	}
	return r.Header.Get("Origin") == s.cfg.AllowedOrigin
}

// SetTexture publishes img for a layer. Sessions opened afterwards are
// told to fetch it.
func (s *Server) SetTexture(l texture.Layer, img *image.RGBA) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding %s: %w", l, err)
	}
	s.texMu.Lock()
	s.textures[l] = buf.Bytes()
	s.texVersion++
	s.texMu.Unlock()
	s.log.Info("texture published", zap.Stringer("layer", l), zap.Int("bytes", buf.Len()))
	return nil
}

// textureURLs lists the layers currently published and the version of
// that set. URLs change with the version so browsers refetch reloads.
func (s *Server) textureURLs() (map[string]string, uint64) {
	s.texMu.RLock()
	defer s.texMu.RUnlock()
	out := make(map[string]string, len(s.textures))
	for l := range s.textures {
		out[l.String()] = fmt.Sprintf("/textures/%s?v=%d", l, s.texVersion)
	}
	return out, s.texVersion
}

func (s *Server) textureVersion() uint64 {
	s.texMu.RLock()
	defer s.texMu.RUnlock()
	return s.texVersion
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	static, _ := fs.Sub(webFS, "web")
	mux.Handle("/", http.FileServer(http.FS(static)))
	mux.HandleFunc("/textures/", s.serveTexture)
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok %d sessions\n", s.Sessions())
	})
	return mux
}

func (s *Server) serveTexture(w http.ResponseWriter, r *http.Request) {
	l, err := texture.ParseLayer(strings.TrimPrefix(r.URL.Path, "/textures/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.texMu.RLock()
	data, ok := s.textures[l]
	s.texMu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=3600")
	w.Write(data)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxSessions > 0 && s.Sessions() >= s.cfg.MaxSessions {
		http.Error(w, ErrTooManySessions.Error(), http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	v, err := s.globe.NewViewer()
	if err != nil {
		s.log.Error("creating viewer", zap.Error(err))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "viewer unavailable"))
		conn.Close()
		return
	}

	sess := newSession(s, conn, v)
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
	s.wg.Add(1)

	defer s.wg.Done()

	s.log.Info("session opened", zap.String("remote", r.RemoteAddr), zap.Int("sessions", s.Sessions()))
	err = sess.run(r.Context())
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	s.log.Info("session closed", zap.String("remote", r.RemoteAddr), zap.Error(err))
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ListenAndServe serves until ctx is cancelled, then shuts down and
// closes every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeSessions()
	s.wg.Wait()
	return err
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sess := range s.sessions {
		sess.close()
	}
}
