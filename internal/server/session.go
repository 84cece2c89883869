package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/viewer"
)

const (
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	maxEventSize = 4096
)

// session is one browser connection with its own viewer. Only run's
// goroutine touches the viewer.
type session struct {
	srv    *Server
	conn   *websocket.Conn
	viewer *viewer.Viewer

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}

	log *zap.Logger
}

func newSession(srv *Server, conn *websocket.Conn, v *viewer.Viewer) *session {
	return &session{
		srv:    srv,
		conn:   conn,
		viewer: v,
		done:   make(chan struct{}),
		log:    srv.log.With(zap.String("remote", conn.RemoteAddr().String())),
	}
}

// run sends the init and buffers messages, then one frame per tick until
// the peer goes away, ctx ends or the server closes the session.
func (s *session) run(ctx context.Context) error {
	defer s.close()

	urls, texVersion := s.srv.textureURLs()
	if err := s.writeJSON(&InitMessage{
		Type:     TypeInit,
		Meshes:   s.srv.globe.Writer.Meshes(),
		Capacity: s.srv.globe.Writer.Capacity(),
		Textures: urls,
		Controls: s.viewer.Controls(),
		TickRate: s.srv.cfg.TickRate,
	}); err != nil {
		return err
	}
	if err := s.write(websocket.BinaryMessage, s.srv.buffers); err != nil {
		return err
	}

	events := make(chan ClientMessage, 64)
	readErr := make(chan error, 1)
	go s.readLoop(events, readErr)

	interval := time.Second / time.Duration(s.srv.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		case msg := <-events:
			if msg.Type == TypePick {
				if err := s.pick(&msg); err != nil {
					return err
				}
				continue
			}
			if err := msg.Apply(s.viewer); err != nil {
				s.log.Debug("event rejected", zap.String("type", msg.Type), zap.Error(err))
				if err := s.writeJSON(&ErrorMessage{Type: TypeError, Message: err.Error()}); err != nil {
					return err
				}
			}
		case now := <-ticker.C:
			if s.srv.textureVersion() != texVersion {
				urls, texVersion = s.srv.textureURLs()
				if err := s.writeJSON(&TexturesMessage{Type: TypeTextures, Textures: urls}); err != nil {
					return err
				}
			}
			fc := s.viewer.Tick(now.Sub(last))
			last = now
			if err := s.writeJSON(&FrameMessage{
				Type:     TypeFrame,
				Frame:    &fc,
				Controls: s.viewer.Controls(),
				FPS:      s.viewer.FPS(),
			}); err != nil {
				return err
			}
		case <-ping.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (s *session) pick(msg *ClientMessage) error {
	reply := PickMessage{Type: TypePick}
	if res, ok := s.viewer.Pick(msg.X, msg.Y, float32(msg.Width), float32(msg.Height)); ok {
		reply.Hit = true
		reply.Result = &res
	}
	return s.writeJSON(&reply)
}

func (s *session) readLoop(events chan<- ClientMessage, errc chan<- error) {
	s.conn.SetReadLimit(maxEventSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			errc <- err
			return
		}
		select {
		case events <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *session) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.setWriteDeadline()
	return s.conn.WriteJSON(v)
}

func (s *session) write(kind int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.setWriteDeadline()
	return s.conn.WriteMessage(kind, data)
}

func (s *session) setWriteDeadline() {
	if t := s.srv.cfg.WriteTimeout; t > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(t))
	}
}

// close ends the session. Safe to call more than once and from any
// goroutine.
func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		err := s.write(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"))
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			s.log.Debug("close frame not sent", zap.Error(err))
		}
		s.conn.Close()
	})
}
