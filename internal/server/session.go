package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/willbeason/multibrot/pkg/plane"
)

// Rendered precedes every PNG frame and describes it.
type Rendered struct {
	Mode       string `json:"mode"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	C          string `json:"c"`
	Background string `json:"background"`
}

// handleWebsocket runs an interactive session. Each text frame is a JSON
// RenderRequest. A new request cancels the render in flight, so only the latest
// request is ever answered with a Rendered text frame followed by a binary PNG.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.OriginPatterns,
	})
	if err != nil {
		s.log.Warn("websocket accept", "error", err)
		return
	}

	sess := &session{
		srv:  s,
		conn: conn,
		log:  s.log.With("session_id", uuid.NewString()),
	}

	s.metrics.SessionOpened()
	defer s.metrics.SessionClosed()

	sess.log.Info("session opened", "remote", r.RemoteAddr)
	err = sess.run(r.Context())

	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		sess.log.Info("session closed")
	default:
		sess.log.Warn("session ended", "error", err)
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// session serializes renders on one connection. start and stop are only called
// from the read loop in run.
type session struct {
	srv  *Server
	conn *websocket.Conn
	log  *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}

	// writeMu keeps a Rendered frame and its PNG adjacent.
	writeMu sync.Mutex
}

func (s *session) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.stop()

	for {
		typ, data, err := s.conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			s.sendError(ctx, errors.New("requests must be JSON text frames"))
			continue
		}

		var req RenderRequest
		if err := json.Unmarshal(data, &req); err != nil {
			s.sendError(ctx, err)
			continue
		}

		s.start(ctx, req)
	}
}

// start cancels the render in flight, waits for it to stop writing, then
// begins rendering req.
func (s *session) start(ctx context.Context, req RenderRequest) {
	s.stop()

	j, err := req.resolve(s.srv.cfg)
	if err != nil {
		s.sendError(ctx, err)
		return
	}

	rctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done

	go func() {
		defer close(done)

		data, err := s.srv.renderPNG(rctx, j, s.log)
		if rctx.Err() != nil {
			// Superseded by a newer request or the session is closing.
			return
		}
		if err != nil {
			s.sendError(ctx, err)
			return
		}

		// Writes use the session context: cancelling a write mid-frame closes the connection.
		s.sendImage(ctx, j, data)
	}()
}

// sendImage writes the Rendered frame for j followed by its PNG.
func (s *session) sendImage(ctx context.Context, j job, data []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	outside, _ := j.params.Colors.Hex()
	err := wsjson.Write(ctx, s.conn, Rendered{
		Mode:       j.params.Mode.String(),
		Width:      j.width,
		Height:     j.height,
		C:          plane.Label(j.params.C),
		Background: outside,
	})
	if err != nil {
		return
	}

	err = s.conn.Write(ctx, websocket.MessageBinary, data)
	if err != nil {
		s.log.Warn("sending image", "error", err)
	}
}

func (s *session) stop() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

func (s *session) sendError(ctx context.Context, err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if werr := wsjson.Write(ctx, s.conn, errorResponse{Error: err.Error()}); werr != nil {
		s.log.Debug("sending error", "error", werr)
	}
}
