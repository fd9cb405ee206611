package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/reflow/pkg/protocol"
	"github.com/vango-dev/reflow/pkg/runtime"
	"github.com/vango-dev/reflow/pkg/vdom"
	"github.com/vango-dev/reflow/pkg/view"
)

// ErrSessionClosed is returned when writing to a closed session.
var ErrSessionClosed = errors.New("server: session closed")

// Session is one WebSocket connection and the application instance it
// drives. The instance runs on the session's loop; the read loop only posts
// to it.
type Session struct {
	// Identity
	ID        string
	CreatedAt time.Time

	// Connection
	conn   *websocket.Conn
	mu     sync.Mutex // Protects conn writes
	closed atomic.Bool
	done   chan struct{}
	once   sync.Once

	// Sequence numbers
	sendSeq atomic.Uint64 // Last patch sequence sent
	recvSeq atomic.Uint64 // Last event sequence received

	// Instance
	loop *runtime.Loop
	inst Instance

	config  *SessionConfig
	logger  *slog.Logger
	hooks   Hooks
	onClose func(*Session)

	lastEvent atomic.Int64 // Unix nanoseconds

	// Stats
	eventCount    atomic.Uint64
	patchCount    atomic.Uint64
	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
}

// SessionStats is a snapshot of a session's counters.
type SessionStats struct {
	ID            string
	CreatedAt     time.Time
	LastEvent     time.Time
	Events        uint64
	Patches       uint64
	BytesSent     uint64
	BytesReceived uint64
}

func newSession(conn *websocket.Conn, config *SessionConfig, logger *slog.Logger, hooks Hooks) *Session {
	id := generateSessionID()
	now := time.Now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		conn:      conn,
		done:      make(chan struct{}),
		config:    config,
		logger:    logger.With("session_id", id),
		hooks:     hooks,
	}
	s.loop = runtime.NewLoop(s.logger)
	s.lastEvent.Store(now.UnixNano())
	return s
}

// generateSessionID returns 16 random bytes, hex encoded.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("server: crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// attach creates the session's instance from prog.
func (s *Session) attach(prog Program, opts ...runtime.Option) {
	opts = append([]runtime.Option{runtime.WithLogger(s.logger)}, opts...)
	s.inst = prog.NewInstance(s, s.loop, opts...)
}

// Start runs the session until the connection or ctx ends.
// It must be called after the handshake and attach.
func (s *Session) Start(ctx context.Context) {
	s.hooks.SessionOpened()
	go s.ReadLoop()
	go s.WriteLoop()
	go s.run(ctx)
}

// run drives the loop. After Run returns the loop is closed, so the instance
// is closed from here without racing it.
func (s *Session) run(ctx context.Context) {
	defer s.Close()

	s.loop.Post(s.inst.Start)
	err := s.loop.Run(ctx)
	s.inst.Close()

	if err != nil {
		s.logger.Error("instance failed", "error", err)
		s.SendError(protocol.NewFatalError(protocol.ErrHandlerPanic, "application error"))
		return
	}
	if ctx.Err() != nil {
		s.SendClose(protocol.CloseServerShutdown)
	}
}

// Apply implements runtime.Backend. Each diff becomes one Patches frame.
func (s *Session) Apply(d vdom.Diff) {
	seq := s.sendSeq.Add(1)
	payload := protocol.EncodePatches(&protocol.PatchesMessage{Seq: seq, Diff: &d})
	n, err := s.writeFrame(protocol.NewFrame(protocol.FramePatches, payload))
	if err != nil {
		if !errors.Is(err, ErrSessionClosed) {
			s.logger.Error("write error", "error", err)
		}
		s.Close()
		return
	}
	s.patchCount.Add(1)
	s.hooks.PatchSent(n)
}

// ReadLoop reads frames until the connection fails or the session closes.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.bytesReceived.Add(uint64(len(msg)))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.SendError(protocol.NewError(protocol.ErrInvalidFrame, err.Error()))
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEvent(frame.Payload)

		case protocol.FrameControl:
			if !s.handleControl(frame.Payload) {
				return
			}

		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

// handleEvent posts a handler firing to the loop.
func (s *Session) handleEvent(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Warn("event decode error", "error", err)
		s.SendError(protocol.NewError(protocol.ErrInvalidEvent, err.Error()))
		return
	}

	if last := s.recvSeq.Load(); ev.Seq != 0 && ev.Seq <= last {
		s.logger.Debug("duplicate event dropped", "seq", ev.Seq, "last", last)
		return
	}
	s.recvSeq.Store(ev.Seq)

	if s.loop.Pending() >= s.config.MaxEventQueue {
		s.logger.Warn("event queue full", "handler_id", ev.HandlerID)
		s.SendError(protocol.NewError(protocol.ErrRateLimited, "event queue full"))
		return
	}

	s.eventCount.Add(1)
	s.lastEvent.Store(time.Now().UnixNano())
	s.hooks.EventReceived()

	id, arg := ev.HandlerID, view.Arg(ev.Arg)
	s.loop.Post(func() {
		s.inst.Invoke(id, arg)
	})
}

// handleControl answers control frames. It returns false when the client
// asked to close.
func (s *Session) handleControl(payload []byte) bool {
	c, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Warn("control decode error", "error", err)
		return true
	}

	switch c.Type {
	case protocol.ControlPing:
		s.sendControl(protocol.NewPong(c.Timestamp))
	case protocol.ControlPong:
		rtt := time.Since(time.UnixMilli(int64(c.Timestamp)))
		s.logger.Debug("pong", "rtt", rtt)
	case protocol.ControlClose:
		s.logger.Debug("client closed session", "reason", c.Reason)
		return false
	}
	return true
}

// WriteLoop sends heartbeats and enforces the idle timeout.
// It runs until the session is closed.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.idle() {
				s.logger.Info("session idle, closing")
				s.SendClose(protocol.CloseIdleTimeout)
				s.Close()
				return
			}
			ping := protocol.NewPing(uint64(time.Now().UnixMilli()))
			if err := s.sendControl(ping); err != nil {
				return
			}

		case <-s.done:
			return
		}
	}
}

func (s *Session) idle() bool {
	if s.config.IdleTimeout <= 0 {
		return false
	}
	return time.Since(time.Unix(0, s.lastEvent.Load())) > s.config.IdleTimeout
}

func (s *Session) sendControl(c *protocol.Control) error {
	_, err := s.writeFrame(protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(c)))
	if err != nil && !errors.Is(err, ErrSessionClosed) {
		s.logger.Error("control write error", "type", c.Type, "error", err)
	}
	return err
}

// SendClose tells the client the session is ending. It does not close the
// session.
func (s *Session) SendClose(reason protocol.CloseReason) {
	f := protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(protocol.NewClose(reason)))
	f.Flags = protocol.FlagFinal
	s.writeFrame(f)
}

// SendError sends an Error frame. Fatal errors close the session afterwards.
func (s *Session) SendError(em *protocol.ErrorMessage) {
	f := protocol.NewFrame(protocol.FrameError, protocol.EncodeErrorMessage(em))
	if em.Fatal {
		f.Flags = protocol.FlagFinal
	}
	if _, err := s.writeFrame(f); err != nil && !errors.Is(err, ErrSessionClosed) {
		s.logger.Error("error write failed", "code", em.Code, "error", err)
	}
	if em.Fatal {
		s.Close()
	}
}

// writeFrame writes f and returns the number of bytes sent.
func (s *Session) writeFrame(f *protocol.Frame) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return 0, ErrSessionClosed
	}

	data := f.Encode()
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return 0, err
	}
	s.bytesSent.Add(uint64(len(data)))
	return len(data), nil
}

// Close ends the session. It is safe to call more than once and from any
// goroutine, including the loop.
func (s *Session) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		s.mu.Unlock()

		close(s.done)
		s.loop.Close()
		s.conn.Close()

		s.hooks.SessionClosed(time.Since(s.CreatedAt))
		if s.onClose != nil {
			s.onClose(s)
		}
		s.logger.Info("session closed",
			"events", s.eventCount.Load(),
			"patches", s.patchCount.Load(),
			"bytes_sent", s.bytesSent.Load())
	})
}

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		LastEvent:     time.Unix(0, s.lastEvent.Load()),
		Events:        s.eventCount.Load(),
		Patches:       s.patchCount.Load(),
		BytesSent:     s.bytesSent.Load(),
		BytesReceived: s.bytesReceived.Load(),
	}
}
