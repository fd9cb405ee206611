package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/vango-dev/reflow/pkg/protocol"
	"github.com/vango-dev/reflow/pkg/render"
	"github.com/vango-dev/reflow/pkg/runtime"
)

// Server serves a Program over HTTP and WebSocket.
type Server struct {
	config   *ServerConfig
	program  Program
	router   chi.Router
	upgrader websocket.Upgrader
	sessions *SessionManager
	renderer *render.Renderer

	logger   *slog.Logger
	observer runtime.Observer
	hooks    Hooks

	ctx        context.Context
	cancel     context.CancelFunc
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Sessions derive theirs from it.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithObserver sets the runtime observer shared by every instance.
func WithObserver(obs runtime.Observer) Option {
	return func(s *Server) {
		s.observer = obs
	}
}

// WithHooks sets the transport hooks.
func WithHooks(h Hooks) Option {
	return func(s *Server) {
		s.hooks = h
	}
}

// New creates a server for prog. A nil config uses DefaultServerConfig.
func New(prog Program, config *ServerConfig, opts ...Option) *Server {
	config = config.withDefaults()

	s := &Server{
		config:   config,
		program:  prog,
		renderer: render.NewRenderer(render.RendererConfig{}),
		logger:   slog.Default(),
		hooks:    NopHooks{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     config.CheckOrigin,
	}
	s.sessions = NewSessionManager(config.SessionConfig, config.MaxSessions, s.hooks, s.logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Get("/", s.handlePage)
	r.Get("/healthz", s.handleHealth)
	r.Get(config.LivePath, s.HandleWebSocket)
	s.router = r

	return s
}

// Router returns the router so that callers can mount extra routes, such as
// a metrics handler.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the effective configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// handlePage renders the initial state as a complete document.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := render.PageData{
		Body:     s.program.Initial(),
		Title:    s.config.Title,
		LivePath: s.config.LivePath,
	}
	if s.config.ClientScript != "" {
		page.Scripts = []render.ScriptTag{{Src: s.config.ClientScript, Defer: true}}
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderPage(&buf, page); err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{Status: "ok", Sessions: s.sessions.Count()})
}

// HandleWebSocket upgrades the request, performs the hello exchange and
// starts a session.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sc := s.config.SessionConfig
	conn.SetReadLimit(sc.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(sc.HandshakeTimeout))

	hello, status := s.readClientHello(conn)
	if status != protocol.HandshakeOK {
		s.rejectHandshake(conn, status)
		return
	}

	session, err := s.sessions.Create(conn)
	if err != nil {
		s.logger.Warn("session rejected", "error", err)
		s.rejectHandshake(conn, protocol.HandshakeServerBusy)
		return
	}

	session.attach(s.program, runtime.WithObserver(s.observer), runtime.WithContext(s.ctx))

	reply := &protocol.ServerHello{
		Status:     protocol.HandshakeOK,
		SessionID:  session.ID,
		ServerTime: uint64(time.Now().UnixMilli()),
	}
	if _, err := session.writeFrame(protocol.NewFrame(protocol.FrameHello, protocol.EncodeServerHello(reply))); err != nil {
		session.logger.Error("server hello failed", "error", err)
		session.Close()
		return
	}

	session.logger.Info("session started",
		"path", hello.Path,
		"client_version", hello.Version.String(),
		"remote", r.RemoteAddr)
	session.Start(s.ctx)
}

func (s *Server) readClientHello(conn *websocket.Conn) (*protocol.ClientHello, protocol.HandshakeStatus) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		s.logger.Warn("handshake read failed", "error", err)
		return nil, protocol.HandshakeInvalidFormat
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil || frame.Type != protocol.FrameHello {
		s.logger.Warn("handshake frame invalid", "error", err)
		return nil, protocol.HandshakeInvalidFormat
	}
	hello, err := protocol.DecodeClientHello(frame.Payload)
	if err != nil {
		s.logger.Warn("client hello invalid", "error", err)
		return nil, protocol.HandshakeInvalidFormat
	}
	if !protocol.CurrentVersion.Compatible(hello.Version) {
		s.logger.Warn("protocol version mismatch",
			"client", hello.Version.String(),
			"server", protocol.CurrentVersion.String())
		return nil, protocol.HandshakeVersionMismatch
	}
	return hello, protocol.HandshakeOK
}

func (s *Server) rejectHandshake(conn *websocket.Conn, status protocol.HandshakeStatus) {
	s.hooks.HandshakeFailed(status)
	reply := protocol.EncodeServerHello(&protocol.ServerHello{
		Status:     status,
		ServerTime: uint64(time.Now().UnixMilli()),
	})
	frame := protocol.NewFrame(protocol.FrameHello, reply)
	frame.Flags = protocol.FlagFinal

	conn.SetWriteDeadline(time.Now().Add(s.config.SessionConfig.WriteTimeout))
	conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
	conn.Close()
}

// ListenAndServe serves on config.Address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address, "live", s.config.LivePath)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.sessions.Shutdown(protocol.CloseServerShutdown)
	s.cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
