package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SessionConfig holds configuration for individual sessions.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message from the client.
	// Heartbeat pongs count as messages.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a frame.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// IdleTimeout closes a session that received no event for this long.
	// 0 disables it.
	// Default: 5 minutes.
	IdleTimeout time.Duration

	// HandshakeTimeout is the maximum time for the hello exchange.
	// Default: 10 seconds.
	HandshakeTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxEventQueue is the number of queued loop items above which incoming
	// events are rejected as rate limited.
	// Default: 256.
	MaxEventQueue int
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       5 * time.Minute,
		HandshakeTimeout:  10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024,
		MaxEventQueue:     256,
	}
}

// Clone returns a copy of the SessionConfig.
func (c *SessionConfig) Clone() *SessionConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// ServerConfig holds configuration for the HTTP/WebSocket server.
type ServerConfig struct {
	// Address is the address to listen on.
	// Default: ":8080".
	Address string

	// LivePath is the WebSocket endpoint.
	// Default: "/live".
	LivePath string

	// Title is the document title of the server-rendered page.
	Title string

	// ClientScript, when set, is referenced from the rendered page.
	ClientScript string

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// CheckOrigin validates the WebSocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// SessionConfig is the configuration for individual sessions.
	// Default: DefaultSessionConfig().
	SessionConfig *SessionConfig

	// MaxSessions is the maximum number of concurrent sessions.
	// 0 means no limit.
	MaxSessions int

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 10 seconds.
	ReadHeaderTimeout time.Duration
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":8080",
		LivePath:          "/live",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       SameOriginCheck,
		SessionConfig:     DefaultSessionConfig(),
		ShutdownTimeout:   30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Clone returns a copy of the ServerConfig.
func (c *ServerConfig) Clone() *ServerConfig {
	if c == nil {
		return nil
	}
	clone := *c
	clone.SessionConfig = c.SessionConfig.Clone()
	return &clone
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		return defaults
	}
	out := c.Clone()
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.LivePath == "" {
		out.LivePath = defaults.LivePath
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.SessionConfig == nil {
		out.SessionConfig = defaults.SessionConfig
	} else {
		sc, d := out.SessionConfig, defaults.SessionConfig
		if sc.ReadTimeout == 0 {
			sc.ReadTimeout = d.ReadTimeout
		}
		if sc.WriteTimeout == 0 {
			sc.WriteTimeout = d.WriteTimeout
		}
		if sc.HandshakeTimeout == 0 {
			sc.HandshakeTimeout = d.HandshakeTimeout
		}
		if sc.HeartbeatInterval == 0 {
			sc.HeartbeatInterval = d.HeartbeatInterval
		}
		if sc.MaxMessageSize == 0 {
			sc.MaxMessageSize = d.MaxMessageSize
		}
		if sc.MaxEventQueue == 0 {
			sc.MaxEventQueue = d.MaxEventQueue
		}
	}
	return out
}

// Validate reports configuration errors.
func (c *ServerConfig) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.LivePath, "/") {
		errs = append(errs, fmt.Errorf("live path %q must start with /", c.LivePath))
	}
	if c.LivePath == "/" || c.LivePath == "/healthz" {
		errs = append(errs, fmt.Errorf("live path %q collides with a built-in route", c.LivePath))
	}
	if c.MaxSessions < 0 {
		errs = append(errs, errors.New("max sessions must not be negative"))
	}
	if sc := c.SessionConfig; sc != nil {
		if sc.HeartbeatInterval >= sc.ReadTimeout {
			errs = append(errs, fmt.Errorf("heartbeat interval %s must be shorter than read timeout %s",
				sc.HeartbeatInterval, sc.ReadTimeout))
		}
		if sc.MaxMessageSize < 64 {
			errs = append(errs, fmt.Errorf("max message size %d is too small", sc.MaxMessageSize))
		}
	}
	return errors.Join(errs...)
}

// SameOriginCheck accepts requests without an Origin header and requests
// whose Origin host matches the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && u.Host == r.Host
}
