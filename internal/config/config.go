package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/server"
)

// FileName is the name of the configuration file.
const FileName = "reflow.yaml"

// Config is the complete reflow.yaml configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`

	// path stores where the config was loaded from.
	path string
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	LivePath        string        `yaml:"live_path"`
	Title           string        `yaml:"title"`
	ClientScript    string        `yaml:"client_script,omitempty"`
	MaxSessions     int           `yaml:"max_sessions"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	SameOrigin      bool          `yaml:"same_origin"`
}

// SessionConfig configures live sessions.
type SessionConfig struct {
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	Heartbeat        time.Duration `yaml:"heartbeat"`
	MaxMessageSize   int64         `yaml:"max_message_size"`
	MaxEventQueue    int           `yaml:"max_event_queue"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	sc := server.DefaultServerConfig()
	ss := sc.SessionConfig
	return &Config{
		Server: ServerConfig{
			Address:         sc.Address,
			LivePath:        sc.LivePath,
			Title:           "reflow",
			ShutdownTimeout: sc.ShutdownTimeout,
			SameOrigin:      true,
		},
		Session: SessionConfig{
			ReadTimeout:      ss.ReadTimeout,
			WriteTimeout:     ss.WriteTimeout,
			IdleTimeout:      ss.IdleTimeout,
			HandshakeTimeout: ss.HandshakeTimeout,
			Heartbeat:        ss.HeartbeatInterval,
			MaxMessageSize:   ss.MaxMessageSize,
			MaxEventQueue:    ss.MaxEventQueue,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "reflow",
		},
		Tracing: TracingConfig{
			Name: "reflow",
		},
	}
}

// LoadFile reads and validates the configuration at path. Fields absent
// from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetailf("No %s found at %s.", FileName, path).
				WithSuggestion("Run 'reflow config > " + FileName + "' to write the defaults")
		}
		return nil, errors.New("E100").Wrap(err)
	}

	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes and validates configuration data. name is used in error
// locations.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, decodeError(err, name)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var lineRe = regexp.MustCompile(`line (\d+): (.*)`)

// decodeError converts a yaml error into a coded error located at the first
// line the decoder complained about.
func decodeError(err error, name string) error {
	msg := err.Error()
	code := "E102"

	if te, ok := err.(*yaml.TypeError); ok && len(te.Errors) > 0 {
		msg = te.Errors[0]
		code = "E101"
		if strings.Contains(msg, "not found in type") {
			code = "E103"
		}
	}

	e := errors.New(code)
	m := lineRe.FindStringSubmatch(msg)
	if m == nil {
		return e.WithDetail(msg)
	}
	line, _ := strconv.Atoi(m[1])
	e.WithDetail(m[2])
	if _, statErr := os.Stat(name); statErr == nil {
		return e.WithLocation(name, line, 0)
	}
	e.Location = &errors.Location{File: name, Line: line}
	return e
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New("E101").WithDetailf(format, args...)
	}

	if !strings.HasPrefix(c.Server.LivePath, "/") {
		return invalid("server.live_path must start with /, got %q", c.Server.LivePath)
	}
	if c.Server.MaxSessions < 0 {
		return invalid("server.max_sessions must not be negative")
	}
	if c.Session.Heartbeat <= 0 || c.Session.ReadTimeout <= c.Session.Heartbeat {
		return invalid("session.heartbeat (%s) must be positive and shorter than session.read_timeout (%s)",
			c.Session.Heartbeat, c.Session.ReadTimeout)
	}
	if c.Session.MaxEventQueue <= 0 {
		return invalid("session.max_event_queue must be positive")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return invalid("%v", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Metrics.Enabled {
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return invalid("metrics.path must start with /, got %q", c.Metrics.Path)
		}
		if c.Metrics.Path == c.Server.LivePath {
			return invalid("metrics.path and server.live_path are both %q", c.Metrics.Path)
		}
	}
	return nil
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// ServerConfig converts the file configuration into a server configuration.
func (c *Config) ServerConfig() *server.ServerConfig {
	sc := server.DefaultServerConfig()
	sc.Address = c.Server.Address
	sc.LivePath = c.Server.LivePath
	sc.Title = c.Server.Title
	sc.ClientScript = c.Server.ClientScript
	sc.MaxSessions = c.Server.MaxSessions
	sc.ShutdownTimeout = c.Server.ShutdownTimeout
	if !c.Server.SameOrigin {
		sc.CheckOrigin = func(*http.Request) bool { return true }
	}

	ss := sc.SessionConfig
	ss.ReadTimeout = c.Session.ReadTimeout
	ss.WriteTimeout = c.Session.WriteTimeout
	ss.IdleTimeout = c.Session.IdleTimeout
	ss.HandshakeTimeout = c.Session.HandshakeTimeout
	ss.HeartbeatInterval = c.Session.Heartbeat
	ss.MaxMessageSize = c.Session.MaxMessageSize
	ss.MaxEventQueue = c.Session.MaxEventQueue
	return sc
}

// Logger builds the logger described by the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
	}
	return level, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Exists reports whether dir contains a configuration file.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil
}

// Find walks up from startDir to the first directory holding a
// configuration file and returns the file's path.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return filepath.Join(dir, FileName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetailf("No %s found in %s or any parent directory.", FileName, startDir)
		}
		dir = parent
	}
}
