// Package client is a Go implementation of the browser side of a reflow
// session. It performs the hello exchange, applies every Patches frame to an
// in-memory dom.Document and sends handler firings back as Event frames.
//
// It is used by tests and by the watch command.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/reflow/pkg/dom"
	"github.com/vango-dev/reflow/pkg/protocol"
	"github.com/vango-dev/reflow/pkg/vdom"
	"github.com/vango-dev/reflow/pkg/view"
)

var (
	// ErrHandshake is returned by Dial when the server rejects the hello.
	ErrHandshake = errors.New("client: handshake rejected")

	// ErrClosed is returned once the connection has ended.
	ErrClosed = errors.New("client: connection closed")
)

// Options configures a Client.
type Options struct {
	// Logger receives client logs. Default: slog.Default().
	Logger *slog.Logger

	// Path is reported to the server in the hello. Default: "/".
	Path string

	// Dialer dials the WebSocket. Default: websocket.DefaultDialer.
	Dialer *websocket.Dialer

	// OnPatch is called on the reader goroutine after each Patches frame is
	// applied, outside the document lock. Diff is nil for an empty frame.
	OnPatch func(seq uint64, d *vdom.Diff)

	// HandshakeTimeout bounds the hello exchange. Default: 10 seconds.
	HandshakeTimeout time.Duration
}

// Option configures a Client.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithPath sets the path reported in the hello.
func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

// WithDialer sets the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(o *Options) { o.Dialer = d }
}

// WithPatchHook sets OnPatch.
func WithPatchHook(fn func(seq uint64, d *vdom.Diff)) Option {
	return func(o *Options) { o.OnPatch = fn }
}

// Client is a live session seen from the client side.
type Client struct {
	// SessionID is assigned by the server.
	SessionID string

	conn    *websocket.Conn
	writeMu sync.Mutex
	sendSeq atomic.Uint64

	mu      sync.Mutex // Guards doc, seq, updated, err
	doc     *dom.Document
	seq     uint64
	updated chan struct{}
	err     error

	done    chan struct{}
	opts    Options
	logger  *slog.Logger
	closing atomic.Bool
}

// Dial connects to url, performs the hello exchange and starts reading.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	o := Options{
		Logger:           slog.Default(),
		Path:             "/",
		Dialer:           websocket.DefaultDialer,
		HandshakeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	conn, _, err := o.Dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		doc:     dom.New(),
		updated: make(chan struct{}),
		done:    make(chan struct{}),
		opts:    o,
		logger:  o.Logger,
	}
	if err := c.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	c.logger = c.logger.With("session_id", c.SessionID)

	go c.readLoop()
	return c, nil
}

func (c *Client) handshake() error {
	hello := &protocol.ClientHello{Version: protocol.CurrentVersion, Path: c.opts.Path}
	if err := c.writeFrame(protocol.NewFrame(protocol.FrameHello, protocol.EncodeClientHello(hello))); err != nil {
		return fmt.Errorf("client: send hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(c.opts.HandshakeTimeout))
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("client: read hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		return fmt.Errorf("client: read hello: %w", err)
	}
	if frame.Type != protocol.FrameHello {
		return fmt.Errorf("client: expected hello, got %s frame", frame.Type)
	}
	reply, err := protocol.DecodeServerHello(frame.Payload)
	if err != nil {
		return fmt.Errorf("client: read hello: %w", err)
	}
	if reply.Status != protocol.HandshakeOK {
		return fmt.Errorf("%w: %s", ErrHandshake, reply.Status)
	}
	c.SessionID = reply.SessionID
	return nil
}

func (c *Client) readLoop() {
	err := c.read()
	if c.closing.Load() {
		err = ErrClosed
	}

	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	close(c.done)
	c.conn.Close()
}

func (c *Client) read() error {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrClosed
			}
			return err
		}
		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			return err
		}

		switch frame.Type {
		case protocol.FramePatches:
			if err := c.applyPatches(frame.Payload); err != nil {
				return err
			}

		case protocol.FrameControl:
			ctl, err := protocol.DecodeControl(frame.Payload)
			if err != nil {
				return err
			}
			switch ctl.Type {
			case protocol.ControlPing:
				c.writeFrame(protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(protocol.NewPong(ctl.Timestamp))))
			case protocol.ControlClose:
				c.logger.Debug("server closed session", "reason", ctl.Reason)
				return ErrClosed
			}

		case protocol.FrameError:
			em, err := protocol.DecodeErrorMessage(frame.Payload)
			if err != nil {
				return err
			}
			if em.Fatal {
				return em
			}
			c.logger.Warn("server error", "code", em.Code, "message", em.Message)

		default:
			c.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

func (c *Client) applyPatches(payload []byte) error {
	pm, err := protocol.DecodePatches(payload)
	if err != nil {
		return err
	}
	if err := c.apply(pm); err != nil {
		return err
	}
	if c.opts.OnPatch != nil {
		c.opts.OnPatch(pm.Seq, pm.Diff)
	}
	return nil
}

func (c *Client) apply(pm *protocol.PatchesMessage) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			ae, ok := r.(*dom.ApplyError)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("client: patch %d: %w", pm.Seq, ae)
		}
	}()

	if pm.Seq <= c.seq {
		return fmt.Errorf("client: patch sequence %d after %d", pm.Seq, c.seq)
	}
	if pm.Diff != nil {
		c.doc.Apply(*pm.Diff)
	}
	c.seq = pm.Seq
	close(c.updated)
	c.updated = make(chan struct{})
	return nil
}

// Invoke sends a handler firing. It implements dom.Invoker, so dom.Fire can
// target the client directly.
func (c *Client) Invoke(id string, arg view.Arg) bool {
	return c.Send(id, arg) == nil
}

// Send sends an Event frame for handler id.
func (c *Client) Send(id string, arg view.Arg) error {
	ev := &protocol.Event{Seq: c.sendSeq.Add(1), HandlerID: id, Arg: arg}
	return c.writeFrame(protocol.NewFrame(protocol.FrameEvent, protocol.EncodeEvent(ev)))
}

// Fire finds the first node matching match and fires its handler for kind.
func (c *Client) Fire(match func(*dom.Node) bool, kind string, arg view.Arg) error {
	c.mu.Lock()
	n, ok := c.doc.Find(match)
	var id string
	if ok {
		id, ok = n.Handler(kind)
	}
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("client: no %s handler on matching node", kind)
	}
	return c.Send(id, arg)
}

func (c *Client) writeFrame(f *protocol.Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, f.Encode())
}

// View runs fn with the document while no patch is being applied.
func (c *Client) View(fn func(doc *dom.Document)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.doc)
}

// Seq returns the sequence number of the last applied patch.
func (c *Client) Seq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// WaitFor blocks until cond holds for the document, the connection ends or
// ctx is done. cond runs with the document locked.
func (c *Client) WaitFor(ctx context.Context, cond func(doc *dom.Document) bool) error {
	for {
		c.mu.Lock()
		if cond(c.doc) {
			c.mu.Unlock()
			return nil
		}
		updated, err := c.updated, c.err
		c.mu.Unlock()
		if err != nil {
			return err
		}

		select {
		case <-updated:
		case <-c.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// WaitSeq blocks until the patch with sequence seq has been applied.
func (c *Client) WaitSeq(ctx context.Context, seq uint64) error {
	return c.WaitFor(ctx, func(*dom.Document) bool { return c.seq >= seq })
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns why the connection ended, or nil while it is open.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close sends a close control frame and closes the connection.
func (c *Client) Close() error {
	if !c.closing.CompareAndSwap(false, true) {
		return nil
	}
	c.writeFrame(protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(protocol.NewClose(protocol.CloseNormal))))
	c.conn.Close()
	<-c.done
	return nil
}
