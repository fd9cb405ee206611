package runtime

import (
	"context"
	"log/slog"

	"github.com/vango-dev/reflow/pkg/view"
)

// Options configures a Runtime.
type Options struct {
	// Logger receives runtime logs. Default: slog.Default().
	Logger *slog.Logger

	// Observer receives action, render and task events. Default: NopObserver.
	Observer Observer

	// IDs names handlers. Default: view.NewRandomIDs().
	IDs view.IDSource

	// Bridge runs deferred tasks. Default: the scheduler when it implements
	// TaskBridge, otherwise a goroutine that resumes through the scheduler.
	Bridge TaskBridge

	// Context is the parent of the instance context handed to tasks.
	// Default: context.Background().
	Context context.Context
}

// Option configures a Runtime.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithObserver sets the observer.
func WithObserver(obs Observer) Option {
	return func(o *Options) {
		o.Observer = obs
	}
}

// WithIDs sets the handler id source.
func WithIDs(ids view.IDSource) Option {
	return func(o *Options) {
		o.IDs = ids
	}
}

// WithBridge sets the task bridge.
func WithBridge(b TaskBridge) Option {
	return func(o *Options) {
		o.Bridge = b
	}
}

// WithContext sets the parent context of the instance.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		o.Context = ctx
	}
}

func defaultOptions() Options {
	return Options{
		Logger:   slog.Default(),
		Observer: NopObserver{},
		Context:  context.Background(),
	}
}
