package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ErrLoopClosed is returned when work is posted to a closed Loop.
var ErrLoopClosed = errors.New("runtime: loop closed")

// Loop is a single-threaded executor for one instance. Functions posted from
// any goroutine run one at a time, in posting order, on the goroutine that
// calls Run.
//
// Loop implements Scheduler and TaskBridge, so a Runtime driven by a Loop
// needs no other synchronization.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed bool
	logger *slog.Logger
	tasks  sync.WaitGroup
}

// NewLoop creates an idle loop.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post queues fn. It never blocks and reports false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// ScheduleRender implements Scheduler.
func (l *Loop) ScheduleRender(fn func()) {
	if !l.Post(fn) {
		l.logger.Debug("render request after close dropped")
	}
}

// Spawn implements TaskBridge. work runs on its own goroutine and its
// continuation is posted back to the loop.
func (l *Loop) Spawn(ctx context.Context, work func(ctx context.Context) func()) {
	l.tasks.Add(1)
	go func() {
		defer l.tasks.Done()
		resume := work(ctx)
		if resume != nil && !l.Post(resume) {
			l.logger.Debug("task result after close dropped")
		}
	}()
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopClosed
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted functions until ctx is cancelled or Close is called.
// A panic in a posted function stops the loop and is returned as an error.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer l.Close()

	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			if err := l.run(fn); err != nil {
				l.logger.Error("loop stopped", "error", err)
				return err
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-l.done:
			return nil
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) run(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("runtime: panic in loop: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
	return nil
}

// Close stops the loop and discards queued functions. It is safe to call
// more than once.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.queue = nil
	close(l.done)
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Pending returns the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Wait blocks until every spawned task has returned.
func (l *Loop) Wait() {
	l.tasks.Wait()
}
