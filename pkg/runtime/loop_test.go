package runtime

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/reflow/pkg/view"
)

func startLoop(t *testing.T) (*Loop, <-chan error) {
	t.Helper()
	l := NewLoop(testLogger())
	errc := make(chan error, 1)
	go func() {
		errc <- l.Run(context.Background())
	}()
	t.Cleanup(l.Close)
	return l, errc
}

func TestLoopRunsInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	if len(got) != 100 {
		t.Fatalf("ran %d functions, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestLoopPostFromManyGoroutines(t *testing.T) {
	l, _ := startLoop(t)

	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Post(func() { count++ })
			}
		}()
	}
	wg.Wait()

	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if count != 1000 {
		t.Errorf("count = %d, want 1000", count)
	}
}

func TestLoopPostFromInsideLoop(t *testing.T) {
	l, _ := startLoop(t)

	done := make(chan struct{})
	l.Post(func() {
		l.Post(func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested Post never ran")
	}
}

func TestLoopPanicStopsLoop(t *testing.T) {
	l, errc := startLoop(t)

	l.Post(func() { panic("view exploded") })

	select {
	case err := <-errc:
		if err == nil || !strings.Contains(err.Error(), "view exploded") {
			t.Errorf("Run() error = %v, want panic message", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after panic")
	}

	if l.Post(func() {}) {
		t.Error("Post after stop = true, want false")
	}
}

func TestLoopDoAfterClose(t *testing.T) {
	l := NewLoop(testLogger())
	l.Close()
	l.Close()

	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrLoopClosed) {
		t.Errorf("Do() error = %v, want %v", err, ErrLoopClosed)
	}
	select {
	case <-l.Done():
	default:
		t.Error("Done() not closed")
	}
}

func TestLoopRunStopsOnContext(t *testing.T) {
	l := NewLoop(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoopDrivesRuntime(t *testing.T) {
	l, _ := startLoop(t)
	backend := &recordingBackend{}

	app := taskApp(func(ctx context.Context) (string, error) {
		return "fetched", nil
	})
	rt := New(app, fetched{}, backend, l, WithLogger(testLogger()), WithIDs(view.NewCounterIDs("h")))

	ctx := context.Background()
	if err := l.Do(ctx, rt.Start); err != nil {
		t.Fatal(err)
	}
	if err := l.Do(ctx, func() { rt.OnAction("load") }); err != nil {
		t.Fatal(err)
	}
	l.Wait()

	deadline := time.Now().Add(time.Second)
	for {
		var value string
		if err := l.Do(ctx, func() { value = rt.State().Value }); err != nil {
			t.Fatal(err)
		}
		if value == "fetched" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Value = %q, want %q", value, "fetched")
		}
		time.Sleep(time.Millisecond)
	}
}
