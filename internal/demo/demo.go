// Package demo is the application served by "reflow serve": a counter with
// a configurable step, a delayed increment that runs as a task, and a keyed
// history list.
package demo

import (
	"context"
	"strconv"
	"time"

	"github.com/vango-dev/reflow/pkg/runtime"
	"github.com/vango-dev/reflow/pkg/server"
	"github.com/vango-dev/reflow/pkg/vdom"
	"github.com/vango-dev/reflow/pkg/view"
)

// historyLimit caps the number of entries kept in State.History.
const historyLimit = 10

// State is the counter state.
type State struct {
	Count    int
	Step     int
	StepText string // raw step input, kept even when it does not parse
	Pending  int    // delayed increments in flight
	History  []Entry
	nextID   int
}

// Entry records one change of the counter.
type Entry struct {
	ID    int
	Label string
	Value int
}

// Kind names an action.
type Kind uint8

const (
	Increment Kind = iota
	Decrement
	Reset
	SetStep
	IncrementLater
	Delayed
)

// Action is a counter action. Step is only read by SetStep.
type Action struct {
	Kind Kind
	Step string
}

// App implements runtime.App for the counter.
type App struct {
	// Delay is how long IncrementLater waits before its Delayed action lands.
	Delay time.Duration
}

// Initial returns the starting state.
func Initial() State {
	return State{Step: 1, StepText: "1"}
}

// Program wraps the counter for the server.
func Program(delay time.Duration) server.Program {
	return server.NewProgram[State, Action](App{Delay: delay}, Initial)
}

// Reduce implements runtime.App.
func (a App) Reduce(s State, act Action) (State, []runtime.Task[Action]) {
	switch act.Kind {
	case Increment:
		s = s.record("+"+strconv.Itoa(s.Step), s.Count+s.Step)
	case Decrement:
		s = s.record("-"+strconv.Itoa(s.Step), s.Count-s.Step)
	case Reset:
		if s.Count == 0 && len(s.History) == 0 {
			return s, nil
		}
		s.Count = 0
		s.History = nil
	case SetStep:
		// Storing the text re-renders the input, which rebinds its handler
		s.StepText = act.Step
		if n, err := strconv.Atoi(act.Step); err == nil && n >= 1 {
			s.Step = n
		}
	case IncrementLater:
		s.Pending++
		return s, []runtime.Task[Action]{a.later()}
	case Delayed:
		if s.Pending > 0 {
			s.Pending--
		}
		s = s.record("+1 (delayed)", s.Count+1)
	}
	return s, nil
}

func (a App) later() runtime.Task[Action] {
	delay := a.Delay
	return func(ctx context.Context) (Action, error) {
		if delay > 0 {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return Action{}, ctx.Err()
			case <-t.C:
			}
		}
		return Action{Kind: Delayed}, nil
	}
}

// record sets the count and prepends a history entry. The history slice is
// copied so earlier states stay untouched.
func (s State) record(label string, value int) State {
	s.Count = value
	s.nextID++
	h := make([]Entry, 0, historyLimit)
	h = append(h, Entry{ID: s.nextID, Label: label, Value: value})
	for _, e := range s.History {
		if len(h) == historyLimit {
			break
		}
		h = append(h, e)
	}
	s.History = h
	return s
}

// View implements runtime.App.
func (App) View(b *view.Builder[Action], s State) view.View[Action] {
	var status *view.View[Action]
	if s.Pending > 0 {
		v := b.Textf("%d pending", s.Pending)
		p := b.El("p", vdom.A("id", "pending"), v)
		status = &p
	}

	return b.El("main", vdom.A("id", "counter"),
		b.El("h1", "Counter"),
		b.El("output", vdom.A("id", "value"), strconv.Itoa(s.Count)),
		b.El("div", vdom.A("class", "controls"),
			b.El("button", vdom.A("id", "dec"), view.On("click", view.Emit(Action{Kind: Decrement})), "-"),
			b.El("button", vdom.A("id", "inc"), view.On("click", view.Emit(Action{Kind: Increment})), "+"),
			b.El("button", vdom.A("id", "later"), view.On("click", view.Emit(Action{Kind: IncrementLater})), "+1 later"),
			b.El("button", vdom.A("id", "reset"),
				vdom.Flag("disabled", s.Count == 0 && len(s.History) == 0),
				view.On("click", view.Emit(Action{Kind: Reset})), "reset"),
		),
		b.El("label", "step ",
			b.El("input", vdom.A("id", "step"), vdom.A("type", "number"), vdom.A("value", s.StepText),
				view.On("input", view.Map(func(arg view.Arg) Action {
					return Action{Kind: SetStep, Step: arg.String()}
				}))),
		),
		status,
		b.El("ol", vdom.A("id", "history"),
			view.Range(s.History, func(e Entry, _ int) view.View[Action] {
				id := strconv.Itoa(e.ID)
				return b.El("li", vdom.A(vdom.KeyAttr, id), vdom.A("id", "entry-"+id),
					e.Label+" = "+strconv.Itoa(e.Value))
			}),
		),
	)
}
