package runtime

import (
	"time"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// ActionStats describes one processed action.
type ActionStats struct {
	Start        time.Time
	Duration     time.Duration
	Tasks        int  // Deferred tasks emitted by the reducer
	StateChanged bool // Whether the reducer produced a different state
}

// RenderStats describes one render.
type RenderStats struct {
	Seq      uint64
	Start    time.Time
	Duration time.Duration
	Changed  bool            // Whether a diff was handed to the backend
	Handlers int             // Live handlers after the render
	Ops      map[vdom.Op]int // Operation counts of the diff, nil when unchanged
}

// Observer receives runtime events. Implementations are called on the
// instance thread and must not block.
type Observer interface {
	ActionProcessed(ActionStats)
	RenderFinished(RenderStats)
	HandlerMissing(id string)
	TaskFailed(err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) ActionProcessed(ActionStats) {}
func (NopObserver) RenderFinished(RenderStats)  {}
func (NopObserver) HandlerMissing(string)       {}
func (NopObserver) TaskFailed(error)            {}

// Observers fans events out to several observers.
func Observers(obs ...Observer) Observer {
	list := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) ActionProcessed(s ActionStats) {
	for _, o := range m {
		o.ActionProcessed(s)
	}
}

func (m multiObserver) RenderFinished(s RenderStats) {
	for _, o := range m {
		o.RenderFinished(s)
	}
}

func (m multiObserver) HandlerMissing(id string) {
	for _, o := range m {
		o.HandlerMissing(id)
	}
}

func (m multiObserver) TaskFailed(err error) {
	for _, o := range m {
		o.TaskFailed(err)
	}
}
