package server

import (
	"time"

	"github.com/vango-dev/reflow/pkg/protocol"
)

// Hooks receives transport events. Methods are called from several
// goroutines and must be safe for concurrent use.
type Hooks interface {
	SessionOpened()
	SessionClosed(lifetime time.Duration)
	HandshakeFailed(status protocol.HandshakeStatus)
	EventReceived()
	PatchSent(bytes int)
}

// NopHooks ignores every event.
type NopHooks struct{}

func (NopHooks) SessionOpened()                           {}
func (NopHooks) SessionClosed(time.Duration)              {}
func (NopHooks) HandshakeFailed(protocol.HandshakeStatus) {}
func (NopHooks) EventReceived()                           {}
func (NopHooks) PatchSent(int)                            {}
