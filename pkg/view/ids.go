package view

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync/atomic"
)

// IDSource produces handler ids. Ids must be unique for the lifetime of the
// handler map they end up in.
type IDSource interface {
	NextID() string
}

// RandomIDs draws 128-bit random ids formatted as version 4 UUIDs.
// Collisions are not checked for.
type RandomIDs struct{}

// NewRandomIDs returns a random id source.
func NewRandomIDs() *RandomIDs {
	return &RandomIDs{}
}

// NextID returns a fresh random id.
func (*RandomIDs) NextID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("view: crypto/rand failed: %v", err))
	}
	b[6] = b[6]&0x0f | 0x40
	b[8] = b[8]&0x3f | 0x80

	var buf [36]byte
	hex.Encode(buf[0:8], b[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], b[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], b[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], b[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:], b[10:])
	return string(buf[:])
}

// CounterIDs hands out prefix-qualified, monotonically increasing ids.
// Ids are never reused, which makes it suitable for tests and for backends
// that want short ids on the wire.
type CounterIDs struct {
	prefix string
	n      atomic.Uint64
}

// NewCounterIDs returns a counter id source whose ids start with prefix.
func NewCounterIDs(prefix string) *CounterIDs {
	return &CounterIDs{prefix: prefix}
}

// NextID returns the next id.
func (c *CounterIDs) NextID() string {
	return c.prefix + strconv.FormatUint(c.n.Add(1), 10)
}

// Current returns the number of ids handed out so far.
func (c *CounterIDs) Current() uint64 {
	return c.n.Load()
}
