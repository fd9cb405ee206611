package protocol

import "errors"

// ErrMaxDepthExceeded is returned when nested data exceeds the depth limits.
var ErrMaxDepthExceeded = errors.New("protocol: maximum nesting depth exceeded")

// Depth limits for recursive structures. Nodes embedded in a diff are
// counted from the diff's own depth.
const (
	// MaxNodeDepth limits the nesting depth of node trees.
	MaxNodeDepth = 256

	// MaxDiffDepth limits the nesting depth of PatchChild diffs.
	MaxDiffDepth = 256

	// MaxArgDepth limits the nesting depth of JSON event arguments.
	MaxArgDepth = 64
)

// Limits configures decoding limits. The zero value means the defaults.
type Limits struct {
	NodeDepth int
	DiffDepth int
	ArgDepth  int
}

// DefaultLimits returns the default limits.
func DefaultLimits() Limits {
	return Limits{
		NodeDepth: MaxNodeDepth,
		DiffDepth: MaxDiffDepth,
		ArgDepth:  MaxArgDepth,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.NodeDepth <= 0 {
		l.NodeDepth = d.NodeDepth
	}
	if l.DiffDepth <= 0 {
		l.DiffDepth = d.DiffDepth
	}
	if l.ArgDepth <= 0 {
		l.ArgDepth = d.ArgDepth
	}
	return l
}

func checkDepth(current, max int) error {
	if current > max {
		return ErrMaxDepthExceeded
	}
	return nil
}
