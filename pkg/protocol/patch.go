package protocol

import (
	"errors"
	"fmt"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// ErrInvalidOp is returned for an unknown diff op byte.
var ErrInvalidOp = errors.New("protocol: invalid diff op")

// EncodeDiff encodes a diff and its nested edits.
func EncodeDiff(e *Encoder, df vdom.Diff) {
	e.WriteByte(byte(df.Op))

	switch df.Op {
	case vdom.OpSetAttribute:
		e.WriteString(df.Key)
		EncodeValue(e, df.Value)

	case vdom.OpRemoveAttribute:
		e.WriteString(df.Key)

	case vdom.OpAddChild, vdom.OpReplaceChild:
		e.WriteUvarint(uint64(df.Index))
		EncodeNode(e, df.Node)

	case vdom.OpRemoveChild:
		e.WriteUvarint(uint64(df.Index))

	case vdom.OpPatchChild:
		e.WriteUvarint(uint64(df.Index))
		e.WriteUvarint(uint64(len(df.Children)))
		for _, c := range df.Children {
			EncodeDiff(e, c)
		}

	case vdom.OpSetHandler, vdom.OpRemoveHandler:
		e.WriteString(df.Kind)
		e.WriteString(df.ID)
	}
}

// DecodeDiff decodes a diff with the default limits.
func DecodeDiff(d *Decoder) (vdom.Diff, error) {
	return decodeDiff(d, 0, DefaultLimits())
}

func decodeDiff(d *Decoder, depth int, lim Limits) (vdom.Diff, error) {
	if err := checkDepth(depth, lim.DiffDepth); err != nil {
		return vdom.Diff{}, err
	}

	b, err := d.ReadByte()
	if err != nil {
		return vdom.Diff{}, err
	}
	op := vdom.Op(b)

	switch op {
	case vdom.OpSetAttribute:
		key, err := d.ReadString()
		if err != nil {
			return vdom.Diff{}, err
		}
		v, err := DecodeValue(d)
		if err != nil {
			return vdom.Diff{}, err
		}
		return vdom.SetAttribute(key, v), nil

	case vdom.OpRemoveAttribute:
		key, err := d.ReadString()
		if err != nil {
			return vdom.Diff{}, err
		}
		return vdom.RemoveAttribute(key), nil

	case vdom.OpAddChild, vdom.OpReplaceChild:
		index, err := d.ReadInt()
		if err != nil {
			return vdom.Diff{}, err
		}
		n, err := decodeNode(d, depth, depth+lim.NodeDepth)
		if err != nil {
			return vdom.Diff{}, err
		}
		if op == vdom.OpAddChild {
			return vdom.AddChild(index, n), nil
		}
		return vdom.ReplaceChild(index, n), nil

	case vdom.OpRemoveChild:
		index, err := d.ReadInt()
		if err != nil {
			return vdom.Diff{}, err
		}
		return vdom.RemoveChild(index), nil

	case vdom.OpPatchChild:
		index, err := d.ReadInt()
		if err != nil {
			return vdom.Diff{}, err
		}
		count, err := d.ReadCount()
		if err != nil {
			return vdom.Diff{}, err
		}
		var edits []vdom.Diff
		if count > 0 {
			edits = make([]vdom.Diff, count)
			for i := range edits {
				if edits[i], err = decodeDiff(d, depth+1, lim); err != nil {
					return vdom.Diff{}, err
				}
			}
		}
		return vdom.PatchChild(index, edits), nil

	case vdom.OpSetHandler, vdom.OpRemoveHandler:
		kind, err := d.ReadString()
		if err != nil {
			return vdom.Diff{}, err
		}
		id, err := d.ReadString()
		if err != nil {
			return vdom.Diff{}, err
		}
		if op == vdom.OpSetHandler {
			return vdom.SetHandler(kind, id), nil
		}
		return vdom.RemoveHandler(kind, id), nil

	default:
		return vdom.Diff{}, fmt.Errorf("%w: 0x%02x", ErrInvalidOp, b)
	}
}

// PatchesMessage is the payload of a Patches frame: the diff produced by
// one render. Seq increases by one per message within a session.
type PatchesMessage struct {
	Seq  uint64
	Diff *vdom.Diff // nil for an empty message
}

// EncodePatches encodes a PatchesMessage.
func EncodePatches(pm *PatchesMessage) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pm)
	return e.Bytes()
}

// EncodePatchesTo encodes a PatchesMessage using e.
func EncodePatchesTo(e *Encoder, pm *PatchesMessage) {
	e.WriteUvarint(pm.Seq)
	if pm.Diff == nil {
		e.WriteBool(false)
		return
	}
	e.WriteBool(true)
	EncodeDiff(e, *pm.Diff)
}

// DecodePatches decodes a PatchesMessage with the default limits.
func DecodePatches(data []byte) (*PatchesMessage, error) {
	return DecodePatchesWithLimits(data, Limits{})
}

// DecodePatchesWithLimits decodes a PatchesMessage with custom limits.
func DecodePatchesWithLimits(data []byte, lim Limits) (*PatchesMessage, error) {
	lim = lim.withDefaults()
	d := NewDecoder(data)

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	pm := &PatchesMessage{Seq: seq}

	has, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	if has {
		df, err := decodeDiff(d, 0, lim)
		if err != nil {
			return nil, err
		}
		pm.Diff = &df
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return pm, nil
}
