package protocol

import (
	"errors"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// Node decoding errors.
var (
	ErrInvalidNodeKind  = errors.New("protocol: invalid node kind")
	ErrInvalidValueKind = errors.New("protocol: invalid value kind")
)

// EncodeValue encodes an attribute value.
//
//	String: [0x00][len-prefixed]
//	Bool:   [0x01][0x00|0x01]
func EncodeValue(e *Encoder, v vdom.Value) {
	e.WriteByte(byte(v.Kind()))
	switch v.Kind() {
	case vdom.ValueBool:
		b, _ := v.Flag()
		e.WriteBool(b)
	default:
		s, _ := v.Str()
		e.WriteString(s)
	}
}

// DecodeValue decodes an attribute value.
func DecodeValue(d *Decoder) (vdom.Value, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return vdom.Value{}, err
	}
	switch vdom.ValueKind(kind) {
	case vdom.ValueString:
		s, err := d.ReadString()
		if err != nil {
			return vdom.Value{}, err
		}
		return vdom.String(s), nil
	case vdom.ValueBool:
		b, err := d.ReadBool()
		if err != nil {
			return vdom.Value{}, err
		}
		return vdom.Bool(b), nil
	default:
		return vdom.Value{}, ErrInvalidValueKind
	}
}

// EncodeNode encodes a node tree. Null children are kept so the decoded
// tree is identical to the encoded one.
//
//	Null:    [0x00]
//	Text:    [0x01][text]
//	Element: [0x02][name][attr count][key value...][handler count][kind id...][child count][node...]
func EncodeNode(e *Encoder, n vdom.Node) {
	if n.Kind == vdom.KindElement && n.Element == nil {
		e.WriteByte(byte(vdom.KindNull))
		return
	}
	e.WriteByte(byte(n.Kind))

	switch n.Kind {
	case vdom.KindText:
		e.WriteString(n.Text)

	case vdom.KindElement:
		el := n.Element
		e.WriteString(el.Name)

		e.WriteUvarint(uint64(len(el.Attrs)))
		for _, a := range el.Attrs {
			e.WriteString(a.Key)
			EncodeValue(e, a.Value)
		}

		e.WriteUvarint(uint64(len(el.Handlers)))
		for _, h := range el.Handlers {
			e.WriteString(h.Kind)
			e.WriteString(h.ID)
		}

		e.WriteUvarint(uint64(len(el.Children)))
		for _, c := range el.Children {
			EncodeNode(e, c)
		}
	}
}

// DecodeNode decodes a node tree, enforcing MaxNodeDepth.
func DecodeNode(d *Decoder) (vdom.Node, error) {
	return decodeNode(d, 0, MaxNodeDepth)
}

func decodeNode(d *Decoder, depth, max int) (vdom.Node, error) {
	if err := checkDepth(depth, max); err != nil {
		return vdom.Node{}, err
	}

	kind, err := d.ReadByte()
	if err != nil {
		return vdom.Node{}, err
	}

	switch vdom.Kind(kind) {
	case vdom.KindNull:
		return vdom.Null(), nil

	case vdom.KindText:
		s, err := d.ReadString()
		if err != nil {
			return vdom.Node{}, err
		}
		return vdom.Text(s), nil

	case vdom.KindElement:
		el := &vdom.Element{}
		if el.Name, err = d.ReadString(); err != nil {
			return vdom.Node{}, err
		}

		attrCount, err := d.ReadCount()
		if err != nil {
			return vdom.Node{}, err
		}
		if attrCount > 0 {
			el.Attrs = make([]vdom.Attr, attrCount)
			for i := range el.Attrs {
				if el.Attrs[i].Key, err = d.ReadString(); err != nil {
					return vdom.Node{}, err
				}
				if el.Attrs[i].Value, err = DecodeValue(d); err != nil {
					return vdom.Node{}, err
				}
			}
		}

		handlerCount, err := d.ReadCount()
		if err != nil {
			return vdom.Node{}, err
		}
		if handlerCount > 0 {
			el.Handlers = make([]vdom.Binding, handlerCount)
			for i := range el.Handlers {
				if el.Handlers[i].Kind, err = d.ReadString(); err != nil {
					return vdom.Node{}, err
				}
				if el.Handlers[i].ID, err = d.ReadString(); err != nil {
					return vdom.Node{}, err
				}
			}
		}

		childCount, err := d.ReadCount()
		if err != nil {
			return vdom.Node{}, err
		}
		if childCount > 0 {
			el.Children = make([]vdom.Node, childCount)
			for i := range el.Children {
				if el.Children[i], err = decodeNode(d, depth+1, max); err != nil {
					return vdom.Node{}, err
				}
			}
		}
		return vdom.Node{Kind: vdom.KindElement, Element: el}, nil

	default:
		return vdom.Node{}, ErrInvalidNodeKind
	}
}
