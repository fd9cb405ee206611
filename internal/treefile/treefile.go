// Package treefile reads virtual trees written as YAML.
//
// A node is a scalar (text), null, or a mapping describing an element:
//
//	tag: ul
//	attrs:
//	  class: list
//	  hidden: false
//	on:
//	  click: h1
//	children:
//	  - tag: li
//	    key: a
//	    children: [first]
//	  - null
//	  - plain text
//
// key is shorthand for a "key" attribute. Attribute values are strings or
// booleans; numbers are kept as their literal text. Mapping order is kept, so
// attributes and handlers appear in the order written.
package treefile

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/vdom"
)

// Load reads the tree stored in the file at path.
func Load(path string) (vdom.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vdom.Node{}, errors.New("E120").Wrap(err)
	}
	return Parse(data, path)
}

// Parse decodes one tree. An empty document is Null. name is used in error
// locations.
func Parse(data []byte, name string) (vdom.Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if err == io.EOF {
			return vdom.Null(), nil
		}
		return vdom.Node{}, errors.New("E121").Wrap(err)
	}
	p := parser{name: name, exists: fileExists(name)}
	return p.node(&doc)
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

type parser struct {
	name   string
	exists bool
}

func (p parser) fail(code string, n *yaml.Node, format string, args ...any) error {
	e := errors.New(code).WithDetailf(format, args...)
	if p.exists {
		return e.WithLocation(p.name, n.Line, n.Column)
	}
	e.Location = &errors.Location{File: p.name, Line: n.Line, Column: n.Column}
	return e
}

func (p parser) node(n *yaml.Node) (vdom.Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return vdom.Null(), nil
		}
		return p.node(n.Content[0])

	case yaml.AliasNode:
		return p.node(n.Alias)

	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return vdom.Null(), nil
		}
		return vdom.Text(n.Value), nil

	case yaml.MappingNode:
		return p.element(n)

	default:
		return vdom.Node{}, p.fail("E122", n, "a sequence cannot be a node; put it under children")
	}
}

func (p parser) element(n *yaml.Node) (vdom.Node, error) {
	el := &vdom.Element{}
	var key *yaml.Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch k.Value {
		case "tag":
			if v.Kind != yaml.ScalarNode || v.Value == "" {
				return vdom.Node{}, p.fail("E122", v, "tag must be a non-empty string")
			}
			el.Name = v.Value

		case "key":
			key = v

		case "attrs":
			attrs, err := p.attrs(v)
			if err != nil {
				return vdom.Node{}, err
			}
			el.Attrs = append(el.Attrs, attrs...)

		case "on":
			handlers, err := p.handlers(v)
			if err != nil {
				return vdom.Node{}, err
			}
			el.Handlers = handlers

		case "children":
			children, err := p.children(v)
			if err != nil {
				return vdom.Node{}, err
			}
			el.Children = children

		default:
			return vdom.Node{}, p.fail("E122", k, "unknown element field %q", k.Value)
		}
	}

	if el.Name == "" {
		return vdom.Node{}, p.fail("E122", n, "element has no tag")
	}
	if key != nil {
		if key.Kind != yaml.ScalarNode {
			return vdom.Node{}, p.fail("E123", key, "key must be a string")
		}
		el.Attrs = append([]vdom.Attr{vdom.A(vdom.KeyAttr, key.Value)}, el.Attrs...)
	}
	return vdom.Node{Kind: vdom.KindElement, Element: el}, nil
}

func (p parser) attrs(n *yaml.Node) ([]vdom.Attr, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.fail("E123", n, "attrs must be a mapping")
	}
	attrs := make([]vdom.Attr, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
			return nil, p.fail("E123", v, "attribute %q must be a string or boolean", k.Value)
		}
		if v.Tag == "!!bool" {
			var b bool
			if err := v.Decode(&b); err != nil {
				return nil, p.fail("E123", v, "attribute %q: %v", k.Value, err)
			}
			attrs = append(attrs, vdom.Flag(k.Value, b))
			continue
		}
		attrs = append(attrs, vdom.A(k.Value, v.Value))
	}
	return attrs, nil
}

func (p parser) handlers(n *yaml.Node) ([]vdom.Binding, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.fail("E122", n, "on must map event kinds to handler ids")
	}
	handlers := make([]vdom.Binding, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode || v.Value == "" {
			return nil, p.fail("E122", v, "handler id for %q must be a non-empty string", k.Value)
		}
		handlers = append(handlers, vdom.On(k.Value, v.Value))
	}
	return handlers, nil
}

func (p parser) children(n *yaml.Node) ([]vdom.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, p.fail("E122", n, "children must be a list")
	}
	children := make([]vdom.Node, 0, len(n.Content))
	for _, c := range n.Content {
		child, err := p.node(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}
