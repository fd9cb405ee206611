package treefile

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// Marshal writes n in the format Parse reads.
func Marshal(n vdom.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(n)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func toYAML(n vdom.Node) *yaml.Node {
	switch n.Kind {
	case vdom.KindText:
		return scalar("!!str", n.Text)
	case vdom.KindElement:
		if n.Element != nil {
			return elementYAML(n.Element)
		}
	}
	return scalar("!!null", "null")
}

func elementYAML(el *vdom.Element) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, v *yaml.Node) {
		m.Content = append(m.Content, scalar("!!str", key), v)
	}

	add("tag", scalar("!!str", el.Name))
	if len(el.Attrs) > 0 {
		attrs := &yaml.Node{Kind: yaml.MappingNode}
		for _, a := range el.Attrs {
			v := scalar("!!str", a.Value.String())
			if a.Value.Kind() == vdom.ValueBool {
				v.Tag = "!!bool"
			}
			attrs.Content = append(attrs.Content, scalar("!!str", a.Key), v)
		}
		add("attrs", attrs)
	}
	if len(el.Handlers) > 0 {
		on := &yaml.Node{Kind: yaml.MappingNode}
		for _, h := range el.Handlers {
			on.Content = append(on.Content, scalar("!!str", h.Kind), scalar("!!str", h.ID))
		}
		add("on", on)
	}
	if len(el.Children) > 0 {
		children := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range el.Children {
			children.Content = append(children.Content, toYAML(c))
		}
		add("children", children)
	}
	return m
}
