package schema

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// node is one element of a document read for structural checking.
type node struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*node
	text     strings.Builder
}

// readTree builds the element tree of a well-formed document.
func readTree(doc string) (*node, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))

	var root *node
	var stack []*node
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name, attrs: t.Attr}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	return root, nil
}

// structure checks n and its subtree against the content model of the named
// type: child order and occurrence, unknown elements and attributes, stray text.
func (v *Validator) structure(n *node, typeName, path string, addf func(string, ...any)) {
	if isBuiltin(typeName) || v.schema.simpleType(typeName) != nil {
		if len(n.children) > 0 {
			addf("%s: element <%s> not expected in text-only element", path, n.children[0].name.Local)
		}
		v.attributes(n, nil, path, addf)
		return
	}

	// Type references were resolved when the schema was loaded.
	ct, err := v.schema.complexType(typeName)
	if err != nil {
		addf("%s: %v", path, err)
		return
	}

	v.attributes(n, ct, path, addf)

	if ct.SimpleContent != nil {
		if len(n.children) > 0 {
			addf("%s: element <%s> not expected in text-only element", path, n.children[0].name.Local)
		}
		return
	}

	if strings.TrimSpace(n.text.String()) != "" {
		addf("%s: text not allowed", path)
	}

	for _, child := range n.children {
		if child.name.Space != v.namespace {
			addf("%s: element {%s}%s is outside namespace %s", path, child.name.Space, child.name.Local, v.namespace)
		}
	}

	children := n.children
	switch {
	case len(ct.Sequence) > 0:
		children = v.sequence(ct.Sequence, children, path, addf)
	case len(ct.Choice) > 0:
		children = v.choice(ct.Choice, children, path, addf)
	}

	for _, child := range children {
		addf("%s: element <%s> not expected", path, child.name.Local)
	}
}

// sequence consumes the children matching each particle in order and returns
// the ones left over.
func (v *Validator) sequence(particles []xsdElement, children []*node, path string, addf func(string, ...any)) []*node {
	for i := range particles {
		children = v.particle(&particles[i], children, path, addf)
	}
	return children
}

// choice picks the branch named by the first child.
func (v *Validator) choice(branches []xsdElement, children []*node, path string, addf func(string, ...any)) []*node {
	if len(children) > 0 {
		for i := range branches {
			if branches[i].Name == children[0].name.Local {
				return v.particle(&branches[i], children, path, addf)
			}
		}
	}

	names := make([]string, 0, len(branches))
	for _, b := range branches {
		names = append(names, "<"+b.Name+">")
	}
	addf("%s: expected one of %s", path, strings.Join(names, ", "))
	return children
}

func (v *Validator) particle(el *xsdElement, children []*node, path string, addf func(string, ...any)) []*node {
	count := 0
	for count < len(children) && children[count].name.Local == el.Name {
		count++
	}

	o, _ := el.occurs()
	if !o.allows(count) {
		addf("%s: %d <%s> not allowed (%s)", path, count, el.Name, o)
	}

	for i, child := range children[:count] {
		v.structure(child, el.Type, fmt.Sprintf("%s/%s[%d]", path, el.Name, i+1), addf)
	}

	return children[count:]
}

func (v *Validator) attributes(n *node, ct *xsdComplexType, path string, addf func(string, ...any)) {
	for _, attr := range n.attrs {
		switch {
		case attr.Name.Space == "xmlns", attr.Name.Space == "" && attr.Name.Local == "xmlns":
			continue
		case attr.Name.Space == xsiNamespace:
			continue
		}

		if ct != nil && attr.Name.Space == "" {
			if _, err := ct.attribute(attr.Name.Local); err == nil {
				continue
			}
		}
		addf("%s: attribute %s not expected", path, attr.Name.Local)
	}
}
