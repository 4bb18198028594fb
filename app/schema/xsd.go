package schema

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Subset of XML Schema needed to read the OpenMensa definition: named simple
// types with their facets, and named complex types with their child elements
// and attributes.

type xsdSchema struct {
	TargetNamespace string           `xml:"targetNamespace,attr"`
	Elements        []xsdElement     `xml:"element"`
	SimpleTypes     []xsdSimpleType  `xml:"simpleType"`
	ComplexTypes    []xsdComplexType `xml:"complexType"`
}

type xsdFacet struct {
	Value string `xml:"value,attr"`
}

type xsdRestriction struct {
	Base         string     `xml:"base,attr"`
	MinLength    *xsdFacet  `xml:"minLength"`
	MaxLength    *xsdFacet  `xml:"maxLength"`
	Patterns     []xsdFacet `xml:"pattern"`
	Enumerations []xsdFacet `xml:"enumeration"`
}

type xsdSimpleType struct {
	Name        string         `xml:"name,attr"`
	Restriction xsdRestriction `xml:"restriction"`
}

type xsdElement struct {
	Name      string `xml:"name,attr"`
	Type      string `xml:"type,attr"`
	MinOccurs string `xml:"minOccurs,attr"`
	MaxOccurs string `xml:"maxOccurs,attr"`
}

type xsdAttribute struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
	Use  string `xml:"use,attr"`
}

type xsdExtension struct {
	Base       string         `xml:"base,attr"`
	Attributes []xsdAttribute `xml:"attribute"`
}

type xsdComplexType struct {
	Name          string         `xml:"name,attr"`
	Sequence      []xsdElement   `xml:"sequence>element"`
	Choice        []xsdElement   `xml:"choice>element"`
	Attributes    []xsdAttribute `xml:"attribute"`
	SimpleContent *struct {
		Extension xsdExtension `xml:"extension"`
	} `xml:"simpleContent"`
}

// occurs is the allowed number of repetitions of an element; max < 0 means
// unbounded.
type occurs struct {
	min int
	max int
}

func parseXSD(data []byte) (*xsdSchema, error) {
	var s xsdSchema
	if err := xml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if s.TargetNamespace == "" {
		return nil, fmt.Errorf("schema has no target namespace")
	}
	return &s, nil
}

func (s *xsdSchema) element(name string) (*xsdElement, error) {
	for i := range s.Elements {
		if s.Elements[i].Name == name {
			return &s.Elements[i], nil
		}
	}
	return nil, fmt.Errorf("schema has no top-level element %q", name)
}

func (s *xsdSchema) simpleType(name string) *xsdSimpleType {
	name = localName(name)
	for i := range s.SimpleTypes {
		if s.SimpleTypes[i].Name == name {
			return &s.SimpleTypes[i]
		}
	}
	return nil
}

func (s *xsdSchema) complexType(name string) (*xsdComplexType, error) {
	name = localName(name)
	for i := range s.ComplexTypes {
		if s.ComplexTypes[i].Name == name {
			return &s.ComplexTypes[i], nil
		}
	}
	return nil, fmt.Errorf("schema has no complex type %q", name)
}

// child resolves the complex type of a child element, e.g. the type of "day"
// inside "canteenType".
func (s *xsdSchema) child(parent *xsdComplexType, name string) (*xsdComplexType, error) {
	el, err := parent.element(name)
	if err != nil {
		return nil, err
	}
	return s.complexType(el.Type)
}

func (ct *xsdComplexType) element(name string) (*xsdElement, error) {
	for _, list := range [][]xsdElement{ct.Sequence, ct.Choice} {
		for i := range list {
			if list[i].Name == name {
				return &list[i], nil
			}
		}
	}
	return nil, fmt.Errorf("type %q has no element %q", ct.Name, name)
}

func (ct *xsdComplexType) attribute(name string) (*xsdAttribute, error) {
	attrs := append([]xsdAttribute{}, ct.Attributes...)
	if ct.SimpleContent != nil {
		attrs = append(attrs, ct.SimpleContent.Extension.Attributes...)
	}
	for i := range attrs {
		if attrs[i].Name == name {
			return &attrs[i], nil
		}
	}
	return nil, fmt.Errorf("type %q has no attribute %q", ct.Name, name)
}

func (e *xsdElement) occurs() (occurs, error) {
	o := occurs{min: 1, max: 1}

	if e.MinOccurs != "" {
		n, err := strconv.Atoi(e.MinOccurs)
		if err != nil {
			return o, fmt.Errorf("invalid minOccurs %q on %q", e.MinOccurs, e.Name)
		}
		o.min = n
	}

	switch e.MaxOccurs {
	case "":
	case "unbounded":
		o.max = -1
	default:
		n, err := strconv.Atoi(e.MaxOccurs)
		if err != nil {
			return o, fmt.Errorf("invalid maxOccurs %q on %q", e.MaxOccurs, e.Name)
		}
		o.max = n
	}

	return o, nil
}

func (o occurs) String() string {
	if o.max < 0 {
		return fmt.Sprintf("%d..unbounded", o.min)
	}
	return fmt.Sprintf("%d..%d", o.min, o.max)
}

// resolve checks that every element of every complex type has a known type
// and readable occurrence limits.
func (s *xsdSchema) resolve() error {
	for i := range s.ComplexTypes {
		ct := &s.ComplexTypes[i]
		for _, list := range [][]xsdElement{ct.Sequence, ct.Choice} {
			for j := range list {
				el := &list[j]
				if _, err := el.occurs(); err != nil {
					return err
				}
				if isBuiltin(el.Type) || s.simpleType(el.Type) != nil {
					continue
				}
				if _, err := s.complexType(el.Type); err != nil {
					return fmt.Errorf("element %q in %q: %w", el.Name, ct.Name, err)
				}
			}
		}
	}
	return nil
}

func (o occurs) allows(n int) bool {
	return n >= o.min && (o.max < 0 || n <= o.max)
}

func localName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func isBuiltin(name string) bool {
	return strings.HasPrefix(name, "xs:") || strings.HasPrefix(name, "xsd:")
}
