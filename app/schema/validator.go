package schema

import (
	_ "embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lysyi3m/mensa-feed/app/mensa"
)

//go:embed open-mensa-v2.xsd
var openMensaV2 []byte

const rootElement = "openmensa"

// rules holds the validator tags compiled from the schema for each value of an
// OpenMensa document.
type rules struct {
	version      string
	canteenName  string
	date         string
	categoryName string
	mealName     string
	note         string
	priceValue   string
	role         string
}

// Validator checks feed documents against a compiled OpenMensa schema. It is
// immutable after loading and safe for concurrent use.
type Validator struct {
	namespace string
	schema    *xsdSchema
	rootType  string
	validate  *validator.Validate
	rules     rules
}

// Default loads the OpenMensa v2 schema bundled with the binary.
func Default() (*Validator, error) {
	return Load(openMensaV2)
}

func LoadFile(path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Load(data)
}

func Load(data []byte) (*Validator, error) {
	s, err := parseXSD(data)
	if err != nil {
		return nil, err
	}
	if err := s.resolve(); err != nil {
		return nil, fmt.Errorf("failed to resolve schema: %w", err)
	}
	root, err := s.element(rootElement)
	if err != nil {
		return nil, err
	}

	c := &compiler{schema: s, validate: validator.New()}
	r, err := c.compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	slog.Debug("Schema loaded", "namespace", s.TargetNamespace)

	return &Validator{
		namespace: s.TargetNamespace,
		schema:    s,
		rootType:  root.Type,
		validate:  c.validate,
		rules:     *r,
	}, nil
}

// Validate returns nil if doc is well-formed and satisfies the schema, and a
// *mensa.FormatError otherwise.
func (v *Validator) Validate(doc string) error {
	if err := wellFormed(doc); err != nil {
		return &mensa.FormatError{Stage: "xml", Err: err}
	}

	tree, err := readTree(doc)
	if err != nil {
		return &mensa.FormatError{Stage: "xml", Err: err}
	}

	var d document
	if err := xml.Unmarshal([]byte(doc), &d); err != nil {
		return &mensa.FormatError{Stage: "xml", Err: err}
	}

	var violations []string
	addf := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	if tree.name.Local != rootElement || tree.name.Space != v.namespace {
		addf("root element is {%s}%s, expected {%s}%s", tree.name.Space, tree.name.Local, v.namespace, rootElement)
	} else {
		v.structure(tree, v.rootType, rootElement, addf)
		v.check(&d, addf)
	}

	if len(violations) > 0 {
		return &mensa.FormatError{
			Stage: "schema",
			Err:   fmt.Errorf("%d violation(s): %s", len(violations), strings.Join(violations, "; ")),
		}
	}

	return nil
}

// wellFormed reads every token of doc and requires exactly one root element.
func wellFormed(doc string) error {
	dec := xml.NewDecoder(strings.NewReader(doc))

	depth, roots := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(strings.TrimSpace(string(t))) > 0 {
				return fmt.Errorf("text outside of root element")
			}
		}
	}

	switch {
	case roots == 0:
		return fmt.Errorf("no root element")
	case roots > 1:
		return fmt.Errorf("%d root elements", roots)
	}
	return nil
}

// Document shape as read back for checking

type document struct {
	XMLName xml.Name
	Version string          `xml:"version,attr"`
	Canteen *canteenElement `xml:"canteen"`
}

type canteenElement struct {
	Name *string      `xml:"name"`
	Days []dayElement `xml:"day"`
}

type dayElement struct {
	Date       string            `xml:"date,attr"`
	Categories []categoryElement `xml:"category"`
}

type categoryElement struct {
	Name  string        `xml:"name,attr"`
	Meals []mealElement `xml:"meal"`
}

type mealElement struct {
	Name   string         `xml:"name"`
	Notes  []string       `xml:"note"`
	Prices []priceElement `xml:"price"`
}

type priceElement struct {
	Role  string `xml:"role,attr"`
	Value string `xml:",chardata"`
}

// check applies the value rules. Element order and counts are left to
// structure.
func (v *Validator) check(d *document, addf func(string, ...any)) {
	value := func(path, val, tag string) {
		if err := v.validate.Var(val, tag); err != nil {
			addf("%s: %q %s", path, val, describe(err))
		}
	}

	value("openmensa/@version", d.Version, v.rules.version)

	if d.Canteen == nil {
		return
	}
	if d.Canteen.Name != nil {
		value("canteen/name", *d.Canteen.Name, v.rules.canteenName)
	}

	for _, day := range d.Canteen.Days {
		dayPath := fmt.Sprintf("day[%s]", day.Date)
		value(dayPath+"/@date", day.Date, v.rules.date)

		for _, category := range day.Categories {
			categoryPath := fmt.Sprintf("%s/category[%s]", dayPath, category.Name)
			value(categoryPath+"/@name", category.Name, v.rules.categoryName)

			for i, meal := range category.Meals {
				mealPath := fmt.Sprintf("%s/meal[%d]", categoryPath, i)
				value(mealPath+"/name", meal.Name, v.rules.mealName)
				for _, note := range meal.Notes {
					value(mealPath+"/note", note, v.rules.note)
				}

				for _, price := range meal.Prices {
					value(mealPath+"/price/@role", price.Role, v.rules.role)
					value(mealPath+"/price", price.Value, v.rules.priceValue)
				}
			}
		}
	}
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	failed := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			failed = append(failed, fe.Tag()+"="+fe.Param())
		} else {
			failed = append(failed, fe.Tag())
		}
	}
	return "fails " + strings.Join(failed, ",")
}

// compiler turns schema types into validator tags, registering one custom
// validation per simple type that carries patterns.
type compiler struct {
	schema   *xsdSchema
	validate *validator.Validate
}

func (c *compiler) compile() (*rules, error) {
	root, err := c.schema.element(rootElement)
	if err != nil {
		return nil, err
	}
	openmensaType, err := c.schema.complexType(root.Type)
	if err != nil {
		return nil, err
	}
	canteenType, err := c.schema.child(openmensaType, "canteen")
	if err != nil {
		return nil, err
	}
	dayType, err := c.schema.child(canteenType, "day")
	if err != nil {
		return nil, err
	}
	categoryType, err := c.schema.child(dayType, "category")
	if err != nil {
		return nil, err
	}
	mealType, err := c.schema.child(categoryType, "meal")
	if err != nil {
		return nil, err
	}
	priceType, err := c.schema.child(mealType, "price")
	if err != nil {
		return nil, err
	}

	var r rules
	steps := []func() error{
		func() (err error) { r.version, err = c.attributeTag(openmensaType, "version"); return },
		func() (err error) { r.canteenName, err = c.elementTag(canteenType, "name"); return },
		func() (err error) { r.date, err = c.attributeTag(dayType, "date"); return },
		func() (err error) { r.categoryName, err = c.attributeTag(categoryType, "name"); return },
		func() (err error) { r.mealName, err = c.elementTag(mealType, "name"); return },
		func() (err error) { r.note, err = c.elementTag(mealType, "note"); return },
		func() (err error) { r.role, err = c.attributeTag(priceType, "role"); return },
		func() (err error) {
			if priceType.SimpleContent == nil {
				return fmt.Errorf("type %q has no simple content", priceType.Name)
			}
			r.priceValue, err = c.typeTag(priceType.SimpleContent.Extension.Base)
			return
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	return &r, nil
}

func (c *compiler) elementTag(ct *xsdComplexType, name string) (string, error) {
	el, err := ct.element(name)
	if err != nil {
		return "", err
	}
	tag, err := c.typeTag(el.Type)
	if err != nil {
		return "", err
	}
	if el.MinOccurs != "0" {
		tag = joinTags("required", tag)
	}
	return tag, nil
}

func (c *compiler) attributeTag(ct *xsdComplexType, name string) (string, error) {
	attr, err := ct.attribute(name)
	if err != nil {
		return "", err
	}
	tag, err := c.typeTag(attr.Type)
	if err != nil {
		return "", err
	}
	if attr.Use == "required" {
		tag = joinTags("required", tag)
	}
	return tag, nil
}

func (c *compiler) typeTag(typeName string) (string, error) {
	if typeName == "" {
		return "", nil
	}

	if isBuiltin(typeName) {
		switch localName(typeName) {
		case "date":
			return "datetime=2006-01-02", nil
		case "decimal":
			return "numeric", nil
		case "int", "integer":
			return "number", nil
		default:
			return "", nil
		}
	}

	st := c.schema.simpleType(typeName)
	if st == nil {
		return "", fmt.Errorf("schema has no simple type %q", typeName)
	}

	base, err := c.typeTag(st.Restriction.Base)
	if err != nil {
		return "", err
	}
	tags := []string{base}

	if f := st.Restriction.MinLength; f != nil {
		tags = append(tags, "min="+f.Value)
	}
	if f := st.Restriction.MaxLength; f != nil {
		tags = append(tags, "max="+f.Value)
	}

	if len(st.Restriction.Enumerations) > 0 {
		values := make([]string, 0, len(st.Restriction.Enumerations))
		for _, e := range st.Restriction.Enumerations {
			if strings.ContainsAny(e.Value, " \t,|") {
				return "", fmt.Errorf("unsupported enumeration value %q in %q", e.Value, st.Name)
			}
			values = append(values, e.Value)
		}
		tags = append(tags, "oneof="+strings.Join(values, " "))
	}

	if len(st.Restriction.Patterns) > 0 {
		tag, err := c.registerPatterns(st)
		if err != nil {
			return "", err
		}
		tags = append(tags, tag)
	}

	return joinTags(tags...), nil
}

var nonTagChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// registerPatterns adds a validation matching any of the type's patterns.
// XML Schema patterns are implicitly anchored.
func (c *compiler) registerPatterns(st *xsdSimpleType) (string, error) {
	patterns := make([]*regexp.Regexp, 0, len(st.Restriction.Patterns))
	for _, p := range st.Restriction.Patterns {
		re, err := regexp.Compile(`^(?:` + p.Value + `)$`)
		if err != nil {
			return "", fmt.Errorf("unsupported pattern %q in %q: %w", p.Value, st.Name, err)
		}
		patterns = append(patterns, re)
	}

	tag := "xsd_" + nonTagChars.ReplaceAllString(st.Name, "_")
	err := c.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, re := range patterns {
			if re.MatchString(s) {
				return true
			}
		}
		return false
	})
	if err != nil {
		return "", fmt.Errorf("failed to register pattern for %q: %w", st.Name, err)
	}

	return tag, nil
}

func joinTags(tags ...string) string {
	var nonEmpty []string
	for _, t := range tags {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.Join(nonEmpty, ",")
}
