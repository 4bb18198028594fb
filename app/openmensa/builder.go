package openmensa

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Version        = "2.1"
	Namespace      = "http://openmensa.org/open-mensa-v2"
	SchemaLocation = "http://openmensa.org/open-mensa-v2 http://openmensa.org/open-mensa-v2.xsd"

	DateFormat    = "2006-01-02"
	maxTextLength = 250
)

var validRoles = map[string]bool{
	"pupil":    true,
	"student":  true,
	"employee": true,
	"other":    true,
}

// Builder collects meals and writes them as one OpenMensa v2 document.
// Days and categories appear in the order they were first added; meals keep
// their insertion order. A Builder is not safe for concurrent use.
type Builder struct {
	version string
	canteen Canteen
	days    map[string]*Day
}

func NewBuilder() *Builder {
	return &Builder{
		days: make(map[string]*Day),
	}
}

// SetVersion sets the feed version element. An empty version omits it.
func (b *Builder) SetVersion(version string) {
	b.version = version
}

func (b *Builder) SetCanteenInfo(info CanteenInfo) {
	b.canteen.CanteenInfo = info
}

func (b *Builder) AddMeal(date time.Time, category, name string, notes []string, prices []Price) error {
	if category == "" {
		return fmt.Errorf("meal category is required")
	}
	if name == "" {
		return fmt.Errorf("meal name is required")
	}

	meal := Meal{Name: shorten(name)}

	for _, note := range notes {
		if note == "" {
			continue
		}
		meal.Notes = append(meal.Notes, shorten(note))
	}

	for _, price := range prices {
		if !validRoles[price.Role] {
			return fmt.Errorf("invalid price role %q", price.Role)
		}
		meal.Prices = append(meal.Prices, Price{Role: price.Role, Value: price.Value})
	}

	c := b.day(date.Format(DateFormat)).category(category)
	c.Meals = append(c.Meals, meal)

	return nil
}

func (b *Builder) MealCount() int {
	count := 0
	for _, day := range b.canteen.Days {
		for _, category := range day.Categories {
			count += len(category.Meals)
		}
	}
	return count
}

func (b *Builder) day(date string) *Day {
	if day, ok := b.days[date]; ok {
		return day
	}

	day := &Day{Date: date}
	b.days[date] = day
	b.canteen.Days = append(b.canteen.Days, day)
	return day
}

func (d *Day) category(name string) *Category {
	for _, category := range d.Categories {
		if category.Name == name {
			return category
		}
	}

	category := &Category{Name: name}
	d.Categories = append(d.Categories, category)
	return category
}

func (b *Builder) Write(w io.Writer) error {
	if _, err := io.WriteString(w, b.header()); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("  ", "  ")
	if err := enc.Encode(&b.canteen); err != nil {
		return fmt.Errorf("failed to encode canteen: %w", err)
	}

	_, err := io.WriteString(w, "\n</openmensa>\n")
	return err
}

func (b *Builder) ToXML() (string, error) {
	var buf bytes.Buffer
	if err := b.Write(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (b *Builder) header() string {
	var sb strings.Builder

	sb.WriteString(xml.Header)
	sb.WriteString(`<openmensa version="` + Version + `"` + "\n")
	sb.WriteString(`           xmlns="` + Namespace + `"` + "\n")
	sb.WriteString(`           xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` + "\n")
	sb.WriteString(`           xsi:schemaLocation="` + SchemaLocation + `">` + "\n")

	if b.version != "" {
		sb.WriteString("  <version>")
		xml.EscapeText(&sb, []byte(b.version))
		sb.WriteString("</version>\n")
	}

	return sb.String()
}

// shorten cuts texts over the schema limit to 247 characters plus "...".
func shorten(text string) string {
	if utf8.RuneCountInString(text) <= maxTextLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxTextLength-3]) + "..."
}
