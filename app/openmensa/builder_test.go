package openmensa

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func date(day int) time.Time {
	return time.Date(2018, time.September, day, 0, 0, 0, 0, time.UTC)
}

func TestBuilder_ToXML(t *testing.T) {
	builder := NewBuilder()
	builder.SetVersion("1.0.0")
	builder.SetCanteenInfo(CanteenInfo{Name: "Mensa Westerberg", City: "Osnabrück"})

	err := builder.AddMeal(date(8), "Hauptgericht HK 2", "Schnitzel", []string{"Kartoffeln", "3"},
		[]Price{{Role: "student", Value: "3.50"}, {Role: "employee", Value: "5.20"}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	feed, err := builder.ToXML()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<openmensa version="2.1"`,
		`xmlns="http://openmensa.org/open-mensa-v2"`,
		`<version>1.0.0</version>`,
		`<canteen>`,
		`<name>Mensa Westerberg</name>`,
		`<city>Osnabrück</city>`,
		`<day date="2018-09-08">`,
		`<category name="Hauptgericht HK 2">`,
		`<name>Schnitzel</name>`,
		`<note>Kartoffeln</note>`,
		`<note>3</note>`,
		`<price role="student">3.50</price>`,
		`<price role="employee">5.20</price>`,
		`</openmensa>`,
	}
	for _, want := range expected {
		if !strings.Contains(feed, want) {
			t.Errorf("Feed should contain %s\n%s", want, feed)
		}
	}

	if strings.Contains(feed, "<address>") {
		t.Error("Feed should not contain empty canteen metadata")
	}

	if err := xml.Unmarshal([]byte(feed), new(struct{})); err != nil {
		t.Errorf("Feed should be well-formed XML, got: %v", err)
	}
}

func TestBuilder_Grouping(t *testing.T) {
	builder := NewBuilder()

	add := func(day int, category, name string) {
		t.Helper()
		if err := builder.AddMeal(date(day), category, name, nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	add(10, "Vegetarisch", "Pfanne")
	add(8, "Hauptgericht", "Schnitzel")
	add(10, "Hauptgericht", "Gulasch")
	add(10, "Vegetarisch", "Auflauf")

	if builder.MealCount() != 4 {
		t.Errorf("Expected 4 meals, got %d", builder.MealCount())
	}

	days := builder.canteen.Days
	if len(days) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(days))
	}
	if days[0].Date != "2018-09-10" || days[1].Date != "2018-09-08" {
		t.Errorf("Expected days in first-seen order, got %s, %s", days[0].Date, days[1].Date)
	}

	categories := days[0].Categories
	if len(categories) != 2 || categories[0].Name != "Vegetarisch" || categories[1].Name != "Hauptgericht" {
		t.Fatalf("Expected categories Vegetarisch, Hauptgericht, got %+v", categories)
	}
	if categories[0].Meals[0].Name != "Pfanne" || categories[0].Meals[1].Name != "Auflauf" {
		t.Errorf("Expected meals in insertion order, got %+v", categories[0].Meals)
	}
}

func TestBuilder_AddMeal_Validation(t *testing.T) {
	builder := NewBuilder()

	if err := builder.AddMeal(date(8), "", "Schnitzel", nil, nil); err == nil {
		t.Error("Expected error for empty category")
	}
	if err := builder.AddMeal(date(8), "Hauptgericht", "", nil, nil); err == nil {
		t.Error("Expected error for empty name")
	}
	if err := builder.AddMeal(date(8), "Hauptgericht", "Schnitzel", nil, []Price{{Role: "guest", Value: "1.00"}}); err == nil {
		t.Error("Expected error for unknown role")
	}
	if builder.MealCount() != 0 {
		t.Errorf("Expected rejected meals not to be added, got %d", builder.MealCount())
	}
}

func TestBuilder_AddMeal_NotesAndLongText(t *testing.T) {
	builder := NewBuilder()
	long := strings.Repeat("ä", 300)

	if err := builder.AddMeal(date(8), "Hauptgericht", long, []string{"", long}, nil); err != nil {
		t.Fatal(err)
	}

	meal := builder.canteen.Days[0].Categories[0].Meals[0]
	if len([]rune(meal.Name)) != 250 || !strings.HasSuffix(meal.Name, "...") {
		t.Errorf("Expected name shortened to 250 characters, got %d", len([]rune(meal.Name)))
	}
	if len(meal.Notes) != 1 {
		t.Fatalf("Expected empty note to be dropped, got %d notes", len(meal.Notes))
	}
	if len([]rune(meal.Notes[0])) != 250 {
		t.Errorf("Expected note shortened to 250 characters, got %d", len([]rune(meal.Notes[0])))
	}
}

func TestBuilder_EscapesText(t *testing.T) {
	builder := NewBuilder()
	if err := builder.AddMeal(date(8), "Pasta & Co", "Nudeln <hausgemacht>", nil, nil); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := builder.Write(&buf); err != nil {
		t.Fatal(err)
	}

	feed := buf.String()
	if !strings.Contains(feed, `name="Pasta &amp; Co"`) {
		t.Errorf("Expected escaped category attribute, got:\n%s", feed)
	}
	if !strings.Contains(feed, "<name>Nudeln &lt;hausgemacht&gt;</name>") {
		t.Errorf("Expected escaped meal name, got:\n%s", feed)
	}
	if strings.Contains(feed, "<version>") {
		t.Error("Expected no version element when version is unset")
	}
}
