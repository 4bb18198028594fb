package openmensa

import (
	"encoding/xml"
)

// OpenMensa v2 document types

type Price struct {
	XMLName xml.Name `xml:"price"`
	Role    string   `xml:"role,attr"`
	Value   string   `xml:",chardata"`
}

type Meal struct {
	XMLName xml.Name `xml:"meal"`
	Name    string   `xml:"name"`
	Notes   []string `xml:"note"`
	Prices  []Price
}

type Category struct {
	XMLName xml.Name `xml:"category"`
	Name    string   `xml:"name,attr"`
	Meals   []Meal
}

type Day struct {
	XMLName    xml.Name `xml:"day"`
	Date       string   `xml:"date,attr"`
	Categories []*Category
}

// CanteenInfo is the optional metadata printed before the days.
type CanteenInfo struct {
	Name    string `xml:"name,omitempty" yaml:"name"`
	Address string `xml:"address,omitempty" yaml:"address"`
	City    string `xml:"city,omitempty" yaml:"city"`
	Phone   string `xml:"phone,omitempty" yaml:"phone"`
	Email   string `xml:"email,omitempty" yaml:"email"`
}

type Canteen struct {
	XMLName xml.Name `xml:"canteen"`
	CanteenInfo
	Days []*Day
}
