package mensa

import (
	"time"

	"github.com/shopspring/decimal"
)

// Meal data types

type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployee Role = "employee"
)

// Prices holds the price per role. A nil amount means the role is not offered
// the meal, which is different from a zero price.
type Prices struct {
	Student  *decimal.Decimal
	Employee *decimal.Decimal
}

type Price struct {
	Role   Role
	Amount decimal.Decimal
}

// Present returns the offered prices, student first.
func (p Prices) Present() []Price {
	present := make([]Price, 0, 2)
	if p.Student != nil {
		present = append(present, Price{Role: RoleStudent, Amount: *p.Student})
	}
	if p.Employee != nil {
		present = append(present, Price{Role: RoleEmployee, Amount: *p.Employee})
	}
	return present
}

type Meal struct {
	Category string
	Name     string
	Addition string
	Prices   Prices
	Date     time.Time // UTC midnight
}

// Fragment is the raw markup of one menu entry before parsing.
type Fragment struct {
	Href     string
	Category string
	Texts    []string // h3 title, addition paragraph, price paragraph
}
