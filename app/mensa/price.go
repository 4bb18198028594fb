package mensa

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var pricePattern = regexp.MustCompile(`((\d+,\d{2})|-)\D*((\d+,\d{2})|-)`)

// ParsePrices reads the student and employee prices from a price line such as
// "3,50 € / 5,20 €". A dash in either slot marks the role as not offered.
func ParsePrices(line string) (Prices, error) {
	match := pricePattern.FindStringSubmatch(line)
	if match == nil {
		return Prices{}, newFormatError("price", line, fmt.Errorf("no price pair found"))
	}

	student, err := parseAmount(match[2])
	if err != nil {
		return Prices{}, newFormatError("price", line, err)
	}
	employee, err := parseAmount(match[4])
	if err != nil {
		return Prices{}, newFormatError("price", line, err)
	}

	return Prices{Student: student, Employee: employee}, nil
}

func parseAmount(token string) (*decimal.Decimal, error) {
	if token == "" {
		return nil, nil
	}
	amount, err := decimal.NewFromString(strings.Replace(token, ",", ".", 1))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", token, err)
	}
	return &amount, nil
}
