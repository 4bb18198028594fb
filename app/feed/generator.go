package feed

import (
	"github.com/lysyi3m/mensa-feed/app/mensa"
	"github.com/lysyi3m/mensa-feed/app/openmensa"
)

type Generator struct {
	version string
}

func NewGenerator(version string) *Generator {
	return &Generator{version: version}
}

// Run assembles the OpenMensa document for meals, which are kept in the given
// order. Each call uses its own builder.
func (g *Generator) Run(info openmensa.CanteenInfo, meals []mensa.Meal) (string, error) {
	builder := openmensa.NewBuilder()
	builder.SetVersion(g.version)
	builder.SetCanteenInfo(info)

	for _, meal := range meals {
		cleaned, annotation := mensa.ExtractIngredients(meal.Name, meal.Addition)
		name, addition := cleaned[0], cleaned[1]

		var notes []string
		if addition != "" {
			notes = append(notes, addition)
		}
		if annotation != "" {
			notes = append(notes, annotation)
		}

		// Absent roles are left out: the feed tells "not offered" apart from "free".
		present := meal.Prices.Present()
		prices := make([]openmensa.Price, 0, len(present))
		for _, price := range present {
			prices = append(prices, openmensa.Price{
				Role:  string(price.Role),
				Value: price.Amount.StringFixed(2),
			})
		}

		if err := builder.AddMeal(meal.Date, meal.Category, name, notes, prices); err != nil {
			return "", &mensa.FormatError{Stage: "feed", Input: meal.Name, Err: err}
		}
	}

	return builder.ToXML()
}
