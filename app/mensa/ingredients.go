package mensa

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ingredientPattern matches annotations like "(3,a,12)": one or more
// comma-separated codes, each 1-2 digits or a letter from a to n.
var ingredientPattern = regexp.MustCompile(`\(((?:\d{1,2}|[a-n])(?:,(?:\d{1,2}|[a-n]))*)\)`)

// ExtractIngredients collects the ingredient codes found in any of fields and
// returns the fields with every code group removed, together with the codes
// as a sorted, deduplicated, comma-joined annotation ("" if there are none).
func ExtractIngredients(fields ...string) ([]string, string) {
	var codes []string
	for _, match := range ingredientPattern.FindAllStringSubmatch(strings.Join(fields, " "), -1) {
		codes = append(codes, strings.Split(match[1], ",")...)
	}

	codes = lo.Uniq(codes)
	sort.Strings(codes)

	cleaned := make([]string, len(fields))
	for i, field := range fields {
		cleaned[i] = ingredientPattern.ReplaceAllString(field, "")
	}

	return cleaned, strings.Join(codes, ",")
}
