package mensa

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

const softHyphen = "\u00ad"

// PageStrategy locates the raw menu entries of one canteen in a fetched page.
// It is the only place that knows the upstream DOM layout.
type PageStrategy interface {
	Fragments(page []byte, canteenID string) ([]Fragment, error)
}

var _ PageStrategy = (*MyMensaStrategy)(nil)

// MyMensaStrategy reads the my-mensa weekly menu page. Every menu entry is a
// link to "mensa=<id>#<id>_tag_<year><offset>_essen" wrapping an h3 title and
// two paragraphs; the category label is the element right before the link's
// parent.
type MyMensaStrategy struct{}

func NewMyMensaStrategy() *MyMensaStrategy {
	return &MyMensaStrategy{}
}

func (s *MyMensaStrategy) Fragments(page []byte, canteenID string) ([]Fragment, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	id := regexp.QuoteMeta(canteenID)
	linkPattern, err := regexp.Compile(fmt.Sprintf(`mensa=%s#%s_tag_20\d{3,5}_essen`, id, id))
	if err != nil {
		return nil, fmt.Errorf("failed to compile link pattern: %w", err)
	}

	var fragments []Fragment
	doc.Find("[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !linkPattern.MatchString(href) {
			return
		}

		fragment := Fragment{
			Href:     href,
			Category: link.Parent().Prev().Text(),
		}
		link.Find("h3, p").Each(func(_ int, block *goquery.Selection) {
			fragment.Texts = append(fragment.Texts, block.Text())
		})

		fragments = append(fragments, fragment)
	})

	return fragments, nil
}

type Extractor struct {
	strategy PageStrategy
}

func NewExtractor(strategy PageStrategy) *Extractor {
	if strategy == nil {
		strategy = NewMyMensaStrategy()
	}
	return &Extractor{strategy: strategy}
}

// Run turns a fetched page into meal records in page order. When target is
// set, entries for other days are skipped. A single malformed entry fails the
// whole page.
func (e *Extractor) Run(page []byte, canteenID string, target *time.Time) ([]Meal, error) {
	fragments, err := e.strategy.Fragments(page, canteenID)
	if err != nil {
		return nil, newFormatError("markup", canteenID, err)
	}

	meals := make([]Meal, 0, len(fragments))
	skipped := 0
	for _, fragment := range fragments {
		meal, matched, err := e.parseFragment(fragment, target)
		if err != nil {
			return nil, err
		}
		if !matched {
			skipped++
			continue
		}
		meals = append(meals, meal)
	}

	slog.Debug("Meals extracted",
		"canteen", canteenID,
		"fragments", len(fragments),
		"meals", len(meals),
		"skipped", skipped)

	return meals, nil
}

func (e *Extractor) parseFragment(fragment Fragment, target *time.Time) (Meal, bool, error) {
	if len(fragment.Texts) != 3 {
		return Meal{}, false, newFormatError("markup", fragment.Href,
			fmt.Errorf("expected 3 text blocks, got %d", len(fragment.Texts)))
	}

	name := cleanText(fragment.Texts[0])
	addition := cleanText(fragment.Texts[1])
	priceLine := cleanText(fragment.Texts[2])

	prices, err := ParsePrices(priceLine)
	if err != nil {
		return Meal{}, false, err
	}

	year, offset, date, err := ResolveDate(fragment.Href)
	if err != nil {
		return Meal{}, false, err
	}
	if target != nil && !MatchesDate(year, offset, *target) {
		return Meal{}, false, nil
	}

	if strings.TrimSpace(fragment.Category) == "" {
		return Meal{}, false, newFormatError("markup", fragment.Href, fmt.Errorf("empty category"))
	}
	if strings.TrimSpace(name) == "" {
		return Meal{}, false, newFormatError("markup", fragment.Href, fmt.Errorf("empty meal name"))
	}

	return Meal{
		Category: fragment.Category,
		Name:     name,
		Addition: addition,
		Prices:   prices,
		Date:     date,
	}, true, nil
}

// cleanText applies compatibility decomposition and drops the soft hyphens the
// upstream page inserts for line wrapping.
func cleanText(text string) string {
	return strings.ReplaceAll(norm.NFKD.String(text), softHyphen, "")
}
