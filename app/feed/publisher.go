package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/mensa-feed/app/mensa"
)

var ErrUnknownCanteen = errors.New("unknown canteen")

type PageFetcher interface {
	Fetch(ctx context.Context, canteenID string) ([]byte, error)
}

type DocumentValidator interface {
	Validate(doc string) error
}

var _ PageFetcher = (*mensa.Fetcher)(nil)

// Publisher runs the whole pipeline for one canteen: fetch, extract, assemble
// and validate. Nothing is cached between runs.
type Publisher struct {
	canteens  *CanteenCache
	fetcher   PageFetcher
	extractor *mensa.Extractor
	generator *Generator
	validator DocumentValidator
}

func NewPublisher(canteens *CanteenCache, fetcher PageFetcher, extractor *mensa.Extractor,
	generator *Generator, validator DocumentValidator) *Publisher {
	return &Publisher{
		canteens:  canteens,
		fetcher:   fetcher,
		extractor: extractor,
		generator: generator,
		validator: validator,
	}
}

func (p *Publisher) Run(ctx context.Context, canteenID string, target *time.Time) (string, error) {
	canteen, ok := p.canteens.GetCanteen(canteenID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCanteen, canteenID)
	}

	start := time.Now()

	page, err := p.fetcher.Fetch(ctx, canteenID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch menu page: %w", err)
	}

	meals, err := p.extractor.Run(page, canteenID, target)
	if err != nil {
		return "", fmt.Errorf("failed to extract meals: %w", err)
	}

	doc, err := p.generator.Run(canteen.Info, meals)
	if err != nil {
		return "", fmt.Errorf("failed to generate feed: %w", err)
	}

	if err := p.validator.Validate(doc); err != nil {
		return "", fmt.Errorf("failed to validate feed: %w", err)
	}

	slog.Info("Feed generated",
		"canteen", canteenID,
		"meals", len(meals),
		"bytes", len(doc),
		"duration", time.Since(start))

	return doc, nil
}
