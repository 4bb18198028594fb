package api

import (
	"context"
	"time"

	"github.com/lysyi3m/mensa-feed/app/feed"
)

type PublisherInterface interface {
	Run(ctx context.Context, canteenID string, target *time.Time) (string, error)
}

var _ PublisherInterface = (*feed.Publisher)(nil)

type Handler struct {
	canteens  *feed.CanteenCache
	publisher PublisherInterface
	version   string
}
