package mensa

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultUpstreamURL = "https://osnabrueck.my-mensa.de/essen.php?v=5121119&hyp=1&lang=de&mensa=%s"

// Fetcher downloads the menu page of a canteen. It makes exactly one request
// per call; there is no retry.
type Fetcher struct {
	client      *resty.Client
	urlTemplate string
}

func NewFetcher(urlTemplate, userAgent string, timeout time.Duration) *Fetcher {
	if urlTemplate == "" {
		urlTemplate = DefaultUpstreamURL
	}

	client := resty.New()
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &Fetcher{
		client:      client,
		urlTemplate: urlTemplate,
	}
}

func (f *Fetcher) URL(canteenID string) string {
	return fmt.Sprintf(f.urlTemplate, url.QueryEscape(canteenID))
}

func (f *Fetcher) Fetch(ctx context.Context, canteenID string) ([]byte, error) {
	pageURL := f.URL(canteenID)

	resp, err := f.client.R().
		SetContext(ctx).
		Get(pageURL)
	if err != nil {
		return nil, &ConnectionError{URL: pageURL, Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &ConnectionError{URL: pageURL, StatusCode: resp.StatusCode()}
	}

	return resp.Body(), nil
}
