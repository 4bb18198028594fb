package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/mensa-feed/app/feed"
	"github.com/lysyi3m/mensa-feed/app/mensa"
)

// WarningUnknownCanteen is returned verbatim for unknown canteen ids.
const WarningUnknownCanteen = "No Mensa path!"

func NewHandler(canteens *feed.CanteenCache, publisher PublisherInterface, version string) *Handler {
	return &Handler{
		canteens:  canteens,
		publisher: publisher,
		version:   version,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	canteenID := c.Param("mensa")

	if _, ok := h.canteens.GetCanteen(canteenID); !ok {
		slog.Debug("Unknown canteen requested", "canteen", canteenID)
		c.String(http.StatusOK, WarningUnknownCanteen)
		return
	}

	var target *time.Time
	if value := c.Query("date"); value != "" {
		date, err := time.Parse("2006-01-02", value)
		if err != nil {
			c.String(http.StatusBadRequest, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value))
			return
		}
		target = &date
	}

	doc, err := h.publisher.Run(c.Request.Context(), canteenID, target)
	if err != nil {
		logFeedError(canteenID, err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	c.Header("X-Mensa", canteenID)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(doc))
}

func logFeedError(canteenID string, err error) {
	var connErr *mensa.ConnectionError
	var formatErr *mensa.FormatError

	switch {
	case errors.As(err, &connErr):
		slog.Error("Upstream fetch failed", "canteen", canteenID, "url", connErr.URL, "status", connErr.StatusCode, "error", err)
	case errors.As(err, &formatErr):
		slog.Error("Unexpected format", "canteen", canteenID, "stage", formatErr.Stage, "error", err)
	default:
		slog.Error("Feed generation error", "canteen", canteenID, "error", err)
	}
}

// GetIndex lists the valid canteen ids. The body looks like an XML error
// document wrapped in raw response headers; consumers rely on it as-is.
func (h *Handler) GetIndex(c *gin.Context) {
	c.String(http.StatusOK, indexBody(h.canteens.GetIDs()))
}

func indexBody(ids []string) string {
	items := make([]string, 0, len(ids))
	for _, id := range ids {
		items = append(items, "<list-item>"+id+"</list-item>")
	}

	return `
    Status: 404 Not Found
    Content-Type: application/xml; charset=utf-8
    
    '<?xml version="1.0" encoding="UTF-8"?>'
    <error>
      <code>404</code>
        <message>Mensa not found</message>
        <debug-data>
        <list-desc>Valid filenames</list-desc>"
            ` + strings.Join(items, "\n          ") + `
        </debug-data>"
    </error>`
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"canteens":  h.canteens.GetCanteenCount(),
	})
}
