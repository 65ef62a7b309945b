package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TradeGate/internal/domain/models"
	nethttp "TradeGate/pkg/http"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/util"
)

// CalendarConfig selects which events qualify from the raw feed.
type CalendarConfig struct {
	URL       string
	Currency  string
	MinImpact int // 1=low, 2=medium, 3=high
}

// calendarEntry is the upstream JSON shape (weekly economic calendar feed).
type calendarEntry struct {
	Title   string `json:"title"`
	Country string `json:"country"`
	Date    string `json:"date"`
	Impact  string `json:"impact"`
}

// Calendar fetches and filters the economic calendar feed. Implements
// service.EventSource.
type Calendar struct {
	cfg    CalendarConfig
	client *nethttp.Client
	log    *logger.Logger
}

func NewCalendar(cfg CalendarConfig, client *nethttp.Client, log *logger.Logger) *Calendar {
	return &Calendar{cfg: cfg, client: client, log: log}
}

// Fetch downloads the feed and returns events for the target currency at or
// above the configured impact, sorted as delivered by the feed. One retry on
// transient failure; the scheduler handles longer outages.
func (c *Calendar) Fetch(ctx context.Context) ([]models.EconomicEvent, error) {
	var entries []calendarEntry
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = c.client.SendAndParse(ctx, &nethttp.RequestOptions{
			Method: nethttp.MethodGet,
			URL:    c.cfg.URL,
			Headers: map[string]string{
				"Accept": "application/json",
			},
		}, &entries)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch calendar: %w", err)
		case <-time.After(time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}

	now := time.Now().UTC()
	var events []models.EconomicEvent
	for _, entry := range entries {
		if !strings.EqualFold(entry.Country, c.cfg.Currency) {
			continue
		}
		impact := impactLevel(entry.Impact)
		if impact < c.cfg.MinImpact {
			continue
		}
		ts, err := parseEventTime(entry.Date)
		if err != nil {
			c.log.Debug("skipping event with bad timestamp",
				logger.String("title", entry.Title),
				logger.String("date", entry.Date))
			continue
		}
		events = append(events, models.EconomicEvent{
			Title:        entry.Title,
			Time:         ts,
			Impact:       impact,
			MinutesUntil: ts.Sub(now).Minutes(),
		})
	}
	return events, nil
}

func impactLevel(s string) int {
	switch strings.ToLower(s) {
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	default:
		return 0
	}
}

func parseEventTime(s string) (time.Time, error) {
	if t, ok := util.ParseTime(s); ok {
		return t.UTC(), nil
	}
	// Some feed mirrors drop the timezone designator.
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable event time '%s'", s)
}
