package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/cache"
	"github.com/edusupply/compras/internal/config"
)

// Holiday is one public-holiday entry as served by the external API.
type Holiday struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Inalienable bool   `json:"inalienable"`
	Extra       string `json:"extra"`
}

// SetFrom builds a HolidaySet from a fetched holiday list.
func SetFrom(holidays []Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		if h.Date != "" {
			set.Add(h.Date)
		}
	}
	return set
}

// HolidayClient fetches per-year holiday lists, caching each year for the
// configured TTL (24h by default). Fetch failures degrade to an empty list
// so delivery dates still skip weekends.
type HolidayClient struct {
	http     *http.Client
	baseURL  string
	cacheTTL time.Duration
	store    cache.Store
	logger   *zap.Logger
}

// NewHolidayClient wires the holiday API client.
func NewHolidayClient(cfg config.Config, store cache.Store, logger *zap.Logger) *HolidayClient {
	return &HolidayClient{
		http:     &http.Client{Timeout: cfg.Holidays.Timeout},
		baseURL:  cfg.Holidays.BaseURL,
		cacheTTL: cfg.Holidays.CacheTTL,
		store:    store,
		logger:   logger,
	}
}

// Year returns the holidays for a calendar year. Never errors: on any
// failure it logs and returns an empty list.
func (c *HolidayClient) Year(ctx context.Context, year int) []Holiday {
	key := fmt.Sprintf("feriados:%d", year)

	if c.store != nil {
		if raw, err := c.store.Get(ctx, key); err == nil {
			var cached []Holiday
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached
			}
		}
	}

	holidays, err := c.fetch(ctx, year)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("holiday fetch failed; treating year as holiday-free",
				zap.Int("year", year), zap.Error(err))
		}
		return nil
	}

	if c.store != nil {
		if raw, err := json.Marshal(holidays); err == nil {
			if err := c.store.Set(ctx, key, raw, c.cacheTTL); err != nil && c.logger != nil {
				c.logger.Warn("holiday cache write failed", zap.Int("year", year), zap.Error(err))
			}
		}
	}

	return holidays
}

// SetForYears merges the holiday sets of the given years, for delivery
// windows that may cross a year boundary.
func (c *HolidayClient) SetForYears(ctx context.Context, years ...int) HolidaySet {
	set := make(HolidaySet)
	for _, year := range years {
		set.Merge(SetFrom(c.Year(ctx, year)))
	}
	return set
}

func (c *HolidayClient) fetch(ctx context.Context, year int) ([]Holiday, error) {
	url := fmt.Sprintf("%s/holidays/%d.json", c.baseURL, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday API returned %d", resp.StatusCode)
	}

	var envelope struct {
		Status string    `json:"status"`
		Data   []Holiday `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
