// internal/infrastructure/storeapi/stats.go
package storeapi

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// StatPoint is one aggregated period of the statistics endpoint
type StatPoint struct {
	Period  string          `json:"period"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Stats is the aggregated order/revenue response
type Stats struct {
	Interval string      `json:"interval"`
	Start    time.Time   `json:"start"`
	End      time.Time   `json:"end"`
	Data     []StatPoint `json:"data"`
}

// Valid statistics intervals, as the remote service accepts them
const (
	IntervalDaily   = "daily"
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
	IntervalYearly  = "yearly"
)

// GetStats fetches order counts and revenue aggregated by interval
func (c *Client) GetStats(ctx context.Context, token, interval string) (*Stats, error) {
	query := url.Values{}
	if interval != "" {
		query.Set("interval", interval)
	}

	path := "/stats"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var stats Stats
	if err := c.do(ctx, http.MethodGet, path, token, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
