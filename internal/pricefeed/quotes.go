package pricefeed

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glmrscan/transfer-indexer/internal/model"
)

// DailyQuote is one calendar day's quote from the provider's range endpoint.
type DailyQuote struct {
	Day   model.Day
	Open  decimal.Decimal
	Close decimal.Decimal
}

// pointResponse is the wire format of the point endpoint.
type pointResponse struct {
	Price decimal.Decimal `json:"price"`
}

// candle is one daily OHLC entry in the range endpoint response.
type candle struct {
	OpenTime int64           `json:"open_time"` // Seconds since epoch, start of day
	Open     decimal.Decimal `json:"open"`
	Close    decimal.Decimal `json:"close"`
}

// dailyResponse is the wire format of the range endpoint.
type dailyResponse struct {
	Result struct {
		Daily []candle `json:"1d"`
	} `json:"result"`
}

// Quote fetches the asset's price for exactly one calendar date.
func (c *Client) Quote(ctx context.Context, asset string, day model.Day) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("date", day.String())

	var resp pointResponse
	path := fmt.Sprintf("/markets/%s/price", url.PathEscape(asset))
	if err := c.get(ctx, path, query, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("quote %s %s: %w", asset, day, err)
	}

	return resp.Price, nil
}

// DailyQuotes fetches the provider's full daily candle history for the asset.
// The provider returns its whole retention window (several thousand days) in
// one call, which is what makes bulk cache warming a single round trip.
func (c *Client) DailyQuotes(ctx context.Context, asset string) ([]DailyQuote, error) {
	start := time.Now()

	var resp dailyResponse
	path := fmt.Sprintf("/markets/%s/ohlc/1d", url.PathEscape(asset))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("daily quotes %s: %w", asset, err)
	}

	quotes := make([]DailyQuote, 0, len(resp.Result.Daily))
	for _, cd := range resp.Result.Daily {
		quotes = append(quotes, DailyQuote{
			Day:   model.DayOf(time.Unix(cd.OpenTime, 0)),
			Open:  cd.Open,
			Close: cd.Close,
		})
	}

	c.logger.Debug("fetched daily quotes",
		"asset", asset,
		"count", len(quotes),
		"duration", time.Since(start),
	)

	return quotes, nil
}
