// Package pricefeed provides the HTTP client for the daily quote provider.
//
// Two endpoints are exposed, matching the two resolver strategies:
//   - Quote: one asset price for one calendar date (point query)
//   - DailyQuotes: the provider's full daily OHLC history in one call
//
// Transient failures (5xx, 429) are retried with jittered exponential
// backoff; everything else is returned to the caller as an *APIError.
package pricefeed
