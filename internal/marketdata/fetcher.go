// Package marketdata retrieves historical bar data from external sources.
// The rest of the platform consumes bars through the Fetcher interface and
// never talks to a broker API directly.
package marketdata

import (
	"context"

	"backlab/internal/domain"
)

// Fetcher retrieves daily historical bars for a symbol.
type Fetcher interface {
	// Name returns the identifier of the data source.
	Name() string

	// FetchBars returns up to the last `days` calendar days of daily bars
	// for the symbol, in ascending date order.
	FetchBars(ctx context.Context, symbol string, days int) ([]domain.Bar, error)
}
