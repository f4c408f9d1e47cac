package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"backlab/internal/domain"
	"backlab/internal/util"
)

// Compile-time interface check.
var _ Fetcher = (*AlpacaFetcher)(nil)

// AlpacaFetcher fetches daily bars for US equities via the Alpaca
// market-data API. Requests are rate limited and retried with exponential
// backoff.
type AlpacaFetcher struct {
	client      *marketdata.Client
	limiter     *util.RateLimiter
	maxAttempts int
	log         *slog.Logger
}

// NewAlpacaFetcher creates an AlpacaFetcher configured with the given
// credentials and request limits.
func NewAlpacaFetcher(apiKey, apiSecret, dataURL string, rateLimitPerMin, maxAttempts int) *AlpacaFetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	return &AlpacaFetcher{
		client:      marketdata.NewClient(opts),
		limiter:     util.NewRateLimiter(rateLimitPerMin),
		maxAttempts: maxAttempts,
		log:         slog.Default().With("fetcher", "alpaca"),
	}
}

// Name returns "alpaca".
func (f *AlpacaFetcher) Name() string { return "alpaca" }

// FetchBars fetches daily bars for the symbol covering the last `days`
// calendar days.
func (f *AlpacaFetcher) FetchBars(ctx context.Context, symbol string, days int) ([]domain.Bar, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	var alpacaBars []marketdata.Bar
	err := util.Retry(ctx, f.maxAttempts, time.Second, func() error {
		var err error
		alpacaBars, err = f.client.GetBars(strings.ToUpper(symbol), marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", symbol, err)
	}

	bars := make([]domain.Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, domain.Bar{
			Date:   ab.Timestamp.Format("2006-01-02"),
			Open:   ab.Open,
			High:   ab.High,
			Low:    ab.Low,
			Close:  ab.Close,
			Volume: int64(ab.Volume),
		})
	}

	f.log.Debug("fetched bars", "symbol", symbol, "days", days, "bars", len(bars))
	return bars, nil
}
