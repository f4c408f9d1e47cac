package marketdata

import (
	"context"
	"time"

	"backlab/internal/domain"
)

// Compile-time interface check.
var _ Fetcher = (*MockFetcher)(nil)

// MockFetcher generates deterministic synthetic daily bars for offline
// development and tests: closes rise linearly from a fixed base price.
type MockFetcher struct {
	// Now supplies the reference date for the series; defaults to
	// time.Now when nil.
	Now func() time.Time
}

// NewMockFetcher creates a MockFetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{}
}

// Name returns "mock".
func (f *MockFetcher) Name() string { return "mock" }

// FetchBars returns `days` synthetic daily bars ending yesterday. The
// series is a gentle upward ramp from 145.0, half a point per day.
func (f *MockFetcher) FetchBars(_ context.Context, _ string, days int) ([]domain.Bar, error) {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	ref := now().UTC()

	const basePrice = 145.0
	bars := make([]domain.Bar, 0, days)
	for i := 0; i < days; i++ {
		date := ref.AddDate(0, 0, -(days - i))
		bars = append(bars, domain.Bar{
			Date:   date.Format("2006-01-02"),
			Open:   basePrice + float64(i)*0.5,
			High:   basePrice + float64(i)*0.7,
			Low:    basePrice + float64(i)*0.3,
			Close:  basePrice + float64(i)*0.5,
			Volume: 1000000 + int64(i)*50000,
		})
	}
	return bars, nil
}
