// Package backtest implements the backtesting and parameter-optimization
// engine: the chronological train/validation split, the trade-performance
// calculator, the backtest orchestration, and the grid-search optimizer.
// All computations are pure, synchronous functions over in-memory bar
// series; callers must not mutate a series while a call is in flight.
package backtest

import (
	"backlab/internal/domain"
)

// Split partitions a bar series chronologically into a training slice and a
// validation slice. The training slice holds the first floor(N*fraction)
// bars and always precedes the validation slice; there is no shuffling.
// Degenerate inputs are not errors: fraction 1.0 yields an empty validation
// slice, and an empty series yields two empty slices. The returned slices
// alias the input.
func Split(bars []domain.Bar, fraction float64) (train, validation []domain.Bar) {
	splitIndex := int(float64(len(bars)) * fraction)
	// Out-of-range fractions clamp rather than panic.
	if splitIndex < 0 {
		splitIndex = 0
	}
	if splitIndex > len(bars) {
		splitIndex = len(bars)
	}
	return bars[:splitIndex], bars[splitIndex:]
}

// Summarize describes a completed train/validation split: point counts,
// first/last dates of each slice (nil for empty slices), and the split
// percentage.
func Summarize(full, train, validation []domain.Bar, fraction float64) domain.DataSummary {
	return domain.DataSummary{
		TotalDataPoints:      len(full),
		TrainDataPoints:      len(train),
		ValidationDataPoints: len(validation),
		TrainPeriod:          periodRange(train),
		ValidationPeriod:     periodRange(validation),
		TrainSplitPercentage: fraction * 100,
	}
}

func periodRange(bars []domain.Bar) domain.PeriodRange {
	if len(bars) == 0 {
		return domain.PeriodRange{}
	}
	start := bars[0].Date
	end := bars[len(bars)-1].Date
	return domain.PeriodRange{Start: &start, End: &end}
}
