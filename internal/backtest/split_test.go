package backtest

import (
	"fmt"
	"testing"
	"time"

	"backlab/internal/domain"
)

// barsFromCloses builds a daily bar series with the given closing prices.
func barsFromCloses(closes []float64) []domain.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Date:   base.AddDate(0, 0, i).Format("2006-01-02"),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000000,
		}
	}
	return bars
}

// risingCloses returns n closes increasing linearly from 100.
func risingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return closes
}

// zigzagCloses returns n closes ramping between 90 and 110 in steps of 2,
// starting at 100 and rising.
func zigzagCloses(n int) []float64 {
	closes := make([]float64, n)
	v, d := 100.0, 2.0
	for i := range closes {
		closes[i] = v
		v += d
		if v >= 110 {
			d = -2
		}
		if v <= 90 {
			d = 2
		}
	}
	return closes
}

func TestSplitPartition(t *testing.T) {
	bars := barsFromCloses(risingCloses(100))

	for _, f := range []float64{0.1, 0.25, 0.5, 0.8, 0.9, 1.0} {
		t.Run(fmt.Sprintf("f=%v", f), func(t *testing.T) {
			train, validation := Split(bars, f)

			if len(train)+len(validation) != len(bars) {
				t.Errorf("len(train)+len(validation) = %d, want %d", len(train)+len(validation), len(bars))
			}
			wantTrain := int(float64(len(bars)) * f)
			if len(train) != wantTrain {
				t.Errorf("len(train) = %d, want %d", len(train), wantTrain)
			}
			// Chronological: train is a prefix, validation the remainder.
			for i := range train {
				if train[i] != bars[i] {
					t.Fatalf("train[%d] != bars[%d]", i, i)
				}
			}
			for i := range validation {
				if validation[i] != bars[len(train)+i] {
					t.Fatalf("validation[%d] != bars[%d]", i, len(train)+i)
				}
			}
		})
	}
}

func TestSplitDegenerate(t *testing.T) {
	// Full fraction leaves validation empty.
	bars := barsFromCloses(risingCloses(10))
	train, validation := Split(bars, 1.0)
	if len(train) != 10 || len(validation) != 0 {
		t.Errorf("Split(bars, 1.0) = %d/%d bars, want 10/0", len(train), len(validation))
	}

	// Empty series yields two empty slices, no error.
	train, validation = Split(nil, 0.8)
	if len(train) != 0 || len(validation) != 0 {
		t.Errorf("Split(nil, 0.8) = %d/%d bars, want 0/0", len(train), len(validation))
	}

	// Out-of-range fractions clamp instead of panicking.
	train, validation = Split(bars, 1.5)
	if len(train) != 10 || len(validation) != 0 {
		t.Errorf("Split(bars, 1.5) = %d/%d bars, want 10/0", len(train), len(validation))
	}
	train, validation = Split(bars, -0.5)
	if len(train) != 0 || len(validation) != 10 {
		t.Errorf("Split(bars, -0.5) = %d/%d bars, want 0/10", len(train), len(validation))
	}
}

func TestSummarize(t *testing.T) {
	bars := barsFromCloses(risingCloses(10))
	train, validation := Split(bars, 0.8)

	got := Summarize(bars, train, validation, 0.8)

	if got.TotalDataPoints != 10 || got.TrainDataPoints != 8 || got.ValidationDataPoints != 2 {
		t.Errorf("point counts = %d/%d/%d, want 10/8/2",
			got.TotalDataPoints, got.TrainDataPoints, got.ValidationDataPoints)
	}
	if got.TrainSplitPercentage != 80 {
		t.Errorf("TrainSplitPercentage = %v, want 80", got.TrainSplitPercentage)
	}
	if got.TrainPeriod.Start == nil || *got.TrainPeriod.Start != bars[0].Date {
		t.Errorf("TrainPeriod.Start = %v, want %q", got.TrainPeriod.Start, bars[0].Date)
	}
	if got.TrainPeriod.End == nil || *got.TrainPeriod.End != bars[7].Date {
		t.Errorf("TrainPeriod.End = %v, want %q", got.TrainPeriod.End, bars[7].Date)
	}
	if got.ValidationPeriod.Start == nil || *got.ValidationPeriod.Start != bars[8].Date {
		t.Errorf("ValidationPeriod.Start = %v, want %q", got.ValidationPeriod.Start, bars[8].Date)
	}
}

func TestSummarizeEmptyValidation(t *testing.T) {
	bars := barsFromCloses(risingCloses(5))
	train, validation := Split(bars, 1.0)

	got := Summarize(bars, train, validation, 1.0)
	if got.ValidationPeriod.Start != nil || got.ValidationPeriod.End != nil {
		t.Errorf("empty validation period = %+v, want nil bounds", got.ValidationPeriod)
	}
}
