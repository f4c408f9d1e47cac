package backtest

import (
	"math"

	"backlab/internal/domain"
)

// DefaultInitialCapital is the starting capital used when the caller does
// not supply one.
const DefaultInitialCapital = 10000.0

// CalculatePerformance simulates an all-in, single-position strategy over
// an ordered signal sequence and returns the aggregate metrics. A BUY
// converts all capital to shares at the signal price; a SELL converts all
// shares back to capital, classifying the round trip as profitable when the
// proceeds exceed the initial capital. A trailing open position is marked
// to market at the last signal's price. Sequences with fewer than two
// signals yield a zero-activity report with the capital unchanged.
func CalculatePerformance(signals []domain.Signal, initialCapital float64) domain.PerformanceReport {
	if len(signals) < 2 {
		return domain.PerformanceReport{
			WinRate:        0.0,
			InitialCapital: initialCapital,
			FinalCapital:   initialCapital,
			TotalReturn:    0.0,
		}
	}

	capital := initialCapital
	shares := 0.0
	totalTrades := 0
	profitableTrades := 0
	losingTrades := 0

	for _, sig := range signals {
		switch {
		case sig.Action == domain.SignalBuy:
			shares = capital / sig.Price
			capital = 0
			totalTrades++
		case sig.Action == domain.SignalSell && shares > 0:
			sellValue := shares * sig.Price
			if sellValue > initialCapital {
				profitableTrades++
			} else {
				losingTrades++
			}
			capital = sellValue
			shares = 0
		}
	}

	// Still holding: mark the open position at the last signal's price.
	if shares > 0 {
		capital = shares * signals[len(signals)-1].Price
	}

	completedTrades := profitableTrades + losingTrades
	winRate := 0.0
	if completedTrades > 0 {
		winRate = float64(profitableTrades) / float64(completedTrades) * 100
	}

	return domain.PerformanceReport{
		TotalTrades:        totalTrades,
		CompletedTrades:    completedTrades,
		ProfitableTrades:   profitableTrades,
		LosingTrades:       losingTrades,
		WinRate:            winRate,
		InitialCapital:     initialCapital,
		FinalCapital:       round2(capital),
		TotalReturn:        round2((capital - initialCapital) / initialCapital * 100),
		TotalReturnDollars: round2(capital - initialCapital),
	}
}

// round2 rounds to two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
