package strategy

import (
	"backlab/internal/domain"
)

// CrossoverName is the registry identifier for the moving-average
// crossover strategy.
const CrossoverName = "moving_average_crossover"

// Compile-time interface check.
var _ Strategy = (*Crossover)(nil)

// Crossover is a simple moving average crossover strategy. It generates a
// BUY signal when the short-period SMA crosses above the long-period SMA,
// and a SELL signal when it crosses back below while a position is open.
//
// The periods are not validated against each other: a short period greater
// than or equal to the long period is accepted and simply tends to produce
// no signals.
type Crossover struct {
	shortPeriod int
	longPeriod  int
}

// NewCrossover creates a Crossover strategy with the specified short and
// long moving average periods.
func NewCrossover(short, long int) *Crossover {
	return &Crossover{
		shortPeriod: short,
		longPeriod:  long,
	}
}

// Name returns "moving_average_crossover".
func (c *Crossover) Name() string {
	return CrossoverName
}

// Signals scans the bar series for crossover events. For each bar from
// longPeriod onward it compares the current short/long SMAs with the
// previous bar's, opening a position on an upward cross and closing it on a
// downward cross. At most one position is open at a time, and the sequence
// always starts with a BUY. A series shorter than the long period yields no
// signals. Position state is local to one call.
func (c *Crossover) Signals(bars []domain.Bar) []domain.Signal {
	if len(bars) < c.longPeriod {
		return nil
	}

	var signals []domain.Signal
	positionOpen := false

	for i := c.longPeriod; i < len(bars); i++ {
		shortMA := meanClose(bars, i-c.shortPeriod, i)
		longMA := meanClose(bars, i-c.longPeriod, i)

		// Previous-bar windows, shifted back one bar. At the first evaluated
		// index the long window reaches one element before the start of the
		// series; that offset wraps to the end (see meanClose).
		prevShortMA := meanClose(bars, i-c.shortPeriod-1, i-1)
		prevLongMA := meanClose(bars, i-c.longPeriod-1, i-1)

		if prevShortMA <= prevLongMA && shortMA > longMA && !positionOpen {
			signals = append(signals, domain.Signal{
				Date:    bars[i].Date,
				Action:  domain.SignalBuy,
				Price:   bars[i].Close,
				ShortMA: shortMA,
				LongMA:  longMA,
			})
			positionOpen = true
		} else if prevShortMA >= prevLongMA && shortMA < longMA && positionOpen {
			signals = append(signals, domain.Signal{
				Date:    bars[i].Date,
				Action:  domain.SignalSell,
				Price:   bars[i].Close,
				ShortMA: shortMA,
				LongMA:  longMA,
			})
			positionOpen = false
		}
	}

	return signals
}

// meanClose returns the arithmetic mean of closing prices over the
// half-open index window [from, to). Negative indices wrap to the end of
// the series; this only occurs for the previous-bar window at the first
// evaluated bar and is part of the signal contract.
func meanClose(bars []domain.Bar, from, to int) float64 {
	sum := 0.0
	for j := from; j < to; j++ {
		idx := j
		if idx < 0 {
			idx += len(bars)
		}
		sum += bars[idx].Close
	}
	return sum / float64(to-from)
}
