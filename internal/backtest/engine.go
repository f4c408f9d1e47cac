package backtest

import (
	"errors"
	"fmt"
	"log/slog"

	"backlab/internal/domain"
	"backlab/internal/strategy"
)

// ErrUnknownStrategy is returned by Engine.Run when the requested strategy
// name is not registered. Callers can match it with errors.Is.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Params configures a single backtest run.
type Params struct {
	Strategy       string
	ShortPeriod    int
	LongPeriod     int
	TrainSplit     float64
	InitialCapital float64
}

// Engine runs strategies over a chronologically split bar series and
// reports training and validation performance side by side.
type Engine struct {
	registry *strategy.Registry
	log      *slog.Logger
}

// NewEngine creates an Engine that looks up strategies in the provided
// registry.
func NewEngine(registry *strategy.Registry, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		registry: registry,
		log:      log,
	}
}

// Run splits the series into training and validation slices, runs the named
// strategy and the performance calculator on each slice independently, and
// assembles the comparison report. An unregistered strategy name returns
// ErrUnknownStrategy; short or empty slices are not errors and produce
// zero-activity results.
func (e *Engine) Run(bars []domain.Bar, p Params) (*domain.BacktestResult, error) {
	strat, ok := e.registry.New(p.Strategy, p.ShortPeriod, p.LongPeriod)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, p.Strategy)
	}

	train, validation := Split(bars, p.TrainSplit)

	trainSignals := strat.Signals(train)
	validationSignals := strat.Signals(validation)

	trainPerf := CalculatePerformance(trainSignals, p.InitialCapital)
	validationPerf := CalculatePerformance(validationSignals, p.InitialCapital)

	e.log.Debug("backtest complete",
		"strategy", p.Strategy,
		"short", p.ShortPeriod,
		"long", p.LongPeriod,
		"trainSignals", len(trainSignals),
		"validationSignals", len(validationSignals),
		"trainReturn", trainPerf.TotalReturn,
		"validationReturn", validationPerf.TotalReturn,
	)

	return &domain.BacktestResult{
		Strategy: p.Strategy,
		Parameters: domain.Parameters{
			ShortPeriod:    p.ShortPeriod,
			LongPeriod:     p.LongPeriod,
			InitialCapital: p.InitialCapital,
		},
		DataSummary: Summarize(bars, train, validation, p.TrainSplit),
		TrainingResults: domain.SliceResult{
			Trades:      trainSignals,
			Performance: trainPerf,
		},
		ValidationResults: domain.SliceResult{
			Trades:      validationSignals,
			Performance: validationPerf,
		},
		Summary: domain.ReturnSummary{
			TrainReturn:           trainPerf.TotalReturn,
			ValidationReturn:      validationPerf.TotalReturn,
			PerformanceDifference: round2(trainPerf.TotalReturn - validationPerf.TotalReturn),
		},
	}, nil
}
