package backtest

import (
	"log/slog"
	"math"
	"sort"

	"backlab/internal/domain"
	"backlab/internal/strategy"
)

// Default candidate periods for the grid search. The grid is configurable,
// but these defaults are the canonical set.
var (
	DefaultShortPeriods = []int{5, 10, 15, 20}
	DefaultLongPeriods  = []int{20, 30, 50, 100}
)

// OptimizeParams configures a grid-search run.
type OptimizeParams struct {
	TrainSplit     float64
	InitialCapital float64
}

// Optimizer performs a brute-force grid search over moving-average period
// pairs, scoring each pair by its total return on the training slice only.
// The validation slice is never evaluated, so no parameter choice can peek
// at held-out data.
type Optimizer struct {
	ShortPeriods []int
	LongPeriods  []int
	log          *slog.Logger
}

// NewOptimizer creates an Optimizer with the default candidate grid.
func NewOptimizer(log *slog.Logger) *Optimizer {
	if log == nil {
		log = slog.Default()
	}
	return &Optimizer{
		ShortPeriods: DefaultShortPeriods,
		LongPeriods:  DefaultLongPeriods,
		log:          log,
	}
}

// Run splits the series, evaluates every (short, long) pair with
// short < long on the training slice, and returns the best pair by strictly
// greatest training return (ties keep the first pair in iteration order)
// together with the full result set sorted descending by return.
func (o *Optimizer) Run(bars []domain.Bar, p OptimizeParams) *domain.OptimizationResult {
	train, validation := Split(bars, p.TrainSplit)

	var (
		best       *domain.BestParameters
		bestReturn = math.Inf(-1)
		results    []domain.ParamResult
	)

	for _, short := range o.ShortPeriods {
		for _, long := range o.LongPeriods {
			if short >= long {
				continue
			}

			signals := strategy.NewCrossover(short, long).Signals(train)
			perf := CalculatePerformance(signals, p.InitialCapital)

			results = append(results, domain.ParamResult{
				ShortPeriod: short,
				LongPeriod:  long,
				Return:      perf.TotalReturn,
				WinRate:     perf.WinRate,
				TotalTrades: perf.TotalTrades,
			})

			if perf.TotalReturn > bestReturn {
				bestReturn = perf.TotalReturn
				best = &domain.BestParameters{
					ShortPeriod: short,
					LongPeriod:  long,
					Performance: perf,
				}
			}
		}
	}

	// Stable sort keeps iteration order among equal returns.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Return > results[j].Return
	})

	if best != nil {
		o.log.Debug("optimization complete",
			"evaluated", len(results),
			"bestShort", best.ShortPeriod,
			"bestLong", best.LongPeriod,
			"bestReturn", bestReturn,
		)
	}

	return &domain.OptimizationResult{
		BestParameters: best,
		AllResults:     results,
		DataSummary:    Summarize(bars, train, validation, p.TrainSplit),
	}
}
