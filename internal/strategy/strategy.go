// Package strategy defines the Strategy interface for signal-generating
// trading strategies and provides a Registry for managing multiple strategy
// implementations.
package strategy

import (
	"sort"

	"backlab/internal/domain"
)

// Strategy is the interface that all trading strategies must implement. A
// strategy is a pure function of its input series: Signals must not retain
// state between calls.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// Signals scans an ordered bar series and returns the trade signals the
	// strategy generates over it, in series order.
	Signals(bars []domain.Bar) []domain.Signal
}

// Factory constructs a strategy instance for the given short and long
// period parameters.
type Factory func(shortPeriod, longPeriod int) Strategy

// Registry holds a named collection of strategy factories for lookup and
// enumeration.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a strategy factory to the registry under the given name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New constructs a strategy by name with the given periods. The second
// return value indicates whether the strategy was found.
func (r *Registry) New(name string, shortPeriod, longPeriod int) (Strategy, bool) {
	f, ok := r.factories[name]
	if !ok {
		return nil, false
	}
	return f(shortPeriod, longPeriod), true
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a Registry with all built-in strategies
// registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CrossoverName, func(short, long int) Strategy {
		return NewCrossover(short, long)
	})
	return r
}
