package recommend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/reelrank/reelrank/internal/domain"
)

// StrategyInfo describes one registered strategy.
type StrategyInfo struct {
	Name   string
	Weight float64
}

type registryEntry struct {
	strategy Strategy
	weight   float64
}

// registry maps strategy names to implementations and fusion weights.
// Reads take a consistent snapshot per request; mutations are not atomic with
// in-flight requests (a request observes either the old or the new weight set).
type registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]registryEntry)}
}

func (r *registry) add(s Strategy, weight float64) error {
	if weight < 0 || weight > 1 {
		return fmt.Errorf("%w: %f for %q", domain.ErrInvalidWeight, weight, s.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[s.Name()]; exists {
		return fmt.Errorf("%w: %q", domain.ErrStrategyExists, s.Name())
	}
	r.entries[s.Name()] = registryEntry{strategy: s, weight: weight}
	return nil
}

func (r *registry) remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; !exists {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, name)
	}
	delete(r.entries, name)
	return nil
}

// updateWeights applies all updates or none: an unknown name or an
// out-of-range weight rejects the whole batch.
func (r *registry) updateWeights(weights map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, weight := range weights {
		if _, exists := r.entries[name]; !exists {
			return fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, name)
		}
		if weight < 0 || weight > 1 {
			return fmt.Errorf("%w: %f for %q", domain.ErrInvalidWeight, weight, name)
		}
	}
	for name, weight := range weights {
		entry := r.entries[name]
		entry.weight = weight
		r.entries[name] = entry
	}
	return nil
}

// snapshot returns copies of the strategy and weight maps for one request.
func (r *registry) snapshot() (map[string]Strategy, map[string]float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategies := make(map[string]Strategy, len(r.entries))
	weights := make(map[string]float64, len(r.entries))
	for name, entry := range r.entries {
		strategies[name] = entry.strategy
		weights[name] = entry.weight
	}
	return strategies, weights
}

// info lists registered strategies sorted by name.
func (r *registry) info() []StrategyInfo {
	r.mu.RLock()
	out := make([]StrategyInfo, 0, len(r.entries))
	for name, entry := range r.entries {
		out = append(out, StrategyInfo{Name: name, Weight: entry.weight})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
