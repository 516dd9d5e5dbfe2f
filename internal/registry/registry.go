// Package registry holds the persistent token registry: the mapping from
// (category, canonical value) to short identifier suffixes, plus the
// per-category counters that drive suffix assignment.
//
// A Registry instance is not safe for concurrent use. Callers that share one
// registry across goroutines must serialize access externally; the compiler
// pipeline is single-threaded and holds exactly one registry per run.
package registry

import (
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

// Snapshot is the on-disk shape of the registry: category -> canonical value -> suffix.
type Snapshot map[string]map[string]string

// Store abstracts the persistence medium for the registry.
// Load returns an empty (possibly nil) snapshot when no backing data exists;
// a missing backing store is not an error.
type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// Registry is the in-memory token registry. It is loaded once at
// construction and persisted after every successful mutation when a store
// is configured. A persistence failure is reported to the caller but never
// rolls back the in-memory state.
type Registry struct {
	store    Store
	tokens   Snapshot
	counters map[string]int
	logger   *zap.Logger
}

// New loads a registry from the given store. A nil store yields a purely
// in-memory registry that starts empty.
func New(store Store, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		store:    store,
		tokens:   make(Snapshot),
		counters: make(map[string]int),
	}
	r.logger = logger

	if store != nil {
		snap, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load token registry: %w", err)
		}
		if snap != nil {
			r.tokens = snap
		}
	}
	r.initCounters()

	logger.Debug("token registry loaded",
		zap.Int("categories", len(r.tokens)),
		zap.Int("tokens", r.Len()))
	return r, nil
}

// initCounters derives each category counter from the highest numeric suffix
// already bound in that category. Counters hold the next candidate suffix and
// never move backwards, even if a binding is later removed.
func (r *Registry) initCounters() {
	for category, values := range r.tokens {
		max := 0
		for _, suffix := range values {
			if n, err := strconv.Atoi(suffix); err == nil && n > max {
				max = n
			}
		}
		r.counters[category] = max + 1
	}
}

// Lookup returns the suffix bound to (category, value), if any.
func (r *Registry) Lookup(category, value string) (string, bool) {
	values, ok := r.tokens[category]
	if !ok {
		return "", false
	}
	suffix, ok := values[value]
	return suffix, ok
}

// SuffixOwner returns the canonical value currently bound to the given suffix
// within a category. Used to detect suffix collisions during generation.
func (r *Registry) SuffixOwner(category, suffix string) (string, bool) {
	for value, s := range r.tokens[category] {
		if s == suffix {
			return value, true
		}
	}
	return "", false
}

// Counter returns the next candidate suffix for a category. Counters start at 1.
func (r *Registry) Counter(category string) int {
	if c, ok := r.counters[category]; ok {
		return c
	}
	return 1
}

// Advance moves a category counter past a suffix that has just been used.
// The counter is monotonically non-decreasing.
func (r *Registry) Advance(category string, used int) {
	next := r.Counter(category)
	if used >= next {
		next = used
	}
	r.counters[category] = next + 1
}

// Bind records (category, value) -> suffix and persists the registry.
// The in-memory binding survives a persistence failure; the error is
// returned so the caller can surface it.
func (r *Registry) Bind(category, value, suffix string) error {
	if r.tokens[category] == nil {
		r.tokens[category] = make(map[string]string)
	}
	r.tokens[category][value] = suffix

	if r.store == nil {
		return nil
	}
	if err := r.store.Save(r.tokens); err != nil {
		r.logger.Warn("token registry persist failed; continuing with in-memory state",
			zap.String("category", category),
			zap.Error(err))
		return fmt.Errorf("failed to persist token registry: %w", err)
	}
	return nil
}

// Values returns a copy of the value -> suffix map for a category. Mutating
// the returned map never touches registry state.
func (r *Registry) Values(category string) map[string]string {
	values := r.tokens[category]
	out := make(map[string]string, len(values))
	for v, s := range values {
		out[v] = s
	}
	return out
}

// Categories returns the category names present in the registry, sorted.
func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.tokens))
	for c := range r.tokens {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len reports the total number of bound tokens across all categories.
func (r *Registry) Len() int {
	n := 0
	for _, values := range r.tokens {
		n += len(values)
	}
	return n
}

// Reload discards the in-memory state and re-reads the backing store.
// Counters are re-derived from the loaded snapshot but never decrease.
func (r *Registry) Reload() error {
	if r.store == nil {
		return nil
	}
	snap, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("failed to reload token registry: %w", err)
	}
	if snap == nil {
		snap = make(Snapshot)
	}

	old := r.counters
	r.tokens = snap
	r.counters = make(map[string]int)
	r.initCounters()
	for category, prev := range old {
		if r.counters[category] < prev {
			r.counters[category] = prev
		}
	}
	r.logger.Debug("token registry reloaded", zap.Int("tokens", r.Len()))
	return nil
}
