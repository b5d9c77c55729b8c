package lineage

import (
	"context"
	"log/slog"

	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/metrics"
	"DeviceLineage/internal/ports"
)

// Walker follows predicates from a submission back to its origin.
type Walker struct {
	resolver ports.PredicateResolver
	logger   *slog.Logger
}

// NewWalker builds a walker on top of a predicate resolver.
func NewWalker(resolver ports.PredicateResolver, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Walker{resolver: resolver, logger: logger}
}

// Walk returns the chain [start, pred(start), ...]. It stops at a family that
// cannot cite a predicate, at an unresolved lookup, or before repeating an
// identifier already in the chain.
func (w *Walker) Walk(ctx context.Context, start string) domain.Chain {
	chain := domain.Chain{start}

	for domain.CanHavePredicate(chain.Origin()) {
		current := chain.Origin()
		res := w.resolver.Resolve(ctx, current)
		if !res.Resolved() {
			break
		}
		if chain.Contains(res.Predicate) {
			w.logger.Debug("predicate cycle", "start", start, "id", current, "predicate", res.Predicate)
			break
		}
		chain = append(chain, res.Predicate)
	}

	metrics.ChainLength.Observe(float64(len(chain)))
	w.logger.Debug("chain walked", "start", start, "length", len(chain), "origin", chain.Origin())
	return chain
}
