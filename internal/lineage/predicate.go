package lineage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/metrics"
	"DeviceLineage/internal/ports"
)

const predicateMarker = "PREDICATE"

// Resolver looks up the predicate cited in a submission's summary document.
type Resolver struct {
	documents   ports.DocumentSource
	callTimeout time.Duration
	logger      *slog.Logger
	inflight    singleflight.Group
}

var _ ports.PredicateResolver = (*Resolver)(nil)

// NewResolver wires a document source; callTimeout <= 0 disables the per-call deadline.
func NewResolver(documents ports.DocumentSource, callTimeout time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		documents:   documents,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// Resolve never fails: document errors come back as OutcomeUnavailable.
// Concurrent lookups of one identifier share a single fetch. The shared fetch
// is detached from every caller's cancellation and bounded by callTimeout
// alone; each caller stops waiting when its own ctx is done.
func (r *Resolver) Resolve(ctx context.Context, id string) domain.Resolution {
	if !domain.CanHavePredicate(id) {
		return r.record(domain.Resolution{ID: id, Outcome: domain.OutcomeNotResolvable})
	}

	ch := r.inflight.DoChan(id, func() (any, error) {
		return r.resolve(context.WithoutCancel(ctx), id), nil
	})

	select {
	case res := <-ch:
		return r.record(res.Val.(domain.Resolution))
	case <-ctx.Done():
		r.logger.Debug("predicate lookup abandoned", "id", id, "error", ctx.Err())
		return r.record(domain.Resolution{ID: id, Outcome: domain.OutcomeUnavailable, Err: ctx.Err()})
	}
}

func (r *Resolver) resolve(ctx context.Context, id string) domain.Resolution {
	if r.documents == nil {
		return domain.Resolution{ID: id, Outcome: domain.OutcomeUnavailable, Err: fmt.Errorf("document source is not configured")}
	}

	callCtx := ctx
	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}

	segments, err := r.documents.FetchText(callCtx, id)
	if err != nil {
		r.logger.Warn("document unavailable", "id", id, "error", err)
		return domain.Resolution{ID: id, Outcome: domain.OutcomeUnavailable, Err: err}
	}

	predicate, ok := ExtractPredicate(id, segments)
	if !ok {
		r.logger.Debug("no predicate candidate", "id", id, "segments", len(segments))
		return domain.Resolution{ID: id, Outcome: domain.OutcomeNoCandidate}
	}

	r.logger.Debug("predicate resolved", "id", id, "predicate", predicate)
	return domain.Resolution{ID: id, Predicate: predicate, Outcome: domain.OutcomeResolved}
}

func (r *Resolver) record(res domain.Resolution) domain.Resolution {
	metrics.PredicateResolutions.WithLabelValues(string(res.Outcome)).Inc()
	return res
}

// ExtractPredicate returns the identifier most often cited after the predicate
// marker. Each marker occurrence contributes at most one candidate: the first
// identifier after it in the same segment that is not id itself. Ties go to the
// candidate seen first.
func ExtractPredicate(id string, segments []string) (string, bool) {
	counts := make(map[string]int)
	var order []string

	for _, segment := range segments {
		upper := strings.ToUpper(segment)
		for offset := 0; ; {
			idx := strings.Index(upper[offset:], predicateMarker)
			if idx < 0 {
				break
			}
			offset += idx + len(predicateMarker)

			for _, cand := range domain.IdentifierPattern.FindAllString(upper[offset:], -1) {
				if cand == id {
					continue
				}
				if counts[cand] == 0 {
					order = append(order, cand)
				}
				counts[cand]++
				break
			}
		}
	}

	best, bestCount := "", 0
	for _, cand := range order {
		if counts[cand] > bestCount {
			best, bestCount = cand, counts[cand]
		}
	}
	return best, bestCount > 0
}
