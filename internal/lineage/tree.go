package lineage

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/ports"
)

const defaultWorkers = 4

// GraphBuilder folds chains into one lineage graph. It is not safe for
// concurrent use; callers merge from a single goroutine.
type GraphBuilder struct {
	graph    domain.Graph
	visited  []string
	seen     map[string]struct{}
	inDegree map[string]int
}

// NewGraphBuilder returns an empty builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		graph:    domain.Graph{},
		seen:     map[string]struct{}{},
		inDegree: map[string]int{},
	}
}

// AddChain merges one chain's edges and records every node it touches.
func (b *GraphBuilder) AddChain(chain domain.Chain) {
	for i := len(chain) - 1; i >= 0; i-- {
		b.visit(chain[i])
	}
	for _, edge := range chain.Edges() {
		b.inDegree[edge.Child]++
		b.graph.AddEdge(edge.Parent, edge.Child)
	}
}

func (b *GraphBuilder) visit(id string) {
	if _, ok := b.seen[id]; ok {
		return
	}
	b.seen[id] = struct{}{}
	b.visited = append(b.visited, id)
}

// Origins lists visited nodes without a discovered predicate, in first-visit order.
func (b *GraphBuilder) Origins() []string {
	var origins []string
	for _, id := range b.visited {
		if b.inDegree[id] == 0 {
			origins = append(origins, id)
		}
	}
	return origins
}

// Finish attaches every origin under root and returns the graph.
func (b *GraphBuilder) Finish(root string) domain.Graph {
	for _, origin := range b.Origins() {
		if origin == root {
			continue
		}
		b.graph.AddEdge(root, origin)
	}
	return b.graph
}

// ChainWalker is satisfied by *Walker.
type ChainWalker interface {
	Walk(ctx context.Context, start string) domain.Chain
}

// TreeBuilder reconstructs the lineage graph of a whole product code.
type TreeBuilder struct {
	lister  ports.SubmissionLister
	walker  ChainWalker
	limit   int
	workers int
	logger  *slog.Logger
}

// TreeBuilderOptions carries the tuning knobs of a TreeBuilder.
type TreeBuilderOptions struct {
	Limit   int
	Workers int
	Logger  *slog.Logger
}

// NewTreeBuilder wires a submission lister with a chain walker.
func NewTreeBuilder(lister ports.SubmissionLister, walker ChainWalker, opts TreeBuilderOptions) *TreeBuilder {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &TreeBuilder{
		lister:  lister,
		walker:  walker,
		limit:   opts.Limit,
		workers: opts.Workers,
		logger:  opts.Logger,
	}
}

// Build lists every submission under productCode, walks each one's chain on a
// bounded pool, and merges the chains under productCode.
func (t *TreeBuilder) Build(ctx context.Context, productCode string) (domain.Graph, error) {
	if t.lister == nil {
		return nil, fmt.Errorf("submission lister is not configured")
	}

	ids, err := t.lister.ListSubmissions(ctx, productCode, t.limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions for %s: %w", productCode, err)
	}
	t.logger.Info("building tree", "product_code", productCode, "submissions", len(ids), "workers", t.workers)

	chains, err := t.walkAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	builder := NewGraphBuilder()
	for _, chain := range chains {
		builder.AddChain(chain)
	}
	graph := builder.Finish(productCode)

	t.logger.Info("tree built", "product_code", productCode, "edges", graph.EdgeCount())
	return graph, nil
}

func (t *TreeBuilder) walkAll(ctx context.Context, ids []string) ([]domain.Chain, error) {
	chains := make([]domain.Chain, len(ids))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for i, id := range ids {
		g.Go(func() error {
			chains[i] = t.walker.Walk(gCtx, id)
			t.logger.Debug("chain ready", "index", i+1, "total", len(ids), "chain", chains[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("walk chains: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("walk chains: %w", err)
	}
	return chains, nil
}
