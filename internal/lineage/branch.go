package lineage

import (
	"context"
	"fmt"
	"log/slog"

	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/ports"
)

// GraphSource is satisfied by *TreeBuilder.
type GraphSource interface {
	Build(ctx context.Context, productCode string) (domain.Graph, error)
}

// BranchBuilder extracts one submission's ancestry plus its descendants.
type BranchBuilder struct {
	walker   ChainWalker
	metadata ports.MetadataSource
	trees    GraphSource
	logger   *slog.Logger
}

// NewBranchBuilder wires the walker, metadata lookups and the full-tree builder.
func NewBranchBuilder(walker ChainWalker, metadata ports.MetadataSource, trees GraphSource, logger *slog.Logger) *BranchBuilder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BranchBuilder{walker: walker, metadata: metadata, trees: trees, logger: logger}
}

// Build returns the branch graph rooted at the owning product code of start,
// together with that product code.
//
// Descendants are recovered from a full rebuild of the product code's tree.
// TODO: fetch only the subgraph below the branch origin once a tree cache exists.
func (b *BranchBuilder) Build(ctx context.Context, start string) (domain.Graph, string, error) {
	chain := b.walker.Walk(ctx, start)

	productCode, err := b.ownerOf(ctx, chain[0])
	if err != nil {
		return nil, "", err
	}

	branch := domain.Graph{}
	for _, edge := range chain.Edges() {
		branch.AddEdge(edge.Parent, edge.Child)
	}
	branch.AddEdge(productCode, chain.Origin())

	full, err := b.trees.Build(ctx, productCode)
	if err != nil {
		return nil, "", fmt.Errorf("build tree for branch %s: %w", start, err)
	}

	queue := []string{chain[0]}
	seen := map[string]struct{}{chain[0]: {}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range full.Children(cur) {
			branch.AddEdge(cur, child)
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			queue = append(queue, child)
		}
	}

	b.logger.Info("branch built", "start", start, "product_code", productCode, "chain", len(chain), "edges", branch.EdgeCount())
	return branch, productCode, nil
}

func (b *BranchBuilder) ownerOf(ctx context.Context, id string) (string, error) {
	if b.metadata == nil {
		return "", fmt.Errorf("metadata source is not configured")
	}

	records, err := b.metadata.LookupSubmission(ctx, id)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", id, err)
	}

	for _, rec := range records {
		if rec.ID == id && rec.ProductCode != "" {
			return rec.ProductCode, nil
		}
	}
	for _, rec := range records {
		if rec.ProductCode != "" {
			return rec.ProductCode, nil
		}
	}
	return "", fmt.Errorf("%s: %w", id, domain.ErrUnknownSubmission)
}
