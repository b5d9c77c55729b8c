package lineage

import (
	"context"
	"fmt"

	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/ports"
)

// Assembler joins a lineage graph with published metadata.
type Assembler struct {
	metadata ports.MetadataSource
	limit    int
}

// NewAssembler wires the metadata source and the record limit per lookup.
func NewAssembler(metadata ports.MetadataSource, limit int) *Assembler {
	return &Assembler{metadata: metadata, limit: limit}
}

// Assemble produces exactly one info entry per labelled node.
func (a *Assembler) Assemble(ctx context.Context, productCode string, graph domain.Graph, nodes []string, generations domain.Generations) (domain.Result, error) {
	if a.metadata == nil {
		return domain.Result{}, fmt.Errorf("metadata source is not configured")
	}

	records, err := a.metadata.FetchMetadata(ctx, productCode, a.limit)
	if err != nil {
		return domain.Result{}, fmt.Errorf("fetch metadata for %s: %w", productCode, err)
	}

	wanted := make(map[string]struct{}, len(nodes))
	for _, id := range nodes {
		wanted[id] = struct{}{}
	}

	info := make(map[string]domain.NodeInfo, len(nodes))
	for _, rec := range records {
		if _, ok := wanted[rec.ID]; !ok {
			continue
		}
		if _, done := info[rec.ID]; done {
			continue
		}
		info[rec.ID] = domain.NodeInfo{
			DecisionDate: rec.DecisionDate,
			ProductCodes: rec.ProductCode,
			DeviceName:   rec.DeviceName,
			Applicant:    rec.Applicant,
			Generation:   generations[rec.ID],
			Matched:      true,
		}
	}

	for _, id := range nodes {
		if _, ok := info[id]; !ok {
			info[id] = domain.NodeInfo{Generation: generations[id]}
		}
	}

	if graph == nil {
		graph = domain.Graph{}
	}
	return domain.Result{Tree: graph, Info: info}, nil
}
