package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/lineage"
	"DeviceLineage/internal/metrics"
)

var tracer = otel.Tracer("devicelineage.usecase")

// TreeSource builds the full lineage graph of a product code.
type TreeSource interface {
	Build(ctx context.Context, productCode string) (domain.Graph, error)
}

// BranchSource builds the branch of one submission.
type BranchSource interface {
	Build(ctx context.Context, start string) (domain.Graph, string, error)
}

// ResultAssembler joins a labelled graph with metadata.
type ResultAssembler interface {
	Assemble(ctx context.Context, productCode string, graph domain.Graph, nodes []string, generations domain.Generations) (domain.Result, error)
}

// LineageDeps wires the lineage builders into the orchestration use case.
type LineageDeps struct {
	Trees     TreeSource
	Branches  BranchSource
	Assembler ResultAssembler
	Logger    *slog.Logger
}

// Lineage implements the tree and branch workflows.
type Lineage struct {
	trees     TreeSource
	branches  BranchSource
	assembler ResultAssembler
	logger    *slog.Logger
}

// NewLineage constructs the orchestration component.
func NewLineage(deps LineageDeps) *Lineage {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Lineage{
		trees:     deps.Trees,
		branches:  deps.Branches,
		assembler: deps.Assembler,
		logger:    logger,
	}
}

// Tree builds, labels and enriches the lineage graph of a product code.
func (l *Lineage) Tree(ctx context.Context, productCode string) (result domain.Result, err error) {
	productCode = domain.NormalizeID(productCode)
	if productCode == "" {
		return domain.Result{}, fmt.Errorf("product code is required: %w", domain.ErrInvalidInput)
	}

	ctx, finish := l.begin(ctx, "tree", attribute.String("lineage.product_code", productCode))
	defer func() { finish(err) }()

	graph, err := l.trees.Build(ctx, productCode)
	if err != nil {
		return domain.Result{}, fmt.Errorf("build tree: %w", err)
	}

	return l.assemble(ctx, productCode, graph)
}

// Branch builds, labels and enriches the branch of one submission.
func (l *Lineage) Branch(ctx context.Context, id string) (result domain.Result, err error) {
	id = domain.NormalizeID(id)
	if id == "" {
		return domain.Result{}, fmt.Errorf("identifier is required: %w", domain.ErrInvalidInput)
	}

	ctx, finish := l.begin(ctx, "branch", attribute.String("lineage.identifier", id))
	defer func() { finish(err) }()

	graph, productCode, err := l.branches.Build(ctx, id)
	if err != nil {
		return domain.Result{}, fmt.Errorf("build branch: %w", err)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("lineage.product_code", productCode))

	return l.assemble(ctx, productCode, graph)
}

func (l *Lineage) assemble(ctx context.Context, productCode string, graph domain.Graph) (domain.Result, error) {
	nodes, generations := lineage.Label(graph, productCode)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("lineage.nodes", len(nodes)),
		attribute.Int("lineage.edges", graph.EdgeCount()),
	)

	result, err := l.assembler.Assemble(ctx, productCode, graph, nodes, generations)
	if err != nil {
		return domain.Result{}, fmt.Errorf("assemble result: %w", err)
	}
	return result, nil
}

func (l *Lineage) begin(ctx context.Context, kind string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "lineage."+kind, trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			l.logger.Error("lineage request failed", "kind", kind, "error", err, "duration", time.Since(start))
		} else {
			l.logger.Info("lineage request done", "kind", kind, "duration", time.Since(start))
		}
		metrics.BuildDuration.WithLabelValues(kind, outcome).Observe(time.Since(start).Seconds())
		span.End()
	}
}
