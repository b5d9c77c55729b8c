package parser

import (
	"context"
	"fmt"
	"log/slog"

	"DeviceLineage/internal/ports"
	"DeviceLineage/internal/scanner"
)

// StrategySource implements SubmissionLister via a registered scanner strategy.
type StrategySource struct {
	registry *scanner.Registry
	strategy string
	logger   *slog.Logger
}

var _ ports.SubmissionLister = (*StrategySource)(nil)

// NewStrategySource binds the registry to the strategy named in config.
func NewStrategySource(reg *scanner.Registry, strategy string, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		strategy: strategy,
		logger:   log,
	}
}

// ListSubmissions resolves the configured scanner and lists productCode with it.
func (s *StrategySource) ListSubmissions(ctx context.Context, productCode string, limit int) ([]string, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.strategy)
	if err != nil {
		return nil, fmt.Errorf("listing source %s: %w", s.strategy, err)
	}

	s.debug("list submissions", "scanner", strategy.Name(), "product_code", productCode, "limit", limit)
	ids, err := strategy.Scan(ctx, scanner.Request{ProductCode: productCode, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("scan %s with %s: %w", productCode, strategy.Name(), err)
	}

	s.debug("listing done", "scanner", strategy.Name(), "product_code", productCode, "count", len(ids))
	return ids, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
