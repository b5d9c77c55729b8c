package app

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"DeviceLineage/internal/config"
	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/infrastructure/document"
	"DeviceLineage/internal/infrastructure/httpclient"
	"DeviceLineage/internal/infrastructure/openfda"
	"DeviceLineage/internal/infrastructure/parser"
	"DeviceLineage/internal/lineage"
	"DeviceLineage/internal/logging"
	"DeviceLineage/internal/scanner"
	"DeviceLineage/internal/transport/httpapi"
	"DeviceLineage/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	lineage *usecase.Lineage
	logger  *slog.Logger
}

// New builds the application graph from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	fdaHTTP := httpclient.New(cfg.OpenFDA.BaseURL,
		httpclient.WithTimeout(cfg.OpenFDA.Timeout),
		httpclient.WithMaxRetries(config.Retries(cfg.OpenFDA.MaxRetries)),
	)
	fda := openfda.NewClient(fdaHTTP, cfg.OpenFDA.APIKey, baseLogger.With("component", "openfda"))

	docHTTP := httpclient.New(cfg.Documents.BaseURL,
		httpclient.WithTimeout(cfg.Documents.Timeout),
		httpclient.WithMaxRetries(config.Retries(cfg.Documents.MaxRetries)),
	)
	documents := document.NewPDFSource(docHTTP, baseLogger.With("component", "documents"))

	registry := scanner.NewRegistry()
	registry.Register(fda)
	registry.Register(parser.NewAccessDataScanner(
		&http.Client{Timeout: cfg.OpenFDA.Timeout},
		cfg.Listing.PMNURL,
		baseLogger.With("component", "scanner.accessdata"),
	))
	source := parser.NewStrategySource(registry, cfg.Listing.Source, baseLogger.With("component", "source"))

	resolver := lineage.NewResolver(documents, cfg.Crawl.CallTimeout, baseLogger.With("component", "resolver"))
	walker := lineage.NewWalker(resolver, baseLogger.With("component", "walker"))
	trees := lineage.NewTreeBuilder(source, walker, lineage.TreeBuilderOptions{
		Limit:   cfg.OpenFDA.ListLimit,
		Workers: cfg.Crawl.Workers,
		Logger:  baseLogger.With("component", "tree"),
	})
	branches := lineage.NewBranchBuilder(walker, fda, trees, baseLogger.With("component", "branch"))

	uc := usecase.NewLineage(usecase.LineageDeps{
		Trees:     trees,
		Branches:  branches,
		Assembler: lineage.NewAssembler(fda, cfg.OpenFDA.MetadataLimit),
		Logger:    baseLogger.With("component", "lineage"),
	})

	return &Application{cfg: cfg, lineage: uc, logger: baseLogger}
}

// Tree runs one product-code build.
func (a *Application) Tree(ctx context.Context, productCode string) (domain.Result, error) {
	return a.lineage.Tree(ctx, productCode)
}

// Branch runs one submission branch build.
func (a *Application) Branch(ctx context.Context, id string) (domain.Result, error) {
	return a.lineage.Branch(ctx, id)
}

// Handler returns the HTTP router.
func (a *Application) Handler() http.Handler {
	if !strings.EqualFold(a.cfg.Logging.Level, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	return httpapi.NewRouter(a.lineage, httpapi.Options{
		ServiceName:    "devicelineage",
		RequestTimeout: a.cfg.Server.RequestTimeout,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Logger:         a.logger.With("component", "http"),
	})
}

// Serve runs the HTTP server until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	server := httpapi.NewServer(a.cfg.Server.Addr, a.Handler(), a.logger.With("component", "server"))
	return server.Run(ctx)
}
