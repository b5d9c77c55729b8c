package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"DeviceLineage/internal/domain"
)

// LineageService is satisfied by *usecase.Lineage.
type LineageService interface {
	Tree(ctx context.Context, productCode string) (domain.Result, error)
	Branch(ctx context.Context, id string) (domain.Result, error)
}

// Options tunes the router.
type Options struct {
	ServiceName    string
	RequestTimeout time.Duration
	AllowedOrigins []string
	Logger         *slog.Logger
}

type treeRequest struct {
	ProductCode string `json:"pcode" binding:"required"`
}

type branchRequest struct {
	KNumber     string `json:"knumber"`
	ProductCode string `json:"pcode"`
}

type handlers struct {
	svc     LineageService
	timeout time.Duration
	logger  *slog.Logger
}

// NewRouter builds the gin engine serving the lineage endpoints.
func NewRouter(svc LineageService, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "devicelineage"
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestID(),
		AccessLog(logger),
		CORS(opts.AllowedOrigins),
		otelgin.Middleware(opts.ServiceName),
	)

	h := &handlers{svc: svc, timeout: opts.RequestTimeout, logger: logger}

	router.GET("/test", h.hello)
	router.POST("/test", h.hello)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/tree", h.tree)
	router.POST("/branch", h.branch)

	return router
}

func (h *handlers) hello(c *gin.Context) {
	c.String(http.StatusOK, "hello")
}

func (h *handlers) tree(c *gin.Context) {
	var req treeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must carry a non-empty pcode"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.svc.Tree(ctx, req.ProductCode)
	h.respond(c, result, err)
}

func (h *handlers) branch(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	id := strings.TrimSpace(req.KNumber)
	if id == "" {
		id = strings.TrimSpace(req.ProductCode)
	}
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must carry a knumber"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.svc.Branch(ctx, id)
	h.respond(c, result, err)
}

func (h *handlers) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *handlers) respond(c *gin.Context, result domain.Result, err error) {
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("lineage request failed", "path", c.FullPath(), "status", status, "error", err, "request_id", c.GetString(requestIDKey))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		h.logger.Error("encode result", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode result"})
		return
	}

	etag, err := ETag(body)
	if err != nil {
		h.logger.Warn("etag unavailable", "error", err)
	} else {
		c.Header("ETag", etag)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownSubmission):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
