package openfda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/infrastructure/httpclient"
	"DeviceLineage/internal/ports"
	"DeviceLineage/internal/scanner"
)

const (
	clearancePath = "/device/510k.json"
	maxLimit      = 1000
)

// Client talks to the openFDA 510(k) clearance endpoint.
type Client struct {
	http   *httpclient.Client
	apiKey string
	logger *slog.Logger
}

var (
	_ ports.SubmissionLister = (*Client)(nil)
	_ ports.MetadataSource   = (*Client)(nil)
	_ scanner.Scanner        = (*Client)(nil)
)

// NewClient wraps a retrying HTTP client pointed at the openFDA base URL.
func NewClient(hc *httpclient.Client, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{http: hc, apiKey: apiKey, logger: logger}
}

type clearanceResponse struct {
	Results []clearance `json:"results"`
}

type clearance struct {
	KNumber      string `json:"k_number"`
	DecisionDate string `json:"decision_date"`
	ProductCode  string `json:"product_code"`
	DeviceName   string `json:"device_name"`
	Applicant    string `json:"applicant"`
}

// Name identifies the listing strategy inside the scanner registry.
func (c *Client) Name() string {
	return "openfda"
}

// Scan lists submissions for the registry-driven listing path.
func (c *Client) Scan(ctx context.Context, req scanner.Request) ([]string, error) {
	return c.ListSubmissions(ctx, req.ProductCode, req.Limit)
}

// ListSubmissions returns the identifiers cleared under productCode.
func (c *Client) ListSubmissions(ctx context.Context, productCode string, limit int) ([]string, error) {
	records, err := c.search(ctx, fieldQuery("product_code", productCode), limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.ID != "" {
			ids = append(ids, rec.ID)
		}
	}
	c.logger.Debug("listed submissions", "product_code", productCode, "count", len(ids))
	return ids, nil
}

// FetchMetadata returns the clearance records filed under productCode.
func (c *Client) FetchMetadata(ctx context.Context, productCode string, limit int) ([]domain.Submission, error) {
	return c.search(ctx, fieldQuery("product_code", productCode), limit)
}

// LookupSubmission returns the records matching one identifier.
func (c *Client) LookupSubmission(ctx context.Context, id string) ([]domain.Submission, error) {
	return c.search(ctx, fieldQuery("k_number", id), 1)
}

func (c *Client) search(ctx context.Context, search string, limit int) ([]domain.Submission, error) {
	if c.http == nil {
		return nil, fmt.Errorf("openfda client is not configured")
	}

	query := url.Values{}
	query.Set("search", search)
	query.Set("limit", strconv.Itoa(clampLimit(limit)))
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}

	var resp clearanceResponse
	if err := c.http.GetJSON(ctx, clearancePath, query, &resp); err != nil {
		var apiErr *httpclient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			// openFDA answers 404 when nothing matches.
			return nil, nil
		}
		return nil, fmt.Errorf("openfda search %s: %w", search, err)
	}

	records := make([]domain.Submission, 0, len(resp.Results))
	for _, r := range resp.Results {
		records = append(records, domain.Submission{
			ID:           r.KNumber,
			DecisionDate: r.DecisionDate,
			ProductCode:  r.ProductCode,
			DeviceName:   r.DeviceName,
			Applicant:    r.Applicant,
		})
	}
	return records, nil
}

func fieldQuery(field, value string) string {
	return fmt.Sprintf("%s:%q", field, value)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxLimit {
		return maxLimit
	}
	return limit
}
