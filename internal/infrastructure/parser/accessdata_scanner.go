package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/scanner"
)

const (
	accessDataListURL = "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfpmn/pmn.cfm"
	maxPageSize       = 500
)

// AccessDataScanner scrapes the premarket notification search page for the
// submissions filed under a product code.
type AccessDataScanner struct {
	client  *http.Client
	listURL string
	logger  *slog.Logger
}

var _ scanner.Scanner = (*AccessDataScanner)(nil)

// NewAccessDataScanner wires an HTTP client; listURL defaults to the public pmn.cfm search.
func NewAccessDataScanner(client *http.Client, listURL string, logger *slog.Logger) *AccessDataScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if listURL == "" {
		listURL = accessDataListURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AccessDataScanner{client: client, listURL: listURL, logger: logger}
}

// Name identifies the strategy inside the registry.
func (a *AccessDataScanner) Name() string {
	return "accessdata"
}

// Scan fetches one result page and returns the identifiers it links to, in page order.
func (a *AccessDataScanner) Scan(ctx context.Context, req scanner.Request) ([]string, error) {
	if req.ProductCode == "" {
		return nil, fmt.Errorf("no product code provided")
	}

	pageURL, err := buildListURL(a.listURL, req.ProductCode, pageSize(req.Limit))
	if err != nil {
		return nil, err
	}

	doc, err := a.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("product code %s: %w", req.ProductCode, err)
	}

	ids := extractIdentifiers(doc)
	if req.Limit > 0 && len(ids) > req.Limit {
		ids = ids[:req.Limit]
	}
	a.logger.Debug("listing page parsed", "product_code", req.ProductCode, "count", len(ids))
	return ids, nil
}

func (a *AccessDataScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "DeviceLineage/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("accessdata returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func extractIdentifiers(doc *goquery.Document) []string {
	var ids []string
	seen := map[string]struct{}{}

	doc.Find(`a[href*="ID="]`).Each(func(_ int, link *goquery.Selection) {
		id := parseLink(link)
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	})

	return ids
}

func parseLink(link *goquery.Selection) string {
	text := strings.ToUpper(strings.TrimSpace(link.Text()))
	if id := domain.IdentifierPattern.FindString(text); id != "" && id == text {
		return id
	}

	href, _ := link.Attr("href")
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	ref := strings.ToUpper(parsed.Query().Get("ID"))
	if id := domain.IdentifierPattern.FindString(ref); id != "" && id == ref {
		return id
	}
	return ""
}

func buildListURL(base, productCode string, size int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("start_search", "1")
	query.Set("Center", "CDRH")
	query.Set("ProductCode", productCode)
	query.Set("PAGENUM", strconv.Itoa(size))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func pageSize(limit int) int {
	if limit <= 0 || limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
