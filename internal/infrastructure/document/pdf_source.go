package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ledongthuc/pdf"

	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/infrastructure/httpclient"
	"DeviceLineage/internal/ports"
)

// PDFSource downloads 510(k) summary PDFs and extracts their text page by page.
type PDFSource struct {
	http   *httpclient.Client
	logger *slog.Logger
}

var _ ports.DocumentSource = (*PDFSource)(nil)

// NewPDFSource wraps a retrying client pointed at the cdrh_docs base URL.
func NewPDFSource(hc *httpclient.Client, logger *slog.Logger) *PDFSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PDFSource{http: hc, logger: logger}
}

// FetchText returns one text segment per readable page.
func (s *PDFSource) FetchText(ctx context.Context, id string) ([]string, error) {
	path, err := DocumentPath(id)
	if err != nil {
		return nil, err
	}

	raw, err := s.http.GetBytes(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", id, err)
	}

	pages, err := ExtractPages(raw)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	s.logger.Debug("document extracted", "id", id, "bytes", len(raw), "pages", len(pages))
	return pages, nil
}

// DocumentPath returns the cdrh_docs path of a 510(k) summary. Summaries from
// 1996 to 2001 live under pdf/, 2002 to 2009 under pdfN/, later ones under pdfNN/.
func DocumentPath(id string) (string, error) {
	if domain.Classify(id) != domain.FamilyTraditional || len(id) < 3 {
		return "", fmt.Errorf("%s has no 510(k) summary document", id)
	}

	yy := id[1:3]
	year, err := strconv.Atoi(yy)
	if err != nil {
		return "", fmt.Errorf("%s: malformed year %q", id, yy)
	}

	dir := "pdf"
	switch {
	case year >= 2 && year <= 9:
		dir = "pdf" + strconv.Itoa(year)
	case year >= 10 && year < 96:
		dir = "pdf" + yy
	}
	return "/" + dir + "/" + id + ".pdf", nil
}

// ExtractPages parses a PDF and returns the plain text of every page that
// yields text. Pages that fail to decode are skipped.
func ExtractPages(raw []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("unreadable pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, textErr := page.GetPlainText(nil)
		if textErr != nil {
			continue
		}
		pages = append(pages, text+"\n")
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no readable pages")
	}
	return pages, nil
}
