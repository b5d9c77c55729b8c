package document

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DeviceLineage/internal/infrastructure/httpclient"
)

func TestDocumentPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want string
	}{
		{"K220499", "/pdf22/K220499.pdf"},
		{"K190072", "/pdf19/K190072.pdf"},
		{"K101234", "/pdf10/K101234.pdf"},
		{"K051234", "/pdf5/K051234.pdf"},
		{"K021234", "/pdf2/K021234.pdf"},
		{"K011234", "/pdf/K011234.pdf"},
		{"K981234", "/pdf/K981234.pdf"},
	}

	for _, tt := range tests {
		got, err := DocumentPath(tt.id)
		if err != nil {
			t.Fatalf("DocumentPath(%s) error: %v", tt.id, err)
		}
		if got != tt.want {
			t.Fatalf("DocumentPath(%s) = %s, want %s", tt.id, got, tt.want)
		}
	}
}

func TestDocumentPathRejectsOtherFamilies(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"DEN170073", "P000041", "ABC", "K", "KXY1234"} {
		if _, err := DocumentPath(id); err == nil {
			t.Fatalf("expected error for %s", id)
		}
	}
}

func TestExtractPagesRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := ExtractPages([]byte("this is not a pdf")); err == nil {
		t.Fatal("expected error for non-pdf payload")
	}
	if _, err := ExtractPages(nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestFetchTextMissingDocument(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	src := NewPDFSource(httpclient.New(server.URL, httpclient.WithBackoff(time.Millisecond)), nil)
	_, err := src.FetchText(context.Background(), "K220499")

	var apiErr *httpclient.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
	if gotPath != "/pdf22/K220499.pdf" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}

func TestFetchTextUnreadableDocument(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance page</html>"))
	}))
	defer server.Close()

	src := NewPDFSource(httpclient.New(server.URL), nil)
	if _, err := src.FetchText(context.Background(), "K220499"); err == nil {
		t.Fatal("expected error for unreadable document")
	}
}
