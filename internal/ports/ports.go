package ports

import (
	"context"

	"DeviceLineage/internal/domain"
)

// SubmissionLister enumerates the identifiers filed under a product code.
type SubmissionLister interface {
	ListSubmissions(ctx context.Context, productCode string, limit int) ([]string, error)
}

// DocumentSource returns the text of a submission's summary document, one segment per page.
type DocumentSource interface {
	FetchText(ctx context.Context, id string) ([]string, error)
}

// MetadataSource serves published submission records.
type MetadataSource interface {
	FetchMetadata(ctx context.Context, productCode string, limit int) ([]domain.Submission, error)
	LookupSubmission(ctx context.Context, id string) ([]domain.Submission, error)
}

// PredicateResolver finds the predicate cited by a single submission.
type PredicateResolver interface {
	Resolve(ctx context.Context, id string) domain.Resolution
}
