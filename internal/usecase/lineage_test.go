package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/lineage"
)

type stubTrees struct {
	graph domain.Graph
	err   error
	got   string
}

func (s *stubTrees) Build(_ context.Context, productCode string) (domain.Graph, error) {
	s.got = productCode
	return s.graph, s.err
}

type stubBranches struct {
	graph       domain.Graph
	productCode string
	err         error
	got         string
}

func (s *stubBranches) Build(_ context.Context, start string) (domain.Graph, string, error) {
	s.got = start
	return s.graph, s.productCode, s.err
}

type stubMetadata struct {
	records []domain.Submission
}

func (s stubMetadata) FetchMetadata(context.Context, string, int) ([]domain.Submission, error) {
	return s.records, nil
}

func (s stubMetadata) LookupSubmission(context.Context, string) ([]domain.Submission, error) {
	return nil, nil
}

func sampleGraph() domain.Graph {
	g := domain.Graph{}
	g.AddEdge("ABC", "K000001")
	g.AddEdge("K000001", "K000002")
	g.AddEdge("K000002", "K000003")
	return g
}

func newTestLineage(trees TreeSource, branches BranchSource) *Lineage {
	return NewLineage(LineageDeps{
		Trees:    trees,
		Branches: branches,
		Assembler: lineage.NewAssembler(stubMetadata{records: []domain.Submission{
			{ID: "K000002", DecisionDate: "2001-05-01", ProductCode: "ABC", DeviceName: "Widget", Applicant: "Acme"},
		}}, 100),
	})
}

func TestTreeLabelsAndEnriches(t *testing.T) {
	trees := &stubTrees{graph: sampleGraph()}
	uc := newTestLineage(trees, nil)

	result, err := uc.Tree(context.Background(), " abc ")
	require.NoError(t, err)

	assert.Equal(t, "ABC", trees.got)
	assert.Equal(t, sampleGraph(), result.Tree)
	require.Len(t, result.Info, 4)
	assert.Equal(t, 0, result.Info["ABC"].Generation)
	assert.Equal(t, 1, result.Info["K000001"].Generation)
	assert.Equal(t, 3, result.Info["K000003"].Generation)
	assert.Equal(t, domain.NodeInfo{
		DecisionDate: "2001-05-01",
		ProductCodes: "ABC",
		DeviceName:   "Widget",
		Applicant:    "Acme",
		Generation:   2,
		Matched:      true,
	}, result.Info["K000002"])
}

func TestTreeResultSurvivesJSON(t *testing.T) {
	uc := newTestLineage(&stubTrees{graph: sampleGraph()}, nil)

	result, err := uc.Tree(context.Background(), "ABC")
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded domain.Result
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, result, decoded)
}

func TestTreeRejectsEmptyProductCode(t *testing.T) {
	trees := &stubTrees{}
	uc := newTestLineage(trees, nil)

	_, err := uc.Tree(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, trees.got)
}

func TestTreePropagatesBuildFailure(t *testing.T) {
	uc := newTestLineage(&stubTrees{err: context.DeadlineExceeded}, nil)

	_, err := uc.Tree(context.Background(), "ABC")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBranchUsesOwnerProductCode(t *testing.T) {
	branches := &stubBranches{graph: sampleGraph(), productCode: "ABC"}
	uc := newTestLineage(nil, branches)

	result, err := uc.Branch(context.Background(), "k000002")
	require.NoError(t, err)

	assert.Equal(t, "K000002", branches.got)
	assert.Equal(t, 2, result.Info["K000002"].Generation)
	assert.Equal(t, "Widget", result.Info["K000002"].DeviceName)
}

func TestBranchErrors(t *testing.T) {
	uc := newTestLineage(nil, &stubBranches{err: domain.ErrUnknownSubmission})

	_, err := uc.Branch(context.Background(), "K999999")
	require.True(t, errors.Is(err, domain.ErrUnknownSubmission))

	_, err = uc.Branch(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
