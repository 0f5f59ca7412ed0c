package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comexar/despacho/internal/common"
	"github.com/comexar/despacho/internal/model"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "despacho.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleClassification(requestID string) model.Classification {
	return model.Classification{
		ClassifiedAt: time.Now().UTC().Truncate(time.Second),
		RequestID:    requestID,
		Input:        "Smart TV LED 40 pulgadas",
		Code:         "8528.72.00 100W",
		Description:  "Aparatos receptores de televisión, en colores",
		Source:       model.SourceExactDBMatch,
		Confidence:   model.ConfidenceHigh,
		Interventions: []string{
			"INTI-CIE",
		},
		Duty: model.DutyTreatment{DutyRate: 20, StatisticalTax: 3},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := testStorage(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestSaveAndGetClassification(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	saved := sampleClassification("req-1")
	require.NoError(t, s.SaveClassification(ctx, saved))

	got, err := s.GetClassification(ctx, "req-1")
	require.NoError(t, err)

	assert.Equal(t, saved.Code, got.Code)
	assert.Equal(t, saved.Source, got.Source)
	assert.Equal(t, saved.Confidence, got.Confidence)
	assert.Equal(t, saved.Interventions, got.Interventions)
	assert.InEpsilon(t, 20.0, got.Duty.DutyRate, 1e-9)
	assert.False(t, got.RequiresManualReview)
	assert.Nil(t, got.Refinement)
}

func TestSaveClassificationUpsert(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	c := sampleClassification("req-1")
	require.NoError(t, s.SaveClassification(ctx, c))

	c.Code = "8528.71.00 200X"
	require.NoError(t, s.SaveClassification(ctx, c))

	got, err := s.GetClassification(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "8528.71.00 200X", got.Code)
}

func TestSaveClassificationPersistsRefinement(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	c := sampleClassification("req-2")
	c.Source = model.SourceDisambiguatedLLM
	c.Refinement = &model.RefinementInfo{
		OriginalCode:     "6115.95.00",
		Justification:    "cotton content dominates",
		OptionsEvaluated: 2,
		ChosenIndex:      1,
		WasLLMAnalyzed:   true,
	}
	require.NoError(t, s.SaveClassification(ctx, c))

	got, err := s.GetClassification(ctx, "req-2")
	require.NoError(t, err)
	require.NotNil(t, got.Refinement)
	assert.Equal(t, "6115.95.00", got.Refinement.OriginalCode)
	assert.Equal(t, 2, got.Refinement.OptionsEvaluated)
	assert.Equal(t, 1, got.Refinement.ChosenIndex)
	assert.True(t, got.Refinement.WasLLMAnalyzed)
}

func TestGetClassificationNotFound(t *testing.T) {
	s := testStorage(t)
	_, err := s.GetClassification(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveClassificationRequiresRequestID(t *testing.T) {
	s := testStorage(t)
	c := sampleClassification("")
	require.Error(t, s.SaveClassification(context.Background(), c))
}

func TestListClassifications(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	older := sampleClassification("req-old")
	older.ClassifiedAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleClassification("req-new")

	require.NoError(t, s.SaveClassification(ctx, older))
	require.NoError(t, s.SaveClassification(ctx, newer))

	list, err := s.ListClassifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "req-new", list[0].RequestID)
	assert.Equal(t, "req-old", list[1].RequestID)
}

func TestSourceCounts(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	a := sampleClassification("req-a")
	b := sampleClassification("req-b")
	c := sampleClassification("req-c")
	c.Source = model.SourceEmergencyFallback
	c.RequiresManualReview = true

	require.NoError(t, s.SaveClassification(ctx, a))
	require.NoError(t, s.SaveClassification(ctx, b))
	require.NoError(t, s.SaveClassification(ctx, c))

	counts, err := s.SourceCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[model.SourceExactDBMatch])
	assert.Equal(t, 1, counts[model.SourceEmergencyFallback])
}

func TestManualReviewFlow(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	c := sampleClassification("req-review")
	c.Code = model.EmergencyCode
	c.Source = model.SourceEmergencyFallback
	c.Warning = "classification oracle unreachable"
	c.RequiresManualReview = true
	c.Duty = model.DutyTreatment{Pending: true}
	require.NoError(t, s.SaveClassification(ctx, c))

	pending, err := s.PendingReviews(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "req-review", pending[0].RequestID)
	assert.Equal(t, "classification oracle unreachable", pending[0].Reason)

	require.NoError(t, s.ResolveReview(ctx, pending[0].ID, "8528.72.00 100W"))

	pending, err = s.PendingReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := s.GetClassification(ctx, "req-review")
	require.NoError(t, err)
	assert.Equal(t, "8528.72.00 100W", got.Code)
	assert.False(t, got.RequiresManualReview)
	assert.False(t, got.Duty.Pending)
}

func TestResolveReviewValidation(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	require.Error(t, s.ResolveReview(ctx, 1, ""))
	require.ErrorIs(t, s.ResolveReview(ctx, 999, "8528.72.00"), common.ErrNotFound)
}
