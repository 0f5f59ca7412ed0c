package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/comexar/despacho/internal/common"
	"github.com/comexar/despacho/internal/model"
)

// SaveClassification upserts a classification result. Emergency and
// fallback results land in the review queue in the same transaction.
func (s *SQLiteStorage) SaveClassification(ctx context.Context, c model.Classification) error {
	if c.RequestID == "" {
		return fmt.Errorf("classification has no request ID")
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	refinement := model.RefinementInfo{}
	if c.Refinement != nil {
		refinement = *c.Refinement
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO classifications (
			request_id, input, code, description, source, confidence, warning,
			duty_rate, statistical_tax, specific_duty, export_duty, export_rebate,
			duty_pending, interventions, requires_manual_review, classified_at,
			refinement_original_code, refinement_justification,
			refinement_options, refinement_chosen, refinement_llm
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(request_id) DO UPDATE SET
			code = excluded.code,
			description = excluded.description,
			source = excluded.source,
			confidence = excluded.confidence,
			warning = excluded.warning,
			duty_rate = excluded.duty_rate,
			statistical_tax = excluded.statistical_tax,
			specific_duty = excluded.specific_duty,
			export_duty = excluded.export_duty,
			export_rebate = excluded.export_rebate,
			duty_pending = excluded.duty_pending,
			interventions = excluded.interventions,
			requires_manual_review = excluded.requires_manual_review,
			classified_at = excluded.classified_at`,
		c.RequestID, c.Input, c.Code, c.Description, string(c.Source), string(c.Confidence), c.Warning,
		c.Duty.DutyRate, c.Duty.StatisticalTax, c.Duty.SpecificDuty, c.Duty.ExportDuty, c.Duty.ExportRebate,
		boolToInt(c.Duty.Pending), strings.Join(c.Interventions, ","), boolToInt(c.RequiresManualReview), c.ClassifiedAt,
		refinement.OriginalCode, refinement.Justification,
		refinement.OptionsEvaluated, refinement.ChosenIndex, boolToInt(refinement.WasLLMAnalyzed),
	)
	if err != nil {
		return fmt.Errorf("failed to save classification: %w", err)
	}

	if c.RequiresManualReview {
		reason := c.Warning
		if reason == "" {
			reason = "classification requires manual review"
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO review_queue (request_id, reason) VALUES (?, ?)`,
			c.RequestID, reason); err != nil {
			return fmt.Errorf("failed to enqueue review: %w", err)
		}
	}

	return tx.Commit()
}

// GetClassification fetches one classification by request ID. A missing row
// reports common.ErrNotFound.
func (s *SQLiteStorage) GetClassification(ctx context.Context, requestID string) (model.Classification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT request_id, input, code, description, source, confidence, warning,
			duty_rate, statistical_tax, specific_duty, export_duty, export_rebate,
			duty_pending, interventions, requires_manual_review, classified_at,
			refinement_original_code, refinement_justification,
			refinement_options, refinement_chosen, refinement_llm
		FROM classifications WHERE request_id = ?`, requestID)

	c, err := scanClassification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Classification{}, fmt.Errorf("classification %s: %w", requestID, common.ErrNotFound)
	}
	if err != nil {
		return model.Classification{}, fmt.Errorf("failed to load classification: %w", err)
	}
	return c, nil
}

// ListClassifications returns the most recent classifications, newest first.
func (s *SQLiteStorage) ListClassifications(ctx context.Context, limit int) ([]model.Classification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, input, code, description, source, confidence, warning,
			duty_rate, statistical_tax, specific_duty, export_duty, export_rebate,
			duty_pending, interventions, requires_manual_review, classified_at,
			refinement_original_code, refinement_justification,
			refinement_options, refinement_chosen, refinement_llm
		FROM classifications ORDER BY classified_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.Classification
	for rows.Next() {
		c, scanErr := scanClassification(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", scanErr)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// SourceCounts aggregates stored classifications per pipeline source.
func (s *SQLiteStorage) SourceCounts(ctx context.Context) (map[model.ClassificationSource]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, COUNT(*) FROM classifications GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to count sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.ClassificationSource]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts[model.ClassificationSource(source)] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClassification(row rowScanner) (model.Classification, error) {
	var (
		c             model.Classification
		source        string
		confidence    string
		dutyPending   int
		interventions sql.NullString
		manualReview  int
		refinement    model.RefinementInfo
		refOriginal   sql.NullString
		refJust       sql.NullString
		refLLM        int
	)

	err := row.Scan(
		&c.RequestID, &c.Input, &c.Code, &c.Description, &source, &confidence, &c.Warning,
		&c.Duty.DutyRate, &c.Duty.StatisticalTax, &c.Duty.SpecificDuty, &c.Duty.ExportDuty, &c.Duty.ExportRebate,
		&dutyPending, &interventions, &manualReview, &c.ClassifiedAt,
		&refOriginal, &refJust,
		&refinement.OptionsEvaluated, &refinement.ChosenIndex, &refLLM,
	)
	if err != nil {
		return model.Classification{}, err
	}

	c.Source = model.ClassificationSource(source)
	c.Confidence = model.ConfidenceLevel(confidence)
	c.Duty.Pending = dutyPending != 0
	c.RequiresManualReview = manualReview != 0
	if interventions.Valid && interventions.String != "" {
		c.Interventions = strings.Split(interventions.String, ",")
	}

	refinement.OriginalCode = refOriginal.String
	refinement.Justification = refJust.String
	refinement.WasLLMAnalyzed = refLLM != 0
	if refinement.OriginalCode != "" || refinement.OptionsEvaluated > 0 {
		c.Refinement = &refinement
	}

	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
