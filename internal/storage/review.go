package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comexar/despacho/internal/common"
)

// ReviewItem is one pending entry in the manual review queue.
type ReviewItem struct {
	CreatedAt    time.Time
	ResolvedAt   *time.Time
	RequestID    string
	Reason       string
	Status       string
	ResolvedCode string
	ID           int64
}

// PendingReviews lists unresolved review queue entries, oldest first.
func (s *SQLiteStorage) PendingReviews(ctx context.Context) ([]ReviewItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, reason, status, COALESCE(resolved_code, ''), created_at, resolved_at
		FROM review_queue WHERE status = 'pending' ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []ReviewItem
	for rows.Next() {
		var item ReviewItem
		var resolvedAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.RequestID, &item.Reason, &item.Status, &item.ResolvedCode, &item.CreatedAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review item: %w", err)
		}
		if resolvedAt.Valid {
			item.ResolvedAt = &resolvedAt.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ResolveReview marks a review entry resolved with the verified code, and
// updates the classification row to match.
func (s *SQLiteStorage) ResolveReview(ctx context.Context, reviewID int64, verifiedCode string) error {
	if verifiedCode == "" {
		return fmt.Errorf("verified code cannot be empty")
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var requestID string
	err = tx.QueryRowContext(ctx,
		`SELECT request_id FROM review_queue WHERE id = ? AND status = 'pending'`,
		reviewID).Scan(&requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("pending review %d: %w", reviewID, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load review: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE review_queue
		SET status = 'resolved', resolved_code = ?, resolved_at = CURRENT_TIMESTAMP
		WHERE id = ?`, verifiedCode, reviewID); err != nil {
		return fmt.Errorf("failed to resolve review: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE classifications
		SET code = ?, requires_manual_review = 0, duty_pending = 0, warning = ''
		WHERE request_id = ?`, verifiedCode, requestID); err != nil {
		return fmt.Errorf("failed to update classification: %w", err)
	}

	return tx.Commit()
}
