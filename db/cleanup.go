package db

import (
	"context"
	"fmt"
	"time"
)

// PruneOlderThan deletes records created more than age ago and returns how
// many were removed.
func (r *Repository) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	if age < 0 {
		return 0, fmt.Errorf("age must be non-negative, got %s", age)
	}
	conn, err := r.conn()
	if err != nil {
		return 0, err
	}

	cutoff := formatTime(time.Now().Add(-age))
	result, err := conn.ExecContext(ctx, `DELETE FROM generation_history WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune generation history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// Vacuum reclaims space after a large prune.
func (r *Repository) Vacuum(ctx context.Context) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}
