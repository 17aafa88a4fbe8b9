package persistence

import (
	"context"
	"fmt"

	"wellbeing_server/core/domain"
	"wellbeing_server/core/port/out"

	"github.com/jmoiron/sqlx"
)

// StatsAdapter implements out.StatsRepository.
// Counters are always incremented relative to the stored value so concurrent
// messages for the same employee never lose updates.
type StatsAdapter struct {
	db *sqlx.DB
}

// NewStatsAdapter creates a new StatsAdapter.
func NewStatsAdapter(db *sqlx.DB) *StatsAdapter {
	return &StatsAdapter{db: db}
}

func (a *StatsAdapter) ApplyStats(ctx context.Context, delta *domain.StatsDelta) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats tx: %w", err)
	}
	defer tx.Rollback()

	at := delta.At.UTC()

	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE employees
		SET total_words_count = total_words_count + ?,
			violent_words_count = violent_words_count + ?,
			updated_at = ?
		WHERE id = ?`),
		delta.TokenCount, len(delta.ViolentWords), at, delta.EmployeeID)
	if err != nil {
		return fmt.Errorf("update employee counters: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrEmployeeNotFound
	}

	if len(delta.ViolentWords) > 0 {
		insertWord := tx.Rebind(`
			INSERT INTO violent_word_occurrences (employee_id, word, detected_at)
			VALUES (?, ?, ?)`)
		for _, word := range delta.ViolentWords {
			if _, err := tx.ExecContext(ctx, insertWord, delta.EmployeeID, word, at); err != nil {
				return fmt.Errorf("insert violent word: %w", err)
			}
		}
	}

	if len(delta.ThemeIDs) > 0 {
		upsertTheme := tx.Rebind(`
			INSERT INTO employee_theme_counters (employee_id, theme_id, count)
			VALUES (?, ?, 1)
			ON CONFLICT (employee_id, theme_id)
			DO UPDATE SET count = employee_theme_counters.count + 1`)
		for _, themeID := range delta.ThemeIDs {
			if _, err := tx.ExecContext(ctx, upsertTheme, delta.EmployeeID, themeID); err != nil {
				return fmt.Errorf("increment theme counter: %w", err)
			}
		}
	}

	return tx.Commit()
}

// ResetAll clears violent word history and zeroes word counters.
// Theme counters are kept.
func (a *StatsAdapter) ResetAll(ctx context.Context) (int64, error) {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reset tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM violent_word_occurrences`); err != nil {
		return 0, fmt.Errorf("delete violent words: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE employees SET total_words_count = 0, violent_words_count = 0`)
	if err != nil {
		return 0, fmt.Errorf("reset employee counters: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return affected, nil
}

var _ out.StatsRepository = (*StatsAdapter)(nil)
