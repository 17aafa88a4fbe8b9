package persistence

import (
	"context"

	"wellbeing_server/core/domain"
	"wellbeing_server/core/port/out"

	"github.com/jmoiron/sqlx"
)

// ThemeAdapter implements out.ThemeRepository.
type ThemeAdapter struct {
	db *sqlx.DB
}

// NewThemeAdapter creates a new ThemeAdapter.
func NewThemeAdapter(db *sqlx.DB) *ThemeAdapter {
	return &ThemeAdapter{db: db}
}

type themeRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

func (r *themeRow) toDomain() *domain.PsychologicalTheme {
	return &domain.PsychologicalTheme{ID: r.ID, Name: r.Name, Description: r.Description}
}

// List returns every theme ordered by id.
func (a *ThemeAdapter) List(ctx context.Context) ([]*domain.PsychologicalTheme, error) {
	var rows []themeRow
	if err := a.db.SelectContext(ctx, &rows, `SELECT id, name, description FROM psychological_themes ORDER BY id`); err != nil {
		return nil, err
	}

	themes := make([]*domain.PsychologicalTheme, len(rows))
	for i := range rows {
		themes[i] = rows[i].toDomain()
	}
	return themes, nil
}

// GetOrCreate inserts the theme unless a theme with the same name exists.
// The boolean reports whether a row was created.
func (a *ThemeAdapter) GetOrCreate(ctx context.Context, name, description string) (*domain.PsychologicalTheme, bool, error) {
	if name == "" {
		return nil, false, ErrInvalidInput
	}

	res, err := a.db.ExecContext(ctx, a.db.Rebind(`
		INSERT INTO psychological_themes (name, description)
		VALUES (?, ?)
		ON CONFLICT (name) DO NOTHING`), name, description)
	if err != nil {
		return nil, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	var row themeRow
	query := a.db.Rebind(`SELECT id, name, description FROM psychological_themes WHERE name = ?`)
	if err := a.db.GetContext(ctx, &row, query, name); err != nil {
		if isNoRows(err) {
			return nil, false, domain.ErrThemeNotFound
		}
		return nil, false, err
	}

	return row.toDomain(), affected > 0, nil
}

func (a *ThemeAdapter) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM psychological_themes`); err != nil {
		return 0, err
	}
	return n, nil
}

var _ out.ThemeRepository = (*ThemeAdapter)(nil)
