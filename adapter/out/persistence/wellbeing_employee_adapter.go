// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"time"

	"wellbeing_server/core/domain"
	"wellbeing_server/core/port/out"

	"github.com/jmoiron/sqlx"
)

// EmployeeAdapter implements out.EmployeeRepository on PostgreSQL or SQLite.
type EmployeeAdapter struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewEmployeeAdapter creates a new EmployeeAdapter.
func NewEmployeeAdapter(db *sqlx.DB) *EmployeeAdapter {
	return &EmployeeAdapter{db: db, now: time.Now}
}

// employeeRow represents the database row for employees.
type employeeRow struct {
	ID                int64     `db:"id"`
	FirstName         string    `db:"first_name"`
	LastName          string    `db:"last_name"`
	BirthDate         time.Time `db:"birth_date"`
	TotalWordsCount   int64     `db:"total_words_count"`
	ViolentWordsCount int64     `db:"violent_words_count"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r *employeeRow) toDomain() *domain.Employee {
	return &domain.Employee{
		ID:                r.ID,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		BirthDate:         r.BirthDate,
		TotalWordsCount:   r.TotalWordsCount,
		ViolentWordsCount: r.ViolentWordsCount,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

const employeeColumns = `id, first_name, last_name, birth_date, total_words_count, violent_words_count, created_at, updated_at`

func (a *EmployeeAdapter) Create(ctx context.Context, e *domain.NewEmployee) (*domain.Employee, error) {
	now := a.now().UTC()
	query := a.db.Rebind(`
		INSERT INTO employees (first_name, last_name, birth_date, total_words_count, violent_words_count, created_at, updated_at)
		VALUES (?, ?, ?, 0, 0, ?, ?)
		RETURNING id`)

	var id int64
	if err := a.db.QueryRowxContext(ctx, query, e.FirstName, e.LastName, e.BirthDate, now, now).Scan(&id); err != nil {
		return nil, err
	}

	return &domain.Employee{
		ID:        id,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		BirthDate: e.BirthDate,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetByID returns domain.ErrEmployeeNotFound when no row matches.
func (a *EmployeeAdapter) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var row employeeRow
	query := a.db.Rebind(`SELECT ` + employeeColumns + ` FROM employees WHERE id = ?`)
	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (a *EmployeeAdapter) List(ctx context.Context, limit, offset int) ([]*domain.Employee, int, error) {
	var total int
	if err := a.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM employees`); err != nil {
		return nil, 0, err
	}

	var rows []employeeRow
	query := a.db.Rebind(`SELECT ` + employeeColumns + ` FROM employees ORDER BY id LIMIT ? OFFSET ?`)
	if err := a.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, 0, err
	}

	employees := make([]*domain.Employee, len(rows))
	for i := range rows {
		employees[i] = rows[i].toDomain()
	}
	return employees, total, nil
}

// GetOrCreateByName returns the first employee with the given names, creating it if absent.
func (a *EmployeeAdapter) GetOrCreateByName(ctx context.Context, e *domain.NewEmployee) (*domain.Employee, bool, error) {
	var row employeeRow
	query := a.db.Rebind(`SELECT ` + employeeColumns + ` FROM employees WHERE first_name = ? AND last_name = ? ORDER BY id LIMIT 1`)
	err := a.db.GetContext(ctx, &row, query, e.FirstName, e.LastName)
	if err == nil {
		return row.toDomain(), false, nil
	}
	if !isNoRows(err) {
		return nil, false, err
	}

	created, err := a.Create(ctx, e)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// violentWordRow represents the database row for violent_word_occurrences.
type violentWordRow struct {
	ID         int64     `db:"id"`
	EmployeeID int64     `db:"employee_id"`
	Word       string    `db:"word"`
	DetectedAt time.Time `db:"detected_at"`
}

// RecentViolentWords returns the employee's latest occurrences, newest first.
func (a *EmployeeAdapter) RecentViolentWords(ctx context.Context, employeeID int64, limit int) ([]*domain.ViolentWordOccurrence, error) {
	var rows []violentWordRow
	query := a.db.Rebind(`
		SELECT id, employee_id, word, detected_at
		FROM violent_word_occurrences
		WHERE employee_id = ?
		ORDER BY detected_at DESC, id DESC
		LIMIT ?`)
	if err := a.db.SelectContext(ctx, &rows, query, employeeID, limit); err != nil {
		return nil, err
	}

	words := make([]*domain.ViolentWordOccurrence, len(rows))
	for i, r := range rows {
		words[i] = &domain.ViolentWordOccurrence{
			ID:         r.ID,
			EmployeeID: r.EmployeeID,
			Word:       r.Word,
			Timestamp:  r.DetectedAt,
		}
	}
	return words, nil
}

// themeCounterRow represents a counter joined with its theme name.
type themeCounterRow struct {
	ID         int64  `db:"id"`
	EmployeeID int64  `db:"employee_id"`
	ThemeID    int64  `db:"theme_id"`
	ThemeName  string `db:"theme_name"`
	Count      int64  `db:"count"`
}

// ThemeCounters returns the employee's theme counters, highest first.
func (a *EmployeeAdapter) ThemeCounters(ctx context.Context, employeeID int64) ([]*domain.EmployeeThemeCounter, error) {
	var rows []themeCounterRow
	query := a.db.Rebind(`
		SELECT c.id, c.employee_id, c.theme_id, t.name AS theme_name, c.count
		FROM employee_theme_counters c
		JOIN psychological_themes t ON t.id = c.theme_id
		WHERE c.employee_id = ?
		ORDER BY c.count DESC, t.name`)
	if err := a.db.SelectContext(ctx, &rows, query, employeeID); err != nil {
		return nil, err
	}

	counters := make([]*domain.EmployeeThemeCounter, len(rows))
	for i, r := range rows {
		counters[i] = &domain.EmployeeThemeCounter{
			ID:         r.ID,
			EmployeeID: r.EmployeeID,
			ThemeID:    r.ThemeID,
			ThemeName:  r.ThemeName,
			Count:      r.Count,
		}
	}
	return counters, nil
}

var _ out.EmployeeRepository = (*EmployeeAdapter)(nil)
