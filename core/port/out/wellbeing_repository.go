package out

import (
	"context"

	"wellbeing_server/core/domain"
)

// EmployeeRepository persists employees and reads their statistics.
type EmployeeRepository interface {
	Create(ctx context.Context, e *domain.NewEmployee) (*domain.Employee, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Employee, int, error)
	GetOrCreateByName(ctx context.Context, e *domain.NewEmployee) (*domain.Employee, bool, error)
	RecentViolentWords(ctx context.Context, employeeID int64, limit int) ([]*domain.ViolentWordOccurrence, error)
	ThemeCounters(ctx context.Context, employeeID int64) ([]*domain.EmployeeThemeCounter, error)
}

// ThemeRepository is the psychological theme registry.
type ThemeRepository interface {
	List(ctx context.Context) ([]*domain.PsychologicalTheme, error)
	GetOrCreate(ctx context.Context, name, description string) (*domain.PsychologicalTheme, bool, error)
	Count(ctx context.Context) (int, error)
}

// StatsRepository applies statistics mutations.
type StatsRepository interface {
	// ApplyStats commits one message's delta in a single transaction.
	// It returns domain.ErrEmployeeNotFound, persisting nothing, when the employee does not exist.
	ApplyStats(ctx context.Context, delta *domain.StatsDelta) error
	// ResetAll deletes every violent word occurrence, zeroes both employee
	// counters and returns the number of employees affected.
	ResetAll(ctx context.Context) (int64, error)
}
