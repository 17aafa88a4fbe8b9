package in

import (
	"context"

	"wellbeing_server/core/domain"
)

// AnalysisService is the message-processing entry point.
type AnalysisService interface {
	// ProcessMessage analyzes message and, when employeeID is set, records
	// statistics for that employee. An unknown employee is reported in
	// AnalysisResult.Error rather than as an error.
	ProcessMessage(ctx context.Context, message string, employeeID *int64) (*domain.AnalysisResult, error)
}

// EmployeeService provisions employees and exposes their statistics.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, req *CreateEmployeeRequest) (*domain.Employee, error)
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)
	ListEmployees(ctx context.Context, limit, offset int) ([]*domain.Employee, int, error)
	GetStats(ctx context.Context, id int64) (*domain.EmployeeStats, error)
	EnsureDemoEmployee(ctx context.Context) (*domain.Employee, error)
}

// AdminService holds administrative operations.
type AdminService interface {
	// ResetStats is idempotent and returns the number of employees affected.
	ResetStats(ctx context.Context) (int64, error)
}

// CreateEmployeeRequest is the input of CreateEmployee. BirthDate is YYYY-MM-DD.
type CreateEmployeeRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date"`
}
