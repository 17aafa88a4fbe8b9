package employee

import (
	"context"
	"errors"
	"strings"
	"time"

	"wellbeing_server/core/domain"
	"wellbeing_server/core/port/in"
	"wellbeing_server/core/port/out"
	"wellbeing_server/pkg/apperr"
)

const (
	recentViolentWordsLimit = 10
	birthDateLayout         = "2006-01-02"
)

// DemoEmployee is the employee provisioned for local demonstrations.
var DemoEmployee = domain.NewEmployee{
	FirstName: "Utilisateur",
	LastName:  "Test",
	BirthDate: time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
}

// Service implements in.EmployeeService
type Service struct {
	employeeRepo out.EmployeeRepository
}

// NewService creates a new EmployeeService
func NewService(employeeRepo out.EmployeeRepository) in.EmployeeService {
	return &Service{employeeRepo: employeeRepo}
}

func (s *Service) CreateEmployee(ctx context.Context, req *in.CreateEmployeeRequest) (*domain.Employee, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" {
		return nil, apperr.MissingField("first_name")
	}
	if lastName == "" {
		return nil, apperr.MissingField("last_name")
	}
	if req.BirthDate == "" {
		return nil, apperr.MissingField("birth_date")
	}
	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		return nil, apperr.InvalidInput("birth_date", "expected YYYY-MM-DD")
	}

	e, err := s.employeeRepo.Create(ctx, &domain.NewEmployee{
		FirstName: firstName,
		LastName:  lastName,
		BirthDate: birthDate,
	})
	if err != nil {
		return nil, apperr.DatabaseError("create employee", err)
	}
	return e, nil
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	e, err := s.employeeRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrEmployeeNotFound) {
		return nil, apperr.EmployeeNotFound(id)
	}
	if err != nil {
		return nil, apperr.DatabaseError("get employee", err)
	}
	return e, nil
}

func (s *Service) ListEmployees(ctx context.Context, limit, offset int) ([]*domain.Employee, int, error) {
	employees, total, err := s.employeeRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.DatabaseError("list employees", err)
	}
	return employees, total, nil
}

// GetStats returns the employee with its ratio, ten most recent violent words and theme counters.
func (s *Service) GetStats(ctx context.Context, id int64) (*domain.EmployeeStats, error) {
	e, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	recent, err := s.employeeRepo.RecentViolentWords(ctx, id, recentViolentWordsLimit)
	if err != nil {
		return nil, apperr.DatabaseError("recent violent words", err)
	}
	counters, err := s.employeeRepo.ThemeCounters(ctx, id)
	if err != nil {
		return nil, apperr.DatabaseError("theme counters", err)
	}

	return &domain.EmployeeStats{
		Employee:           e,
		ViolentWordsRatio:  e.ViolentWordsRatio(),
		ViolentWordsPct:    e.ViolentWordsPercent(),
		RecentViolentWords: recent,
		ThemeCounters:      counters,
	}, nil
}

// EnsureDemoEmployee gets or creates the demo employee.
func (s *Service) EnsureDemoEmployee(ctx context.Context) (*domain.Employee, error) {
	demo := DemoEmployee
	e, _, err := s.employeeRepo.GetOrCreateByName(ctx, &demo)
	if err != nil {
		return nil, apperr.DatabaseError("ensure demo employee", err)
	}
	return e, nil
}
