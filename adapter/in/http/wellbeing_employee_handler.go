package http

import (
	"wellbeing_server/core/port/in"
	"wellbeing_server/pkg/apperr"
	"wellbeing_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EmployeeHandler handles employee requests.
type EmployeeHandler struct {
	employees in.EmployeeService
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(employees in.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// Register registers employee routes.
func (h *EmployeeHandler) Register(router fiber.Router) {
	employees := router.Group("/employees")

	employees.Get("/", h.ListEmployees)
	employees.Post("/", h.CreateEmployee)
	employees.Get("/:id", h.GetEmployee)
	employees.Get("/:id/stats", h.GetStats)
}

// ListEmployees returns a page of employees.
func (h *EmployeeHandler) ListEmployees(c *fiber.Ctx) error {
	page := response.GetPagination(c, 20, 100)

	employees, total, err := h.employees.ListEmployees(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return err
	}

	return response.OKWithMeta(c, employees, response.NewMeta(page, total))
}

// CreateEmployee creates an employee.
func (h *EmployeeHandler) CreateEmployee(c *fiber.Ctx) error {
	var req in.CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	employee, err := h.employees.CreateEmployee(c.UserContext(), &req)
	if err != nil {
		return err
	}

	return response.Created(c, employee)
}

func (h *EmployeeHandler) GetEmployee(c *fiber.Ctx) error {
	id, err := ParseIDParam(c, "id")
	if err != nil {
		return err
	}

	employee, err := h.employees.GetEmployee(c.UserContext(), id)
	if err != nil {
		return err
	}

	return response.OK(c, employee)
}

// GetStats returns counters, ratio, recent violent words and theme counters.
func (h *EmployeeHandler) GetStats(c *fiber.Ctx) error {
	id, err := ParseIDParam(c, "id")
	if err != nil {
		return err
	}

	stats, err := h.employees.GetStats(c.UserContext(), id)
	if err != nil {
		return err
	}

	return response.OK(c, stats)
}
