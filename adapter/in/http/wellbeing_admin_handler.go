package http

import (
	"wellbeing_server/core/port/in"
	"wellbeing_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes administrative operations.
type AdminHandler struct {
	admin in.AdminService
}

func NewAdminHandler(admin in.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) Register(router fiber.Router) {
	admin := router.Group("/admin")
	admin.Post("/reset", h.ResetStats)
}

// ResetStats clears every employee's word statistics.
func (h *AdminHandler) ResetStats(c *fiber.Ctx) error {
	affected, err := h.admin.ResetStats(c.UserContext())
	if err != nil {
		return err
	}

	return response.OK(c, fiber.Map{"employees_reset": affected})
}
