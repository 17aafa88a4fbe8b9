package http

import (
	"strings"

	"wellbeing_server/core/port/in"
	"wellbeing_server/pkg/apperr"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

// ChatHandler exposes message analysis.
type ChatHandler struct {
	analysis in.AnalysisService
}

func NewChatHandler(analysis in.AnalysisService) *ChatHandler {
	return &ChatHandler{analysis: analysis}
}

// Register registers chat routes. Extra handlers run before the chat handler.
func (h *ChatHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	handlers := append(guards, h.Chat)
	router.Post("/chat", handlers...)
}

// chatRequest accepts employee_id as a JSON number or string.
type chatRequest struct {
	Message    string          `json:"message"`
	EmployeeID json.RawMessage `json:"employee_id"`
}

// Chat analyzes one message. The body is JSON or a form.
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	message, employeeID, err := parseChatRequest(c)
	if err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		return apperr.MissingField("message")
	}

	result, err := h.analysis.ProcessMessage(c.UserContext(), message, employeeID)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func parseChatRequest(c *fiber.Ctx) (string, *int64, error) {
	contentType := string(c.Request().Header.ContentType())
	if strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
		var req chatRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return "", nil, apperr.BadRequest("invalid JSON body")
		}
		return req.Message, parseEmployeeID(string(req.EmployeeID)), nil
	}

	return c.FormValue("message"), parseEmployeeID(c.FormValue("employee_id")), nil
}
