package http

import (
	"strconv"
	"strings"

	"wellbeing_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// ParseIDParam parses a positive int64 route parameter.
func ParseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput(name, "must be a positive integer")
	}
	return id, nil
}

// parseEmployeeID accepts a run of ASCII digits, optionally quoted, and
// returns nil for anything else so the message is analyzed anonymously.
func parseEmployeeID(raw string) *int64 {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	if raw == "" {
		return nil
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return nil
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}
