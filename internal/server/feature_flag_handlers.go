package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and, with ?contactId=, their
// evaluated state for that contact.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	contactID, _ := strconv.ParseUint(c.Query("contactId"), 10, 64)

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(uint(contactID)),
	})
}
