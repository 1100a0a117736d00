package server

import (
	"errors"

	"driverquote/internal/middleware"
	"driverquote/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewInvalidIDError())
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// decodeObject decodes the request body as a JSON object. Anything else
// (invalid JSON, null, arrays, scalars, empty body) is reported as malformed.
func decodeObject(c *fiber.Ctx) (map[string]any, error) {
	var raw map[string]any
	if err := c.App().Config().JSONDecoder(c.Body(), &raw); err != nil || raw == nil {
		return nil, models.NewMalformedRequestError()
	}
	return raw, nil
}

// respondError writes the error envelope. Internal failures are logged with
// their cause; the client only ever sees the generic message.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	if appErr.Code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
		)
	}
	return models.RespondWithError(c, appErr)
}
