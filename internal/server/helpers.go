package server

import (
	"errors"
	"strings"
	"unicode"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/size query parameters. Page is 0-based.
type Pagination struct {
	Page int
	Size int
}

const (
	defaultPageSize    = 10
	maxPaginationLimit = 100
	// maxPage keeps page*size far from int overflow on every platform.
	maxPage = 1_000_000
)

// parsePagination reads page and size, falling back to the configured default
// size and clamping to the configured maximum.
func (s *Server) parsePagination(c *fiber.Ctx) Pagination {
	def, ceiling := defaultPageSize, maxPaginationLimit
	if s.config != nil {
		if s.config.DefaultPageSize > 0 {
			def = s.config.DefaultPageSize
		}
		if s.config.MaxPageSize > 0 {
			ceiling = s.config.MaxPageSize
		}
	}

	size := c.QueryInt("size", def)
	if size <= 0 {
		size = def
	}
	if size > ceiling {
		size = ceiling
	}

	page := c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}
	if page > maxPage {
		page = maxPage
	}

	return Pagination{Page: page, Size: size}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "communityId" -> "community ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// respondError writes err with the status its code maps to.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

func badBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
}
