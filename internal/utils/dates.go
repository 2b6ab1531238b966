package utils

import (
	"time"

	apperrors "fintrack/internal/errors"

	"github.com/gofiber/fiber/v2"
)

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.Wrapf(apperrors.ErrInvalidDateRange, "invalid date %q", value)
	}
	return t, nil
}

// OptionalDateQuery parses the named query parameter, returning nil when it
// is absent.
func OptionalDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
