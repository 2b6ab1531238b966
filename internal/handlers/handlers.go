// Package handlers adapts the ledger services to fiber. Handlers resolve
// the user from the verified token claims and never trust a user id from
// the request body.
package handlers

import (
	"fintrack/internal/models"

	"github.com/gofiber/fiber/v2"
)

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil || claims.UserID == "" {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}
