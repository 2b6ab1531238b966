package handlers

import (
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services/snapshot"
	"fintrack/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type SnapshotHandler struct {
	snapshotService snapshot.Service
}

func NewSnapshotHandler(snapshotService snapshot.Service) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotService: snapshotService,
	}
}

func (h *SnapshotHandler) GetSnapshot(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	date, err := utils.ParseDate(c.Params("date"))
	if err != nil {
		return utils.Error(c, err)
	}

	snap, err := h.snapshotService.GetSnapshot(c.UserContext(), claims.UserID, date)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"snapshot": snap})
}

// GetBalanceHistory requires both bounds; they are inclusive calendar days.
func (h *SnapshotHandler) GetBalanceHistory(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	from, to, err := requiredRange(c)
	if err != nil {
		return utils.Error(c, err)
	}

	history, err := h.snapshotService.GetBalanceHistory(c.UserContext(), claims.UserID, from, to)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"snapshots": history})
}

// GetSummary aggregates the period; omitting both bounds reports all time.
func (h *SnapshotHandler) GetSummary(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	from, err := utils.OptionalDateQuery(c, "from")
	if err != nil {
		return utils.Error(c, err)
	}
	to, err := utils.OptionalDateQuery(c, "to")
	if err != nil {
		return utils.Error(c, err)
	}

	summary, err := h.snapshotService.GetSummary(c.UserContext(), claims.UserID, from, to)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, summary)
}

func (h *SnapshotHandler) GetBalanceTrend(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	from, to, err := requiredRange(c)
	if err != nil {
		return utils.Error(c, err)
	}

	points, err := h.snapshotService.GetBalanceTrend(c.UserContext(), claims.UserID, from, to)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"points": points})
}

func (h *SnapshotHandler) GetIncomeExpenseTrend(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	from, to, err := requiredRange(c)
	if err != nil {
		return utils.Error(c, err)
	}

	points, err := h.snapshotService.GetIncomeExpenseTrend(c.UserContext(), claims.UserID, from, to)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"points": points})
}

func requiredRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	if c.Query("from") == "" || c.Query("to") == "" {
		return time.Time{}, time.Time{}, apperrors.Wrapf(apperrors.ErrInvalidDateRange, "from and to are required")
	}
	from, err := utils.ParseDate(c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := utils.ParseDate(c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
