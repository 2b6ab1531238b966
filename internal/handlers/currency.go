package handlers

import (
	"strconv"
	"strings"

	"fintrack/internal/services/currency"
	"fintrack/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CurrencyHandler struct {
	currencyService currency.Service
}

func NewCurrencyHandler(currencyService currency.Service) *CurrencyHandler {
	return &CurrencyHandler{
		currencyService: currencyService,
	}
}

// Convert handles GET /currency/convert?from=USD&to=EUR&amount=1050, where
// amount is in minor units of from.
func (h *CurrencyHandler) Convert(c *fiber.Ctx) error {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		return utils.BadRequest(c, "from and to are required")
	}

	amount, err := strconv.ParseInt(c.Query("amount", "0"), 10, 64)
	if err != nil {
		return utils.BadRequest(c, "amount must be an integer in minor units")
	}

	ctx := c.UserContext()
	rate, err := h.currencyService.Rate(ctx, from, to)
	if err != nil {
		return utils.Error(c, err)
	}
	converted, err := h.currencyService.ConvertMinor(ctx, amount, from, to)
	if err != nil {
		return utils.Error(c, err)
	}

	return utils.Success(c, fiber.Map{
		"from":             strings.ToUpper(from),
		"to":               strings.ToUpper(to),
		"amount":           amount,
		"converted_amount": converted,
		"rate":             rate,
	})
}

func (h *CurrencyHandler) AvailableCurrencies(c *fiber.Ctx) error {
	codes, err := h.currencyService.AvailableCurrencies(c.UserContext(), c.Query("base"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"currencies": codes})
}

func (h *CurrencyHandler) ClearCache(c *fiber.Ctx) error {
	if err := h.currencyService.ClearCache(c.UserContext()); err != nil {
		return utils.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
