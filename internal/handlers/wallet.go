package handlers

import (
	"context"

	"fintrack/internal/models"
	"fintrack/internal/services/wallet"
	"fintrack/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

func (h *WalletHandler) ListWallets(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallets, err := h.walletService.ListWallets(c.UserContext(), claims.UserID, c.QueryBool("include_archived"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"wallets": wallets})
}

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input wallet.CreateWalletInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	w, err := h.walletService.CreateWallet(c.UserContext(), claims.UserID, input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, fiber.Map{"wallet": w})
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	w, err := h.walletService.GetWallet(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"wallet": w})
}

func (h *WalletHandler) UpdateWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input wallet.UpdateWalletInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	w, err := h.walletService.UpdateWallet(c.UserContext(), claims.UserID, c.Params("id"), input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"wallet": w})
}

func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	w, err := h.walletService.GetWallet(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}

	balance, err := h.walletService.GetBalance(c.UserContext(), w.ID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{
		"wallet_id":     w.ID,
		"balance":       balance,
		"currency_code": w.CurrencyCode,
	})
}

func (h *WalletHandler) GetTotalBalance(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	total, err := h.walletService.GetTotalBalance(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, total)
}

func (h *WalletHandler) Archive(c *fiber.Ctx) error {
	return h.lifecycle(c, h.walletService.Archive)
}

func (h *WalletHandler) Unarchive(c *fiber.Ctx) error {
	return h.lifecycle(c, h.walletService.Unarchive)
}

func (h *WalletHandler) SetDefault(c *fiber.Ctx) error {
	return h.lifecycle(c, h.walletService.SetDefault)
}

type walletTransition func(ctx context.Context, userID, walletID string) (*models.Wallet, error)

func (h *WalletHandler) lifecycle(c *fiber.Ctx, transition walletTransition) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	w, err := transition(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"wallet": w})
}
