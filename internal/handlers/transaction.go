package handlers

import (
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/services/ledger"
	"fintrack/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	ledgerService ledger.Service
}

func NewTransactionHandler(ledgerService ledger.Service) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
	}
}

type createTransactionRequest struct {
	WalletID     string  `json:"wallet_id"`
	Amount       int64   `json:"amount"`
	CurrencyCode string  `json:"currency_code"`
	Type         string  `json:"type"`
	CategoryID   *string `json:"category_id"`
	Date         string  `json:"date"`
	Description  string  `json:"description"`
}

type updateTransactionRequest struct {
	WalletID     *string `json:"wallet_id"`
	Amount       *int64  `json:"amount"`
	CurrencyCode *string `json:"currency_code"`
	Type         *string `json:"type"`
	CategoryID   *string `json:"category_id"`
	Date         *string `json:"date"`
	Description  *string `json:"description"`
}

func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req createTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	input := ledger.CreateTransactionInput{
		WalletID:     req.WalletID,
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		Type:         req.Type,
		CategoryID:   req.CategoryID,
		Description:  req.Description,
	}
	if req.Date != "" {
		if input.Date, err = utils.ParseDate(req.Date); err != nil {
			return utils.Error(c, err)
		}
	}

	tx, err := h.ledgerService.CreateTransaction(c.UserContext(), claims.UserID, input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, fiber.Map{"transaction": tx})
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	tx, err := h.owned(c, claims.UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"transaction": tx})
}

func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
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

	txs, err := h.ledgerService.ListTransactions(c.UserContext(), claims.UserID, repositories.TransactionFilter{
		From:   from,
		To:     to,
		Search: c.Query("search"),
	})
	if err != nil {
		return utils.Error(c, err)
	}

	pagination := utils.GetPagination(c, 1, 50)
	pagination.SetTotal(int64(len(txs)))
	start, end := pagination.Window(len(txs))

	return utils.Success(c, utils.NewPaginatedResponse(txs[start:end], pagination))
}

func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req updateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	input := ledger.UpdateTransactionInput{
		WalletID:     req.WalletID,
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		Type:         req.Type,
		CategoryID:   req.CategoryID,
		Description:  req.Description,
	}
	if req.Date != nil {
		date, err := utils.ParseDate(*req.Date)
		if err != nil {
			return utils.Error(c, err)
		}
		input.Date = &date
	}

	if _, err := h.owned(c, claims.UserID); err != nil {
		return utils.Error(c, err)
	}

	tx, err := h.ledgerService.UpdateTransaction(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"transaction": tx})
}

func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	if _, err := h.owned(c, claims.UserID); err != nil {
		return utils.Error(c, err)
	}

	if err := h.ledgerService.DeleteTransaction(c.UserContext(), c.Params("id")); err != nil {
		return utils.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// VerifyLedger checks the caller's snapshot chain against their balance.
func (h *TransactionHandler) VerifyLedger(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	if err := h.ledgerService.VerifyUser(c.UserContext(), claims.UserID); err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{
		"consistent":  true,
		"verified_at": time.Now().UTC(),
	})
}

// owned loads the transaction in the path and hides other users' rows
// behind NotFound.
func (h *TransactionHandler) owned(c *fiber.Ctx, userID string) (*models.Transaction, error) {
	id := c.Params("id")
	tx, err := h.ledgerService.GetTransaction(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, apperrors.Wrapf(apperrors.ErrTransactionNotFound, "transaction %s", id)
	}
	return tx, nil
}
