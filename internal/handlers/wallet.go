package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"ledgerpay/internal/models"
	"ledgerpay/internal/services/wallet"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
	timeout       time.Duration
	log           *slog.Logger
}

func NewWalletHandler(walletService wallet.Service, timeout time.Duration, log *slog.Logger) *WalletHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WalletHandler{
		walletService: walletService,
		timeout:       timeout,
		log:           log,
	}
}

// GetBalance handles GET /balance?customerPhoneNumber=
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Query("customerPhoneNumber"))
	if key == "" {
		return utils.BadRequest(c, "customerPhoneNumber is required")
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	balance, err := h.walletService.GetBalance(ctx, key)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return utils.NotFound(c, "Wallet not found")
		}
		h.log.Error("balance lookup failed", "request_id", requestID(c), "error", err)
		return utils.InternalError(c, "Failed to get balance")
	}

	return utils.Success(c, models.BalanceResponse{
		CustomerPhoneNumber: key,
		Balance:             balance,
	})
}

// GetHistory handles GET /history?userId=&page=&limit=
func (h *WalletHandler) GetHistory(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil || userID <= 0 {
		return utils.BadRequest(c, "userId must be a positive integer")
	}

	p, err := utils.GetPagination(c, wallet.DefaultPage, wallet.DefaultLimit)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	records, err := h.walletService.ListHistory(ctx, strconv.FormatInt(userID, 10), p.Page, p.Limit)
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidPagination) {
			return utils.BadRequest(c, "limit must be between 1 and "+strconv.Itoa(wallet.MaxPageLimit))
		}
		h.log.Error("history lookup failed", "request_id", requestID(c), "error", err)
		return utils.InternalError(c, "Failed to get history")
	}

	return utils.Success(c, models.TransactionHistoryResponse{Transactions: records})
}

// requestContext derives the per-request store deadline from the fiber user context.
func requestContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), timeout)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
