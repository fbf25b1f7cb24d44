package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"ledgerpay/internal/models"
	"ledgerpay/internal/services/charge"
	"ledgerpay/internal/utils"
	"ledgerpay/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type ChargeHandler struct {
	chargeService charge.Service
	timeout       time.Duration
	log           *slog.Logger
}

func NewChargeHandler(chargeService charge.Service, timeout time.Duration, log *slog.Logger) *ChargeHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ChargeHandler{
		chargeService: chargeService,
		timeout:       timeout,
		log:           log,
	}
}

// CreateCharge handles POST /charge
func (h *ChargeHandler) CreateCharge(c *fiber.Ctx) error {
	var req models.ChargeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	handle, err := h.chargeService.CreateCharge(ctx, strconv.FormatInt(req.UserID, 10), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, charge.ErrInvalidAmount):
			return utils.BadRequest(c, "amount must be positive with at most two decimals")
		case errors.Is(err, charge.ErrInvalidUser):
			return utils.BadRequest(c, "user_id is required")
		case errors.Is(err, charge.ErrChargeExists):
			return utils.BadRequest(c, "Charge already exists")
		}
		h.log.Error("charge creation failed", "request_id", requestID(c), "error", err)
		return utils.InternalError(c, "Failed to create charge")
	}

	return utils.Created(c, models.ChargeResponse{
		URL:   handle.AckURL,
		Token: handle.Token,
		TrxID: handle.TransactionID,
	})
}

// AcknowledgeCharge handles POST /charge_ack
func (h *ChargeHandler) AcknowledgeCharge(c *fiber.Ctx) error {
	var req models.ChargeAckRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	err := h.chargeService.AcknowledgeCharge(ctx, req.UserID, req.Token, req.TrxID)
	if err != nil {
		switch {
		case errors.Is(err, charge.ErrChargeNotFound):
			return utils.NotFound(c, "No valid charge found")
		case errors.Is(err, charge.ErrAlreadySettled):
			return utils.Conflict(c, "Charge already settled")
		case errors.Is(err, charge.ErrWalletNotFound):
			return utils.NotFound(c, "Wallet not found")
		}
		h.log.Error("charge acknowledgment failed", "request_id", requestID(c), "error", err)
		return utils.InternalError(c, "Failed to acknowledge charge")
	}

	return utils.Success(c, models.ChargeAckResponse{Status: "verified"})
}
