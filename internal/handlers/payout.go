// Package handlers contains the HTTP handlers for the engine's API surface:
// user-facing withdrawal routes, provider webhook receivers, and the
// internal platform surface.
package handlers

import (
	"pactify/internal/models"
	"pactify/internal/services/payout"
	"pactify/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// PayoutHandler serves the user-facing withdrawal API.
type PayoutHandler struct {
	svc payout.Service
}

func NewPayoutHandler(svc payout.Service) *PayoutHandler {
	return &PayoutHandler{svc: svc}
}

type withdrawalBody struct {
	Amount         int64    `json:"amount"`
	Currency       string   `json:"currency"`
	MethodID       uint     `json:"method_id"`
	Urgency        string   `json:"urgency"`
	PreferredRails []string `json:"preferred_rails"`
}

// CreateWithdrawal runs the withdrawal pipeline for the authenticated user.
func (h *PayoutHandler) CreateWithdrawal(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	var body withdrawalBody
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	result, err := h.svc.CreateWithdrawal(c.Context(), payout.WithdrawalRequest{
		UserID:         userID,
		Amount:         body.Amount,
		Currency:       body.Currency,
		MethodID:       body.MethodID,
		Urgency:        body.Urgency,
		PreferredRails: body.PreferredRails,
		IP:             c.IP(),
		UserAgent:      c.Get("User-Agent"),
	})
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	if result.Duplicate {
		// A retry of an already-created withdrawal returns the original.
		return utils.Success(c, result)
	}
	return utils.Created(c, result)
}

// GetEligibility reports withdrawal readiness for the authenticated user.
func (h *PayoutHandler) GetEligibility(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	eligibility, err := h.svc.CheckEligibility(c.Context(), userID, c.Query("currency"))
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, eligibility)
}

// GetQuotes prices a prospective withdrawal across eligible rails.
func (h *PayoutHandler) GetQuotes(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	amount := int64(c.QueryInt("amount"))
	methodID := uint(c.QueryInt("method_id"))
	if amount <= 0 || methodID == 0 {
		return utils.BadRequest(c, "amount and method_id are required")
	}
	quotes, err := h.svc.GetQuotes(c.Context(), userID, amount, c.Query("currency"), methodID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"quotes": quotes})
}

// GetPayout returns one payout by its public id.
func (h *PayoutHandler) GetPayout(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	p, err := h.svc.GetPayout(c.Context(), userID, c.Params("id"))
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, p)
}

// ListPayouts pages through the user's withdrawal history.
func (h *PayoutHandler) ListPayouts(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	payouts, err := h.svc.ListPayouts(c.Context(), userID, limit, offset)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	if payouts == nil {
		payouts = []*models.Payout{}
	}
	return utils.Success(c, fiber.Map{
		"payouts": payouts,
		"limit":   limit,
		"offset":  offset,
	})
}

// ListMethods returns the user's saved payout destinations.
func (h *PayoutHandler) ListMethods(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	methods, err := h.svc.ListMethods(c.Context(), userID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	if methods == nil {
		methods = []*models.PayoutMethod{}
	}
	return utils.Success(c, fiber.Map{"payout_methods": methods})
}
