package handlers

import (
	"time"

	"pactify/internal/models"
	"pactify/internal/repositories"
	"pactify/internal/services/ledger"
	"pactify/internal/services/reconciliation"
	"pactify/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// InternalHandler serves the service-to-service surface: contract credits
// from the escrow subsystem and reconciliation tooling for operators.
type InternalHandler struct {
	ledger ledger.Service
	recon  *reconciliation.Manager
	repos  *repositories.Manager
}

func NewInternalHandler(ledgerSvc ledger.Service, recon *reconciliation.Manager, repos *repositories.Manager) *InternalHandler {
	return &InternalHandler{ledger: ledgerSvc, recon: recon, repos: repos}
}

type creditBody struct {
	UserID      uint   `json:"user_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// Credit adds completed-contract proceeds to a user's available balance.
func (h *InternalHandler) Credit(c *fiber.Ctx) error {
	var body creditBody
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if body.UserID == 0 || body.Currency == "" {
		return utils.BadRequest(c, "user_id and currency are required")
	}
	wallet, err := h.ledger.Credit(c.Context(), body.UserID, body.Currency, body.Amount, body.Description)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, wallet)
}

// Report aggregates payout activity by rail and status over a window.
func (h *InternalHandler) Report(c *fiber.Ctx) error {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return utils.BadRequest(c, "from must be RFC3339")
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return utils.BadRequest(c, "to must be RFC3339")
	}
	report, err := h.recon.GenerateReport(from, to, c.Query("rail"))
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	return utils.Success(c, report)
}

type statementBody struct {
	Day     string                   `json:"day"` // 2006-01-02
	Records []models.StatementRecord `json:"records"`
}

// ReconcileStatement compares a provider statement against internal records.
func (h *InternalHandler) ReconcileStatement(c *fiber.Ctx) error {
	rail := c.Params("rail")

	var body statementBody
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	day, err := time.Parse("2006-01-02", body.Day)
	if err != nil {
		return utils.BadRequest(c, "day must be formatted 2006-01-02")
	}

	discrepancies, err := h.recon.ReconcileStatement(rail, day, body.Records)
	if err != nil {
		return utils.InternalError(c, "reconciliation failed")
	}
	if discrepancies == nil {
		discrepancies = []models.Discrepancy{}
	}
	return utils.Success(c, fiber.Map{
		"rail":          rail,
		"day":           body.Day,
		"discrepancies": discrepancies,
	})
}

// AuditTrail returns the immutable entry history for one payout.
func (h *InternalHandler) AuditTrail(c *fiber.Ctx) error {
	p, err := h.repos.Payouts.GetByPublicID(c.Params("id"))
	if err != nil {
		return utils.NotFound(c, "payout not found")
	}
	entries, err := h.recon.ListAuditTrail(p.ID)
	if err != nil {
		return utils.InternalError(c, "failed to load audit trail")
	}
	return utils.Success(c, fiber.Map{
		"payout_id": p.PublicID,
		"entries":   entries,
	})
}
