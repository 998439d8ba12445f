// Package notification delivers user-facing payout notifications. Delivery
// is fire-and-forget: a failed notification never fails or delays the
// transition that triggered it.
package notification

import (
	"context"
	"log"

	"pactify/internal/models"
)

// Service sends payout lifecycle notifications.
type Service interface {
	// NotifyStatusChange tells the payout's owner about a transition.
	// Always called after the database commit, never inside it.
	NotifyStatusChange(ctx context.Context, payout *models.Payout, fromStatus string)
}

type service struct{}

// NewService creates the notification service. The current transport writes
// to the application log; the email/push integration plugs in behind the
// same interface.
func NewService() Service {
	return &service{}
}

func (s *service) NotifyStatusChange(ctx context.Context, payout *models.Payout, fromStatus string) {
	switch payout.Status {
	case models.PayoutStatusPaid:
		log.Printf("notify user %d: payout %s of %d %s completed",
			payout.UserID, payout.PublicID, payout.NetAmount, payout.Currency)
	case models.PayoutStatusFailed, models.PayoutStatusReturned:
		log.Printf("notify user %d: payout %s %s (%s), %d %s returned to balance",
			payout.UserID, payout.PublicID, payout.Status, payout.FailureReason,
			payout.Amount, payout.Currency)
	case models.PayoutStatusCancelled:
		log.Printf("notify user %d: payout %s cancelled, %d %s returned to balance",
			payout.UserID, payout.PublicID, payout.Amount, payout.Currency)
	default:
		log.Printf("notify user %d: payout %s moved %s -> %s",
			payout.UserID, payout.PublicID, fromStatus, payout.Status)
	}
}
