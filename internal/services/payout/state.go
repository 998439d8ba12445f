package payout

import "pactify/internal/models"

// transitions is the canonical lifecycle. "requested" exists only inside the
// creation transaction; terminal states admit nothing further. A webhook may
// reach a queued payout before the processing transition commits, so queued
// admits every terminal state directly.
var transitions = map[string][]string{
	models.PayoutStatusRequested: {
		models.PayoutStatusQueued,
	},
	models.PayoutStatusQueued: {
		models.PayoutStatusProcessing,
		models.PayoutStatusPaid,
		models.PayoutStatusFailed,
		models.PayoutStatusCancelled,
		models.PayoutStatusReturned,
	},
	models.PayoutStatusProcessing: {
		models.PayoutStatusPaid,
		models.PayoutStatusFailed,
		models.PayoutStatusCancelled,
		models.PayoutStatusReturned,
	},
}

// CanTransition reports whether from -> to is a valid lifecycle move.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is final.
func IsTerminal(status string) bool {
	switch status {
	case models.PayoutStatusPaid,
		models.PayoutStatusFailed,
		models.PayoutStatusCancelled,
		models.PayoutStatusReturned:
		return true
	}
	return false
}
