package models

import "time"

// Payout rails. Each maps to one external provider integration.
const (
	RailStripe = "stripe" // card-processor payout
	RailPayPal = "paypal" // peer-to-peer wallet
	RailWise   = "wise"   // international transfer
	RailMpesa  = "mpesa"  // local mobile money
)

// Canonical payout lifecycle. "requested" exists only inside the creation
// transaction; the four last states are terminal.
const (
	PayoutStatusRequested  = "requested"
	PayoutStatusQueued     = "queued"
	PayoutStatusProcessing = "processing"
	PayoutStatusPaid       = "paid"
	PayoutStatusFailed     = "failed"
	PayoutStatusCancelled  = "cancelled"
	PayoutStatusReturned   = "returned"
)

// Withdrawal urgency levels
const (
	UrgencyStandard = "standard"
	UrgencyInstant  = "instant"
)

// Payout is the unit of work moved through the state machine.
// Amounts are integers in minor currency units; at creation
// Amount = PlatformFee + ProviderFee + NetAmount always holds.
type Payout struct {
	ID                  uint   `gorm:"primarykey" json:"-"`
	PublicID            string `gorm:"uniqueIndex;not null" json:"id"`
	UserID              uint   `gorm:"not null;index" json:"user_id"`
	MethodID            uint   `gorm:"not null" json:"method_id"`
	Rail                string `gorm:"not null;index" json:"rail"`
	Amount              int64  `gorm:"not null" json:"amount"`
	Currency            string `gorm:"not null;size:3" json:"currency"`
	PlatformFee         int64  `gorm:"not null" json:"platform_fee"`
	ProviderFee         int64  `gorm:"not null" json:"provider_fee"`
	NetAmount           int64  `gorm:"not null" json:"net_amount"`
	FXRate              *float64
	Status              string     `gorm:"not null;index;default:'requested'" json:"status"`
	ProviderRef         string     `gorm:"index" json:"provider_ref,omitempty"`
	ProviderStatus      string     `json:"provider_status,omitempty"`
	TraceKey            string     `gorm:"uniqueIndex;not null" json:"trace_key"`
	FailureReason       string     `json:"failure_reason,omitempty"`
	RequiresReview      bool       `gorm:"default:false" json:"requires_review"`
	RiskScore           int        `json:"risk_score"`
	Urgency             string     `gorm:"default:'standard'" json:"urgency"`
	QuoteSnapshot       JSON       `gorm:"type:jsonb" json:"quote_snapshot,omitempty"`
	Metadata            JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	ProcessingStartedAt *time.Time `json:"processing_started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsTerminal reports whether the payout has reached a final state.
func (p *Payout) IsTerminal() bool {
	switch p.Status {
	case PayoutStatusPaid, PayoutStatusFailed, PayoutStatusCancelled, PayoutStatusReturned:
		return true
	}
	return false
}
