package errors

var (
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient available balance",
	}
	ErrKYCRequired = &DomainError{
		Code:    "KYC_REQUIRED",
		Message: "identity verification required",
	}
	ErrRailNotSupported = &DomainError{
		Code:    "RAIL_NOT_SUPPORTED",
		Message: "no payout rail supports this destination",
	}
	ErrAmountTooLow = &DomainError{
		Code:    "AMOUNT_TOO_LOW",
		Message: "amount is below the rail minimum",
	}
	ErrAmountTooHigh = &DomainError{
		Code:    "AMOUNT_TOO_HIGH",
		Message: "amount exceeds the rail maximum",
	}
	ErrRateLimited = &DomainError{
		Code:    "RATE_LIMITED",
		Message: "too many withdrawal attempts, try again later",
	}
	ErrWithdrawalHold = &DomainError{
		Code:    "WITHDRAWAL_HOLD",
		Message: "withdrawals are on hold for this account",
	}
	ErrInvalidPayoutMethod = &DomainError{
		Code:    "INVALID_PAYOUT_METHOD",
		Message: "payout method not found or not verified",
	}
	ErrProvider = &DomainError{
		Code:    "PROVIDER_ERROR",
		Message: "payout provider request failed",
	}
	ErrSignatureInvalid = &DomainError{
		Code:    "SIGNATURE_INVALID",
		Message: "webhook signature verification failed",
	}
	ErrPayoutNotFound = &DomainError{
		Code:    "PAYOUT_NOT_FOUND",
		Message: "payout not found",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "amount must be a positive integer in minor units",
	}
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet balance not found",
	}
)
