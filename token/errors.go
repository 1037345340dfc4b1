package token

import "errors"

var (
	// Balance and allowance precondition failures
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrAllowanceUnderflow    = errors.New("token: allowance underflow")
	ErrAllowanceOverflow     = errors.New("token: allowance overflow")

	// Permit failures
	ErrExpired          = errors.New("token: permit deadline expired")
	ErrInvalidSignature = errors.New("token: invalid permit signature")
	ErrNoRecoverer      = errors.New("token: no signature recoverer configured")

	// Invariant violation reported by CheckInvariants
	ErrSupplyMismatch = errors.New("token: total supply does not equal balance sum")
)
