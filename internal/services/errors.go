package services

import "errors"

// Expected, user-facing outcomes are returned as typed results (DenyReason,
// RedemptionStatus); the sentinels below cover the cases that surface as
// plain errors. Backing-store failures are wrapped with %w so the dispatch
// shell can answer with a generic retry-later message.
var (
	ErrAdminOnly           = errors.New("admin access denied")
	ErrMalformedAdminInput = errors.New("malformed admin input")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

// DenyReason explains why a metered action was refused.
type DenyReason string

const (
	DenyNone              DenyReason = ""
	DenyAccountSuspended  DenyReason = "account_suspended"
	DenyInsufficientFunds DenyReason = "insufficient_funds"
	DenyCooldownActive    DenyReason = "cooldown_active"
	DenyNumberBlocked     DenyReason = "number_blocked"
)
