package services

import "github.com/SayanChouni/osint/internal/models"

// ChargeType is the category of entitlement consumed by a metered action.
type ChargeType string

const (
	ChargeAdminExempt ChargeType = "admin_exempt"
	ChargeBonus       ChargeType = "bonus"
	ChargeTrial       ChargeType = "trial"
	ChargePaid        ChargeType = "paid"
)

// Decision is the outcome of evaluating an account snapshot against a
// requested paid action. It carries the mutation the caller must apply
// atomically; Evaluate itself has no side effects.
type Decision struct {
	Allowed    bool
	ChargeType ChargeType
	Cost       int64
	Reason     DenyReason
}

// Evaluate decides whether an account may perform one metered action.
//
// Precedence: admin exemption, suspension, bonus credits, free trial, paid
// balance. Bonus credits are consumed before trial so the displayed trial
// counter stays stable across promotions. The balance comparison is >=, so
// balance == cost is allowed.
func Evaluate(account *models.UserAccount, costPerAction, freeTrialLimit int64) Decision {
	if account.Role == models.RoleAdmin {
		return Decision{Allowed: true, ChargeType: ChargeAdminExempt}
	}
	if account.IsSuspended {
		return Decision{Reason: DenyAccountSuspended}
	}
	if account.BonusCount > 0 {
		return Decision{Allowed: true, ChargeType: ChargeBonus}
	}
	if account.TrialUsed < freeTrialLimit {
		return Decision{Allowed: true, ChargeType: ChargeTrial}
	}
	if account.Balance >= costPerAction {
		return Decision{Allowed: true, ChargeType: ChargePaid, Cost: costPerAction}
	}
	return Decision{Reason: DenyInsufficientFunds}
}
