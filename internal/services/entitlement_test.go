package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SayanChouni/osint/internal/models"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name           string
		account        models.UserAccount
		cost           int64
		freeTrialLimit int64
		wantAllowed    bool
		wantChargeType ChargeType
		wantCost       int64
		wantReason     DenyReason
	}{
		{
			name:           "admin is exempt regardless of balance",
			account:        models.UserAccount{Role: models.RoleAdmin, Balance: 0, TrialUsed: 99},
			cost:           2,
			freeTrialLimit: 1,
			wantAllowed:    true,
			wantChargeType: ChargeAdminExempt,
		},
		{
			name:           "suspended admin still exempt",
			account:        models.UserAccount{Role: models.RoleAdmin, IsSuspended: true},
			cost:           2,
			freeTrialLimit: 1,
			wantAllowed:    true,
			wantChargeType: ChargeAdminExempt,
		},
		{
			name:           "suspended account denied even with balance",
			account:        models.UserAccount{Role: models.RoleUser, IsSuspended: true, Balance: 100, BonusCount: 5},
			cost:           2,
			freeTrialLimit: 1,
			wantReason:     DenyAccountSuspended,
		},
		{
			name:           "bonus consumed before trial",
			account:        models.UserAccount{Role: models.RoleUser, BonusCount: 1, TrialUsed: 0},
			cost:           2,
			freeTrialLimit: 1,
			wantAllowed:    true,
			wantChargeType: ChargeBonus,
		},
		{
			name:           "bonus consumed before balance",
			account:        models.UserAccount{Role: models.RoleUser, BonusCount: 3, TrialUsed: 5, Balance: 100},
			cost:           2,
			freeTrialLimit: 1,
			wantAllowed:    true,
			wantChargeType: ChargeBonus,
		},
		{
			name:           "trial when below limit and no bonus",
			account:        models.UserAccount{Role: models.RoleUser, TrialUsed: 0},
			cost:           2,
			freeTrialLimit: 1,
			wantAllowed:    true,
			wantChargeType: ChargeTrial,
		},
		{
			name:           "paid when trial exhausted and balance covers cost",
			account:        models.UserAccount{Role: models.RoleUser, TrialUsed: 1, Balance: 10},
			cost:           2,
			freeTrialLimit: 1,
			wantAllowed:    true,
			wantChargeType: ChargePaid,
			wantCost:       2,
		},
		{
			name:           "balance exactly equal to cost is allowed",
			account:        models.UserAccount{Role: models.RoleUser, TrialUsed: 1, Balance: 2},
			cost:           2,
			freeTrialLimit: 1,
			wantAllowed:    true,
			wantChargeType: ChargePaid,
			wantCost:       2,
		},
		{
			name:           "balance one short of cost is denied",
			account:        models.UserAccount{Role: models.RoleUser, TrialUsed: 1, Balance: 1},
			cost:           2,
			freeTrialLimit: 1,
			wantReason:     DenyInsufficientFunds,
		},
		{
			name:           "fresh account with zero limit and no funds denied",
			account:        models.UserAccount{Role: models.RoleUser},
			cost:           2,
			freeTrialLimit: 0,
			wantReason:     DenyInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := Evaluate(&tt.account, tt.cost, tt.freeTrialLimit)
			assert.Equal(t, tt.wantAllowed, dec.Allowed)
			if tt.wantAllowed {
				assert.Equal(t, tt.wantChargeType, dec.ChargeType)
				assert.Equal(t, tt.wantCost, dec.Cost)
			} else {
				assert.Equal(t, tt.wantReason, dec.Reason)
			}
		})
	}
}

// TestChargeSequence walks the fresh-account scenario: with one free trial
// and a cost of 2, the first action is a free trial and the second is denied
// for insufficient funds.
func TestChargeSequence(t *testing.T) {
	account := models.UserAccount{Role: models.RoleUser}

	first := Evaluate(&account, 2, 1)
	assert.True(t, first.Allowed)
	assert.Equal(t, ChargeTrial, first.ChargeType)
	assert.Zero(t, first.Cost)

	// Apply the decision's mutation the way the ledger does.
	account.TrialUsed++

	second := Evaluate(&account, 2, 1)
	assert.False(t, second.Allowed)
	assert.Equal(t, DenyInsufficientFunds, second.Reason)

	// Reversal restores the pre-charge trial count exactly.
	account.TrialUsed--
	assert.Equal(t, int64(0), account.TrialUsed)
	again := Evaluate(&account, 2, 1)
	assert.Equal(t, ChargeTrial, again.ChargeType)
}

func TestEvaluateIsPure(t *testing.T) {
	account := models.UserAccount{Role: models.RoleUser, BonusCount: 2, TrialUsed: 0, Balance: 7}
	before := account

	Evaluate(&account, 2, 1)

	assert.Equal(t, before, account, "Evaluate must not mutate the snapshot")
}
