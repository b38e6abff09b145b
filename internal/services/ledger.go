package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SayanChouni/osint/internal/models"
)

// LedgerService owns all UserAccount mutation. Every write is a single
// atomic Mongo update so concurrent requests from the same user (double-tap,
// retried webhook) serialize at the store without an explicit lock.
type LedgerService struct {
	users   *mongo.Collection
	adminID int64
}

func NewLedgerService(users *mongo.Collection, adminID int64) *LedgerService {
	return &LedgerService{users: users, adminID: adminID}
}

// ChargeResult is the outcome of one evaluate-and-charge round trip.
type ChargeResult struct {
	Allowed           bool
	ChargeType        ChargeType
	Cost              int64
	Reason            DenyReason
	RemainingCooldown time.Duration
}

func (s *LedgerService) roleFor(userID int64) models.Role {
	if userID == s.adminID {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// insertDefaults are the zero-value fields for a lazily created account.
// skip lists fields the caller is mutating in the same update; Mongo rejects
// a field appearing in both $setOnInsert and $inc/$set.
func (s *LedgerService) insertDefaults(userID int64, skip ...string) bson.M {
	defaults := bson.M{
		"balance":          int64(0),
		"trial_used_count": int64(0),
		"bonus_count":      int64(0),
		"is_suspended":     false,
		"role":             s.roleFor(userID),
		"last_action_ts":   int64(0),
	}
	for _, field := range skip {
		delete(defaults, field)
	}
	return defaults
}

// GetOrCreateAccount fetches an account, creating it with zero defaults on
// first contact.
func (s *LedgerService) GetOrCreateAccount(ctx context.Context, userID int64) (*models.UserAccount, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var acc models.UserAccount
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$setOnInsert": s.insertDefaults(userID)},
		opts,
	).Decode(&acc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &acc, nil
}

// GetAccount returns the account or nil if none exists.
func (s *LedgerService) GetAccount(ctx context.Context, userID int64) (*models.UserAccount, error) {
	var acc models.UserAccount
	err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&acc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &acc, nil
}

// EvaluateAndCharge runs the cooldown gate and entitlement evaluation, then
// applies the resulting charge as a guarded atomic update. The update filter
// restates the evaluated precondition (one bonus slot left, trial below the
// limit, balance covering the cost), so two racing requests cannot both
// consume the last slot; the loser re-evaluates against a fresh snapshot.
// last_action_ts advances only when the charge proceeds.
func (s *LedgerService) EvaluateAndCharge(ctx context.Context, userID, costPerAction, freeTrialLimit int64, cooldown time.Duration, now time.Time) (ChargeResult, error) {
	for attempt := 0; attempt < 2; attempt++ {
		acc, err := s.GetOrCreateAccount(ctx, userID)
		if err != nil {
			return ChargeResult{}, err
		}

		cd := CheckCooldown(acc.LastActionMs, now, cooldown, acc.Role == models.RoleAdmin)
		if !cd.Allowed {
			return ChargeResult{Reason: DenyCooldownActive, RemainingCooldown: cd.Remaining}, nil
		}

		dec := Evaluate(acc, costPerAction, freeTrialLimit)
		if !dec.Allowed {
			return ChargeResult{Reason: dec.Reason}, nil
		}
		if dec.ChargeType == ChargeAdminExempt {
			return ChargeResult{Allowed: true, ChargeType: ChargeAdminExempt}, nil
		}

		filter := bson.M{"_id": userID, "is_suspended": false}
		inc := bson.M{}
		switch dec.ChargeType {
		case ChargeBonus:
			filter["bonus_count"] = bson.M{"$gt": int64(0)}
			inc["bonus_count"] = int64(-1)
		case ChargeTrial:
			filter["trial_used_count"] = bson.M{"$lt": freeTrialLimit}
			inc["trial_used_count"] = int64(1)
		case ChargePaid:
			// Balance and trial progress move together in one update, so a
			// user is never charged without the search being counted.
			filter["balance"] = bson.M{"$gte": costPerAction}
			inc["balance"] = -costPerAction
			inc["trial_used_count"] = int64(1)
		}

		res, err := s.users.UpdateOne(ctx, filter, bson.M{
			"$inc": inc,
			"$set": bson.M{"last_action_ts": now.UnixMilli()},
		})
		if err != nil {
			return ChargeResult{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if res.ModifiedCount == 1 {
			return ChargeResult{Allowed: true, ChargeType: dec.ChargeType, Cost: dec.Cost}, nil
		}
		// Lost a race for the last slot; re-read and try once more.
	}
	return ChargeResult{Reason: DenyInsufficientFunds}, nil
}

// ReverseCharge is the compensating action when the downstream lookup fails
// after a successful charge: the inverse atomic increment of the charge.
func (s *LedgerService) ReverseCharge(ctx context.Context, userID int64, chargeType ChargeType, cost int64) error {
	inc := bson.M{}
	switch chargeType {
	case ChargeTrial:
		inc["trial_used_count"] = int64(-1)
	case ChargeBonus:
		inc["bonus_count"] = int64(1)
	case ChargePaid:
		inc["balance"] = cost
		inc["trial_used_count"] = int64(-1)
	default:
		return nil
	}
	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$inc": inc}); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// AdjustBalance atomically adds delta to the target's balance, creating the
// account if absent. Returns the new balance.
func (s *LedgerService) AdjustBalance(ctx context.Context, userID, delta int64) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var acc models.UserAccount
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$inc":         bson.M{"balance": delta},
			"$setOnInsert": s.insertDefaults(userID, "balance"),
		},
		opts,
	).Decode(&acc)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return acc.Balance, nil
}

// AdjustBonus atomically adds delta to the target's bonus counter, creating
// the account if absent. Returns the new bonus count.
func (s *LedgerService) AdjustBonus(ctx context.Context, userID, delta int64) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var acc models.UserAccount
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$inc":         bson.M{"bonus_count": delta},
			"$setOnInsert": s.insertDefaults(userID, "bonus_count"),
		},
		opts,
	).Decode(&acc)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return acc.BonusCount, nil
}

// SetSuspended flips the suspension flag, creating the account if absent.
func (s *LedgerService) SetSuspended(ctx context.Context, userID int64, suspended bool) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$set":         bson.M{"is_suspended": suspended},
			"$setOnInsert": s.insertDefaults(userID, "is_suspended"),
		},
		opts,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// SetPendingOperation records which multi-step admin operation awaits the
// admin's next text message.
func (s *LedgerService) SetPendingOperation(ctx context.Context, adminID int64, op models.PendingOp) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": adminID},
		bson.M{
			"$set":         bson.M{"admin_pending_operation": op},
			"$setOnInsert": s.insertDefaults(adminID),
		},
		opts,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ClearPendingOperation returns the admin to the idle state.
func (s *LedgerService) ClearPendingOperation(ctx context.Context, adminID int64) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": adminID},
		bson.M{"$unset": bson.M{"admin_pending_operation": ""}},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
