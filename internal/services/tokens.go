package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SayanChouni/osint/internal/models"
	"github.com/SayanChouni/osint/pkg/utils"
)

// RedemptionStatus is the typed outcome of a redemption attempt.
type RedemptionStatus string

const (
	RedeemSuccess           RedemptionStatus = "success"
	RedeemAlreadyUsed       RedemptionStatus = "already_used"
	RedeemNotFoundOrExpired RedemptionStatus = "not_found_or_expired"
)

// RedemptionResult reports what a redemption attempt produced.
type RedemptionResult struct {
	Status        RedemptionStatus
	CreditGranted int64
}

type bonusGranter interface {
	AdjustBonus(ctx context.Context, userID, delta int64) (int64, error)
}

// TokenService issues and redeems one-time activation tokens that grant
// bonus credits.
type TokenService struct {
	tokens   *mongo.Collection
	accounts bonusGranter
}

func NewTokenService(tokens *mongo.Collection, accounts bonusGranter) *TokenService {
	return &TokenService{tokens: tokens, accounts: accounts}
}

// EnsureTokenIndexes configures the TTL index that garbage-collects expired
// tokens. Called on startup from main after Mongo has connected.
func (s *TokenService) EnsureTokenIndexes(ctx context.Context) error {
	_, err := s.tokens.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetName("idx_expires_at_ttl").SetExpireAfterSeconds(0),
	})
	return err
}

// Issue creates an unactivated token worth creditAmount bonus credits.
func (s *TokenService) Issue(ctx context.Context, ownerUserID, creditAmount int64, ttl time.Duration) (string, error) {
	token, err := utils.NewOpaqueToken()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	_, err = s.tokens.InsertOne(ctx, models.ActivationToken{
		Token:        token,
		OwnerUserID:  ownerUserID,
		CreditAmount: creditAmount,
		Activated:    false,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return token, nil
}

// Redeem claims a token for redeemerID. The activation flip is a
// compare-and-set (activate-if-not-activated, unexpired), so concurrent
// attempts on the same token grant credit exactly once; the loser observes
// AlreadyUsed. A token past expiry is NotFoundOrExpired even if the TTL
// sweep has not removed it yet.
func (s *TokenService) Redeem(ctx context.Context, token string, redeemerID int64) (RedemptionResult, error) {
	now := time.Now().UTC()

	var claimed models.ActivationToken
	err := s.tokens.FindOneAndUpdate(ctx,
		bson.M{
			"_id":        token,
			"activated":  false,
			"expires_at": bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{"activated": true, "activated_by": redeemerID}},
	).Decode(&claimed)

	if err == mongo.ErrNoDocuments {
		return s.classifyFailure(ctx, token, now)
	}
	if err != nil {
		return RedemptionResult{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if _, err := s.accounts.AdjustBonus(ctx, redeemerID, claimed.CreditAmount); err != nil {
		// The token is spent but the grant failed. Log for manual
		// reconciliation; no retry loop here.
		log.Printf("token reconciliation needed: token=%s redeemer=%d amount=%d err=%v",
			token, redeemerID, claimed.CreditAmount, err)
		return RedemptionResult{}, err
	}

	return RedemptionResult{Status: RedeemSuccess, CreditGranted: claimed.CreditAmount}, nil
}

// classifyFailure distinguishes a lost race from a bad or expired token.
func (s *TokenService) classifyFailure(ctx context.Context, token string, now time.Time) (RedemptionResult, error) {
	var existing models.ActivationToken
	err := s.tokens.FindOne(ctx, bson.M{"_id": token}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		return RedemptionResult{Status: RedeemNotFoundOrExpired}, nil
	}
	if err != nil {
		return RedemptionResult{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !existing.ExpiresAt.After(now) {
		return RedemptionResult{Status: RedeemNotFoundOrExpired}, nil
	}
	return RedemptionResult{Status: RedeemAlreadyUsed}, nil
}
