package models

import "time"

// ActivationToken is a one-time-redeemable credential granting bonus credit.
type ActivationToken struct {
	Token        string    `bson:"_id" json:"token"`
	OwnerUserID  int64     `bson:"owner_user_id" json:"owner_user_id"`
	CreditAmount int64     `bson:"credit_amount" json:"credit_amount"`
	Activated    bool      `bson:"activated" json:"activated"`
	ActivatedBy  int64     `bson:"activated_by,omitempty" json:"activated_by,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt    time.Time `bson:"expires_at" json:"expires_at"`
}
