package models

// Role distinguishes the single configured admin from everyone else.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// PendingOp names the multi-step admin operation awaiting a follow-up text
// input. The empty value means nothing is pending.
type PendingOp string

const (
	OpNone         PendingOp = ""
	OpAddCredit    PendingOp = "add_credit"
	OpRemoveCredit PendingOp = "remove_credit"
	OpAddBonus     PendingOp = "add_bonus"
	OpSuspend      PendingOp = "suspend"
	OpUnban        PendingOp = "unban"
	OpStatus       PendingOp = "status"
	OpViewLogs     PendingOp = "view_logs"
	OpAddBlock     PendingOp = "add_block"
	OpRemoveBlock  PendingOp = "remove_block"
)

// UserAccount is the per-user ledger record, keyed by Telegram user id.
// Created lazily on first contact; never deleted (suspension only).
type UserAccount struct {
	ID           int64     `bson:"_id" json:"id"`
	Balance      int64     `bson:"balance" json:"balance"`
	TrialUsed    int64     `bson:"trial_used_count" json:"trial_used_count"`
	BonusCount   int64     `bson:"bonus_count" json:"bonus_count"`
	IsSuspended  bool      `bson:"is_suspended" json:"is_suspended"`
	Role         Role      `bson:"role" json:"role"`
	LastActionMs int64     `bson:"last_action_ts" json:"last_action_ts"` // unix millis; 0 = never
	PendingOp    PendingOp `bson:"admin_pending_operation,omitempty" json:"admin_pending_operation,omitempty"`
}
