package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/SayanChouni/osint/internal/models"
)

// Narrow collaborator interfaces so the state machine can be tested without
// a live store.
type accountAdmin interface {
	GetAccount(ctx context.Context, userID int64) (*models.UserAccount, error)
	AdjustBalance(ctx context.Context, userID, delta int64) (int64, error)
	AdjustBonus(ctx context.Context, userID, delta int64) (int64, error)
	SetSuspended(ctx context.Context, userID int64, suspended bool) error
	SetPendingOperation(ctx context.Context, adminID int64, op models.PendingOp) error
	ClearPendingOperation(ctx context.Context, adminID int64) error
}

type numberBlocklist interface {
	Block(ctx context.Context, number string, addedBy int64) error
	Unblock(ctx context.Context, number string) (bool, error)
}

type searchLogReader interface {
	Recent(ctx context.Context, n int) ([]models.SearchLogEntry, error)
}

// OperationResult is what one consumed admin input produced. Handled is
// false when the text was not an admin follow-up at all (wrong sender, or
// nothing pending) and should fall through to normal command handling.
type OperationResult struct {
	Op      models.PendingOp
	Handled bool
	Reply   string
	Account *models.UserAccount     // set for the status operation
	Logs    []models.SearchLogEntry // set for the view-logs operation
	LogsN   int
}

// AdminStateMachine tracks which multi-step admin operation is pending and
// applies the next freeform text input against it. After processing —
// success or failure — the state always returns to idle, so the admin is
// never stuck; a typo just means re-opening the menu.
type AdminStateMachine struct {
	adminID   int64
	accounts  accountAdmin
	blocklist numberBlocklist
	logs      searchLogReader
}

func NewAdminStateMachine(adminID int64, accounts accountAdmin, blocklist numberBlocklist, logs searchLogReader) *AdminStateMachine {
	return &AdminStateMachine{adminID: adminID, accounts: accounts, blocklist: blocklist, logs: logs}
}

var opPrompts = map[models.PendingOp]string{
	models.OpAddCredit:    "ADD CREDIT MODE\nFormat: UserID Amount\nExample: 123456789 50",
	models.OpRemoveCredit: "REMOVE CREDIT MODE\nFormat: UserID Amount\nExample: 123456789 20",
	models.OpAddBonus:     "ADD BONUS MODE\nFormat: UserID Amount\nExample: 123456789 3",
	models.OpSuspend:      "SUSPEND MODE\nFormat: UserID\nExample: 123456789",
	models.OpUnban:        "UNBAN MODE\nFormat: UserID\nExample: 123456789",
	models.OpStatus:       "STATUS MODE\nFormat: UserID\nExample: 123456789",
	models.OpViewLogs:     "VIEW LOGS MODE\nFormat: number (how many recent logs) Example: 10",
	models.OpAddBlock:     "ADD BLOCK MODE\nFormat: phone Example: 6295533968",
	models.OpRemoveBlock:  "REMOVE BLOCK MODE\nFormat: phone Example: 6295533968",
}

// Begin moves the admin from idle into the named operation and returns the
// format hint to show. Only the configured admin identity may enter a state.
func (m *AdminStateMachine) Begin(ctx context.Context, adminID int64, op models.PendingOp) (string, error) {
	if adminID != m.adminID {
		return "", ErrAdminOnly
	}
	prompt, ok := opPrompts[op]
	if !ok {
		return "", fmt.Errorf("%w: unknown operation %q", ErrMalformedAdminInput, op)
	}
	if err := m.accounts.SetPendingOperation(ctx, adminID, op); err != nil {
		return "", err
	}
	return prompt, nil
}

// ConsumeInput parses rawText against the pending operation and applies its
// side effect. The pending state is cleared unconditionally, even on a
// parse failure or a store error.
func (m *AdminStateMachine) ConsumeInput(ctx context.Context, adminID int64, rawText string) (OperationResult, error) {
	if adminID != m.adminID {
		return OperationResult{}, nil
	}

	acc, err := m.accounts.GetAccount(ctx, adminID)
	if err != nil {
		return OperationResult{}, err
	}
	if acc == nil || acc.Role != models.RoleAdmin || acc.PendingOp == models.OpNone {
		return OperationResult{}, nil
	}

	op := acc.PendingOp
	defer func() {
		_ = m.accounts.ClearPendingOperation(ctx, adminID)
	}()

	parts := strings.Fields(strings.TrimSpace(rawText))
	result := OperationResult{Op: op, Handled: true}

	switch op {
	case models.OpAddCredit, models.OpRemoveCredit, models.OpAddBonus:
		targetID, amount, ok := parseTargetAmount(parts)
		if !ok {
			result.Reply = "INVALID FORMAT. Use: UserID Amount"
			return result, nil
		}
		switch op {
		case models.OpAddCredit:
			if _, err := m.accounts.AdjustBalance(ctx, targetID, amount); err != nil {
				return result, err
			}
			result.Reply = fmt.Sprintf("SUCCESS: %d TK ADDED TO USER %d", abs(amount), targetID)
		case models.OpRemoveCredit:
			if _, err := m.accounts.AdjustBalance(ctx, targetID, -amount); err != nil {
				return result, err
			}
			result.Reply = fmt.Sprintf("SUCCESS: %d TK REMOVED FROM USER %d", abs(amount), targetID)
		case models.OpAddBonus:
			if _, err := m.accounts.AdjustBonus(ctx, targetID, amount); err != nil {
				return result, err
			}
			result.Reply = fmt.Sprintf("SUCCESS: %d BONUS SEARCHES ADDED TO USER %d", abs(amount), targetID)
		}

	case models.OpSuspend, models.OpUnban:
		targetID, ok := parseTarget(parts)
		if !ok {
			result.Reply = "INVALID FORMAT. Use: UserID"
			return result, nil
		}
		suspend := op == models.OpSuspend
		if err := m.accounts.SetSuspended(ctx, targetID, suspend); err != nil {
			return result, err
		}
		if suspend {
			result.Reply = fmt.Sprintf("SUCCESS: USER %d SUSPENDED", targetID)
		} else {
			result.Reply = fmt.Sprintf("SUCCESS: USER %d UNBANNED", targetID)
		}

	case models.OpStatus:
		targetID, ok := parseTarget(parts)
		if !ok {
			result.Reply = "INVALID FORMAT. Use: UserID"
			return result, nil
		}
		target, err := m.accounts.GetAccount(ctx, targetID)
		if err != nil {
			return result, err
		}
		if target == nil {
			result.Reply = fmt.Sprintf("USER %d: No record", targetID)
			return result, nil
		}
		result.Account = target

	case models.OpViewLogs:
		n := parseLogCount(parts)
		logs, err := m.logs.Recent(ctx, n)
		if err != nil {
			return result, err
		}
		result.Logs = logs
		result.LogsN = n

	case models.OpAddBlock:
		if len(parts) != 1 {
			result.Reply = "INVALID FORMAT. Use: phone"
			return result, nil
		}
		if err := m.blocklist.Block(ctx, parts[0], adminID); err != nil {
			return result, err
		}
		result.Reply = fmt.Sprintf("Blocked %s", parts[0])

	case models.OpRemoveBlock:
		if len(parts) != 1 {
			result.Reply = "INVALID FORMAT. Use: phone"
			return result, nil
		}
		removed, err := m.blocklist.Unblock(ctx, parts[0])
		if err != nil {
			return result, err
		}
		if removed {
			result.Reply = fmt.Sprintf("Unblocked %s", parts[0])
		} else {
			result.Reply = fmt.Sprintf("%s was not blocked", parts[0])
		}

	default:
		result.Reply = "UNKNOWN ADMIN STATE."
	}

	return result, nil
}

func parseTargetAmount(parts []string) (int64, int64, bool) {
	if len(parts) != 2 {
		return 0, 0, false
	}
	targetID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || targetID <= 0 {
		return 0, 0, false
	}
	amount, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return targetID, amount, true
}

func parseTarget(parts []string) (int64, bool) {
	if len(parts) != 1 {
		return 0, false
	}
	targetID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || targetID <= 0 {
		return 0, false
	}
	return targetID, true
}

// parseLogCount accepts an optional count token, clamped to [1, 100],
// defaulting to 10 when absent or non-numeric.
func parseLogCount(parts []string) int {
	n := 10
	if len(parts) == 1 {
		if v, err := strconv.Atoi(parts[0]); err == nil {
			n = v
		}
	}
	if n < 1 {
		n = 1
	}
	if n > 100 {
		n = 100
	}
	return n
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
