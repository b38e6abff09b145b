package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SayanChouni/osint/internal/models"
)

const testAdminID int64 = 42

// fakeStore implements the state machine's collaborator interfaces in
// memory.
type fakeStore struct {
	accounts map[int64]*models.UserAccount
	blocked  map[string]int64
	logs     []models.SearchLogEntry
	clears   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[int64]*models.UserAccount),
		blocked:  make(map[string]int64),
	}
}

func (f *fakeStore) ensure(userID int64) *models.UserAccount {
	if acc, ok := f.accounts[userID]; ok {
		return acc
	}
	role := models.RoleUser
	if userID == testAdminID {
		role = models.RoleAdmin
	}
	acc := &models.UserAccount{ID: userID, Role: role}
	f.accounts[userID] = acc
	return acc
}

func (f *fakeStore) GetAccount(_ context.Context, userID int64) (*models.UserAccount, error) {
	acc, ok := f.accounts[userID]
	if !ok {
		return nil, nil
	}
	snapshot := *acc
	return &snapshot, nil
}

func (f *fakeStore) AdjustBalance(_ context.Context, userID, delta int64) (int64, error) {
	acc := f.ensure(userID)
	acc.Balance += delta
	return acc.Balance, nil
}

func (f *fakeStore) AdjustBonus(_ context.Context, userID, delta int64) (int64, error) {
	acc := f.ensure(userID)
	acc.BonusCount += delta
	return acc.BonusCount, nil
}

func (f *fakeStore) SetSuspended(_ context.Context, userID int64, suspended bool) error {
	f.ensure(userID).IsSuspended = suspended
	return nil
}

func (f *fakeStore) SetPendingOperation(_ context.Context, adminID int64, op models.PendingOp) error {
	f.ensure(adminID).PendingOp = op
	return nil
}

func (f *fakeStore) ClearPendingOperation(_ context.Context, adminID int64) error {
	f.ensure(adminID).PendingOp = models.OpNone
	f.clears++
	return nil
}

func (f *fakeStore) Block(_ context.Context, number string, addedBy int64) error {
	f.blocked[number] = addedBy
	return nil
}

func (f *fakeStore) Unblock(_ context.Context, number string) (bool, error) {
	if _, ok := f.blocked[number]; !ok {
		return false, nil
	}
	delete(f.blocked, number)
	return true, nil
}

func (f *fakeStore) Recent(_ context.Context, n int) ([]models.SearchLogEntry, error) {
	if n > len(f.logs) {
		n = len(f.logs)
	}
	return f.logs[:n], nil
}

func newTestMachine() (*AdminStateMachine, *fakeStore) {
	store := newFakeStore()
	return NewAdminStateMachine(testAdminID, store, store, store), store
}

func TestBeginRejectsNonAdmin(t *testing.T) {
	m, store := newTestMachine()

	_, err := m.Begin(context.Background(), 7, models.OpAddCredit)

	assert.ErrorIs(t, err, ErrAdminOnly)
	assert.Empty(t, store.accounts)
}

func TestBeginRejectsUnknownOperation(t *testing.T) {
	m, _ := newTestMachine()

	_, err := m.Begin(context.Background(), testAdminID, models.PendingOp("format_disk"))

	assert.ErrorIs(t, err, ErrMalformedAdminInput)
}

func TestBeginStoresPendingOperationAndPrompts(t *testing.T) {
	m, store := newTestMachine()

	prompt, err := m.Begin(context.Background(), testAdminID, models.OpAddCredit)

	require.NoError(t, err)
	assert.Contains(t, prompt, "Format: UserID Amount")
	assert.Equal(t, models.OpAddCredit, store.accounts[testAdminID].PendingOp)
}

func TestConsumeAddCredit(t *testing.T) {
	m, store := newTestMachine()
	ctx := context.Background()

	_, err := m.Begin(ctx, testAdminID, models.OpAddCredit)
	require.NoError(t, err)

	result, err := m.ConsumeInput(ctx, testAdminID, "555 100")

	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Contains(t, result.Reply, "100 TK ADDED TO USER 555")
	assert.Equal(t, int64(100), store.accounts[555].Balance)
	assert.Equal(t, models.OpNone, store.accounts[testAdminID].PendingOp)
}

func TestConsumeRemoveCredit(t *testing.T) {
	m, store := newTestMachine()
	ctx := context.Background()
	store.ensure(555).Balance = 150

	_, err := m.Begin(ctx, testAdminID, models.OpRemoveCredit)
	require.NoError(t, err)

	result, err := m.ConsumeInput(ctx, testAdminID, "555 100")

	require.NoError(t, err)
	assert.Contains(t, result.Reply, "REMOVED FROM USER 555")
	assert.Equal(t, int64(50), store.accounts[555].Balance)
}

func TestConsumeAddBonus(t *testing.T) {
	m, store := newTestMachine()
	ctx := context.Background()

	_, err := m.Begin(ctx, testAdminID, models.OpAddBonus)
	require.NoError(t, err)

	result, err := m.ConsumeInput(ctx, testAdminID, "555 3")

	require.NoError(t, err)
	assert.Contains(t, result.Reply, "BONUS")
	assert.Equal(t, int64(3), store.accounts[555].BonusCount)
}

func TestConsumeSuspendAndUnban(t *testing.T) {
	m, store := newTestMachine()
	ctx := context.Background()

	_, err := m.Begin(ctx, testAdminID, models.OpSuspend)
	require.NoError(t, err)
	_, err = m.ConsumeInput(ctx, testAdminID, "555")
	require.NoError(t, err)
	assert.True(t, store.accounts[555].IsSuspended)

	_, err = m.Begin(ctx, testAdminID, models.OpUnban)
	require.NoError(t, err)
	_, err = m.ConsumeInput(ctx, testAdminID, "555")
	require.NoError(t, err)
	assert.False(t, store.accounts[555].IsSuspended)
}

func TestConsumeStatus(t *testing.T) {
	m, store := newTestMachine()
	ctx := context.Background()
	store.ensure(555).Balance = 77

	_, err := m.Begin(ctx, testAdminID, models.OpStatus)
	require.NoError(t, err)
	result, err := m.ConsumeInput(ctx, testAdminID, "555")

	require.NoError(t, err)
	require.NotNil(t, result.Account)
	assert.Equal(t, int64(77), result.Account.Balance)
}

func TestConsumeStatusNoRecord(t *testing.T) {
	m, _ := newTestMachine()
	ctx := context.Background()

	_, err := m.Begin(ctx, testAdminID, models.OpStatus)
	require.NoError(t, err)
	result, err := m.ConsumeInput(ctx, testAdminID, "999")

	require.NoError(t, err)
	assert.Nil(t, result.Account)
	assert.Contains(t, result.Reply, "No record")
}

func TestConsumeViewLogsCount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"no token defaults to 10", "", 10},
		{"explicit count", "5", 5},
		{"clamped to 100", "500", 100},
		{"clamped to 1", "0", 1},
		{"non-numeric defaults to 10", "abc", 10},
		{"two tokens default to 10", "5 extra", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMachine()
			ctx := context.Background()

			_, err := m.Begin(ctx, testAdminID, models.OpViewLogs)
			require.NoError(t, err)
			result, err := m.ConsumeInput(ctx, testAdminID, tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.want, result.LogsN)
		})
	}
}

func TestConsumeBlockRoundTrip(t *testing.T) {
	m, store := newTestMachine()
	ctx := context.Background()

	_, err := m.Begin(ctx, testAdminID, models.OpAddBlock)
	require.NoError(t, err)
	result, err := m.ConsumeInput(ctx, testAdminID, "6295533968")
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "Blocked 6295533968")
	assert.Contains(t, store.blocked, "6295533968")

	_, err = m.Begin(ctx, testAdminID, models.OpRemoveBlock)
	require.NoError(t, err)
	result, err = m.ConsumeInput(ctx, testAdminID, "6295533968")
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "Unblocked 6295533968")
	assert.NotContains(t, store.blocked, "6295533968")

	_, err = m.Begin(ctx, testAdminID, models.OpRemoveBlock)
	require.NoError(t, err)
	result, err = m.ConsumeInput(ctx, testAdminID, "6295533968")
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "was not blocked")
}

func TestMalformedInputClearsState(t *testing.T) {
	m, store := newTestMachine()
	ctx := context.Background()

	_, err := m.Begin(ctx, testAdminID, models.OpAddCredit)
	require.NoError(t, err)

	result, err := m.ConsumeInput(ctx, testAdminID, "not a number pair at all")

	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Contains(t, result.Reply, "INVALID FORMAT")
	assert.Equal(t, models.OpNone, store.accounts[testAdminID].PendingOp)

	// No retry loop: the next input with nothing pending falls through.
	result, err = m.ConsumeInput(ctx, testAdminID, "555 100")
	require.NoError(t, err)
	assert.False(t, result.Handled)
	assert.NotContains(t, store.accounts, int64(555))
}

func TestConsumeWithoutPendingIsNoOp(t *testing.T) {
	m, store := newTestMachine()
	store.ensure(testAdminID)

	result, err := m.ConsumeInput(context.Background(), testAdminID, "555 100")

	require.NoError(t, err)
	assert.False(t, result.Handled)
	assert.Zero(t, store.clears)
}

func TestNonAdminTextNeverTriggersState(t *testing.T) {
	m, store := newTestMachine()
	ctx := context.Background()

	// Even with a stored pending op on some other account, a non-admin's
	// text must not drive the machine.
	other := store.ensure(7)
	other.PendingOp = models.OpAddCredit

	result, err := m.ConsumeInput(ctx, 7, "555 100")

	require.NoError(t, err)
	assert.False(t, result.Handled)
	assert.NotContains(t, store.accounts, int64(555))
}
