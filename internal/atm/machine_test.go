package atm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebaswvv/MazeBank/internal/transport"
	"github.com/sebaswvv/MazeBank/models"
)

// fakeATMBackend serves one account and applies deposits/withdrawals, or
// rejects them with a fixed message when failWith is set.
type fakeATMBackend struct {
	mu       sync.Mutex
	balance  float64
	failWith string
}

func (f *fakeATMBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.URL.Path {
		case "/accounts/7":
			_ = json.NewEncoder(w).Encode(models.Account{
				ID: 7, IBAN: "NL01INHO0000000001",
				AccountType: models.AccountTypeChecking,
				Balance:     f.balance, Active: true,
			})
		case "/accounts/7/deposit", "/accounts/7/withdraw":
			if f.failWith != "" {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": f.failWith})
				return
			}
			var req models.AtmRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if r.URL.Path == "/accounts/7/deposit" {
				f.balance += req.Amount
				w.WriteHeader(http.StatusCreated)
			} else {
				f.balance -= req.Amount
				w.WriteHeader(http.StatusOK)
			}
			_ = json.NewEncoder(w).Encode(models.Transaction{Amount: req.Amount})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not found"}`))
		}
	})
}

func newTestMachine(t *testing.T, backend *fakeATMBackend) *Machine {
	t.Helper()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)
	return NewMachine(transport.NewClient(server.URL))
}

func TestDepositHappyPath(t *testing.T) {
	backend := &fakeATMBackend{balance: 100}
	machine := newTestMachine(t, backend)

	assert.Equal(t, SceneSelect, machine.Scene())

	machine.SetAccountID(7)
	machine.SetAmount(50)
	require.NoError(t, machine.SetScene(SceneDeposit))

	require.NoError(t, machine.Deposit(context.Background(), 0))

	assert.Equal(t, SceneSelect, machine.Scene())
	assert.Zero(t, machine.PendingAmount(), "no stale amount survives the return to SELECT")
	require.NotNil(t, machine.Account())
	assert.Equal(t, 150.0, machine.Account().Balance, "balance is the server's, refreshed after the commit")
}

func TestDepositExplicitAmountOverridesPending(t *testing.T) {
	backend := &fakeATMBackend{balance: 100}
	machine := newTestMachine(t, backend)

	machine.SetAccountID(7)
	machine.SetAmount(50)
	require.NoError(t, machine.SetScene(SceneDeposit))

	require.NoError(t, machine.Deposit(context.Background(), 25))
	assert.Equal(t, 125.0, machine.Account().Balance)
}

func TestDepositFailureLeavesSceneAndBalance(t *testing.T) {
	backend := &fakeATMBackend{balance: 100, failWith: "limit exceeded"}
	machine := newTestMachine(t, backend)

	machine.SetAccountID(7)
	require.NoError(t, machine.FetchAccount(context.Background()))
	machine.SetAmount(50)
	require.NoError(t, machine.SetScene(SceneDeposit))

	err := machine.Deposit(context.Background(), 0)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "limit exceeded", opErr.Message)
	assert.Equal(t, http.StatusBadRequest, opErr.Status)

	assert.Equal(t, SceneDeposit, machine.Scene(), "the user can retry or cancel")
	assert.Equal(t, 50.0, machine.PendingAmount())
	assert.Equal(t, 100.0, machine.Account().Balance)
}

func TestWithdrawHappyPath(t *testing.T) {
	backend := &fakeATMBackend{balance: 100}
	machine := newTestMachine(t, backend)

	machine.SetAccountID(7)
	machine.SetAmount(40)
	require.NoError(t, machine.SetScene(SceneWithdraw))

	require.NoError(t, machine.Withdraw(context.Background()))

	assert.Equal(t, SceneSelect, machine.Scene())
	assert.Equal(t, 60.0, machine.Account().Balance)
	assert.Zero(t, machine.PendingAmount())
}

func TestOperationRequiresMatchingScene(t *testing.T) {
	machine := newTestMachine(t, &fakeATMBackend{})
	machine.SetAccountID(7)
	machine.SetAmount(50)

	err := machine.Deposit(context.Background(), 0)
	require.ErrorIs(t, err, ErrIllegalTransition, "deposit is not allowed from SELECT")

	require.NoError(t, machine.SetScene(SceneWithdraw))
	err = machine.Deposit(context.Background(), 0)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestSceneTransitions(t *testing.T) {
	machine := newTestMachine(t, &fakeATMBackend{})

	require.NoError(t, machine.SetScene(SceneDeposit))
	require.ErrorIs(t, machine.SetScene(SceneWithdraw), ErrIllegalTransition,
		"an operation scene can only go back to SELECT")

	machine.SetAmount(75)
	require.NoError(t, machine.SetScene(SceneSelect), "cancel is caller-driven")
	assert.Zero(t, machine.PendingAmount(), "cancelling clears the keyed-in amount")

	require.NoError(t, machine.SetScene(SceneWithdraw))
	require.NoError(t, machine.SetScene(SceneWithdraw), "re-entering the current scene is a no-op")
}

func TestWithdrawWithoutAmountFails(t *testing.T) {
	machine := newTestMachine(t, &fakeATMBackend{balance: 100})
	machine.SetAccountID(7)
	require.NoError(t, machine.SetScene(SceneWithdraw))

	var opErr *OperationError
	require.ErrorAs(t, machine.Withdraw(context.Background()), &opErr)
}

func TestFetchAccountPropagatesFailure(t *testing.T) {
	machine := newTestMachine(t, &fakeATMBackend{})
	machine.SetAccountID(404)

	err := machine.FetchAccount(context.Background())
	require.Error(t, err, "the ATM cannot proceed without a confirmed balance")

	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestReset(t *testing.T) {
	backend := &fakeATMBackend{balance: 100}
	machine := newTestMachine(t, backend)
	machine.SetAccountID(7)
	machine.SetAmount(50)
	require.NoError(t, machine.SetScene(SceneDeposit))
	require.NoError(t, machine.FetchAccount(context.Background()))

	machine.Reset()

	assert.Equal(t, SceneSelect, machine.Scene())
	assert.Zero(t, machine.PendingAmount())
	assert.Zero(t, machine.AccountID())
	assert.Nil(t, machine.Account())
}
