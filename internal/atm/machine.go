// Package atm drives the guided deposit/withdraw interaction against one
// account. The current scene is the only thing deciding which operation may
// run; after every committed operation the account is re-fetched so the
// displayed balance is always the server's, never computed locally.
package atm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/sebaswvv/MazeBank/internal/reconcile"
	"github.com/sebaswvv/MazeBank/internal/transport"
	"github.com/sebaswvv/MazeBank/models"
)

// Scene is the current step of the interaction.
type Scene string

const (
	SceneSelect   Scene = "SELECT"
	SceneDeposit  Scene = "DEPOSIT"
	SceneWithdraw Scene = "WITHDRAW"
)

// ErrIllegalTransition is returned for scene changes the machine forbids.
var ErrIllegalTransition = errors.New("illegal scene transition")

// OperationError is a failed deposit or withdrawal. The scene is left
// unchanged when it is returned, so the caller can retry or cancel without
// re-entering the flow.
type OperationError struct {
	Op      string
	Status  int
	Message string
}

func (e *OperationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s failed with status %d", e.Op, e.Status)
}

// Machine is the ATM session state. SELECT is both the initial and the idle
// state; a pending amount never survives the transition back to it.
type Machine struct {
	client *transport.Client

	mu            sync.RWMutex
	scene         Scene
	pendingAmount float64
	accountID     int64
	account       *models.Account
}

func NewMachine(client *transport.Client) *Machine {
	return &Machine{client: client, scene: SceneSelect}
}

// SetScene transitions the machine. From SELECT any operation scene may be
// entered; from DEPOSIT or WITHDRAW the only legal move is back to SELECT,
// which is how a caller cancels. Returning to SELECT clears the pending
// amount.
func (m *Machine) SetScene(next Scene) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case next == m.scene:
		return nil
	case next == SceneSelect:
		m.scene = SceneSelect
		m.pendingAmount = 0
		return nil
	case m.scene == SceneSelect && (next == SceneDeposit || next == SceneWithdraw):
		m.scene = next
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.scene, next)
	}
}

// SetAmount records the amount the user keyed in. Local only.
func (m *Machine) SetAmount(amount float64) {
	m.mu.Lock()
	m.pendingAmount = amount
	m.mu.Unlock()
}

// SetAccountID binds the machine to an account. Local only.
func (m *Machine) SetAccountID(id int64) {
	m.mu.Lock()
	m.accountID = id
	m.mu.Unlock()
}

// FetchAccount loads the bound account. The error is propagated, not
// swallowed: the ATM cannot proceed without a confirmed balance.
func (m *Machine) FetchAccount(ctx context.Context) error {
	m.mu.RLock()
	id := m.accountID
	m.mu.RUnlock()
	if id == 0 {
		return fmt.Errorf("no account selected")
	}

	var fetched models.Account
	if err := m.client.Get(ctx, fmt.Sprintf("/accounts/%d", id), &fetched); err != nil {
		return fmt.Errorf("failed to fetch account %d: %w", id, err)
	}

	m.mu.Lock()
	m.account = &fetched
	m.mu.Unlock()
	return nil
}

// Deposit posts amount, falling back to the pending amount when amount is
// zero. The server must answer 201. On success the account balance is
// refreshed and the machine returns to SELECT; on failure scene and pending
// amount stay as they were.
func (m *Machine) Deposit(ctx context.Context, amount float64) error {
	return m.commit(ctx, "deposit", amount, http.StatusCreated)
}

// Withdraw posts the pending amount. The server must answer 200. Same
// success and failure contract as Deposit, including the mandatory balance
// refresh before the machine returns to SELECT.
func (m *Machine) Withdraw(ctx context.Context) error {
	return m.commit(ctx, "withdraw", 0, http.StatusOK)
}

func (m *Machine) commit(ctx context.Context, op string, amount float64, want int) error {
	m.mu.RLock()
	id := m.accountID
	scene := m.scene
	if amount == 0 {
		amount = m.pendingAmount
	}
	m.mu.RUnlock()

	if id == 0 {
		return fmt.Errorf("no account selected")
	}
	wantScene := SceneDeposit
	if op == "withdraw" {
		wantScene = SceneWithdraw
	}
	if scene != wantScene {
		return fmt.Errorf("%w: %s not allowed in scene %s", ErrIllegalTransition, op, scene)
	}
	if amount <= 0 {
		return &OperationError{Op: op, Message: "amount must be positive"}
	}

	err := reconcile.Do(ctx,
		func(ctx context.Context) error {
			path := fmt.Sprintf("/accounts/%d/%s", id, op)
			return m.client.Post(ctx, path, models.AtmRequest{Amount: amount}, nil, want)
		},
		m.FetchAccount,
	)
	if err != nil {
		var apiErr *transport.APIError
		if errors.As(err, &apiErr) && !errors.Is(err, reconcile.ErrRefresh) {
			return &OperationError{Op: op, Status: apiErr.Status, Message: apiErr.Message}
		}
		return err
	}

	m.mu.Lock()
	m.scene = SceneSelect
	m.pendingAmount = 0
	m.mu.Unlock()
	return nil
}

// Scene returns the current scene.
func (m *Machine) Scene() Scene {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scene
}

// PendingAmount returns the keyed-in amount, 0 when none.
func (m *Machine) PendingAmount() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pendingAmount
}

// AccountID returns the bound account id, 0 when none.
func (m *Machine) AccountID() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accountID
}

// Account returns a copy of the last fetched account, nil before any fetch.
func (m *Machine) Account() *models.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.account == nil {
		return nil
	}
	acc := *m.account
	return &acc
}

// Reset returns the machine to an idle SELECT scene with nothing bound.
// Registered as a logout hook.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.scene = SceneSelect
	m.pendingAmount = 0
	m.accountID = 0
	m.account = nil
	m.mu.Unlock()
}
