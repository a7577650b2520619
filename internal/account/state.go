// Package account caches the one active account's full detail plus its
// most recently fetched transaction page.
package account

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/sebaswvv/MazeBank/internal/reconcile"
	"github.com/sebaswvv/MazeBank/internal/transport"
	"github.com/sebaswvv/MazeBank/internal/validate"
	"github.com/sebaswvv/MazeBank/models"
)

// DefaultPageSize applies when callers pass a zero page size.
const DefaultPageSize = 10

// State is the active-account container. Selecting a different account
// replaces the cached detail and transaction page; nothing is merged.
type State struct {
	client *transport.Client

	mu           sync.RWMutex
	account      *models.Account
	transactions []models.Transaction
}

func NewState(client *transport.Client) *State {
	return &State{client: client}
}

// FetchAccount replaces the cached detail from the server. Fetching a
// different account than the cached one also drops the transaction page,
// which belonged to the old account.
func (s *State) FetchAccount(ctx context.Context, id int64) error {
	var fetched models.Account
	if err := s.client.Get(ctx, fmt.Sprintf("/accounts/%d", id), &fetched); err != nil {
		return fmt.Errorf("failed to fetch account %d: %w", id, err)
	}

	s.mu.Lock()
	if s.account == nil || s.account.ID != fetched.ID {
		s.transactions = nil
	}
	s.account = &fetched
	s.mu.Unlock()
	return nil
}

// FetchTransactions loads one page of the active account's history, most
// recent first by default. The result replaces the previous page.
func (s *State) FetchTransactions(ctx context.Context, page, size int, sort string) error {
	s.mu.RLock()
	acc := s.account
	s.mu.RUnlock()
	if acc == nil {
		return fmt.Errorf("no active account")
	}

	if size <= 0 {
		size = DefaultPageSize
	}
	if sort == "" {
		sort = "desc"
	}

	var rows []models.Transaction
	path := fmt.Sprintf("/accounts/%d/transactions?pageNumber=%d&pageSize=%d&sort=%s", acc.ID, page, size, sort)
	if err := s.client.Get(ctx, path, &rows); err != nil {
		return fmt.Errorf("failed to fetch transactions of account %d: %w", acc.ID, err)
	}

	s.mu.Lock()
	s.transactions = rows
	s.mu.Unlock()
	return nil
}

// UpdateAccount patches the active account, then re-fetches it. The echoed
// response of the patch is never trusted as the new state.
func (s *State) UpdateAccount(ctx context.Context, patch models.AccountPatchRequest) error {
	id, err := s.activeID()
	if err != nil {
		return err
	}
	if err := validate.Struct(patch); err != nil {
		return err
	}

	return reconcile.Do(ctx,
		func(ctx context.Context) error {
			return s.client.Patch(ctx, fmt.Sprintf("/accounts/%d", id), patch, nil)
		},
		func(ctx context.Context) error {
			return s.FetchAccount(ctx, id)
		},
	)
}

// Block disables the active account, then re-fetches it. Blocking an already
// blocked account still converges on active == false.
func (s *State) Block(ctx context.Context) error {
	return s.toggle(ctx, "disable")
}

// Unblock enables the active account, then re-fetches it.
func (s *State) Unblock(ctx context.Context) error {
	return s.toggle(ctx, "enable")
}

func (s *State) toggle(ctx context.Context, action string) error {
	id, err := s.activeID()
	if err != nil {
		return err
	}

	return reconcile.Do(ctx,
		func(ctx context.Context) error {
			return s.client.Put(ctx, fmt.Sprintf("/accounts/%d/%s", id, action), nil, nil)
		},
		func(ctx context.Context) error {
			return s.FetchAccount(ctx, id)
		},
	)
}

// Search returns accounts matching query, excluding the active account's own
// IBAN so a transfer form cannot offer the sender as its own receiver.
func (s *State) Search(ctx context.Context, query string) ([]models.AccountCompact, error) {
	var rows []models.AccountCompact
	path := "/accounts/search/" + url.PathEscape(query)
	if err := s.client.Get(ctx, path, &rows); err != nil {
		return nil, fmt.Errorf("failed to search accounts: %w", err)
	}

	ownIBAN := s.IBAN()
	if ownIBAN == "" {
		return rows, nil
	}

	matches := rows[:0]
	for _, row := range rows {
		if row.IBAN != ownIBAN {
			matches = append(matches, row)
		}
	}
	return matches, nil
}

// Account returns a copy of the cached detail, nil when none is loaded.
func (s *State) Account() *models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return nil
	}
	acc := *s.account
	return &acc
}

// Transactions returns the cached transaction page.
func (s *State) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]models.Transaction, len(s.transactions))
	copy(rows, s.transactions)
	return rows
}

// IBAN of the active account, empty when none is loaded.
func (s *State) IBAN() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return ""
	}
	return s.account.IBAN
}

// Balance of the active account as of the last fetch.
func (s *State) Balance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return 0
	}
	return s.account.Balance
}

// Reset drops the cached account and transactions. Registered as a logout
// hook.
func (s *State) Reset() {
	s.mu.Lock()
	s.account = nil
	s.transactions = nil
	s.mu.Unlock()
}

func (s *State) activeID() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return 0, fmt.Errorf("no active account")
	}
	return s.account.ID, nil
}
