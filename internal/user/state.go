// Package user caches the authenticated principal: profile, limits and a
// compact projection of the accounts they own.
package user

import (
	"context"
	"fmt"
	"sync"

	"github.com/sebaswvv/MazeBank/internal/transport"
	"github.com/sebaswvv/MazeBank/internal/validate"
	"github.com/sebaswvv/MazeBank/models"
)

// anonymous is the state outside any session. Role defaults to CUSTOMER so
// derived checks never see an empty role.
var anonymous = models.User{Role: models.RoleCustomer}

// State is the current-user container. The cached record is replaced
// wholesale on every successful fetch; on a failed read the previous record
// stays (stale-but-present over cleared).
type State struct {
	client *transport.Client

	mu              sync.RWMutex
	user            models.User
	activeAccountID int64
}

func NewState(client *transport.Client) *State {
	return &State{client: client, user: anonymous}
}

// FetchUser replaces the cached principal from the server. A zero id is a
// no-op: there is no user to fetch before a session exists.
func (s *State) FetchUser(ctx context.Context, id int64) error {
	if id == 0 {
		return nil
	}

	var fetched models.User
	if err := s.client.Get(ctx, fmt.Sprintf("/users/%d", id), &fetched); err != nil {
		return fmt.Errorf("failed to fetch user %d: %w", id, err)
	}

	s.mu.Lock()
	s.user = fetched
	s.mu.Unlock()
	return nil
}

// FetchAccounts loads the compact projection of the user's accounts and
// records the first checking account as the active one, the default the ATM
// and account state bind to.
func (s *State) FetchAccounts(ctx context.Context, id int64) error {
	if id == 0 {
		return nil
	}

	var rows []models.AccountCompact
	if err := s.client.Get(ctx, fmt.Sprintf("/users/%d/accounts", id), &rows); err != nil {
		return fmt.Errorf("failed to fetch accounts of user %d: %w", id, err)
	}

	var activeID int64
	for _, row := range rows {
		if row.AccountType == models.AccountTypeChecking {
			activeID = row.ID
			break
		}
	}

	s.mu.Lock()
	s.user.Accounts = rows
	s.activeAccountID = activeID
	s.mu.Unlock()
	return nil
}

// EditUser sends the mutable subset of u as a partial update. On success the
// local record is set to the submitted value without a re-fetch; the trade
// of consistency for latency is deliberate and matches the server echoing
// the patched record.
func (s *State) EditUser(ctx context.Context, u models.User) error {
	patch := models.UserPatchRequest{
		Email:            &u.Email,
		FirstName:        &u.FirstName,
		LastName:         &u.LastName,
		PhoneNumber:      &u.PhoneNumber,
		DayLimit:         &u.DayLimit,
		TransactionLimit: &u.TransactionLimit,
	}
	if err := validate.Struct(patch); err != nil {
		return err
	}

	if err := s.client.Patch(ctx, fmt.Sprintf("/users/%d", u.ID), patch, nil); err != nil {
		return fmt.Errorf("failed to patch user %d: %w", u.ID, err)
	}

	s.mu.Lock()
	u.Accounts = s.user.Accounts
	s.user = u
	s.mu.Unlock()
	return nil
}

// User returns a copy of the cached principal.
func (s *State) User() models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsEmployee reports whether the cached principal holds the employee role.
func (s *State) IsEmployee() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Role == models.RoleEmployee
}

// ActiveAccountID is the id selected by FetchAccounts, 0 when none.
func (s *State) ActiveAccountID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeAccountID
}

// Reset returns the container to its anonymous default. Registered as a
// logout hook: no user-identifying data may survive logout.
func (s *State) Reset() {
	s.mu.Lock()
	s.user = anonymous
	s.activeAccountID = 0
	s.mu.Unlock()
}
