package mockbank

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sebaswvv/MazeBank/models"
)

// Store is the in-memory backing state of the mock bank. It is the source of
// truth the client reconciles against in tests and local development.
type Store struct {
	mu           sync.Mutex
	users        map[int64]*models.User
	passwords    map[int64]string
	accounts     map[int64]*models.Account
	transactions []models.Transaction
	nextUserID   int64
	nextAccID    int64
	nextTxID     int64
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]*models.User),
		passwords:  make(map[int64]string),
		accounts:   make(map[int64]*models.Account),
		nextUserID: 1,
		nextAccID:  1,
		nextTxID:   1,
	}
}

// CreateUser registers a user with a bcrypt-hashed password.
func (s *Store) CreateUser(u models.User, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("email already in use")
		}
	}
	u.ID = s.nextUserID
	s.nextUserID++
	if u.Role == "" {
		u.Role = models.RoleCustomer
	}
	s.users[u.ID] = &u
	s.passwords[u.ID] = string(hash)
	out := u
	return &out, nil
}

// Authenticate returns the user matching email/password.
func (s *Store) Authenticate(email, password string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(s.passwords[id]), []byte(password)) != nil {
			return nil, false
		}
		out := *u
		return &out, true
	}
	return nil, false
}

// User returns a copy of the user with its account projections attached.
func (s *Store) User(id int64) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	out := *u
	out.Accounts = s.accountRowsLocked(id)
	return &out, true
}

// PatchUser applies the mutable fields of patch to user id.
func (s *Store) PatchUser(id int64, patch models.UserPatchRequest) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.PhoneNumber != nil {
		u.PhoneNumber = *patch.PhoneNumber
	}
	if patch.DayLimit != nil {
		u.DayLimit = *patch.DayLimit
	}
	if patch.TransactionLimit != nil {
		u.TransactionLimit = *patch.TransactionLimit
	}
	out := *u
	out.Accounts = s.accountRowsLocked(id)
	return &out, true
}

// CreateAccount opens an account for user id.
func (s *Store) CreateAccount(userID int64, accountType models.AccountType, iban string, absoluteLimit float64) *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := &models.Account{
		ID:            s.nextAccID,
		IBAN:          iban,
		AccountType:   accountType,
		UserID:        userID,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
		AbsoluteLimit: absoluteLimit,
	}
	s.nextAccID++
	s.accounts[acc.ID] = acc
	out := *acc
	return &out
}

// Account returns a copy of the account with its owner projection attached.
func (s *Store) Account(id int64) (*models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountLocked(id)
}

func (s *Store) accountLocked(id int64) (*models.Account, bool) {
	acc, ok := s.accounts[id]
	if !ok {
		return nil, false
	}
	out := *acc
	if owner, ok := s.users[acc.UserID]; ok {
		out.User = &models.UserCompact{
			ID:        owner.ID,
			FirstName: owner.FirstName,
			LastName:  owner.LastName,
			Email:     owner.Email,
		}
	}
	return &out, true
}

// AccountsOfUser returns the compact projection of a user's accounts.
func (s *Store) AccountsOfUser(userID int64) []models.AccountCompact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountRowsLocked(userID)
}

func (s *Store) accountRowsLocked(userID int64) []models.AccountCompact {
	rows := []models.AccountCompact{}
	for _, acc := range s.accounts {
		if acc.UserID == userID {
			rows = append(rows, models.AccountCompact{
				ID:          acc.ID,
				IBAN:        acc.IBAN,
				AccountType: acc.AccountType,
				Balance:     acc.Balance,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

// PatchAccount applies patch to account id.
func (s *Store) PatchAccount(id int64, patch models.AccountPatchRequest) (*models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, false
	}
	if patch.AbsoluteLimit != nil {
		acc.AbsoluteLimit = *patch.AbsoluteLimit
	}
	return s.accountLocked(id)
}

// SetActive toggles an account. Repeating the same toggle is a no-op at the
// data level.
func (s *Store) SetActive(id int64, active bool) (*models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, false
	}
	acc.Active = active
	return s.accountLocked(id)
}

// Search matches accounts whose IBAN or owner name contains query.
func (s *Store) Search(query string) []models.AccountCompact {
	s.mu.Lock()
	defer s.mu.Unlock()
	query = strings.ToLower(query)
	rows := []models.AccountCompact{}
	for _, acc := range s.accounts {
		owner := s.users[acc.UserID]
		name := ""
		if owner != nil {
			name = strings.ToLower(owner.FirstName + " " + owner.LastName)
		}
		if strings.Contains(strings.ToLower(acc.IBAN), query) || strings.Contains(name, query) {
			rows = append(rows, models.AccountCompact{
				ID:          acc.ID,
				IBAN:        acc.IBAN,
				AccountType: acc.AccountType,
				Balance:     acc.Balance,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

// Deposit credits an ATM deposit and records the transaction.
func (s *Store) Deposit(accountID, userID int64, amount float64) (*models.Transaction, error) {
	return s.atmMove(accountID, userID, amount, models.TransactionTypeDeposit)
}

// Withdraw debits an ATM withdrawal and records the transaction. The balance
// may not drop below the account's absolute limit.
func (s *Store) Withdraw(accountID, userID int64, amount float64) (*models.Transaction, error) {
	return s.atmMove(accountID, userID, amount, models.TransactionTypeWithdrawal)
}

func (s *Store) atmMove(accountID, userID int64, amount float64, kind models.TransactionType) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, errNotFound
	}
	if !acc.Active {
		return nil, fmt.Errorf("account is disabled")
	}
	if acc.AccountType != models.AccountTypeChecking {
		return nil, fmt.Errorf("ATM operations are only allowed on checking accounts")
	}

	tx := models.Transaction{
		ID:              s.nextTxID,
		Amount:          amount,
		TransactionType: kind,
		Timestamp:       time.Now().UTC(),
	}
	switch kind {
	case models.TransactionTypeDeposit:
		acc.Balance += amount
		tx.Receiver = acc.IBAN
		tx.Description = "ATM deposit"
	case models.TransactionTypeWithdrawal:
		if acc.Balance-amount < acc.AbsoluteLimit {
			return nil, fmt.Errorf("insufficient balance")
		}
		acc.Balance -= amount
		tx.Sender = acc.IBAN
		tx.Description = "ATM withdrawal"
	}
	if performer, ok := s.users[userID]; ok {
		tx.UserPerforming = &models.UserCompact{ID: performer.ID, FirstName: performer.FirstName, LastName: performer.LastName, Email: performer.Email}
	}

	s.nextTxID++
	s.transactions = append(s.transactions, tx)
	out := tx
	return &out, nil
}

// Transfer moves amount between two IBANs, enforcing the server-side
// business rules the client deliberately does not duplicate.
func (s *Store) Transfer(userID int64, req models.TransactionRequest) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender := s.accountByIBANLocked(req.SenderIBAN)
	receiver := s.accountByIBANLocked(req.ReceiverIBAN)
	if sender == nil || receiver == nil {
		return nil, errNotFound
	}
	if !sender.Active || !receiver.Active {
		return nil, fmt.Errorf("account is disabled")
	}
	performer, ok := s.users[userID]
	if !ok {
		return nil, errNotFound
	}
	if performer.Blocked {
		return nil, fmt.Errorf("user is blocked")
	}
	if req.Amount > performer.TransactionLimit {
		return nil, fmt.Errorf("transaction limit exceeded")
	}
	if s.spentTodayLocked(userID)+req.Amount > performer.DayLimit {
		return nil, fmt.Errorf("day limit exceeded")
	}
	if sender.Balance-req.Amount < sender.AbsoluteLimit {
		return nil, fmt.Errorf("insufficient balance")
	}

	sender.Balance -= req.Amount
	receiver.Balance += req.Amount

	tx := models.Transaction{
		ID:              s.nextTxID,
		Description:     req.Description,
		Amount:          req.Amount,
		Sender:          sender.IBAN,
		Receiver:        receiver.IBAN,
		TransactionType: models.TransactionTypeTransfer,
		Timestamp:       time.Now().UTC(),
		UserPerforming:  &models.UserCompact{ID: performer.ID, FirstName: performer.FirstName, LastName: performer.LastName, Email: performer.Email},
	}
	s.nextTxID++
	s.transactions = append(s.transactions, tx)
	out := tx
	return &out, nil
}

func (s *Store) accountByIBANLocked(iban string) *models.Account {
	for _, acc := range s.accounts {
		if acc.IBAN == iban {
			return acc
		}
	}
	return nil
}

func (s *Store) spentTodayLocked(userID int64) float64 {
	var total float64
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, tx := range s.transactions {
		if tx.TransactionType != models.TransactionTypeTransfer {
			continue
		}
		if tx.UserPerforming == nil || tx.UserPerforming.ID != userID {
			continue
		}
		if tx.Timestamp.Before(today) {
			continue
		}
		total += tx.Amount
	}
	return total
}

// TransactionsOfAccount pages the transactions touching account id.
func (s *Store) TransactionsOfAccount(accountID int64, page, size int, asc bool) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return []models.Transaction{}
	}
	match := func(tx models.Transaction) bool {
		return tx.Sender == acc.IBAN || tx.Receiver == acc.IBAN
	}
	return pageLocked(s.transactions, match, page, size, asc)
}

// TransactionsOfUser pages the transactions performed by user id.
func (s *Store) TransactionsOfUser(userID int64, page, size int, asc bool) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	match := func(tx models.Transaction) bool {
		return tx.UserPerforming != nil && tx.UserPerforming.ID == userID
	}
	return pageLocked(s.transactions, match, page, size, asc)
}

func pageLocked(all []models.Transaction, match func(models.Transaction) bool, page, size int, asc bool) []models.Transaction {
	rows := []models.Transaction{}
	for _, tx := range all {
		if match(tx) {
			rows = append(rows, tx)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if asc {
			return rows[i].Timestamp.Before(rows[j].Timestamp)
		}
		return rows[i].Timestamp.After(rows[j].Timestamp)
	})
	if size <= 0 {
		size = 10
	}
	start := page * size
	if start >= len(rows) {
		return []models.Transaction{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

var errNotFound = fmt.Errorf("not found")
