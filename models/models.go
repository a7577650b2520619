package models

import "time"

// Role is the user's role as the API serialises it.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleEmployee Role = "EMPLOYEE"
)

// AccountType is serialised as its ordinal value.
type AccountType int

const (
	AccountTypeSavings  AccountType = 0
	AccountTypeChecking AccountType = 1
)

// TransactionType is serialised as its ordinal value. Amounts are always
// positive; direction is carried by the type and by which of sender/receiver
// is populated.
type TransactionType int

const (
	TransactionTypeTransfer   TransactionType = 0
	TransactionTypeDeposit    TransactionType = 1
	TransactionTypeWithdrawal TransactionType = 2
)

// User is the authenticated principal. It is replaced wholesale on every
// successful fetch; only EditUser mutates it partially.
type User struct {
	ID               int64            `json:"id"`
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	Email            string           `json:"email"`
	PhoneNumber      string           `json:"phoneNumber"`
	BSN              int              `json:"bsn"`
	Role             Role             `json:"role"`
	Accounts         []AccountCompact `json:"accounts"`
	TransactionLimit float64          `json:"transactionLimit"`
	DayLimit         float64          `json:"dayLimit"`
	Blocked          bool             `json:"blocked"`
}

// UserCompact is the reduced user projection embedded in account detail.
type UserCompact struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// AccountCompact is the reduced account projection used in list contexts.
// It is never independently persisted.
type AccountCompact struct {
	ID          int64       `json:"id"`
	IBAN        string      `json:"iban"`
	AccountType AccountType `json:"accountType"`
	Balance     float64     `json:"balance"`
}

// Account is the full account detail. Balance is authoritative only
// immediately after a fetch; mutating operations must re-fetch before the
// cached balance is trusted again.
type Account struct {
	ID            int64        `json:"id"`
	IBAN          string       `json:"iban"`
	AccountType   AccountType  `json:"accountType"`
	Balance       float64      `json:"balance"`
	UserID        int64        `json:"userId"`
	User          *UserCompact `json:"user,omitempty"`
	Active        bool         `json:"active"`
	CreatedAt     time.Time    `json:"createdAt"`
	AbsoluteLimit float64      `json:"absoluteLimit"`
}

// Transaction is immutable once created.
type Transaction struct {
	ID              int64           `json:"id"`
	Description     string          `json:"description"`
	Amount          float64         `json:"amount"`
	UserPerforming  *UserCompact    `json:"userPerforming,omitempty"`
	Sender          string          `json:"sender,omitempty"`
	Receiver        string          `json:"receiver,omitempty"`
	TransactionType TransactionType `json:"transactionType"`
	Timestamp       time.Time       `json:"timestamp"`
}
