package models

// Request payloads sent to the banking API. Validation tags mirror what the
// server enforces so obviously bad requests never leave the client.

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	BSN         int    `json:"bsn" validate:"required"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
}

// UserPatchRequest carries only the mutable subset of a user. Nil fields are
// omitted from the request body.
type UserPatchRequest struct {
	Email            *string  `json:"email,omitempty" validate:"omitempty,email"`
	FirstName        *string  `json:"firstName,omitempty"`
	LastName         *string  `json:"lastName,omitempty"`
	PhoneNumber      *string  `json:"phoneNumber,omitempty"`
	DayLimit         *float64 `json:"dayLimit,omitempty" validate:"omitempty,gte=0"`
	TransactionLimit *float64 `json:"transactionLimit,omitempty" validate:"omitempty,gte=0"`
}

type AccountPatchRequest struct {
	AbsoluteLimit *float64 `json:"absoluteLimit,omitempty" validate:"omitempty,lte=0"`
}

type TransactionRequest struct {
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Description  string  `json:"description"`
	SenderIBAN   string  `json:"senderIban" validate:"required"`
	ReceiverIBAN string  `json:"receiverIban" validate:"required"`
}

// AtmRequest is the body of deposit and withdraw calls.
type AtmRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// AuthResponse is the body returned by login and register.
type AuthResponse struct {
	AuthenticationToken string `json:"authenticationToken"`
}
