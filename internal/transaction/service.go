// Package transaction is the stateless command layer for transfers and
// transaction history.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/sebaswvv/MazeBank/internal/transport"
	"github.com/sebaswvv/MazeBank/internal/validate"
	"github.com/sebaswvv/MazeBank/models"
)

// DefaultPageSize applies when callers pass a zero page size.
const DefaultPageSize = 10

// Error is a rejected transaction creation: a business-rule rejection
// (limits, balance, blocked account) adjudicated by the server, carrying the
// server's message for the end user.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("transaction rejected: %s", e.Message)
	}
	return fmt.Sprintf("transaction rejected with status %d", e.Status)
}

// Service executes transaction commands and queries. It holds no state.
type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// Create posts a transfer. The amount must be positive; every non-201
// response is surfaced as *Error, never swallowed; the caller has to show a
// failed financial mutation to the user. The client enforces no limit logic
// of its own.
func (s *Service) Create(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	var created models.Transaction
	if err := s.client.Post(ctx, "/transactions", req, &created, http.StatusCreated); err != nil {
		var apiErr *transport.APIError
		if errors.As(err, &apiErr) {
			return nil, &Error{Status: apiErr.Status, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return &created, nil
}

// ListByAccount pages through an account's history, most recent first by
// default. History views are best-effort: on failure the error is logged and
// an empty page returned.
func (s *Service) ListByAccount(ctx context.Context, accountID int64, page, size int, sort string) []models.Transaction {
	return s.list(ctx, fmt.Sprintf("/accounts/%d/transactions", accountID), page, size, sort)
}

// ListByUser pages through all transactions a user performed.
func (s *Service) ListByUser(ctx context.Context, userID int64, page, size int, sort string) []models.Transaction {
	return s.list(ctx, fmt.Sprintf("/users/%d/transactions", userID), page, size, sort)
}

func (s *Service) list(ctx context.Context, base string, page, size int, sort string) []models.Transaction {
	if size <= 0 {
		size = DefaultPageSize
	}
	if sort == "" {
		sort = "desc"
	}

	var rows []models.Transaction
	path := fmt.Sprintf("%s?pageNumber=%d&pageSize=%d&sort=%s", base, page, size, sort)
	if err := s.client.Get(ctx, path, &rows); err != nil {
		log.Printf("transaction history fetch failed: %v", err)
		return []models.Transaction{}
	}
	return rows
}
