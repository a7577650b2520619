// Package reconcile guards the one consistency rule of this layer: local
// state is never inferred from a mutation; it is re-read from the server.
package reconcile

import (
	"context"
	"errors"
	"fmt"
)

// ErrRefresh marks a mutation that committed on the server while the
// follow-up read failed. Callers must not retry the mutation on it.
var ErrRefresh = errors.New("mutation committed but refresh failed")

// Do runs mutate and, only when it succeeds, refresh. Every state-changing
// operation against the API goes through here so the mandatory re-fetch
// cannot be forgotten when new mutations are added.
func Do(ctx context.Context, mutate, refresh func(context.Context) error) error {
	if err := mutate(ctx); err != nil {
		return err
	}
	if err := refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRefresh, err)
	}
	return nil
}
