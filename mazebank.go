// Package mazebank is the client-side session and state layer of the
// MazeBank application. It keeps local representations of the current user,
// the active account and transaction history consistent with the remote
// banking API, and drives the cash-machine interaction.
//
// All state lives in explicit containers owned by an App; nothing is
// module-global, so isolated instances can be constructed per test.
package mazebank

import (
	"fmt"

	"github.com/sebaswvv/MazeBank/internal/account"
	"github.com/sebaswvv/MazeBank/internal/atm"
	"github.com/sebaswvv/MazeBank/internal/session"
	"github.com/sebaswvv/MazeBank/internal/storage"
	"github.com/sebaswvv/MazeBank/internal/transaction"
	"github.com/sebaswvv/MazeBank/internal/transport"
	"github.com/sebaswvv/MazeBank/internal/user"
)

// Config configures an App.
type Config struct {
	// BaseURL of the banking API, without a trailing slash.
	BaseURL string
	// Store persists the session token across restarts. Defaults to an
	// in-memory store, which makes the session live only as long as the
	// process; pass a FileStore or RedisStore for a durable session.
	Store storage.KeyStore
}

// App is the root application context owning one instance of every state
// container. The session manager is constructed first so it is the first
// reader of the persisted identity keys, and every container holding
// user-identifying data is reset through its logout hook.
type App struct {
	Client       *transport.Client
	Session      *session.Manager
	User         *user.State
	Account      *account.State
	Transactions *transaction.Service
	ATM          *atm.Machine
}

func New(cfg Config) (*App, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	store := cfg.Store
	if store == nil {
		store = storage.NewMemStore()
	}

	client := transport.NewClient(cfg.BaseURL)
	sess, err := session.NewManager(client, store)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	app := &App{
		Client:       client,
		Session:      sess,
		User:         user.NewState(client),
		Account:      account.NewState(client),
		Transactions: transaction.NewService(client),
		ATM:          atm.NewMachine(client),
	}

	sess.OnLogout(app.User.Reset)
	sess.OnLogout(app.Account.Reset)
	sess.OnLogout(app.ATM.Reset)

	return app, nil
}
