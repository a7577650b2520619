package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebaswvv/MazeBank/internal/transport"
	"github.com/sebaswvv/MazeBank/models"
)

// fakeBank serves one mutable account the way the real API would, so the
// mutate-then-refetch behaviour of the container is observable.
type fakeBank struct {
	mu         sync.Mutex
	account    models.Account
	fetchCount int
}

func newFakeBank(acc models.Account) *fakeBank {
	return &fakeBank{account: acc}
}

func (f *fakeBank) handler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/accounts/12":
			f.fetchCount++
			_ = json.NewEncoder(w).Encode(f.account)
		case r.Method == http.MethodPatch && r.URL.Path == "/accounts/12":
			var patch models.AccountPatchRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
			if patch.AbsoluteLimit != nil {
				f.account.AbsoluteLimit = *patch.AbsoluteLimit
			}
			// The patch echo is deliberately wrong: a client trusting it
			// instead of re-fetching would cache a corrupt balance.
			echoed := f.account
			echoed.Balance = -99999
			_ = json.NewEncoder(w).Encode(echoed)
		case r.Method == http.MethodPut && r.URL.Path == "/accounts/12/disable":
			f.account.Active = false
			_ = json.NewEncoder(w).Encode(f.account)
		case r.Method == http.MethodPut && r.URL.Path == "/accounts/12/enable":
			f.account.Active = true
			_ = json.NewEncoder(w).Encode(f.account)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not found"}`))
		}
	})
}

func testAccount() models.Account {
	return models.Account{
		ID:            12,
		IBAN:          "NL01INHO0000000001",
		AccountType:   models.AccountTypeChecking,
		Balance:       250,
		UserID:        7,
		Active:        true,
		AbsoluteLimit: -100,
	}
}

func TestUpdateAccountReconcilesFromServer(t *testing.T) {
	bank := newFakeBank(testAccount())
	server := httptest.NewServer(bank.handler(t))
	defer server.Close()

	state := NewState(transport.NewClient(server.URL))
	require.NoError(t, state.FetchAccount(context.Background(), 12))
	require.Equal(t, 1, bank.fetchCount)

	limit := -50.0
	require.NoError(t, state.UpdateAccount(context.Background(), models.AccountPatchRequest{AbsoluteLimit: &limit}))

	assert.Equal(t, 2, bank.fetchCount, "every mutation re-reads the account")

	acc := state.Account()
	require.NotNil(t, acc)
	assert.Equal(t, int64(12), acc.ID)
	assert.Equal(t, -50.0, acc.AbsoluteLimit)
	assert.Equal(t, 250.0, acc.Balance, "unpatched fields come back unchanged; the bogus echo was ignored")
	assert.Equal(t, "NL01INHO0000000001", acc.IBAN)
}

func TestBlockIsIdempotent(t *testing.T) {
	bank := newFakeBank(testAccount())
	server := httptest.NewServer(bank.handler(t))
	defer server.Close()

	state := NewState(transport.NewClient(server.URL))
	require.NoError(t, state.FetchAccount(context.Background(), 12))

	require.NoError(t, state.Block(context.Background()))
	assert.False(t, state.Account().Active)

	require.NoError(t, state.Block(context.Background()))
	assert.False(t, state.Account().Active, "repeating the toggle converges on the same state")

	require.NoError(t, state.Unblock(context.Background()))
	assert.True(t, state.Account().Active)
}

func TestMutationWithoutActiveAccountFails(t *testing.T) {
	state := NewState(transport.NewClient("http://localhost:0"))
	require.Error(t, state.Block(context.Background()))
	require.Error(t, state.UpdateAccount(context.Background(), models.AccountPatchRequest{}))
}

func TestSearchExcludesOwnIBAN(t *testing.T) {
	ownIBAN := "NL01INHO0000000001"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/accounts/search/") {
			assert.Equal(t, "/accounts/search/Jansen", r.URL.Path)
			_ = json.NewEncoder(w).Encode([]models.AccountCompact{
				{ID: 12, IBAN: ownIBAN},
				{ID: 31, IBAN: "NL01INHO0000000031"},
				{ID: 32, IBAN: "NL01INHO0000000032"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(testAccount())
	}))
	defer server.Close()

	state := NewState(transport.NewClient(server.URL))
	require.NoError(t, state.FetchAccount(context.Background(), 12))

	matches, err := state.Search(context.Background(), "Jansen")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.NotEqual(t, ownIBAN, m.IBAN)
	}
}

func TestSearchEscapesQuery(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	state := NewState(transport.NewClient(server.URL))
	_, err := state.Search(context.Background(), "Jansen & Co")
	require.NoError(t, err)
	assert.Equal(t, "/accounts/search/Jansen%20&%20Co", gotPath)
}

func TestFetchTransactionsReplacesPriorPage(t *testing.T) {
	pages := [][]models.Transaction{
		{{ID: 3}, {ID: 2}},
		{{ID: 1}},
	}
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/accounts/12/transactions" {
			assert.Equal(t, "10", r.URL.Query().Get("pageSize"))
			assert.Equal(t, "desc", r.URL.Query().Get("sort"))
			_ = json.NewEncoder(w).Encode(pages[call])
			call++
			return
		}
		_ = json.NewEncoder(w).Encode(testAccount())
	}))
	defer server.Close()

	state := NewState(transport.NewClient(server.URL))
	require.NoError(t, state.FetchAccount(context.Background(), 12))

	require.NoError(t, state.FetchTransactions(context.Background(), 0, 0, ""))
	assert.Len(t, state.Transactions(), 2)

	require.NoError(t, state.FetchTransactions(context.Background(), 1, 0, ""))
	assert.Len(t, state.Transactions(), 1, "each page replaces the previous one")
}

func TestFetchDifferentAccountDropsTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts/12":
			_ = json.NewEncoder(w).Encode(testAccount())
		case "/accounts/13":
			other := testAccount()
			other.ID = 13
			other.IBAN = "NL01INHO0000000002"
			_ = json.NewEncoder(w).Encode(other)
		case "/accounts/12/transactions":
			_ = json.NewEncoder(w).Encode([]models.Transaction{{ID: 1}})
		}
	}))
	defer server.Close()

	state := NewState(transport.NewClient(server.URL))
	require.NoError(t, state.FetchAccount(context.Background(), 12))
	require.NoError(t, state.FetchTransactions(context.Background(), 0, 0, ""))
	require.Len(t, state.Transactions(), 1)

	require.NoError(t, state.FetchAccount(context.Background(), 13))
	assert.Empty(t, state.Transactions(), "selecting another account replaces, never merges")
	assert.Equal(t, int64(13), state.Account().ID)
}
