package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/mcoot/samuel/internal/model"
)

// FakeWebAPI serves the owned-games endpoint of the Web API from memory
type FakeWebAPI struct {
	Server *httptest.Server

	mu        sync.Mutex
	games     []model.Game
	status    int
	rawBody   string
	requests  int
	lastQuery url.Values
}

// NewFakeWebAPI starts a fake Web API that is shut down with the test
func NewFakeWebAPI(t *testing.T, games ...model.Game) *FakeWebAPI {
	t.Helper()

	f := &FakeWebAPI{games: games, status: http.StatusOK}

	r := mux.NewRouter()
	r.HandleFunc("/IPlayerService/GetOwnedGames/v0001/", f.ownedGames).Methods(http.MethodGet)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL to configure the client with
func (f *FakeWebAPI) URL() string {
	return f.Server.URL
}

// SetGames replaces the library returned by subsequent requests
func (f *FakeWebAPI) SetGames(games ...model.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games = games
	f.rawBody = ""
	f.status = http.StatusOK
}

// FailWith makes subsequent requests answer with the given status
func (f *FakeWebAPI) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// RespondRaw makes subsequent requests answer 200 with the given body
func (f *FakeWebAPI) RespondRaw(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = http.StatusOK
	f.rawBody = body
}

// Requests returns how many owned-games requests were served
func (f *FakeWebAPI) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// LastQuery returns the query string of the most recent request
func (f *FakeWebAPI) LastQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

func (f *FakeWebAPI) ownedGames(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests++
	f.lastQuery = r.URL.Query()

	if f.status != http.StatusOK {
		http.Error(w, http.StatusText(f.status), f.status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if f.rawBody != "" {
		_, _ = w.Write([]byte(f.rawBody))
		return
	}

	data := map[string]any{}
	if len(f.games) > 0 {
		data["game_count"] = len(f.games)
		data["games"] = f.games
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"response": data})
}
