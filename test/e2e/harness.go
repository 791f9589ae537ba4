// Package e2e provides a test harness for end-to-end sync testing. It
// runs the real backend on an httptest listener and gives each named
// actor its own local store, gateway client, and sync coordinator, so
// tests can replay multi-device flows (laptop pushes, desktop pulls)
// without shelling out to built binaries.
package e2e

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/AgileSoftDev-2025/storycanvas/internal/api"
	"github.com/AgileSoftDev-2025/storycanvas/internal/gateway"
	"github.com/AgileSoftDev-2025/storycanvas/internal/generate"
	"github.com/AgileSoftDev-2025/storycanvas/internal/serverdb"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
	scsync "github.com/AgileSoftDev-2025/storycanvas/internal/sync"
)

// Actor is one device signed in to the shared account.
type Actor struct {
	Name   string
	Store  *store.Store
	Client *gateway.Client
	Coord  *scsync.Coordinator
	Gen    *generate.Generator
}

// Harness manages an in-process backend and its actors.
type Harness struct {
	ServerURL string
	DB        *serverdb.ServerDB

	actors map[string]*Actor
	t      *testing.T
}

// Setup starts the backend, provisions one account, and signs in each
// named actor as a separate device with its own API key and local store.
func Setup(t *testing.T, actorNames ...string) *Harness {
	t.Helper()

	db, err := serverdb.Open(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("open server db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv, err := api.NewServer(api.Config{ListenAddr: "127.0.0.1:0"}, db)
	if err != nil {
		t.Fatalf("create server: %v", err)
	}
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	user, err := db.CreateUser("team@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	h := &Harness{ServerURL: ts.URL, DB: db, actors: make(map[string]*Actor), t: t}
	for _, name := range actorNames {
		key, _, err := db.GenerateAPIKey(user.ID, name, nil)
		if err != nil {
			t.Fatalf("generate key for %s: %v", name, err)
		}
		st, err := store.Initialize(t.TempDir())
		if err != nil {
			t.Fatalf("init store for %s: %v", name, err)
		}
		t.Cleanup(func() { st.Close() })

		client := gateway.New(ts.URL, key, "device-"+name)
		h.actors[name] = &Actor{
			Name:   name,
			Store:  st,
			Client: client,
			Coord:  scsync.New(st, client, nil),
			Gen:    generate.New(st, client, nil),
		}
	}
	return h
}

// Actor returns the named actor, failing the test when unknown.
func (h *Harness) Actor(name string) *Actor {
	a, ok := h.actors[name]
	if !ok {
		h.t.Fatalf("unknown actor %q", name)
	}
	return a
}
