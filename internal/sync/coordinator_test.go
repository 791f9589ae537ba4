package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/AgileSoftDev-2025/storycanvas/internal/gateway"
	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
)

// fakeBackend is an in-memory stand-in for the remote gateway.
type fakeBackend struct {
	projects  map[string]models.Project
	stories   map[string]models.UserStory
	scenarios map[string]models.Scenario

	unauthorized bool            // answer 401 to everything
	rejectIDs    map[string]bool // fail creates for these entity ids
	requests     atomic.Int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		projects:  make(map[string]models.Project),
		stories:   make(map[string]models.UserStory),
		scenarios: make(map[string]models.Scenario),
		rejectIDs: make(map[string]bool),
	}
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.requests.Add(1)
			if f.unauthorized {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"code": "unauthorized", "message": "token expired"})
				return
			}
			h(w, r)
		}
	}

	list := func(w http.ResponseWriter, items any, count int) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"items": items, "count": count},
		})
	}

	mux.HandleFunc("GET /v1/projects/{id}", wrap(func(w http.ResponseWriter, r *http.Request) {
		p, ok := f.projects[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"code": "not_found", "message": "no such project"})
			return
		}
		raw, _ := json.Marshal(p)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(raw)})
	}))
	mux.HandleFunc("POST /v1/projects/", wrap(func(w http.ResponseWriter, r *http.Request) {
		var p models.Project
		json.NewDecoder(r.Body).Decode(&p)
		f.projects[p.ID] = p
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	mux.HandleFunc("GET /v1/projects/{id}/user-stories/", wrap(func(w http.ResponseWriter, r *http.Request) {
		pid := r.PathValue("id")
		out := []models.UserStory{}
		for _, u := range f.stories {
			if u.ProjectID == pid {
				out = append(out, u)
			}
		}
		list(w, out, len(out))
	}))
	mux.HandleFunc("POST /v1/projects/{id}/user-stories/", wrap(func(w http.ResponseWriter, r *http.Request) {
		var u models.UserStory
		json.NewDecoder(r.Body).Decode(&u)
		if f.rejectIDs[u.ID] {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"code": "storage_error", "message": "simulated failure"})
			return
		}
		f.stories[u.ID] = u
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	mux.HandleFunc("GET /v1/projects/{id}/scenarios/", wrap(func(w http.ResponseWriter, r *http.Request) {
		pid := r.PathValue("id")
		out := []models.Scenario{}
		for _, sc := range f.scenarios {
			if sc.ProjectID == pid {
				out = append(out, sc)
			}
		}
		list(w, out, len(out))
	}))
	mux.HandleFunc("POST /v1/projects/{id}/scenarios/", wrap(func(w http.ResponseWriter, r *http.Request) {
		var sc models.Scenario
		json.NewDecoder(r.Body).Decode(&sc)
		if f.rejectIDs[sc.ID] {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"code": "storage_error", "message": "simulated failure"})
			return
		}
		f.scenarios[sc.ID] = sc
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	mux.HandleFunc("GET /v1/projects/{id}/wireframes/", wrap(func(w http.ResponseWriter, r *http.Request) {
		list(w, []models.Wireframe{}, 0)
	}))

	return mux
}

// setupSync returns a coordinator wired to an in-memory store and a
// fake backend, plus hooks into both.
func setupSync(t *testing.T) (*Coordinator, *store.Store, *fakeBackend, *bool) {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	signedOut := false
	client := gateway.New(srv.URL, "test-token", "device-1")
	coord := New(st, client, func(string) { signedOut = true })
	return coord, st, backend, &signedOut
}

func seedProject(t *testing.T, st *store.Store) *models.Project {
	t.Helper()
	p := &models.Project{ID: "pr-1", Title: "Shop", Domain: models.DomainEcommerce}
	if err := st.CreateProject(p); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return p
}

func TestAutoSyncNotAuthenticatedStaysLocal(t *testing.T) {
	coord, st, backend, _ := setupSync(t)
	seedProject(t, st)
	coord.client.Token = ""

	out := coord.AutoSyncOnEntry(context.Background(), "pr-1", store.Scenarios)
	if out.Synced || out.Mode != ModeOffline {
		t.Errorf("expected offline outcome, got %+v", out)
	}
	if backend.requests.Load() != 0 {
		t.Errorf("offline mode must not touch the network, saw %d requests", backend.requests.Load())
	}
}

func TestAutoSyncPullsIntoColdCache(t *testing.T) {
	coord, st, backend, _ := setupSync(t)
	seedProject(t, st)

	for i := 0; i < 7; i++ {
		id := string(rune('a'+i))
		backend.scenarios["sc-"+id] = models.Scenario{
			ID: "sc-" + id, ProjectID: "pr-1", Title: "remote " + id, Type: models.TypeHappyPath,
		}
	}

	out := coord.AutoSyncOnEntry(context.Background(), "pr-1", store.Scenarios)
	if !out.Synced || !out.SyncedFromDB {
		t.Errorf("expected synced-from-db outcome, got %+v", out)
	}
	if out.Pulled != 7 {
		t.Errorf("pulled %d, want 7", out.Pulled)
	}
	if got := len(st.ListScenarios("pr-1")); got != 7 {
		t.Errorf("store has %d scenarios, want 7", got)
	}
	// Remote ids are preserved
	if !st.Has(store.Scenarios, "sc-a") {
		t.Error("remote id not preserved on pull")
	}
}

func TestAutoSyncNeverClearsPopulatedLocal(t *testing.T) {
	coord, st, _, _ := setupSync(t)
	seedProject(t, st)

	for i := 0; i < 3; i++ {
		sc := &models.Scenario{ProjectID: "pr-1", Title: "local"}
		if err := st.CreateScenario(sc); err != nil {
			t.Fatalf("seed scenario: %v", err)
		}
	}

	// Remote is empty
	out := coord.AutoSyncOnEntry(context.Background(), "pr-1", store.Scenarios)
	if out.Synced {
		t.Errorf("expected no sync against empty remote, got %+v", out)
	}
	if !out.NeedsSync || out.Mode != ModeNeedsSync {
		t.Errorf("expected needs_sync badge, got %+v", out)
	}
	if got := len(st.ListScenarios("pr-1")); got != 3 {
		t.Errorf("local cache shrank to %d, want 3", got)
	}
}

func TestAutoSyncBothPopulatedIsBadgeOnly(t *testing.T) {
	coord, st, backend, _ := setupSync(t)
	seedProject(t, st)

	shared := &models.Scenario{ID: "sc-shared", ProjectID: "pr-1", Title: "local copy"}
	if err := st.CreateScenario(shared); err != nil {
		t.Fatalf("seed scenario: %v", err)
	}
	backend.scenarios["sc-shared"] = models.Scenario{ID: "sc-shared", ProjectID: "pr-1", Title: "remote copy"}
	backend.scenarios["sc-extra"] = models.Scenario{ID: "sc-extra", ProjectID: "pr-1", Title: "remote only"}

	out := coord.AutoSyncOnEntry(context.Background(), "pr-1", store.Scenarios)
	if out.Pulled != 0 {
		t.Errorf("auto sync must not merge populated sides, pulled %d", out.Pulled)
	}
	if out.Conflicts != 1 {
		t.Errorf("conflicts = %d, want 1", out.Conflicts)
	}
	// Neither side was overwritten
	got, _ := st.GetScenario("sc-shared")
	if got.Title != "local copy" {
		t.Errorf("local copy overwritten: %q", got.Title)
	}
	if backend.scenarios["sc-shared"].Title != "remote copy" {
		t.Error("remote copy overwritten")
	}
}

func TestPushSkipsKnownRemoteIDs(t *testing.T) {
	coord, st, backend, _ := setupSync(t)
	seedProject(t, st)

	known := &models.UserStory{ID: "us-known", ProjectID: "pr-1", Role: "r", Action: "a", Benefit: "b"}
	fresh := &models.UserStory{ID: "us-fresh", ProjectID: "pr-1", Role: "r", Action: "a", Benefit: "b"}
	for _, u := range []*models.UserStory{known, fresh} {
		if err := st.CreateUserStory(u); err != nil {
			t.Fatalf("seed story: %v", err)
		}
	}
	backend.stories["us-known"] = models.UserStory{ID: "us-known", ProjectID: "pr-1", Role: "server"}

	res := coord.PushLocalToRemote(context.Background(), "pr-1", store.UserStories)
	if !res.Success {
		t.Fatalf("push failed: %+v", res)
	}
	if res.SyncedCount != 1 || res.Skipped != 1 {
		t.Errorf("synced=%d skipped=%d, want 1/1", res.SyncedCount, res.Skipped)
	}
	// The known id was not re-sent: the server copy is intact
	if backend.stories["us-known"].Role != "server" {
		t.Error("push overwrote an id the remote already held")
	}
}

func TestPushContinuesPastItemFailures(t *testing.T) {
	coord, st, backend, _ := setupSync(t)
	seedProject(t, st)

	for _, id := range []string{"us-1", "us-2", "us-3"} {
		u := &models.UserStory{ID: id, ProjectID: "pr-1", Role: "r", Action: "a", Benefit: "b"}
		if err := st.CreateUserStory(u); err != nil {
			t.Fatalf("seed story: %v", err)
		}
	}
	backend.rejectIDs["us-2"] = true

	res := coord.PushLocalToRemote(context.Background(), "pr-1", store.UserStories)
	if res.Success {
		t.Error("push with a failure should not report success")
	}
	if res.SyncedCount != 2 || res.Failed != 1 {
		t.Errorf("synced=%d failed=%d, want 2/1", res.SyncedCount, res.Failed)
	}
	if _, ok := backend.stories["us-3"]; !ok {
		t.Error("batch aborted after failure instead of continuing")
	}
}

func TestTwoWaySync(t *testing.T) {
	coord, st, backend, _ := setupSync(t)
	seedProject(t, st)

	localOnly := &models.Scenario{ID: "sc-local", ProjectID: "pr-1", Title: "local only"}
	shared := &models.Scenario{ID: "sc-both", ProjectID: "pr-1", Title: "local version"}
	for _, sc := range []*models.Scenario{localOnly, shared} {
		if err := st.CreateScenario(sc); err != nil {
			t.Fatalf("seed scenario: %v", err)
		}
	}
	backend.scenarios["sc-remote"] = models.Scenario{ID: "sc-remote", ProjectID: "pr-1", Title: "remote only"}
	backend.scenarios["sc-both"] = models.Scenario{ID: "sc-both", ProjectID: "pr-1", Title: "remote version"}

	res, err := coord.TwoWaySync(context.Background(), "pr-1", store.Scenarios)
	if err != nil {
		t.Fatalf("two-way sync: %v", err)
	}
	if res.Pulled != 1 || res.Pushed != 1 || res.Conflicts != 1 {
		t.Errorf("pulled=%d pushed=%d conflicts=%d, want 1/1/1", res.Pulled, res.Pushed, res.Conflicts)
	}

	// Both sides now know all three ids; the conflicting id kept its
	// content on each side
	if got, _ := st.GetScenario("sc-both"); got.Title != "local version" {
		t.Errorf("local conflict copy overwritten: %q", got.Title)
	}
	if backend.scenarios["sc-both"].Title != "remote version" {
		t.Error("remote conflict copy overwritten")
	}
	if !st.Has(store.Scenarios, "sc-remote") {
		t.Error("remote-only scenario not pulled")
	}
	if _, ok := backend.scenarios["sc-local"]; !ok {
		t.Error("local-only scenario not pushed")
	}
}

func TestTwoWaySyncIdempotent(t *testing.T) {
	coord, st, backend, _ := setupSync(t)
	seedProject(t, st)

	st.CreateScenario(&models.Scenario{ID: "sc-l", ProjectID: "pr-1", Title: "l"})
	backend.scenarios["sc-r"] = models.Scenario{ID: "sc-r", ProjectID: "pr-1", Title: "r"}

	if _, err := coord.TwoWaySync(context.Background(), "pr-1", store.Scenarios); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	res, err := coord.TwoWaySync(context.Background(), "pr-1", store.Scenarios)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if res.Pulled != 0 || res.Pushed != 0 {
		t.Errorf("second sync moved data: %+v", res)
	}
	if got := len(st.ListScenarios("pr-1")); got != 2 {
		t.Errorf("scenario count %d after repeat sync, want 2", got)
	}
}

func TestPullRemoteWinsForSharedIDs(t *testing.T) {
	coord, st, backend, _ := setupSync(t)
	seedProject(t, st)

	st.CreateScenario(&models.Scenario{ID: "sc-both", ProjectID: "pr-1", Title: "local version"})
	st.CreateScenario(&models.Scenario{ID: "sc-keep", ProjectID: "pr-1", Title: "local only"})
	backend.scenarios["sc-both"] = models.Scenario{ID: "sc-both", ProjectID: "pr-1", Title: "remote version"}
	backend.scenarios["sc-new"] = models.Scenario{ID: "sc-new", ProjectID: "pr-1", Title: "remote only"}

	res := coord.PullRemoteToLocal(context.Background(), "pr-1", store.Scenarios)
	if !res.Success {
		t.Fatalf("pull failed: %+v", res)
	}
	if res.Pulled != 1 || res.Overwritten != 1 {
		t.Errorf("pulled=%d overwritten=%d, want 1/1", res.Pulled, res.Overwritten)
	}

	if got, _ := st.GetScenario("sc-both"); got.Title != "remote version" {
		t.Errorf("explicit pull should apply remote-wins, got %q", got.Title)
	}
	// Local entities the remote never mentioned survive
	if !st.Has(store.Scenarios, "sc-keep") {
		t.Error("pull deleted a local-only scenario")
	}
}

func TestUnauthorizedForcesSignOut(t *testing.T) {
	coord, st, backend, signedOut := setupSync(t)
	seedProject(t, st)
	backend.unauthorized = true

	out := coord.AutoSyncOnEntry(context.Background(), "pr-1", store.Scenarios)
	if out.Mode != ModeOffline {
		t.Errorf("expected offline degradation, got %+v", out)
	}
	if !*signedOut {
		t.Error("401 during sync must trigger sign-out")
	}
}

func TestInFlightGuard(t *testing.T) {
	coord, st, _, _ := setupSync(t)
	seedProject(t, st)

	if !coord.acquire("pr-1") {
		t.Fatal("first acquire failed")
	}
	out := coord.AutoSyncOnEntry(context.Background(), "pr-1", store.Scenarios)
	if out.Message != ErrSyncInFlight.Error() {
		t.Errorf("expected in-flight rejection, got %+v", out)
	}
	if _, err := coord.TwoWaySync(context.Background(), "pr-1", store.Scenarios); err != ErrSyncInFlight {
		t.Errorf("expected ErrSyncInFlight, got %v", err)
	}

	coord.releaseGuard("pr-1")
	if out := coord.AutoSyncOnEntry(context.Background(), "pr-1", store.Scenarios); out.Message == ErrSyncInFlight.Error() {
		t.Error("guard not released")
	}
}

func TestEnsureRemoteProject(t *testing.T) {
	coord, st, backend, _ := setupSync(t)
	seedProject(t, st)

	if err := coord.EnsureRemoteProject(context.Background(), "pr-1"); err != nil {
		t.Fatalf("ensure remote project: %v", err)
	}
	if _, ok := backend.projects["pr-1"]; !ok {
		t.Fatal("project not uploaded")
	}

	// Second call is a no-op
	backend.projects["pr-1"] = models.Project{ID: "pr-1", Title: "server title"}
	if err := coord.EnsureRemoteProject(context.Background(), "pr-1"); err != nil {
		t.Fatalf("ensure remote project (repeat): %v", err)
	}
	if backend.projects["pr-1"].Title != "server title" {
		t.Error("repeat ensure overwrote the remote project")
	}
}
