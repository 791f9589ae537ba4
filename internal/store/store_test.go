package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createProject(t *testing.T, s *Store, title string, domain models.Domain) *models.Project {
	t.Helper()
	p := &models.Project{Title: title, Domain: domain}
	if err := s.CreateProject(p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func TestProjectLifecycle(t *testing.T) {
	s := setupStore(t)

	p := createProject(t, s, "Shop", models.DomainEcommerce)
	if !strings.HasPrefix(p.ID, "pr-") {
		t.Errorf("expected pr- prefix, got %q", p.ID)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("timestamps not set on create")
	}

	got, ok := s.GetProject(p.ID)
	if !ok {
		t.Fatal("project not found after create")
	}
	if got.Title != "Shop" || got.Domain != models.DomainEcommerce {
		t.Errorf("unexpected project: %+v", got)
	}

	// bare hex lookup gets normalized
	if _, ok := s.GetProject(strings.TrimPrefix(p.ID, "pr-")); !ok {
		t.Error("bare-id lookup failed")
	}

	got.Title = "Shop v2"
	if err := s.UpdateProject(got); err != nil {
		t.Fatalf("update project: %v", err)
	}
	got2, _ := s.GetProject(p.ID)
	if got2.Title != "Shop v2" {
		t.Errorf("update not persisted: %q", got2.Title)
	}

	if !s.DeleteProject(p.ID) {
		t.Error("delete reported nothing removed")
	}
	if _, ok := s.GetProject(p.ID); ok {
		t.Error("project still present after delete")
	}
}

func TestGetProjectMissingIsNotFatal(t *testing.T) {
	s := setupStore(t)
	if _, ok := s.GetProject("pr-nope"); ok {
		t.Error("expected not-found for unknown id")
	}
	if stories := s.ListUserStories("pr-nope"); len(stories) != 0 {
		t.Errorf("expected empty list for unknown project, got %d", len(stories))
	}
}

func TestUserStoryCreateDerivesText(t *testing.T) {
	s := setupStore(t)
	p := createProject(t, s, "Shop", models.DomainEcommerce)

	u := &models.UserStory{
		ProjectID: p.ID,
		Role:      "customer",
		Action:    "track my order",
		Benefit:   "I know when it arrives",
	}
	if err := s.CreateUserStory(u); err != nil {
		t.Fatalf("create story: %v", err)
	}
	if u.StoryText != models.ComposeStoryText(u.Role, u.Action, u.Benefit) {
		t.Errorf("story text not derived: %q", u.StoryText)
	}
	if u.Status != models.StoryDraft {
		t.Errorf("expected draft default, got %q", u.Status)
	}

	// Editing a clause re-derives the text on update
	u.Action = "cancel my order"
	if err := s.UpdateUserStory(u); err != nil {
		t.Fatalf("update story: %v", err)
	}
	got, _ := s.GetUserStory(u.ID)
	if !strings.Contains(got.StoryText, "cancel my order") {
		t.Errorf("story text stale after edit: %q", got.StoryText)
	}
}

func TestListPreservesInsertionOrder(t *testing.T) {
	s := setupStore(t)
	p := createProject(t, s, "Shop", models.DomainEcommerce)

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		sc := &models.Scenario{ProjectID: p.ID, Title: title, Type: models.TypeHappyPath}
		if err := s.CreateScenario(sc); err != nil {
			t.Fatalf("create scenario: %v", err)
		}
	}

	got := s.ListScenarios(p.ID)
	if len(got) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(got))
	}
	for i, title := range titles {
		if got[i].Title != title {
			t.Errorf("position %d: got %q, want %q", i, got[i].Title, title)
		}
	}
}

func TestCreateScenarioNormalizes(t *testing.T) {
	s := setupStore(t)
	p := createProject(t, s, "Shop", models.DomainEcommerce)

	sc := &models.Scenario{
		ProjectID: p.ID,
		Title:     "Checkout at limit",
		Type:      models.ScenarioType("Boundary_Path"),
		Steps:     []string{"Given a cart at the item limit", "When the user adds one more", "Then an error is shown"},
	}
	if err := s.CreateScenario(sc); err != nil {
		t.Fatalf("create scenario: %v", err)
	}
	if sc.Type != models.TypeBoundaryCase {
		t.Errorf("type not normalized: %q", sc.Type)
	}
	if !sc.StructurallyValid {
		t.Error("valid steps flagged invalid")
	}
	if sc.Status != models.ScenarioDraft {
		t.Errorf("expected draft default, got %q", sc.Status)
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	s := setupStore(t)
	p := createProject(t, s, "Shop", models.DomainEcommerce)

	u := &models.UserStory{ID: "us-fixed", ProjectID: p.ID, Role: "r", Action: "a", Benefit: "b"}
	if err := s.CreateUserStory(u); err != nil {
		t.Fatalf("create story: %v", err)
	}
	dup := &models.UserStory{ID: "us-fixed", ProjectID: p.ID, Role: "r2", Action: "a2", Benefit: "b2"}
	if err := s.CreateUserStory(dup); err == nil {
		t.Error("expected error inserting duplicate id")
	}
	if !s.Has(UserStories, "us-fixed") {
		t.Error("Has lost track of existing id")
	}
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	s := setupStore(t)
	u := &models.UserStory{ID: "us-ghost", ProjectID: "pr-x", Role: "r", Action: "a", Benefit: "b"}
	err := s.UpdateUserStory(u)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCorruptRowSelfHeals(t *testing.T) {
	s := setupStore(t)
	p := createProject(t, s, "Shop", models.DomainEcommerce)

	good := &models.Scenario{ProjectID: p.ID, Title: "ok", Type: models.TypeHappyPath}
	if err := s.CreateScenario(good); err != nil {
		t.Fatalf("create scenario: %v", err)
	}
	// Plant an unparseable document next to it
	if _, err := s.conn.Exec(
		"INSERT INTO scenarios (id, project_id, data) VALUES (?, ?, ?)",
		"sc-corrupt", p.ID, "{not json"); err != nil {
		t.Fatalf("plant corrupt row: %v", err)
	}

	got := s.ListScenarios(p.ID)
	if len(got) != 1 || got[0].Title != "ok" {
		t.Fatalf("corrupt row should be skipped, got %d rows", len(got))
	}

	// The sweep removed the garbage; the id is free again
	if s.Has(Scenarios, "sc-corrupt") {
		t.Error("corrupt row not healed")
	}
	healed := &models.Scenario{ID: "sc-corrupt", ProjectID: p.ID, Title: "reborn"}
	if err := s.CreateScenario(healed); err != nil {
		t.Errorf("reusing healed id: %v", err)
	}
}

func TestDeleteProjectCascade(t *testing.T) {
	s := setupStore(t)
	p := createProject(t, s, "Shop", models.DomainEcommerce)
	other := createProject(t, s, "Bank", models.DomainFinance)

	for _, pid := range []string{p.ID, other.ID} {
		s.CreateUserStory(&models.UserStory{ProjectID: pid, Role: "r", Action: "a", Benefit: "b"})
		s.CreateWireframe(&models.Wireframe{ProjectID: pid, PageName: "Home"})
		s.CreateScenario(&models.Scenario{ProjectID: pid, Title: "t"})
	}

	if !s.DeleteProjectCascade(p.ID) {
		t.Fatal("cascade delete reported nothing removed")
	}
	if n := s.Count(UserStories, p.ID) + s.Count(Wireframes, p.ID) + s.Count(Scenarios, p.ID); n != 0 {
		t.Errorf("dependents survived cascade: %d", n)
	}
	// The other project is untouched
	if n := s.Count(UserStories, other.ID) + s.Count(Wireframes, other.ID) + s.Count(Scenarios, other.ID); n != 3 {
		t.Errorf("cascade crossed project boundary: %d", n)
	}
}
