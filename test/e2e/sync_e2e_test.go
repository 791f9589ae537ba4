package e2e

import (
	"context"
	"testing"

	"github.com/AgileSoftDev-2025/storycanvas/internal/generate"
	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
	scsync "github.com/AgileSoftDev-2025/storycanvas/internal/sync"
)

// seedProject creates the same project record in an actor's local store,
// the way a second device recreates a workspace before its first pull.
func seedProject(t *testing.T, a *Actor, id, title string) {
	t.Helper()
	p := &models.Project{ID: id, Title: title, Domain: models.DomainEcommerce}
	if err := a.Store.CreateProject(p); err != nil {
		t.Fatalf("%s: create project: %v", a.Name, err)
	}
}

func TestPushThenPullAcrossDevices(t *testing.T) {
	h := Setup(t, "laptop", "desktop")
	ctx := context.Background()
	laptop, desktop := h.Actor("laptop"), h.Actor("desktop")

	seedProject(t, laptop, "pr-shop", "Storefront")
	for _, action := range []string{"browse the catalog", "check out with a saved card"} {
		u := &models.UserStory{ProjectID: "pr-shop", Role: "customer", Action: action, Benefit: "shopping is quick"}
		if err := laptop.Store.CreateUserStory(u); err != nil {
			t.Fatalf("create story: %v", err)
		}
	}

	if err := laptop.Coord.EnsureRemoteProject(ctx, "pr-shop"); err != nil {
		t.Fatalf("ensure remote project: %v", err)
	}
	push := laptop.Coord.PushLocalToRemote(ctx, "pr-shop", store.UserStories)
	if !push.Success || push.SyncedCount != 2 {
		t.Fatalf("push = %+v, want 2 synced", push)
	}

	// Re-pushing sends nothing; the remote already holds both ids.
	push = laptop.Coord.PushLocalToRemote(ctx, "pr-shop", store.UserStories)
	if push.SyncedCount != 0 || push.Skipped != 2 {
		t.Errorf("second push = %+v, want 0 synced 2 skipped", push)
	}

	seedProject(t, desktop, "pr-shop", "Storefront")
	out := desktop.Coord.AutoSyncOnEntry(ctx, "pr-shop", store.UserStories)
	if out.Mode != scsync.ModeSynced || out.Pulled != 2 {
		t.Fatalf("entry sync = %+v, want 2 pulled synced", out)
	}
	if got := len(desktop.Store.ListUserStories("pr-shop")); got != 2 {
		t.Errorf("desktop has %d stories, want 2", got)
	}
}

func TestTwoWaySyncMergesBothSides(t *testing.T) {
	h := Setup(t, "laptop", "desktop")
	ctx := context.Background()
	laptop, desktop := h.Actor("laptop"), h.Actor("desktop")

	seedProject(t, laptop, "pr-shop", "Storefront")
	seedProject(t, desktop, "pr-shop", "Storefront")
	if err := laptop.Coord.EnsureRemoteProject(ctx, "pr-shop"); err != nil {
		t.Fatalf("ensure remote project: %v", err)
	}

	a := &models.UserStory{ID: "us-aaaa0001", ProjectID: "pr-shop", Role: "customer", Action: "track my order", Benefit: "I know when it arrives"}
	if err := laptop.Store.CreateUserStory(a); err != nil {
		t.Fatal(err)
	}
	b := &models.UserStory{ID: "us-bbbb0001", ProjectID: "pr-shop", Role: "seller", Action: "list a product", Benefit: "customers can find it"}
	if err := desktop.Store.CreateUserStory(b); err != nil {
		t.Fatal(err)
	}

	res, err := laptop.Coord.TwoWaySync(ctx, "pr-shop", store.UserStories)
	if err != nil {
		t.Fatalf("laptop two-way: %v", err)
	}
	if res.Pushed != 1 || res.Pulled != 0 {
		t.Errorf("laptop two-way = %+v, want 1 pushed", res)
	}

	res, err = desktop.Coord.TwoWaySync(ctx, "pr-shop", store.UserStories)
	if err != nil {
		t.Fatalf("desktop two-way: %v", err)
	}
	if res.Pulled != 1 || res.Pushed != 1 {
		t.Errorf("desktop two-way = %+v, want 1 pulled 1 pushed", res)
	}

	res, err = laptop.Coord.TwoWaySync(ctx, "pr-shop", store.UserStories)
	if err != nil {
		t.Fatalf("laptop second two-way: %v", err)
	}
	if res.Pulled != 1 {
		t.Errorf("laptop second two-way = %+v, want 1 pulled", res)
	}

	for _, a := range []*Actor{laptop, desktop} {
		if got := len(a.Store.ListUserStories("pr-shop")); got != 2 {
			t.Errorf("%s has %d stories, want 2", a.Name, got)
		}
	}
}

func TestConflictsCountedNotMerged(t *testing.T) {
	h := Setup(t, "laptop", "desktop")
	ctx := context.Background()
	laptop, desktop := h.Actor("laptop"), h.Actor("desktop")

	seedProject(t, laptop, "pr-shop", "Storefront")
	seedProject(t, desktop, "pr-shop", "Storefront")
	if err := laptop.Coord.EnsureRemoteProject(ctx, "pr-shop"); err != nil {
		t.Fatal(err)
	}

	// Same id edited independently on both devices.
	remote := &models.UserStory{ID: "us-cafe0001", ProjectID: "pr-shop", Role: "admin", Action: "export monthly sales", Benefit: "finance gets reports"}
	if err := laptop.Store.CreateUserStory(remote); err != nil {
		t.Fatal(err)
	}
	if res, _ := laptop.Coord.TwoWaySync(ctx, "pr-shop", store.UserStories); res.Pushed != 1 {
		t.Fatalf("seed push failed: %+v", res)
	}

	local := &models.UserStory{ID: "us-cafe0001", ProjectID: "pr-shop", Role: "admin", Action: "export weekly sales", Benefit: "finance gets reports"}
	if err := desktop.Store.CreateUserStory(local); err != nil {
		t.Fatal(err)
	}

	res, err := desktop.Coord.TwoWaySync(ctx, "pr-shop", store.UserStories)
	if err != nil {
		t.Fatalf("two-way: %v", err)
	}
	if res.Conflicts != 1 {
		t.Errorf("conflicts = %d, want 1", res.Conflicts)
	}
	kept, _ := desktop.Store.GetUserStory("us-cafe0001")
	if kept.Action != "export weekly sales" {
		t.Errorf("two-way overwrote local edit: %q", kept.Action)
	}

	// Explicit pull is the remote-wins escape hatch.
	pull := desktop.Coord.PullRemoteToLocal(ctx, "pr-shop", store.UserStories)
	if pull.Overwritten != 1 {
		t.Errorf("pull = %+v, want 1 overwritten", pull)
	}
	kept, _ = desktop.Store.GetUserStory("us-cafe0001")
	if kept.Action != "export monthly sales" {
		t.Errorf("pull did not apply remote state: %q", kept.Action)
	}
}

func TestBackendGenerationSyncsToSecondDevice(t *testing.T) {
	h := Setup(t, "laptop", "desktop")
	ctx := context.Background()
	laptop, desktop := h.Actor("laptop"), h.Actor("desktop")

	seedProject(t, laptop, "pr-shop", "Storefront")
	if err := laptop.Coord.EnsureRemoteProject(ctx, "pr-shop"); err != nil {
		t.Fatal(err)
	}

	res, err := laptop.Gen.UserStories(ctx, "pr-shop")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Source != generate.SourceDatabase {
		t.Errorf("source = %s, want %s", res.Source, generate.SourceDatabase)
	}
	if res.Count != 15 {
		t.Errorf("count = %d, want 15", res.Count)
	}

	seedProject(t, desktop, "pr-shop", "Storefront")
	out := desktop.Coord.AutoSyncOnEntry(ctx, "pr-shop", store.UserStories)
	if out.Pulled != 15 {
		t.Errorf("desktop pulled %d stories, want 15", out.Pulled)
	}
}
