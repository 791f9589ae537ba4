package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/config"
	scsync "github.com/AgileSoftDev-2025/storycanvas/internal/sync"
)

func TestRankOrdersModesWorstLast(t *testing.T) {
	order := []scsync.Mode{scsync.ModeSynced, scsync.ModeOffline, scsync.ModeNeedsSync, scsync.ModeError}
	for i := 1; i < len(order); i++ {
		if rank(order[i-1]) >= rank(order[i]) {
			t.Errorf("rank(%s) = %d should be below rank(%s) = %d",
				order[i-1], rank(order[i-1]), order[i], rank(order[i]))
		}
	}
	if rank(scsync.Mode("bogus")) != rank(scsync.ModeError) {
		t.Error("unknown mode should rank as error")
	}
}

func TestNameWithAliases(t *testing.T) {
	c := &cobra.Command{Use: "wireframes", Aliases: []string{"wireframe", "wf"}}
	if got := nameWithAliases(c); got != "wireframes, wireframe, wf" {
		t.Errorf("nameWithAliases() = %q", got)
	}

	plain := &cobra.Command{Use: "init"}
	if got := nameWithAliases(plain); got != "init" {
		t.Errorf("nameWithAliases() = %q", got)
	}
}

func TestResolveProjectID(t *testing.T) {
	oldBase, oldSet := baseDir, workspaceSet
	t.Cleanup(func() { baseDir, workspaceSet = oldBase, oldSet })
	baseDir, workspaceSet = t.TempDir(), true

	// Explicit flag wins and is normalized.
	got, err := resolveProjectID("shop")
	if err != nil {
		t.Fatalf("resolveProjectID(shop) error = %v", err)
	}
	if got != "pr-shop" {
		t.Errorf("got %q, want pr-shop", got)
	}

	// No flag, no active project.
	if _, err := resolveProjectID(""); err == nil || !strings.Contains(err.Error(), "no project selected") {
		t.Errorf("want no-project error, got %v", err)
	}

	// Active project fills in.
	if err := config.SetActiveProject(baseDir, "pr-billing"); err != nil {
		t.Fatal(err)
	}
	got, err = resolveProjectID("")
	if err != nil {
		t.Fatalf("resolveProjectID() error = %v", err)
	}
	if got != "pr-billing" {
		t.Errorf("got %q, want pr-billing", got)
	}
}

func TestCommandsCarryGroups(t *testing.T) {
	for _, c := range rootCmd.Commands() {
		switch c.Name() {
		case "help", "completion":
			continue
		}
		if c.GroupID == "" {
			t.Errorf("command %q has no group", c.Name())
		}
	}
}
