package output

import (
	"strings"
	"testing"
	"time"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/sync"
)

func TestFormatStoryShort(t *testing.T) {
	u := &models.UserStory{
		ID:          "us-ab12",
		StoryText:   "As a customer, I want to track my order so that I know when it arrives",
		Priority:    models.PriorityHigh,
		StoryPoints: 5,
		Status:      models.StoryDraft,
	}
	got := FormatStoryShort(u)

	for _, want := range []string{"us-ab12", "track my order", "5pts", "draft"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatStoryShort missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "(generated)") {
		t.Error("hand-written story marked as generated")
	}

	u.GeneratedByLLM = true
	if !strings.Contains(FormatStoryShort(u), "(generated)") {
		t.Error("generated story not marked")
	}
}

func TestFormatScenarioShort(t *testing.T) {
	sc := &models.Scenario{
		ID:                "sc-cd34",
		UserStoryID:       "us-0001",
		Type:              models.TypeExceptionPath,
		Title:             "payment declined",
		Status:            models.ScenarioDraft,
		StructurallyValid: true,
	}
	got := FormatScenarioShort(sc)
	if !strings.Contains(got, "exception_path") || !strings.Contains(got, "payment declined") {
		t.Errorf("FormatScenarioShort = %q", got)
	}
	if strings.Contains(got, "project-level") {
		t.Error("linked scenario marked as project-level")
	}

	sc.StructurallyValid = false
	if !strings.Contains(FormatScenarioShort(sc), "invalid steps") {
		t.Error("invalid scenario not flagged")
	}

	orphan := &models.Scenario{ID: "sc-ef56", Type: models.TypeHappyPath, Title: "smoke"}
	if !strings.Contains(FormatScenarioShort(orphan), "project-level") {
		t.Error("orphaned scenario not marked as project-level")
	}
}

func TestFormatScenarioGherkin(t *testing.T) {
	sc := &models.Scenario{
		Title: "customer checks out",
		Steps: []string{"Given a full cart", "When the customer pays", "Then an order is created"},
	}
	got := FormatScenarioGherkin(sc)
	if !strings.Contains(got, "Scenario: customer checks out") {
		t.Errorf("missing scenario header in %q", got)
	}
	for _, step := range sc.Steps {
		if !strings.Contains(got, "  "+step) {
			t.Errorf("missing indented step %q", step)
		}
	}
}

func TestSyncBadge(t *testing.T) {
	tests := []struct {
		mode   sync.Mode
		symbol string
	}{
		{sync.ModeOffline, "○"},
		{sync.ModeSynced, "✓"},
		{sync.ModeNeedsSync, "↑"},
		{sync.ModeError, "✗"},
	}
	for _, tt := range tests {
		got := SyncBadge(tt.mode)
		if !strings.Contains(got, tt.symbol) || !strings.Contains(got, string(tt.mode)) {
			t.Errorf("SyncBadge(%s) = %q", tt.mode, got)
		}
	}
}

func TestFormatTimeAgo(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		got := FormatTimeAgo(time.Now().Add(-tt.age))
		if got != tt.want {
			t.Errorf("FormatTimeAgo(-%v) = %q, want %q", tt.age, got, tt.want)
		}
	}
}

func TestProjectMarkdown(t *testing.T) {
	p := &models.Project{Title: "Storefront", Domain: models.DomainEcommerce, Objective: "sell things"}
	stories := []models.UserStory{{
		ID:        "us-1",
		StoryText: "As a customer, I want to browse so that I can shop",
		Priority:  models.PriorityHigh,
	}}
	frames := []models.Wireframe{{ID: "wf-1", PageName: "catalog"}}
	scenarios := []models.Scenario{{
		Title: "browse works",
		Type:  models.TypeHappyPath,
		Steps: []string{"Given a catalog", "When the customer browses", "Then products appear"},
	}}

	md := ProjectMarkdown(p, stories, frames, scenarios)

	for _, want := range []string{
		"# Storefront",
		"## User Stories",
		"As a customer, I want to browse",
		"## Wireframes",
		"**catalog**",
		"## Scenarios",
		"```gherkin",
		"Given a catalog",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("ProjectMarkdown missing %q", want)
		}
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	got, err := RenderMarkdownWithWidth("   \n  ", 80)
	if err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if got != "" {
		t.Errorf("rendered empty markdown = %q, want empty", got)
	}
}

func TestRenderMarkdownWraps(t *testing.T) {
	got, err := RenderMarkdownWithWidth("# Title\n\nsome body text", 40)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(got, "Title") {
		t.Errorf("rendered output missing heading: %q", got)
	}
}
