// Package generate produces user stories and scenarios for a project
// through a three-tier fallback chain: the authenticated backend, the
// anonymous local-project endpoint, then deterministic templates. The
// caller always ends up with something persisted locally; only a
// project missing from the store entirely surfaces an error.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AgileSoftDev-2025/storycanvas/internal/gateway"
	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
)

// Source names which tier produced a generation batch.
type Source string

const (
	SourceDatabase Source = "database_generated"
	SourceLocalAPI Source = "local_api_generated"
	SourceTemplate Source = "template_generated"
)

// Bounded sample sizes for the anonymous tier's request payload. The
// server wants context, not the whole workspace.
const (
	maxStorySample     = 3
	maxWireframeSample = 2
)

// ErrProjectNotFound is the one unrecoverable generation failure: with
// no local project record there is no domain to template from.
var ErrProjectNotFound = errors.New("project not found in local store")

// Result reports a completed generation call.
type Result struct {
	Source  Source `json:"source"`
	Count   int    `json:"count"`
	Skipped int    `json:"skipped"`
	Message string `json:"message,omitempty"`
}

// Generator routes generation requests to the best available source.
// Explicit context object: construct once, pass by reference.
type Generator struct {
	store   *store.Store
	client  *gateway.Client
	signOut func(reason string)
}

// New creates a generator. signOut runs when the backend answers 401;
// nil is a no-op.
func New(st *store.Store, client *gateway.Client, signOut func(reason string)) *Generator {
	if signOut == nil {
		signOut = func(string) {}
	}
	return &Generator{store: st, client: client, signOut: signOut}
}

func (g *Generator) authenticated() bool {
	return g.client != nil && g.client.Token != ""
}

// tierErr classifies a tier failure: 401 signs the user out, and every
// failure falls through to the next tier.
func (g *Generator) tierErr(tier string, err error) {
	if errors.Is(err, gateway.ErrUnauthorized) {
		g.signOut(err.Error())
	}
	slog.Debug("generation tier failed", "tier", tier, "err", err)
}

// UserStories generates stories for a project and persists them,
// skipping ids the store already holds. Regeneration appends; it never
// clears or overwrites existing stories.
func (g *Generator) UserStories(ctx context.Context, projectID string) (Result, error) {
	projectID = store.NormalizeProjectID(projectID)
	project, ok := g.store.GetProject(projectID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}

	// Tier 1: authenticated backend generation
	if g.authenticated() {
		stories, err := g.client.GenerateUserStories(ctx, projectID)
		if err == nil {
			count, skipped := g.persistStories(stories, projectID)
			return Result{Source: SourceDatabase, Count: count, Skipped: skipped}, nil
		}
		g.tierErr("database", err)
	}

	// Tier 2: anonymous local-project generation, full payload
	stories, err := g.client.LocalGenerateUserStories(ctx, g.localRequest(project))
	if err == nil {
		count, skipped := g.persistStories(stories, projectID)
		return Result{Source: SourceLocalAPI, Count: count, Skipped: skipped}, nil
	}
	g.tierErr("local_api", err)

	// Tier 3: deterministic templates, the availability floor
	count, skipped := g.persistStories(TemplateUserStories(project), projectID)
	return Result{Source: SourceTemplate, Count: count, Skipped: skipped}, nil
}

// Scenarios generates scenarios for a project through the same chain.
func (g *Generator) Scenarios(ctx context.Context, projectID string) (Result, error) {
	projectID = store.NormalizeProjectID(projectID)
	project, ok := g.store.GetProject(projectID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}

	if g.authenticated() {
		scenarios, err := g.client.GenerateScenarios(ctx, projectID)
		if err == nil {
			count, skipped := g.persistScenarios(scenarios, projectID)
			return Result{Source: SourceDatabase, Count: count, Skipped: skipped}, nil
		}
		g.tierErr("database", err)
	}

	scenarios, err := g.client.LocalGenerateScenarios(ctx, g.localRequest(project))
	if err == nil {
		count, skipped := g.persistScenarios(scenarios, projectID)
		return Result{Source: SourceLocalAPI, Count: count, Skipped: skipped}, nil
	}
	g.tierErr("local_api", err)

	stories := g.store.ListUserStories(projectID)
	frames := g.store.ListWireframes(projectID)
	count, skipped := g.persistScenarios(TemplateScenarios(project, stories, frames), projectID)
	return Result{Source: SourceTemplate, Count: count, Skipped: skipped}, nil
}

// localRequest builds the anonymous tier's payload: the full project
// plus a bounded sample of existing artifacts.
func (g *Generator) localRequest(project *models.Project) *gateway.LocalGenRequest {
	stories := g.store.ListUserStories(project.ID)
	if len(stories) > maxStorySample {
		stories = stories[:maxStorySample]
	}
	frames := g.store.ListWireframes(project.ID)
	if len(frames) > maxWireframeSample {
		frames = frames[:maxWireframeSample]
	}
	return &gateway.LocalGenRequest{
		ProjectData: project,
		ProjectID:   project.ID,
		UserStories: stories,
		Wireframes:  frames,
	}
}

// persistStories appends generated stories, skipping ids already held
// so a repeated batch cannot duplicate rows or wipe user edits.
func (g *Generator) persistStories(stories []models.UserStory, projectID string) (count, skipped int) {
	for i := range stories {
		u := stories[i]
		u.ProjectID = projectID
		if u.ID != "" && g.store.Has(store.UserStories, u.ID) {
			skipped++
			continue
		}
		if err := g.store.CreateUserStory(&u); err != nil {
			slog.Debug("persist story", "id", u.ID, "err", err)
			continue
		}
		count++
	}
	return count, skipped
}

func (g *Generator) persistScenarios(scenarios []models.Scenario, projectID string) (count, skipped int) {
	for i := range scenarios {
		sc := scenarios[i]
		sc.ProjectID = projectID
		if sc.ID != "" && g.store.Has(store.Scenarios, sc.ID) {
			skipped++
			continue
		}
		if err := g.store.CreateScenario(&sc); err != nil {
			slog.Debug("persist scenario", "id", sc.ID, "err", err)
			continue
		}
		count++
	}
	return count, skipped
}
