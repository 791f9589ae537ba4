package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", "device-1")
}

func TestListScenarios(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/projects/pr-1/scenarios/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"items": []models.Scenario{
					{ID: "sc-1", ProjectID: "pr-1", Title: "one"},
					{ID: "sc-2", ProjectID: "pr-1", Title: "two"},
				},
				"count": 2,
			},
		})
	})

	got, err := c.ListScenarios(context.Background(), "pr-1")
	if err != nil {
		t.Fatalf("list scenarios: %v", err)
	}
	if len(got) != 2 || got[0].ID != "sc-1" {
		t.Errorf("unexpected scenarios: %+v", got)
	}
}

func TestUnauthorizedSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"code": "unauthorized", "message": "token expired",
		})
	})

	_, err := c.ListUserStories(context.Background(), "pr-1")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUnauthorizedWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.Me(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestMalformedEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false, "error": "generation backend overloaded",
		})
	})

	_, err := c.GenerateUserStories(context.Background(), "pr-1")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestLocalGenerateSendsFullPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/local-projects/generate-user-stories/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		// The anonymous tier never sends credentials
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("anonymous call carried auth header %q", got)
		}
		var req LocalGenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ProjectData == nil || req.ProjectData.Title != "Shop" {
			t.Errorf("project payload missing: %+v", req.ProjectData)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"stories": []models.UserStory{{ID: "us-1", ProjectID: req.ProjectID}},
		})
	})

	req := &LocalGenRequest{
		ProjectData: &models.Project{ID: "pr-1", Title: "Shop", Domain: models.DomainEcommerce},
		ProjectID:   "pr-1",
	}
	got, err := c.LocalGenerateUserStories(context.Background(), req)
	if err != nil {
		t.Fatalf("local generate: %v", err)
	}
	if len(got) != 1 || got[0].ID != "us-1" {
		t.Errorf("unexpected stories: %+v", got)
	}
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListScenarios(ctx, "pr-1")
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestGenerateUserStories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"generated": []models.UserStory{
					{ID: "us-9", ProjectID: "pr-1", Role: "customer", GeneratedByLLM: true},
				},
				"count": 1,
			},
			"message": "generated 1 story",
		})
	})

	got, err := c.GenerateUserStories(context.Background(), "pr-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 1 || !got[0].GeneratedByLLM {
		t.Errorf("unexpected stories: %+v", got)
	}
}
