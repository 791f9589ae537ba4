// Package gateway is the typed HTTP client for the StoryCanvas backend.
// The backend owns the authoritative copy of every entity when the user
// is signed in; this package only speaks the wire contract and reports
// failures through sentinel errors the sync coordinator branches on.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	// ErrMalformed marks a 2xx response whose envelope carried
	// success=false or was missing the expected payload.
	ErrMalformed = errors.New("malformed response")
)

// Client is an HTTP client for the StoryCanvas backend.
type Client struct {
	BaseURL  string
	Token    string
	DeviceID string
	HTTP     *http.Client
}

// New creates a new backend client.
func New(baseURL, token, deviceID string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Token:    token,
		DeviceID: deviceID,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// envelope is the standard response wrapper the backend speaks.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// CollectionData is the payload of a collection list response.
type CollectionData struct {
	Items        json.RawMessage `json:"items"`
	Count        int             `json:"count"`
	ProjectTitle string          `json:"project_title,omitempty"`
}

// GeneratedData is the payload of an authenticated generation response.
type GeneratedData struct {
	Generated json.RawMessage `json:"generated"`
	Count     int             `json:"count"`
}

// LocalGenRequest is the body of an anonymous local-project generation
// call. The server has no record of the project, so the full payload
// travels with the request, plus a bounded sample of existing artifacts
// for context.
type LocalGenRequest struct {
	ProjectData *models.Project    `json:"project_data"`
	ProjectID   string             `json:"project_id"`
	UserStories []models.UserStory `json:"user_stories,omitempty"`
	Wireframes  []models.Wireframe `json:"wireframes,omitempty"`
}

// localGenResponse is the flatter envelope the anonymous endpoint uses.
type localGenResponse struct {
	Success   bool            `json:"success"`
	Stories   json.RawMessage `json:"stories,omitempty"`
	Scenarios json.RawMessage `json:"scenarios,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// MeResponse identifies the authenticated user.
type MeResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Me verifies the token and returns the account it belongs to.
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var resp MeResponse
	if err := c.do(ctx, "GET", "/v1/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Projects ---

// ListProjects lists the user's remote projects.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	data, _, err := c.listCollection(ctx, "/v1/projects/")
	if err != nil {
		return nil, err
	}
	var out []models.Project
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode projects: %v", ErrMalformed, err)
	}
	return out, nil
}

// GetProject fetches one remote project.
func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var env envelope
	if err := c.do(ctx, "GET", "/v1/projects/"+id, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, env.Error)
	}
	var p models.Project
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, fmt.Errorf("%w: decode project: %v", ErrMalformed, err)
	}
	return &p, nil
}

// CreateProject uploads a project, preserving its local id.
func (c *Client) CreateProject(ctx context.Context, p *models.Project) error {
	return c.do(ctx, "POST", "/v1/projects/", p, nil)
}

// RenameProject updates a remote project's title.
func (c *Client) RenameProject(ctx context.Context, id, title string) error {
	body := map[string]string{"title": title}
	return c.do(ctx, "PUT", "/v1/projects/"+id, body, nil)
}

// DeleteProject removes a remote project and its artifacts.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/v1/projects/"+id, nil, nil)
}

// --- Entity collections ---

// ListUserStories fetches a project's remote stories.
func (c *Client) ListUserStories(ctx context.Context, projectID string) ([]models.UserStory, error) {
	data, _, err := c.listCollection(ctx, "/v1/projects/"+projectID+"/user-stories/")
	if err != nil {
		return nil, err
	}
	var out []models.UserStory
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode stories: %v", ErrMalformed, err)
	}
	return out, nil
}

// ListWireframes fetches a project's remote wireframes.
func (c *Client) ListWireframes(ctx context.Context, projectID string) ([]models.Wireframe, error) {
	data, _, err := c.listCollection(ctx, "/v1/projects/"+projectID+"/wireframes/")
	if err != nil {
		return nil, err
	}
	var out []models.Wireframe
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode wireframes: %v", ErrMalformed, err)
	}
	return out, nil
}

// ListScenarios fetches a project's remote scenarios.
func (c *Client) ListScenarios(ctx context.Context, projectID string) ([]models.Scenario, error) {
	data, _, err := c.listCollection(ctx, "/v1/projects/"+projectID+"/scenarios/")
	if err != nil {
		return nil, err
	}
	var out []models.Scenario
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode scenarios: %v", ErrMalformed, err)
	}
	return out, nil
}

// CreateUserStory uploads one story, preserving its id.
func (c *Client) CreateUserStory(ctx context.Context, u *models.UserStory) error {
	return c.do(ctx, "POST", "/v1/projects/"+u.ProjectID+"/user-stories/", u, nil)
}

// CreateWireframe uploads one wireframe, preserving its id.
func (c *Client) CreateWireframe(ctx context.Context, w *models.Wireframe) error {
	return c.do(ctx, "POST", "/v1/projects/"+w.ProjectID+"/wireframes/", w, nil)
}

// CreateScenario uploads one scenario, preserving its id.
func (c *Client) CreateScenario(ctx context.Context, sc *models.Scenario) error {
	return c.do(ctx, "POST", "/v1/projects/"+sc.ProjectID+"/scenarios/", sc, nil)
}

// DeleteUserStory removes one remote story.
func (c *Client) DeleteUserStory(ctx context.Context, projectID, id string) error {
	return c.do(ctx, "DELETE", "/v1/projects/"+projectID+"/user-stories/"+id, nil, nil)
}

// DeleteScenario removes one remote scenario.
func (c *Client) DeleteScenario(ctx context.Context, projectID, id string) error {
	return c.do(ctx, "DELETE", "/v1/projects/"+projectID+"/scenarios/"+id, nil, nil)
}

// --- Generation ---

// GenerateUserStories asks the backend to generate stories for a
// project it already knows (authenticated tier).
func (c *Client) GenerateUserStories(ctx context.Context, projectID string) ([]models.UserStory, error) {
	data, err := c.generate(ctx, "/v1/projects/"+projectID+"/generate-user-stories/")
	if err != nil {
		return nil, err
	}
	var out []models.UserStory
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode generated stories: %v", ErrMalformed, err)
	}
	return out, nil
}

// GenerateScenarios asks the backend to generate scenarios for a
// project it already knows (authenticated tier).
func (c *Client) GenerateScenarios(ctx context.Context, projectID string) ([]models.Scenario, error) {
	data, err := c.generate(ctx, "/v1/projects/"+projectID+"/generate-scenarios/")
	if err != nil {
		return nil, err
	}
	var out []models.Scenario
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode generated scenarios: %v", ErrMalformed, err)
	}
	return out, nil
}

// LocalGenerateUserStories is the anonymous tier: the full project
// payload travels with the request since the server holds no record.
func (c *Client) LocalGenerateUserStories(ctx context.Context, req *LocalGenRequest) ([]models.UserStory, error) {
	var resp localGenResponse
	if err := c.doNoAuth(ctx, "POST", "/v1/local-projects/generate-user-stories/", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, resp.Error)
	}
	var out []models.UserStory
	if err := json.Unmarshal(resp.Stories, &out); err != nil {
		return nil, fmt.Errorf("%w: decode stories: %v", ErrMalformed, err)
	}
	return out, nil
}

// LocalGenerateScenarios is the anonymous scenario tier.
func (c *Client) LocalGenerateScenarios(ctx context.Context, req *LocalGenRequest) ([]models.Scenario, error) {
	var resp localGenResponse
	if err := c.doNoAuth(ctx, "POST", "/v1/local-projects/generate-scenarios/", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, resp.Error)
	}
	var out []models.Scenario
	if err := json.Unmarshal(resp.Scenarios, &out); err != nil {
		return nil, fmt.Errorf("%w: decode scenarios: %v", ErrMalformed, err)
	}
	return out, nil
}

// --- HTTP helpers ---

// apiError is the standard error body from the server.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

func (c *Client) listCollection(ctx context.Context, path string) (json.RawMessage, int, error) {
	var env envelope
	if err := c.do(ctx, "GET", path, nil, &env); err != nil {
		return nil, 0, err
	}
	if !env.Success {
		return nil, 0, fmt.Errorf("%w: %s", ErrMalformed, env.Error)
	}
	var data CollectionData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, 0, fmt.Errorf("%w: decode collection: %v", ErrMalformed, err)
	}
	return data.Items, data.Count, nil
}

func (c *Client) generate(ctx context.Context, path string) (json.RawMessage, error) {
	var env envelope
	if err := c.do(ctx, "POST", path, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, env.Error)
	}
	var data GeneratedData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: decode generation payload: %v", ErrMalformed, err)
	}
	return data.Generated, nil
}

// do executes an authenticated HTTP request.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	return c.doRequest(ctx, method, path, body, result, true)
}

// doNoAuth executes an unauthenticated HTTP request.
func (c *Client) doNoAuth(ctx context.Context, method, path string, body, result any) error {
	return c.doRequest(ctx, method, path, body, result, false)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any, auth bool) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.DeviceID != "" {
		req.Header.Set("X-Device-ID", c.DeviceID)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Code != "" {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
			case http.StatusForbidden:
				return fmt.Errorf("%w: %s", ErrForbidden, apiErr.Message)
			case http.StatusNotFound:
				return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
			default:
				return &apiErr
			}
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return ErrUnauthorized
		case http.StatusNotFound:
			return ErrNotFound
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	return nil
}
