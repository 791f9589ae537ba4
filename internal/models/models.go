package models

import (
	"fmt"
	"strings"
	"time"
)

// Domain categorizes a project for template-based generation.
type Domain string

const (
	DomainEcommerce  Domain = "ecommerce"
	DomainFinance    Domain = "finance"
	DomainHealthcare Domain = "healthcare"
	DomainEducation  Domain = "education"
	DomainGeneric    Domain = "generic"
)

// NormalizeDomain maps free-text domain input onto the closed Domain set.
// Unrecognized values fall back to DomainGeneric.
func NormalizeDomain(raw string) Domain {
	switch Domain(strings.ToLower(strings.TrimSpace(raw))) {
	case DomainEcommerce:
		return DomainEcommerce
	case DomainFinance:
		return DomainFinance
	case DomainHealthcare:
		return DomainHealthcare
	case DomainEducation:
		return DomainEducation
	default:
		return DomainGeneric
	}
}

// Priority represents user-story priority
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// StoryStatus represents the review state of a user story
type StoryStatus string

const (
	StoryDraft       StoryStatus = "draft"
	StoryReviewed    StoryStatus = "reviewed"
	StoryApproved    StoryStatus = "approved"
	StoryImplemented StoryStatus = "implemented"
)

// ScenarioStatus represents the review state of a scenario
type ScenarioStatus string

const (
	ScenarioDraft    ScenarioStatus = "draft"
	ScenarioAccepted ScenarioStatus = "accepted"
	ScenarioRejected ScenarioStatus = "rejected"
)

// ScenarioType is the closed classification of a test scenario.
type ScenarioType string

const (
	TypeHappyPath     ScenarioType = "happy_path"
	TypeAlternatePath ScenarioType = "alternate_path"
	TypeExceptionPath ScenarioType = "exception_path"
	TypeBoundaryCase  ScenarioType = "boundary_case"
	TypeOther         ScenarioType = "other"
)

// NormalizeScenarioType maps a free-form type string onto the closed
// ScenarioType set. Matching is case-insensitive substring with fixed
// precedence (boundary, exception, alternate, happy); canonical values
// pass through unchanged; anything else defaults to happy_path.
func NormalizeScenarioType(raw string) ScenarioType {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "boundary"):
		return TypeBoundaryCase
	case strings.Contains(s, "exception"):
		return TypeExceptionPath
	case strings.Contains(s, "alternate"):
		return TypeAlternatePath
	case strings.Contains(s, "happy"):
		return TypeHappyPath
	}
	switch ScenarioType(s) {
	case TypeHappyPath, TypeAlternatePath, TypeExceptionPath, TypeBoundaryCase, TypeOther:
		return ScenarioType(s)
	}
	return TypeHappyPath
}

// UserProfile describes one intended user group of a project.
type UserProfile struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Feature describes one planned feature of a project.
type Feature struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Project is the root entity all artifacts hang off.
type Project struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Domain         Domain        `json:"domain"`
	Objective      string        `json:"objective,omitempty"`
	Scope          string        `json:"scope,omitempty"`
	Flow           string        `json:"flow,omitempty"`
	AdditionalInfo string        `json:"additional_info,omitempty"`
	UsersData      []UserProfile `json:"users_data,omitempty"`
	FeaturesData   []Feature     `json:"features_data,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// UserStory is a single "As a / I want / so that" requirement.
type UserStory struct {
	ID                 string      `json:"id"`
	ProjectID          string      `json:"project_id"`
	Role               string      `json:"role"`
	Action             string      `json:"action"`
	Benefit            string      `json:"benefit"`
	StoryText          string      `json:"story_text"`
	Feature            string      `json:"feature,omitempty"`
	AcceptanceCriteria []string    `json:"acceptance_criteria,omitempty"`
	Priority           Priority    `json:"priority"`
	StoryPoints        int         `json:"story_points,omitempty"`
	Status             StoryStatus `json:"status"`
	GeneratedByLLM     bool        `json:"generated_by_llm"`
	Iteration          int         `json:"iteration,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// ComposeStoryText derives the canonical story sentence from the three
// clauses. Callers must re-run it after editing role, action or benefit
// so StoryText never drifts from its parts.
func ComposeStoryText(role, action, benefit string) string {
	return fmt.Sprintf("As a %s, I want to %s so that %s", role, action, benefit)
}

// Recompose refreshes StoryText from the current clauses.
func (u *UserStory) Recompose() {
	u.StoryText = ComposeStoryText(u.Role, u.Action, u.Benefit)
}

// Wireframe is a generated page sketch. The sync core only reads these,
// as input to scenario-to-page association.
type Wireframe struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	PageName  string    `json:"page_name"`
	PageType  string    `json:"page_type,omitempty"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scenario is a Gherkin-style test scenario. UserStoryID may be empty,
// in which case the scenario is project-level ("orphaned").
type Scenario struct {
	ID                string         `json:"id"`
	ProjectID         string         `json:"project_id"`
	UserStoryID       string         `json:"user_story_id,omitempty"`
	Type              ScenarioType   `json:"scenario_type"`
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	Steps             []string       `json:"steps,omitempty"`
	StructurallyValid bool           `json:"structurally_valid"`
	GeneratedByLLM    bool           `json:"generated_by_llm"`
	Status            ScenarioStatus `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Orphaned reports whether the scenario has no owning user story.
func (s *Scenario) Orphaned() bool {
	return s.UserStoryID == ""
}

var gherkinPrefixes = []string{"Given ", "When ", "Then ", "And ", "But "}

// ValidGherkinStep reports whether a step carries a recognized keyword prefix.
func ValidGherkinStep(step string) bool {
	for _, p := range gherkinPrefixes {
		if strings.HasPrefix(step, p) {
			return true
		}
	}
	return false
}

// ValidateSteps checks every step and returns whether the scenario is
// structurally valid: at least one step, all steps keyword-prefixed.
func (s *Scenario) ValidateSteps() bool {
	if len(s.Steps) == 0 {
		return false
	}
	for _, step := range s.Steps {
		if !ValidGherkinStep(step) {
			return false
		}
	}
	return true
}
