package models

import "testing"

func TestNormalizeScenarioType(t *testing.T) {
	cases := []struct {
		in   string
		want ScenarioType
	}{
		{"happy_path", TypeHappyPath},
		{"alternate_path", TypeAlternatePath},
		{"exception_path", TypeExceptionPath},
		{"boundary_case", TypeBoundaryCase},
		{"other", TypeOther},
		{"Boundary_Path", TypeBoundaryCase},
		{"boundary_path", TypeBoundaryCase},
		{"EXCEPTION something", TypeExceptionPath},
		{"an alternate flow", TypeAlternatePath},
		{"Happy Path!", TypeHappyPath},
		{"weird_unknown", TypeHappyPath},
		{"", TypeHappyPath},
		{"  BOUNDARY  ", TypeBoundaryCase},
		{"OTHER", TypeOther},
	}
	for _, tc := range cases {
		if got := NormalizeScenarioType(tc.in); got != tc.want {
			t.Errorf("NormalizeScenarioType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeScenarioTypePrecedence(t *testing.T) {
	// boundary outranks exception outranks alternate outranks happy
	if got := NormalizeScenarioType("boundary exception"); got != TypeBoundaryCase {
		t.Errorf("got %q, want boundary_case", got)
	}
	if got := NormalizeScenarioType("exception on the happy path"); got != TypeExceptionPath {
		t.Errorf("got %q, want exception_path", got)
	}
	if got := NormalizeScenarioType("happy alternate"); got != TypeAlternatePath {
		t.Errorf("got %q, want alternate_path", got)
	}
}

func TestNormalizeScenarioTypeDeterministic(t *testing.T) {
	inputs := []string{"boundary_path", "weird", "Happy", "exception_path", ""}
	for _, in := range inputs {
		first := NormalizeScenarioType(in)
		for i := 0; i < 3; i++ {
			if got := NormalizeScenarioType(in); got != first {
				t.Fatalf("NormalizeScenarioType(%q) not deterministic: %q then %q", in, first, got)
			}
		}
	}
}

func TestNormalizeDomain(t *testing.T) {
	if got := NormalizeDomain("Ecommerce"); got != DomainEcommerce {
		t.Errorf("got %q, want ecommerce", got)
	}
	if got := NormalizeDomain("  finance "); got != DomainFinance {
		t.Errorf("got %q, want finance", got)
	}
	if got := NormalizeDomain("space travel"); got != DomainGeneric {
		t.Errorf("got %q, want generic", got)
	}
	if got := NormalizeDomain(""); got != DomainGeneric {
		t.Errorf("got %q, want generic", got)
	}
}

func TestComposeStoryText(t *testing.T) {
	got := ComposeStoryText("customer", "browse products", "I can find what I need")
	want := "As a customer, I want to browse products so that I can find what I need"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	u := UserStory{Role: "admin", Action: "manage inventory", Benefit: "stock stays accurate"}
	u.Recompose()
	if u.StoryText != ComposeStoryText(u.Role, u.Action, u.Benefit) {
		t.Errorf("Recompose left StoryText inconsistent: %q", u.StoryText)
	}
}

func TestValidateSteps(t *testing.T) {
	s := Scenario{Steps: []string{
		"Given a signed-in customer",
		"When they add an item to the cart",
		"Then the cart total updates",
		"And the item count increments",
	}}
	if !s.ValidateSteps() {
		t.Error("expected valid steps")
	}

	s.Steps = append(s.Steps, "the order ships")
	if s.ValidateSteps() {
		t.Error("unprefixed step should invalidate the scenario")
	}

	s.Steps = nil
	if s.ValidateSteps() {
		t.Error("empty steps should be invalid")
	}
}

func TestOrphaned(t *testing.T) {
	s := Scenario{ProjectID: "pr-1"}
	if !s.Orphaned() {
		t.Error("scenario without user story should be orphaned")
	}
	s.UserStoryID = "us-1"
	if s.Orphaned() {
		t.Error("scenario with user story should not be orphaned")
	}
}
