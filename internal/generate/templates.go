package generate

import (
	"fmt"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
)

// roleTemplate is one user group's canned story material. Stories for
// role i take the first 3+(i%3) actions, so every role carries at least
// five.
type roleTemplate struct {
	role    string
	actions []actionTemplate
}

type actionTemplate struct {
	action  string
	benefit string
	feature string
}

// domainTemplates is the closed lookup table behind the availability
// floor: template generation is pure local computation and never fails.
// Unknown domains resolve to the generic entry via templatesFor, an
// explicit default case rather than a map miss.
var domainTemplates = map[models.Domain][]roleTemplate{
	models.DomainEcommerce: {
		{role: "customer", actions: []actionTemplate{
			{"browse the product catalog", "I can find items I want to buy", "catalog"},
			{"add items to my cart", "I can purchase several things at once", "cart"},
			{"track my order after checkout", "I know when my delivery arrives", "orders"},
			{"save items to a wishlist", "I can come back to them later", "catalog"},
			{"leave a review on a purchase", "other shoppers can judge the product", "reviews"},
		}},
		{role: "seller", actions: []actionTemplate{
			{"list a new product with photos and pricing", "customers can discover it", "catalog"},
			{"manage my stock levels", "I never sell items I do not have", "inventory"},
			{"see my sales dashboard", "I can follow how my shop performs", "analytics"},
			{"respond to customer reviews", "I can address complaints publicly", "reviews"},
			{"configure shipping options per product", "buyers see accurate delivery costs", "shipping"},
		}},
		{role: "admin", actions: []actionTemplate{
			{"review newly registered sellers", "only legitimate shops go live", "moderation"},
			{"take down listings that violate policy", "the marketplace stays trustworthy", "moderation"},
			{"manage promotional campaigns", "featured products reach more buyers", "marketing"},
			{"view platform-wide sales reports", "I can report revenue accurately", "analytics"},
			{"handle refund escalations", "disputes get resolved fairly", "support"},
		}},
		{role: "shipper", actions: []actionTemplate{
			{"see my assigned deliveries for the day", "I can plan my route", "logistics"},
			{"mark a package as delivered", "the customer and seller are notified", "logistics"},
			{"report a failed delivery attempt", "redelivery can be scheduled", "logistics"},
			{"scan package barcodes at handoff", "the chain of custody is recorded", "logistics"},
			{"view delivery performance stats", "I can track my completion rate", "analytics"},
		}},
	},
	models.DomainFinance: {
		{role: "account holder", actions: []actionTemplate{
			{"view my account balance and history", "I always know where my money is", "accounts"},
			{"transfer money between my accounts", "I can move funds without visiting a branch", "transfers"},
			{"set up recurring payments", "my bills get paid on time", "payments"},
			{"freeze my card instantly", "a lost card cannot be abused", "cards"},
			{"download statements for a date range", "I can file my taxes", "statements"},
		}},
		{role: "advisor", actions: []actionTemplate{
			{"see a client's portfolio at a glance", "meetings start from current data", "portfolio"},
			{"flag unusual account activity for review", "potential fraud is caught early", "compliance"},
			{"share investment proposals with clients", "decisions are documented", "portfolio"},
			{"schedule review appointments", "clients get regular check-ins", "scheduling"},
			{"record meeting notes against a client", "the next advisor has full context", "crm"},
		}},
		{role: "auditor", actions: []actionTemplate{
			{"trace every change to an account", "the audit trail is complete", "compliance"},
			{"export transaction logs for a period", "regulators receive what they ask for", "compliance"},
			{"lock records under investigation", "evidence cannot be altered", "compliance"},
			{"review access logs by employee", "internal misuse is detectable", "compliance"},
			{"generate quarterly compliance reports", "filings go out on schedule", "reporting"},
		}},
	},
	models.DomainHealthcare: {
		{role: "patient", actions: []actionTemplate{
			{"book an appointment with my doctor", "I get seen without phone calls", "scheduling"},
			{"see my test results as they arrive", "I am not waiting in the dark", "records"},
			{"request prescription renewals", "I never run out of medication", "prescriptions"},
			{"message my care team", "small questions do not need a visit", "messaging"},
			{"view my upcoming visit instructions", "I arrive prepared", "scheduling"},
		}},
		{role: "clinician", actions: []actionTemplate{
			{"review a patient's chart before the visit", "consultations start informed", "records"},
			{"record diagnoses and treatment plans", "the record stays authoritative", "records"},
			{"order labs electronically", "results route back automatically", "orders"},
			{"see my day's schedule with patient context", "I can pace the clinic day", "scheduling"},
			{"flag critical results for follow-up", "nothing urgent slips through", "alerts"},
		}},
		{role: "administrator", actions: []actionTemplate{
			{"manage clinician availability", "booking reflects real capacity", "scheduling"},
			{"verify patient insurance coverage", "billing surprises are avoided", "billing"},
			{"audit access to patient records", "privacy rules are enforceable", "compliance"},
			{"report on clinic utilization", "staffing matches demand", "reporting"},
			{"register new patients", "first visits start with complete data", "records"},
		}},
	},
	models.DomainEducation: {
		{role: "student", actions: []actionTemplate{
			{"see my assignments and due dates", "I can plan my week", "assignments"},
			{"submit work online", "I get credit without printing anything", "assignments"},
			{"check my grades as they post", "I know where I stand", "grades"},
			{"ask questions on course discussion boards", "I get help between classes", "discussions"},
			{"download lecture materials", "I can review at my own pace", "materials"},
		}},
		{role: "instructor", actions: []actionTemplate{
			{"publish assignments with rubrics", "expectations are clear up front", "assignments"},
			{"grade submissions with inline feedback", "students learn from their mistakes", "grades"},
			{"post announcements to the class", "everyone hears changes at once", "announcements"},
			{"track attendance per session", "participation records are accurate", "attendance"},
			{"export the gradebook", "final marks transfer to the registrar", "grades"},
		}},
		{role: "registrar", actions: []actionTemplate{
			{"manage course enrollment caps", "classes stay within room capacity", "enrollment"},
			{"process add and drop requests", "rosters stay current", "enrollment"},
			{"generate transcripts on demand", "students get records same-day", "records"},
			{"schedule courses into rooms and times", "conflicts are caught before term", "scheduling"},
			{"verify graduation requirements", "no one is surprised at the finish line", "records"},
		}},
	},
}

// genericTemplates is the explicit default for unrecognized domains.
var genericTemplates = []roleTemplate{
	{role: "user", actions: []actionTemplate{
		{"sign up and set up my profile", "I can start using the product", "onboarding"},
		{"search for what I need", "I spend less time navigating", "search"},
		{"save my work as I go", "nothing is lost between sessions", "core"},
		{"share items with collaborators", "we can work together", "sharing"},
		{"configure my notification preferences", "I only hear about what matters", "settings"},
	}},
	{role: "administrator", actions: []actionTemplate{
		{"manage user accounts and roles", "access stays appropriate", "admin"},
		{"view usage analytics", "I can justify the investment", "analytics"},
		{"configure system-wide settings", "the product fits our policies", "admin"},
		{"export data for backup", "we are covered against loss", "admin"},
		{"review the audit log", "changes are traceable", "admin"},
	}},
	{role: "support agent", actions: []actionTemplate{
		{"look up a user's account state", "I can answer tickets accurately", "support"},
		{"impersonate a user session safely", "I can reproduce their problem", "support"},
		{"escalate bugs with full context", "engineers fix the right thing", "support"},
		{"track ticket resolution times", "service levels are measurable", "support"},
		{"publish help-center articles", "common questions answer themselves", "support"},
	}},
}

// templatesFor resolves a domain to its role table, defaulting to the
// generic entry.
func templatesFor(domain models.Domain) []roleTemplate {
	if roles, ok := domainTemplates[domain]; ok {
		return roles
	}
	return genericTemplates
}

// storiesPerRole is the fixed fan-out: role i yields 3+(i%3) stories.
func storiesPerRole(roleIndex int) int {
	return 3 + (roleIndex % 3)
}

var priorityCycle = []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityMedium, models.PriorityLow}
var pointsCycle = []int{3, 5, 8, 2}

// TemplateUserStories synthesizes stories for a project from its domain
// table. Pure computation: same project in, same stories out, ids left
// empty for the store to assign.
func TemplateUserStories(p *models.Project) []models.UserStory {
	roles := templatesFor(models.NormalizeDomain(string(p.Domain)))

	var out []models.UserStory
	n := 0
	for i, rt := range roles {
		count := storiesPerRole(i)
		if count > len(rt.actions) {
			count = len(rt.actions)
		}
		for j := 0; j < count; j++ {
			at := rt.actions[j]
			u := models.UserStory{
				ProjectID: p.ID,
				Role:      rt.role,
				Action:    at.action,
				Benefit:   at.benefit,
				Feature:   at.feature,
				AcceptanceCriteria: []string{
					fmt.Sprintf("Given a signed-in %s, the %s flow is reachable from the main navigation", rt.role, at.feature),
					fmt.Sprintf("The %s can %s and sees confirmation of the result", rt.role, at.action),
				},
				Priority:       priorityCycle[n%len(priorityCycle)],
				StoryPoints:    pointsCycle[n%len(pointsCycle)],
				Status:         models.StoryDraft,
				GeneratedByLLM: false,
				Iteration:      1,
			}
			u.Recompose()
			out = append(out, u)
			n++
		}
	}
	return out
}

// scenarioVariants cycles the non-happy types across stories.
var scenarioVariants = []models.ScenarioType{
	models.TypeExceptionPath, models.TypeAlternatePath, models.TypeBoundaryCase,
}

// TemplateScenarios synthesizes scenarios for a project: two per user
// story (the happy path plus one variant), or three project-level
// orphaned scenarios when no stories exist yet. Wireframe page names,
// when available, anchor the happy-path steps to a concrete page.
func TemplateScenarios(p *models.Project, stories []models.UserStory, frames []models.Wireframe) []models.Scenario {
	page := "main page"
	if len(frames) > 0 {
		page = frames[0].PageName
	}

	var out []models.Scenario
	if len(stories) == 0 {
		titles := []struct {
			t     models.ScenarioType
			title string
		}{
			{models.TypeHappyPath, fmt.Sprintf("%s works end to end", p.Title)},
			{models.TypeExceptionPath, fmt.Sprintf("%s handles a backend failure", p.Title)},
			{models.TypeBoundaryCase, fmt.Sprintf("%s behaves at input limits", p.Title)},
		}
		for _, tt := range titles {
			out = append(out, models.Scenario{
				ProjectID:      p.ID,
				Type:           tt.t,
				Title:          tt.title,
				Description:    fmt.Sprintf("Project-level %s scenario derived from the project objective.", tt.t),
				Steps:          templateSteps(tt.t, "user", "use "+p.Title, page),
				Status:         models.ScenarioDraft,
				GeneratedByLLM: false,
			})
		}
		return out
	}

	for i, u := range stories {
		variant := scenarioVariants[i%len(scenarioVariants)]
		out = append(out,
			models.Scenario{
				ProjectID:      p.ID,
				UserStoryID:    u.ID,
				Type:           models.TypeHappyPath,
				Title:          fmt.Sprintf("%s can %s", u.Role, u.Action),
				Description:    "Happy path for: " + u.StoryText,
				Steps:          templateSteps(models.TypeHappyPath, u.Role, u.Action, page),
				Status:         models.ScenarioDraft,
				GeneratedByLLM: false,
			},
			models.Scenario{
				ProjectID:      p.ID,
				UserStoryID:    u.ID,
				Type:           variant,
				Title:          fmt.Sprintf("%s fails to %s (%s)", u.Role, u.Action, variant),
				Description:    fmt.Sprintf("%s variant for: %s", variant, u.StoryText),
				Steps:          templateSteps(variant, u.Role, u.Action, page),
				Status:         models.ScenarioDraft,
				GeneratedByLLM: false,
			},
		)
	}
	return out
}

func templateSteps(t models.ScenarioType, role, action, page string) []string {
	switch t {
	case models.TypeExceptionPath:
		return []string{
			fmt.Sprintf("Given a signed-in %s on the %s", role, page),
			"And the backend service is unavailable",
			fmt.Sprintf("When they attempt to %s", action),
			"Then an error message explains the failure",
			"And no partial changes are saved",
		}
	case models.TypeAlternatePath:
		return []string{
			fmt.Sprintf("Given a signed-in %s on the %s", role, page),
			fmt.Sprintf("When they %s using the alternate entry point", action),
			"Then the outcome matches the primary flow",
		}
	case models.TypeBoundaryCase:
		return []string{
			fmt.Sprintf("Given a signed-in %s on the %s", role, page),
			fmt.Sprintf("When they %s with input at the maximum allowed size", action),
			"Then the operation completes without truncation",
			"And input one past the limit is rejected with a clear message",
		}
	default:
		return []string{
			fmt.Sprintf("Given a signed-in %s on the %s", role, page),
			fmt.Sprintf("When they %s", action),
			"Then the expected result is shown",
		}
	}
}
