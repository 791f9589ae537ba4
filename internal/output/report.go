package output

import (
	"fmt"
	"strings"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
)

// ProjectMarkdown builds a markdown document for a project and its
// artifacts. The result feeds both the glamour renderer and the export
// archive, so it contains no terminal styling.
func ProjectMarkdown(p *models.Project, stories []models.UserStory, frames []models.Wireframe, scenarios []models.Scenario) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", p.Title)
	fmt.Fprintf(&sb, "- **Domain:** %s\n", p.Domain)
	if p.Objective != "" {
		fmt.Fprintf(&sb, "- **Objective:** %s\n", p.Objective)
	}
	if p.Scope != "" {
		fmt.Fprintf(&sb, "- **Scope:** %s\n", p.Scope)
	}
	sb.WriteString("\n")

	if len(stories) > 0 {
		sb.WriteString("## User Stories\n\n")
		for _, u := range stories {
			fmt.Fprintf(&sb, "### %s\n\n%s\n\n", u.ID, u.StoryText)
			fmt.Fprintf(&sb, "*%s, %d points, %s*\n\n", u.Priority, u.StoryPoints, u.Status)
			if len(u.AcceptanceCriteria) > 0 {
				for _, c := range u.AcceptanceCriteria {
					fmt.Fprintf(&sb, "- %s\n", c)
				}
				sb.WriteString("\n")
			}
		}
	}

	if len(frames) > 0 {
		sb.WriteString("## Wireframes\n\n")
		for _, wf := range frames {
			fmt.Fprintf(&sb, "- **%s** (%s)\n", wf.PageName, wf.ID)
		}
		sb.WriteString("\n")
	}

	if len(scenarios) > 0 {
		sb.WriteString("## Scenarios\n\n")
		for _, sc := range scenarios {
			fmt.Fprintf(&sb, "### %s (%s)\n\n", sc.Title, sc.Type)
			sb.WriteString("```gherkin\n")
			fmt.Fprintf(&sb, "Scenario: %s\n", sc.Title)
			for _, step := range sc.Steps {
				fmt.Fprintf(&sb, "  %s\n", step)
			}
			sb.WriteString("```\n\n")
		}
	}

	return sb.String()
}
