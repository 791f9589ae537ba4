// Package output provides styled terminal output helpers (success, error,
// warning, artifact formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/sync"
)

var (
	// Styles
	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	priorityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	storyStatusStyles = map[models.StoryStatus]lipgloss.Style{
		models.StoryDraft:       lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		models.StoryReviewed:    lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		models.StoryApproved:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.StoryImplemented: lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
	scenarioStatusStyles = map[models.ScenarioStatus]lipgloss.Style{
		models.ScenarioDraft:    lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		models.ScenarioAccepted: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.ScenarioRejected: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
	modeStyles = map[sync.Mode]lipgloss.Style{
		sync.ModeOffline:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		sync.ModeSynced:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		sync.ModeNeedsSync: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		sync.ModeError:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// FormatStoryStatus formats a story status with color
func FormatStoryStatus(s models.StoryStatus) string {
	style, ok := storyStatusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

// FormatScenarioStatus formats a scenario status with color
func FormatScenarioStatus(s models.ScenarioStatus) string {
	style, ok := scenarioStatusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

// FormatPriority formats a priority
func FormatPriority(p models.Priority) string {
	return priorityStyle.Render(fmt.Sprintf("[%s]", p))
}

// FormatPoints returns empty string if points is 0, otherwise "Npts"
func FormatPoints(points int) string {
	if points == 0 {
		return ""
	}
	return fmt.Sprintf("%dpts", points)
}

// FormatStoryShort formats a user story on one line.
func FormatStoryShort(u *models.UserStory) string {
	var parts []string
	parts = append(parts, titleStyle.Render(u.ID))
	parts = append(parts, FormatPriority(u.Priority))
	parts = append(parts, u.StoryText)

	if u.StoryPoints > 0 {
		parts = append(parts, subtleStyle.Render(fmt.Sprintf("%dpts", u.StoryPoints)))
	}
	if u.GeneratedByLLM {
		parts = append(parts, subtleStyle.Render("(generated)"))
	}
	parts = append(parts, FormatStoryStatus(u.Status))

	return strings.Join(parts, "  ")
}

// FormatStoryLong formats a user story with its acceptance criteria and
// linked scenarios.
func FormatStoryLong(u *models.UserStory, scenarios []models.Scenario) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s: %s", u.ID, u.StoryText)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Status: %s\n", FormatStoryStatus(u.Status)))
	sb.WriteString(fmt.Sprintf("Feature: %s | Priority: %s", u.Feature, u.Priority))
	if u.StoryPoints > 0 {
		sb.WriteString(fmt.Sprintf(" | Points: %d", u.StoryPoints))
	}
	if u.GeneratedByLLM {
		sb.WriteString(" | Generated")
	}
	sb.WriteString("\n")

	if len(u.AcceptanceCriteria) > 0 {
		sb.WriteString("\n")
		sb.WriteString(subtleStyle.Render("Acceptance Criteria:"))
		sb.WriteString("\n")
		for _, c := range u.AcceptanceCriteria {
			sb.WriteString(fmt.Sprintf("  - %s\n", c))
		}
	}

	if len(scenarios) > 0 {
		sb.WriteString("\nSCENARIOS:\n")
		for _, sc := range scenarios {
			sb.WriteString(fmt.Sprintf("  %s  [%s]  %s %s\n", sc.ID, sc.Type, sc.Title, FormatScenarioStatus(sc.Status)))
		}
	}

	return sb.String()
}

// FormatScenarioShort formats a scenario on one line.
func FormatScenarioShort(sc *models.Scenario) string {
	var parts []string
	parts = append(parts, titleStyle.Render(sc.ID))
	parts = append(parts, subtleStyle.Render(fmt.Sprintf("[%s]", sc.Type)))
	parts = append(parts, sc.Title)
	if sc.Orphaned() {
		parts = append(parts, subtleStyle.Render("(project-level)"))
	}
	if !sc.StructurallyValid {
		parts = append(parts, errorStyle.Render("(invalid steps)"))
	}
	parts = append(parts, FormatScenarioStatus(sc.Status))

	return strings.Join(parts, "  ")
}

// FormatScenarioGherkin renders a scenario as a Gherkin block.
func FormatScenarioGherkin(sc *models.Scenario) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Scenario: " + sc.Title))
	sb.WriteString("\n")
	if sc.Description != "" {
		sb.WriteString(subtleStyle.Render("  # " + sc.Description))
		sb.WriteString("\n")
	}
	for _, step := range sc.Steps {
		sb.WriteString("  ")
		sb.WriteString(step)
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatProjectShort formats a project on one line.
func FormatProjectShort(p *models.Project) string {
	var parts []string
	parts = append(parts, titleStyle.Render(p.ID))
	parts = append(parts, p.Title)
	parts = append(parts, subtleStyle.Render(string(p.Domain)))
	return strings.Join(parts, "  ")
}

// SyncBadge returns a sync mode indicator with symbol
// e.g., "○ offline", "✓ synced", "↑ needs_sync", "✗ error"
func SyncBadge(mode sync.Mode) string {
	symbols := map[sync.Mode]string{
		sync.ModeOffline:   "○",
		sync.ModeSynced:    "✓",
		sync.ModeNeedsSync: "↑",
		sync.ModeError:     "✗",
	}
	symbol, ok := symbols[mode]
	if !ok {
		symbol = "?"
	}
	style, hasStyle := modeStyles[mode]
	if hasStyle {
		return style.Render(fmt.Sprintf("%s %s", symbol, mode))
	}
	return fmt.Sprintf("%s %s", symbol, mode)
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nUSER STORIES:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// BulletList formats items as a bulleted list with optional indentation
func BulletList(items []string, indent int) []string {
	prefix := strings.Repeat(" ", indent)
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = prefix + "- " + item
	}
	return result
}
