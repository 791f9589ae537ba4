package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/config"
	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Initialize a StoryCanvas workspace",
	Long:    `Creates the local .storycanvas directory and store, and optionally the first project.`,
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := getBaseDir()
		noInput, _ := cmd.Flags().GetBool("no-input")

		if _, err := os.Stat(filepath.Join(dir, ".storycanvas")); err == nil {
			output.Warning(".storycanvas/ already exists")
			return nil
		}

		st, err := store.Initialize(dir)
		if err != nil {
			output.Error("failed to initialize store: %v", err)
			return err
		}
		defer st.Close()

		fmt.Println("INITIALIZED .storycanvas/")

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			addToGitignore(filepath.Join(dir, ".gitignore"))
		}

		if noInput {
			return nil
		}

		p, err := promptFirstProject()
		if err != nil || p == nil {
			// Declining the form is fine; the workspace still works.
			return nil
		}
		if err := st.CreateProject(p); err != nil {
			output.Error("failed to create project: %v", err)
			return err
		}
		if err := config.SetActiveProject(dir, p.ID); err != nil {
			output.Warning("could not set active project: %v", err)
		}

		output.Success("Created project %s (%s)", p.Title, p.ID)
		output.Info("Next: sc stories generate")
		return nil
	},
}

// promptFirstProject walks the onboarding form. Returns nil when the
// user aborts.
func promptFirstProject() (*models.Project, error) {
	var title, domain, objective string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project title").
				Value(&title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Domain").
				Options(
					huh.NewOption("E-commerce", string(models.DomainEcommerce)),
					huh.NewOption("Finance", string(models.DomainFinance)),
					huh.NewOption("Healthcare", string(models.DomainHealthcare)),
					huh.NewOption("Education", string(models.DomainEducation)),
					huh.NewOption("Other", string(models.DomainGeneric)),
				).
				Value(&domain),
			huh.NewText().
				Title("Objective").
				Placeholder("What should this product achieve?").
				Value(&objective),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	return &models.Project{
		Title:     strings.TrimSpace(title),
		Domain:    models.NormalizeDomain(domain),
		Objective: strings.TrimSpace(objective),
	}, nil
}

func addToGitignore(path string) {
	content, _ := os.ReadFile(path)
	contentStr := string(content)

	if strings.Contains(contentStr, ".storycanvas/") {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	if len(contentStr) > 0 && !strings.HasSuffix(contentStr, "\n") {
		f.WriteString("\n")
	}

	f.WriteString(".storycanvas/\n")
	fmt.Println("Added .storycanvas/ to .gitignore")
}

func init() {
	initCmd.Flags().Bool("no-input", false, "skip the onboarding form")
	rootCmd.AddCommand(initCmd)
}
