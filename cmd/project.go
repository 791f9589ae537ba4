package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/authstate"
	"github.com/AgileSoftDev-2025/storycanvas/internal/config"
	"github.com/AgileSoftDev-2025/storycanvas/internal/gateway"
	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
	"github.com/AgileSoftDev-2025/storycanvas/internal/suggest"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage projects",
	GroupID: "core",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		asJSON, _ := cmd.Flags().GetBool("json")
		projects := st.ListProjects()
		if asJSON {
			return output.JSON(projects)
		}

		active, _ := config.GetActiveProject(getBaseDir())
		if len(projects) == 0 {
			output.Info("No projects yet (run: sc project create)")
			return nil
		}
		for _, p := range projects {
			marker := "  "
			if p.ID == active {
				marker = "* "
			}
			fmt.Println(marker + output.FormatProjectShort(&p))
		}
		return nil
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		domain, _ := cmd.Flags().GetString("domain")
		objective, _ := cmd.Flags().GetString("objective")

		p := &models.Project{
			Title:     strings.Join(args, " "),
			Domain:    models.NormalizeDomain(domain),
			Objective: objective,
		}
		if err := st.CreateProject(p); err != nil {
			output.Error("create project: %v", err)
			return err
		}
		if err := config.SetActiveProject(getBaseDir(), p.ID); err != nil {
			output.Warning("could not set active project: %v", err)
		}
		output.Success("Created %s (%s)", p.Title, p.ID)
		return nil
	},
}

var projectUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Select the project subsequent commands operate on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		id := store.NormalizeProjectID(args[0])
		p, ok := st.GetProject(id)
		if !ok {
			output.Error("project not found: %s", id)
			var ids []string
			for _, known := range st.ListProjects() {
				ids = append(ids, known.ID)
			}
			if hints := suggest.Closest(id, ids); len(hints) > 0 {
				output.Info("did you mean: %s", strings.Join(hints, ", "))
			}
			return fmt.Errorf("project not found")
		}
		if err := config.SetActiveProject(getBaseDir(), id); err != nil {
			output.Error("set active project: %v", err)
			return err
		}

		entrySync(cmd, st, id)
		output.Success("Using %s (%s)", p.Title, p.ID)
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Render a project as a document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		return runShow(cmd, id)
	},
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename <title>",
	Short: "Rename the current project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		flagProject, _ := cmd.Flags().GetString("project")
		id, err := resolveProjectID(flagProject)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		p, ok := st.GetProject(id)
		if !ok {
			output.Error("project not found: %s", id)
			return fmt.Errorf("project not found")
		}

		p.Title = strings.Join(args, " ")
		if err := st.UpdateProject(p); err != nil {
			output.Error("rename project: %v", err)
			return err
		}

		// Best effort remote rename; local rename stands either way.
		if authstate.IsAuthenticated() {
			if err := newClient().RenameProject(cmd.Context(), id, p.Title); err != nil {
				output.Warning("remote rename failed: %v", err)
			}
		}

		output.Success("Renamed to %s", p.Title)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project and all its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		id := store.NormalizeProjectID(args[0])
		if _, ok := st.GetProject(id); !ok {
			output.Error("project not found: %s", id)
			return fmt.Errorf("project not found")
		}

		remote, _ := cmd.Flags().GetBool("remote")
		if remote {
			if err := newClient().DeleteProject(cmd.Context(), id); err != nil && !isNotFound(err) {
				output.Warning("remote delete failed: %v", err)
			}
		}

		st.DeleteProjectCascade(id)
		if active, _ := config.GetActiveProject(getBaseDir()); active == id {
			config.ClearActiveProject(getBaseDir())
		}
		output.Success("Deleted %s", id)
		return nil
	},
}

func isNotFound(err error) bool {
	return errors.Is(err, gateway.ErrNotFound)
}

func init() {
	projectListCmd.Flags().Bool("json", false, "output as JSON")
	projectCreateCmd.Flags().String("domain", "", "project domain (ecommerce, finance, healthcare, education)")
	projectCreateCmd.Flags().String("objective", "", "what the product should achieve")
	projectShowCmd.Flags().Bool("plain", false, "print raw markdown without styling")
	projectRenameCmd.Flags().String("project", "", "project id (default: active project)")
	projectDeleteCmd.Flags().Bool("remote", false, "also delete the remote copy")

	projectCmd.AddCommand(projectListCmd, projectCreateCmd, projectUseCmd, projectShowCmd, projectRenameCmd, projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}
