package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
)

var showCmd = &cobra.Command{
	Use:     "show",
	Short:   "Render the current project as a document",
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagProject, _ := cmd.Flags().GetString("project")
		return runShow(cmd, flagProject)
	},
}

// runShow renders one project's full document. explicitID may be empty,
// in which case the active project is used.
func runShow(cmd *cobra.Command, explicitID string) error {
	st, err := openStore()
	if err != nil {
		output.Error("%v", err)
		return err
	}
	defer st.Close()

	id, err := resolveProjectID(explicitID)
	if err != nil {
		output.Error("%v", err)
		return err
	}

	p, ok := st.GetProject(id)
	if !ok {
		output.Error("project not found: %s", id)
		return fmt.Errorf("project not found")
	}

	entrySync(cmd, st, id)

	md := output.ProjectMarkdown(p, st.ListUserStories(id), st.ListWireframes(id), st.ListScenarios(id))

	plain, _ := cmd.Flags().GetBool("plain")
	if plain {
		fmt.Print(md)
		return nil
	}

	rendered, err := output.RenderMarkdown(md)
	if err != nil {
		// Styling is cosmetic; fall back to the raw document.
		fmt.Print(md)
		return nil
	}
	fmt.Println(rendered)
	return nil
}

func init() {
	showCmd.Flags().String("project", "", "project id (default: active project)")
	showCmd.Flags().Bool("plain", false, "print raw markdown without styling")
	rootCmd.AddCommand(showCmd)
}
