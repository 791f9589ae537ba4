package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/input"
	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
)

var wireframesCmd = &cobra.Command{
	Use:     "wireframes",
	Aliases: []string{"wireframe", "wf"},
	Short:   "Manage wireframes",
	GroupID: "artifacts",
}

var wireframesAddCmd = &cobra.Command{
	Use:   "add <page-name>",
	Short: "Add a wireframe page",
	Args:  cobra.ExactArgs(1),
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
		if _, ok := st.GetProject(id); !ok {
			output.Error("project not found: %s", id)
			return fmt.Errorf("project not found")
		}

		pageType, _ := cmd.Flags().GetString("type")
		content, _ := cmd.Flags().GetString("content")

		wf := &models.Wireframe{
			ProjectID: id,
			PageName:  args[0],
			PageType:  pageType,
		}
		if content != "" {
			body, err := input.ExpandContent(content)
			if err != nil {
				output.Error("read content: %v", err)
				return err
			}
			wf.Content = body
		}

		if err := st.CreateWireframe(wf); err != nil {
			output.Error("create wireframe: %v", err)
			return err
		}
		output.Success("Added wireframe %s (%s)", wf.PageName, wf.ID)
		return nil
	},
}

var wireframesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the current project's wireframes",
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

		entrySync(cmd, st, id)

		asJSON, _ := cmd.Flags().GetBool("json")
		frames := st.ListWireframes(id)
		if asJSON {
			return output.JSON(frames)
		}
		if len(frames) == 0 {
			output.Info("No wireframes yet")
			return nil
		}
		for _, wf := range frames {
			line := fmt.Sprintf("%s  %s", wf.ID, wf.PageName)
			if wf.PageType != "" {
				line += fmt.Sprintf("  (%s)", wf.PageType)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var wireframesDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete wireframes from the local store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		for _, id := range args {
			if st.DeleteWireframe(id) {
				output.Success("Deleted %s", id)
			} else {
				output.Warning("wireframe not found: %s", id)
			}
		}
		return nil
	},
}

func init() {
	wireframesAddCmd.Flags().String("project", "", "project id (default: active project)")
	wireframesAddCmd.Flags().String("type", "", "page type (landing, form, detail, ...)")
	wireframesAddCmd.Flags().String("content", "", "wireframe body: text, @file, or - for stdin")
	wireframesListCmd.Flags().String("project", "", "project id (default: active project)")
	wireframesListCmd.Flags().Bool("json", false, "output as JSON")

	wireframesCmd.AddCommand(wireframesAddCmd, wireframesListCmd, wireframesDeleteCmd)
	rootCmd.AddCommand(wireframesCmd)
}
