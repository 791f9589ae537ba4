package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/generate"
	"github.com/AgileSoftDev-2025/storycanvas/internal/input"
	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
)

var storiesCmd = &cobra.Command{
	Use:     "stories",
	Aliases: []string{"story"},
	Short:   "Manage user stories",
	GroupID: "artifacts",
}

var storiesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate user stories for the current project",
	Long: `Generates user stories through the best available tier: the backend's
hosted generation when signed in, the anonymous generation endpoint
otherwise, and the built-in domain templates when the network is out of
reach. Existing stories are never overwritten.`,
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

		res, err := newGenerator(st).UserStories(cmd.Context(), id)
		if err != nil {
			if errors.Is(err, generate.ErrProjectNotFound) {
				output.Error("project not found: %s", id)
			} else {
				output.Error("generate stories: %v", err)
			}
			return err
		}

		output.Success("Generated %d stories (%s)", res.Count, res.Source)
		if res.Skipped > 0 {
			output.Info("Skipped %d already present", res.Skipped)
		}
		return nil
	},
}

var storiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the current project's stories",
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
		stories := st.ListUserStories(id)
		if asJSON {
			return output.JSON(stories)
		}
		if len(stories) == 0 {
			output.Info("No stories yet (run: sc stories generate)")
			return nil
		}
		for _, u := range stories {
			fmt.Println(output.FormatStoryShort(&u))
		}
		return nil
	},
}

var storiesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one story with its scenarios",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		u, ok := st.GetUserStory(args[0])
		if !ok {
			output.Error("story not found: %s", args[0])
			return fmt.Errorf("story not found")
		}

		var linked []models.Scenario
		for _, sc := range st.ListScenarios(u.ProjectID) {
			if sc.UserStoryID == u.ID {
				linked = append(linked, sc)
			}
		}

		fmt.Print(output.FormatStoryLong(u, linked))
		return nil
	},
}

var storiesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a story's fields",
	Long:  `Updates the given fields and recomposes the story text from role, action, and benefit.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		u, ok := st.GetUserStory(args[0])
		if !ok {
			output.Error("story not found: %s", args[0])
			return fmt.Errorf("story not found")
		}

		if v, _ := cmd.Flags().GetString("role"); v != "" {
			u.Role = v
		}
		if v, _ := cmd.Flags().GetString("action"); v != "" {
			u.Action = v
		}
		if v, _ := cmd.Flags().GetString("benefit"); v != "" {
			u.Benefit = v
		}
		if v, _ := cmd.Flags().GetString("priority"); v != "" {
			u.Priority = models.Priority(v)
		}
		if v, _ := cmd.Flags().GetInt("points"); cmd.Flags().Changed("points") {
			u.StoryPoints = v
		}
		if criteria, _ := cmd.Flags().GetStringArray("criteria"); len(criteria) > 0 {
			expanded, _ := input.ExpandFlagValues(criteria, false)
			u.AcceptanceCriteria = expanded
		}
		u.Recompose()
		u.Iteration++

		if err := st.UpdateUserStory(u); err != nil {
			output.Error("update story: %v", err)
			return err
		}
		output.Success("Updated %s", u.ID)
		fmt.Println(output.FormatStoryShort(u))
		return nil
	},
}

var storiesApproveCmd = &cobra.Command{
	Use:   "approve <id>...",
	Short: "Mark stories as approved",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		for _, id := range args {
			u, ok := st.GetUserStory(id)
			if !ok {
				output.Warning("story not found: %s", id)
				continue
			}
			u.Status = models.StoryApproved
			if err := st.UpdateUserStory(u); err != nil {
				output.Error("approve %s: %v", id, err)
				return err
			}
			output.Success("Approved %s", id)
		}
		return nil
	},
}

var storiesDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete stories from the local store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		for _, id := range args {
			if st.DeleteUserStory(id) {
				output.Success("Deleted %s", id)
			} else {
				output.Warning("story not found: %s", id)
			}
		}
		return nil
	},
}

func init() {
	storiesGenerateCmd.Flags().String("project", "", "project id (default: active project)")
	storiesListCmd.Flags().String("project", "", "project id (default: active project)")
	storiesListCmd.Flags().Bool("json", false, "output as JSON")
	storiesEditCmd.Flags().String("role", "", "who the story is for")
	storiesEditCmd.Flags().String("action", "", "what they want to do")
	storiesEditCmd.Flags().String("benefit", "", "why they want it")
	storiesEditCmd.Flags().String("priority", "", "low, medium, high, or critical")
	storiesEditCmd.Flags().Int("points", 0, "story points")
	storiesEditCmd.Flags().StringArray("criteria", nil, "replace acceptance criteria (repeatable; @file or - for stdin)")

	storiesCmd.AddCommand(storiesGenerateCmd, storiesListCmd, storiesShowCmd, storiesEditCmd, storiesApproveCmd, storiesDeleteCmd)
	rootCmd.AddCommand(storiesCmd)
}
