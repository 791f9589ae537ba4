package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/generate"
	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
)

var scenariosCmd = &cobra.Command{
	Use:     "scenarios",
	Aliases: []string{"scenario"},
	Short:   "Manage Gherkin scenarios",
	GroupID: "artifacts",
}

var scenariosGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate scenarios for the current project",
	Long: `Generates scenarios through the best available tier, grounded on the
project's user stories when any exist. Stories the project already has
keep their scenarios; nothing is overwritten.`,
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

		res, err := newGenerator(st).Scenarios(cmd.Context(), id)
		if err != nil {
			if errors.Is(err, generate.ErrProjectNotFound) {
				output.Error("project not found: %s", id)
			} else {
				output.Error("generate scenarios: %v", err)
			}
			return err
		}

		output.Success("Generated %d scenarios (%s)", res.Count, res.Source)
		if res.Skipped > 0 {
			output.Info("Skipped %d already present", res.Skipped)
		}
		return nil
	},
}

var scenariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the current project's scenarios",
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
		orphansOnly, _ := cmd.Flags().GetBool("orphans")

		scenarios := st.ListScenarios(id)
		if orphansOnly {
			var filtered []models.Scenario
			for _, sc := range scenarios {
				if sc.Orphaned() {
					filtered = append(filtered, sc)
				}
			}
			scenarios = filtered
		}

		if asJSON {
			return output.JSON(scenarios)
		}
		if len(scenarios) == 0 {
			output.Info("No scenarios yet (run: sc scenarios generate)")
			return nil
		}
		for _, sc := range scenarios {
			fmt.Println(output.FormatScenarioShort(&sc))
		}
		return nil
	},
}

var scenariosShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one scenario as Gherkin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		sc, ok := st.GetScenario(args[0])
		if !ok {
			output.Error("scenario not found: %s", args[0])
			return fmt.Errorf("scenario not found")
		}

		fmt.Print(output.FormatScenarioGherkin(sc))
		if !sc.ValidateSteps() {
			output.Warning("steps are not valid Gherkin")
		}
		return nil
	},
}

func setScenarioStatus(args []string, status models.ScenarioStatus) error {
	st, err := openStore()
	if err != nil {
		output.Error("%v", err)
		return err
	}
	defer st.Close()

	for _, id := range args {
		sc, ok := st.GetScenario(id)
		if !ok {
			output.Warning("scenario not found: %s", id)
			continue
		}
		sc.Status = status
		if err := st.UpdateScenario(sc); err != nil {
			output.Error("update %s: %v", id, err)
			return err
		}
		output.Success("%s %s", strTitle(string(status)), id)
	}
	return nil
}

// strTitle capitalizes the first letter for status messages.
func strTitle(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

var scenariosAcceptCmd = &cobra.Command{
	Use:   "accept <id>...",
	Short: "Mark scenarios as accepted",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setScenarioStatus(args, models.ScenarioAccepted)
	},
}

var scenariosRejectCmd = &cobra.Command{
	Use:   "reject <id>...",
	Short: "Mark scenarios as rejected",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setScenarioStatus(args, models.ScenarioRejected)
	},
}

var scenariosDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete scenarios from the local store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		for _, id := range args {
			if st.DeleteScenario(id) {
				output.Success("Deleted %s", id)
			} else {
				output.Warning("scenario not found: %s", id)
			}
		}
		return nil
	},
}

func init() {
	scenariosGenerateCmd.Flags().String("project", "", "project id (default: active project)")
	scenariosListCmd.Flags().String("project", "", "project id (default: active project)")
	scenariosListCmd.Flags().Bool("json", false, "output as JSON")
	scenariosListCmd.Flags().Bool("orphans", false, "only project-level scenarios without a story")

	scenariosCmd.AddCommand(scenariosGenerateCmd, scenariosListCmd, scenariosShowCmd, scenariosAcceptCmd, scenariosRejectCmd, scenariosDeleteCmd)
	rootCmd.AddCommand(scenariosCmd)
}
