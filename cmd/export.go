package cmd

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export the current project as a zip archive",
	GroupID: "core",
	Long: `Writes a zip archive holding the project's artifacts as JSON plus a
rendered markdown document. The archive is self-contained: importing it
elsewhere needs nothing from this workspace.`,
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

		outPath, _ := cmd.Flags().GetString("out")
		if outPath == "" {
			outPath = id + ".zip"
		}

		stories := st.ListUserStories(id)
		frames := st.ListWireframes(id)
		scenarios := st.ListScenarios(id)

		f, err := os.Create(outPath)
		if err != nil {
			output.Error("create archive: %v", err)
			return err
		}
		defer f.Close()

		zw := zip.NewWriter(f)

		entries := []struct {
			name string
			data any
		}{
			{"project.json", p},
			{"user_stories.json", stories},
			{"wireframes.json", frames},
			{"scenarios.json", scenarios},
		}
		for _, e := range entries {
			w, err := zw.Create(e.name)
			if err != nil {
				zw.Close()
				return fmt.Errorf("add %s: %w", e.name, err)
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(e.data); err != nil {
				zw.Close()
				return fmt.Errorf("encode %s: %w", e.name, err)
			}
		}

		w, err := zw.Create("README.md")
		if err != nil {
			zw.Close()
			return fmt.Errorf("add README.md: %w", err)
		}
		if _, err := w.Write([]byte(output.ProjectMarkdown(p, stories, frames, scenarios))); err != nil {
			zw.Close()
			return fmt.Errorf("write README.md: %w", err)
		}

		if err := zw.Close(); err != nil {
			return fmt.Errorf("finalize archive: %w", err)
		}

		output.Success("Exported %s (%d stories, %d wireframes, %d scenarios) to %s",
			p.Title, len(stories), len(frames), len(scenarios), outPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("project", "", "project id (default: active project)")
	exportCmd.Flags().String("out", "", "output path (default: <project-id>.zip)")
	rootCmd.AddCommand(exportCmd)
}
