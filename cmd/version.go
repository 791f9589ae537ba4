package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
	"github.com/AgileSoftDev-2025/storycanvas/internal/version"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print version and check for updates",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("sc %s\n", rootVersion)

		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return nil
		}
		if version.IsDevelopmentVersion(rootVersion) {
			output.Info("development build, skipping update check")
			return nil
		}

		result := version.CachedCheck(rootVersion)
		if result.Error != nil {
			output.Warning("update check failed: %v", result.Error)
			return nil
		}
		if !result.HasUpdate {
			output.Success("up to date")
			return nil
		}
		output.Info("new version available: %s", result.LatestVersion)
		if cmdline := version.UpdateCommand(result.LatestVersion); cmdline != "" {
			fmt.Printf("  %s\n", cmdline)
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
