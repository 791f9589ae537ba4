package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/authstate"
	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
	scsync "github.com/AgileSoftDev-2025/storycanvas/internal/sync"
)

// collectionLabels maps store collections onto display names.
var collectionLabels = map[store.Collection]string{
	store.UserStories: "stories",
	store.Wireframes:  "wireframes",
	store.Scenarios:   "scenarios",
}

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Sync the current project with the backend",
	GroupID: "sync",
	Long: `Reconciles the project's local artifacts with the remote copy.

The default run pulls remote-only entities, then pushes local-only ones.
Entities present on both sides are conflicts: they are counted, left
untouched, and resolved only by an explicit --pull (remote wins).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pushOnly, _ := cmd.Flags().GetBool("push")
		pullOnly, _ := cmd.Flags().GetBool("pull")
		statusOnly, _ := cmd.Flags().GetBool("status")
		watch, _ := cmd.Flags().GetBool("watch")

		if !authstate.IsAuthenticated() {
			output.Error("not signed in (run: sc auth login)")
			return fmt.Errorf("not authenticated")
		}

		st, err := openStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		flagProject, _ := cmd.Flags().GetString("project")
		projectID, err := resolveProjectID(flagProject)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if _, ok := st.GetProject(projectID); !ok {
			output.Error("project not found: %s", projectID)
			return fmt.Errorf("project not found")
		}

		coord := newCoordinator(st)

		if statusOnly {
			return runSyncStatus(cmd, st, projectID)
		}
		if watch {
			return runSyncWatch(cmd, coord, projectID)
		}

		if err := coord.EnsureRemoteProject(cmd.Context(), projectID); err != nil {
			output.Error("upload project: %v", err)
			return err
		}

		for _, col := range store.EntityCollections {
			label := collectionLabels[col]
			switch {
			case pushOnly:
				res := coord.PushLocalToRemote(cmd.Context(), projectID, col)
				output.Info("%-11s pushed %d, skipped %d, failed %d", label, res.SyncedCount, res.Skipped, res.Failed)
			case pullOnly:
				res := coord.PullRemoteToLocal(cmd.Context(), projectID, col)
				output.Info("%-11s pulled %d, overwritten %d", label, res.Pulled, res.Overwritten)
			default:
				res, err := coord.TwoWaySync(cmd.Context(), projectID, col)
				if err != nil {
					if errors.Is(err, scsync.ErrSyncInFlight) {
						output.Warning("%s: sync already running", label)
						continue
					}
					output.Error("%s: %v", label, err)
					return err
				}
				line := fmt.Sprintf("%-11s pulled %d, pushed %d", label, res.Pulled, res.Pushed)
				if res.Conflicts > 0 {
					line += fmt.Sprintf(", %d conflicts (resolve with --pull)", res.Conflicts)
				}
				if res.Failed > 0 {
					line += fmt.Sprintf(", %d failed", res.Failed)
				}
				output.Info("%s", line)
			}
		}
		return nil
	},
}

// runSyncStatus reports per-collection counts without mutating either
// side.
func runSyncStatus(cmd *cobra.Command, st *store.Store, projectID string) error {
	client := newClient()
	ctx := cmd.Context()

	type counts struct {
		label  string
		local  map[string]bool
		remote map[string]bool
	}

	local := func(ids []string) map[string]bool {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		return set
	}

	var rows []counts

	storyIDs := map[string]bool{}
	for _, u := range st.ListUserStories(projectID) {
		storyIDs[u.ID] = true
	}
	remoteStories, err := client.ListUserStories(ctx, projectID)
	if err != nil {
		output.Error("fetch remote state: %v", err)
		return err
	}
	remoteStoryIDs := []string{}
	for _, u := range remoteStories {
		remoteStoryIDs = append(remoteStoryIDs, u.ID)
	}
	rows = append(rows, counts{"stories", storyIDs, local(remoteStoryIDs)})

	frameIDs := map[string]bool{}
	for _, wf := range st.ListWireframes(projectID) {
		frameIDs[wf.ID] = true
	}
	remoteFrames, err := client.ListWireframes(ctx, projectID)
	if err != nil {
		output.Error("fetch remote state: %v", err)
		return err
	}
	remoteFrameIDs := []string{}
	for _, wf := range remoteFrames {
		remoteFrameIDs = append(remoteFrameIDs, wf.ID)
	}
	rows = append(rows, counts{"wireframes", frameIDs, local(remoteFrameIDs)})

	scenarioIDs := map[string]bool{}
	for _, sc := range st.ListScenarios(projectID) {
		scenarioIDs[sc.ID] = true
	}
	remoteScenarios, err := client.ListScenarios(ctx, projectID)
	if err != nil {
		output.Error("fetch remote state: %v", err)
		return err
	}
	remoteScenarioIDs := []string{}
	for _, sc := range remoteScenarios {
		remoteScenarioIDs = append(remoteScenarioIDs, sc.ID)
	}
	rows = append(rows, counts{"scenarios", scenarioIDs, local(remoteScenarioIDs)})

	for _, row := range rows {
		shared := 0
		for id := range row.local {
			if row.remote[id] {
				shared++
			}
		}
		toPush := len(row.local) - shared
		toPull := len(row.remote) - shared

		mode := scsync.ModeSynced
		if toPush > 0 || toPull > 0 {
			mode = scsync.ModeNeedsSync
		}
		output.Info("%-11s %s  local %d, remote %d, to push %d, to pull %d",
			row.label, output.SyncBadge(mode), len(row.local), len(row.remote), toPush, toPull)
	}
	return nil
}

func init() {
	syncCmd.Flags().String("project", "", "project id (default: active project)")
	syncCmd.Flags().Bool("push", false, "only push local entities the backend lacks")
	syncCmd.Flags().Bool("pull", false, "only pull, overwriting local copies of shared ids")
	syncCmd.Flags().Bool("status", false, "report counts without syncing")
	syncCmd.Flags().Bool("watch", false, "run the sync behind a live progress view")
	rootCmd.AddCommand(syncCmd)
}
