package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/authstate"
	"github.com/AgileSoftDev-2025/storycanvas/internal/config"
	"github.com/AgileSoftDev-2025/storycanvas/internal/gateway"
	"github.com/AgileSoftDev-2025/storycanvas/internal/generate"
	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
	scsync "github.com/AgileSoftDev-2025/storycanvas/internal/sync"
)

var (
	rootVersion  string
	baseDir      string
	workspaceSet bool
	verboseLogs  bool
)

// SetVersion sets the version string
func SetVersion(v string) {
	rootVersion = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "sc",
	Short: "Local-first requirements workspace",
	Long: `sc - StoryCanvas on the command line.

Projects, user stories, wireframes, and Gherkin scenarios live in a local
store that works fully offline; signing in layers remote sync and hosted
generation on top without ever blocking on the network.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// nameWithAliases returns "name, alias1, alias2" if aliases exist, else just "name"
func nameWithAliases(cmd *cobra.Command) string {
	if len(cmd.Aliases) > 0 {
		return cmd.Name() + ", " + strings.Join(cmd.Aliases, ", ")
	}
	return cmd.Name()
}

func init() {
	cobra.OnInitialize(initLogging, initBaseDir)

	rootCmd.PersistentFlags().BoolVar(&verboseLogs, "verbose", false, "enable debug logging")

	cobra.AddTemplateFunc("nameWithAliases", nameWithAliases)
	cobra.AddTemplateFunc("add", func(a, b int) int { return a + b })

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "artifacts", Title: "Artifact Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)

	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}

// initLogging keeps the CLI quiet unless asked: sync and generation
// internals log at debug, which only --verbose surfaces.
func initLogging() {
	level := slog.LevelWarn
	if verboseLogs {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func initBaseDir() {
	dir, found, err := config.FindBaseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	baseDir = dir
	workspaceSet = found
}

// getBaseDir returns the workspace directory for the current invocation.
func getBaseDir() string {
	return baseDir
}

// openStore opens the workspace store.
func openStore() (*store.Store, error) {
	if !workspaceSet {
		return nil, fmt.Errorf("no workspace found (run: sc init)")
	}
	return store.Open(getBaseDir())
}

// newClient builds a backend client from the saved credentials. The
// token is empty when signed out; the gateway then speaks only the
// anonymous endpoints.
func newClient() *gateway.Client {
	deviceID, err := authstate.GetDeviceID()
	if err != nil {
		deviceID = ""
	}
	return gateway.New(authstate.GetServerURL(), authstate.GetToken(), deviceID)
}

// newCoordinator wires the sync coordinator with forced sign-out on
// credential rejection.
func newCoordinator(st *store.Store) *scsync.Coordinator {
	return scsync.New(st, newClient(), authstate.SignOut)
}

// newGenerator wires the three-tier generator.
func newGenerator(st *store.Store) *generate.Generator {
	return generate.New(st, newClient(), authstate.SignOut)
}

// resolveProjectID picks the project a command operates on: explicit
// flag first, then the workspace's active project.
func resolveProjectID(flagValue string) (string, error) {
	if flagValue != "" {
		return store.NormalizeProjectID(flagValue), nil
	}
	active, err := config.GetActiveProject(getBaseDir())
	if err != nil {
		return "", err
	}
	if active == "" {
		return "", fmt.Errorf("no project selected (use --project or 'sc project use <id>')")
	}
	return active, nil
}

// entrySync runs the on-entry auto-sync for every collection of a
// project and prints one badge line. It never blocks a command on
// failure; offline is a normal outcome.
func entrySync(cmd *cobra.Command, st *store.Store, projectID string) {
	if !authstate.AutoSyncEnabled() || !authstate.IsAuthenticated() {
		return
	}
	coord := newCoordinator(st)
	worst := scsync.ModeSynced
	pulled := 0
	for _, col := range store.EntityCollections {
		out := coord.AutoSyncOnEntry(cmd.Context(), projectID, col)
		pulled += out.Pulled
		if rank(out.Mode) > rank(worst) {
			worst = out.Mode
		}
	}
	if pulled > 0 {
		output.Info("%s  pulled %d", output.SyncBadge(worst), pulled)
	} else if worst != scsync.ModeSynced {
		output.Info("%s", output.SyncBadge(worst))
	}
}

// rank orders modes from healthy to broken so the project badge shows
// the worst collection.
func rank(m scsync.Mode) int {
	switch m {
	case scsync.ModeSynced:
		return 0
	case scsync.ModeOffline:
		return 1
	case scsync.ModeNeedsSync:
		return 2
	case scsync.ModeError:
		return 3
	}
	return 3
}
