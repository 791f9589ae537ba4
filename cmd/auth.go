package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/authstate"
	"github.com/AgileSoftDev-2025/storycanvas/internal/gateway"
	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Manage backend authentication",
	GroupID: "sync",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with an API token",
	Long: `Stores an API token after verifying it against the backend. Tokens are
issued by the backend operator (sc-backend admin create-key).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		serverURL, _ := cmd.Flags().GetString("server")
		if serverURL == "" {
			serverURL = authstate.GetServerURL()
		}

		if token == "" {
			prompt := huh.NewInput().
				Title("API token").
				EchoMode(huh.EchoModePassword).
				Value(&token)
			if err := prompt.Run(); err != nil {
				return err
			}
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return fmt.Errorf("token required")
		}

		deviceID, err := authstate.GetDeviceID()
		if err != nil {
			return fmt.Errorf("get device id: %w", err)
		}

		client := gateway.New(serverURL, token, deviceID)
		me, err := client.Me(cmd.Context())
		if err != nil {
			output.Error("token rejected: %v", err)
			return err
		}

		creds := &authstate.Credentials{
			Token:     token,
			UserID:    me.UserID,
			Email:     me.Email,
			ServerURL: serverURL,
			DeviceID:  deviceID,
		}
		if err := authstate.SaveAuth(creds); err != nil {
			output.Error("save credentials: %v", err)
			return err
		}

		output.Success("Signed in as %s", me.Email)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authstate.ClearAuth(); err != nil {
			output.Error("logout: %v", err)
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication state",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authstate.LoadAuth()
		if err != nil {
			output.Error("load credentials: %v", err)
			return err
		}
		if creds == nil {
			fmt.Println("Signed out.")
			fmt.Printf("Server: %s\n", authstate.GetServerURL())
			return nil
		}

		fmt.Printf("Signed in as %s\n", creds.Email)
		fmt.Printf("Server: %s\n", authstate.GetServerURL())

		// Verify the token still works; a stale token is the most
		// common reason sync silently degrades to offline.
		client := newClient()
		if _, err := client.Me(cmd.Context()); err != nil {
			output.Warning("token no longer valid: %v", err)
		} else {
			output.Success("Token verified")
		}
		return nil
	},
}

func init() {
	authLoginCmd.Flags().String("token", "", "API token (prompted when omitted)")
	authLoginCmd.Flags().String("server", "", "backend URL (default: configured server)")

	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
