package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/AgileSoftDev-2025/storycanvas/internal/api"
	"github.com/AgileSoftDev-2025/storycanvas/internal/dateparse"
	"github.com/AgileSoftDev-2025/storycanvas/internal/serverdb"
)

func runAdmin(args []string) {
	if len(args) == 0 {
		printAdminUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "create-user":
		runAdminCreateUser(args[1:])
	case "create-key":
		runAdminCreateKey(args[1:])
	case "list-users":
		runAdminListUsers(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown admin command: %s\n", args[0])
		printAdminUsage()
		os.Exit(1)
	}
}

func printAdminUsage() {
	fmt.Fprintln(os.Stderr, `Usage: sc-backend admin <command> [flags]

Commands:
  create-user  Register a new account
  create-key   Create an API key for an account
  list-users   List registered accounts`)
}

func openDB(dbPath string) *serverdb.ServerDB {
	if dbPath == "" {
		cfg := api.LoadConfig()
		dbPath = cfg.ServerDBPath
	}
	store, err := serverdb.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open database: %v\n", err)
		os.Exit(1)
	}
	return store
}

func runAdminCreateUser(args []string) {
	fs := flag.NewFlagSet("admin create-user", flag.ExitOnError)
	email := fs.String("email", "", "account email address")
	dbPath := fs.String("db", "", "path to the backend database (default: from SC_BACKEND_DB_PATH)")
	fs.Parse(args)

	if *email == "" {
		fmt.Fprintln(os.Stderr, "error: --email is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openDB(*dbPath)
	defer store.Close()

	user, err := store.CreateUser(*email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created user %s (%s)\n", user.ID, user.Email)
}

func runAdminCreateKey(args []string) {
	fs := flag.NewFlagSet("admin create-key", flag.ExitOnError)
	email := fs.String("email", "", "account email address")
	name := fs.String("name", "cli", "key name")
	ttl := fs.Duration("ttl", 0, "key lifetime (0 = no expiry)")
	expires := fs.String("expires", "", `expiry date: "2027-01-01", "+90d", "+6m" (overrides --ttl)`)
	dbPath := fs.String("db", "", "path to the backend database (default: from SC_BACKEND_DB_PATH)")
	fs.Parse(args)

	if *email == "" {
		fmt.Fprintln(os.Stderr, "error: --email is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openDB(*dbPath)
	defer store.Close()

	user, err := store.GetUserByEmail(*email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if user == nil {
		fmt.Fprintf(os.Stderr, "error: no user with email %s\n", *email)
		os.Exit(1)
	}

	var expiresAt *time.Time
	if *expires != "" {
		t, err := dateparse.Parse(*expires)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: --expires: %v\n", err)
			os.Exit(1)
		}
		expiresAt = &t
	} else if *ttl > 0 {
		t := time.Now().UTC().Add(*ttl)
		expiresAt = &t
	}

	plaintext, ak, err := store.GenerateAPIKey(user.ID, *name, expiresAt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created key %s for %s\n", ak.ID, user.Email)
	fmt.Printf("token (shown once): %s\n", plaintext)
}

func runAdminListUsers(args []string) {
	fs := flag.NewFlagSet("admin list-users", flag.ExitOnError)
	dbPath := fs.String("db", "", "path to the backend database (default: from SC_BACKEND_DB_PATH)")
	fs.Parse(args)

	store := openDB(*dbPath)
	defer store.Close()

	users, err := store.ListUsers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for _, u := range users {
		fmt.Printf("%s  %s  %s\n", u.ID, u.Email, u.CreatedAt.Format(time.RFC3339))
	}
}
