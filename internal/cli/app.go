// Package cli implements the financectl administration tool. The web
// application has no admin surface, so user management, backups and
// exports all go through here.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"finance-tracker/internal/config"
	"finance-tracker/internal/core"
	"finance-tracker/internal/reports"
	"finance-tracker/internal/storage"
)

// App wires the subcommands to a shared configuration. The store is
// opened per command, not at startup: restore must run against a
// closed database file.
type App struct {
	rootCmd *cobra.Command
	cfg     *config.Config
	dbPath  string
}

func NewApp(version string) *App {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:           "financectl",
		Short:         "Administration tool for the finance tracker",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			app.cfg = config.Load()
			if app.dbPath == "" {
				app.dbPath = app.cfg.SQLiteDBPath
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.dbPath, "db", "", "Path to the SQLite database (default: SQLITE_DB_PATH)")

	rootCmd.AddCommand(
		app.newAddUserCmd(),
		app.newBackupCmd(),
		app.newRestoreCmd(),
		app.newExportCmd(),
		app.newStatusCmd(),
		app.newRemoveTransactionCmd(),
	)

	app.rootCmd = rootCmd
	return app
}

func (app *App) Execute() error {
	return app.rootCmd.Execute()
}

// SetArgs overrides os.Args for the next Execute call.
func (app *App) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// SetOutput redirects command output away from stdout.
func (app *App) SetOutput(w io.Writer) {
	app.rootCmd.SetOut(w)
	app.rootCmd.SetErr(w)
}

func (app *App) openStore() (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(app.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", app.dbPath, err)
	}
	return store, nil
}

// resolveUser looks up the account a command operates on.
func (app *App) resolveUser(cmd *cobra.Command, store *storage.SQLiteStore, email string) (*core.User, error) {
	user, err := store.GetUserByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("no account for %s", email)
	}
	return user, nil
}

func (app *App) newEngine(store *storage.SQLiteStore) *reports.Engine {
	return reports.NewEngine(store)
}

// readPassword prompts without echo when stdin is a terminal and falls
// back to a line read otherwise, so the command stays scriptable.
func readPassword(stdin io.Reader, stdout io.Writer) (string, error) {
	fmt.Fprint(stdout, "Password: ")
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stdout)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
