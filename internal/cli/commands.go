package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/export"
	"finance-tracker/internal/storage"
)

func (app *App) newAddUserCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if password == "" {
				var err error
				password, err = readPassword(cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}

			email = strings.ToLower(strings.TrimSpace(email))
			if err := auth.ValidateCredentials(email, password); err != nil {
				return err
			}

			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			user, err := store.CreateUser(cmd.Context(), email, hash)
			if err != nil {
				if errors.Is(err, storage.ErrEmailTaken) {
					return fmt.Errorf("account %s already exists", email)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created account %s with ID %d\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address for the new account")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func (app *App) newBackupCmd() *cobra.Command {
	var dst string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a consistent snapshot of the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if dst == "" {
				dst = app.cfg.BackupPath
			}
			if err := store.Backup(cmd.Context(), dst); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", dst)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dst, "to", "t", "", "Backup file path (default: BACKUP_PATH)")
	return cmd
}

func (app *App) newRestoreCmd() *cobra.Command {
	var src string
	var force bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the database with a backup file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if src == "" {
				return fmt.Errorf("--from is required")
			}
			if !force {
				return fmt.Errorf("restore overwrites %s; re-run with --force while the server is stopped", app.dbPath)
			}

			if err := storage.Restore(src, app.dbPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", app.dbPath, src)
			return nil
		},
	}

	cmd.Flags().StringVarP(&src, "from", "f", "", "Backup file to restore")
	cmd.Flags().BoolVar(&force, "force", false, "Confirm overwriting the live database")
	return cmd
}

func (app *App) newExportCmd() *cobra.Command {
	var email, month, formatStr, dir string
	var toSheets bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a monthly statement to a file or Google Sheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--user is required")
			}
			format, err := export.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			if month == "" {
				month = time.Now().Format("2006-01")
			}

			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := app.resolveUser(cmd, store, email)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			engine := app.newEngine(store)
			monthly, err := engine.MonthlyReport(ctx, user.ID, month)
			if err != nil {
				return err
			}
			statuses, err := engine.BudgetStatus(ctx, user.ID, month)
			if err != nil {
				return err
			}
			txs, err := store.ListTransactionsForWindow(ctx, user.ID, month)
			if err != nil {
				return err
			}

			rep := export.BuildReport(monthly, statuses, txs, user.Email)

			if toSheets {
				sheets, err := export.NewSheetsClientFromEnv(ctx)
				if err != nil {
					return err
				}
				updated, err := sheets.PushReport(ctx, rep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report appended to spreadsheet range %s\n", updated)
				return nil
			}

			path, err := export.ToFile(rep, format, "report_"+month, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "user", "u", "", "Account email")
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default: current month)")
	cmd.Flags().StringVarP(&formatStr, "format", "f", "csv", "Output format: csv, json, pdf")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory for the report file")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "Append the report to the configured Google Sheet")
	return cmd
}

func (app *App) newStatusCmd() *cobra.Command {
	var email, month string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a month's summary and budget status for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--user is required")
			}
			if month == "" {
				month = time.Now().Format("2006-01")
			}

			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := app.resolveUser(cmd, store, email)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			engine := app.newEngine(store)
			sum, err := engine.Summary(ctx, user.ID, month)
			if err != nil {
				return err
			}
			statuses, err := engine.BudgetStatus(ctx, user.ID, month)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			bold := color.New(color.Bold).SprintFunc()
			green := color.New(color.FgGreen).SprintfFunc()
			red := color.New(color.FgRed).SprintfFunc()
			yellow := color.New(color.FgYellow).SprintfFunc()

			fmt.Fprintf(out, "%s  %s\n\n", bold(user.Email), month)
			fmt.Fprintf(out, "  Income:   %s\n", green("%.2f", sum.Income))
			fmt.Fprintf(out, "  Expenses: %s\n", red("%.2f", sum.Expense))
			savings := green("%.2f", sum.Savings)
			if sum.Savings < 0 {
				savings = red("%.2f", sum.Savings)
			}
			fmt.Fprintf(out, "  Savings:  %s\n", savings)

			if len(statuses) == 0 {
				fmt.Fprintf(out, "\nNo budgets set for %s\n", month)
				return nil
			}

			fmt.Fprintf(out, "\n%s\n", bold("Budgets"))
			for _, st := range statuses {
				line := fmt.Sprintf("  %-20s %8.2f / %8.2f (%.1f%%)", st.Category, st.Spent, st.Limit, st.Percentage)
				switch {
				case st.Exceeded:
					fmt.Fprintf(out, "%s  %s\n", red("%s", line), red("OVER by %.2f", -st.Remaining))
				case st.Percentage >= 80:
					fmt.Fprintln(out, yellow("%s", line))
				default:
					fmt.Fprintln(out, green("%s", line))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "user", "u", "", "Account email")
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default: current month)")
	return cmd
}

// rm-tx deletes across account boundaries; it is the escape hatch for
// cleaning up rows the owning user cannot see anymore.
func (app *App) newRemoveTransactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm-tx <id>",
		Short: "Delete a transaction by ID regardless of owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction ID %q", args[0])
			}

			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			tx, err := store.GetTransactionByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if tx == nil {
				return fmt.Errorf("no transaction with ID %d", id)
			}

			found, err := store.DeleteTransactionByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no transaction with ID %d", id)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s %.2f (%s) owned by user %d\n",
				tx.Date, tx.Category, tx.Amount, tx.Kind, tx.UserID)
			return nil
		},
	}
	return cmd
}
