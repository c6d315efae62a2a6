package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-tracker/internal/core"
	"finance-tracker/internal/storage"
)

func runCommand(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	app := NewApp("test")
	var buf bytes.Buffer
	app.SetOutput(&buf)
	app.SetArgs(append(args, "--db", dbPath))
	err := app.Execute()
	return buf.String(), err
}

func seedUser(t *testing.T, dbPath, email string) int64 {
	t.Helper()
	store, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	user, err := store.CreateUser(t.Context(), email, "not-a-real-hash")
	require.NoError(t, err)
	return user.ID
}

func TestAddUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	out, err := runCommand(t, dbPath, "add-user", "-e", "Anna@Example.com", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Created account anna@example.com")

	_, err = runCommand(t, dbPath, "add-user", "-e", "anna@example.com", "-p", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCommand(t, dbPath, "add-user", "-e", "not-an-email", "-p", "secret")
	require.Error(t, err)

	_, err = runCommand(t, dbPath, "add-user", "-e", "bo@example.com", "-p", "abc")
	require.Error(t, err, "short passwords are rejected")
}

func TestBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "live.db")
	backupPath := filepath.Join(dir, "snapshot.db")

	seedUser(t, dbPath, "keep@example.com")

	out, err := runCommand(t, dbPath, "backup", "--to", backupPath)
	require.NoError(t, err)
	assert.Contains(t, out, backupPath)
	_, err = os.Stat(backupPath)
	require.NoError(t, err)

	// Restore into a fresh path and verify the account survived.
	restoredPath := filepath.Join(dir, "restored.db")
	_, err = runCommand(t, restoredPath, "restore", "--from", backupPath)
	require.Error(t, err, "restore without --force must refuse")

	_, err = runCommand(t, restoredPath, "restore", "--from", backupPath, "--force")
	require.NoError(t, err)

	store, err := storage.NewSQLiteStore(restoredPath)
	require.NoError(t, err)
	defer store.Close()
	user, err := store.GetUserByEmail(t.Context(), "keep@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
}

func TestRemoveTransaction(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	userID := seedUser(t, dbPath, "owner@example.com")

	store, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	txID, err := store.AddTransaction(t.Context(), userID, core.Expense, "Groceries", 55.20, "2025-03-10", "weekly shop")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, err := runCommand(t, dbPath, "rm-tx", strconv.FormatInt(txID, 10))
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")

	_, err = runCommand(t, dbPath, "rm-tx", strconv.FormatInt(txID, 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transaction")

	_, err = runCommand(t, dbPath, "rm-tx", "not-a-number")
	require.Error(t, err)
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cli.db")
	userID := seedUser(t, dbPath, "export@example.com")

	store, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	_, err = store.AddTransaction(t.Context(), userID, core.Income, "Salary", 2500, "2025-03-01", "")
	require.NoError(t, err)
	_, err = store.AddTransaction(t.Context(), userID, core.Expense, "Rent", 900, "2025-03-02", "")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	outDir := filepath.Join(dir, "reports")
	out, err := runCommand(t, dbPath,
		"export", "-u", "export@example.com", "-m", "2025-03", "-f", "csv", "-d", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(outDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Rent")
	assert.Contains(t, string(data), "Salary")
}

func TestStatusUnknownUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	seedUser(t, dbPath, "real@example.com")

	_, err := runCommand(t, dbPath, "status", "-u", "ghost@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no account")
}
