package http

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/reports"
	"finance-tracker/internal/services"
	"finance-tracker/internal/storage"
)

type testEnv struct {
	server *Server
	ts     *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine := reports.NewEngine(store)
	ledger := services.NewLedgerService(store, engine, nil, nil)

	srv := NewServer(Options{
		Addr:       ":0",
		Store:      store,
		Ledger:     ledger,
		Engine:     engine,
		Auth:       auth.NewService(store),
		SessionTTL: time.Hour,
		BackupPath: t.TempDir() + "/backup.db",
	})
	t.Cleanup(func() { _ = srv.Shutdown(t.Context()) })

	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		server: srv,
		ts:     ts,
		client: &http.Client{Jar: jar},
	}
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.ts.URL+path, form)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.client.Get(e.ts.URL + path)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) registerUser(t *testing.T, email, password string) {
	t.Helper()
	resp := e.postForm(t, "/register", url.Values{
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return sb.String()
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.get(t, "/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/")
	body := readBody(t, resp)

	// The client follows the redirect, so we end up on the login page.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Log in")
}

func TestRegisterLogsIn(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "new@example.com", "s3cret")

	resp := env.get(t, "/")
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "new@example.com")
	assert.Contains(t, body, "Dashboard")
}

func TestRegisterRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postForm(t, "/register", url.Values{
		"email":            {"not-an-email"},
		"password":         {"s3cret"},
		"confirm_password": {"s3cret"},
	})
	body := readBody(t, resp)
	assert.Contains(t, body, "invalid email")

	resp = env.postForm(t, "/register", url.Values{
		"email":            {"ok@example.com"},
		"password":         {"abc"},
		"confirm_password": {"abc"},
	})
	body = readBody(t, resp)
	assert.Contains(t, body, "at least 4 characters")

	resp = env.postForm(t, "/register", url.Values{
		"email":            {"ok@example.com"},
		"password":         {"s3cret"},
		"confirm_password": {"different"},
	})
	body = readBody(t, resp)
	assert.Contains(t, body, "Passwords do not match")

	// The mismatched attempt must not have created the account.
	resp = env.postForm(t, "/login", url.Values{
		"email":    {"ok@example.com"},
		"password": {"s3cret"},
	})
	body = readBody(t, resp)
	assert.Contains(t, body, "Invalid email or password")
}

func TestPasswordResetConfirmMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "user@example.com", "s3cret")

	resp := env.get(t, "/logout")
	resp.Body.Close()

	resp = env.postForm(t, "/forgot-password", url.Values{
		"email":            {"user@example.com"},
		"password":         {"newpass"},
		"confirm_password": {"other"},
	})
	body := readBody(t, resp)
	assert.Contains(t, body, "Passwords do not match")

	// The old password still works; the mismatch changed nothing.
	resp = env.postForm(t, "/login", url.Values{
		"email":    {"user@example.com"},
		"password": {"s3cret"},
	})
	resp.Body.Close()
	resp = env.get(t, "/")
	assert.Contains(t, readBody(t, resp), "Dashboard")

	resp = env.get(t, "/logout")
	resp.Body.Close()

	resp = env.postForm(t, "/forgot-password", url.Values{
		"email":            {"user@example.com"},
		"password":         {"newpass"},
		"confirm_password": {"newpass"},
	})
	body = readBody(t, resp)
	assert.Contains(t, body, "Password updated")

	resp = env.postForm(t, "/login", url.Values{
		"email":    {"user@example.com"},
		"password": {"newpass"},
	})
	resp.Body.Close()
	resp = env.get(t, "/")
	assert.Contains(t, readBody(t, resp), "Dashboard")
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "user@example.com", "s3cret")

	resp := env.get(t, "/logout")
	resp.Body.Close()

	resp = env.postForm(t, "/login", url.Values{
		"email":    {"user@example.com"},
		"password": {"wrong"},
	})
	body := readBody(t, resp)
	assert.Contains(t, body, "Invalid email or password")
}

func TestLogoutEndsSession(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "user@example.com", "s3cret")

	resp := env.get(t, "/logout")
	resp.Body.Close()

	resp = env.get(t, "/")
	body := readBody(t, resp)
	assert.Contains(t, body, "Log in", "after logout the dashboard must redirect to login")
}

func TestCreateTransactionShowsOnDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "user@example.com", "s3cret")

	resp := env.postForm(t, "/transactions", url.Values{
		"type":        {"expense"},
		"category":    {"Groceries"},
		"amount":      {"42.50"},
		"description": {"weekly shop"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.get(t, "/")
	body := readBody(t, resp)
	assert.Contains(t, body, "Groceries")
	assert.Contains(t, body, "42.50")
	assert.Contains(t, body, "weekly shop")
}

func TestCreateTransactionValidation(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "user@example.com", "s3cret")

	resp := env.postForm(t, "/transactions", url.Values{
		"type":     {"expense"},
		"category": {""},
		"amount":   {"10"},
	})
	body := readBody(t, resp)
	assert.Contains(t, body, "category")

	resp = env.postForm(t, "/transactions", url.Values{
		"type":     {"neither"},
		"category": {"Misc"},
		"amount":   {"10"},
	})
	body = readBody(t, resp)
	assert.Contains(t, body, "transaction kind")
}

func TestBudgetFlow(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "user@example.com", "s3cret")

	month := time.Now().Format("2006-01")
	resp := env.postForm(t, "/budgets", url.Values{
		"category": {"Food"},
		"limit":    {"300"},
		"month":    {month},
	})
	body := readBody(t, resp)
	assert.Contains(t, body, "Budget saved")

	resp = env.postForm(t, "/transactions", url.Values{
		"type":     {"expense"},
		"category": {"Food"},
		"amount":   {"350"},
	})
	resp.Body.Close()

	resp = env.get(t, "/budgets")
	body = readBody(t, resp)
	assert.Contains(t, body, "Food")
	assert.Contains(t, body, "over budget")
}

func TestSetBudgetForOtherMonthRendersThatMonth(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "user@example.com", "s3cret")

	resp := env.postForm(t, "/budgets", url.Values{
		"category": {"Travel"},
		"limit":    {"1200"},
		"month":    {"2030-07"},
	})
	body := readBody(t, resp)
	assert.Contains(t, body, "Budget saved")
	assert.Contains(t, body, "Status for 2030-07")
	assert.Contains(t, body, "Travel")
}

func TestExportFormats(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "user@example.com", "s3cret")

	resp := env.postForm(t, "/transactions", url.Values{
		"type":     {"income"},
		"category": {"Salary"},
		"amount":   {"5000"},
	})
	resp.Body.Close()

	tests := []struct {
		format      string
		contentType string
		marker      string
	}{
		{"csv", "text/csv", "Salary"},
		{"json", "application/json", `"salary"`},
	}
	for _, tt := range tests {
		resp := env.get(t, "/export?format="+tt.format)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
		assert.Contains(t, strings.ToLower(body), strings.ToLower(tt.marker))
	}

	resp = env.get(t, "/export?format=xml")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice@example.com", "s3cret")

	resp := env.postForm(t, "/transactions", url.Values{
		"type":     {"expense"},
		"category": {"Private"},
		"amount":   {"10"},
	})
	resp.Body.Close()

	// Switch to a different account in the same jar.
	resp = env.get(t, "/logout")
	resp.Body.Close()
	env.registerUser(t, "bob@example.com", "s3cret")

	resp = env.get(t, "/")
	body := readBody(t, resp)
	assert.NotContains(t, body, "Private")

	// Bob cannot delete Alice's row either; id 1 belongs to her.
	resp = env.postForm(t, "/transactions/1/delete", url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestBackupPageBackupAndRestore(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "user@example.com", "s3cret")

	resp := env.postForm(t, "/transactions", url.Values{
		"type":     {"expense"},
		"category": {"Rent"},
		"amount":   {"900"},
	})
	resp.Body.Close()

	resp = env.postForm(t, "/backup", url.Values{"action": {"backup"}})
	body := readBody(t, resp)
	assert.Contains(t, body, "Backup written to")

	// A row added after the snapshot disappears on restore.
	resp = env.postForm(t, "/transactions", url.Values{
		"type":     {"expense"},
		"category": {"Gadgets"},
		"amount":   {"999"},
	})
	resp.Body.Close()

	resp = env.postForm(t, "/backup", url.Values{"action": {"restore"}})
	body = readBody(t, resp)
	assert.Contains(t, body, "Database restored from")

	resp = env.get(t, "/")
	body = readBody(t, resp)
	assert.Contains(t, body, "Rent")
	assert.NotContains(t, body, "Gadgets")
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/login")
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
}
