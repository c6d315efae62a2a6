package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/cache"
	applog "finance-tracker/internal/log"
	"finance-tracker/internal/reports"
	"finance-tracker/internal/services"
	"finance-tracker/internal/storage"
	appweb "finance-tracker/web"
)

// Options carries the dependencies and settings for the web server.
type Options struct {
	Addr          string
	Store         *storage.SQLiteStore
	Ledger        *services.LedgerService
	Engine        *reports.Engine
	Auth          *auth.Service
	SecureCookies bool
	SessionTTL    time.Duration
	BackupPath    string
}

type Server struct {
	http.Server
	templates *template.Template
	store     *storage.SQLiteStore
	ledger    *services.LedgerService
	engine    *reports.Engine
	auth      *auth.Service

	secureCookies bool
	sessionTTL    time.Duration
	backupPath    string

	rateLimiter *rateLimiter

	// Cached monthly reports, keyed "<userID>:<month>". Writes drop the
	// whole user prefix so stale views never outlive a mutation.
	reportCache *cache.LRUCache[reports.MonthlyReport]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	httpLogger := applog.New(applog.Config{Component: applog.ComponentHTTP})

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: applog.Middleware(httpLogger)(mux),
		},
		store:            opts.Store,
		ledger:           opts.Ledger,
		engine:           opts.Engine,
		auth:             opts.Auth,
		secureCookies:    opts.SecureCookies,
		sessionTTL:       opts.SessionTTL,
		backupPath:       opts.BackupPath,
		rateLimiter:      newRateLimiter(),
		reportCache:      cache.NewLRUCache[reports.MonthlyReport](200, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = 30 * 24 * time.Hour
	}

	go s.startCacheCleanup()

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /login", s.withSecurityHeaders(s.handleLoginForm))
	mux.HandleFunc("POST /login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("GET /register", s.withSecurityHeaders(s.handleRegisterForm))
	mux.HandleFunc("POST /register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("GET /forgot-password", s.withSecurityHeaders(s.handleForgotPasswordForm))
	mux.HandleFunc("POST /forgot-password", s.withSecurityHeaders(s.handleForgotPassword))
	mux.HandleFunc("GET /logout", s.withSecurityHeaders(s.handleLogout))

	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return s.withSecurityHeaders(s.requireAuth(h))
	}
	mux.HandleFunc("GET /{$}", protected(s.handleDashboard))
	mux.HandleFunc("GET /transactions/new", protected(s.handleTransactionForm))
	mux.HandleFunc("POST /transactions", protected(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions/{id}/edit", protected(s.handleEditTransactionForm))
	mux.HandleFunc("POST /transactions/{id}", protected(s.handleUpdateTransaction))
	mux.HandleFunc("POST /transactions/{id}/delete", protected(s.handleDeleteTransaction))
	mux.HandleFunc("GET /reports", protected(s.handleReports))
	mux.HandleFunc("GET /budgets", protected(s.handleBudgets))
	mux.HandleFunc("POST /budgets", protected(s.handleSetBudget))
	mux.HandleFunc("GET /export", protected(s.handleExport))
	mux.HandleFunc("GET /backup", protected(s.handleBackupForm))
	mux.HandleFunc("POST /backup", protected(s.handleBackup))

	return s
}

// startCacheCleanup runs periodic cleanup for the report cache
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.reportCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
