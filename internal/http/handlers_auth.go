package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/storage"
)

// authViewModel feeds the login, register and forgot-password pages.
type authViewModel struct {
	Error   string
	Message string
	Email   string
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	// Already logged in? Straight to the dashboard.
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if user, _, err := s.store.GetSessionUser(r.Context(), cookie.Value); err == nil && user != nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}
	s.render(w, r, "login.html", authViewModel{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "login.html", authViewModel{Error: "Invalid form submission"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")
	if email == "" || password == "" {
		s.render(w, r, "login.html", authViewModel{Error: "Email and password are required", Email: email})
		return
	}

	user, err := s.auth.Authenticate(r.Context(), email, password)
	if err != nil {
		slog.ErrorContext(r.Context(), "Authentication failed", "error", err)
		s.render(w, r, "login.html", authViewModel{Error: "An error occurred. Please try again.", Email: email})
		return
	}
	if user == nil {
		s.render(w, r, "login.html", authViewModel{Error: "Invalid email or password", Email: email})
		return
	}

	if err := s.startSession(w, r, user.ID); err != nil {
		slog.ErrorContext(r.Context(), "Failed to start session", "error", err, "user_id", user.ID)
		s.render(w, r, "login.html", authViewModel{Error: "An error occurred. Please try again.", Email: email})
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register.html", authViewModel{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "register.html", authViewModel{Error: "Invalid form submission"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")
	if password != r.FormValue("confirm_password") {
		s.render(w, r, "register.html", authViewModel{Error: "Passwords do not match", Email: email})
		return
	}

	user, err := s.auth.Register(r.Context(), email, password)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrPasswordTooShort):
		s.render(w, r, "register.html", authViewModel{Error: err.Error(), Email: email})
		return
	case errors.Is(err, storage.ErrEmailTaken):
		s.render(w, r, "register.html", authViewModel{Error: "Email is already registered", Email: email})
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Registration failed", "error", err)
		s.render(w, r, "register.html", authViewModel{Error: "An error occurred. Please try again.", Email: email})
		return
	}

	if err := s.startSession(w, r, user.ID); err != nil {
		slog.ErrorContext(r.Context(), "Failed to start session", "error", err, "user_id", user.ID)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	slog.InfoContext(r.Context(), "User registered", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "forgot_password.html", authViewModel{})
}

// handleForgotPassword resets the password in place. There is no mail
// delivery; the account owner proves nothing beyond knowing the email.
// Suitable for a household deployment, not for the open internet.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "forgot_password.html", authViewModel{Error: "Invalid form submission"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")
	if password != r.FormValue("confirm_password") {
		s.render(w, r, "forgot_password.html", authViewModel{Error: "Passwords do not match", Email: email})
		return
	}

	found, err := s.auth.ResetPassword(r.Context(), email, password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		s.render(w, r, "forgot_password.html", authViewModel{Error: err.Error(), Email: email})
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Password reset failed", "error", err)
		s.render(w, r, "forgot_password.html", authViewModel{Error: "An error occurred. Please try again.", Email: email})
		return
	}
	if !found {
		s.render(w, r, "forgot_password.html", authViewModel{Error: "No account found for that email", Email: email})
		return
	}

	slog.InfoContext(r.Context(), "Password reset", "email", email)
	s.render(w, r, "login.html", authViewModel{Message: "Password updated, please log in", Email: email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := s.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete session", "error", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// startSession mints a token, persists it and sets the cookie.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	token, err := auth.NewSessionToken()
	if err != nil {
		return err
	}
	if err := s.store.CreateSession(r.Context(), token, userID, time.Now().Add(s.sessionTTL)); err != nil {
		return err
	}
	s.setSessionCookie(w, token)
	return nil
}
