package server

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dashpilot/s3-universal-backend/internal/auth"
	"github.com/dashpilot/s3-universal-backend/internal/config"
	"github.com/dashpilot/s3-universal-backend/internal/models"
	"github.com/dashpilot/s3-universal-backend/internal/storage"
)

// Handler carries the collaborators every endpoint needs. It is built once
// at startup; requests share it without further coordination.
type Handler struct {
	Cfg     *config.Config
	Codec   *auth.TokenCodec
	Backups *storage.BackupManager
	Store   storage.ObjectStore
	Metrics *Metrics
}

func NewHandler(cfg *config.Config, codec *auth.TokenCodec, store storage.ObjectStore, backups *storage.BackupManager, metrics *Metrics) *Handler {
	return &Handler{
		Cfg:     cfg,
		Codec:   codec,
		Store:   store,
		Backups: backups,
		Metrics: metrics,
	}
}

// HandleLogin checks the configured credential pair and issues a session
// cookie on match.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Cfg.LoginUsername == "" || h.Cfg.LoginPassword == "" {
		slog.Error("login attempted but LOGIN_USERNAME/LOGIN_PASSWORD are not configured")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "server not configured"})
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.Cfg.LoginUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.Cfg.LoginPassword)) == 1
	if !userOK || !passOK {
		slog.Warn("login rejected", "username", req.Username)
		h.Metrics.logins.WithLabelValues("denied").Inc()
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "invalid username or password"})
		return
	}

	token, err := h.Codec.Issue(req.Username)
	if err != nil {
		slog.Error("failed to sign token", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to issue token"})
		return
	}

	h.setSessionCookie(w, token)
	slog.Info("user logged in", "username", req.Username)
	h.Metrics.logins.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Message: "login successful",
		Token:   token,
	})
}

// HandleVerify reports whether the caller presents a valid session token.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.Identify(r, h.Codec)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.VerifyResponse{
			Authenticated: false,
			Error:         "invalid or missing token",
		})
		return
	}
	writeJSON(w, http.StatusOK, models.VerifyResponse{
		Authenticated: true,
		Username:      username,
	})
}

// HandleLogout clears the session cookie unconditionally.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, models.LogoutResponse{
		Success: true,
		Message: "logged out",
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenValidity.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.Cfg.Production,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.Cfg.Production,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
