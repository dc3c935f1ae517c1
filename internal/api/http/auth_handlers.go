package http

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/audit"
	"github.com/gutinsight/gutinsight/internal/auth"
)

type signupRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// handleSignup creates a visitor session from the landing-page form and
// hands back a bearer token tied to it.
func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and a valid email are required"})
		return
	}

	s, err := a.Sessions.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	if err := a.Mirror.SaveIdentity(s); err != nil {
		a.Log.Warn("mirror save failed", zap.Error(err))
	}
	if err := a.Audit.Append(r.Context(), audit.TypeVisitorSignedUp, s.ID, map[string]string{
		"email": s.Email,
	}); err != nil {
		a.Log.Warn("audit append failed", zap.Error(err))
	}

	token, err := a.Auth.Issue(s.ID, "visitor")
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"session": s, "token": token})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if req.Username != a.Cfg.AdminUser ||
		!auth.VerifyAdminPassword(req.Password, a.Cfg.AdminPass, a.Cfg.AdminPassHash) {
		a.Log.Info("admin login rejected", zap.String("username", req.Username))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	token, err := a.Auth.Issue(req.Username, "admin")
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "role": "admin"})
}

// handleRestoreSession rebuilds a visitor's state from the local mirror so
// a returning browser picks up where it left off without signing up again.
func (a *API) handleRestoreSession(w http.ResponseWriter, r *http.Request) {
	mirrored, err := a.Mirror.Load()
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	// The persisted store is authoritative when the session still exists.
	s, err := a.Sessions.Get(r.Context(), mirrored.ID)
	if err != nil {
		s = mirrored
	}
	token, err := a.Auth.Issue(s.ID, "visitor")
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": s, "token": token})
}
