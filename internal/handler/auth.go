package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/waste-portal/internal/auth"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/service"
)

// sessionLifetime matches the token lifetime so the cookie and the JWT
// expire together.
const sessionLifetime = 24 * time.Hour

// AuthHandler serves registration, login, logout and the current-user
// profile.
type AuthHandler struct {
	identity *service.IdentityService
	tokens   *auth.TokenService
	logger   *slog.Logger
}

func NewAuthHandler(identity *service.IdentityService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		tokens:   tokens,
		logger:   logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Ward     string `json:"ward"`
}

// HandleRegister creates a citizen account.
//
// HTTP: POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	// Public registration always creates citizens; staff accounts are
	// provisioned out of band.
	user, err := h.identity.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
		Ward:     req.Ward,
		Role:     model.RoleCitizen,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues the session cookie.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.identity.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	tokenStr, err := h.tokens.Generate(user.ID, user.Role)
	if err != nil {
		h.logger.Error("token generation failed",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	// HttpOnly keeps the token away from scripts; SameSite=Lax keeps it
	// off cross-site POSTs.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int(sessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, user)
}

// HandleLogout deletes the session cookie. POST because it changes
// state; the token itself simply ages out.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the current user's profile, including the live
// points balance and tracking code.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	user, err := h.identity.Profile(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
