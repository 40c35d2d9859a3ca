package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cashvelo/internal/models"
	"cashvelo/internal/service"
	"cashvelo/internal/webutil"
)

// AuthHandler handles account and password reset requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type signupRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

// Signup creates an account and returns a session token
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) error {
	var req signupRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}

	result, err := h.authService.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return authError(err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, sessionResponse{
		Message: "User created successfully",
		Token:   result.Token,
		User:    result.User.Public(),
	})
	return nil
}

// Login exchanges credentials for a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return authError(err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, sessionResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    result.User.Public(),
	})
	return nil
}

// ForgotPassword starts a password reset. The response is the same whether or
// not the email belongs to an account.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) error {
	var req emailRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		return authError(err)
	}

	webutil.RespondWithMessage(w, http.StatusOK, MsgResetLinkSent)
	return nil
}

// VerifyResetToken reports whether a reset token is still usable
func (h *AuthHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) error {
	user, err := h.authService.VerifyResetToken(r.Context(), chi.URLParam(r, "token"))
	if errors.Is(err, service.ErrInvalidResetToken) {
		webutil.RespondWithJSON(w, http.StatusBadRequest, map[string]any{
			"valid": false,
			"error": MsgInvalidResetToken,
		})
		return nil
	}
	if err != nil {
		return authError(err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"email": user.Email,
	})
	return nil
}

// ResetPassword sets a new password using a reset token
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) error {
	var req passwordRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password); err != nil {
		return authError(err)
	}

	webutil.RespondWithMessage(w, http.StatusOK, MsgPasswordReset)
	return nil
}

// CurrentUser returns the account behind the session token
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		return authError(err)
	}

	public := user.Public()
	public.CreatedAt = &user.CreatedAt
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"user": public})
	return nil
}

// Logout acknowledges a logout; sessions are stateless so nothing is revoked
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	webutil.RespondWithMessage(w, http.StatusOK, MsgLoggedOut)
	return nil
}
