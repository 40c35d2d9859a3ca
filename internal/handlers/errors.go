package handlers

import (
	"errors"

	"cashvelo/internal/models"
	"cashvelo/internal/repository"
	"cashvelo/internal/service"
	"cashvelo/internal/validation"
	"cashvelo/internal/webutil"
)

// authError translates auth service failures into client responses
func authError(err error) error {
	var verr validation.ValidationError
	switch {
	case errors.As(err, &verr):
		return webutil.ErrBadRequest(verr.Message)
	case errors.Is(err, service.ErrMissingSignupFields):
		return webutil.ErrBadRequest(MsgMissingSignup)
	case errors.Is(err, service.ErrMissingCredentials):
		return webutil.ErrBadRequest(MsgMissingLogin)
	case errors.Is(err, service.ErrMissingEmail):
		return webutil.ErrBadRequest(MsgMissingEmail)
	case errors.Is(err, service.ErrEmailTaken):
		return webutil.ErrConflict(MsgAccountConflict)
	case errors.Is(err, service.ErrUsernameTaken):
		return webutil.ErrConflict(MsgUsernameTaken)
	case errors.Is(err, service.ErrInvalidCredentials):
		return webutil.ErrUnauthorized(MsgInvalidCredentials)
	case errors.Is(err, service.ErrInvalidResetToken):
		return webutil.ErrBadRequest(MsgInvalidResetToken)
	case errors.Is(err, service.ErrUserNotFound):
		return webutil.ErrNotFound(MsgUserNotFound)
	case errors.Is(err, service.ErrEmailDelivery):
		return webutil.ErrInternalServerWrap(MsgEmailFailed, "password reset delivery failed", err)
	default:
		return webutil.ErrInternalServerWrap("", "auth request failed", err)
	}
}

// resourceError translates store and domain failures for a named resource
func resourceError(resource string, err error) error {
	var verr validation.ValidationError
	switch {
	case errors.As(err, &verr):
		return webutil.ErrBadRequest(verr.Message)
	case errors.Is(err, repository.ErrNotFound):
		return webutil.ErrNotFound(resource + " not found")
	case errors.Is(err, models.ErrInvalidAmount):
		return webutil.ErrBadRequest(MsgInvalidAmount)
	case errors.Is(err, models.ErrInsufficientFunds):
		return webutil.ErrBadRequest(MsgInsufficientFunds)
	default:
		return webutil.ErrInternalServerWrap("", resource+" request failed", err)
	}
}
