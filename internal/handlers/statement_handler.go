package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"cashvelo/internal/models"
	"cashvelo/internal/service"
	"cashvelo/internal/webutil"
)

// StatementHandler renders expense statements
type StatementHandler struct {
	authService      *service.AuthService
	statementService *service.StatementService
}

// NewStatementHandler creates a new statement handler
func NewStatementHandler(authService *service.AuthService, statementService *service.StatementService) *StatementHandler {
	return &StatementHandler{authService: authService, statementService: statementService}
}

// ExpenseStatement streams the caller's expenses as a PDF. Optional from and
// to query parameters (YYYY-MM-DD) bound the period inclusively.
func (h *StatementHandler) ExpenseStatement(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	period, err := parseStatementPeriod(r)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		return authError(err)
	}

	// Render fully before writing so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.statementService.WriteExpenseStatement(r.Context(), &buf, user, period); err != nil {
		return webutil.ErrInternalServerWrap("", "failed to render statement", err)
	}

	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypePDF)
	w.Header().Set(webutil.HeaderContentDisposition, `attachment; filename="expense-statement.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	return nil
}

func parseStatementPeriod(r *http.Request) (service.StatementPeriod, error) {
	var period service.StatementPeriod
	query := r.URL.Query()

	if from := query.Get("from"); from != "" {
		d, err := models.ParseDate(from)
		if err != nil {
			return period, webutil.ErrBadRequestWrap(fmt.Sprintf("Invalid from date %q", from), err)
		}
		period.From = d.Time
	}
	if to := query.Get("to"); to != "" {
		d, err := models.ParseDate(to)
		if err != nil {
			return period, webutil.ErrBadRequestWrap(fmt.Sprintf("Invalid to date %q", to), err)
		}
		period.To = d.Time
	}
	if !period.From.IsZero() && !period.To.IsZero() && period.To.Before(period.From) {
		return period, webutil.ErrBadRequest("The to date must not be before the from date")
	}
	return period, nil
}
