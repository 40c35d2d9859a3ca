package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"cashvelo/internal/models"
	"cashvelo/internal/repository"
	"cashvelo/internal/service"
	"cashvelo/internal/webutil"
)

const goalResource = "Goal"

// GoalHandler serves goal CRUD plus contributions and withdrawals
type GoalHandler struct {
	*ResourceHandler[models.Goal, *models.Goal]
	goalService *service.GoalService
}

// NewGoalHandler creates a new goal handler. Savings progress can only move
// through contribute and withdraw.
func NewGoalHandler(goals *repository.GoalRepository, goalService *service.GoalService) *GoalHandler {
	crud := NewResourceHandler(goalResource, goals)
	crud.beforeCreate = (*models.Goal).ResetProgress
	crud.beforeUpdate = func(existing, updated *models.Goal) {
		updated.KeepProgress(existing)
	}
	return &GoalHandler{ResourceHandler: crud, goalService: goalService}
}

// Routes mounts the goal endpoints on r
func (h *GoalHandler) Routes(r chi.Router) {
	h.ResourceHandler.Routes(r)
	r.Post("/{id}/contribute", webutil.MakeHandler(h.Contribute))
	r.Post("/{id}/withdraw", webutil.MakeHandler(h.Withdraw))
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Contribute adds savings to a goal
func (h *GoalHandler) Contribute(w http.ResponseWriter, r *http.Request) error {
	return h.change(w, r, h.goalService.Contribute)
}

// Withdraw removes savings from a goal
func (h *GoalHandler) Withdraw(w http.ResponseWriter, r *http.Request) error {
	return h.change(w, r, h.goalService.Withdraw)
}

type goalChange func(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*models.Goal, error)

func (h *GoalHandler) change(w http.ResponseWriter, r *http.Request, apply goalChange) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	var req amountRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}

	goal, err := apply(r.Context(), identity.UserID, chi.URLParam(r, paramID), req.Amount)
	if err != nil {
		return resourceError(goalResource, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, goal)
	return nil
}
