package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cashvelo/internal/models"
	"cashvelo/internal/repository"
	"cashvelo/internal/webutil"
)

// resourceRecord constrains PT to a pointer to T that normalises and
// validates itself
type resourceRecord[T any] interface {
	*T
	models.Resource
}

// ResourceHandler serves list/get/create/update/delete for one owner-scoped
// record type
type ResourceHandler[T any, PT resourceRecord[T]] struct {
	name string
	repo *repository.OwnedRepository[T, PT]
	now  func() time.Time

	// beforeCreate and beforeUpdate run after decoding and before validation
	beforeCreate func(rec PT)
	beforeUpdate func(existing, rec PT)
}

// NewResourceHandler creates a handler; name is the capitalised resource
// label used in responses, e.g. "Budget"
func NewResourceHandler[T any, PT resourceRecord[T]](name string, repo *repository.OwnedRepository[T, PT]) *ResourceHandler[T, PT] {
	return &ResourceHandler[T, PT]{name: name, repo: repo, now: time.Now}
}

// Routes mounts the handler's endpoints on r
func (h *ResourceHandler[T, PT]) Routes(r chi.Router) {
	r.Get("/", webutil.MakeHandler(h.List))
	r.Post("/", webutil.MakeHandler(h.Create))
	r.Get("/{id}", webutil.MakeHandler(h.Get))
	r.Put("/{id}", webutil.MakeHandler(h.Update))
	r.Delete("/{id}", webutil.MakeHandler(h.Delete))
}

// List returns the caller's records, narrowed by any supported query filters
func (h *ResourceHandler[T, PT]) List(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	filters := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	records, err := h.repo.List(r.Context(), identity.UserID, filters)
	if err != nil {
		return resourceError(h.name, err)
	}
	if records == nil {
		records = []PT{}
	}

	webutil.RespondWithJSON(w, http.StatusOK, records)
	return nil
}

// Get returns one of the caller's records
func (h *ResourceHandler[T, PT]) Get(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	rec, err := h.repo.Get(r.Context(), identity.UserID, chi.URLParam(r, paramID))
	if err != nil {
		return resourceError(h.name, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, rec)
	return nil
}

// Create stores a new record owned by the caller
func (h *ResourceHandler[T, PT]) Create(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	rec := PT(new(T))
	if err := webutil.DecodeJSON(r, rec); err != nil {
		return err
	}
	*rec.Own() = models.Ownership{UserID: identity.UserID}
	if h.beforeCreate != nil {
		h.beforeCreate(rec)
	}

	rec.Normalize(h.now())
	if err := rec.Validate(); err != nil {
		return resourceError(h.name, err)
	}
	if err := h.repo.Create(r.Context(), rec); err != nil {
		return resourceError(h.name, err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, rec)
	return nil
}

// Update applies the fields present in the body to one of the caller's records
func (h *ResourceHandler[T, PT]) Update(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	existing, err := h.repo.Get(r.Context(), identity.UserID, chi.URLParam(r, paramID))
	if err != nil {
		return resourceError(h.name, err)
	}

	updated := PT(new(T))
	*updated = *existing
	if err := webutil.DecodeJSON(r, updated); err != nil {
		return err
	}
	*updated.Own() = *existing.Own()
	if h.beforeUpdate != nil {
		h.beforeUpdate(existing, updated)
	}

	updated.Normalize(h.now())
	if err := updated.Validate(); err != nil {
		return resourceError(h.name, err)
	}
	if err := h.repo.Update(r.Context(), updated); err != nil {
		return resourceError(h.name, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, updated)
	return nil
}

// Delete removes one of the caller's records
func (h *ResourceHandler[T, PT]) Delete(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	if err := h.repo.Delete(r.Context(), identity.UserID, chi.URLParam(r, paramID)); err != nil {
		return resourceError(h.name, err)
	}

	webutil.RespondWithMessage(w, http.StatusOK, h.name+" deleted successfully")
	return nil
}
