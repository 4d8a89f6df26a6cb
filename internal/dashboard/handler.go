// AngelaMos | 2026
// handler.go

package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/liahub/platform/internal/core"
	"github.com/liahub/platform/internal/middleware"
	"github.com/liahub/platform/internal/role"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, curatorOnly func(http.Handler) http.Handler,
) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetDashboard)
		r.Post("/refresh", h.Refresh)

		r.Route("/sections/{section}", func(r chi.Router) {
			r.With(curatorOnly).Post("/rows", h.CreateRow)
			r.Put("/rows/{rowID}", h.UpdateRow)
			r.Delete("/rows/{rowID}", h.DeleteRow)
			r.Post("/edit", h.StartEdit)
			r.Delete("/edit", h.CancelEdit)
			r.Post("/ack", h.Acknowledge)
			r.Post("/assignments/{assignmentID}/confirm", h.ConfirmAssignment)
			r.Post("/assignments/{assignmentID}/reject", h.RejectAssignment)
		})
	})
}

func actorFrom(r *http.Request) role.Actor {
	return role.Actor{
		ID:    middleware.GetUserID(r.Context()),
		Roles: middleware.GetUserRoles(r.Context()),
	}
}

func sectionKey(r *http.Request) (SectionKey, bool) {
	key := SectionKey(chi.URLParam(r, "section"))
	return key, key.Valid()
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	m, err := h.service.ManagerFor(r.Context(), actor)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, DashboardResponse{
		Entity:   string(role.ResolveEntity(actor.Roles)),
		Sections: m.Snapshot(),
	})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	m, err := h.service.Refresh(r.Context(), actor)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, DashboardResponse{
		Entity:   string(role.ResolveEntity(actor.Roles)),
		Sections: m.Snapshot(),
	})
}

func (h *Handler) CreateRow(w http.ResponseWriter, r *http.Request) {
	key, ok := sectionKey(r)
	if !ok {
		core.NotFound(w, "section")
		return
	}

	var req CreateRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	row, err := h.service.CreateRow(r.Context(), key, req.Fields)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	// managers pick the new row up on their next fetch
	h.service.Invalidate(middleware.GetUserID(r.Context()))

	core.Created(w, row)
}

// mutate runs a manager operation and responds with the section's
// resulting state. Collaborator failures are already folded into the
// section as mutationError; only gate and validation failures arrive
// here as errors.
func (h *Handler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	key SectionKey,
	op func(m *Manager) error,
) {
	actor := actorFrom(r)

	m, err := h.service.ManagerFor(r.Context(), actor)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if err := op(m); err != nil {
		switch {
		case errors.Is(err, core.ErrConflict):
			core.Conflict(w, "section has a mutation in flight")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "section")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, err.Error())
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	section, err := m.Section(key)
	if err != nil {
		core.NotFound(w, "section")
		return
	}

	core.OK(w, section)
}

func (h *Handler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	key, ok := sectionKey(r)
	if !ok {
		core.NotFound(w, "section")
		return
	}
	rowID := chi.URLParam(r, "rowID")

	var req UpdateRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	h.mutate(w, r, key, func(m *Manager) error {
		return m.UpdateRow(r.Context(), key, rowID, req.Changes)
	})
}

func (h *Handler) DeleteRow(w http.ResponseWriter, r *http.Request) {
	key, ok := sectionKey(r)
	if !ok {
		core.NotFound(w, "section")
		return
	}
	rowID := chi.URLParam(r, "rowID")

	h.mutate(w, r, key, func(m *Manager) error {
		return m.DeleteRow(r.Context(), key, rowID)
	})
}

func (h *Handler) StartEdit(w http.ResponseWriter, r *http.Request) {
	key, ok := sectionKey(r)
	if !ok {
		core.NotFound(w, "section")
		return
	}

	var req StartEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	h.mutate(w, r, key, func(m *Manager) error {
		return m.StartEdit(key, req.RowID)
	})
}

func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	key, ok := sectionKey(r)
	if !ok {
		core.NotFound(w, "section")
		return
	}

	h.mutate(w, r, key, func(m *Manager) error {
		return m.CancelEdit(key)
	})
}

func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	key, ok := sectionKey(r)
	if !ok {
		core.NotFound(w, "section")
		return
	}

	h.mutate(w, r, key, func(m *Manager) error {
		return m.ClearError(key)
	})
}

func (h *Handler) ConfirmAssignment(w http.ResponseWriter, r *http.Request) {
	key, ok := sectionKey(r)
	if !ok {
		core.NotFound(w, "section")
		return
	}
	assignmentID := chi.URLParam(r, "assignmentID")

	h.mutate(w, r, key, func(m *Manager) error {
		return m.ConfirmAssignment(r.Context(), key, assignmentID)
	})
}

func (h *Handler) RejectAssignment(w http.ResponseWriter, r *http.Request) {
	key, ok := sectionKey(r)
	if !ok {
		core.NotFound(w, "section")
		return
	}
	assignmentID := chi.URLParam(r, "assignmentID")

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	h.mutate(w, r, key, func(m *Manager) error {
		return m.RejectAssignment(r.Context(), key, assignmentID, req.Reason)
	})
}
