// AngelaMos | 2026
// handler.go

package assignment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/liahub/platform/internal/core"
	"github.com/liahub/platform/internal/middleware"
)

// NameDirectory resolves a user ID to a display name for the
// assigned-by label carried on each assignment.
type NameDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

type Handler struct {
	service   *Service
	directory NameDirectory
	validator *validator.Validate
}

func NewHandler(service *Service, directory NameDirectory) *Handler {
	return &Handler{
		service:   service,
		directory: directory,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, managerOnly func(http.Handler) http.Handler,
) {
	r.Route("/assignments", func(r chi.Router) {
		r.Use(authenticator)

		r.With(managerOnly).Post("/", h.Create)
		r.Get("/pending", h.ListPending)
		r.Post("/{assignmentID}/confirm", h.Confirm)
		r.Post("/{assignmentID}/reject", h.Reject)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListNotifications)
		r.Post("/read", h.MarkRead)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	name, err := h.directory.DisplayName(r.Context(), actorID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	a, err := h.service.Create(r.Context(), CreateParams{
		StudentID:      req.StudentID,
		CompanyID:      req.CompanyID,
		Programme:      req.Programme,
		Cohort:         req.Cohort,
		AssignedByID:   actorID,
		AssignedByName: name,
	})
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, a)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	assignments, err := h.service.ListPendingForCompany(r.Context(), actorID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, assignments)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	assignmentID := chi.URLParam(r, "assignmentID")

	err := h.service.Confirm(r.Context(), actorID, assignmentID)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	assignmentID := chi.URLParam(r, "assignmentID")

	var req RejectAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.service.Reject(r.Context(), actorID, assignmentID, req.Reason)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "assignment")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "assignment belongs to another company")
	case errors.Is(err, core.ErrConflict):
		core.Conflict(w, "assignment already resolved")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.ListNotifications(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.service.MarkNotificationsRead(
		r.Context(),
		userID,
		req.NotificationIDs,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}
