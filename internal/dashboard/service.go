// AngelaMos | 2026
// service.go

package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/liahub/platform/internal/assignment"
	"github.com/liahub/platform/internal/core"
	"github.com/liahub/platform/internal/role"
)

// Service builds dashboards, persists section rows, and hands out one
// Manager per signed-in user. It is also the Manager's collaborator,
// bound to the acting user so every remote mutation is re-authorized
// server side regardless of what the client's edit gating allowed.
type Service struct {
	repo        Repository
	assignments *assignment.Service
	timeout     time.Duration

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewService(
	repo Repository,
	assignments *assignment.Service,
	timeout time.Duration,
) *Service {
	return &Service{
		repo:        repo,
		assignments: assignments,
		timeout:     timeout,
		managers:    make(map[string]*Manager),
	}
}

// FetchDashboard assembles the section set for the actor's entity,
// including the pending assignment queue on the companies section for
// company users.
func (s *Service) FetchDashboard(
	ctx context.Context,
	actor role.Actor,
) ([]Section, error) {
	entity := role.ResolveEntity(actor.Roles)
	platformAdmin := role.HasAnyRole(
		actor.Roles, []string{role.PlatformAdmin})

	keys := SectionsForEntity(entity, platformAdmin)
	sections := make([]Section, 0, len(keys))

	for _, key := range keys {
		rows, err := s.repo.ListRows(ctx, key)
		if err != nil {
			return nil, err
		}

		section := Section{
			Key:            key,
			Rows:           rows,
			MutationStatus: StatusIdle,
		}

		if key == SectionCompanies && entity == role.EntityCompany {
			pending, err := s.assignments.ListPendingForCompany(
				ctx, actor.ID)
			if err != nil {
				return nil, err
			}
			section.PendingAssignments = pending
		}

		sections = append(sections, section)
	}

	return sections, nil
}

// ManagerFor returns the actor's dashboard manager, building and
// populating it on first use.
func (s *Service) ManagerFor(
	ctx context.Context,
	actor role.Actor,
) (*Manager, error) {
	s.mu.Lock()
	m, ok := s.managers[actor.ID]
	s.mu.Unlock()
	if ok {
		return m, nil
	}

	sections, err := s.FetchDashboard(ctx, actor)
	if err != nil {
		return nil, err
	}

	m = NewManager(&actorCollaborator{service: s, actor: actor}, s.timeout)
	m.Load(sections)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.managers[actor.ID]; ok {
		return existing, nil
	}
	s.managers[actor.ID] = m
	return m, nil
}

// Refresh rebuilds the actor's manager from persisted state.
func (s *Service) Refresh(
	ctx context.Context,
	actor role.Actor,
) (*Manager, error) {
	s.Invalidate(actor.ID)
	return s.ManagerFor(ctx, actor)
}

// Invalidate drops the actor's manager so the next access refetches.
func (s *Service) Invalidate(actorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.managers, actorID)
}

// CreateRow persists a new section row. Rows that represent users
// should carry user_id and roles in their fields so the edit rule can
// resolve a subject for them.
func (s *Service) CreateRow(
	ctx context.Context,
	section SectionKey,
	fields Fields,
) (*Row, error) {
	if !section.Valid() {
		return nil, ErrUnknownSection
	}

	row := &Row{
		ID:         uuid.New().String(),
		SectionKey: section,
		Fields:     fields,
	}

	if err := s.repo.CreateRow(ctx, row); err != nil {
		return nil, err
	}

	return row, nil
}

// actorCollaborator binds the shared service to one acting user. It
// is what the actor's Manager dispatches to.
type actorCollaborator struct {
	service *Service
	actor   role.Actor
}

func (c *actorCollaborator) UpdateRow(
	ctx context.Context,
	section SectionKey,
	rowID string,
	changes map[string]any,
) (*Row, error) {
	row, err := c.service.repo.GetRow(ctx, section, rowID)
	if err != nil {
		return nil, err
	}

	if !role.CanEditRow(c.actor, row.Subject()) {
		return nil, fmt.Errorf(
			"update row %s: %w", rowID, core.ErrForbidden)
	}

	return c.service.repo.UpdateRowFields(
		ctx,
		section,
		rowID,
		row.Fields.Merge(changes),
		row.Version,
	)
}

func (c *actorCollaborator) DeleteRow(
	ctx context.Context,
	section SectionKey,
	rowID string,
) error {
	row, err := c.service.repo.GetRow(ctx, section, rowID)
	if err != nil {
		return err
	}

	if !role.CanEditRow(c.actor, row.Subject()) {
		return fmt.Errorf("delete row %s: %w", rowID, core.ErrForbidden)
	}

	return c.service.repo.DeleteRow(ctx, section, rowID)
}

func (c *actorCollaborator) ConfirmAssignment(
	ctx context.Context,
	assignmentID string,
) error {
	return c.service.assignments.Confirm(ctx, c.actor.ID, assignmentID)
}

func (c *actorCollaborator) RejectAssignment(
	ctx context.Context,
	assignmentID, reason string,
) error {
	return c.service.assignments.Reject(
		ctx, c.actor.ID, assignmentID, reason)
}
