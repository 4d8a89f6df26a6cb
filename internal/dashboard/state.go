// AngelaMos | 2026
// state.go

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/liahub/platform/internal/assignment"
	"github.com/liahub/platform/internal/core"
)

var (
	// ErrSectionBusy means a collaborator call is in flight for the
	// section and the mutation was refused, not queued.
	ErrSectionBusy = fmt.Errorf(
		"section has a mutation in flight: %w", core.ErrConflict)

	ErrUnknownSection = fmt.Errorf(
		"unknown section: %w", core.ErrNotFound)
)

// Collaborator is the remote side of every section mutation. The
// manager never persists anything itself; it applies local state
// optimistically or pessimistically around these calls.
type Collaborator interface {
	UpdateRow(
		ctx context.Context,
		section SectionKey,
		rowID string,
		changes map[string]any,
	) (*Row, error)
	DeleteRow(ctx context.Context, section SectionKey, rowID string) error
	ConfirmAssignment(ctx context.Context, assignmentID string) error
	RejectAssignment(ctx context.Context, assignmentID, reason string) error
}

// Manager owns the section states of one dashboard. All transitions
// run under the mutex; collaborator calls run outside it, with the
// pending status acting as the per-section re-entrancy gate. Every
// collaborator call is bounded by the configured timeout so a hung
// collaborator cannot pin a section in pending.
type Manager struct {
	mu       sync.Mutex
	sections map[SectionKey]*Section
	collab   Collaborator
	timeout  time.Duration
}

func NewManager(collab Collaborator, timeout time.Duration) *Manager {
	return &Manager{
		sections: make(map[SectionKey]*Section),
		collab:   collab,
		timeout:  timeout,
	}
}

// Load replaces all section state, e.g. after a dashboard fetch or an
// explicit refresh. Edit and mutation state starts clean.
func (m *Manager) Load(sections []Section) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sections = make(map[SectionKey]*Section, len(sections))
	for i := range sections {
		s := sections[i]
		s.MutationStatus = StatusIdle
		s.EditingRowID = ""
		s.MutationError = ""
		m.sections[s.Key] = &s
	}
}

// Snapshot returns a deep-enough copy of every section for rendering.
func (m *Manager) Snapshot() []Section {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Section, 0, len(m.sections))
	for _, s := range m.sections {
		out = append(out, m.copySection(s))
	}
	return out
}

// Section returns a copy of one section's state.
func (m *Manager) Section(key SectionKey) (Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sections[key]
	if !ok {
		return Section{}, ErrUnknownSection
	}
	return m.copySection(s), nil
}

func (m *Manager) copySection(s *Section) Section {
	out := *s
	out.Rows = make([]Row, len(s.Rows))
	for i := range s.Rows {
		out.Rows[i] = s.Rows[i]
		out.Rows[i].Fields = s.Rows[i].Fields.Clone()
	}
	out.PendingAssignments = append(
		[]assignment.Assignment(nil), s.PendingAssignments...)
	return out
}

// StartEdit marks a row as being edited. A prior edit in the same
// section is implicitly discarded. Editing a row that is not present
// is a no-op.
func (m *Manager) StartEdit(key SectionKey, rowID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sections[key]
	if !ok {
		return ErrUnknownSection
	}
	if s.MutationStatus == StatusPending {
		return ErrSectionBusy
	}
	if s.rowIndex(rowID) < 0 {
		return nil
	}

	s.EditingRowID = rowID
	return nil
}

// CancelEdit discards the in-progress edit, if any.
func (m *Manager) CancelEdit(key SectionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sections[key]
	if !ok {
		return ErrUnknownSection
	}

	s.EditingRowID = ""
	return nil
}

// ClearError acknowledges a surfaced mutation error or success,
// returning the section to idle.
func (m *Manager) ClearError(key SectionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sections[key]
	if !ok {
		return ErrUnknownSection
	}
	if s.MutationStatus == StatusPending {
		return ErrSectionBusy
	}

	s.MutationStatus = StatusIdle
	s.MutationError = ""
	return nil
}

// UpdateRow merges changes into the row optimistically, then persists
// through the collaborator. On failure the snapshot is restored and
// the failure surfaces as the section's mutation error. A missing row
// is a no-op.
func (m *Manager) UpdateRow(
	ctx context.Context,
	key SectionKey,
	rowID string,
	changes map[string]any,
) error {
	m.mu.Lock()
	s, ok := m.sections[key]
	if !ok {
		m.mu.Unlock()
		return ErrUnknownSection
	}
	if s.MutationStatus == StatusPending {
		m.mu.Unlock()
		return ErrSectionBusy
	}

	idx := s.rowIndex(rowID)
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}

	snapshot := s.Rows[idx].Fields.Clone()
	s.Rows[idx].Fields = s.Rows[idx].Fields.Merge(changes)
	s.MutationStatus = StatusPending
	s.MutationError = ""
	m.mu.Unlock()

	updated, err := m.callUpdate(ctx, key, rowID, changes)

	m.mu.Lock()
	defer m.mu.Unlock()

	idx = s.rowIndex(rowID)
	if err != nil {
		if idx >= 0 {
			s.Rows[idx].Fields = snapshot
		}
		s.MutationStatus = StatusError
		s.MutationError = mutationMessage("update failed", err)
		return nil
	}

	if idx >= 0 && updated != nil {
		s.Rows[idx].Fields = updated.Fields.Clone()
		s.Rows[idx].Version = updated.Version
		s.Rows[idx].UpdatedAt = updated.UpdatedAt
	}
	if s.EditingRowID == rowID {
		s.EditingRowID = ""
	}
	s.MutationStatus = StatusSuccess
	return nil
}

// DeleteRow is pessimistic: the row leaves the section only after the
// collaborator acknowledges. A missing row is a no-op.
func (m *Manager) DeleteRow(
	ctx context.Context,
	key SectionKey,
	rowID string,
) error {
	m.mu.Lock()
	s, ok := m.sections[key]
	if !ok {
		m.mu.Unlock()
		return ErrUnknownSection
	}
	if s.MutationStatus == StatusPending {
		m.mu.Unlock()
		return ErrSectionBusy
	}
	if s.rowIndex(rowID) < 0 {
		m.mu.Unlock()
		return nil
	}

	s.MutationStatus = StatusPending
	s.MutationError = ""
	m.mu.Unlock()

	err := m.callDelete(ctx, key, rowID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		s.MutationStatus = StatusError
		s.MutationError = mutationMessage("delete failed", err)
		return nil
	}

	if idx := s.rowIndex(rowID); idx >= 0 {
		s.Rows = append(s.Rows[:idx], s.Rows[idx+1:]...)
	}
	if s.EditingRowID == rowID {
		s.EditingRowID = ""
	}
	s.MutationStatus = StatusSuccess
	return nil
}

// ConfirmAssignment removes the assignment from the pending list
// optimistically; a collaborator failure reinstates it at its old
// position. A missing assignment is a no-op.
func (m *Manager) ConfirmAssignment(
	ctx context.Context,
	key SectionKey,
	assignmentID string,
) error {
	return m.resolveAssignment(ctx, key, assignmentID,
		func(ctx context.Context) error {
			return m.collab.ConfirmAssignment(ctx, assignmentID)
		}, "confirm failed")
}

// RejectAssignment refuses an empty trimmed reason before anything is
// dispatched or any state changes.
func (m *Manager) RejectAssignment(
	ctx context.Context,
	key SectionKey,
	assignmentID, reason string,
) error {
	if !assignment.ValidReason(reason) {
		return fmt.Errorf(
			"rejection reason is required: %w", core.ErrInvalidInput)
	}

	return m.resolveAssignment(ctx, key, assignmentID,
		func(ctx context.Context) error {
			return m.collab.RejectAssignment(ctx, assignmentID, reason)
		}, "reject failed")
}

func (m *Manager) resolveAssignment(
	ctx context.Context,
	key SectionKey,
	assignmentID string,
	call func(ctx context.Context) error,
	failure string,
) error {
	m.mu.Lock()
	s, ok := m.sections[key]
	if !ok {
		m.mu.Unlock()
		return ErrUnknownSection
	}
	if s.MutationStatus == StatusPending {
		m.mu.Unlock()
		return ErrSectionBusy
	}

	idx := s.assignmentIndex(assignmentID)
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}

	removed := s.PendingAssignments[idx]
	s.PendingAssignments = append(
		s.PendingAssignments[:idx], s.PendingAssignments[idx+1:]...)
	s.MutationStatus = StatusPending
	s.MutationError = ""
	m.mu.Unlock()

	err := m.bounded(ctx, call)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		restored := make(
			[]assignment.Assignment, 0, len(s.PendingAssignments)+1)
		restored = append(restored, s.PendingAssignments[:idx]...)
		restored = append(restored, removed)
		restored = append(restored, s.PendingAssignments[idx:]...)
		s.PendingAssignments = restored
		s.MutationStatus = StatusError
		s.MutationError = mutationMessage(failure, err)
		return nil
	}

	s.MutationStatus = StatusSuccess
	return nil
}

func (m *Manager) callUpdate(
	ctx context.Context,
	key SectionKey,
	rowID string,
	changes map[string]any,
) (*Row, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.collab.UpdateRow(ctx, key, rowID, changes)
}

func (m *Manager) callDelete(
	ctx context.Context,
	key SectionKey,
	rowID string,
) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.collab.DeleteRow(ctx, key, rowID)
}

func (m *Manager) bounded(
	ctx context.Context,
	call func(ctx context.Context) error,
) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return call(ctx)
}

func mutationMessage(prefix string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return prefix + ": request timed out"
	}
	return prefix + ": " + err.Error()
}
