// AngelaMos | 2026
// state_test.go

package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/liahub/platform/internal/assignment"
	"github.com/liahub/platform/internal/core"
)

type fakeCollaborator struct {
	updateErr  error
	deleteErr  error
	confirmErr error
	rejectErr  error

	updateCalls  int
	deleteCalls  int
	confirmCalls int
	rejectCalls  int

	lastReason string
	updated    *Row

	// when set, calls block until the channel closes or ctx expires
	block chan struct{}
}

func (f *fakeCollaborator) wait(ctx context.Context) error {
	if f.block == nil {
		return nil
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeCollaborator) UpdateRow(
	ctx context.Context,
	section SectionKey,
	rowID string,
	changes map[string]any,
) (*Row, error) {
	f.updateCalls++
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updated != nil {
		return f.updated, nil
	}
	return &Row{ID: rowID, Fields: Fields(changes), Version: 2}, nil
}

func (f *fakeCollaborator) DeleteRow(
	ctx context.Context,
	section SectionKey,
	rowID string,
) error {
	f.deleteCalls++
	if err := f.wait(ctx); err != nil {
		return err
	}
	return f.deleteErr
}

func (f *fakeCollaborator) ConfirmAssignment(
	ctx context.Context,
	assignmentID string,
) error {
	f.confirmCalls++
	if err := f.wait(ctx); err != nil {
		return err
	}
	return f.confirmErr
}

func (f *fakeCollaborator) RejectAssignment(
	ctx context.Context,
	assignmentID, reason string,
) error {
	f.rejectCalls++
	f.lastReason = reason
	if err := f.wait(ctx); err != nil {
		return err
	}
	return f.rejectErr
}

func newTestManager(fake *fakeCollaborator) *Manager {
	m := NewManager(fake, time.Second)
	m.Load([]Section{
		{
			Key: SectionCompanies,
			Rows: []Row{
				{ID: "1", Fields: Fields{"business": "Acme"}, Version: 1},
				{ID: "2", Fields: Fields{"business": "Nordic"}, Version: 1},
			},
			PendingAssignments: []assignment.Assignment{
				{ID: "a1", StudentID: "s1", Status: assignment.StatusPending},
				{ID: "a2", StudentID: "s2", Status: assignment.StatusPending},
			},
		},
	})
	return m
}

func TestStartEditSingleEditInvariant(t *testing.T) {
	m := newTestManager(&fakeCollaborator{})

	require.NoError(t, m.StartEdit(SectionCompanies, "1"))
	require.NoError(t, m.StartEdit(SectionCompanies, "2"))

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Equal(t, "2", section.EditingRowID)
}

func TestStartEditMissingRowIsNoOp(t *testing.T) {
	m := newTestManager(&fakeCollaborator{})

	require.NoError(t, m.StartEdit(SectionCompanies, "1"))
	require.NoError(t, m.StartEdit(SectionCompanies, "nope"))

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Equal(t, "1", section.EditingRowID)
}

func TestCancelEditClearsEditState(t *testing.T) {
	m := newTestManager(&fakeCollaborator{})

	require.NoError(t, m.StartEdit(SectionCompanies, "1"))
	require.NoError(t, m.CancelEdit(SectionCompanies))

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Empty(t, section.EditingRowID)
}

func TestUpdateRowSuccessMergesAndClearsEdit(t *testing.T) {
	fake := &fakeCollaborator{
		updated: &Row{
			ID:      "1",
			Fields:  Fields{"business": "Acme Corp"},
			Version: 2,
		},
	}
	m := newTestManager(fake)

	require.NoError(t, m.StartEdit(SectionCompanies, "1"))
	err := m.UpdateRow(context.Background(), SectionCompanies, "1",
		map[string]any{"business": "Acme Corp"})
	require.NoError(t, err)

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, section.MutationStatus)
	require.Empty(t, section.EditingRowID)
	require.Equal(t, "Acme Corp", section.Rows[0].Fields["business"])
	require.Equal(t, 2, section.Rows[0].Version)
	require.Equal(t, "Nordic", section.Rows[1].Fields["business"])
	require.Equal(t, 1, fake.updateCalls)
}

func TestUpdateRowFailureRollsBackSnapshot(t *testing.T) {
	fake := &fakeCollaborator{updateErr: errors.New("boom")}
	m := newTestManager(fake)

	err := m.UpdateRow(context.Background(), SectionCompanies, "1",
		map[string]any{"business": "Acme Corp"})
	require.NoError(t, err)

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Equal(t, StatusError, section.MutationStatus)
	require.Contains(t, section.MutationError, "boom")
	require.Equal(t, "Acme", section.Rows[0].Fields["business"])
	require.Equal(t, 1, section.Rows[0].Version)
}

func TestUpdateRowMissingRowIsNoOp(t *testing.T) {
	fake := &fakeCollaborator{}
	m := newTestManager(fake)

	err := m.UpdateRow(context.Background(), SectionCompanies, "nope",
		map[string]any{"business": "x"})
	require.NoError(t, err)
	require.Zero(t, fake.updateCalls)

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Equal(t, StatusIdle, section.MutationStatus)
}

func TestDeleteRowIsPessimistic(t *testing.T) {
	fake := &fakeCollaborator{deleteErr: errors.New("remote refused")}
	m := newTestManager(fake)

	err := m.DeleteRow(context.Background(), SectionCompanies, "1")
	require.NoError(t, err)

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Len(t, section.Rows, 2)
	require.Equal(t, StatusError, section.MutationStatus)
	require.Contains(t, section.MutationError, "remote refused")
}

func TestDeleteRowSuccessRemovesRow(t *testing.T) {
	fake := &fakeCollaborator{}
	m := newTestManager(fake)

	require.NoError(t, m.StartEdit(SectionCompanies, "1"))
	err := m.DeleteRow(context.Background(), SectionCompanies, "1")
	require.NoError(t, err)

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Len(t, section.Rows, 1)
	require.Equal(t, "2", section.Rows[0].ID)
	require.Empty(t, section.EditingRowID)
	require.Equal(t, StatusSuccess, section.MutationStatus)
}

func TestPendingSectionRefusesMutations(t *testing.T) {
	fake := &fakeCollaborator{block: make(chan struct{})}
	m := newTestManager(fake)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.DeleteRow(context.Background(), SectionCompanies, "1")
	}()

	require.Eventually(t, func() bool {
		section, err := m.Section(SectionCompanies)
		return err == nil && section.MutationStatus == StatusPending
	}, time.Second, 5*time.Millisecond)

	err := m.UpdateRow(context.Background(), SectionCompanies, "2",
		map[string]any{"business": "x"})
	require.ErrorIs(t, err, core.ErrConflict)

	err = m.ConfirmAssignment(context.Background(), SectionCompanies, "a1")
	require.ErrorIs(t, err, core.ErrConflict)

	close(fake.block)
	<-done

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, section.MutationStatus)
}

func TestCollaboratorTimeoutSurfacesAsError(t *testing.T) {
	fake := &fakeCollaborator{block: make(chan struct{})}
	m := NewManager(fake, 20*time.Millisecond)
	m.Load([]Section{{
		Key:  SectionCompanies,
		Rows: []Row{{ID: "1", Fields: Fields{"business": "Acme"}, Version: 1}},
	}})

	err := m.UpdateRow(context.Background(), SectionCompanies, "1",
		map[string]any{"business": "x"})
	require.NoError(t, err)

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Equal(t, StatusError, section.MutationStatus)
	require.Contains(t, section.MutationError, "timed out")
	require.Equal(t, "Acme", section.Rows[0].Fields["business"])

	close(fake.block)
}

func TestConfirmAssignmentOptimisticRollback(t *testing.T) {
	fake := &fakeCollaborator{confirmErr: errors.New("conflict")}
	m := newTestManager(fake)

	err := m.ConfirmAssignment(context.Background(), SectionCompanies, "a1")
	require.NoError(t, err)

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Len(t, section.PendingAssignments, 2)
	require.Equal(t, "a1", section.PendingAssignments[0].ID)
	require.Equal(t, StatusError, section.MutationStatus)
	require.Contains(t, section.MutationError, "conflict")
}

func TestConfirmAssignmentSuccessRemovesFromPending(t *testing.T) {
	fake := &fakeCollaborator{}
	m := newTestManager(fake)

	err := m.ConfirmAssignment(context.Background(), SectionCompanies, "a1")
	require.NoError(t, err)

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Len(t, section.PendingAssignments, 1)
	require.Equal(t, "a2", section.PendingAssignments[0].ID)
	require.Equal(t, StatusSuccess, section.MutationStatus)
}

func TestRejectAssignmentRequiresReason(t *testing.T) {
	for _, reason := range []string{"", "   ", "\t\n"} {
		fake := &fakeCollaborator{}
		m := newTestManager(fake)

		err := m.RejectAssignment(
			context.Background(), SectionCompanies, "a1", reason)
		require.ErrorIs(t, err, core.ErrInvalidInput)
		require.Zero(t, fake.rejectCalls)

		section, err := m.Section(SectionCompanies)
		require.NoError(t, err)
		require.Len(t, section.PendingAssignments, 2)
		require.Equal(t, StatusIdle, section.MutationStatus)
	}
}

func TestRejectAssignmentRelaysReason(t *testing.T) {
	fake := &fakeCollaborator{}
	m := newTestManager(fake)

	err := m.RejectAssignment(
		context.Background(), SectionCompanies, "a1", "cohort is full")
	require.NoError(t, err)
	require.Equal(t, "cohort is full", fake.lastReason)

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Len(t, section.PendingAssignments, 1)
	require.Equal(t, "a2", section.PendingAssignments[0].ID)
	require.Equal(t, StatusSuccess, section.MutationStatus)
}

func TestResolveMissingAssignmentIsNoOp(t *testing.T) {
	fake := &fakeCollaborator{}
	m := newTestManager(fake)

	err := m.ConfirmAssignment(context.Background(), SectionCompanies, "nope")
	require.NoError(t, err)
	require.Zero(t, fake.confirmCalls)
}

func TestClearErrorReturnsSectionToIdle(t *testing.T) {
	fake := &fakeCollaborator{deleteErr: errors.New("boom")}
	m := newTestManager(fake)

	require.NoError(t,
		m.DeleteRow(context.Background(), SectionCompanies, "1"))
	require.NoError(t, m.ClearError(SectionCompanies))

	section, err := m.Section(SectionCompanies)
	require.NoError(t, err)
	require.Equal(t, StatusIdle, section.MutationStatus)
	require.Empty(t, section.MutationError)
}

func TestUnknownSectionOperations(t *testing.T) {
	m := newTestManager(&fakeCollaborator{})

	require.ErrorIs(t,
		m.StartEdit(SectionStudents, "1"), core.ErrNotFound)
	require.ErrorIs(t,
		m.UpdateRow(context.Background(), SectionStudents, "1", nil),
		core.ErrNotFound)

	_, err := m.Section(SectionStudents)
	require.ErrorIs(t, err, core.ErrNotFound)
}
