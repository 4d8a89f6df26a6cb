// AngelaMos | 2026
// repository.go

package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/liahub/platform/internal/core"
)

type Repository interface {
	Create(ctx context.Context, a *Assignment) error
	GetByID(ctx context.Context, id string) (*Assignment, error)
	ListPendingForCompany(
		ctx context.Context,
		companyID string,
	) ([]Assignment, error)
	Confirm(ctx context.Context, db core.DBTX, id string) error
	Reject(ctx context.Context, db core.DBTX, id, reason string) error
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	CreateNotification(ctx context.Context, db core.DBTX, n *Notification) error
	ListNotifications(ctx context.Context, userID string) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkNotificationsRead(ctx context.Context, userID string, ids []string) error
}

const assignmentColumns = `
	id, student_id, company_id, programme, cohort,
	assigned_by_id, assigned_by_name, assigned_at,
	status, rejection_reason, resolved_at, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *Assignment) error {
	query := `
		INSERT INTO assignments (
			id, student_id, company_id, programme, cohort,
			assigned_by_id, assigned_by_name, assigned_at, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, a, query,
		a.ID,
		a.StudentID,
		a.CompanyID,
		a.Programme,
		a.Cohort,
		a.AssignedByID,
		a.AssignedByName,
		a.AssignedAt,
		a.Status,
	)
	if err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Assignment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM assignments
		WHERE id = $1`, assignmentColumns)

	var a Assignment
	err := r.db.GetContext(ctx, &a, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get assignment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}

	return &a, nil
}

func (r *repository) ListPendingForCompany(
	ctx context.Context,
	companyID string,
) ([]Assignment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM assignments
		WHERE company_id = $1 AND status = 'pending'
		ORDER BY assigned_at ASC`, assignmentColumns)

	assignments := []Assignment{}
	err := r.db.SelectContext(ctx, &assignments, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list pending assignments: %w", err)
	}

	return assignments, nil
}

// Confirm moves a pending assignment to confirmed. The status guard in
// the WHERE clause makes the transition single-shot: a second resolve
// attempt matches zero rows and surfaces as a conflict.
func (r *repository) Confirm(
	ctx context.Context,
	db core.DBTX,
	id string,
) error {
	query := `
		UPDATE assignments
		SET status = 'confirmed',
			resolved_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	return r.resolve(ctx, db, query, "confirm", id)
}

func (r *repository) Reject(
	ctx context.Context,
	db core.DBTX,
	id, reason string,
) error {
	query := `
		UPDATE assignments
		SET status = 'rejected',
			rejection_reason = $2,
			resolved_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	result, err := db.ExecContext(ctx, query, id, reason)
	if err != nil {
		return fmt.Errorf("reject assignment: %w", err)
	}

	return r.checkResolved(ctx, result, "reject", id)
}

func (r *repository) resolve(
	ctx context.Context,
	db core.DBTX,
	query, op, id string,
) error {
	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s assignment: %w", op, err)
	}

	return r.checkResolved(ctx, result, op, id)
}

func (r *repository) checkResolved(
	ctx context.Context,
	result sql.Result,
	op, id string,
) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s assignment: %w", op, err)
	}
	if rows > 0 {
		return nil
	}

	// zero rows: either the assignment is gone or it was already
	// resolved; distinguish so the caller can report accurately
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	return fmt.Errorf("%s assignment %s: already resolved: %w",
		op, id, core.ErrConflict)
}

func (r *repository) DeleteResolvedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	query := `
		DELETE FROM assignments
		WHERE status IN ('confirmed', 'rejected')
		  AND resolved_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete resolved assignments: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete resolved assignments: %w", err)
	}

	return rows, nil
}

func (r *repository) CreateNotification(
	ctx context.Context,
	db core.DBTX,
	n *Notification,
) error {
	query := `
		INSERT INTO notifications (
			id, user_id, assignment_id, kind, message
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := db.GetContext(ctx, n, query,
		n.ID,
		n.UserID,
		n.AssignmentID,
		n.Kind,
		n.Message,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *repository) ListNotifications(
	ctx context.Context,
	userID string,
) ([]Notification, error) {
	query := `
		SELECT id, user_id, assignment_id, kind, message, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 100`

	notifications := []Notification{}
	err := r.db.SelectContext(ctx, &notifications, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

func (r *repository) CountUnread(
	ctx context.Context,
	userID string,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND read = FALSE`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

func (r *repository) MarkNotificationsRead(
	ctx context.Context,
	userID string,
	ids []string,
) error {
	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE user_id = $1 AND id = ANY($2)`

	if _, err := r.db.ExecContext(ctx, query, userID, ids); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}

	return nil
}
