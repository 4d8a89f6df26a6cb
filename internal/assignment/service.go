// AngelaMos | 2026
// service.go

package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/liahub/platform/internal/core"
)

// NotificationChannel is the redis pub/sub channel resolution events
// are published on.
const NotificationChannel = "liahub:assignment-events"

type Service struct {
	db     *sqlx.DB
	repo   Repository
	redis  *redis.Client
	logger *slog.Logger
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	redisClient *redis.Client,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		redis:  redisClient,
		logger: logger,
	}
}

type CreateParams struct {
	StudentID      string
	CompanyID      string
	Programme      string
	Cohort         string
	AssignedByID   string
	AssignedByName string
}

func (s *Service) Create(
	ctx context.Context,
	params CreateParams,
) (*Assignment, error) {
	a := &Assignment{
		ID:             uuid.New().String(),
		StudentID:      params.StudentID,
		CompanyID:      params.CompanyID,
		Programme:      params.Programme,
		Cohort:         params.Cohort,
		AssignedByID:   params.AssignedByID,
		AssignedByName: params.AssignedByName,
		AssignedAt:     time.Now().UTC(),
		Status:         StatusPending,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*Assignment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPendingForCompany(
	ctx context.Context,
	companyID string,
) ([]Assignment, error) {
	return s.repo.ListPendingForCompany(ctx, companyID)
}

// Confirm resolves a pending assignment as accepted. The status flip
// and the manager notification commit atomically; the pub/sub fan-out
// is best effort after commit.
func (s *Service) Confirm(
	ctx context.Context,
	actorID, assignmentID string,
) error {
	a, err := s.authorizeResolve(ctx, actorID, assignmentID)
	if err != nil {
		return err
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.repo.Confirm(ctx, tx, a.ID); err != nil {
			return err
		}
		return s.repo.CreateNotification(ctx, tx, &Notification{
			ID:           uuid.New().String(),
			UserID:       a.AssignedByID,
			AssignmentID: a.ID,
			Kind:         NotificationConfirmed,
			Message: fmt.Sprintf(
				"Assignment for programme %q was confirmed",
				a.Programme,
			),
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, Event{
		Kind:         NotificationConfirmed,
		AssignmentID: a.ID,
		StudentID:    a.StudentID,
		ManagerID:    a.AssignedByID,
	})

	return nil
}

// Reject resolves a pending assignment as declined. A reason that is
// empty after trimming is refused before anything is dispatched.
func (s *Service) Reject(
	ctx context.Context,
	actorID, assignmentID, reason string,
) error {
	if !ValidReason(reason) {
		return fmt.Errorf(
			"reject assignment: rejection reason is required: %w",
			core.ErrInvalidInput,
		)
	}
	reason = strings.TrimSpace(reason)

	a, err := s.authorizeResolve(ctx, actorID, assignmentID)
	if err != nil {
		return err
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.repo.Reject(ctx, tx, a.ID, reason); err != nil {
			return err
		}
		return s.repo.CreateNotification(ctx, tx, &Notification{
			ID:           uuid.New().String(),
			UserID:       a.AssignedByID,
			AssignmentID: a.ID,
			Kind:         NotificationRejected,
			Message: fmt.Sprintf(
				"Assignment for programme %q was rejected: %s",
				a.Programme,
				reason,
			),
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, Event{
		Kind:         NotificationRejected,
		AssignmentID: a.ID,
		StudentID:    a.StudentID,
		ManagerID:    a.AssignedByID,
		Reason:       reason,
	})

	return nil
}

// authorizeResolve loads the assignment and checks the actor is the
// receiving company. Resolution rights do not extend to admins; only
// the company the student was proposed to can answer.
func (s *Service) authorizeResolve(
	ctx context.Context,
	actorID, assignmentID string,
) (*Assignment, error) {
	a, err := s.repo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if a.CompanyID != actorID {
		return nil, fmt.Errorf(
			"resolve assignment %s: %w",
			assignmentID,
			core.ErrForbidden,
		)
	}

	return a, nil
}

func (s *Service) publish(ctx context.Context, event Event) {
	if s.redis == nil {
		return
	}

	payload, err := event.Marshal()
	if err != nil {
		s.logger.Warn("marshal assignment event failed", "error", err)
		return
	}

	if err := s.redis.Publish(ctx, NotificationChannel, payload).Err(); err != nil {
		s.logger.Warn("publish assignment event failed",
			"channel", NotificationChannel,
			"error", err,
		)
	}
}

func (s *Service) ListNotifications(
	ctx context.Context,
	userID string,
) (*NotificationsResponse, error) {
	notifications, err := s.repo.ListNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &NotificationsResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

func (s *Service) MarkNotificationsRead(
	ctx context.Context,
	userID string,
	ids []string,
) error {
	return s.repo.MarkNotificationsRead(ctx, userID, ids)
}

func (s *Service) PurgeResolved(
	ctx context.Context,
	retention time.Duration,
) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	return s.repo.DeleteResolvedBefore(ctx, cutoff)
}
