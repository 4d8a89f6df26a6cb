// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/liahub/platform/internal/auth"
	"github.com/liahub/platform/internal/core"
	"github.com/liahub/platform/internal/role"
)

// Service wires user persistence to the auth layer and the admin
// surface. It is the auth package's UserProvider.
type Service struct {
	repo Repository
}

var _ auth.UserProvider = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	params auth.CreateUserParams,
) (*auth.UserInfo, error) {
	if !IsValidType(params.UserType) {
		return nil, fmt.Errorf(
			"create user: unknown user type %q: %w",
			params.UserType,
			core.ErrInvalidInput,
		)
	}

	var profile Profile
	if len(params.Profile) > 0 {
		if err := json.Unmarshal(params.Profile, &profile); err != nil {
			return nil, fmt.Errorf(
				"create user: decode profile: %w",
				core.ErrInvalidInput,
			)
		}
	}
	if !profile.MatchesType(params.UserType) {
		return nil, fmt.Errorf(
			"create user: profile does not match user type %q: %w",
			params.UserType,
			core.ErrInvalidInput,
		)
	}

	email := strings.ToLower(params.Email)

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, auth.ErrEmailExists
	}

	if _, err := s.repo.GetByUsername(ctx, params.Username); err == nil {
		return nil, auth.ErrUsernameExists
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	user := &User{
		ID:           uuid.New().String(),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Username:     params.Username,
		Email:        email,
		PasswordHash: params.PasswordHash,
		UserType:     params.UserType,
		Roles:        DefaultRolesForType(params.UserType),
		Profile:      profile,
		Status:       StatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// duplicate slipping past the pre-checks under concurrency
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, auth.ErrEmailExists
		}
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Headline != nil {
		user.Headline = req.Headline
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if req.CoverURL != nil {
		user.CoverURL = req.CoverURL
	}
	if req.Profile != nil {
		if !req.Profile.MatchesType(user.UserType) {
			return nil, fmt.Errorf(
				"update user: profile does not match user type %q: %w",
				user.UserType,
				core.ErrInvalidInput,
			)
		}
		user.Profile = *req.Profile
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateUserRoles(
	ctx context.Context,
	id string,
	roles []string,
) (*User, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf(
			"update roles: empty role list: %w",
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRoles(ctx, id, roles); err != nil {
		return nil, err
	}

	user.Roles = roles

	// role grants change what the token is allowed to do, so force
	// every outstanding session to re-authenticate
	if err := s.repo.IncrementTokenVersion(ctx, id); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) SetUserStatus(
	ctx context.Context,
	id, status string,
) (*User, error) {
	if status != StatusActive && status != StatusInactive {
		return nil, fmt.Errorf(
			"set status: invalid status %q: %w",
			status,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Status == status {
		return user, nil
	}

	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}

	user.Status = status

	if status == StatusInactive {
		if err := s.repo.IncrementTokenVersion(ctx, id); err != nil {
			return nil, err
		}
	}

	return user, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()
	return s.repo.List(ctx, params)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.UpdateUser(ctx, userID, req)
}

// CanEditUser enforces the row edit rule on the user surface: platform
// and school admins edit anyone, education managers edit students and
// themselves, everyone edits their own record.
func (s *Service) CanEditUser(
	ctx context.Context,
	actor role.Actor,
	targetID string,
) error {
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	subject := role.RowSubject{ID: target.ID, Roles: target.Roles}
	if !role.CanEditRow(actor, subject) {
		return fmt.Errorf(
			"edit user %s: %w",
			targetID,
			core.ErrForbidden,
		)
	}

	return nil
}

func (s *Service) DisplayName(
	ctx context.Context,
	userID string,
) (string, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	return user.FullName(), nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		UserType:     u.UserType,
		Roles:        u.Roles,
		TokenVersion: u.TokenVersion,
	}
}
