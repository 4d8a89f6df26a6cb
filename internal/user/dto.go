// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateUserRequest struct {
	FirstName *string  `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string  `json:"last_name,omitempty"  validate:"omitempty,min=1,max=100"`
	Headline  *string  `json:"headline,omitempty"   validate:"omitempty,max=200"`
	Phone     *string  `json:"phone,omitempty"      validate:"omitempty,max=30"`
	AvatarURL *string  `json:"avatar_url,omitempty" validate:"omitempty,url,max=500"`
	CoverURL  *string  `json:"cover_url,omitempty"  validate:"omitempty,url,max=500"`
	Profile   *Profile `json:"profile,omitempty"`
}

type UpdateUserRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,min=1,max=50"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	UserType  string    `json:"user_type"`
	Roles     []string  `json:"roles"`
	Entity    string    `json:"entity"`
	Profile   Profile   `json:"profile"`
	Headline  *string   `json:"headline,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CoverURL  *string   `json:"cover_url,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	UserType string `json:"user_type"`
	Status   string `json:"status"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.Email,
		UserType:  u.UserType,
		Roles:     u.Roles,
		Entity:    string(u.Entity()),
		Profile:   u.Profile,
		Headline:  u.Headline,
		Phone:     u.Phone,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
