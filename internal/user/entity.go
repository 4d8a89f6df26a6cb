// AngelaMos | 2026
// entity.go

package user

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/liahub/platform/internal/role"
)

// User is the single identity record for every account on the platform.
// UserType discriminates the account into exactly one sub-type and decides
// which Profile payload is populated; Roles is the separate cross-cutting
// permission list that entity resolution and edit gating run on.
type User struct {
	ID           string     `db:"id"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	UserType     string     `db:"user_type"`
	Roles        StringList `db:"roles"`
	Profile      Profile    `db:"profile"`
	Headline     *string    `db:"headline"`
	Phone        *string    `db:"phone"`
	AvatarURL    *string    `db:"avatar_url"`
	CoverURL     *string    `db:"cover_url"`
	Status       string     `db:"status"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Account sub-types (the discriminant). School teachers carry the plain
// "teacher" role; every other type's default role matches its type string.
const (
	TypeStudent              = "student"
	TypeSchoolAdmin          = "school_admin"
	TypeSchoolTeacher        = "school_teacher"
	TypeEducationManager     = "education_manager"
	TypeUniversityAdmin      = "university_admin"
	TypeUniversityManager    = "university_manager"
	TypeCompanyEmployer      = "company_employer"
	TypeCompanyHiringManager = "company_hiring_manager"
	TypeCompanyFounder       = "company_founder"
	TypeCompanyCEO           = "company_ceo"
)

var validTypes = map[string]struct{}{
	TypeStudent:              {},
	TypeSchoolAdmin:          {},
	TypeSchoolTeacher:        {},
	TypeEducationManager:     {},
	TypeUniversityAdmin:      {},
	TypeUniversityManager:    {},
	TypeCompanyEmployer:      {},
	TypeCompanyHiringManager: {},
	TypeCompanyFounder:       {},
	TypeCompanyCEO:           {},
}

func IsValidType(userType string) bool {
	_, ok := validTypes[userType]
	return ok
}

// DefaultRolesForType seeds the roles list at registration from the
// chosen sub-type.
func DefaultRolesForType(userType string) []string {
	if userType == TypeSchoolTeacher {
		return []string{role.Teacher}
	}
	return []string{userType}
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func (u *User) IsPlatformAdmin() bool {
	return role.HasAnyRole(u.Roles, []string{role.PlatformAdmin})
}

func (u *User) Entity() role.Entity {
	return role.ResolveEntity(u.Roles)
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// StringList stores a []string as a JSONB column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}
}

// Profile is the sub-type specific payload. Exactly one branch is set,
// matching the user's discriminant; the whole value lives in one JSONB
// column so adding a sub-type never needs a schema change.
type Profile struct {
	Student *StudentProfile `json:"student,omitempty"`
	Staff   *StaffProfile   `json:"staff,omitempty"`
	Company *CompanyProfile `json:"company,omitempty"`
}

type StudentProfile struct {
	Specializations []string `json:"specializations,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Year            int      `json:"year,omitempty"`
	Cohort          string   `json:"cohort,omitempty"`
}

type StaffProfile struct {
	Designation string `json:"designation,omitempty"`
}

type CompanyProfile struct {
	CompanyName  string   `json:"company_name,omitempty"`
	Industries   []string `json:"industries,omitempty"`
	Headquarters string   `json:"headquarters,omitempty"`
}

func (p Profile) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return string(data), nil
}

func (p *Profile) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = Profile{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("scan profile: unsupported type %T", src)
	}
}

// MatchesType reports whether the populated profile branch agrees with
// the discriminant.
func (p Profile) MatchesType(userType string) bool {
	switch userType {
	case TypeStudent:
		return p.Staff == nil && p.Company == nil
	case TypeSchoolAdmin, TypeSchoolTeacher, TypeEducationManager,
		TypeUniversityAdmin, TypeUniversityManager:
		return p.Student == nil && p.Company == nil
	default:
		return p.Student == nil && p.Staff == nil
	}
}
