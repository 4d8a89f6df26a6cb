// AngelaMos | 2026
// entity.go

package assignment

import (
	"strings"
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

// Assignment is a student placement proposal sent by an education
// manager to a company. It is resolved exactly once: pending is the
// only state that permits a transition.
type Assignment struct {
	ID              string     `db:"id"               json:"id"`
	StudentID       string     `db:"student_id"       json:"student_id"`
	CompanyID       string     `db:"company_id"       json:"company_id"`
	Programme       string     `db:"programme"        json:"programme"`
	Cohort          string     `db:"cohort"           json:"cohort"`
	AssignedByID    string     `db:"assigned_by_id"   json:"assigned_by_id"`
	AssignedByName  string     `db:"assigned_by_name" json:"assigned_by_name"`
	AssignedAt      time.Time  `db:"assigned_at"      json:"assigned_at"`
	Status          string     `db:"status"           json:"status"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ResolvedAt      *time.Time `db:"resolved_at"      json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"       json:"updated_at"`
}

func (a *Assignment) IsPending() bool {
	return a.Status == StatusPending
}

func (a *Assignment) IsResolved() bool {
	return a.Status == StatusConfirmed || a.Status == StatusRejected
}

// ValidReason reports whether a rejection reason survives trimming.
// Whitespace-only reasons are treated the same as absent ones.
func ValidReason(reason string) bool {
	return strings.TrimSpace(reason) != ""
}

// Notification is the record written for the originating education
// manager when an assignment is confirmed or rejected.
type Notification struct {
	ID           string    `db:"id"            json:"id"`
	UserID       string    `db:"user_id"       json:"user_id"`
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	Kind         string    `db:"kind"          json:"kind"`
	Message      string    `db:"message"       json:"message"`
	Read         bool      `db:"read"          json:"read"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
}

const (
	NotificationConfirmed = "assignment_confirmed"
	NotificationRejected  = "assignment_rejected"
)
