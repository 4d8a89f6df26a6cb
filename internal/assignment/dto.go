// AngelaMos | 2026
// dto.go

package assignment

import "encoding/json"

type CreateAssignmentRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	CompanyID string `json:"company_id" validate:"required,uuid4"`
	Programme string `json:"programme"  validate:"required,min=1,max=200"`
	Cohort    string `json:"cohort"     validate:"omitempty,max=100"`
}

type RejectAssignmentRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids" validate:"required,min=1,dive,uuid4"`
}

type NotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// Event is the payload published on the notification channel when an
// assignment is resolved. Consumers fan it out to connected managers.
type Event struct {
	Kind         string `json:"kind"`
	AssignmentID string `json:"assignment_id"`
	StudentID    string `json:"student_id"`
	ManagerID    string `json:"manager_id"`
	Reason       string `json:"reason,omitempty"`
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
