// AngelaMos | 2026
// entity.go

package dashboard

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/liahub/platform/internal/assignment"
	"github.com/liahub/platform/internal/role"
)

type SectionKey string

const (
	SectionStudents           SectionKey = "students"
	SectionCompanies          SectionKey = "companies"
	SectionLeadingCompanies   SectionKey = "leading_companies"
	SectionEducationalLeaders SectionKey = "educational_leaders"
	SectionAdminManagement    SectionKey = "admin_management"
)

var validSections = map[SectionKey]struct{}{
	SectionStudents:           {},
	SectionCompanies:          {},
	SectionLeadingCompanies:   {},
	SectionEducationalLeaders: {},
	SectionAdminManagement:    {},
}

func (k SectionKey) Valid() bool {
	_, ok := validSections[k]
	return ok
}

// SectionsForEntity maps a resolved entity to the dashboard sections
// it sees. Platform admins additionally get the admin section
// regardless of entity.
func SectionsForEntity(entity role.Entity, platformAdmin bool) []SectionKey {
	var keys []SectionKey

	switch entity {
	case role.EntityStudent:
		keys = []SectionKey{SectionStudents}
	case role.EntitySchool:
		keys = []SectionKey{
			SectionStudents,
			SectionCompanies,
			SectionLeadingCompanies,
			SectionEducationalLeaders,
		}
	case role.EntityUniversity:
		keys = []SectionKey{
			SectionStudents,
			SectionEducationalLeaders,
		}
	case role.EntityCompany:
		keys = []SectionKey{
			SectionCompanies,
			SectionLeadingCompanies,
		}
	}

	if platformAdmin {
		keys = append(keys, SectionAdminManagement)
	}

	return keys
}

type MutationStatus string

const (
	StatusIdle    MutationStatus = "idle"
	StatusPending MutationStatus = "pending"
	StatusSuccess MutationStatus = "success"
	StatusError   MutationStatus = "error"
)

// Fields is the schema-agnostic payload of a row. The manager never
// interprets it; section schemas live in the clients that render them.
type Fields map[string]any

func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal row fields: %w", err)
	}
	return string(data), nil
}

func (f *Fields) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = Fields{}
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("scan row fields: unsupported type %T", src)
	}
}

// Clone is a shallow copy, deep enough for snapshot/rollback because
// merges replace top-level values instead of mutating nested ones.
func (f Fields) Clone() Fields {
	clone := make(Fields, len(f))
	for k, v := range f {
		clone[k] = v
	}
	return clone
}

// Merge lays changes over the receiver, top-level key by key.
func (f Fields) Merge(changes map[string]any) Fields {
	merged := f.Clone()
	for k, v := range changes {
		merged[k] = v
	}
	return merged
}

type Row struct {
	ID         string    `db:"id"          json:"id"`
	SectionKey SectionKey `db:"section_key" json:"-"`
	Fields     Fields    `db:"fields"      json:"fields"`
	Version    int       `db:"version"     json:"version"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
}

// Subject derives the permission subject a row represents. Rows that
// stand for users carry user_id and roles in their fields; rows that
// do not produce an empty subject, which never matches an actor.
func (r *Row) Subject() role.RowSubject {
	subject := role.RowSubject{}

	if id, ok := r.Fields["user_id"].(string); ok {
		subject.ID = id
	}
	if raw, ok := r.Fields["roles"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				subject.Roles = append(subject.Roles, s)
			}
		}
	}

	return subject
}

// Section is the per-key state the manager owns: ordered rows, the
// single-edit marker, and the mutation surface.
type Section struct {
	Key                SectionKey              `json:"key"`
	Rows               []Row                   `json:"rows"`
	EditingRowID       string                  `json:"editing_row_id,omitempty"`
	MutationStatus     MutationStatus          `json:"mutation_status"`
	MutationError      string                  `json:"mutation_error,omitempty"`
	PendingAssignments []assignment.Assignment `json:"pending_assignments,omitempty"`
}

func (s *Section) rowIndex(id string) int {
	for i := range s.Rows {
		if s.Rows[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Section) assignmentIndex(id string) int {
	for i := range s.PendingAssignments {
		if s.PendingAssignments[i].ID == id {
			return i
		}
	}
	return -1
}
