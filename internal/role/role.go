// AngelaMos | 2026
// role.go

package role

// Role strings as they appear in a user's roles list. The user's
// discriminating userType seeds this list at registration; platform_admin
// is only ever granted on top of it.
const (
	Student              = "student"
	SchoolAdmin          = "school_admin"
	EducationManager     = "education_manager"
	Teacher              = "teacher"
	UniversityAdmin      = "university_admin"
	UniversityManager    = "university_manager"
	CompanyEmployer      = "company_employer"
	CompanyHiringManager = "company_hiring_manager"
	CompanyFounder       = "company_founder"
	CompanyCEO           = "company_ceo"
	PlatformAdmin        = "platform_admin"
)

// Entity is the organizational category a user's dashboard is scoped to.
type Entity string

const (
	EntityStudent    Entity = "student"
	EntitySchool     Entity = "school"
	EntityUniversity Entity = "university"
	EntityCompany    Entity = "company"
)

var (
	schoolRoles     = []string{SchoolAdmin, EducationManager, Teacher}
	universityRoles = []string{UniversityAdmin, UniversityManager}
	companyRoles    = []string{
		CompanyEmployer,
		CompanyHiringManager,
		CompanyFounder,
		CompanyCEO,
	}
)

// ResolveEntity maps a role list to the single entity that owns the user's
// dashboard. Precedence is fixed: student beats school beats university
// beats company. Unknown role strings are ignored; an empty or fully
// unknown list resolves to student. Total over its input, never errors.
func ResolveEntity(roles []string) Entity {
	if len(roles) == 0 {
		return EntityStudent
	}

	if HasAnyRole(roles, []string{Student}) {
		return EntityStudent
	}
	if HasAnyRole(roles, schoolRoles) {
		return EntitySchool
	}
	if HasAnyRole(roles, universityRoles) {
		return EntityUniversity
	}
	if HasAnyRole(roles, companyRoles) {
		return EntityCompany
	}

	return EntityStudent
}

// HasAnyRole reports whether the two role lists intersect.
func HasAnyRole(roles, targets []string) bool {
	if len(roles) == 0 || len(targets) == 0 {
		return false
	}

	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}

	for _, t := range targets {
		if _, ok := set[t]; ok {
			return true
		}
	}

	return false
}

// Actor is the signed-in user attempting a table edit.
type Actor struct {
	ID    string
	Roles []string
}

// RowSubject is the table row being edited, when the row represents a user.
type RowSubject struct {
	ID    string
	Roles []string
}

// CanEditRow decides whether an edit control is enabled for actor on row.
// Platform and school admins edit anything; education managers edit student
// rows and their own; everyone edits their own row. This gates UI only;
// handlers re-check permissions on every mutating route.
func CanEditRow(actor Actor, row RowSubject) bool {
	if HasAnyRole(actor.Roles, []string{PlatformAdmin, SchoolAdmin}) {
		return true
	}

	if actor.ID != "" && actor.ID == row.ID {
		return true
	}

	if HasAnyRole(actor.Roles, []string{EducationManager}) {
		return HasAnyRole(row.Roles, []string{Student})
	}

	return false
}
