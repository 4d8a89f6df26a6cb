// AngelaMos | 2026
// role_test.go

package role

import (
	"testing"
)

func TestResolveEntity(t *testing.T) {
	cases := map[string]struct {
		roles []string
		want  Entity
	}{
		"nil roles":            {nil, EntityStudent},
		"empty roles":          {[]string{}, EntityStudent},
		"student":              {[]string{Student}, EntityStudent},
		"school admin":         {[]string{SchoolAdmin}, EntitySchool},
		"education manager":    {[]string{EducationManager}, EntitySchool},
		"teacher":              {[]string{Teacher}, EntitySchool},
		"university admin":     {[]string{UniversityAdmin}, EntityUniversity},
		"university manager":   {[]string{UniversityManager}, EntityUniversity},
		"company employer":     {[]string{CompanyEmployer}, EntityCompany},
		"company ceo":          {[]string{CompanyCEO}, EntityCompany},
		"unknown role only":    {[]string{"janitor"}, EntityStudent},
		"platform admin only":  {[]string{PlatformAdmin}, EntityStudent},
		"student beats ceo":    {[]string{Student, CompanyCEO}, EntityStudent},
		"school beats company": {[]string{CompanyCEO, Teacher}, EntitySchool},
		"university beats company": {
			[]string{CompanyFounder, UniversityManager},
			EntityUniversity,
		},
	}

	for name, tc := range cases {
		got := ResolveEntity(tc.roles)
		if got != tc.want {
			t.Fatalf("%s: expected %s, got %s", name, tc.want, got)
		}
	}
}

func TestResolveEntityNeverLeavesValidSet(t *testing.T) {
	valid := map[Entity]bool{
		EntityStudent:    true,
		EntitySchool:     true,
		EntityUniversity: true,
		EntityCompany:    true,
	}

	inputs := [][]string{
		nil,
		{},
		{""},
		{"", "", ""},
		{"nonsense", "more nonsense"},
		{Student, SchoolAdmin, CompanyCEO, PlatformAdmin},
	}

	for _, roles := range inputs {
		if got := ResolveEntity(roles); !valid[got] {
			t.Fatalf("roles %v resolved to invalid entity %q", roles, got)
		}
	}
}

func TestHasAnyRole(t *testing.T) {
	if !HasAnyRole([]string{Student, Teacher}, []string{Teacher}) {
		t.Fatal("expected overlapping lists to match")
	}
	if HasAnyRole([]string{Student}, []string{CompanyCEO}) {
		t.Fatal("expected disjoint lists not to match")
	}
	if HasAnyRole(nil, []string{Student}) {
		t.Fatal("expected nil roles not to match")
	}
	if HasAnyRole([]string{Student}, nil) {
		t.Fatal("expected nil targets not to match")
	}
}

func TestCanEditRow(t *testing.T) {
	cases := map[string]struct {
		actor Actor
		row   RowSubject
		want  bool
	}{
		"platform admin edits anything": {
			Actor{ID: "u1", Roles: []string{PlatformAdmin}},
			RowSubject{ID: "r1", Roles: []string{CompanyCEO}},
			true,
		},
		"school admin edits anything": {
			Actor{ID: "u1", Roles: []string{SchoolAdmin}},
			RowSubject{ID: "r1", Roles: []string{UniversityAdmin}},
			true,
		},
		"education manager edits student row": {
			Actor{ID: "u1", Roles: []string{EducationManager}},
			RowSubject{ID: "r1", Roles: []string{Student}},
			true,
		},
		"education manager denied non-student row": {
			Actor{ID: "u1", Roles: []string{EducationManager}},
			RowSubject{ID: "r1", Roles: []string{CompanyCEO}},
			false,
		},
		"education manager edits own row": {
			Actor{ID: "u1", Roles: []string{EducationManager}},
			RowSubject{ID: "u1", Roles: []string{EducationManager}},
			true,
		},
		"anyone edits own row": {
			Actor{ID: "u1", Roles: []string{CompanyEmployer}},
			RowSubject{ID: "u1", Roles: []string{CompanyEmployer}},
			true,
		},
		"stranger denied": {
			Actor{ID: "u1", Roles: []string{Student}},
			RowSubject{ID: "r1", Roles: []string{Student}},
			false,
		},
		"empty actor id does not match empty row id": {
			Actor{ID: "", Roles: []string{Student}},
			RowSubject{ID: "", Roles: []string{Student}},
			false,
		},
	}

	for name, tc := range cases {
		if got := CanEditRow(tc.actor, tc.row); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", name, tc.want, got)
		}
	}
}
