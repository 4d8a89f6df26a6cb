// AngelaMos | 2026
// entity_test.go

package dashboard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liahub/platform/internal/role"
)

func TestSectionsForEntity(t *testing.T) {
	tests := []struct {
		name          string
		entity        role.Entity
		platformAdmin bool
		want          []SectionKey
	}{
		{
			name:   "student",
			entity: role.EntityStudent,
			want:   []SectionKey{SectionStudents},
		},
		{
			name:   "school",
			entity: role.EntitySchool,
			want: []SectionKey{
				SectionStudents,
				SectionCompanies,
				SectionLeadingCompanies,
				SectionEducationalLeaders,
			},
		},
		{
			name:   "university",
			entity: role.EntityUniversity,
			want: []SectionKey{
				SectionStudents,
				SectionEducationalLeaders,
			},
		},
		{
			name:   "company",
			entity: role.EntityCompany,
			want: []SectionKey{
				SectionCompanies,
				SectionLeadingCompanies,
			},
		},
		{
			name:          "platform admin gets admin section",
			entity:        role.EntitySchool,
			platformAdmin: true,
			want: []SectionKey{
				SectionStudents,
				SectionCompanies,
				SectionLeadingCompanies,
				SectionEducationalLeaders,
				SectionAdminManagement,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SectionsForEntity(tt.entity, tt.platformAdmin)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRowSubject(t *testing.T) {
	row := Row{
		Fields: Fields{
			"user_id": "u1",
			"roles":   []any{"student", 42, "school_admin"},
		},
	}

	subject := row.Subject()
	require.Equal(t, "u1", subject.ID)
	require.Equal(t, []string{"student", "school_admin"}, subject.Roles)

	// a row that does not represent a user yields an empty subject
	plain := Row{Fields: Fields{"business": "Acme"}}
	require.Empty(t, plain.Subject().ID)
	require.Empty(t, plain.Subject().Roles)
}

func TestFieldsMergeIsShallowAndNonMutating(t *testing.T) {
	base := Fields{"a": 1, "b": "keep"}
	merged := base.Merge(map[string]any{"a": 2, "c": true})

	require.Equal(t, Fields{"a": 2, "b": "keep", "c": true}, merged)
	require.Equal(t, Fields{"a": 1, "b": "keep"}, base)
}
