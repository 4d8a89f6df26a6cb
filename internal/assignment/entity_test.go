// AngelaMos | 2026
// entity_test.go

package assignment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liahub/platform/internal/core"
)

func TestValidReason(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   bool
	}{
		{"plain reason", "cohort is full", true},
		{"empty", "", false},
		{"spaces only", "   ", false},
		{"tabs and newlines", "\t\n ", false},
		{"padded reason", "  no capacity  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidReason(tt.reason); got != tt.want {
				t.Errorf("ValidReason(%q) = %v, want %v",
					tt.reason, got, tt.want)
			}
		})
	}
}

func TestAssignmentStatusPredicates(t *testing.T) {
	pending := Assignment{Status: StatusPending}
	confirmed := Assignment{Status: StatusConfirmed}
	rejected := Assignment{Status: StatusRejected}

	require.True(t, pending.IsPending())
	require.False(t, pending.IsResolved())
	require.True(t, confirmed.IsResolved())
	require.True(t, rejected.IsResolved())
	require.False(t, confirmed.IsPending())
}

func TestRejectRefusesBlankReasonBeforeDispatch(t *testing.T) {
	// no repo or db wired: the reason check must fire before any
	// collaborator access
	s := &Service{}

	for _, reason := range []string{"", "   ", "\n\t"} {
		err := s.Reject(context.Background(), "company", "a1", reason)
		require.ErrorIs(t, err, core.ErrInvalidInput)
	}
}
