// AngelaMos | 2026
// stats.go

package admin

import (
	"context"
	"fmt"

	"github.com/liahub/platform/internal/core"
)

// StatsRepository computes the platform counters straight off the
// primary tables. Admin traffic is rare enough that no caching or
// rollup is worth its complexity here.
type StatsRepository struct {
	db core.DBTX
}

func NewStatsRepository(db core.DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

var _ PlatformStats = (*StatsRepository)(nil)

func (r *StatsRepository) CountUsers(
	ctx context.Context,
) (UserCounts, error) {
	counts := UserCounts{ByType: make(map[string]int)}

	query := `
		SELECT user_type, status, COUNT(*) AS n
		FROM users
		GROUP BY user_type, status`

	rows := []struct {
		UserType string `db:"user_type"`
		Status   string `db:"status"`
		N        int    `db:"n"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return UserCounts{}, fmt.Errorf("count users: %w", err)
	}

	for _, row := range rows {
		counts.Total += row.N
		counts.ByType[row.UserType] += row.N
		if row.Status == "active" {
			counts.Active += row.N
		} else {
			counts.Inactive += row.N
		}
	}

	return counts, nil
}

func (r *StatsRepository) CountAssignments(
	ctx context.Context,
) (AssignmentCounts, error) {
	query := `
		SELECT status, COUNT(*) AS n
		FROM assignments
		GROUP BY status`

	rows := []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return AssignmentCounts{}, fmt.Errorf("count assignments: %w", err)
	}

	var counts AssignmentCounts
	for _, row := range rows {
		switch row.Status {
		case "pending":
			counts.Pending = row.N
		case "confirmed":
			counts.Confirmed = row.N
		case "rejected":
			counts.Rejected = row.N
		}
	}

	return counts, nil
}
