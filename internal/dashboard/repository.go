// AngelaMos | 2026
// repository.go

package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/liahub/platform/internal/core"
)

type Repository interface {
	CreateRow(ctx context.Context, row *Row) error
	GetRow(ctx context.Context, section SectionKey, id string) (*Row, error)
	ListRows(ctx context.Context, section SectionKey) ([]Row, error)
	UpdateRowFields(
		ctx context.Context,
		section SectionKey,
		id string,
		fields Fields,
		version int,
	) (*Row, error)
	DeleteRow(ctx context.Context, section SectionKey, id string) error
	CountRows(ctx context.Context, section SectionKey) (int, error)
}

const rowColumns = `
	id, section_key, fields, version, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRow(ctx context.Context, row *Row) error {
	query := `
		INSERT INTO section_rows (id, section_key, fields)
		VALUES ($1, $2, $3)
		RETURNING version, created_at, updated_at`

	err := r.db.GetContext(ctx, row, query,
		row.ID,
		row.SectionKey,
		row.Fields,
	)
	if err != nil {
		return fmt.Errorf("create row: %w", err)
	}

	return nil
}

func (r *repository) GetRow(
	ctx context.Context,
	section SectionKey,
	id string,
) (*Row, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM section_rows
		WHERE id = $1 AND section_key = $2`, rowColumns)

	var row Row
	err := r.db.GetContext(ctx, &row, query, id, section)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get row: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get row: %w", err)
	}

	return &row, nil
}

func (r *repository) ListRows(
	ctx context.Context,
	section SectionKey,
) ([]Row, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM section_rows
		WHERE section_key = $1
		ORDER BY created_at ASC`, rowColumns)

	rows := []Row{}
	if err := r.db.SelectContext(ctx, &rows, query, section); err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}

	return rows, nil
}

// UpdateRowFields persists merged fields behind a version check. A
// version mismatch means someone else wrote first; the caller decides
// whether to refetch and retry.
func (r *repository) UpdateRowFields(
	ctx context.Context,
	section SectionKey,
	id string,
	fields Fields,
	version int,
) (*Row, error) {
	query := fmt.Sprintf(`
		UPDATE section_rows
		SET fields = $3,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND section_key = $2 AND version = $4
		RETURNING %s`, rowColumns)

	var row Row
	err := r.db.GetContext(ctx, &row, query, id, section, fields, version)
	if errors.Is(err, sql.ErrNoRows) {
		// distinguish a vanished row from a lost version race
		if _, getErr := r.GetRow(ctx, section, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf(
			"update row %s: concurrent modification: %w",
			id, core.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("update row: %w", err)
	}

	return &row, nil
}

func (r *repository) DeleteRow(
	ctx context.Context,
	section SectionKey,
	id string,
) error {
	query := `
		DELETE FROM section_rows
		WHERE id = $1 AND section_key = $2`

	result, err := r.db.ExecContext(ctx, query, id, section)
	if err != nil {
		return fmt.Errorf("delete row: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete row %s: %w", id, core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountRows(
	ctx context.Context,
	section SectionKey,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM section_rows
		WHERE section_key = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, section); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}

	return count, nil
}
