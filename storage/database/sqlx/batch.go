package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/batch"
)

const batchColumns = `id, name, faculty, softwares_included, start_date, schedule,
	total_lectures, expected_end_date, created_at, updated_at`

type batchRepository struct {
	db *sqlx.DB
}

var _ batch.Repository = (*batchRepository)(nil) // interface compliance check

func NewBatchRepository(db *sqlx.DB) batch.Repository {
	return &batchRepository{db: db}
}

// invalidTextRepresentation is raised by postgres when e.g. an id is not a valid UUID.
const invalidTextRepresentation = pq.ErrorCode("22P02")

// isNoRows reports whether err means the looked up row cannot exist: no rows, or a malformed id.
func isNoRows(err error) bool {
	if err == sql.ErrNoRows {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}

// validIDs drops the ids that are not UUIDs; they match no row.
func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	return valid
}

// trapNoRowsErr maps "no rows" err to batch.ErrNotFound
func (repo *batchRepository) trapNoRowsErr(err error, msg string) error {
	if isNoRows(err) {
		return batch.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *batchRepository) CreateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	q := `INSERT INTO batch (` + batchColumns + `)
		VALUES (:id, :name, :faculty, :softwares_included, :start_date, :schedule,
			:total_lectures, :expected_end_date, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, b); err != nil {
		return batch.Batch{}, errors.Wrap(err, "inserting batch")
	}
	return b, nil
}

func (repo *batchRepository) GetBatchByID(ctx context.Context, id string) (batch.Batch, error) {
	var b batch.Batch
	q := `SELECT ` + batchColumns + ` FROM batch WHERE id = $1`
	if err := repo.db.GetContext(ctx, &b, q, id); err != nil {
		return batch.Batch{}, repo.trapNoRowsErr(err, "selecting batch")
	}
	return b, nil
}

func (repo *batchRepository) QueryBatches(ctx context.Context, filter *batch.QueryFilter, ordering []core.DBOrdering) ([]batch.Batch, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			where = append(where, "(name ILIKE ? OR softwares_included ILIKE ?)")
			pattern := "%" + filter.Search + "%"
			args = append(args, pattern, pattern)
		}
		if filter.Faculty != "" {
			where = append(where, "faculty ILIKE ?")
			args = append(args, filter.Faculty)
		}
		if !filter.StartFrom.IsZero() {
			where = append(where, "start_date >= ?")
			args = append(args, filter.StartFrom)
		}
		if !filter.StartTo.IsZero() {
			where = append(where, "start_date <= ?")
			args = append(args, filter.StartTo)
		}
	}

	q := `SELECT ` + batchColumns + ` FROM batch`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += orderBy(core.MapOrderings(ordering, batch.OrderingColumns))

	batches := make([]batch.Batch, 0)
	if err := repo.db.SelectContext(ctx, &batches, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting batches")
	}
	return batches, nil
}

func (repo *batchRepository) UpdateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	q := `UPDATE batch SET
			name = :name,
			faculty = :faculty,
			softwares_included = :softwares_included,
			start_date = :start_date,
			schedule = :schedule,
			total_lectures = :total_lectures,
			expected_end_date = :expected_end_date,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, b)
	if err != nil {
		return batch.Batch{}, repo.trapNoRowsErr(err, "updating batch")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return batch.Batch{}, batch.ErrNotFound
	}
	return b, nil
}

func (repo *batchRepository) DeleteBatchesByID(ctx context.Context, ids ...string) error {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM batch WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building batch delete")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting batches")
	}
	return nil
}

// orderBy renders an ORDER BY clause; `ordering` must only hold known columns (see core.MapOrderings).
func orderBy(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return " ORDER BY created_at DESC"
	}
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		clauses = append(clauses, ord.String())
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
