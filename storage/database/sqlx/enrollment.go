package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/enrollment"
)

const enrollmentColumns = `id, batch_id, student_name, student_email, student_phone, total_fees,
	amount_paid, balance_amount, emi_enabled, emi_start_date, emi_installments, created_at`

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	q := `INSERT INTO enrollment (` + enrollmentColumns + `)
		VALUES (:id, :batch_id, :student_name, :student_email, :student_phone, :total_fees,
			:amount_paid, :balance_amount, :emi_enabled, :emi_start_date, :emi_installments, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, enr); err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo *enrollmentRepository) GetEnrollmentByID(ctx context.Context, id string) (enrollment.Enrollment, error) {
	var enr enrollment.Enrollment
	q := `SELECT ` + enrollmentColumns + ` FROM enrollment WHERE id = $1`
	if err := repo.db.GetContext(ctx, &enr, q, id); err != nil {
		if isNoRows(err) {
			return enrollment.Enrollment{}, enrollment.ErrNotFound
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "selecting enrollment")
	}
	return enr, nil
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering) ([]enrollment.Enrollment, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil && !filter.IsEmpty() {
		if filter.BatchID != "" {
			if len(validIDs([]string{filter.BatchID})) == 0 {
				return make([]enrollment.Enrollment, 0), nil
			}
			where = append(where, "batch_id = ?")
			args = append(args, filter.BatchID)
		}
		if filter.Search != "" {
			where = append(where, "(student_name ILIKE ? OR student_email ILIKE ? OR student_phone ILIKE ?)")
			pattern := "%" + filter.Search + "%"
			args = append(args, pattern, pattern, pattern)
		}
		if filter.EMIOnly {
			where = append(where, "emi_enabled")
		}
	}

	q := `SELECT ` + enrollmentColumns + ` FROM enrollment`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += orderBy(core.MapOrderings(ordering, enrollment.OrderingColumns))

	enrollments := make([]enrollment.Enrollment, 0)
	if err := repo.db.SelectContext(ctx, &enrollments, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting enrollments")
	}
	return enrollments, nil
}

func (repo *enrollmentRepository) DeleteEnrollmentsByID(ctx context.Context, ids ...string) error {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM enrollment WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building enrollment delete")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting enrollments")
	}
	return nil
}
