package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/enrollment"
)

var enrollmentFields = map[string]comparator[enrollment.Enrollment]{
	"studentName": func(a, b enrollment.Enrollment) int {
		return compareStrings(strings.ToLower(a.StudentName), strings.ToLower(b.StudentName))
	},
	"totalFees":     func(a, b enrollment.Enrollment) int { return a.TotalFees.Cmp(b.TotalFees) },
	"balanceAmount": func(a, b enrollment.Enrollment) int { return a.BalanceAmount.Cmp(b.BalanceAmount) },
	"createdAt":     func(a, b enrollment.Enrollment) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.enrollments[enr.ID] = row[enrollment.Enrollment]{seq: repo.db.nextSeq(), val: enr}
	return enr, nil
}

func (repo *enrollmentRepository) GetEnrollmentByID(_ context.Context, id string) (enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.enrollments[id]; ok {
		return r.val, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) QueryEnrollments(_ context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering) ([]enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]row[enrollment.Enrollment], 0, len(repo.db.enrollments))
	for _, r := range repo.db.enrollments {
		if filter == nil || matchEnrollment(r.val, filter) {
			rows = append(rows, r)
		}
	}
	return sortRows(rows, ordering, enrollmentFields), nil
}

func matchEnrollment(enr enrollment.Enrollment, filter *enrollment.QueryFilter) bool {
	if filter.BatchID != "" && enr.BatchID != filter.BatchID {
		return false
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !(strings.Contains(strings.ToLower(enr.StudentName), search) ||
			strings.Contains(strings.ToLower(enr.StudentEmail), search) ||
			strings.Contains(strings.ToLower(enr.StudentPhone), search)) {
			return false
		}
	}
	if filter.EMIOnly && !enr.EMIEnabled {
		return false
	}
	return true
}

func (repo *enrollmentRepository) DeleteEnrollmentsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.enrollments, id)
	}
	return nil
}
