package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/batch"
)

var batchFields = map[string]comparator[batch.Batch]{
	"name":            func(a, b batch.Batch) int { return compareStrings(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	"faculty":         func(a, b batch.Batch) int { return compareStrings(strings.ToLower(a.Faculty), strings.ToLower(b.Faculty)) },
	"startDate":       func(a, b batch.Batch) int { return compareDates(a.StartDate, b.StartDate) },
	"expectedEndDate": func(a, b batch.Batch) int { return compareDates(a.ExpectedEndDate, b.ExpectedEndDate) },
	"createdAt":       func(a, b batch.Batch) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

type batchRepository struct {
	db *DB
}

var _ batch.Repository = (*batchRepository)(nil) // interface compliance check

func NewBatchRepository(db *DB) batch.Repository {
	return &batchRepository{db: db}
}

func (repo *batchRepository) CreateBatch(_ context.Context, b batch.Batch) (batch.Batch, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.batches[b.ID] = row[batch.Batch]{seq: repo.db.nextSeq(), val: b}
	return b, nil
}

func (repo *batchRepository) GetBatchByID(_ context.Context, id string) (batch.Batch, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.batches[id]; ok {
		return r.val, nil
	}
	return batch.Batch{}, batch.ErrNotFound
}

func (repo *batchRepository) QueryBatches(_ context.Context, filter *batch.QueryFilter, ordering []core.DBOrdering) ([]batch.Batch, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]row[batch.Batch], 0, len(repo.db.batches))
	for _, r := range repo.db.batches {
		if filter == nil || matchBatch(r.val, filter) {
			rows = append(rows, r)
		}
	}
	return sortRows(rows, ordering, batchFields), nil
}

func matchBatch(b batch.Batch, filter *batch.QueryFilter) bool {
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !(strings.Contains(strings.ToLower(b.Name), search) ||
			strings.Contains(strings.ToLower(b.SoftwaresIncluded), search)) {
			return false
		}
	}
	if filter.Faculty != "" && !strings.EqualFold(b.Faculty, filter.Faculty) {
		return false
	}
	if !filter.StartFrom.IsZero() && (b.StartDate.IsZero() || b.StartDate.Before(filter.StartFrom)) {
		return false
	}
	if !filter.StartTo.IsZero() && (b.StartDate.IsZero() || b.StartDate.After(filter.StartTo)) {
		return false
	}
	return true
}

func (repo *batchRepository) UpdateBatch(_ context.Context, b batch.Batch) (batch.Batch, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r, ok := repo.db.batches[b.ID]
	if !ok {
		return batch.Batch{}, batch.ErrNotFound
	}
	r.val = b
	repo.db.batches[b.ID] = r
	return b, nil
}

// DeleteBatchesByID also deletes the enrollments of the batches.
func (repo *batchRepository) DeleteBatchesByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.batches, id)
		for enrID, r := range repo.db.enrollments {
			if r.val.BatchID == id {
				delete(repo.db.enrollments, enrID)
			}
		}
	}
	return nil
}
