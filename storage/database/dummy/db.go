package dummydb

import (
	"sort"
	"sync"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/batch"
	"github.com/trezcool/academia/core/enrollment"
)

type (
	// DB is an in-memory database. Rows keep their insertion sequence so that
	// ties on created_at still sort deterministically.
	DB struct {
		sync.RWMutex
		seq         int
		batches     map[string]row[batch.Batch]
		enrollments map[string]row[enrollment.Enrollment]
	}

	row[T any] struct {
		seq int
		val T
	}
)

func Open() (*DB, error) {
	db := &DB{
		batches:     make(map[string]row[batch.Batch]),
		enrollments: make(map[string]row[enrollment.Enrollment]),
	}
	return db, nil
}

// Reset empties every table.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	db.batches = make(map[string]row[batch.Batch])
	db.enrollments = make(map[string]row[enrollment.Enrollment])
}

func (db *DB) nextSeq() int {
	db.seq++
	return db.seq
}

type comparator[T any] func(a, b T) int

// sortRows orders rows by the given orderings, using `fields` to compare API fields.
// Unknown fields are ignored; without any ordering, the newest rows come first.
func sortRows[T any](rows []row[T], ordering []core.DBOrdering, fields map[string]comparator[T]) []T {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range ordering {
			cmp, ok := fields[ord.Field]
			if !ok {
				continue
			}
			c := cmp(rows[i].val, rows[j].val)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return rows[i].seq > rows[j].seq
	})

	vals := make([]T, 0, len(rows))
	for _, r := range rows {
		vals = append(vals, r.val)
	}
	return vals
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareDates(a, b core.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
