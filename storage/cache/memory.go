package cache

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/batch"
	"github.com/trezcool/academia/core/enrollment"
)

type (
	draftEntry struct {
		draft     enrollment.Draft
		expiresAt time.Time
	}

	// MemoryStore is the in-process counterpart of RedisStore, for dev & tests.
	MemoryStore struct {
		sync.RWMutex
		drafts   map[string]draftEntry
		endDates map[string]core.Date
		draftTTL time.Duration
		now      func() time.Time // mockable
	}
)

var (
	// interface compliance checks
	_ enrollment.DraftStore = (*MemoryStore)(nil)
	_ batch.EndDateCache    = (*MemoryStore)(nil)
)

func NewMemoryStore(conf *core.Config) *MemoryStore {
	return &MemoryStore{
		drafts:   make(map[string]draftEntry),
		endDates: make(map[string]core.Date),
		draftTTL: conf.Redis.DraftTTL,
		now:      time.Now,
	}
}

// clone deep copies the plan so that callers never share slices or sets with the store.
func clone(d enrollment.Draft) enrollment.Draft {
	plan := d.EMIPlan
	plan.Installments = append(plan.Installments[:0:0], plan.Installments...)
	plan.CustomAmounts = plan.CustomAmounts.Clone()
	plan.CustomDates = plan.CustomDates.Clone()
	d.EMIPlan = plan
	return d
}

func (s *MemoryStore) SaveDraft(_ context.Context, d enrollment.Draft) error {
	s.Lock()
	defer s.Unlock()

	entry := draftEntry{draft: clone(d)}
	if s.draftTTL > 0 {
		entry.expiresAt = s.now().Add(s.draftTTL)
	}
	s.drafts[d.ID] = entry
	return nil
}

func (s *MemoryStore) get(id string) (draftEntry, bool) {
	entry, ok := s.drafts[id]
	if !ok {
		return draftEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		return draftEntry{}, false
	}
	return entry, true
}

func (s *MemoryStore) GetDraft(_ context.Context, id string) (enrollment.Draft, error) {
	s.RLock()
	defer s.RUnlock()

	entry, ok := s.get(id)
	if !ok {
		return enrollment.Draft{}, enrollment.ErrDraftNotFound
	}
	return clone(entry.draft), nil
}

func (s *MemoryStore) DeleteDraft(_ context.Context, id string) error {
	s.Lock()
	defer s.Unlock()

	_, ok := s.get(id)
	delete(s.drafts, id)
	if !ok {
		return enrollment.ErrDraftNotFound
	}
	return nil
}

func (s *MemoryStore) GetEndDate(_ context.Context, key string) (core.Date, bool, error) {
	s.RLock()
	defer s.RUnlock()

	date, ok := s.endDates[key]
	return date, ok, nil
}

func (s *MemoryStore) SetEndDate(_ context.Context, key string, date core.Date) error {
	s.Lock()
	defer s.Unlock()

	s.endDates[key] = date
	return nil
}
