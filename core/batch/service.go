package batch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/schedule"
)

var (
	// errors
	ErrNotFound = errors.New("batch not found")
)

type (
	Repository interface {
		CreateBatch(ctx context.Context, b Batch) (Batch, error)
		GetBatchByID(ctx context.Context, id string) (Batch, error)
		// QueryBatches applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Batch.Name or Batch.SoftwaresIncluded.
		QueryBatches(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Batch, error)
		UpdateBatch(ctx context.Context, b Batch) (Batch, error)
		DeleteBatchesByID(ctx context.Context, ids ...string) error
	}

	// EndDateCache memoises computed end dates. A miss is (zero Date, false, nil).
	EndDateCache interface {
		GetEndDate(ctx context.Context, key string) (core.Date, bool, error)
		SetEndDate(ctx context.Context, key string, date core.Date) error
	}

	Service interface {
		Create(ctx context.Context, nb NewBatch) (Batch, error)
		GetByID(ctx context.Context, id string) (Batch, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Batch, error)
		Update(ctx context.Context, id string, ub UpdateBatch) (Batch, error)
		Delete(ctx context.Context, ids ...string) error
		Preview(ctx context.Context, nb NewBatch) (Preview, error)
		Catalog() *schedule.Catalog
	}

	service struct {
		repo    Repository
		cache   EndDateCache
		catalog *schedule.Catalog
		logger  core.Logger
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, cache EndDateCache, catalog *schedule.Catalog, logger core.Logger) Service {
	if catalog == nil {
		catalog = schedule.DefaultCatalog()
	}
	return &service{
		repo:    repo,
		cache:   cache,
		catalog: catalog,
		logger:  logger,
	}
}

func (svc *service) Catalog() *schedule.Catalog {
	return svc.catalog
}

func (svc *service) endDateKey(start core.Date, software string, sched schedule.WeeklySchedule) string {
	rawSched, _ := sched.MarshalJSON()

	h := sha256.New()
	h.Write([]byte(svc.catalog.Fingerprint()))
	h.Write([]byte{0})
	h.Write([]byte(start.String()))
	h.Write([]byte{0})
	h.Write([]byte(software))
	h.Write([]byte{0})
	h.Write(rawSched)
	return "enddate:" + hex.EncodeToString(h.Sum(nil))
}

// expectedEndDate computes the end date through the cache.
// Cache failures are logged and never fail the computation.
func (svc *service) expectedEndDate(ctx context.Context, start core.Date, software string, sched schedule.WeeklySchedule) (core.Date, error) {
	if start.IsZero() || core.CleanString(software) == "" {
		return core.Date{}, nil
	}

	key := svc.endDateKey(start, software, sched)
	if svc.cache != nil {
		date, ok, err := svc.cache.GetEndDate(ctx, key)
		if err != nil {
			svc.logger.Warn("batch: reading end date cache", err)
		} else if ok {
			return date, nil
		}
	}

	date, err := schedule.ExpectedEndDate(start, software, sched, svc.catalog)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidSchedule) {
			return core.Date{}, core.NewValidationError(err, core.FieldError{Field: "schedule", Error: err.Error()})
		}
		return core.Date{}, err
	}

	if svc.cache != nil {
		if err := svc.cache.SetEndDate(ctx, key, date); err != nil {
			svc.logger.Warn("batch: writing end date cache", err)
		}
	}
	return date, nil
}

func (svc *service) Create(ctx context.Context, nb NewBatch) (Batch, error) {
	endDate, err := svc.expectedEndDate(ctx, nb.StartDate, nb.SoftwaresIncluded, nb.Schedule)
	if err != nil {
		return Batch{}, err
	}

	now := time.Now().UTC()
	b := Batch{
		ID:                uuid.New().String(),
		Name:              nb.Name,
		Faculty:           nb.Faculty,
		SoftwaresIncluded: nb.SoftwaresIncluded,
		StartDate:         nb.StartDate,
		Schedule:          nb.Schedule,
		TotalLectures:     svc.catalog.TotalLectures(nb.SoftwaresIncluded),
		ExpectedEndDate:   endDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return svc.repo.CreateBatch(ctx, b)
}

func (svc *service) GetByID(ctx context.Context, id string) (Batch, error) {
	return svc.repo.GetBatchByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Batch, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryBatches(ctx, filter, ordering)
}

// Update expects `ub` to have been validated against the stored batch (see UpdateBatch.Validate).
func (svc *service) Update(ctx context.Context, id string, ub UpdateBatch) (Batch, error) {
	orig, err := svc.repo.GetBatchByID(ctx, id)
	if err != nil {
		return Batch{}, err
	}

	sched := orig.Schedule
	if ub.Schedule != nil {
		sched = *ub.Schedule
	}
	endDate, err := svc.expectedEndDate(ctx, ub.StartDate, ub.SoftwaresIncluded, sched)
	if err != nil {
		return Batch{}, err
	}

	b := Batch{
		ID:                orig.ID,
		Name:              ub.Name,
		Faculty:           ub.Faculty,
		SoftwaresIncluded: ub.SoftwaresIncluded,
		StartDate:         ub.StartDate,
		Schedule:          sched,
		TotalLectures:     svc.catalog.TotalLectures(ub.SoftwaresIncluded),
		ExpectedEndDate:   endDate,
		CreatedAt:         orig.CreatedAt,
		UpdatedAt:         time.Now().UTC(),
	}
	return svc.repo.UpdateBatch(ctx, b)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteBatchesByID(ctx, ids...)
}

func (svc *service) Preview(ctx context.Context, nb NewBatch) (Preview, error) {
	endDate, err := svc.expectedEndDate(ctx, nb.StartDate, nb.SoftwaresIncluded, nb.Schedule)
	if err != nil {
		return Preview{}, err
	}
	unknown := svc.catalog.Unrecognized(nb.SoftwaresIncluded)
	if unknown == nil {
		unknown = []schedule.Suggestion{}
	}
	return Preview{
		TotalLectures:   svc.catalog.TotalLectures(nb.SoftwaresIncluded),
		ExpectedEndDate: endDate,
		Unrecognized:    unknown,
	}, nil
}
