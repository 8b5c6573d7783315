package batch

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/schedule"
)

// OrderingColumns maps the API ordering fields to their columns.
var OrderingColumns = map[string]string{
	"name":            "name",
	"faculty":         "faculty",
	"startDate":       "start_date",
	"expectedEndDate": "expected_end_date",
	"createdAt":       "created_at",
}

type Batch struct {
	ID                string                  `json:"id" db:"id"`
	Name              string                  `json:"name" db:"name"`
	Faculty           string                  `json:"faculty" db:"faculty"`
	SoftwaresIncluded string                  `json:"softwaresIncluded" db:"softwares_included"`
	StartDate         core.Date               `json:"startDate" db:"start_date"`
	Schedule          schedule.WeeklySchedule `json:"schedule" db:"schedule"`
	TotalLectures     int                     `json:"totalLectures" db:"total_lectures"`
	ExpectedEndDate   core.Date               `json:"expectedEndDate" db:"expected_end_date"` // zero: N/A
	CreatedAt         time.Time               `json:"createdAt" db:"created_at"`              // UTC
	UpdatedAt         time.Time               `json:"updatedAt" db:"updated_at"`              // UTC
}

// NewBatch contains information needed to create a new Batch.
type NewBatch struct {
	Name              string                  `json:"name" validate:"notblank,max=100"`
	Faculty           string                  `json:"faculty" validate:"max=100"`
	SoftwaresIncluded string                  `json:"softwaresIncluded" validate:"notblank"`
	StartDate         core.Date               `json:"startDate"`
	Schedule          schedule.WeeklySchedule `json:"schedule"`
}

func (nb *NewBatch) Validate(validate *validator.Validate) error {
	nb.Name = core.CleanString(nb.Name)
	nb.Faculty = core.CleanString(nb.Faculty)
	nb.SoftwaresIncluded = core.CleanString(nb.SoftwaresIncluded)

	if err := validate.Struct(nb); err != nil {
		return err
	}
	if flds := nb.Schedule.Validate(); len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// UpdateBatch defines what information may be provided to modify an existing Batch.
// Blank fields keep their current value; a null schedule too, while `{}` clears it.
type UpdateBatch struct {
	Name              string                   `json:"name" validate:"max=100"`
	Faculty           string                   `json:"faculty" validate:"max=100"`
	SoftwaresIncluded string                   `json:"softwaresIncluded"`
	StartDate         core.Date                `json:"startDate"`
	Schedule          *schedule.WeeklySchedule `json:"schedule"`
}

func (ub *UpdateBatch) Validate(orig Batch, validate *validator.Validate) error {
	if name := core.CleanString(ub.Name); name != "" {
		ub.Name = name
	} else {
		ub.Name = orig.Name
	}

	if faculty := core.CleanString(ub.Faculty); faculty != "" {
		ub.Faculty = faculty
	} else {
		ub.Faculty = orig.Faculty
	}

	if sw := core.CleanString(ub.SoftwaresIncluded); sw != "" {
		ub.SoftwaresIncluded = sw
	} else {
		ub.SoftwaresIncluded = orig.SoftwaresIncluded
	}

	if ub.StartDate.IsZero() {
		ub.StartDate = orig.StartDate
	}
	if ub.Schedule == nil {
		sched := orig.Schedule
		ub.Schedule = &sched
	}

	if err := validate.Struct(ub); err != nil {
		return err
	}
	if flds := ub.Schedule.Validate(); len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// Preview is what a batch would compute to, without saving it.
type Preview struct {
	TotalLectures   int                   `json:"totalLectures"`
	ExpectedEndDate core.Date             `json:"expectedEndDate"`
	Unrecognized    []schedule.Suggestion `json:"unrecognized"`
}

type QueryFilter struct {
	Search    string    `query:"search"`
	Faculty   string    `query:"faculty"`
	StartFrom core.Date `query:"start_from"`
	StartTo   core.Date `query:"start_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Faculty == "" && qf.StartFrom.IsZero() && qf.StartTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Faculty = core.CleanString(qf.Faculty)
}
