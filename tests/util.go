package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/batch"
	"github.com/trezcool/academia/core/schedule"
	logsvc "github.com/trezcool/academia/services/logger"
)

// NewConfig returns the test Config, rooted at the project directory so that assets are found.
func NewConfig() *core.Config {
	conf := core.NewTestConfig()
	conf.WorkDir = core.Getwd()
	return conf
}

// NewLogger returns a silent logger that never reports to rollbar.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator & its translator, with the app's custom validations registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate, translator
}

// MondaySchedule is a class every monday, 10:00 to 12:00.
func MondaySchedule() schedule.WeeklySchedule {
	return schedule.NewWeeklySchedule(map[time.Weekday]schedule.Slot{
		time.Monday: {StartTime: "10:00", EndTime: "12:00"},
	})
}

func CreateBatch(
	t *testing.T,
	repo batch.Repository,
	name, faculty, software, start string,
	createdAt ...time.Time,
) batch.Batch {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}

	startDate := core.MustParseDate(start)
	sched := MondaySchedule()
	catalog := schedule.DefaultCatalog()
	endDate, err := schedule.ExpectedEndDate(startDate, software, sched, catalog)
	if err != nil {
		t.Fatalf("CreateBatch() failed: %v", err)
	}

	b, err := repo.CreateBatch(context.Background(), batch.Batch{
		ID:                uuid.New().String(),
		Name:              name,
		Faculty:           faculty,
		SoftwaresIncluded: software,
		StartDate:         startDate,
		Schedule:          sched,
		TotalLectures:     catalog.TotalLectures(software),
		ExpectedEndDate:   endDate,
		CreatedAt:         tstamp,
		UpdatedAt:         tstamp,
	})
	if err != nil {
		t.Fatalf("CreateBatch() failed: %v", err)
	}
	return b
}
