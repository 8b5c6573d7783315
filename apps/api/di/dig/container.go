package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/batch"
	"github.com/trezcool/academia/core/enrollment"
	"github.com/trezcool/academia/core/schedule"
	emailsvc "github.com/trezcool/academia/services/email"
	logsvc "github.com/trezcool/academia/services/logger"
	"github.com/trezcool/academia/storage/cache"
	"github.com/trezcool/academia/storage/database"
	sqlxrepos "github.com/trezcool/academia/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// StoreResult provides the same store as both the draft store and the end date cache.
type StoreResult struct {
	dig.Out
	Drafts   enrollment.DraftStore
	EndDates batch.EndDateCache
	Closer   func() error `name:"storeCloser"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	db, err := database.Setup(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

// newStore uses redis when an address is configured, an in-process store otherwise.
func newStore(conf *core.Config, logger core.Logger) StoreResult {
	if conf.Redis.Address == "" {
		logger.Warn("redis address not set: drafts are kept in memory")
		store := cache.NewMemoryStore(conf)
		return StoreResult{Drafts: store, EndDates: store, Closer: func() error { return nil }}
	}

	store := cache.NewRedisStore(conf)
	if err := store.Ping(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
	}
	return StoreResult{Drafts: store, EndDates: store, Closer: store.Close}
}

func newCatalog(conf *core.Config, logger core.Logger) *schedule.Catalog {
	if conf.Schedule.CatalogFile == "" {
		return schedule.DefaultCatalog()
	}
	catalog, err := schedule.LoadCatalogFile(conf.Schedule.CatalogFile)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading lecture catalog: %v", err), err)
	}
	return catalog
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newValidator returns a bare validator; core.InitValidators registers the app's validations on start.
func newValidator() *validator.Validate {
	return validator.New()
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	batchSvc batch.Service,
	enrollmentSvc enrollment.Service,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		BatchSvc:      batchSvc,
		EnrollmentSvc: enrollmentSvc,
		Validate:      validate,
		Translator:    translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newStore))
	must(c.Provide(newCatalog))
	must(c.Provide(newEmailService))
	must(c.Provide(sqlxrepos.NewBatchRepository))
	must(c.Provide(sqlxrepos.NewEnrollmentRepository))
	must(c.Provide(newValidator))
	must(c.Provide(newTranslator))
	must(c.Provide(batch.NewService))
	must(c.Provide(enrollment.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
