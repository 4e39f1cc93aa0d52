package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/earmahsakyi/School-Management-System-sub002/apps/api/echo"
	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/access"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grade"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grading"
	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
	"github.com/earmahsakyi/School-Management-System-sub002/core/report"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
	emailsvc "github.com/earmahsakyi/School-Management-System-sub002/services/email"
	logsvc "github.com/earmahsakyi/School-Management-System-sub002/services/logger"
	pdfsvc "github.com/earmahsakyi/School-Management-System-sub002/services/pdf"
	"github.com/earmahsakyi/School-Management-System-sub002/storage/cache"
	"github.com/earmahsakyi/School-Management-System-sub002/storage/database"
	inmemdb "github.com/earmahsakyi/School-Management-System-sub002/storage/database/inmem"
	sqlxrepos "github.com/earmahsakyi/School-Management-System-sub002/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Repositories are backed by postgres, or by memory when conf.Database.InMemory is set.
	Repositories struct {
		dig.Out
		Students student.Repository
		Grades   grade.Repository
		Payments payment.Repository
	}

	ServerParams struct {
		dig.In
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		AccessSvc  *access.Service
		StudentSvc student.ServiceInterface
		GradeSvc   grade.ServiceInterface
		PaymentSvc payment.ServiceInterface
		ReportSvc  *report.Service
	}

	ReportParams struct {
		dig.In
		Conf         *core.Config
		Builder      *report.Builder
		Students     student.Repository
		Grades       grade.Repository
		Payments     payment.Repository
		Renderer     report.Renderer
		Cache        report.Cache
		EmailService core.EmailService
		Logger       core.Logger
	}
)

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

// newDB returns a nil DB in memory mode.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.InMemory {
		loggerParam.Logger.Warn("using the in-memory database, data will not survive a restart")
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(context.Background(), conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newRepositories(db *sqlx.DB) Repositories {
	if db == nil {
		mem := inmemdb.Open()
		return Repositories{
			Students: inmemdb.NewStudentRepository(mem),
			Grades:   inmemdb.NewGradeRepository(mem),
			Payments: inmemdb.NewPaymentRepository(mem),
		}
	}
	return Repositories{
		Students: sqlxrepos.NewStudentRepository(db),
		Grades:   sqlxrepos.NewGradeRepository(db),
		Payments: sqlxrepos.NewPaymentRepository(db),
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	grading.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	access.InitValidators(validate, translator)
	return validate
}

func newRenderer(conf *core.Config, logger core.Logger) report.Renderer {
	if conf.Renderer.URL == "" {
		logger.Warn("renderer url not set, documents are rendered by the mock renderer")
		return pdfsvc.NewMock()
	}
	return pdfsvc.NewGotenberg(conf)
}

func newCache(conf *core.Config, client *redis.Client) report.Cache {
	if client == nil {
		return nil
	}
	return cache.NewRedisCache(client, conf)
}

func newReportService(p ReportParams) *report.Service {
	return report.NewService(p.Conf, report.ServiceDeps{
		Builder:      p.Builder,
		StudentRepo:  p.Students,
		GradeRepo:    p.Grades,
		PaymentRepo:  p.Payments,
		Renderer:     p.Renderer,
		Cache:        p.Cache,
		EmailService: p.EmailService,
		Logger:       p.Logger,
	})
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.NewOptions(p.Conf), echoapi.ServerDeps{
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,
		AccessSvc:  p.AccessSvc,
		StudentSvc: p.StudentSvc,
		GradeSvc:   p.GradeSvc,
		PaymentSvc: p.PaymentSvc,
		ReportSvc:  p.ReportSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(cache.Connect))
	must(c.Provide(newCache))
	must(c.Provide(newEmailService))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newRenderer))
	must(c.Provide(report.NewBuilder))
	must(c.Provide(access.NewService))
	must(c.Provide(student.NewService, dig.As(new(student.ServiceInterface))))
	must(c.Provide(grade.NewService, dig.As(new(grade.ServiceInterface))))
	must(c.Provide(payment.NewService, dig.As(new(payment.ServiceInterface))))
	must(c.Provide(newReportService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
