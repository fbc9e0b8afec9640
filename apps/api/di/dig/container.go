package dig_container

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/abdel28fr/ecole-pwa/apps/api/echo"
	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/backup"
	"github.com/abdel28fr/ecole-pwa/core/class"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/payment"
	"github.com/abdel28fr/ecole-pwa/core/report"
	"github.com/abdel28fr/ecole-pwa/core/settings"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/core/subject"
	"github.com/abdel28fr/ecole-pwa/core/user"
	emailsvc "github.com/abdel28fr/ecole-pwa/services/email"
	logsvc "github.com/abdel28fr/ecole-pwa/services/logger"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
	"github.com/abdel28fr/ecole-pwa/storage/kvrepos"
)

type StoreLoggerParam struct {
	dig.In
	Logger core.Logger `name:"storeLogger"`
}

// ServerParams are the dependencies of the API server.
type ServerParams struct {
	dig.In

	Conf        *core.Config
	Logger      core.Logger
	Validate    *validator.Validate
	Translator  ut.Translator
	UserSvc     *user.Service
	StudentSvc  *student.Service
	ClassSvc    *class.Service
	SubjectSvc  *subject.Service
	GradeSvc    *grade.Service
	PaymentSvc  *payment.Service
	FinanceSvc  *finance.Service
	SettingsSvc *settings.Service
	ReportSvc   *report.Service
	BackupSvc   *backup.Service
}

func newZapLogger(conf *core.Config) *zap.Logger {
	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatalf("creating zap logger: %v", err)
	}
	return zl
}

func newLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStoreLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("store"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStore(conf *core.Config, loggerParam StoreLoggerParam) kv.Store {
	store, err := kvrepos.OpenStore(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Storage.Engine, err), err)
	}
	return store
}

// newDB wraps the store and seeds the defaults of a fresh install.
func newDB(store kv.Store, loggerParam StoreLoggerParam) *kvrepos.DB {
	db := kvrepos.NewDB(store)
	seeded, err := kvrepos.Seed(context.Background(), db)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("seeding store: %v", err), err)
	}
	if len(seeded) > 0 {
		loggerParam.Logger.Info(fmt.Sprintf("seeded defaults: %v", seeded))
	}
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		Validate:    p.Validate,
		Translator:  p.Translator,
		UserSvc:     p.UserSvc,
		StudentSvc:  p.StudentSvc,
		ClassSvc:    p.ClassSvc,
		SubjectSvc:  p.SubjectSvc,
		GradeSvc:    p.GradeSvc,
		PaymentSvc:  p.PaymentSvc,
		FinanceSvc:  p.FinanceSvc,
		SettingsSvc: p.SettingsSvc,
		ReportSvc:   p.ReportSvc,
		BackupSvc:   p.BackupSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newZapLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newStoreLogger, dig.Name("storeLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	// repositories
	must(c.Provide(kvrepos.NewUserRepository))
	must(c.Provide(kvrepos.NewStudentRepository))
	must(c.Provide(kvrepos.NewClassRepository))
	must(c.Provide(kvrepos.NewSubjectRepository))
	must(c.Provide(kvrepos.NewGradeRepository))
	must(c.Provide(kvrepos.NewPaymentRepository))
	must(c.Provide(kvrepos.NewFinanceRepository))
	must(c.Provide(kvrepos.NewSettingsRepository))
	must(c.Provide(kvrepos.NewReportRepository))
	must(c.Provide(kvrepos.NewBackupRepository))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(class.NewService))
	must(c.Provide(subject.NewService))
	must(c.Provide(grade.NewService))
	must(c.Provide(payment.NewService))
	must(c.Provide(finance.NewService))
	must(c.Provide(settings.NewService))
	must(c.Provide(report.NewService))
	must(c.Provide(backup.NewService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
