package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
)

type (
	// ServerDeps holds what the API handlers need.
	ServerDeps struct {
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

	Server struct {
		deps      ServerDeps
		app       *echo.Echo
		jwtConfig middleware.JWTConfig
		errors    chan error
		shutdown  chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:      deps,
		app:       echo.New(),
		jwtConfig: newJWTConfig(deps.Conf),
		errors:    make(chan error, 1),
		shutdown:  make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	g := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(s.jwtConfig)

	registerUserAPI(g, jwt, s.deps)
	registerStudentAPI(g, jwt, s.deps)
	registerClassAPI(g, jwt, s.deps)
	registerSubjectAPI(g, jwt, s.deps)
	registerGradeAPI(g, jwt, s.deps)
	registerPaymentAPI(g, jwt, s.deps)
	registerFinanceAPI(g, jwt, s.deps)
	registerSettingsAPI(g, jwt, s.deps)
	registerDashboardAPI(g, jwt, s.deps)
	registerBackupAPI(g, jwt, s.deps)
}

// Start listens on the configured address until the server is shut down.
// Errors other than http.ErrServerClosed are sent on Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// signalShutdown asks the main goroutine to shut the server down gracefully.
func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
