package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/access"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grade"
	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
	"github.com/earmahsakyi/School-Management-System-sub002/core/report"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

type (
	Options struct {
		Address        string
		Debug          bool
		TestMode       bool
		DisableReqLogs bool
	}

	ServerDeps struct {
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		AccessSvc  *access.Service
		StudentSvc student.ServiceInterface
		GradeSvc   grade.ServiceInterface
		PaymentSvc payment.ServiceInterface
		ReportSvc  *report.Service
	}

	Server struct {
		opts     Options
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

// NewOptions reads the server options from conf.
func NewOptions(conf *core.Config) Options {
	return Options{
		Address:        conf.Server.Address(),
		Debug:          conf.Debug,
		TestMode:       conf.TestMode,
		DisableReqLogs: conf.DisableReqLogs,
	}
}

func NewServer(opts Options, deps ServerDeps) *Server {
	s := &Server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup(deps)
	return s
}

func (s *Server) setup(deps ServerDeps) {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.opts.Debug || s.opts.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, s.SignalShutdown)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(deps.AccessSvc.SigningKey()))

	registerAccessAPI(v1, jwt, deps.AccessSvc, deps.Validate)
	registerStudentAPI(v1, jwt, deps.StudentSvc, deps.ReportSvc, deps.Validate)
	registerGradeAPI(v1, jwt, deps.GradeSvc, deps.Validate)
	registerPaymentAPI(v1, jwt, deps.PaymentSvc, deps.ReportSvc, deps.Validate)
}

// Start blocks until the server stops. Failures are reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the process to shut down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "School Management System API")
}
