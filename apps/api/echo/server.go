package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	exportsvc "github.com/trezcool/shule/services/export"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Store          *school.Store
		Sessions       *school.Sessions
		Reporter       *exportsvc.Reporter
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		deps ServerDeps
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps: deps,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := s.deps.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || s.deps.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = appHTTPErrorHandler(s.deps.Translator)
	s.app.Debug = debug

	s.app.GET("/", home)

	jwtCfg := newJWTConfig(s.deps.Conf)
	v1 := s.app.Group("/v1")
	registerSchoolAPI(v1, middleware.JWTWithConfig(jwtCfg), schoolApi{
		conf:       s.deps.Conf,
		store:      s.deps.Store,
		sessions:   s.deps.Sessions,
		reporter:   s.deps.Reporter,
		validate:   s.deps.Validate,
		translator: s.deps.Translator,
		jwtCfg:     jwtCfg,
	})
}

func (s *server) Start() error {
	return s.app.Start(s.deps.Conf.Server.Host)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Shule API!")
}
