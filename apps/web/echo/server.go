package echoweb

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

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/challenge"
	"github.com/trezcool/mazingira/core/forum"
	"github.com/trezcool/mazingira/core/learning"
	"github.com/trezcool/mazingira/core/user"
)

type (
	ServerDeps struct {
		Conf         *core.Config
		Logger       core.Logger
		UserSvc      user.ServiceInterface
		LearningSvc  *learning.Service
		ChallengeSvc *challenge.Service
		ForumSvc     *forum.Service
		Validate     *validator.Validate
		Translator   ut.Translator

		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.Renderer = newPageRenderer(conf)
	s.app.HTTPErrorHandler = s.newHTTPErrorHandler()
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	session := s.sessionRequired
	teacher := s.requireRole(user.RoleTeacher)
	student := s.requireRole(user.RoleStudent)

	s.app.GET("/", s.home)

	s.app.GET("/register", s.registerPage)
	s.app.POST("/register", s.register)
	s.app.GET("/login", s.loginPage)
	s.app.POST("/login", s.login)
	s.app.GET("/logout", s.logout, session)

	s.app.GET("/dashboard", s.dashboard, session)

	s.app.GET("/module/create", s.modulePage, session, teacher)
	s.app.POST("/module/create", s.createModule, session, teacher)
	s.app.GET("/module/edit/:id", s.modulePage, session, teacher)
	s.app.POST("/module/edit/:id", s.editModule, session, teacher)
	s.app.GET("/module/delete/:id", s.deleteModule, session, teacher)
	s.app.GET("/module/:id", s.module, session)

	s.app.GET("/forum", s.forum, session)
	s.app.POST("/forum", s.createPost, session)
	s.app.GET("/forum/:id", s.forumPost, session)
	s.app.POST("/forum/:id", s.createComment, session)

	s.app.GET("/challenge/create", s.challengePage, session, teacher)
	s.app.POST("/challenge/create", s.createChallenge, session, teacher)
	s.app.GET("/challenge/edit/:id", s.challengePage, session, teacher)
	s.app.POST("/challenge/edit/:id", s.editChallenge, session, teacher)
	s.app.POST("/challenge/delete/:id", s.deleteChallenge, session, teacher)
	s.app.GET("/challenge/:id", s.challenge, session, student)
	s.app.POST("/challenge/:id", s.submitChallenge, session, student)

	s.app.GET("/submission/:id/:action", s.reviewSubmission, session, teacher)

	s.app.GET("/quiz/create", s.quizPage, session, teacher)
	s.app.POST("/quiz/create", s.createQuiz, session, teacher)
	s.app.GET("/quiz/edit/:id", s.quizPage, session, teacher)
	s.app.POST("/quiz/edit/:id", s.editQuiz, session, teacher)
	s.app.GET("/quiz/delete/:id", s.deleteQuiz, session, teacher)
	s.app.GET("/quiz/:id", s.quiz, session, student)
	s.app.POST("/quiz/:id", s.takeQuiz, session, student)

	s.app.GET("/game", s.game, session)
	s.app.POST("/mini_game/add_points", s.saveGameProgress, session, student)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error { return s.errs }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
