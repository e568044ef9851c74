// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yntoyg/covenant-api/pkg/app/httpserver"
	"github.com/yntoyg/covenant-api/pkg/auth"
	authservice "github.com/yntoyg/covenant-api/pkg/auth/service"
	claimservice "github.com/yntoyg/covenant-api/pkg/claim/service"
	"github.com/yntoyg/covenant-api/pkg/config"
	"github.com/yntoyg/covenant-api/pkg/mail"
	"github.com/yntoyg/covenant-api/pkg/pgutil"
	"github.com/yntoyg/covenant-api/pkg/ratelimit"
	repostservice "github.com/yntoyg/covenant-api/pkg/repost/service"
	"github.com/yntoyg/covenant-api/pkg/storage"
	"github.com/yntoyg/covenant-api/pkg/store"
	telegramservice "github.com/yntoyg/covenant-api/pkg/telegram/service"
	"github.com/yntoyg/covenant-api/pkg/turnstile"
	userservice "github.com/yntoyg/covenant-api/pkg/user/service"
	"github.com/yntoyg/covenant-api/pkg/videoprep"
)

const defaultRequestTimeout = 60 * time.Second

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()
	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	st := store.NewStore(db)

	bucket, err := storage.New(&storage.Config{
		Endpoint:      cfg.Storage.Endpoint,
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		return fmt.Errorf("setup storage: %w", err)
	}

	prep, err := videoprep.New(&videoprep.Config{
		BaseURL:        cfg.VideoPrep.BaseURL,
		APISecret:      cfg.VideoPrep.APISecret,
		RequestTimeout: cfg.VideoPrep.RequestTimeout,
	}, videoprep.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("setup video prep client: %w", err)
	}

	mailer, err := mail.New(&mail.Config{
		APIURL:   cfg.Email.APIURL,
		APIKey:   cfg.Email.APIKey,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	}, mail.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("setup mail client: %w", err)
	}

	captcha, err := turnstile.New(&turnstile.Config{
		SecretKey: cfg.Turnstile.SecretKey,
		VerifyURL: cfg.Turnstile.VerifyURL,
	}, turnstile.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("setup turnstile verifier: %w", err)
	}

	authSvc := authservice.NewService(
		st,
		ratelimit.New(st, logger),
		captcha,
		mailer,
		authservice.Config{
			BotUsername: cfg.Telegram.BotUsername,
			BaseURL:     cfg.Server.BaseURL,
		},
		logger,
	)
	claimSvc := claimservice.NewLog(claimservice.NewService(st, prep, bucket, logger), logger)
	repostSvc := repostservice.NewService(st, logger)
	telegramSvc := telegramservice.NewService(st, cfg.Telegram.BotUsername, logger)
	userSvc := userservice.NewService(st, logger)

	router := s.setupRouter(st, authSvc, claimSvc, repostSvc, telegramSvc, userSvc, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return httpserver.ServeAndWait(ctx, logger, srv, cfg.Shutdown.Timeout)
}

func (s *Server) setupRouter(
	st store.Store,
	authSvc authservice.Service,
	claimSvc claimservice.Service,
	repostSvc repostservice.Service,
	telegramSvc telegramservice.Service,
	userSvc userservice.Service,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Session resolution; unauthenticated requests pass through as
		// anonymous and each handler decides whether to require a user.
		r.Use(auth.Guard(st, s.cfg.Session.CookieName, logger))

		authservice.RegisterRoutes(r, authSvc, authservice.CookieConfig{
			Name:   s.cfg.Session.CookieName,
			Secure: s.cfg.Session.SecureCookie,
		}, logger)
		claimservice.RegisterRoutes(r, claimSvc, logger)
		repostservice.RegisterRoutes(r, repostSvc, logger)
		telegramservice.RegisterRoutes(r, telegramSvc, logger)
		userservice.RegisterRoutes(r, userSvc, logger)
	})

	return r
}
