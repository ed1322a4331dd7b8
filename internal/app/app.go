package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"

	"github.com/seatwise/screening-booking-system/internal/booking"
	"github.com/seatwise/screening-booking-system/internal/domain"
	"github.com/seatwise/screening-booking-system/internal/mailer"
	"github.com/seatwise/screening-booking-system/internal/payment"
	"github.com/seatwise/screening-booking-system/internal/repository"
	appvalidator "github.com/seatwise/screening-booking-system/internal/validator"
	"github.com/seatwise/screening-booking-system/internal/vcs"
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager
	wg             sync.WaitGroup

	screeningRepo   domain.ScreeningRepository
	seatRepo        domain.SeatRepository
	reservationRepo domain.ReservationRepository
	paymentRepo     domain.PaymentRepository
	theaterRepo     domain.TheaterRepository

	coordinator *booking.Coordinator
}

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Stripe           StripeConfig
	Policy           PolicyConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type StripeConfig struct {
	SecretKey string
}

type PolicyConfig struct {
	CancelCutoff       time.Duration
	EarlyRefundWindow  time.Duration
	EarlyRefundRate    float64
	LateRefundRate     float64
	CheckInOpensBefore time.Duration
	CheckInClosesAfter time.Duration
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "SeatWise <no-reply@seatwise.example.com>", "SMTP sender")

	flag.StringVar(&cfg.Stripe.SecretKey, "stripe-key", "", "Stripe secret key")

	flag.DurationVar(&cfg.Policy.CancelCutoff, "cancel-cutoff", 2*time.Hour, "Minimum time before start a reservation can still be cancelled")
	flag.DurationVar(&cfg.Policy.EarlyRefundWindow, "early-refund-window", 24*time.Hour, "Cancellations earlier than this before start get the early refund rate")
	flag.Float64Var(&cfg.Policy.EarlyRefundRate, "early-refund-rate", 0.9, "Refund rate for early cancellations")
	flag.Float64Var(&cfg.Policy.LateRefundRate, "late-refund-rate", 0.5, "Refund rate for late cancellations")
	flag.DurationVar(&cfg.Policy.CheckInOpensBefore, "check-in-opens-before", 2*time.Hour, "How long before start check-in opens")
	flag.DurationVar(&cfg.Policy.CheckInClosesAfter, "check-in-closes-after", 30*time.Minute, "How long after start check-in stays open")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	stripe.Key = cfg.Stripe.SecretKey

	db, err := NewDatabasePool(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		return err
	}
	defer redisClient.Close()

	var paymentProvider domain.PaymentProvider = payment.NewStripePaymentProvider()
	if cfg.Stripe.SecretKey == "" {
		logger.Warn("no stripe key configured, using the mock payment provider")
		paymentProvider = payment.NewMockPaymentProvider()
	}

	var appMailer mailer.Mailer = mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)
	if cfg.SMTP.Username == "" {
		logger.Warn("no smtp credentials configured, emails will not be delivered")
		appMailer = mailer.NewMockMailer()
	}

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		appMailer,
		NewSessionManager(redisClient),
		repository.NewPostgresScreeningRepository(db),
		repository.NewPostgresSeatRepository(db),
		repository.NewPostgresReservationRepository(db),
		repository.NewPostgresPaymentRepository(db),
		repository.NewPostgresTheaterRepository(db),
		paymentProvider,
	)

	shutdownTelemetry, err := app.initTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	return app.Serve()
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	appMailer mailer.Mailer,
	sessionManager *scs.SessionManager,
	screeningRepo domain.ScreeningRepository,
	seatRepo domain.SeatRepository,
	reservationRepo domain.ReservationRepository,
	paymentRepo domain.PaymentRepository,
	theaterRepo domain.TheaterRepository,
	paymentProvider domain.PaymentProvider,
) *Application {
	coordinator := booking.NewCoordinator(
		screeningRepo,
		seatRepo,
		reservationRepo,
		paymentRepo,
		paymentProvider,
		NewLifecyclePolicy(cfg),
		logger,
	)

	return &Application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redisClient,
		validator:       validator,
		mailer:          appMailer,
		sessionManager:  sessionManager,
		screeningRepo:   screeningRepo,
		seatRepo:        seatRepo,
		reservationRepo: reservationRepo,
		paymentRepo:     paymentRepo,
		theaterRepo:     theaterRepo,
		coordinator:     coordinator,
	}
}

func NewLifecyclePolicy(cfg Config) domain.LifecyclePolicy {
	return domain.LifecyclePolicy{
		CancelCutoff:       cfg.Policy.CancelCutoff,
		EarlyRefundWindow:  cfg.Policy.EarlyRefundWindow,
		EarlyRefundRate:    decimal.NewFromFloat(cfg.Policy.EarlyRefundRate),
		LateRefundRate:     decimal.NewFromFloat(cfg.Policy.LateRefundRate),
		CheckInOpensBefore: cfg.Policy.CheckInOpensBefore,
		CheckInClosesAfter: cfg.Policy.CheckInClosesAfter,
	}
}

func NewSessionManager(client redis.UniversalClient) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client.(*redis.Client))
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) Serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		app.wg.Wait()
		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("screening-booking-api", otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/health", app.HealthcheckHandler)

	r.Post("/sessions", app.CreateSessionHandler)

	r.Route("/screenings", func(r chi.Router) {
		r.With(app.requireAuthentication, app.requireAdmin).Post("/", app.CreateScreeningHandler)
		r.With(app.requireAuthentication, app.requireAdmin).Patch("/{screeningID}", app.UpdateScreeningHandler)
		r.With(app.requireAuthentication, app.requireAdmin).Delete("/{screeningID}", app.ArchiveScreeningHandler)

		r.Get("/{screeningID}/seats", app.GetSeatMapHandler)

		r.With(app.requireAuthentication).Post("/{screeningID}/reservations", app.CreateReservationHandler)
	})

	r.Route("/reservations/{reservationID}", func(r chi.Router) {
		r.With(app.requireAuthentication).Post("/cancellation", app.CancelReservationHandler)
		r.With(app.requireAuthentication).Post("/check-in", app.CheckInReservationHandler)
		r.With(app.requireAuthentication, app.requireAdmin).Patch("/status", app.UpdateReservationStatusHandler)
	})

	r.With(app.requireAuthentication).Get("/users/me/reservations", app.GetReservationsOfUserHandler)

	return r
}
