package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/dentalclinic-backend/api/routes"
	"github.com/angelmondragon/dentalclinic-backend/internal/appointments"
	"github.com/angelmondragon/dentalclinic-backend/internal/auth"
	"github.com/angelmondragon/dentalclinic-backend/internal/dentists"
	"github.com/angelmondragon/dentalclinic-backend/internal/roles"
	"github.com/angelmondragon/dentalclinic-backend/internal/services"
	"github.com/angelmondragon/dentalclinic-backend/internal/users"
	"github.com/angelmondragon/dentalclinic-backend/pkg/auth/session"
	"github.com/angelmondragon/dentalclinic-backend/pkg/config"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
	"github.com/angelmondragon/dentalclinic-backend/pkg/metrics"
	"github.com/angelmondragon/dentalclinic-backend/pkg/migrate"
	"github.com/angelmondragon/dentalclinic-backend/pkg/outbox"
	"github.com/angelmondragon/dentalclinic-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	if _, err := roles.LoadCatalog(ctx, dbClient.DB()); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router, err := buildRouter(cfg, logg, dbClient, redisClient, sessionManager, registry)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGrace)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
	registry *prometheus.Registry,
) (http.Handler, error) {
	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: &cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	usersService, err := users.NewService(userRepo)
	if err != nil {
		return nil, err
	}
	rolesService, err := roles.NewService(roles.NewRepository(dbClient.DB()))
	if err != nil {
		return nil, err
	}
	catalogService, err := services.NewService(services.NewRepository(dbClient.DB()))
	if err != nil {
		return nil, err
	}
	dentistService, err := dentists.NewService(dentists.ServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	appointmentService, err := appointments.NewService(appointments.ServiceParams{
		DB:      dbClient,
		Roles:   userRepo,
		Outbox:  outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Metrics: metrics.NewSchedulingMetrics(registry),
		Logger:  logg,
	})
	if err != nil {
		return nil, err
	}

	return routes.NewRouter(routes.Params{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		Sessions:     sessionManager,
		Metrics:      registry,
		Auth:         authService,
		Register:     registerService,
		Users:        usersService,
		Roles:        rolesService,
		Services:     catalogService,
		Dentists:     dentistService,
		Appointments: appointmentService,
	}), nil
}
