package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/dentalclinic-backend/api/controllers"
	appointmentcontrollers "github.com/angelmondragon/dentalclinic-backend/api/controllers/appointments"
	"github.com/angelmondragon/dentalclinic-backend/api/middleware"
	"github.com/angelmondragon/dentalclinic-backend/internal/appointments"
	"github.com/angelmondragon/dentalclinic-backend/internal/auth"
	"github.com/angelmondragon/dentalclinic-backend/internal/dentists"
	"github.com/angelmondragon/dentalclinic-backend/internal/roles"
	"github.com/angelmondragon/dentalclinic-backend/internal/services"
	"github.com/angelmondragon/dentalclinic-backend/internal/users"
	"github.com/angelmondragon/dentalclinic-backend/pkg/auth/session"
	"github.com/angelmondragon/dentalclinic-backend/pkg/config"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
	"github.com/angelmondragon/dentalclinic-backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer relies on.
type RedisStore interface {
	redis.IdempotencyStore
	middleware.RateLimitStore
	Ping(ctx context.Context) error
}

// Params carries everything NewRouter wires into the handler tree. A nil
// Redis disables auth rate limiting and idempotency replay.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Metrics  prometheus.Gatherer

	Auth         auth.Service
	Register     auth.RegisterService
	Users        users.Service
	Roles        roles.Service
	Services     services.Service
	Dentists     dentists.Service
	Appointments appointments.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)
	if cfg.HTTP.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.HTTP.RequestTimeout))
	}

	var (
		rateStore   middleware.RateLimitStore
		idemStore   redis.IdempotencyStore
		redisPinger redis.Pinger
	)
	if p.Redis != nil {
		rateStore, idemStore, redisPinger = p.Redis, p.Redis, p.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	writeLimiter := middleware.NewWriteLimiter(cfg.WriteRateLimit)
	dentistOnly := middleware.RequireRole(logg, enums.RoleDentist)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisPinger))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, rateStore, logg),
			middleware.Idempotency(idemStore, logg),
		).Post("/register", controllers.AuthRegister(p.Register, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.Get("/verify-token", controllers.AuthVerifyToken(p.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, p.Sessions, logg)).Post("/logout", controllers.AuthLogout(p.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/appointments", func(r chi.Router) {
			r.Use(middleware.WriteRateLimit(writeLimiter, logg))
			r.Post("/", appointmentcontrollers.Create(p.Appointments, logg))
			r.Get("/", appointmentcontrollers.List(p.Appointments, logg))
			r.Get("/by-date", appointmentcontrollers.ListByDateQuery(p.Appointments, logg))
			r.Get("/date/{date}/user/{userId}", appointmentcontrollers.ListByDateAndUser(p.Appointments, logg))
			r.Get("/{id}", appointmentcontrollers.Get(p.Appointments, logg))
			r.Put("/{id}", appointmentcontrollers.Update(p.Appointments, logg))
			r.Delete("/{id}", appointmentcontrollers.Delete(p.Appointments, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.UsersList(p.Users, logg))
			r.Get("/{id}", controllers.UsersGet(p.Users, logg))
		})

		r.Route("/dentists", func(r chi.Router) {
			r.Get("/", controllers.DentistsList(p.Dentists, logg))
			r.Get("/{id}", controllers.DentistsGet(p.Dentists, logg))
			r.With(dentistOnly).Post("/", controllers.DentistsCreate(p.Dentists, logg))
			r.With(dentistOnly).Put("/{id}", controllers.DentistsUpdate(p.Dentists, logg))
			r.With(dentistOnly).Delete("/{id}", controllers.DentistsDelete(p.Dentists, logg))
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", controllers.ServicesList(p.Services, logg))
			r.Get("/{id}", controllers.ServicesGet(p.Services, logg))
			r.With(dentistOnly).Post("/", controllers.ServicesCreate(p.Services, logg))
			r.With(dentistOnly).Put("/{id}", controllers.ServicesUpdate(p.Services, logg))
			r.With(dentistOnly).Delete("/{id}", controllers.ServicesDelete(p.Services, logg))
		})

		r.Route("/roles", func(r chi.Router) {
			r.Get("/", controllers.RolesList(p.Roles, logg))
			r.Get("/{id}", controllers.RolesGet(p.Roles, logg))
			r.With(dentistOnly).Post("/", controllers.RolesCreate(p.Roles, logg))
			r.With(dentistOnly).Put("/{id}", controllers.RolesUpdate(p.Roles, logg))
			r.With(dentistOnly).Delete("/{id}", controllers.RolesDelete(p.Roles, logg))
		})
	})

	return r
}
