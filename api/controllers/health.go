package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/dentalclinic-backend/api/responses"
	"github.com/angelmondragon/dentalclinic-backend/pkg/config"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
	"github.com/angelmondragon/dentalclinic-backend/pkg/redis"
)

const (
	envHeader    = "X-Dental-Env"
	readyTimeout = 2 * time.Second
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and redis. Either failing yields a 503.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPinger db.Pinger, redisPinger redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := []struct {
			name   string
			pinger interface{ Ping(context.Context) error }
		}{
			{name: "database", pinger: dbPinger},
			{name: "redis", pinger: redisPinger},
		}

		status := map[string]string{}
		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
			status[check.name] = "ok"
		}

		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
