package controllers

import (
	"context"
	"net/http"

	"github.com/greencartlabs/greencart-backend/api/responses"
	"github.com/greencartlabs/greencart-backend/pkg/config"
	pkgerrors "github.com/greencartlabs/greencart-backend/pkg/errors"
	"github.com/greencartlabs/greencart-backend/pkg/logger"
)

const envHeader = "X-GreenCart-Env"

// Pinger is satisfied by clients that can verify their backing connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable")
				responses.WriteError(r.Context(), logg, w, wrapped)
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
