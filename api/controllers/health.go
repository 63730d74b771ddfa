package controllers

import (
	"context"
	"net/http"

	"github.com/minthouse/storefront-backend/api/responses"
	"github.com/minthouse/storefront-backend/pkg/config"
	pkgerrors "github.com/minthouse/storefront-backend/pkg/errors"
	"github.com/minthouse/storefront-backend/pkg/logger"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks each named dependency and fails closed when any one is
// unreachable.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		status := map[string]string{"status": "ready"}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				status[name] = err.Error()
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency "+name+" not ready"))
				return
			}
			status[name] = "ok"
		}

		responses.WriteSuccess(w, status)
	}
}
