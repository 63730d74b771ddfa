package controllers

import (
	"net/http"

	"github.com/minthouse/storefront-backend/api/responses"
	"github.com/minthouse/storefront-backend/internal/rates"
	pkgerrors "github.com/minthouse/storefront-backend/pkg/errors"
	"github.com/minthouse/storefront-backend/pkg/logger"
)

// SolUSDQuote serves the display-only SOL/USD estimate. The live flag tells
// the storefront whether the number came from a provider or the fallback.
func SolUSDQuote(estimator *rates.SOLUSDEstimator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if estimator == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimator unavailable"))
			return
		}

		price, live := estimator.Estimate(r.Context())
		responses.WriteSuccess(w, map[string]any{
			"price": price.String(),
			"live":  live,
		})
	}
}
