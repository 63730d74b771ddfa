package checkout

import (
	"context"
	"net/http"

	"github.com/minthouse/storefront-backend/api/responses"
	"github.com/minthouse/storefront-backend/api/validators"
	checkoutsvc "github.com/minthouse/storefront-backend/internal/checkout"
	pkgerrors "github.com/minthouse/storefront-backend/pkg/errors"
	"github.com/minthouse/storefront-backend/pkg/logger"
)

// Submit settles a cart as a batch of orders.
func Submit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeFailure(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			writeFailure(r.Context(), logg, w, err)
			return
		}

		req, err := payload.toServiceRequest()
		if err != nil {
			writeFailure(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), req)
		if err != nil {
			writeFailure(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

// writeFailure emits the flat {success:false, error} contract the
// storefront client expects, rather than the envelope used elsewhere.
func writeFailure(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeIdempotency,
		pkgerrors.CodeRate:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, map[string]any{
			"error":       dump.TopMessage,
			"error_code":  dump.Code,
			"error_chain": dump.Chain,
		})
		logg.Error(ctx, "checkout.rejected", err)
	}

	responses.WriteJSON(w, meta.HTTPStatus, checkoutFailure{Success: false, Error: msg})
}
