package orders

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/api/responses"
	internalorders "github.com/minthouse/storefront-backend/internal/orders"
	"github.com/minthouse/storefront-backend/pkg/db/models"
	pkgerrors "github.com/minthouse/storefront-backend/pkg/errors"
	"github.com/minthouse/storefront-backend/pkg/logger"
)

type batchResponse struct {
	BatchOrderID uuid.UUID       `json:"batchOrderId"`
	Orders       []orderResponse `json:"orders"`
}

type orderResponse struct {
	OrderID              uuid.UUID       `json:"orderId"`
	OrderNumber          int64           `json:"orderNumber"`
	ProductID            uuid.UUID       `json:"productId"`
	Status               string          `json:"status"`
	Quantity             int             `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"price"`
	ItemTotal            decimal.Decimal `json:"itemTotal"`
	CurrencyUnit         string          `json:"currencyUnit"`
	VariantKey           string          `json:"variantKey,omitempty"`
	WalletAddress        string          `json:"walletAddress,omitempty"`
	TransactionSignature *string         `json:"transactionSignature,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// GetBatch returns every order created by one checkout batch, in item order.
func GetBatch(repo *internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		batchID, err := uuid.Parse(chi.URLParam(r, "batchId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid batch id"))
			return
		}

		orders, err := repo.ListByBatch(r.Context(), batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(orders) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeNotFound, "batch %s not found", batchID))
			return
		}

		responses.WriteSuccess(w, newBatchResponse(batchID, orders))
	}
}

// GetOrder returns a single order by id.
func GetOrder(repo *internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := repo.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}

func newBatchResponse(batchID uuid.UUID, orders []models.Order) batchResponse {
	items := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, newOrderResponse(order))
	}
	return batchResponse{BatchOrderID: batchID, Orders: items}
}

func newOrderResponse(order models.Order) orderResponse {
	return orderResponse{
		OrderID:              order.ID,
		OrderNumber:          order.OrderNumber,
		ProductID:            order.ProductID,
		Status:               string(order.Status),
		Quantity:             order.Quantity,
		UnitPrice:            order.UnitPrice,
		ItemTotal:            order.ItemTotal,
		CurrencyUnit:         order.CurrencyUnit,
		VariantKey:           order.VariantKey,
		WalletAddress:        order.WalletAddress,
		TransactionSignature: order.TransactionSignature,
		CreatedAt:            order.CreatedAt,
	}
}
