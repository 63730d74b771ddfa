package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkoutsvc "github.com/minthouse/storefront-backend/internal/checkout"
	"github.com/minthouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/minthouse/storefront-backend/pkg/errors"
)

type stubService struct {
	lastReq checkoutsvc.Request
	result  *checkoutsvc.BatchResult
	err     error
}

func (s *stubService) Execute(_ context.Context, req checkoutsvc.Request) (*checkoutsvc.BatchResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func validBody(productID uuid.UUID) string {
	return `{
		"items": [{
			"product": {"id": "` + productID.String() + `", "name": "Hoodie"},
			"selectedOptions": {"size": "XL"},
			"quantity": 2
		}],
		"walletAddress": "buyerWallet",
		"paymentMetadata": {"paymentMethod": "sol"}
	}`
}

func TestSubmitSuccess(t *testing.T) {
	productID := uuid.New()
	orderID := uuid.New()
	batchID := uuid.New()

	svc := &stubService{result: &checkoutsvc.BatchResult{
		BatchOrderID: batchID,
		Orders: []checkoutsvc.ItemResult{{
			OrderID:     orderID,
			OrderNumber: 42,
			ProductID:   productID,
			Status:      enums.OrderStatusDraft,
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("10"),
			ItemTotal:   decimal.RequireFromString("20"),
			VariantKey:  "size:XL",
		}},
		OrderIDs:           []uuid.UUID{orderID},
		OrderNumbers:       []int64{42},
		CurrencyUnit:       "SOL",
		OriginalPrice:      decimal.RequireFromString("20"),
		CouponDiscount:     decimal.Zero,
		Fee:                decimal.Zero,
		TotalPaymentAmount: decimal.RequireFromString("20"),
		ReceiverWallet:     "merchantWallet",
		WalletAmounts:      map[string]decimal.Decimal{"merchantWallet": decimal.RequireFromString("20")},
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(validBody(productID)))
	resp := httptest.NewRecorder()
	Submit(svc, nil)(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, batchID.String(), body["batchOrderId"])
	assert.Equal(t, "merchantWallet", body["receiverWallet"])
	assert.Equal(t, "SOL", body["currencyUnit"])
	assert.Equal(t, false, body["isFreeOrder"])

	orders, ok := body["orders"].([]any)
	require.True(t, ok)
	require.Len(t, orders, 1)
	first := orders[0].(map[string]any)
	assert.Equal(t, orderID.String(), first["orderId"])
	assert.Equal(t, float64(42), first["orderNumber"])
	assert.Equal(t, "draft", first["status"])
	assert.Equal(t, "size:XL", first["variantKey"])

	amounts, ok := body["walletAmounts"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "20", amounts["merchantWallet"])

	assert.Equal(t, enums.PaymentMethodSol, svc.lastReq.Payment.Method)
	assert.Equal(t, "buyerWallet", svc.lastReq.WalletAddress)
	require.Len(t, svc.lastReq.Items, 1)
	assert.Equal(t, productID, svc.lastReq.Items[0].ProductID)
	assert.Equal(t, 2, svc.lastReq.Items[0].Quantity)
}

func TestSubmitAcceptsZeroQuantity(t *testing.T) {
	productID := uuid.New()
	svc := &stubService{result: &checkoutsvc.BatchResult{BatchOrderID: uuid.New()}}
	body := strings.Replace(validBody(productID), `"quantity": 2`, `"quantity": 0`, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	resp := httptest.NewRecorder()
	Submit(svc, nil)(resp, req)

	// The engine coerces non-positive quantities, so the wire layer must
	// let them through.
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Len(t, svc.lastReq.Items, 1)
	assert.Equal(t, 0, svc.lastReq.Items[0].Quantity)
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"items":[],"paymentMetadata":{"paymentMethod":"sol"}}`))
	resp := httptest.NewRecorder()
	Submit(svc, nil)(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var body checkoutFailure
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
}

func TestSubmitRejectsUnknownPaymentMethod(t *testing.T) {
	productID := uuid.New()
	svc := &stubService{}
	body := strings.Replace(validBody(productID), `"paymentMethod": "sol"`, `"paymentMethod": "barter"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	resp := httptest.NewRecorder()
	Submit(svc, nil)(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var payload checkoutFailure
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.False(t, payload.Success)
	assert.Contains(t, payload.Error, "payment method")
}

func TestSubmitSurfacesBatchRejection(t *testing.T) {
	productID := uuid.New()
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeValidation, "no orders could be created")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(validBody(productID)))
	resp := httptest.NewRecorder()
	Submit(svc, nil)(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var payload checkoutFailure
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.False(t, payload.Success)
	assert.Equal(t, "no orders could be created", payload.Error)
}

func TestSubmitMapsRateExhaustionToBadGateway(t *testing.T) {
	productID := uuid.New()
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeRate, "no conversion rate from SOL to USDC")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(validBody(productID)))
	resp := httptest.NewRecorder()
	Submit(svc, nil)(resp, req)

	require.Equal(t, http.StatusBadGateway, resp.Code)

	var payload checkoutFailure
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.False(t, payload.Success)
	assert.Equal(t, "no conversion rate from SOL to USDC", payload.Error)
}

func TestSubmitHidesInternalErrors(t *testing.T) {
	productID := uuid.New()
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeInternal, "gorm exploded")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(validBody(productID)))
	resp := httptest.NewRecorder()
	Submit(svc, nil)(resp, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)

	var payload checkoutFailure
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.False(t, payload.Success)
	assert.NotContains(t, payload.Error, "gorm")
}
