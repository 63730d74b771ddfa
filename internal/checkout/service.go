// Package checkout orchestrates batch settlement: per-item pricing and
// currency conversion, wallet aggregation, coupon discount, distribution
// fee, free-order handling, and continue-on-error order creation.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/minthouse/storefront-backend/internal/coupons"
	"github.com/minthouse/storefront-backend/internal/pricing"
	"github.com/minthouse/storefront-backend/internal/wallets"
	"github.com/minthouse/storefront-backend/pkg/config"
	"github.com/minthouse/storefront-backend/pkg/db/models"
	"github.com/minthouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/minthouse/storefront-backend/pkg/errors"
	"github.com/minthouse/storefront-backend/pkg/logger"
	"github.com/minthouse/storefront-backend/pkg/metrics"
	"github.com/minthouse/storefront-backend/pkg/money"
	"github.com/minthouse/storefront-backend/pkg/outbox"
	"github.com/minthouse/storefront-backend/pkg/outbox/payloads"
	"github.com/minthouse/storefront-backend/pkg/types"
)

// Service executes checkout batches.
type Service interface {
	Execute(ctx context.Context, req Request) (*BatchResult, error)
}

type service struct {
	catalog   pricingSource
	wallets   walletDirectory
	couponSrc couponStore
	evaluator couponEvaluator
	ratesSrc  rateSource
	tokens    tokenInfoSource
	orders    orderStore

	tx      txRunner
	events  outboxPublisher
	cfg     config.SettlementConfig
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics

	now func() time.Time
}

// NewService builds the checkout orchestrator.
func NewService(
	catalog pricingSource,
	walletDir walletDirectory,
	couponSrc couponStore,
	evaluator couponEvaluator,
	ratesSrc rateSource,
	tokens tokenInfoSource,
	orders orderStore,
	tx txRunner,
	events outboxPublisher,
	cfg config.SettlementConfig,
	logg *logger.Logger,
	m *metrics.CheckoutMetrics,
) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("pricing source required")
	}
	if walletDir == nil {
		return nil, fmt.Errorf("wallet directory required")
	}
	if ratesSrc == nil {
		return nil, fmt.Errorf("rate source required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if cfg.DistributionWallet == "" {
		return nil, fmt.Errorf("distribution wallet required")
	}
	if _, err := decimal.NewFromString(cfg.FeePerWallet); err != nil {
		return nil, fmt.Errorf("parse fee per wallet %q: %w", cfg.FeePerWallet, err)
	}
	return &service{
		catalog:   catalog,
		wallets:   walletDir,
		couponSrc: couponSrc,
		evaluator: evaluator,
		ratesSrc:  ratesSrc,
		tokens:    tokens,
		orders:    orders,
		tx:        tx,
		events:    events,
		cfg:       cfg,
		logg:      logg,
		metrics:   m,
		now:       time.Now,
	}, nil
}

// settlement is the single currency a batch settles in. Every item converts
// into it so wallet aggregates and the batch total share one scale.
type settlement struct {
	unit   money.Unit
	token  money.TokenRef
	strict bool
}

// itemPlan is the priced, converted form of one cart item before order
// creation.
type itemPlan struct {
	item       CartItem
	product    pricing.ProductPricing
	resolution pricing.Resolution
	collection wallets.CollectionInfo

	rate          decimal.Decimal
	rateSource    string
	unitPrice     decimal.Decimal
	totalSmallest int64
}

func (s *service) Execute(ctx context.Context, req Request) (*BatchResult, error) {
	started := s.now()
	result, err := s.execute(ctx, req)
	if s.metrics != nil {
		outcome := "completed"
		if err != nil {
			outcome = "rejected"
		}
		s.metrics.ObserveBatch(string(req.Payment.Method), outcome, s.now().Sub(started))
	}
	return result, err
}

func (s *service) execute(ctx context.Context, req Request) (*BatchResult, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !req.Payment.Method.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", req.Payment.Method)
	}
	// Non-positive quantities are coerced to the minimum rather than
	// rejected, matching the storefront's lenient cart semantics.
	for i := range req.Items {
		if req.Items[i].Quantity < 1 {
			req.Items[i].Quantity = 1
		}
	}

	batchID := uuid.New()
	if s.logg != nil {
		ctx = s.logg.WithBatchID(ctx, batchID.String())
	}

	plans, err := s.loadItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	settle, err := s.resolveSettlement(ctx, req.Payment, plans)
	if err != nil {
		return nil, err
	}

	// Price and convert every item before any order is created, so a rate
	// failure aborts the batch with no side effects.
	subtotal := int64(0)
	walletOrder := []string{}
	walletTotals := map[string]int64{}
	for i := range plans {
		plan := &plans[i]
		plan.resolution = pricing.Resolve(plan.product, plan.item.SelectedOptions)

		quote, err := s.ratesSrc.Rate(ctx, plan.product.BaseCurrency, settle.token)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeRate, err,
				fmt.Sprintf("no conversion rate from %s to %s", plan.product.BaseCurrency, settle.unit.Code))
		}
		plan.rate = quote.Rate
		plan.rateSource = quote.Source

		rawTotal := plan.resolution.RawUnitPrice.Mul(decimal.NewFromInt(int64(plan.item.Quantity))).Mul(quote.Rate)
		plan.totalSmallest = settle.unit.ToSmallest(rawTotal)
		plan.unitPrice = settle.unit.RoundDisplay(plan.resolution.RawUnitPrice.Mul(quote.Rate))

		subtotal += plan.totalSmallest
		wallet := plan.collection.WalletAddress
		if _, seen := walletTotals[wallet]; !seen {
			walletOrder = append(walletOrder, wallet)
		}
		walletTotals[wallet] += plan.totalSmallest
	}

	discount := s.applyCoupon(ctx, req, plans, settle, subtotal)

	discounted := subtotal - discount
	if discounted < 0 {
		discounted = 0
	}
	free := discounted <= 0

	fee := int64(0)
	if !free && req.Payment.Method.FeeBearing() && len(walletTotals) > 1 {
		perWallet, _ := decimal.NewFromString(s.cfg.FeePerWallet)
		fee = settle.unit.ToSmallest(perWallet) * int64(len(walletTotals))
	}

	total := discounted + fee
	if free {
		total = 0
	}

	receiver := s.cfg.DistributionWallet
	if len(walletOrder) == 1 {
		receiver = walletOrder[0]
	}

	signature := ""
	if free {
		signature = fmt.Sprintf("FREE_ORDER_%d_%s", s.now().Unix(), req.WalletAddress)
	}

	walletAmounts := make(map[string]decimal.Decimal, len(walletTotals))
	for wallet, units := range walletTotals {
		walletAmounts[wallet] = settle.unit.FromSmallest(units)
	}

	result := &BatchResult{
		BatchOrderID:         batchID,
		CurrencyUnit:         settle.unit.Code,
		OriginalPrice:        settle.unit.FromSmallest(subtotal),
		CouponDiscount:       settle.unit.FromSmallest(discount),
		Fee:                  settle.unit.FromSmallest(fee),
		TotalPaymentAmount:   settle.unit.FromSmallest(total),
		ReceiverWallet:       receiver,
		WalletAmounts:        walletAmounts,
		IsFreeOrder:          free,
		TransactionSignature: signature,
	}

	// Orders and the batch event commit together: a published event always
	// refers to durable orders, and a crash before commit loses neither.
	runBatch := func(tx *gorm.DB) error {
		if err := s.createOrders(ctx, tx, req, plans, settle, result); err != nil {
			return err
		}
		return s.emitBatchCreated(ctx, tx, req, result, len(plans))
	}
	var batchErr error
	if s.tx != nil {
		batchErr = s.tx.WithTx(ctx, runBatch)
	} else {
		batchErr = runBatch(nil)
	}
	if batchErr != nil {
		return nil, batchErr
	}
	return result, nil
}

// scoped runs fn in a savepoint when a batch transaction is active, so a
// tolerated per-item failure does not abort the surrounding transaction.
func scoped(tx *gorm.DB, fn func(h *gorm.DB) error) error {
	if tx == nil {
		return fn(nil)
	}
	return tx.Transaction(fn)
}

// loadItems fetches pricing snapshots and wallet routing for every item.
// Any failure here is fatal to the batch.
func (s *service) loadItems(ctx context.Context, items []CartItem) ([]itemPlan, error) {
	plans := make([]itemPlan, 0, len(items))
	for i, item := range items {
		product, err := s.catalog.Pricing(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.CollectionID == nil {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "item %d: product %s has no collection", i, item.ProductID)
		}
		collection, err := s.wallets.CollectionInfo(ctx, *product.CollectionID)
		if err != nil {
			return nil, err
		}
		plans = append(plans, itemPlan{item: item, product: product, collection: collection})
	}
	return plans, nil
}

// resolveSettlement picks the one currency the whole batch settles in:
// a collection strict token for SPL payments, the configured default token
// for native payments, and the stable currency otherwise.
func (s *service) resolveSettlement(ctx context.Context, payment PaymentMetadata, plans []itemPlan) (settlement, error) {
	if payment.Method == enums.PaymentMethodSpl {
		for _, plan := range plans {
			if plan.collection.StrictToken == nil {
				continue
			}
			token := *plan.collection.StrictToken
			if s.tokens != nil {
				// Chain metadata beats client-supplied token details.
				resolved, err := s.tokens.TokenInfo(ctx, token.Address, payment.TokenSymbol)
				if err == nil {
					token = resolved
				} else if s.logg != nil {
					s.logg.Warn(ctx, fmt.Sprintf("strict token lookup failed for %s, using stored values: %v", token.Address, err))
				}
			}
			return settlement{unit: money.UnitForToken(token), token: token, strict: true}, nil
		}
		return s.currencySettlement(money.CurrencyUSDC)
	}

	if payment.Method == enums.PaymentMethodSol {
		currency, err := money.ParseCurrency(s.cfg.DefaultToken)
		if err != nil {
			return settlement{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "invalid default settlement token")
		}
		return s.currencySettlement(currency)
	}

	return s.currencySettlement(money.CurrencyUSDC)
}

func (s *service) currencySettlement(currency money.Currency) (settlement, error) {
	token, ok := money.TokenForCurrency(currency)
	if !ok {
		return settlement{}, pkgerrors.Newf(pkgerrors.CodeInternal, "currency %s has no mint", currency)
	}
	return settlement{unit: currency.Unit(), token: token}, nil
}

// applyCoupon returns the discount in smallest units, capped at the
// subtotal. Coupon failures of any kind degrade to zero discount.
func (s *service) applyCoupon(ctx context.Context, req Request, plans []itemPlan, settle settlement, subtotal int64) int64 {
	code := req.Payment.CouponCode
	if code == "" || s.couponSrc == nil || s.evaluator == nil {
		return 0
	}

	coupon, err := s.couponSrc.ActiveCoupon(ctx, code)
	if err != nil {
		s.warnCoupon(ctx, code, err.Error())
		return 0
	}
	if coupon == nil {
		s.warnCoupon(ctx, code, "no active coupon with this code")
		return 0
	}

	collectionIDs := make([]string, 0, len(plans))
	for _, plan := range plans {
		collectionIDs = append(collectionIDs, plan.collection.CollectionID.String())
	}

	res, err := s.evaluator.Evaluate(ctx, coupon, req.WalletAddress, collectionIDs)
	if err != nil {
		s.warnCoupon(ctx, code, err.Error())
		return 0
	}
	if !res.Valid {
		s.warnCoupon(ctx, code, res.Reason)
		return 0
	}

	discount := s.discountSmallest(ctx, res.Discount, settle, subtotal)
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

func (s *service) discountSmallest(ctx context.Context, d coupons.Discount, settle settlement, subtotal int64) int64 {
	switch d.Type {
	case coupons.DiscountPercentage:
		return decimal.NewFromInt(subtotal).
			Mul(d.Value).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case coupons.DiscountFixed:
		amount := d.Value
		if !money.SameAsset(d.Currency, settle.token) {
			quote, err := s.ratesSrc.Rate(ctx, d.Currency, settle.token)
			if err != nil {
				s.warnCoupon(ctx, "", fmt.Sprintf("discount conversion from %s failed: %v", d.Currency, err))
				return 0
			}
			amount = amount.Mul(quote.Rate)
		}
		return settle.unit.ToSmallest(amount)
	default:
		return 0
	}
}

func (s *service) warnCoupon(ctx context.Context, code, reason string) {
	if s.logg == nil {
		return
	}
	msg := fmt.Sprintf("coupon not applied: %s", reason)
	if code != "" {
		msg = fmt.Sprintf("coupon %s not applied: %s", code, reason)
	}
	s.logg.Warn(ctx, msg)
}

// createOrders runs the per-item creation loop. Item failures are logged
// and skipped; only a batch that creates zero orders is an error.
func (s *service) createOrders(ctx context.Context, tx *gorm.DB, req Request, plans []itemPlan, settle settlement, result *BatchResult) error {
	status := enums.OrderStatusDraft
	if result.IsFreeOrder {
		status = enums.OrderStatusPendingPayment
	}

	var itemErrs []error
	for i, plan := range plans {
		order := &models.Order{
			ProductID:     plan.product.ProductID,
			Quantity:      plan.item.Quantity,
			Variants:      variantsJSON(plan.item.SelectedOptions),
			VariantKey:    plan.resolution.VariantKey,
			WalletAddress: plan.collection.WalletAddress,
			ShippingInfo:  req.ShippingInfo,
			Status:        enums.OrderStatusDraft,
			UnitPrice:     plan.unitPrice,
			ItemTotal:     settle.unit.FromSmallest(plan.totalSmallest),
			CurrencyUnit:  settle.unit.Code,
			BatchOrderID:  result.BatchOrderID,
			ItemIndex:     i,
			ItemCount:     len(plans),
			Metadata:      s.orderMetadata(req, plan, settle, result, i, len(plans)),
		}

		var created *models.Order
		err := scoped(tx, func(h *gorm.DB) error {
			var createErr error
			created, createErr = s.orders.CreateOrder(ctx, h, order)
			return createErr
		})
		if err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("item %d: %w", i, err))
			if s.metrics != nil {
				s.metrics.IncItemFailure()
			}
			if s.logg != nil {
				s.logg.Error(ctx, fmt.Sprintf("order creation failed for item %d, continuing", i), err)
			}
			continue
		}

		if len(plan.item.CustomizationData) > 0 {
			entry := &models.CustomDataEntry{
				OrderID: created.ID,
				Kind:    "customization",
				Payload: types.JSONMap(plan.item.CustomizationData),
			}
			err := scoped(tx, func(h *gorm.DB) error {
				return s.orders.CreateCustomDataEntry(ctx, h, entry)
			})
			if err != nil && s.logg != nil {
				s.logg.Error(ctx, fmt.Sprintf("custom data entry failed for order %s", created.ID), err)
			}
		}

		// Batch linkage update after the fact. A failure here leaves the
		// order with stale secondary fields, which is accepted and logged
		// rather than rolled back.
		fields := map[string]any{"status": status}
		if result.TransactionSignature != "" {
			fields["transaction_signature"] = result.TransactionSignature
		}
		updateErr := scoped(tx, func(h *gorm.DB) error {
			return s.orders.UpdateOrder(ctx, h, created.ID, fields)
		})
		if updateErr != nil && s.logg != nil {
			s.logg.Error(ctx, fmt.Sprintf("batch linkage update failed for order %s", created.ID), updateErr)
		}

		result.Orders = append(result.Orders, ItemResult{
			OrderID:     created.ID,
			OrderNumber: created.OrderNumber,
			ProductID:   plan.product.ProductID,
			Status:      status,
			Quantity:    plan.item.Quantity,
			UnitPrice:   plan.unitPrice,
			ItemTotal:   settle.unit.FromSmallest(plan.totalSmallest),
			VariantKey:  plan.resolution.VariantKey,
		})
		result.OrderIDs = append(result.OrderIDs, created.ID)
		result.OrderNumbers = append(result.OrderNumbers, created.OrderNumber)
	}

	if len(result.Orders) == 0 {
		combined := multierr.Combine(itemErrs...)
		return pkgerrors.Wrap(pkgerrors.CodeValidation, combined, "no orders could be created")
	}
	return nil
}

func (s *service) orderMetadata(req Request, plan itemPlan, settle settlement, result *BatchResult, index, count int) types.JSONMap {
	meta := types.JSONMap{
		"batch_order_id":       result.BatchOrderID.String(),
		"item_index":           index,
		"item_count":           count,
		"payment_method":       string(req.Payment.Method),
		"currency_unit":        settle.unit.Code,
		"buyer_wallet":         req.WalletAddress,
		"receiver_wallet":      result.ReceiverWallet,
		"original_price":       result.OriginalPrice.String(),
		"coupon_discount":      result.CouponDiscount.String(),
		"fee":                  result.Fee.String(),
		"total_payment_amount": result.TotalPaymentAmount.String(),
		"is_free_order":        result.IsFreeOrder,
		"conversion_rate":      plan.rate.String(),
		"rate_source":          plan.rateSource,
		"base_currency":        string(plan.product.BaseCurrency),
	}
	if req.Payment.CouponCode != "" {
		meta["coupon_code"] = req.Payment.CouponCode
	}
	if settle.strict {
		meta["strict_token"] = map[string]any{
			"address":  settle.token.Address,
			"symbol":   settle.token.Symbol,
			"decimals": settle.token.Decimals,
		}
	}
	if len(plan.resolution.VariantDisplay) > 0 {
		meta["variant_display"] = plan.resolution.VariantDisplay
	}
	amounts := make(map[string]string, len(result.WalletAmounts))
	for wallet, amount := range result.WalletAmounts {
		amounts[wallet] = amount.String()
	}
	meta["wallet_amounts"] = amounts
	return meta
}

// emitBatchCreated queues the batch event on the outbox inside the batch
// transaction. Deduplication is keyed on the batch aggregate, so an
// idempotent replay cannot queue the event twice.
func (s *service) emitBatchCreated(ctx context.Context, tx *gorm.DB, req Request, result *BatchResult, itemCount int) error {
	if s.events == nil || tx == nil {
		return nil
	}

	amounts := make(map[string]string, len(result.WalletAmounts))
	for wallet, amount := range result.WalletAmounts {
		amounts[wallet] = amount.String()
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventOrderBatchCreated,
		AggregateType: enums.AggregateOrderBatch,
		AggregateID:   result.BatchOrderID,
		Buyer:         &outbox.BuyerRef{WalletAddress: req.WalletAddress},
		Version:       1,
		Data: payloads.OrderBatchCreatedEvent{
			BatchOrderID:         result.BatchOrderID,
			OrderIDs:             result.OrderIDs,
			OrderNumbers:         result.OrderNumbers,
			ItemCount:            itemCount,
			CreatedCount:         len(result.Orders),
			TotalPaymentAmount:   result.TotalPaymentAmount.String(),
			CouponDiscount:       result.CouponDiscount.String(),
			Fee:                  result.Fee.String(),
			CurrencyUnit:         result.CurrencyUnit,
			ReceiverWallet:       result.ReceiverWallet,
			WalletAmounts:        amounts,
			PaymentMethod:        string(req.Payment.Method),
			IsFreeOrder:          result.IsFreeOrder,
			TransactionSignature: result.TransactionSignature,
		},
	}

	if err := s.events.EmitIfNotExists(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue batch created event")
	}
	return nil
}

func variantsJSON(options map[string]string) types.JSONMap {
	if len(options) == 0 {
		return nil
	}
	out := make(types.JSONMap, len(options))
	for k, v := range options {
		out[k] = v
	}
	return out
}
