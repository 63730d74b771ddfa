// Package coupons evaluates coupon eligibility: nested AND/OR rule groups
// over token-holding and whitelist predicates, gated by an optional
// collection allow-list.
package coupons

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/logger"
)

// Result is the outcome of one eligibility evaluation. Reason is set only
// when Valid is false.
type Result struct {
	Valid    bool
	Discount Discount
	Reason   string
}

// Engine evaluates coupons against a buyer wallet and the cart's
// collections.
type Engine struct {
	balances BalanceSource
	logg     *logger.Logger
}

// NewEngine builds the eligibility engine.
func NewEngine(balances BalanceSource, logg *logger.Logger) (*Engine, error) {
	if balances == nil {
		return nil, fmt.Errorf("balance source is required")
	}
	return &Engine{balances: balances, logg: logg}, nil
}

// Evaluate runs the coupon's rule groups. Returned evaluation failures are
// in Result.Reason; the error return is reserved for nil inputs.
func (e *Engine) Evaluate(ctx context.Context, coupon *Coupon, wallet string, collectionIDs []string) (Result, error) {
	if coupon == nil {
		return Result{}, fmt.Errorf("coupon is required")
	}

	if coupon.RestrictsCollections() && !intersects(coupon.Collections, collectionIDs) {
		return Result{Reason: "coupon is not valid for these products"}, nil
	}

	// No rule groups means no gating.
	for _, group := range coupon.Groups {
		if reason := e.evaluateGroup(ctx, group, wallet); reason != "" {
			return Result{Reason: reason}, nil
		}
	}

	return Result{Valid: true, Discount: coupon.Discount}, nil
}

// evaluateGroup returns an empty string when the group passes.
func (e *Engine) evaluateGroup(ctx context.Context, group RuleGroup, wallet string) string {
	if len(group.Rules) == 0 {
		return ""
	}

	switch group.Operator {
	case OperatorAnd:
		for _, rule := range group.Rules {
			if reason := e.evaluateRule(ctx, rule, wallet); reason != "" {
				return reason
			}
		}
		return ""
	case OperatorOr:
		for _, rule := range group.Rules {
			if reason := e.evaluateRule(ctx, rule, wallet); reason == "" {
				return ""
			}
		}
		return "none of the coupon requirements were met"
	default:
		return fmt.Sprintf("unknown rule group operator %q", group.Operator)
	}
}

func (e *Engine) evaluateRule(ctx context.Context, rule Rule, wallet string) string {
	switch rule.Kind {
	case RuleTokenHolding:
		return e.evaluateTokenHolding(ctx, rule, wallet)
	case RuleWhitelist:
		return evaluateWhitelist(rule, wallet)
	default:
		return fmt.Sprintf("unknown rule kind %q", rule.Kind)
	}
}

func (e *Engine) evaluateTokenHolding(ctx context.Context, rule Rule, wallet string) string {
	if wallet == "" {
		return "wallet address required for token-holding coupons"
	}

	required := rule.MinQuantity
	if !required.IsPositive() {
		required = decimal.NewFromInt(1)
	}

	balance, err := e.balances.TokenBalance(ctx, wallet, rule.Value)
	if err != nil {
		if e.logg != nil {
			e.logg.Warn(e.logg.WithWallet(ctx, wallet), fmt.Sprintf("token balance lookup failed for %s: %v", rule.Value, err))
		}
		return fmt.Sprintf("could not verify balance of token %s", rule.Value)
	}

	if balance.LessThan(required) {
		shortfall := required.Sub(balance)
		return fmt.Sprintf("requires %s of token %s, you hold %s (%s short)", required, rule.Value, balance, shortfall)
	}
	return ""
}

func evaluateWhitelist(rule Rule, wallet string) string {
	if wallet == "" {
		return "wallet address required for whitelisted coupons"
	}
	for _, entry := range strings.Split(rule.Value, ",") {
		if strings.EqualFold(strings.TrimSpace(entry), wallet) {
			return ""
		}
	}
	return "wallet is not on the coupon whitelist"
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
