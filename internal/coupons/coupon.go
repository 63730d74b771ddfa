package coupons

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/db/models"
	"github.com/minthouse/storefront-backend/pkg/money"
)

// DiscountType is how a coupon's value is interpreted.
type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// RuleKind names one eligibility predicate.
type RuleKind string

const (
	RuleTokenHolding RuleKind = "token-holding"
	RuleWhitelist    RuleKind = "whitelist"
)

// GroupOperator combines the rules inside one group.
type GroupOperator string

const (
	OperatorAnd GroupOperator = "AND"
	OperatorOr  GroupOperator = "OR"
)

// Rule is a single eligibility predicate. For token-holding rules Value is a
// mint address and MinQuantity the required balance (1 when unset). For
// whitelist rules Value is a comma-separated address list.
type Rule struct {
	Kind        RuleKind        `json:"kind"`
	Value       string          `json:"value"`
	MinQuantity decimal.Decimal `json:"minQuantity"`
}

// RuleGroup is a boolean combinator over rules. Groups themselves are always
// AND'd together.
type RuleGroup struct {
	Operator GroupOperator `json:"operator"`
	Rules    []Rule        `json:"rules"`
}

// Discount is the benefit a valid coupon grants. For fixed discounts the
// value is denominated in Currency; for percentage discounts Currency is
// ignored.
type Discount struct {
	Type     DiscountType
	Value    decimal.Decimal
	Currency money.Currency
}

// Coupon is the evaluated form of a stored coupon.
type Coupon struct {
	Code        string
	Discount    Discount
	Groups      []RuleGroup
	Collections []string
}

// RestrictsCollections reports whether the coupon only applies to specific
// collections.
func (c Coupon) RestrictsCollections() bool {
	return len(c.Collections) > 0
}

// FromModel converts a stored coupon row into its evaluated form.
func FromModel(row *models.Coupon) (*Coupon, error) {
	if row == nil {
		return nil, fmt.Errorf("coupon row is nil")
	}

	dt := DiscountType(strings.ToLower(row.DiscountType))
	switch dt {
	case DiscountFixed, DiscountPercentage:
	default:
		return nil, fmt.Errorf("unknown discount type %q", row.DiscountType)
	}

	currency := money.CurrencyUSDC
	if parsed, err := money.ParseCurrency(row.DiscountCurrency); err == nil {
		currency = parsed
	}

	groups, err := parseRuleGroups(row.RuleGroups)
	if err != nil {
		return nil, fmt.Errorf("coupon %s: %w", row.Code, err)
	}

	return &Coupon{
		Code: row.Code,
		Discount: Discount{
			Type:     dt,
			Value:    row.DiscountValue,
			Currency: currency,
		},
		Groups:      groups,
		Collections: row.Collections,
	}, nil
}

type ruleGroupsDoc struct {
	Groups []RuleGroup `json:"groups"`
}

func parseRuleGroups(raw map[string]any) ([]RuleGroup, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode rule groups: %w", err)
	}
	var doc ruleGroupsDoc
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, fmt.Errorf("decode rule groups: %w", err)
	}
	for i, group := range doc.Groups {
		switch group.Operator {
		case OperatorAnd, OperatorOr:
		default:
			return nil, fmt.Errorf("group %d: unknown operator %q", i, group.Operator)
		}
		for j, rule := range group.Rules {
			switch rule.Kind {
			case RuleTokenHolding, RuleWhitelist:
			default:
				return nil, fmt.Errorf("group %d rule %d: unknown kind %q", i, j, rule.Kind)
			}
		}
	}
	return doc.Groups, nil
}
