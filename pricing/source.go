// Package pricing defines the unit-price lookup consumed by the cost
// estimator, plus in-memory and caching implementations.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/pkg/errors"
	"terraform-cost-analyzer/plan"
)

// Query is the lookup key for a unit price. Keys are immutable facts
// about a resource, so concurrent lookups of distinct keys never
// conflict.
type Query struct {
	Provider       classify.CloudProvider
	ResourceType   classify.ResourceType
	Region         string
	Tier           plan.PricingTier
	SizeDescriptor string
}

// UnitPrice is a resolved rate for one billing unit.
type UnitPrice struct {
	Price    decimal.Decimal
	Unit     string
	Currency string
}

// Source resolves unit prices. Implementations fail with
// PricingDataNotFoundError when no rate exists for the key and
// RateLimitError when the backend throttles; both are recoverable at
// the plan level.
type Source interface {
	GetUnitPrice(ctx context.Context, q Query) (UnitPrice, error)
}

// HoursPerMonth is the fixed average used to convert hourly rates to
// monthly cost. Using one constant across providers keeps
// cross-provider comparison independent of calendar month length.
const HoursPerMonth = 730

// Billing units understood by the estimator.
const (
	UnitHours    = "hours"
	UnitGBMonth  = "GB-month"
	UnitGB       = "GB"
	UnitRequests = "1M requests"
	UnitPerMonth = "month"
)

func pricingNotFoundError(q Query) error {
	return &errors.PricingDataNotFoundError{
		Provider:     string(q.Provider),
		ResourceType: string(q.ResourceType),
		Region:       q.Region,
		Tier:         string(q.Tier),
		Size:         q.SizeDescriptor,
	}
}
