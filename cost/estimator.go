package cost

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/pkg/errors"
	"terraform-cost-analyzer/plan"
	"terraform-cost-analyzer/pricing"
	"terraform-cost-analyzer/usage"
)

// HoursPerMonth converts hourly rates to monthly cost.
const HoursPerMonth = pricing.HoursPerMonth

// dimension is one priceable aspect of a resource category.
type dimension struct {
	name   string
	metric string
}

// dimensionsByType lists the cost dimensions per normalized category.
// Categories absent here (security, management, other) have no
// hour- or usage-metered dimension and are priced as a flat monthly
// service charge, or not at all for other.
var dimensionsByType = map[classify.ResourceType][]dimension{
	classify.ResourceTypeCompute:    {{name: "Compute", metric: usage.MetricMonthlyHours}},
	classify.ResourceTypeStorage:    {{name: "Storage", metric: usage.MetricStorageGB}},
	classify.ResourceTypeDatabase:   {{name: "Compute", metric: usage.MetricMonthlyHours}, {name: "Storage", metric: usage.MetricStorageGB}},
	classify.ResourceTypeNetwork:    {{name: "Network", metric: usage.MetricDataTransferGB}},
	classify.ResourceTypeServerless: {{name: "Requests", metric: usage.MetricMonthlyRequests}},
	classify.ResourceTypeContainer:  {{name: "Compute", metric: usage.MetricMonthlyHours}},
	classify.ResourceTypeAnalytics:  {{name: "Compute", metric: usage.MetricMonthlyHours}, {name: "Storage", metric: usage.MetricStorageGB}},
	classify.ResourceTypeSecurity:   {{name: "Service", metric: ""}},
	classify.ResourceTypeManagement: {{name: "Service", metric: ""}},
}

// Estimator prices individual resources against a pricing source.
type Estimator struct {
	source      pricing.Source
	usage       *usage.Estimator
	environment string
	currency    string
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewEstimator creates an estimator with default usage profiles, a
// ten second per-lookup timeout and USD as the working currency.
func NewEstimator(source pricing.Source) *Estimator {
	return &Estimator{
		source:      source,
		usage:       usage.NewEstimator(),
		environment: "dev",
		currency:    "USD",
		timeout:     10 * time.Second,
		logger:      zerolog.Nop(),
	}
}

// WithEnvironment sets the usage environment profile.
func (e *Estimator) WithEnvironment(env string) *Estimator {
	e.environment = env
	return e
}

// WithTimeout sets the per-lookup pricing timeout.
func (e *Estimator) WithTimeout(d time.Duration) *Estimator {
	e.timeout = d
	return e
}

// WithLogger sets the estimator's logger.
func (e *Estimator) WithLogger(logger zerolog.Logger) *Estimator {
	e.logger = logger
	return e
}

// WithUsage replaces the usage estimator.
func (e *Estimator) WithUsage(u *usage.Estimator) *Estimator {
	e.usage = u
	return e
}

// Estimate prices one resource. Deleted and unchanged resources are
// still priced so the analysis can report what is being removed or
// already running; the aggregator decides what counts toward forward
// totals. Pricing failures do not abort: the resource comes back with
// zero-cost components, a details note and Priced=false.
func (e *Estimator) Estimate(ctx context.Context, res plan.ParsedResource) (*ResourceCost, error) {
	rc := &ResourceCost{
		Address:       res.Address,
		ModuleAddress: res.ModuleAddress,
		Metadata:      res.Metadata,
		Action:        res.Action,
		HourlyCost:    decimal.Zero,
		MonthlyCost:   decimal.Zero,
		Priced:        true,
	}

	estimates, err := e.usage.Estimate(res.Metadata, e.environment)
	if err != nil {
		// Recoverable: defaults were substituted.
		e.logger.Warn().Err(err).Str("address", res.Address).Msg("usage estimation degraded to defaults")
	}
	rc.UsageEstimates = estimates

	size := sizeDescriptor(res.Metadata.Specifications)

	for _, dim := range dimensionsByType[res.Metadata.NormalizedType] {
		component, err := e.priceDimension(ctx, res, dim, size, estimates)
		if err != nil {
			return nil, err
		}
		if !component.priced {
			rc.Priced = false
		}
		rc.Components = append(rc.Components, component.CostComponent)
		rc.HourlyCost = rc.HourlyCost.Add(component.HourlyCost)
		rc.MonthlyCost = rc.MonthlyCost.Add(component.MonthlyCost)
	}

	return rc, nil
}

type pricedComponent struct {
	CostComponent
	priced bool
}

// priceDimension resolves one component. Recoverable pricing errors
// produce a zero-cost component with the failure noted in its details.
func (e *Estimator) priceDimension(ctx context.Context, res plan.ParsedResource, dim dimension, size string, estimates map[string]float64) (pricedComponent, error) {
	query := pricing.Query{
		Provider:       res.Metadata.Provider,
		ResourceType:   res.Metadata.NormalizedType,
		Region:         res.Metadata.Region,
		Tier:           res.Metadata.PricingTier,
		SizeDescriptor: size,
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	price, err := e.source.GetUnitPrice(lookupCtx, query)
	if err != nil {
		if recoverable(err) {
			e.logger.Warn().Err(err).Str("address", res.Address).Str("component", dim.name).Msg("pricing unavailable")
			return zeroComponent(dim, err.Error()), nil
		}
		if stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return pricedComponent{}, &errors.EstimationTimeoutError{Address: res.Address, Timeout: e.timeout}
		}
		return pricedComponent{}, err
	}

	if price.Price.Sign() <= 0 {
		calcErr := &errors.PricingCalculationError{Reason: "unit price is not positive: " + price.Price.String()}
		e.logger.Warn().Err(calcErr).Str("address", res.Address).Str("component", dim.name).Msg("pricing rejected")
		return zeroComponent(dim, calcErr.Error()), nil
	}

	hourly, monthly := componentCost(price, dim, estimates)

	return pricedComponent{
		priced: true,
		CostComponent: CostComponent{
			Name:        dim.name,
			Unit:        price.Unit,
			HourlyCost:  hourly,
			MonthlyCost: monthly,
			Details: map[string]string{
				"unit_price": price.Price.String(),
				"region":     res.Metadata.Region,
				"size":       size,
			},
		},
	}, nil
}

// componentCost applies the usage quantity for the component's unit.
// Hourly rates convert to monthly with the fixed HoursPerMonth
// constant; everything else derives hourly from monthly the same way.
func componentCost(price pricing.UnitPrice, dim dimension, estimates map[string]float64) (hourly, monthly decimal.Decimal) {
	switch price.Unit {
	case pricing.UnitHours:
		hourly = price.Price
		hours := estimates[usage.MetricMonthlyHours]
		if hours == 0 {
			hours = HoursPerMonth
		}
		monthly = price.Price.Mul(decimal.NewFromFloat(hours))
	case pricing.UnitGBMonth:
		monthly = price.Price.Mul(decimal.NewFromFloat(estimates[usage.MetricStorageGB]))
		hourly = monthly.Div(decimal.NewFromInt(HoursPerMonth))
	case pricing.UnitGB:
		monthly = price.Price.Mul(decimal.NewFromFloat(estimates[usage.MetricDataTransferGB]))
		hourly = monthly.Div(decimal.NewFromInt(HoursPerMonth))
	case pricing.UnitRequests:
		millions := estimates[usage.MetricMonthlyRequests] / 1_000_000
		monthly = price.Price.Mul(decimal.NewFromFloat(millions))
		hourly = monthly.Div(decimal.NewFromInt(HoursPerMonth))
	default:
		// Flat monthly service charge.
		monthly = price.Price
		hourly = monthly.Div(decimal.NewFromInt(HoursPerMonth))
	}
	return hourly.Round(6), monthly.Round(4)
}

func zeroComponent(dim dimension, note string) pricedComponent {
	return pricedComponent{
		priced: false,
		CostComponent: CostComponent{
			Name:        dim.name,
			Unit:        "",
			HourlyCost:  decimal.Zero,
			MonthlyCost: decimal.Zero,
			Details:     map[string]string{"pricing_note": note},
		},
	}
}

// recoverable reports whether a pricing failure should degrade to a
// flagged zero-cost component instead of aborting the analysis.
func recoverable(err error) bool {
	var notFound *errors.PricingDataNotFoundError
	var calc *errors.PricingCalculationError
	var rate *errors.RateLimitError
	return stderrors.As(err, &notFound) || stderrors.As(err, &calc) || stderrors.As(err, &rate)
}

// sizeDescriptor picks the vendor attribute that identifies the
// resource's size or class. Numeric values are skipped: attributes
// like an EBS volume's size carry capacity, not a machine class.
func sizeDescriptor(specs map[string]string) string {
	for _, key := range []string{"instance_type", "instance_class", "machine_type", "vm_size", "size", "volume_type", "storage_class", "sku_name", "tier"} {
		v, ok := specs[key]
		if !ok || v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			continue
		}
		return v
	}
	return ""
}
