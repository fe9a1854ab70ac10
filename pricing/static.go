package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/plan"
)

// StaticSource is an in-memory price table used for offline analysis
// and tests. Entries are keyed by provider, normalized type, tier and
// size, per region, with a fallback to the provider's default region.
type StaticSource struct {
	entries map[string]map[string]UnitPrice // key -> region -> price
}

// NewStaticSource returns an empty static source.
func NewStaticSource() *StaticSource {
	return &StaticSource{entries: make(map[string]map[string]UnitPrice)}
}

// Add registers a price for a key in a region.
func (s *StaticSource) Add(q Query, price UnitPrice) {
	key := staticKey(q)
	if _, ok := s.entries[key]; !ok {
		s.entries[key] = make(map[string]UnitPrice)
	}
	s.entries[key][q.Region] = price
}

// GetUnitPrice resolves a price. Lookup order: exact region, the
// provider's default region, then the size-generic rate for the same
// dimension.
func (s *StaticSource) GetUnitPrice(_ context.Context, q Query) (UnitPrice, error) {
	if price, ok := s.lookup(staticKey(q), q); ok {
		return price, nil
	}
	if q.SizeDescriptor != "" {
		generic := q
		generic.SizeDescriptor = ""
		if price, ok := s.lookup(staticKey(generic), q); ok {
			return price, nil
		}
	}
	return UnitPrice{}, notFound(q)
}

func (s *StaticSource) lookup(key string, q Query) (UnitPrice, bool) {
	regions, ok := s.entries[key]
	if !ok {
		return UnitPrice{}, false
	}
	if price, ok := regions[q.Region]; ok {
		return price, true
	}
	price, ok := regions[DefaultRegion(q.Provider)]
	return price, ok
}

// Walk visits every registered price. Used to seed external stores
// from the built-in table.
func (s *StaticSource) Walk(fn func(Query, UnitPrice)) {
	for key, regions := range s.entries {
		parts := strings.SplitN(key, ":", 4)
		if len(parts) != 4 {
			continue
		}
		for region, price := range regions {
			fn(Query{
				Provider:       classify.CloudProvider(parts[0]),
				ResourceType:   classify.ResourceType(parts[1]),
				Region:         region,
				Tier:           plan.PricingTier(parts[2]),
				SizeDescriptor: parts[3],
			}, price)
		}
	}
}

func staticKey(q Query) string {
	return fmt.Sprintf("%s:%s:%s:%s", q.Provider, q.ResourceType, q.Tier, q.SizeDescriptor)
}

func notFound(q Query) error {
	return pricingNotFoundError(q)
}

// DefaultRegion is the region prices fall back to when a resource's
// region is unknown or has no entry.
func DefaultRegion(p classify.CloudProvider) string {
	switch p {
	case classify.ProviderAzure:
		return "eastus"
	case classify.ProviderGCP:
		return "us-central1"
	default:
		return "us-east-1"
	}
}

// DefaultStaticSource returns a source seeded with representative
// on-demand rates for all three providers. Rates are indicative, not a
// live price sheet.
func DefaultStaticSource() *StaticSource {
	s := NewStaticSource()

	usd := func(rate string, unit string) UnitPrice {
		return UnitPrice{Price: decimal.RequireFromString(rate), Unit: unit, Currency: "USD"}
	}

	type seed struct {
		provider classify.CloudProvider
		rt       classify.ResourceType
		size     string
		price    UnitPrice
	}

	seeds := []seed{
		// AWS compute
		{classify.ProviderAWS, classify.ResourceTypeCompute, "t3.micro", usd("0.0104", UnitHours)},
		{classify.ProviderAWS, classify.ResourceTypeCompute, "t3.small", usd("0.0208", UnitHours)},
		{classify.ProviderAWS, classify.ResourceTypeCompute, "t3.medium", usd("0.0416", UnitHours)},
		{classify.ProviderAWS, classify.ResourceTypeCompute, "t3.large", usd("0.0832", UnitHours)},
		{classify.ProviderAWS, classify.ResourceTypeCompute, "m5.large", usd("0.096", UnitHours)},
		{classify.ProviderAWS, classify.ResourceTypeCompute, "m5.xlarge", usd("0.192", UnitHours)},
		{classify.ProviderAWS, classify.ResourceTypeCompute, "", usd("0.05", UnitHours)},

		// AWS storage
		{classify.ProviderAWS, classify.ResourceTypeStorage, "gp3", usd("0.08", UnitGBMonth)},
		{classify.ProviderAWS, classify.ResourceTypeStorage, "gp2", usd("0.10", UnitGBMonth)},
		{classify.ProviderAWS, classify.ResourceTypeStorage, "io1", usd("0.125", UnitGBMonth)},
		{classify.ProviderAWS, classify.ResourceTypeStorage, "", usd("0.023", UnitGBMonth)},

		// AWS database
		{classify.ProviderAWS, classify.ResourceTypeDatabase, "db.t3.micro", usd("0.017", UnitHours)},
		{classify.ProviderAWS, classify.ResourceTypeDatabase, "db.t3.small", usd("0.034", UnitHours)},
		{classify.ProviderAWS, classify.ResourceTypeDatabase, "db.r5.large", usd("0.25", UnitHours)},
		{classify.ProviderAWS, classify.ResourceTypeDatabase, "", usd("0.05", UnitHours)},

		// AWS network, serverless, container, analytics
		{classify.ProviderAWS, classify.ResourceTypeNetwork, "", usd("0.09", UnitGB)},
		{classify.ProviderAWS, classify.ResourceTypeServerless, "", usd("0.20", UnitRequests)},
		{classify.ProviderAWS, classify.ResourceTypeContainer, "", usd("0.10", UnitHours)},
		{classify.ProviderAWS, classify.ResourceTypeAnalytics, "", usd("0.11", UnitHours)},
		{classify.ProviderAWS, classify.ResourceTypeSecurity, "", usd("1.00", UnitPerMonth)},
		{classify.ProviderAWS, classify.ResourceTypeManagement, "", usd("0.50", UnitPerMonth)},

		// Azure
		{classify.ProviderAzure, classify.ResourceTypeCompute, "Standard_B1s", usd("0.0104", UnitHours)},
		{classify.ProviderAzure, classify.ResourceTypeCompute, "Standard_B2s", usd("0.0416", UnitHours)},
		{classify.ProviderAzure, classify.ResourceTypeCompute, "Standard_D2s_v3", usd("0.096", UnitHours)},
		{classify.ProviderAzure, classify.ResourceTypeCompute, "", usd("0.05", UnitHours)},
		{classify.ProviderAzure, classify.ResourceTypeStorage, "", usd("0.0184", UnitGBMonth)},
		{classify.ProviderAzure, classify.ResourceTypeDatabase, "", usd("0.06", UnitHours)},
		{classify.ProviderAzure, classify.ResourceTypeNetwork, "", usd("0.087", UnitGB)},
		{classify.ProviderAzure, classify.ResourceTypeServerless, "", usd("0.20", UnitRequests)},
		{classify.ProviderAzure, classify.ResourceTypeContainer, "", usd("0.10", UnitHours)},
		{classify.ProviderAzure, classify.ResourceTypeAnalytics, "", usd("0.12", UnitHours)},
		{classify.ProviderAzure, classify.ResourceTypeSecurity, "", usd("1.00", UnitPerMonth)},
		{classify.ProviderAzure, classify.ResourceTypeManagement, "", usd("0.50", UnitPerMonth)},

		// GCP
		{classify.ProviderGCP, classify.ResourceTypeCompute, "e2-micro", usd("0.0076", UnitHours)},
		{classify.ProviderGCP, classify.ResourceTypeCompute, "e2-medium", usd("0.0335", UnitHours)},
		{classify.ProviderGCP, classify.ResourceTypeCompute, "n1-standard-1", usd("0.0475", UnitHours)},
		{classify.ProviderGCP, classify.ResourceTypeCompute, "", usd("0.05", UnitHours)},
		{classify.ProviderGCP, classify.ResourceTypeStorage, "", usd("0.020", UnitGBMonth)},
		{classify.ProviderGCP, classify.ResourceTypeDatabase, "", usd("0.0525", UnitHours)},
		{classify.ProviderGCP, classify.ResourceTypeNetwork, "", usd("0.12", UnitGB)},
		{classify.ProviderGCP, classify.ResourceTypeServerless, "", usd("0.40", UnitRequests)},
		{classify.ProviderGCP, classify.ResourceTypeContainer, "", usd("0.10", UnitHours)},
		{classify.ProviderGCP, classify.ResourceTypeAnalytics, "", usd("0.11", UnitHours)},
		{classify.ProviderGCP, classify.ResourceTypeSecurity, "", usd("1.00", UnitPerMonth)},
		{classify.ProviderGCP, classify.ResourceTypeManagement, "", usd("0.50", UnitPerMonth)},
	}

	for _, sd := range seeds {
		s.Add(Query{
			Provider:       sd.provider,
			ResourceType:   sd.rt,
			Region:         DefaultRegion(sd.provider),
			Tier:           plan.TierOnDemand,
			SizeDescriptor: sd.size,
		}, sd.price)
	}

	return s
}
