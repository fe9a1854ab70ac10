package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/pkg/errors"
	"terraform-cost-analyzer/plan"
)

func TestStaticSourceExactMatch(t *testing.T) {
	s := DefaultStaticSource()

	price, err := s.GetUnitPrice(context.Background(), Query{
		Provider:       classify.ProviderAWS,
		ResourceType:   classify.ResourceTypeCompute,
		Region:         "us-east-1",
		Tier:           plan.TierOnDemand,
		SizeDescriptor: "t3.micro",
	})
	require.NoError(t, err)
	assert.True(t, price.Price.Equal(decimal.RequireFromString("0.0104")))
	assert.Equal(t, UnitHours, price.Unit)
	assert.Equal(t, "USD", price.Currency)
}

func TestStaticSourceDefaultRegionFallback(t *testing.T) {
	s := DefaultStaticSource()

	// eu-west-3 has no entries; the provider default region stands in.
	price, err := s.GetUnitPrice(context.Background(), Query{
		Provider:       classify.ProviderAWS,
		ResourceType:   classify.ResourceTypeCompute,
		Region:         "eu-west-3",
		Tier:           plan.TierOnDemand,
		SizeDescriptor: "t3.micro",
	})
	require.NoError(t, err)
	assert.True(t, price.Price.Equal(decimal.RequireFromString("0.0104")))
}

func TestStaticSourceUnknownRegionFallback(t *testing.T) {
	s := DefaultStaticSource()

	price, err := s.GetUnitPrice(context.Background(), Query{
		Provider:     classify.ProviderGCP,
		ResourceType: classify.ResourceTypeStorage,
		Region:       plan.RegionUnknown,
		Tier:         plan.TierOnDemand,
	})
	require.NoError(t, err)
	assert.True(t, price.Price.GreaterThan(decimal.Zero))
}

func TestStaticSourceSizeGenericFallback(t *testing.T) {
	s := DefaultStaticSource()

	// c7g.48xlarge is not seeded; the size-generic compute rate applies.
	price, err := s.GetUnitPrice(context.Background(), Query{
		Provider:       classify.ProviderAWS,
		ResourceType:   classify.ResourceTypeCompute,
		Region:         "us-east-1",
		Tier:           plan.TierOnDemand,
		SizeDescriptor: "c7g.48xlarge",
	})
	require.NoError(t, err)
	assert.True(t, price.Price.Equal(decimal.RequireFromString("0.05")))
}

func TestStaticSourceNotFound(t *testing.T) {
	s := NewStaticSource()

	_, err := s.GetUnitPrice(context.Background(), Query{
		Provider:     classify.ProviderAWS,
		ResourceType: classify.ResourceTypeCompute,
		Region:       "us-east-1",
		Tier:         plan.TierOnDemand,
	})
	require.Error(t, err)

	var notFoundErr *errors.PricingDataNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "aws", notFoundErr.Provider)
}

func TestStaticSourceWalkRoundTrip(t *testing.T) {
	s := DefaultStaticSource()

	count := 0
	s.Walk(func(q Query, price UnitPrice) {
		count++
		got, err := s.GetUnitPrice(context.Background(), q)
		require.NoError(t, err)
		assert.True(t, got.Price.Equal(price.Price))
	})
	assert.Greater(t, count, 30, "the default table covers all three providers")
}

type countingSource struct {
	inner Source
	calls int
}

func (c *countingSource) GetUnitPrice(ctx context.Context, q Query) (UnitPrice, error) {
	c.calls++
	return c.inner.GetUnitPrice(ctx, q)
}

func TestCacheAvoidsRepeatLookups(t *testing.T) {
	counting := &countingSource{inner: DefaultStaticSource()}
	cache := NewCache(counting)

	q := Query{
		Provider:       classify.ProviderAWS,
		ResourceType:   classify.ResourceTypeCompute,
		Region:         "us-east-1",
		Tier:           plan.TierOnDemand,
		SizeDescriptor: "t3.micro",
	}

	first, err := cache.GetUnitPrice(context.Background(), q)
	require.NoError(t, err)
	second, err := cache.GetUnitPrice(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, counting.calls)
	assert.True(t, first.Price.Equal(second.Price))
	assert.Equal(t, 1, cache.Len())
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	counting := &countingSource{inner: NewStaticSource()}
	cache := NewCache(counting)

	q := Query{
		Provider:     classify.ProviderAWS,
		ResourceType: classify.ResourceTypeCompute,
		Region:       "us-east-1",
		Tier:         plan.TierOnDemand,
	}

	_, err := cache.GetUnitPrice(context.Background(), q)
	require.Error(t, err)
	_, err = cache.GetUnitPrice(context.Background(), q)
	require.Error(t, err)

	assert.Equal(t, 2, counting.calls, "failed lookups retry the source")
	assert.Equal(t, 0, cache.Len())
}
