package cost

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/pkg/errors"
	"terraform-cost-analyzer/plan"
	"terraform-cost-analyzer/pricing"
)

type sourceFunc func(ctx context.Context, q pricing.Query) (pricing.UnitPrice, error)

func (f sourceFunc) GetUnitPrice(ctx context.Context, q pricing.Query) (pricing.UnitPrice, error) {
	return f(ctx, q)
}

func computeResource(size string) plan.ParsedResource {
	return plan.ParsedResource{
		Address: "aws_instance.web",
		Metadata: plan.ResourceMetadata{
			Provider:       classify.ProviderAWS,
			Type:           "aws_instance",
			Name:           "web",
			NormalizedType: classify.ResourceTypeCompute,
			Region:         "us-east-1",
			PricingTier:    plan.TierOnDemand,
			Specifications: map[string]string{"instance_type": size},
		},
		Action: plan.ActionCreate,
	}
}

func TestEstimateComputeResource(t *testing.T) {
	source := sourceFunc(func(_ context.Context, q pricing.Query) (pricing.UnitPrice, error) {
		assert.Equal(t, "t3.micro", q.SizeDescriptor)
		return pricing.UnitPrice{
			Price:    decimal.RequireFromString("0.0104"),
			Unit:     pricing.UnitHours,
			Currency: "USD",
		}, nil
	})

	rc, err := NewEstimator(source).Estimate(context.Background(), computeResource("t3.micro"))
	require.NoError(t, err)

	require.Len(t, rc.Components, 1)
	assert.True(t, rc.Priced)
	assert.True(t, rc.HourlyCost.Equal(decimal.RequireFromString("0.0104")))
	assert.True(t, rc.MonthlyCost.Equal(decimal.RequireFromString("7.592")),
		"monthly = hourly x 730, got %s", rc.MonthlyCost)
}

func TestEstimateDatabaseHasComputeAndStorage(t *testing.T) {
	source := sourceFunc(func(_ context.Context, q pricing.Query) (pricing.UnitPrice, error) {
		return pricing.UnitPrice{
			Price:    decimal.RequireFromString("0.10"),
			Unit:     pricing.UnitGBMonth,
			Currency: "USD",
		}, nil
	})

	res := plan.ParsedResource{
		Address: "aws_db_instance.main",
		Metadata: plan.ResourceMetadata{
			Provider:       classify.ProviderAWS,
			Type:           "aws_db_instance",
			NormalizedType: classify.ResourceTypeDatabase,
			Region:         "us-east-1",
			PricingTier:    plan.TierOnDemand,
			Specifications: map[string]string{
				"instance_class":    "db.t3.medium",
				"allocated_storage": "100",
			},
		},
		Action: plan.ActionCreate,
	}

	rc, err := NewEstimator(source).Estimate(context.Background(), res)
	require.NoError(t, err)

	require.Len(t, rc.Components, 2)
	names := []string{rc.Components[0].Name, rc.Components[1].Name}
	assert.Contains(t, names, "Compute")
	assert.Contains(t, names, "Storage")

	// 100 GB at 0.10/GB-month appears in the storage component.
	for _, c := range rc.Components {
		if c.Name == "Storage" {
			assert.True(t, c.MonthlyCost.Equal(decimal.RequireFromString("10")), "got %s", c.MonthlyCost)
		}
	}
}

func TestEstimatePricingNotFoundDegrades(t *testing.T) {
	source := sourceFunc(func(_ context.Context, q pricing.Query) (pricing.UnitPrice, error) {
		return pricing.UnitPrice{}, &errors.PricingDataNotFoundError{
			Provider:     string(q.Provider),
			ResourceType: string(q.ResourceType),
			Region:       q.Region,
		}
	})

	rc, err := NewEstimator(source).Estimate(context.Background(), computeResource("t3.micro"))
	require.NoError(t, err, "missing prices degrade rather than abort")

	assert.False(t, rc.Priced)
	require.Len(t, rc.Components, 1)
	assert.True(t, rc.MonthlyCost.IsZero())
	assert.NotEmpty(t, rc.Components[0].Details["pricing_note"])
}

func TestEstimateNonPositivePriceDegrades(t *testing.T) {
	source := sourceFunc(func(_ context.Context, q pricing.Query) (pricing.UnitPrice, error) {
		return pricing.UnitPrice{Price: decimal.Zero, Unit: pricing.UnitHours}, nil
	})

	rc, err := NewEstimator(source).Estimate(context.Background(), computeResource("t3.micro"))
	require.NoError(t, err)

	assert.False(t, rc.Priced)
	require.Len(t, rc.Components, 1)
	assert.True(t, rc.HourlyCost.IsZero())
	assert.NotEmpty(t, rc.Components[0].Details["pricing_note"])
}

func TestEstimateSlowSourceTimesOut(t *testing.T) {
	source := sourceFunc(func(ctx context.Context, q pricing.Query) (pricing.UnitPrice, error) {
		<-ctx.Done()
		return pricing.UnitPrice{}, ctx.Err()
	})

	estimator := NewEstimator(source).WithTimeout(10 * time.Millisecond)
	_, err := estimator.Estimate(context.Background(), computeResource("t3.micro"))
	require.Error(t, err)

	var timeoutErr *errors.EstimationTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "aws_instance.web", timeoutErr.Address)
}

func TestEstimateOtherCategoryHasNoComponents(t *testing.T) {
	source := sourceFunc(func(_ context.Context, q pricing.Query) (pricing.UnitPrice, error) {
		t.Fatal("unpriceable categories must not reach the source")
		return pricing.UnitPrice{}, nil
	})

	res := plan.ParsedResource{
		Address: "aws_iam_nothing.misc",
		Metadata: plan.ResourceMetadata{
			Provider:       classify.ProviderAWS,
			NormalizedType: classify.ResourceTypeOther,
			Region:         plan.RegionUnknown,
			PricingTier:    plan.TierOnDemand,
		},
		Action: plan.ActionCreate,
	}

	rc, err := NewEstimator(source).Estimate(context.Background(), res)
	require.NoError(t, err)

	assert.Empty(t, rc.Components)
	assert.True(t, rc.Priced, "nothing priceable is not a pricing failure")
	assert.True(t, rc.MonthlyCost.IsZero())
}
