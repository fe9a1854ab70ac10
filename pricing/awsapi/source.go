// Package awsapi resolves unit prices from the AWS Pricing API.
// The Pricing API is only served from us-east-1 regardless of the
// region being priced.
package awsapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awspricing "github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/aws/smithy-go"
	"github.com/shopspring/decimal"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/pkg/errors"
	"terraform-cost-analyzer/pricing"
)

// pricingRegion hosts the AWS Pricing API endpoint.
const pricingRegion = "us-east-1"

// Source prices AWS resources against the live Pricing API. Queries
// for other providers fail with PricingDataNotFoundError so the
// estimator can degrade instead of aborting.
type Source struct {
	client *awspricing.Client
}

// New builds a source using the default AWS credential chain.
func New(ctx context.Context) (*Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(pricingRegion))
	if err != nil {
		return nil, &errors.ConfigurationError{Field: "aws", Reason: fmt.Sprintf("loading AWS config: %v", err)}
	}
	return &Source{client: awspricing.NewFromConfig(cfg)}, nil
}

// NewWithClient builds a source around an existing client.
func NewWithClient(client *awspricing.Client) *Source {
	return &Source{client: client}
}

// GetUnitPrice implements pricing.Source.
func (s *Source) GetUnitPrice(ctx context.Context, q pricing.Query) (pricing.UnitPrice, error) {
	if q.Provider != classify.ProviderAWS {
		return pricing.UnitPrice{}, &errors.PricingDataNotFoundError{
			Provider:     string(q.Provider),
			ResourceType: string(q.ResourceType),
			Region:       q.Region,
			Tier:         string(q.Tier),
			Size:         q.SizeDescriptor,
		}
	}

	serviceCode, filters := buildFilters(q)

	out, err := s.client.GetProducts(ctx, &awspricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters:     filters,
		MaxResults:  aws.Int32(1),
	})
	if err != nil {
		var apiErr smithy.APIError
		if stderrors.As(err, &apiErr) && apiErr.ErrorCode() == "ThrottlingException" {
			return pricing.UnitPrice{}, &errors.RateLimitError{Source: "aws-pricing-api", Err: err}
		}
		return pricing.UnitPrice{}, fmt.Errorf("querying AWS pricing: %w", err)
	}

	if len(out.PriceList) == 0 {
		return pricing.UnitPrice{}, &errors.PricingDataNotFoundError{
			Provider:     string(q.Provider),
			ResourceType: string(q.ResourceType),
			Region:       q.Region,
			Tier:         string(q.Tier),
			Size:         q.SizeDescriptor,
		}
	}

	price, unit, err := parseOnDemandRate([]byte(out.PriceList[0]))
	if err != nil {
		return pricing.UnitPrice{}, &errors.PricingCalculationError{Reason: "parsing AWS price list document", Err: err}
	}

	return pricing.UnitPrice{Price: price, Unit: unit, Currency: "USD"}, nil
}

// buildFilters maps a normalized query onto Pricing API term filters.
func buildFilters(q pricing.Query) (string, []types.Filter) {
	term := func(field, value string) types.Filter {
		return types.Filter{
			Field: aws.String(field),
			Type:  types.FilterTypeTermMatch,
			Value: aws.String(value),
		}
	}

	location := locationName(q.Region)
	switch q.ResourceType {
	case classify.ResourceTypeCompute, classify.ResourceTypeContainer:
		filters := []types.Filter{
			term("location", location),
			term("operatingSystem", "Linux"),
			term("tenancy", "Shared"),
			term("preInstalledSw", "NA"),
			term("capacitystatus", "Used"),
		}
		if q.SizeDescriptor != "" {
			filters = append(filters, term("instanceType", q.SizeDescriptor))
		}
		return "AmazonEC2", filters
	case classify.ResourceTypeDatabase:
		filters := []types.Filter{
			term("location", location),
			term("deploymentOption", "Single-AZ"),
		}
		if q.SizeDescriptor != "" {
			filters = append(filters, term("instanceType", q.SizeDescriptor))
		}
		return "AmazonRDS", filters
	case classify.ResourceTypeStorage:
		return "AmazonS3", []types.Filter{
			term("location", location),
			term("storageClass", "General Purpose"),
		}
	case classify.ResourceTypeServerless:
		return "AWSLambda", []types.Filter{term("location", location)}
	case classify.ResourceTypeNetwork:
		return "AmazonVPC", []types.Filter{term("location", location)}
	default:
		return "AmazonEC2", []types.Filter{term("location", location)}
	}
}

// locationName maps a region code to the Pricing API's location
// string. Unmapped regions price as N. Virginia.
func locationName(region string) string {
	names := map[string]string{
		"us-east-1":      "US East (N. Virginia)",
		"us-east-2":      "US East (Ohio)",
		"us-west-1":      "US West (N. California)",
		"us-west-2":      "US West (Oregon)",
		"eu-west-1":      "EU (Ireland)",
		"eu-west-2":      "EU (London)",
		"eu-central-1":   "EU (Frankfurt)",
		"ap-southeast-1": "Asia Pacific (Singapore)",
		"ap-southeast-2": "Asia Pacific (Sydney)",
		"ap-northeast-1": "Asia Pacific (Tokyo)",
		"ap-south-1":     "Asia Pacific (Mumbai)",
		"sa-east-1":      "South America (Sao Paulo)",
	}
	if name, ok := names[region]; ok {
		return name
	}
	return names["us-east-1"]
}

// priceListDocument is the slice of an AWS price-list document the
// source needs: the first on-demand price dimension.
type priceListDocument struct {
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				Unit         string `json:"unit"`
				PricePerUnit struct {
					USD string `json:"USD"`
				} `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

func parseOnDemandRate(doc []byte) (decimal.Decimal, string, error) {
	var parsed priceListDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return decimal.Zero, "", err
	}

	for _, offer := range parsed.Terms.OnDemand {
		for _, dim := range offer.PriceDimensions {
			price, err := decimal.NewFromString(dim.PricePerUnit.USD)
			if err != nil {
				return decimal.Zero, "", fmt.Errorf("malformed USD rate %q: %w", dim.PricePerUnit.USD, err)
			}
			return price, normalizeUnit(dim.Unit), nil
		}
	}
	return decimal.Zero, "", stderrors.New("document has no on-demand price dimensions")
}

// normalizeUnit maps Pricing API units onto the estimator's units.
func normalizeUnit(unit string) string {
	switch unit {
	case "Hrs", "Hours", "hours":
		return pricing.UnitHours
	case "GB-Mo", "GB-month":
		return pricing.UnitGBMonth
	case "GB":
		return pricing.UnitGB
	case "Requests":
		return pricing.UnitRequests
	default:
		return unit
	}
}
