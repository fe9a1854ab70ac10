// Package cost estimates and aggregates the cost impact of a
// Terraform plan: per-resource cost components, module rollups and a
// plan-level summary with deltas against a previous analysis.
package cost

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/plan"
)

// CostComponent is one priced dimension of a resource, such as its
// compute hours or provisioned storage.
type CostComponent struct {
	Name        string            `json:"name"`
	Unit        string            `json:"unit"`
	HourlyCost  decimal.Decimal   `json:"hourly_cost"`
	MonthlyCost decimal.Decimal   `json:"monthly_cost"`
	Details     map[string]string `json:"details,omitempty"`
}

// ResourceCost is the estimated cost of a single resource change.
// Created once per resource-change record during an analysis pass and
// not mutated afterwards, except for the previous/change fields the
// aggregator fills in.
type ResourceCost struct {
	Address       string             `json:"address"`
	ModuleAddress string             `json:"module_address,omitempty"`
	Metadata      plan.ResourceMetadata `json:"metadata"`
	Action        plan.ResourceAction   `json:"action"`
	Components    []CostComponent    `json:"components"`
	HourlyCost    decimal.Decimal    `json:"hourly_cost"`
	MonthlyCost   decimal.Decimal    `json:"monthly_cost"`
	PreviousCost  *decimal.Decimal   `json:"previous_cost,omitempty"`
	CostChange    *decimal.Decimal   `json:"cost_change,omitempty"`
	UsageEstimates map[string]float64 `json:"usage_estimates,omitempty"`

	// Priced is false when every pricing lookup for the resource
	// failed; the component details carry the reason.
	Priced bool `json:"priced"`
}

// ModuleCost groups resource costs sharing a module address.
type ModuleCost struct {
	Address       string           `json:"address"`
	ResourceCount int              `json:"resource_count"`
	HourlyCost    decimal.Decimal  `json:"hourly_cost"`
	MonthlyCost   decimal.Decimal  `json:"monthly_cost"`
	PreviousCost  *decimal.Decimal `json:"previous_cost,omitempty"`
	CostChange    *decimal.Decimal `json:"cost_change,omitempty"`
}

// RootModuleAddress labels resources that belong to no child module.
const RootModuleAddress = "root"

// CostBreakdown buckets monthly cost by normalized resource category.
// The total is always computed from the fields on read; it is never
// stored, so it cannot drift.
type CostBreakdown struct {
	Compute    decimal.Decimal `json:"compute"`
	Storage    decimal.Decimal `json:"storage"`
	Database   decimal.Decimal `json:"database"`
	Network    decimal.Decimal `json:"network"`
	Serverless decimal.Decimal `json:"serverless"`
	Container  decimal.Decimal `json:"container"`
	Analytics  decimal.Decimal `json:"analytics"`
	Security   decimal.Decimal `json:"security"`
	Management decimal.Decimal `json:"management"`
	Other      decimal.Decimal `json:"other"`
}

// Total returns the sum of all category fields.
func (b CostBreakdown) Total() decimal.Decimal {
	return b.Compute.
		Add(b.Storage).
		Add(b.Database).
		Add(b.Network).
		Add(b.Serverless).
		Add(b.Container).
		Add(b.Analytics).
		Add(b.Security).
		Add(b.Management).
		Add(b.Other)
}

// add buckets a monthly amount into the field for the category.
func (b *CostBreakdown) add(rt classify.ResourceType, amount decimal.Decimal) {
	switch rt {
	case classify.ResourceTypeCompute:
		b.Compute = b.Compute.Add(amount)
	case classify.ResourceTypeStorage:
		b.Storage = b.Storage.Add(amount)
	case classify.ResourceTypeDatabase:
		b.Database = b.Database.Add(amount)
	case classify.ResourceTypeNetwork:
		b.Network = b.Network.Add(amount)
	case classify.ResourceTypeServerless:
		b.Serverless = b.Serverless.Add(amount)
	case classify.ResourceTypeContainer:
		b.Container = b.Container.Add(amount)
	case classify.ResourceTypeAnalytics:
		b.Analytics = b.Analytics.Add(amount)
	case classify.ResourceTypeSecurity:
		b.Security = b.Security.Add(amount)
	case classify.ResourceTypeManagement:
		b.Management = b.Management.Add(amount)
	default:
		b.Other = b.Other.Add(amount)
	}
}

// MarshalJSON includes the computed total alongside the category
// fields for downstream consumers.
func (b CostBreakdown) MarshalJSON() ([]byte, error) {
	type alias CostBreakdown
	return json.Marshal(struct {
		alias
		Total decimal.Decimal `json:"total"`
	}{alias(b), b.Total()})
}

// CostSummary is the plan-level rollup.
type CostSummary struct {
	TotalResources    int `json:"total_resources"`
	ResourcesToAdd    int `json:"resources_to_add"`
	ResourcesToUpdate int `json:"resources_to_update"`
	ResourcesToDelete int `json:"resources_to_delete"`

	TotalHourlyCost  decimal.Decimal `json:"total_hourly_cost"`
	TotalMonthlyCost decimal.Decimal `json:"total_monthly_cost"`

	PreviousTotalMonthlyCost *decimal.Decimal `json:"previous_total_monthly_cost,omitempty"`
	TotalMonthlyCostChange   *decimal.Decimal `json:"total_monthly_cost_change,omitempty"`

	Breakdown CostBreakdown `json:"breakdown"`
	Currency  string        `json:"currency"`
}

// ProviderRegion is one (provider, region) pair seen in the plan.
type ProviderRegion struct {
	Provider classify.CloudProvider `json:"provider"`
	Region   string                 `json:"region"`
}

// CostAnalysis is the immutable result of one analysis pass.
type CostAnalysis struct {
	ID              uuid.UUID         `json:"id"`
	ProjectName     string            `json:"project_name"`
	Timestamp       time.Time         `json:"timestamp"`
	ProviderRegions []ProviderRegion  `json:"provider_regions"`
	Modules         []ModuleCost      `json:"modules"`
	Resources       []ResourceCost    `json:"resources"`
	Summary         CostSummary       `json:"summary"`
	Currency        string            `json:"currency"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}
