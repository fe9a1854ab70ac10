// Package plan parses Terraform plan JSON (terraform show -json) into
// normalized resource metadata for cost estimation.
package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tfjson "github.com/hashicorp/terraform-json"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/pkg/errors"
)

// ResourceAction is the normalized change action for a resource.
type ResourceAction string

const (
	ActionCreate   ResourceAction = "create"
	ActionUpdate   ResourceAction = "update"
	ActionDelete   ResourceAction = "delete"
	ActionNoChange ResourceAction = "no-change"
)

// PricingTier is the billing model assumed for a resource.
type PricingTier string

const (
	TierOnDemand PricingTier = "on_demand"
	TierReserved PricingTier = "reserved"
	TierSpot     PricingTier = "spot"
)

// RegionUnknown marks a resource whose region could not be resolved.
// Unresolvable regions are not an error; pricing falls back to the
// provider's default region.
const RegionUnknown = "unknown"

// ResourceMetadata is the normalized description of one resource.
// NormalizedType is always derived via the classifier during
// extraction, never set by callers.
type ResourceMetadata struct {
	Provider       classify.CloudProvider `json:"provider"`
	Type           string                 `json:"type"`
	Name           string                 `json:"name"`
	NormalizedType classify.ResourceType  `json:"normalized_type"`
	Region         string                 `json:"region"`
	PricingTier    PricingTier            `json:"pricing_tier"`
	Specifications map[string]string      `json:"specifications"`
}

// ParsedResource pairs resource metadata with its change action and
// plan addresses.
type ParsedResource struct {
	Address       string           `json:"address"`
	ModuleAddress string           `json:"module_address,omitempty"`
	Metadata      ResourceMetadata `json:"metadata"`
	Action        ResourceAction   `json:"action"`
}

// Parser extracts normalized resources from Terraform plan documents.
type Parser struct {
	classifier *classify.Classifier
}

// NewParser creates a parser using the given classifier.
func NewParser(classifier *classify.Classifier) *Parser {
	return &Parser{classifier: classifier}
}

// ParseFile reads and decodes a plan JSON file. Any failure returns a
// PlanParsingError with no partial result.
func (p *Parser) ParseFile(path string) (*tfjson.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errors.PlanParsingError{Path: path, Err: err}
	}
	defer f.Close()

	plan, err := p.Parse(f)
	if err != nil {
		return nil, &errors.PlanParsingError{Path: path, Err: err}
	}
	return plan, nil
}

// Parse decodes plan JSON from a reader.
func (p *Parser) Parse(r io.Reader) (*tfjson.Plan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &errors.PlanParsingError{Err: err}
	}
	return p.ParseBytes(data)
}

// ParseBytes decodes plan JSON from bytes.
func (p *Parser) ParseBytes(data []byte) (*tfjson.Plan, error) {
	var plan tfjson.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, &errors.PlanParsingError{Err: fmt.Errorf("decoding plan JSON: %w", err)}
	}
	if err := plan.Validate(); err != nil {
		return nil, &errors.PlanParsingError{Err: fmt.Errorf("validating plan document: %w", err)}
	}
	return &plan, nil
}

// ExtractResources walks all resource-change records and produces
// normalized metadata plus change actions. Data sources are skipped;
// they are not billable. A record with an unrecognized provider name
// fails the extraction with a ValidationError: pricing cannot proceed
// without a known provider.
func (p *Parser) ExtractResources(plan *tfjson.Plan) ([]ParsedResource, error) {
	resources := make([]ParsedResource, 0, len(plan.ResourceChanges))

	for _, rc := range plan.ResourceChanges {
		if rc == nil || rc.Mode == tfjson.DataResourceMode {
			continue
		}

		if rc.Type == "" && (rc.Change == nil || len(rc.Change.Actions) == 0) {
			return nil, &errors.ResourceParsingError{
				Address:      rc.Address,
				ResourceType: rc.Type,
				Name:         rc.Name,
				Reason:       "record has neither a resource type nor change actions",
			}
		}

		provider, err := ProviderFromName(rc.ProviderName)
		if err != nil {
			return nil, err
		}

		after := changeAttributes(rc)
		meta := ResourceMetadata{
			Provider:       provider,
			Type:           rc.Type,
			Name:           rc.Name,
			NormalizedType: p.classifier.Classify(provider, rc.Type),
			Region:         p.resolveRegion(plan, rc, after),
			PricingTier:    TierOnDemand,
			Specifications: flattenAttributes(after),
		}

		resources = append(resources, ParsedResource{
			Address:       rc.Address,
			ModuleAddress: rc.ModuleAddress,
			Metadata:      meta,
			Action:        deriveAction(rc.Change),
		})
	}

	return resources, nil
}

// ExtractModules collects the distinct module addresses across all
// resource-change records.
func (p *Parser) ExtractModules(plan *tfjson.Plan) (map[string]struct{}, error) {
	modules := make(map[string]struct{})
	for _, rc := range plan.ResourceChanges {
		if rc == nil {
			continue
		}
		if rc.ModuleAddress != "" {
			modules[rc.ModuleAddress] = struct{}{}
			continue
		}
		if strings.HasPrefix(rc.Address, "module.") {
			return nil, &errors.ModuleParsingError{
				Address: rc.Address,
				Reason:  "resource address claims a module but the record has no module address",
			}
		}
	}
	return modules, nil
}

// ExtractProviders collects the distinct valid providers seen in the
// plan. Records with unrecognized provider names are excluded rather
// than failing the call; only ExtractResources treats them as fatal,
// since a provider summary is still useful when parts of the plan
// cannot be priced.
func (p *Parser) ExtractProviders(plan *tfjson.Plan) map[classify.CloudProvider]struct{} {
	providers := make(map[classify.CloudProvider]struct{})
	for _, rc := range plan.ResourceChanges {
		if rc == nil || rc.Mode == tfjson.DataResourceMode {
			continue
		}
		provider, err := ProviderFromName(rc.ProviderName)
		if err != nil {
			continue
		}
		providers[provider] = struct{}{}
	}
	return providers
}

// ExtractRegions resolves the set of regions per provider, using the
// same resolution order as ExtractResources. Unrecognized providers
// are excluded, matching ExtractProviders.
func (p *Parser) ExtractRegions(plan *tfjson.Plan) map[classify.CloudProvider]map[string]struct{} {
	regions := make(map[classify.CloudProvider]map[string]struct{})
	for _, rc := range plan.ResourceChanges {
		if rc == nil || rc.Mode == tfjson.DataResourceMode {
			continue
		}
		provider, err := ProviderFromName(rc.ProviderName)
		if err != nil {
			continue
		}
		region := p.resolveRegion(plan, rc, changeAttributes(rc))
		if _, ok := regions[provider]; !ok {
			regions[provider] = make(map[string]struct{})
		}
		regions[provider][region] = struct{}{}
	}
	return regions
}

// ProviderFromName maps a plan provider-name string onto a supported
// provider. Registry paths such as registry.terraform.io/hashicorp/aws
// are reduced to their final segment first.
func ProviderFromName(name string) (classify.CloudProvider, error) {
	short := name
	if idx := strings.LastIndex(short, "/"); idx >= 0 {
		short = short[idx+1:]
	}
	switch strings.ToLower(short) {
	case "aws":
		return classify.ProviderAWS, nil
	case "azurerm":
		return classify.ProviderAzure, nil
	case "google", "google-beta":
		return classify.ProviderGCP, nil
	default:
		return "", &errors.ValidationError{
			Field:  "provider_name",
			Value:  name,
			Reason: "unrecognized provider",
		}
	}
}

// resolveRegion determines a resource's region. Provider-level
// configuration wins over resource attributes; a zone attribute is
// truncated to its region prefix. Unresolvable regions become
// RegionUnknown.
func (p *Parser) resolveRegion(plan *tfjson.Plan, rc *tfjson.ResourceChange, after map[string]interface{}) string {
	if region := providerConfigRegion(plan, rc.ProviderName); region != "" {
		return region
	}

	if region, ok := after["region"].(string); ok && region != "" {
		return region
	}
	if location, ok := after["location"].(string); ok && location != "" {
		return location
	}
	if zone, ok := after["zone"].(string); ok && zone != "" {
		return zoneToRegion(zone)
	}
	if az, ok := after["availability_zone"].(string); ok && az != "" {
		return zoneToRegion(az)
	}

	return RegionUnknown
}

// providerConfigRegion reads the region (or Azure-style location)
// constant from the provider's configuration block, if present.
func providerConfigRegion(plan *tfjson.Plan, providerName string) string {
	if plan.Config == nil || len(plan.Config.ProviderConfigs) == 0 {
		return ""
	}

	short := providerName
	if idx := strings.LastIndex(short, "/"); idx >= 0 {
		short = short[idx+1:]
	}

	for key, cfg := range plan.Config.ProviderConfigs {
		if cfg == nil {
			continue
		}
		if key != short && cfg.Name != short {
			continue
		}
		for _, attr := range []string{"region", "location"} {
			expr, ok := cfg.Expressions[attr]
			if !ok || expr == nil || expr.ExpressionData == nil {
				continue
			}
			if v, ok := expr.ConstantValue.(string); ok && v != "" {
				return v
			}
		}
	}
	return ""
}

// zoneToRegion strips a trailing single-letter zone suffix, turning
// us-central1-a into us-central1 and us-east-1a into us-east-1.
func zoneToRegion(zone string) string {
	if idx := strings.LastIndex(zone, "-"); idx > 0 {
		suffix := zone[idx+1:]
		if len(suffix) == 1 && suffix[0] >= 'a' && suffix[0] <= 'z' {
			return zone[:idx]
		}
	}
	// AWS availability zones have no dash before the zone letter.
	last := zone[len(zone)-1]
	if last >= 'a' && last <= 'z' {
		if len(zone) > 1 && zone[len(zone)-2] >= '0' && zone[len(zone)-2] <= '9' {
			return zone[:len(zone)-1]
		}
	}
	return zone
}

// deriveAction maps a raw change-action list onto the normalized
// action. A record that both creates and deletes is an in-place
// replacement, reported as an update.
func deriveAction(change *tfjson.Change) ResourceAction {
	if change == nil || len(change.Actions) == 0 {
		return ActionNoChange
	}

	var hasCreate, hasDelete, hasUpdate bool
	for _, a := range change.Actions {
		switch a {
		case tfjson.ActionCreate:
			hasCreate = true
		case tfjson.ActionDelete:
			hasDelete = true
		case tfjson.ActionUpdate:
			hasUpdate = true
		}
	}

	switch {
	case hasCreate && hasDelete:
		return ActionUpdate
	case hasCreate:
		return ActionCreate
	case hasDelete:
		return ActionDelete
	case hasUpdate:
		return ActionUpdate
	default:
		return ActionNoChange
	}
}

// changeAttributes returns the post-change attribute map. Deletions
// have no after state, so the before state stands in to keep the
// removed resource describable.
func changeAttributes(rc *tfjson.ResourceChange) map[string]interface{} {
	if rc.Change == nil {
		return nil
	}
	if after, ok := rc.Change.After.(map[string]interface{}); ok && after != nil {
		return after
	}
	if before, ok := rc.Change.Before.(map[string]interface{}); ok {
		return before
	}
	return nil
}

// flattenAttributes turns an attribute map into a string map. Scalars
// are stringified; nested structures such as tags are JSON-serialized
// under the same key so no information is lost.
func flattenAttributes(attrs map[string]interface{}) map[string]string {
	specs := make(map[string]string, len(attrs))
	for key, val := range attrs {
		switch v := val.(type) {
		case nil:
			continue
		case string:
			specs[key] = v
		case bool:
			specs[key] = strconv.FormatBool(v)
		case float64:
			specs[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			specs[key] = v.String()
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				specs[key] = fmt.Sprintf("%v", v)
				continue
			}
			specs[key] = string(raw)
		}
	}
	return specs
}
