package errors

import (
	"fmt"
	"time"
)

// PlanParsingError indicates the plan document could not be read or
// decoded. The whole parse aborts; there is no partial result.
type PlanParsingError struct {
	Path string
	Err  error
}

func (e *PlanParsingError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: failed to parse plan %q: %v", SeverityFatal, CodePlanParseFailed, e.Path, e.Err)
	}
	return fmt.Sprintf("[%s] %s: failed to parse plan: %v", SeverityFatal, CodePlanParseFailed, e.Err)
}

func (e *PlanParsingError) Unwrap() error { return e.Err }

// ResourceParsingError indicates a resource-change record has no
// recognizable shape. It carries type and name for diagnostics.
type ResourceParsingError struct {
	Address      string
	ResourceType string
	Name         string
	Reason       string
}

func (e *ResourceParsingError) Error() string {
	return fmt.Sprintf("[%s] %s: resource %q (type=%q, name=%q): %s",
		SeverityError, CodeResourceParseFailed, e.Address, e.ResourceType, e.Name, e.Reason)
}

// ModuleParsingError indicates a record that claims to belong to a
// module carries no module address.
type ModuleParsingError struct {
	Address string
	Reason  string
}

func (e *ModuleParsingError) Error() string {
	return fmt.Sprintf("[%s] %s: resource %q: %s", SeverityError, CodeModuleParseFailed, e.Address, e.Reason)
}

// ValidationError indicates an input value that cannot be mapped into
// the normalized schema, such as an unrecognized provider name.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s=%q: %s", SeverityError, CodeValidationFailed, e.Field, e.Value, e.Reason)
}

// PricingDataNotFoundError indicates no unit price exists for a lookup
// key. Recoverable at the plan level.
type PricingDataNotFoundError struct {
	Provider     string
	ResourceType string
	Region       string
	Tier         string
	Size         string
}

func (e *PricingDataNotFoundError) Error() string {
	return fmt.Sprintf("[%s] %s: no price for %s/%s in %s (tier=%s, size=%q)",
		SeverityWarning, CodePriceNotFound, e.Provider, e.ResourceType, e.Region, e.Tier, e.Size)
}

// PricingCalculationError indicates a price lookup succeeded but the
// returned rate is non-positive or malformed. Recoverable.
type PricingCalculationError struct {
	Reason string
	Err    error
}

func (e *PricingCalculationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", SeverityWarning, CodePriceCalculation, e.Reason, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", SeverityWarning, CodePriceCalculation, e.Reason)
}

func (e *PricingCalculationError) Unwrap() error { return e.Err }

// UsageEstimationError indicates a usage quantity could not be derived
// from resource specifications. Recoverable; defaults apply.
type UsageEstimationError struct {
	Metric string
	Reason string
}

func (e *UsageEstimationError) Error() string {
	return fmt.Sprintf("[%s] %s: metric %q: %s", SeverityWarning, CodeUsageEstimation, e.Metric, e.Reason)
}

// EstimationTimeoutError indicates a pricing lookup exceeded its
// per-call deadline.
type EstimationTimeoutError struct {
	Address string
	Timeout time.Duration
}

func (e *EstimationTimeoutError) Error() string {
	return fmt.Sprintf("[%s] %s: pricing lookup for %q exceeded %s", SeverityError, CodeEstimationTimeout, e.Address, e.Timeout)
}

// RateLimitError indicates the pricing backend throttled the lookup.
type RateLimitError struct {
	Source string
	Err    error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("[%s] %s: %s: %v", SeverityWarning, CodeRateLimited, e.Source, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// ConfigurationError indicates an invalid analyzer or store
// configuration. Surfaced to the caller, never retried.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s: %s", SeverityFatal, CodeConfiguration, e.Field, e.Reason)
}

// CacheError indicates a pricing cache invariant was violated.
type CacheError struct {
	Key    string
	Reason string
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("[%s] %s: key %q: %s", SeverityError, CodeCache, e.Key, e.Reason)
}

// StateError indicates the pipeline was driven out of order, such as
// aggregating before estimation finished.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", SeverityError, CodeState, e.Reason)
}
