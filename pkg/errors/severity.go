// Package errors provides the analyzer's error taxonomy.
//
// Parsing errors abort the current unit of work (the whole plan for
// file-level failures, a single resource for record-level ones).
// Pricing errors are recoverable: the resource is recorded with
// zero-cost components and the analysis still completes.
package errors

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error codes
const (
	CodePlanParseFailed     = "PLAN_PARSE_FAILED"
	CodeResourceParseFailed = "RESOURCE_PARSE_FAILED"
	CodeModuleParseFailed   = "MODULE_PARSE_FAILED"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodePriceNotFound       = "PRICE_NOT_FOUND"
	CodePriceCalculation    = "PRICE_CALCULATION_FAILED"
	CodeUsageEstimation     = "USAGE_ESTIMATION_FAILED"
	CodeEstimationTimeout   = "ESTIMATION_TIMEOUT"
	CodeRateLimited         = "RATE_LIMITED"
	CodeConfiguration       = "CONFIGURATION_INVALID"
	CodeCache               = "CACHE_FAILED"
	CodeState               = "STATE_INVALID"
)
