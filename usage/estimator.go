// Package usage derives usage quantities per billing metric from
// resource specifications and environment profiles.
package usage

import (
	"strconv"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/pkg/errors"
	"terraform-cost-analyzer/plan"
	"terraform-cost-analyzer/pricing"
)

// Usage metrics reported per resource.
const (
	MetricMonthlyHours    = "monthly_hours"
	MetricStorageGB       = "storage_gb"
	MetricDataTransferGB  = "data_transfer_gb"
	MetricMonthlyRequests = "monthly_requests"
)

// Defaults applied when a quantity cannot be read from the resource.
const (
	defaultStorageGB       = 30.0
	defaultDataTransferGB  = 100.0
	defaultMonthlyRequests = 1_000_000.0
)

// Profile describes expected usage for an environment.
type Profile struct {
	Name              string
	UtilizationFactor float64 // 0-1, applied to usage-metered dimensions
}

// Estimator produces usage estimates per resource. Instance hours are
// never scaled by utilization: a running instance bills for the full
// month regardless of load.
type Estimator struct {
	profiles map[string]Profile
}

// NewEstimator creates an estimator with the default environment
// profiles. Unknown environments fall back to dev, the conservative
// choice.
func NewEstimator() *Estimator {
	return &Estimator{
		profiles: map[string]Profile{
			"dev":     {Name: "Development", UtilizationFactor: 0.2},
			"staging": {Name: "Staging", UtilizationFactor: 0.4},
			"prod":    {Name: "Production", UtilizationFactor: 0.7},
		},
	}
}

// Estimate returns metric quantities for a resource. The returned map
// is always usable: when a specification value is malformed the
// default quantity is substituted and a UsageEstimationError reports
// the substitution.
func (e *Estimator) Estimate(meta plan.ResourceMetadata, environment string) (map[string]float64, error) {
	profile, ok := e.profiles[environment]
	if !ok {
		profile = e.profiles["dev"]
	}

	estimates := map[string]float64{
		MetricMonthlyHours: pricing.HoursPerMonth,
	}

	var estErr error

	storageGB, err := storageFromSpecs(meta.Specifications)
	if err != nil {
		storageGB = defaultStorageGB
		estErr = err
	}
	estimates[MetricStorageGB] = storageGB

	estimates[MetricDataTransferGB] = defaultDataTransferGB * profile.UtilizationFactor
	estimates[MetricMonthlyRequests] = defaultMonthlyRequests * profile.UtilizationFactor

	// Serverless compute idles between requests; its hours follow
	// utilization rather than wall-clock.
	if meta.NormalizedType == classify.ResourceTypeServerless {
		estimates[MetricMonthlyHours] = pricing.HoursPerMonth * profile.UtilizationFactor
	}

	return estimates, estErr
}

// storageFromSpecs reads the provisioned storage size from the
// vendor-specific attribute carrying it.
func storageFromSpecs(specs map[string]string) (float64, error) {
	for _, key := range []string{"allocated_storage", "size", "disk_size_gb", "volume_size", "disk_size"} {
		raw, ok := specs[key]
		if !ok || raw == "" {
			continue
		}
		gb, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, &errors.UsageEstimationError{
				Metric: MetricStorageGB,
				Reason: "attribute " + key + " is not numeric: " + raw,
			}
		}
		if gb <= 0 {
			return 0, &errors.UsageEstimationError{
				Metric: MetricStorageGB,
				Reason: "attribute " + key + " must be positive: " + raw,
			}
		}
		return gb, nil
	}
	return defaultStorageGB, nil
}
