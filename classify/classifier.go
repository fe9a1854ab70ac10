// Package classify maps vendor-specific resource kinds to normalized
// categories used for cross-provider cost comparison.
package classify

import "strings"

// CloudProvider identifies a supported cloud vendor.
type CloudProvider string

const (
	ProviderAWS   CloudProvider = "aws"
	ProviderAzure CloudProvider = "azure"
	ProviderGCP   CloudProvider = "gcp"
)

// ResourceType is a provider-agnostic resource category.
type ResourceType string

const (
	ResourceTypeCompute    ResourceType = "compute"
	ResourceTypeStorage    ResourceType = "storage"
	ResourceTypeDatabase   ResourceType = "database"
	ResourceTypeNetwork    ResourceType = "network"
	ResourceTypeServerless ResourceType = "serverless"
	ResourceTypeContainer  ResourceType = "container"
	ResourceTypeAnalytics  ResourceType = "analytics"
	ResourceTypeSecurity   ResourceType = "security"
	ResourceTypeManagement ResourceType = "management"
	ResourceTypeOther      ResourceType = "other"
)

// Classifier resolves vendor resource-kind strings against static
// per-provider tables. It is an explicit value rather than package
// state so pipelines can be constructed without import-order effects.
type Classifier struct {
	tables map[CloudProvider]map[string]ResourceType
}

// NewClassifier returns a classifier loaded with the built-in tables.
func NewClassifier() *Classifier {
	return &Classifier{
		tables: map[CloudProvider]map[string]ResourceType{
			ProviderAWS:   awsResourceTypes,
			ProviderAzure: azureResourceTypes,
			ProviderGCP:   gcpResourceTypes,
		},
	}
}

// Classify maps a vendor resource kind to its normalized category.
// Unknown kinds degrade to ResourceTypeOther; classification never
// fails, so one exotic resource cannot abort a plan parse.
func (c *Classifier) Classify(provider CloudProvider, vendorType string) ResourceType {
	if table, ok := c.tables[provider]; ok {
		if rt, ok := table[vendorType]; ok {
			return rt
		}
	}
	return classifyHeuristic(vendorType)
}

// classifyHeuristic guesses a category from substrings of the vendor
// type. It runs only when the exact-match tables miss.
func classifyHeuristic(vendorType string) ResourceType {
	t := strings.ToLower(vendorType)

	switch {
	case containsAny(t, "_db_", "database", "sql", "rds", "cosmosdb", "spanner", "dynamodb", "elasticache", "redis", "memcache"):
		return ResourceTypeDatabase
	case containsAny(t, "lambda", "cloud_function", "cloudfunctions", "function_app", "step_function"):
		return ResourceTypeServerless
	case containsAny(t, "ecs", "eks", "aks", "gke", "kubernetes", "container"):
		return ResourceTypeContainer
	case containsAny(t, "vpc", "network", "subnet", "route", "gateway", "load_balancer", "_lb", "_elb", "_alb", "firewall", "dns", "cdn", "cloudfront"):
		return ResourceTypeNetwork
	case containsAny(t, "bucket", "storage", "disk", "volume", "efs", "fsx", "filestore", "snapshot", "blob"):
		return ResourceTypeStorage
	case containsAny(t, "kinesis", "bigquery", "redshift", "synapse", "dataflow", "emr", "athena", "glue", "opensearch", "elasticsearch"):
		return ResourceTypeAnalytics
	case containsAny(t, "iam", "kms", "key_vault", "secret", "certificate", "waf", "guardduty", "security"):
		return ResourceTypeSecurity
	case containsAny(t, "cloudwatch", "cloudtrail", "monitor", "log_", "logging", "config_rule", "backup"):
		return ResourceTypeManagement
	case containsAny(t, "instance", "virtual_machine", "_vm", "compute", "autoscaling", "scale_set"):
		return ResourceTypeCompute
	default:
		return ResourceTypeOther
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
