package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKnownTypes(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		provider   CloudProvider
		vendorType string
		want       ResourceType
	}{
		{ProviderAWS, "aws_instance", ResourceTypeCompute},
		{ProviderAWS, "aws_s3_bucket", ResourceTypeStorage},
		{ProviderAWS, "aws_db_instance", ResourceTypeDatabase},
		{ProviderAWS, "aws_lambda_function", ResourceTypeServerless},
		{ProviderAWS, "aws_lb", ResourceTypeNetwork},
		{ProviderAzure, "azurerm_virtual_machine", ResourceTypeCompute},
		{ProviderAzure, "azurerm_storage_account", ResourceTypeStorage},
		{ProviderAzure, "azurerm_kubernetes_cluster", ResourceTypeContainer},
		{ProviderGCP, "google_compute_instance", ResourceTypeCompute},
		{ProviderGCP, "google_sql_database_instance", ResourceTypeDatabase},
		{ProviderGCP, "google_storage_bucket", ResourceTypeStorage},
	}

	for _, tt := range tests {
		t.Run(tt.vendorType, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.provider, tt.vendorType))
		})
	}
}

func TestClassifyHeuristicFallback(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		vendorType string
		want       ResourceType
	}{
		{"aws_imaginary_database_thing", ResourceTypeDatabase},
		{"aws_new_bucket_feature", ResourceTypeStorage},
		{"azurerm_brand_new_function_app", ResourceTypeServerless},
		{"google_future_instance_type", ResourceTypeCompute},
		{"aws_something_entirely_novel", ResourceTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.vendorType, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(ProviderAWS, tt.vendorType))
		})
	}
}

func TestClassifyTableBeatsHeuristic(t *testing.T) {
	c := NewClassifier()

	// aws_db_instance contains "instance" but the table pins it to
	// database before the heuristic would see compute.
	assert.Equal(t, ResourceTypeDatabase, c.Classify(ProviderAWS, "aws_db_instance"))
}
