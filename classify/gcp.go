package classify

var gcpResourceTypes = map[string]ResourceType{
	// Compute
	"google_compute_instance":          ResourceTypeCompute,
	"google_compute_instance_template": ResourceTypeCompute,
	"google_compute_instance_group_manager": ResourceTypeCompute,
	"google_compute_autoscaler":        ResourceTypeCompute,

	// Storage
	"google_storage_bucket":   ResourceTypeStorage,
	"google_compute_disk":     ResourceTypeStorage,
	"google_compute_snapshot": ResourceTypeStorage,
	"google_filestore_instance": ResourceTypeStorage,

	// Database
	"google_sql_database_instance": ResourceTypeDatabase,
	"google_sql_database":          ResourceTypeDatabase,
	"google_spanner_instance":      ResourceTypeDatabase,
	"google_bigtable_instance":     ResourceTypeDatabase,
	"google_redis_instance":        ResourceTypeDatabase,
	"google_firestore_database":    ResourceTypeDatabase,

	// Network
	"google_compute_network":        ResourceTypeNetwork,
	"google_compute_subnetwork":     ResourceTypeNetwork,
	"google_compute_router_nat":     ResourceTypeNetwork,
	"google_compute_forwarding_rule": ResourceTypeNetwork,
	"google_compute_global_address": ResourceTypeNetwork,
	"google_dns_managed_zone":       ResourceTypeNetwork,
	"google_compute_firewall":       ResourceTypeNetwork,

	// Serverless
	"google_cloudfunctions_function":  ResourceTypeServerless,
	"google_cloudfunctions2_function": ResourceTypeServerless,
	"google_cloud_run_service":        ResourceTypeServerless,
	"google_cloud_run_v2_service":     ResourceTypeServerless,

	// Container
	"google_container_cluster":   ResourceTypeContainer,
	"google_container_node_pool": ResourceTypeContainer,
	"google_artifact_registry_repository": ResourceTypeContainer,

	// Analytics
	"google_bigquery_dataset":  ResourceTypeAnalytics,
	"google_bigquery_table":    ResourceTypeAnalytics,
	"google_dataflow_job":      ResourceTypeAnalytics,
	"google_pubsub_topic":      ResourceTypeAnalytics,
	"google_dataproc_cluster":  ResourceTypeAnalytics,

	// Security
	"google_kms_crypto_key":          ResourceTypeSecurity,
	"google_secret_manager_secret":   ResourceTypeSecurity,
	"google_service_account":         ResourceTypeSecurity,

	// Management
	"google_logging_project_sink":  ResourceTypeManagement,
	"google_monitoring_alert_policy": ResourceTypeManagement,
}
