package classify

var azureResourceTypes = map[string]ResourceType{
	// Compute
	"azurerm_virtual_machine":            ResourceTypeCompute,
	"azurerm_linux_virtual_machine":      ResourceTypeCompute,
	"azurerm_windows_virtual_machine":    ResourceTypeCompute,
	"azurerm_virtual_machine_scale_set":  ResourceTypeCompute,
	"azurerm_linux_virtual_machine_scale_set": ResourceTypeCompute,

	// Storage
	"azurerm_storage_account":   ResourceTypeStorage,
	"azurerm_storage_container": ResourceTypeStorage,
	"azurerm_storage_blob":      ResourceTypeStorage,
	"azurerm_managed_disk":      ResourceTypeStorage,
	"azurerm_storage_share":     ResourceTypeStorage,

	// Database
	"azurerm_mssql_server":             ResourceTypeDatabase,
	"azurerm_mssql_database":           ResourceTypeDatabase,
	"azurerm_sql_database":             ResourceTypeDatabase,
	"azurerm_mysql_flexible_server":    ResourceTypeDatabase,
	"azurerm_postgresql_flexible_server": ResourceTypeDatabase,
	"azurerm_cosmosdb_account":         ResourceTypeDatabase,
	"azurerm_redis_cache":              ResourceTypeDatabase,

	// Network
	"azurerm_virtual_network":     ResourceTypeNetwork,
	"azurerm_subnet":              ResourceTypeNetwork,
	"azurerm_public_ip":           ResourceTypeNetwork,
	"azurerm_lb":                  ResourceTypeNetwork,
	"azurerm_application_gateway": ResourceTypeNetwork,
	"azurerm_nat_gateway":         ResourceTypeNetwork,
	"azurerm_dns_zone":            ResourceTypeNetwork,
	"azurerm_cdn_profile":         ResourceTypeNetwork,
	"azurerm_firewall":            ResourceTypeNetwork,

	// Serverless
	"azurerm_function_app":       ResourceTypeServerless,
	"azurerm_linux_function_app": ResourceTypeServerless,
	"azurerm_logic_app_workflow": ResourceTypeServerless,

	// Container
	"azurerm_kubernetes_cluster":           ResourceTypeContainer,
	"azurerm_kubernetes_cluster_node_pool": ResourceTypeContainer,
	"azurerm_container_registry":           ResourceTypeContainer,
	"azurerm_container_group":              ResourceTypeContainer,

	// Analytics
	"azurerm_synapse_workspace":  ResourceTypeAnalytics,
	"azurerm_eventhub_namespace": ResourceTypeAnalytics,
	"azurerm_stream_analytics_job": ResourceTypeAnalytics,

	// Security
	"azurerm_key_vault":        ResourceTypeSecurity,
	"azurerm_key_vault_key":    ResourceTypeSecurity,
	"azurerm_key_vault_secret": ResourceTypeSecurity,

	// Management
	"azurerm_log_analytics_workspace": ResourceTypeManagement,
	"azurerm_monitor_metric_alert":    ResourceTypeManagement,
	"azurerm_recovery_services_vault": ResourceTypeManagement,
}
