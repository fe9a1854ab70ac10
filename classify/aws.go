package classify

// awsResourceTypes covers the AWS resource kinds the estimator has
// pricing dimensions for. Kinds absent here fall through to the
// substring heuristics.
var awsResourceTypes = map[string]ResourceType{
	// Compute
	"aws_instance":              ResourceTypeCompute,
	"aws_ec2_host":              ResourceTypeCompute,
	"aws_autoscaling_group":     ResourceTypeCompute,
	"aws_launch_template":       ResourceTypeCompute,
	"aws_spot_instance_request": ResourceTypeCompute,

	// Storage
	"aws_s3_bucket":    ResourceTypeStorage,
	"aws_ebs_volume":   ResourceTypeStorage,
	"aws_ebs_snapshot": ResourceTypeStorage,
	"aws_efs_file_system": ResourceTypeStorage,
	"aws_fsx_lustre_file_system":  ResourceTypeStorage,
	"aws_fsx_windows_file_system": ResourceTypeStorage,
	"aws_glacier_vault":           ResourceTypeStorage,

	// Database
	"aws_db_instance":           ResourceTypeDatabase,
	"aws_rds_cluster":           ResourceTypeDatabase,
	"aws_rds_cluster_instance":  ResourceTypeDatabase,
	"aws_dynamodb_table":        ResourceTypeDatabase,
	"aws_elasticache_cluster":   ResourceTypeDatabase,
	"aws_docdb_cluster":         ResourceTypeDatabase,
	"aws_neptune_cluster":       ResourceTypeDatabase,
	"aws_memorydb_cluster":      ResourceTypeDatabase,

	// Network
	"aws_vpc":            ResourceTypeNetwork,
	"aws_subnet":         ResourceTypeNetwork,
	"aws_nat_gateway":    ResourceTypeNetwork,
	"aws_internet_gateway": ResourceTypeNetwork,
	"aws_vpc_endpoint":   ResourceTypeNetwork,
	"aws_lb":             ResourceTypeNetwork,
	"aws_alb":            ResourceTypeNetwork,
	"aws_elb":            ResourceTypeNetwork,
	"aws_eip":            ResourceTypeNetwork,
	"aws_route53_zone":   ResourceTypeNetwork,
	"aws_route53_record": ResourceTypeNetwork,
	"aws_cloudfront_distribution": ResourceTypeNetwork,

	// Serverless
	"aws_lambda_function":           ResourceTypeServerless,
	"aws_lambda_provisioned_concurrency_config": ResourceTypeServerless,
	"aws_sfn_state_machine":         ResourceTypeServerless,
	"aws_api_gateway_rest_api":      ResourceTypeServerless,
	"aws_apigatewayv2_api":          ResourceTypeServerless,

	// Container
	"aws_ecs_cluster":        ResourceTypeContainer,
	"aws_ecs_service":        ResourceTypeContainer,
	"aws_eks_cluster":        ResourceTypeContainer,
	"aws_eks_node_group":     ResourceTypeContainer,
	"aws_ecr_repository":     ResourceTypeContainer,

	// Analytics
	"aws_kinesis_stream":         ResourceTypeAnalytics,
	"aws_kinesis_firehose_delivery_stream": ResourceTypeAnalytics,
	"aws_msk_cluster":            ResourceTypeAnalytics,
	"aws_redshift_cluster":       ResourceTypeAnalytics,
	"aws_opensearch_domain":      ResourceTypeAnalytics,
	"aws_elasticsearch_domain":   ResourceTypeAnalytics,

	// Security
	"aws_kms_key":                ResourceTypeSecurity,
	"aws_secretsmanager_secret":  ResourceTypeSecurity,
	"aws_wafv2_web_acl":          ResourceTypeSecurity,
	"aws_iam_role":               ResourceTypeSecurity,

	// Management
	"aws_cloudwatch_log_group":   ResourceTypeManagement,
	"aws_cloudwatch_metric_alarm": ResourceTypeManagement,
	"aws_cloudtrail":             ResourceTypeManagement,
	"aws_backup_vault":           ResourceTypeManagement,
}
