package plan

import (
	"strings"
	"testing"

	tfjson "github.com/hashicorp/terraform-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/pkg/errors"
)

func newTestParser() *Parser {
	return NewParser(classify.NewClassifier())
}

func mustParse(t *testing.T, doc string) *tfjson.Plan {
	t.Helper()
	plan, err := newTestParser().ParseBytes([]byte(doc))
	require.NoError(t, err)
	return plan
}

func TestParseBytesRejectsMalformedJSON(t *testing.T) {
	_, err := newTestParser().ParseBytes([]byte(`{"format_version": "1.2",`))
	require.Error(t, err)

	var parseErr *errors.PlanParsingError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseBytesRejectsMissingFormatVersion(t *testing.T) {
	_, err := newTestParser().ParseBytes([]byte(`{"terraform_version": "1.7.0"}`))
	require.Error(t, err)

	var parseErr *errors.PlanParsingError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseFileMissing(t *testing.T) {
	_, err := newTestParser().ParseFile("testdata/does-not-exist.json")
	require.Error(t, err)

	var parseErr *errors.PlanParsingError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Path, "does-not-exist")
}

const actionsPlan = `{
  "format_version": "1.2",
  "terraform_version": "1.7.0",
  "resource_changes": [
    {
      "address": "aws_instance.created",
      "type": "aws_instance",
      "name": "created",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {"actions": ["create"], "after": {"instance_type": "t3.micro"}}
    },
    {
      "address": "aws_instance.updated",
      "type": "aws_instance",
      "name": "updated",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {"actions": ["update"], "after": {"instance_type": "t3.small"}}
    },
    {
      "address": "aws_instance.replaced",
      "type": "aws_instance",
      "name": "replaced",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {"actions": ["delete", "create"], "after": {"instance_type": "t3.large"}}
    },
    {
      "address": "aws_instance.removed",
      "type": "aws_instance",
      "name": "removed",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {"actions": ["delete"], "before": {"instance_type": "t3.micro"}}
    },
    {
      "address": "aws_instance.untouched",
      "type": "aws_instance",
      "name": "untouched",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {"actions": ["no-op"], "after": {"instance_type": "t3.micro"}}
    }
  ]
}`

func TestExtractResourcesActions(t *testing.T) {
	plan := mustParse(t, actionsPlan)

	resources, err := newTestParser().ExtractResources(plan)
	require.NoError(t, err)
	require.Len(t, resources, 5)

	actions := make(map[string]ResourceAction)
	for _, r := range resources {
		actions[r.Address] = r.Action
	}

	assert.Equal(t, ActionCreate, actions["aws_instance.created"])
	assert.Equal(t, ActionUpdate, actions["aws_instance.updated"])
	assert.Equal(t, ActionUpdate, actions["aws_instance.replaced"], "replacements report as updates")
	assert.Equal(t, ActionDelete, actions["aws_instance.removed"])
	assert.Equal(t, ActionNoChange, actions["aws_instance.untouched"])
}

func TestDeriveActionEmptyList(t *testing.T) {
	assert.Equal(t, ActionNoChange, deriveAction(&tfjson.Change{}))
	assert.Equal(t, ActionNoChange, deriveAction(nil))
}

func TestExtractResourcesDeleteKeepsBeforeAttributes(t *testing.T) {
	plan := mustParse(t, actionsPlan)

	resources, err := newTestParser().ExtractResources(plan)
	require.NoError(t, err)

	for _, r := range resources {
		if r.Address == "aws_instance.removed" {
			assert.Equal(t, "t3.micro", r.Metadata.Specifications["instance_type"])
			return
		}
	}
	t.Fatal("deleted resource missing from extraction")
}

func TestRegionProviderConfigWinsOverAttribute(t *testing.T) {
	doc := `{
	  "format_version": "1.2",
	  "resource_changes": [
	    {
	      "address": "aws_instance.web",
	      "type": "aws_instance",
	      "name": "web",
	      "provider_name": "registry.terraform.io/hashicorp/aws",
	      "change": {"actions": ["create"], "after": {"region": "eu-west-1"}}
	    }
	  ],
	  "configuration": {
	    "provider_config": {
	      "aws": {
	        "name": "aws",
	        "expressions": {"region": {"constant_value": "us-west-2"}}
	      }
	    }
	  }
	}`
	plan := mustParse(t, doc)

	resources, err := newTestParser().ExtractResources(plan)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "us-west-2", resources[0].Metadata.Region)
}

func TestRegionFromAttributes(t *testing.T) {
	tests := []struct {
		name  string
		rc    string
		want  string
	}{
		{
			name: "azure location attribute",
			rc: `{
			  "address": "azurerm_linux_virtual_machine.app",
			  "type": "azurerm_linux_virtual_machine",
			  "name": "app",
			  "provider_name": "registry.terraform.io/hashicorp/azurerm",
			  "change": {"actions": ["create"], "after": {"location": "eastus"}}
			}`,
			want: "eastus",
		},
		{
			name: "gcp zone truncates to region",
			rc: `{
			  "address": "google_compute_instance.app",
			  "type": "google_compute_instance",
			  "name": "app",
			  "provider_name": "registry.terraform.io/hashicorp/google",
			  "change": {"actions": ["create"], "after": {"zone": "us-central1-a"}}
			}`,
			want: "us-central1",
		},
		{
			name: "aws availability zone truncates to region",
			rc: `{
			  "address": "aws_ebs_volume.data",
			  "type": "aws_ebs_volume",
			  "name": "data",
			  "provider_name": "registry.terraform.io/hashicorp/aws",
			  "change": {"actions": ["create"], "after": {"availability_zone": "us-east-1a"}}
			}`,
			want: "us-east-1",
		},
		{
			name: "no region attribute at all",
			rc: `{
			  "address": "aws_s3_bucket.assets",
			  "type": "aws_s3_bucket",
			  "name": "assets",
			  "provider_name": "registry.terraform.io/hashicorp/aws",
			  "change": {"actions": ["create"], "after": {"bucket": "assets"}}
			}`,
			want: RegionUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"format_version": "1.2", "resource_changes": [` + tt.rc + `]}`
			plan := mustParse(t, doc)

			resources, err := newTestParser().ExtractResources(plan)
			require.NoError(t, err)
			require.Len(t, resources, 1)
			assert.Equal(t, tt.want, resources[0].Metadata.Region)
		})
	}
}

func TestExtractResourcesClassifiesAcrossProviders(t *testing.T) {
	doc := `{
	  "format_version": "1.2",
	  "resource_changes": [
	    {
	      "address": "aws_instance.a",
	      "type": "aws_instance",
	      "name": "a",
	      "provider_name": "registry.terraform.io/hashicorp/aws",
	      "change": {"actions": ["create"], "after": {}}
	    },
	    {
	      "address": "azurerm_linux_virtual_machine.b",
	      "type": "azurerm_linux_virtual_machine",
	      "name": "b",
	      "provider_name": "registry.terraform.io/hashicorp/azurerm",
	      "change": {"actions": ["create"], "after": {}}
	    },
	    {
	      "address": "google_compute_instance.c",
	      "type": "google_compute_instance",
	      "name": "c",
	      "provider_name": "registry.terraform.io/hashicorp/google",
	      "change": {"actions": ["create"], "after": {}}
	    }
	  ]
	}`
	plan := mustParse(t, doc)

	resources, err := newTestParser().ExtractResources(plan)
	require.NoError(t, err)
	require.Len(t, resources, 3)

	for _, r := range resources {
		assert.Equal(t, classify.ResourceTypeCompute, r.Metadata.NormalizedType, r.Address)
		assert.Equal(t, TierOnDemand, r.Metadata.PricingTier)
	}
	assert.Equal(t, classify.ProviderAWS, resources[0].Metadata.Provider)
	assert.Equal(t, classify.ProviderAzure, resources[1].Metadata.Provider)
	assert.Equal(t, classify.ProviderGCP, resources[2].Metadata.Provider)
}

const mixedProvidersPlan = `{
  "format_version": "1.2",
  "resource_changes": [
    {
      "address": "aws_instance.ok",
      "type": "aws_instance",
      "name": "ok",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {"actions": ["create"], "after": {}}
    },
    {
      "address": "oci_core_instance.nope",
      "type": "oci_core_instance",
      "name": "nope",
      "provider_name": "registry.terraform.io/oracle/oci",
      "change": {"actions": ["create"], "after": {}}
    }
  ]
}`

func TestExtractResourcesFailsOnUnknownProvider(t *testing.T) {
	plan := mustParse(t, mixedProvidersPlan)

	_, err := newTestParser().ExtractResources(plan)
	require.Error(t, err)

	var valErr *errors.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "provider_name", valErr.Field)
}

func TestExtractProvidersSkipsUnknownProvider(t *testing.T) {
	plan := mustParse(t, mixedProvidersPlan)

	providers := newTestParser().ExtractProviders(plan)
	assert.Len(t, providers, 1)
	assert.Contains(t, providers, classify.ProviderAWS)
}

func TestExtractResourcesSkipsDataSources(t *testing.T) {
	doc := `{
	  "format_version": "1.2",
	  "resource_changes": [
	    {
	      "address": "data.aws_ami.ubuntu",
	      "mode": "data",
	      "type": "aws_ami",
	      "name": "ubuntu",
	      "provider_name": "registry.terraform.io/hashicorp/aws",
	      "change": {"actions": ["read"]}
	    },
	    {
	      "address": "aws_instance.web",
	      "type": "aws_instance",
	      "name": "web",
	      "provider_name": "registry.terraform.io/hashicorp/aws",
	      "change": {"actions": ["create"], "after": {}}
	    }
	  ]
	}`
	plan := mustParse(t, doc)

	resources, err := newTestParser().ExtractResources(plan)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "aws_instance.web", resources[0].Address)
}

func TestExtractModules(t *testing.T) {
	doc := `{
	  "format_version": "1.2",
	  "resource_changes": [
	    {
	      "address": "aws_instance.root",
	      "type": "aws_instance",
	      "name": "root",
	      "provider_name": "registry.terraform.io/hashicorp/aws",
	      "change": {"actions": ["create"], "after": {}}
	    },
	    {
	      "address": "module.vpc.aws_subnet.private",
	      "module_address": "module.vpc",
	      "type": "aws_subnet",
	      "name": "private",
	      "provider_name": "registry.terraform.io/hashicorp/aws",
	      "change": {"actions": ["create"], "after": {}}
	    },
	    {
	      "address": "module.vpc.aws_subnet.public",
	      "module_address": "module.vpc",
	      "type": "aws_subnet",
	      "name": "public",
	      "provider_name": "registry.terraform.io/hashicorp/aws",
	      "change": {"actions": ["create"], "after": {}}
	    }
	  ]
	}`
	plan := mustParse(t, doc)

	modules, err := newTestParser().ExtractModules(plan)
	require.NoError(t, err)
	assert.Len(t, modules, 1)
	assert.Contains(t, modules, "module.vpc")
}

func TestExtractModulesRejectsInconsistentAddress(t *testing.T) {
	doc := `{
	  "format_version": "1.2",
	  "resource_changes": [
	    {
	      "address": "module.vpc.aws_subnet.private",
	      "type": "aws_subnet",
	      "name": "private",
	      "provider_name": "registry.terraform.io/hashicorp/aws",
	      "change": {"actions": ["create"], "after": {}}
	    }
	  ]
	}`
	plan := mustParse(t, doc)

	_, err := newTestParser().ExtractModules(plan)
	require.Error(t, err)

	var modErr *errors.ModuleParsingError
	require.ErrorAs(t, err, &modErr)
	assert.Equal(t, "module.vpc.aws_subnet.private", modErr.Address)
}

func TestExtractRegions(t *testing.T) {
	doc := `{
	  "format_version": "1.2",
	  "resource_changes": [
	    {
	      "address": "aws_instance.a",
	      "type": "aws_instance",
	      "name": "a",
	      "provider_name": "registry.terraform.io/hashicorp/aws",
	      "change": {"actions": ["create"], "after": {"region": "us-east-1"}}
	    },
	    {
	      "address": "aws_instance.b",
	      "type": "aws_instance",
	      "name": "b",
	      "provider_name": "registry.terraform.io/hashicorp/aws",
	      "change": {"actions": ["create"], "after": {"region": "eu-west-1"}}
	    },
	    {
	      "address": "google_compute_instance.c",
	      "type": "google_compute_instance",
	      "name": "c",
	      "provider_name": "registry.terraform.io/hashicorp/google",
	      "change": {"actions": ["create"], "after": {"zone": "us-central1-b"}}
	    }
	  ]
	}`
	plan := mustParse(t, doc)

	regions := newTestParser().ExtractRegions(plan)
	require.Len(t, regions, 2)
	assert.Contains(t, regions[classify.ProviderAWS], "us-east-1")
	assert.Contains(t, regions[classify.ProviderAWS], "eu-west-1")
	assert.Contains(t, regions[classify.ProviderGCP], "us-central1")
}

func TestSpecificationsFlattening(t *testing.T) {
	doc := `{
	  "format_version": "1.2",
	  "resource_changes": [
	    {
	      "address": "aws_db_instance.main",
	      "type": "aws_db_instance",
	      "name": "main",
	      "provider_name": "registry.terraform.io/hashicorp/aws",
	      "change": {
	        "actions": ["create"],
	        "after": {
	          "instance_class": "db.t3.medium",
	          "allocated_storage": 100,
	          "multi_az": true,
	          "storage_encrypted": null,
	          "tags": {"team": "platform"}
	        }
	      }
	    }
	  ]
	}`
	plan := mustParse(t, doc)

	resources, err := newTestParser().ExtractResources(plan)
	require.NoError(t, err)
	require.Len(t, resources, 1)

	specs := resources[0].Metadata.Specifications
	assert.Equal(t, "db.t3.medium", specs["instance_class"])
	assert.Equal(t, "100", specs["allocated_storage"])
	assert.Equal(t, "true", specs["multi_az"])
	assert.NotContains(t, specs, "storage_encrypted", "null attributes are dropped")
	assert.True(t, strings.Contains(specs["tags"], `"team":"platform"`), "nested values keep their structure: %s", specs["tags"])
}

func TestProviderFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    classify.CloudProvider
		wantErr bool
	}{
		{"registry.terraform.io/hashicorp/aws", classify.ProviderAWS, false},
		{"aws", classify.ProviderAWS, false},
		{"registry.terraform.io/hashicorp/azurerm", classify.ProviderAzure, false},
		{"registry.terraform.io/hashicorp/google", classify.ProviderGCP, false},
		{"registry.terraform.io/hashicorp/google-beta", classify.ProviderGCP, false},
		{"registry.terraform.io/oracle/oci", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProviderFromName(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
