package engine

import (
	"encoding/json"

	"github.com/devsec-labs/cloudsentry/internal/models"
)

// decoders maps "provider/service" to the typed decoder for that pair's
// resource variant. The set is closed: adding a provider or service means
// adding its variant here and its checks to the matching policy pack.
var decoders = map[string]func(json.RawMessage) ([]models.Resource, error){
	"aws/s3":                  decodeList[models.S3Bucket],
	"aws/ec2":                 decodeList[models.EC2Instance],
	"aws/iam":                 decodeList[models.IAMUser],
	"aws/rds":                 decodeList[models.RDSInstance],
	"gcp/iam":                 decodeList[models.GCPIAMBinding],
	"gcp/storage":             decodeList[models.GCSBucket],
	"gcp/firewall":            decodeList[models.GCPFirewall],
	"azure/storage":           decodeList[models.AzureStorageAccount],
	"azure/network":           decodeList[models.AzureNSGRule],
	"huawei/obs":              decodeList[models.HuaweiOBSBucket],
	"m365/conditional_access": decodeList[models.M365ConditionalAccessPolicy],
	"google_workspace/users":  decodeList[models.GoogleWorkspaceUser],
}

// DecodeResources decodes the raw request payload into the resource variant
// registered for (provider, service). An unknown pair or a payload that does
// not match the variant's shape fails the whole request with a
// ValidationError; per-resource problems past this point are handled by the
// evaluator's collection-error and isolation rules instead.
func DecodeResources(provider, service string, raw json.RawMessage) ([]models.Resource, error) {
	decode, ok := decoders[provider+"/"+service]
	if !ok {
		return nil, ValidationErrorf("unsupported provider/service pair %q/%q", provider, service)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	resources, err := decode(raw)
	if err != nil {
		return nil, ValidationErrorf("malformed data for %s/%s: %v", provider, service, err)
	}
	return resources, nil
}

func decodeList[T models.Resource](raw json.RawMessage) ([]models.Resource, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	resources := make([]models.Resource, len(items))
	for i, item := range items {
		resources[i] = item
	}
	return resources, nil
}
