package azure

import (
	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// StorageChecks returns the checks evaluated against azure/storage resources.
func StorageChecks() []policy.Check {
	return []policy.Check{
		storageBlobPublicAccess(),
		storageHTTPSOnlyDisabled(),
		storageTLSVersionLow(),
	}
}

// storageBlobPublicAccess flags accounts that permit anonymous blob access.
func storageBlobPublicAccess() policy.Check {
	c := policy.Check{
		PolicyID:       "Azure_Blob_Public_Access",
		Title:          "Storage account allows public blob access",
		Description:    "AllowBlobPublicAccess is enabled, so individual containers can be opened to anonymous readers.",
		Severity:       models.SeverityHigh,
		Recommendation: "Disable public blob access at the storage account level and use SAS tokens for external sharing.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		a := res.(models.AzureStorageAccount)
		if !a.AllowBlobPublicAccess {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"account": a.Name, "resource_group": a.ResourceGroup}
		return d, nil
	}
	return c
}

// storageHTTPSOnlyDisabled flags accounts accepting plaintext transfers.
func storageHTTPSOnlyDisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "Azure_HTTPS_Only_Disabled",
		Title:          "Storage account accepts unencrypted transport",
		Description:    "Secure transfer required is disabled; the account accepts HTTP requests in plaintext.",
		Severity:       models.SeverityMedium,
		Recommendation: "Enable 'secure transfer required' on the storage account.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		a := res.(models.AzureStorageAccount)
		if a.HTTPSOnly {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"account": a.Name}
		return d, nil
	}
	return c
}

// storageTLSVersionLow flags accounts whose minimum TLS version predates 1.2.
func storageTLSVersionLow() policy.Check {
	c := policy.Check{
		PolicyID:       "Azure_TLS_Version_Low",
		Title:          "Storage account permits legacy TLS",
		Description:    "The minimum TLS version is below 1.2, allowing clients to negotiate deprecated protocol versions.",
		Severity:       models.SeverityLow,
		Recommendation: "Set the minimum TLS version to TLS1_2 on the storage account.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		a := res.(models.AzureStorageAccount)
		switch a.MinimumTLSVersion {
		case "", "TLS1_2", "TLS1_3":
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"account": a.Name, "minimum_tls_version": a.MinimumTLSVersion}
		return d, nil
	}
	return c
}
