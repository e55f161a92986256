package gcp

import (
	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// StorageChecks returns the checks evaluated against gcp/storage resources.
func StorageChecks() []policy.Check {
	return []policy.Check{
		gcsPublicBucket(),
		gcsUniformAccessDisabled(),
		gcsVersioningDisabled(),
	}
}

// gcsPublicBucket flags buckets whose IAM policy grants access to external
// principals.
func gcsPublicBucket() policy.Check {
	c := policy.Check{
		PolicyID:       "GCS_Public_Bucket",
		Title:          "Cloud Storage bucket publicly accessible",
		Description:    "The bucket IAM policy grants access to allUsers or allAuthenticatedUsers.",
		Severity:       models.SeverityHigh,
		Recommendation: "Remove public members from the bucket IAM policy and enable public access prevention.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.GCSBucket)
		if !b.PublicAccess {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"bucket": b.Name, "location": b.Location}
		return d, nil
	}
	return c
}

// gcsUniformAccessDisabled flags buckets still using legacy per-object ACLs.
func gcsUniformAccessDisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "GCS_Uniform_Access_Disabled",
		Title:          "Cloud Storage bucket without uniform bucket-level access",
		Description:    "Uniform bucket-level access is disabled, so per-object ACLs can silently widen access beyond the bucket IAM policy.",
		Severity:       models.SeverityMedium,
		Recommendation: "Enable uniform bucket-level access so the bucket IAM policy is the single source of truth.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.GCSBucket)
		if b.UniformAccess {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"bucket": b.Name}
		return d, nil
	}
	return c
}

// gcsVersioningDisabled flags buckets without object versioning.
func gcsVersioningDisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "GCS_Versioning_Disabled",
		Title:          "Cloud Storage bucket versioning disabled",
		Description:    "Object versioning is disabled, so overwritten or deleted objects cannot be recovered.",
		Severity:       models.SeverityLow,
		Recommendation: "Enable object versioning with a lifecycle rule to bound storage growth.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.GCSBucket)
		if b.VersioningEnabled {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"bucket": b.Name}
		return d, nil
	}
	return c
}
