package aws

import (
	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// S3Checks returns the checks evaluated against aws/s3 resources.
func S3Checks() []policy.Check {
	return []policy.Check{
		s3PublicReadACL(),
		s3PublicPolicy(),
		s3VersioningDisabled(),
		s3LoggingDisabled(),
		s3EncryptionDisabled(),
	}
}

// s3PublicReadACL flags buckets whose ACL grants read access to everyone.
// A public-read ACL exposes all objects regardless of bucket policy.
func s3PublicReadACL() policy.Check {
	c := policy.Check{
		PolicyID:       "S3_Public_Read_ACL",
		Title:          "S3 bucket ACL allows public read",
		Description:    "The bucket ACL grants read access to AllUsers or AuthenticatedUsers, exposing every object in the bucket.",
		Severity:       models.SeverityHigh,
		Recommendation: "Remove public grants from the bucket ACL and enable S3 Block Public Access.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.S3Bucket)
		if !b.ACL.IsPublic {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"bucket": b.Name}
		return d, nil
	}
	return c
}

// s3PublicPolicy flags buckets whose bucket policy makes them public.
func s3PublicPolicy() policy.Check {
	c := policy.Check{
		PolicyID:       "S3_Public_Policy",
		Title:          "S3 bucket policy grants public access",
		Description:    "The bucket policy is evaluated as public by AWS, allowing anonymous principals to access the bucket.",
		Severity:       models.SeverityHigh,
		Recommendation: "Restrict the bucket policy to known principals and enable S3 Block Public Access.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.S3Bucket)
		if !b.PolicyIsPublic {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"bucket": b.Name}
		return d, nil
	}
	return c
}

// s3VersioningDisabled flags buckets where versioning is not enabled.
// An empty status means versioning was never configured; "Suspended" means it
// was turned off. Both leave objects unprotected against overwrite/delete.
func s3VersioningDisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "S3_Versioning_Disabled",
		Title:          "S3 bucket versioning disabled",
		Description:    "Object versioning is not enabled, so overwritten or deleted objects cannot be recovered.",
		Severity:       models.SeverityMedium,
		Recommendation: "Enable versioning on the bucket to protect against accidental or malicious object loss.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.S3Bucket)
		if b.Versioning.Status == "Enabled" {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{
			"bucket":            b.Name,
			"versioning_status": b.Versioning.Status,
		}
		return d, nil
	}
	return c
}

// s3LoggingDisabled flags buckets without server access logging.
func s3LoggingDisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "S3_Logging_Disabled",
		Title:          "S3 bucket access logging disabled",
		Description:    "Server access logging is disabled, leaving no audit trail of requests against the bucket.",
		Severity:       models.SeverityMedium,
		Recommendation: "Enable server access logging with a dedicated log delivery bucket.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.S3Bucket)
		if b.Logging.Enabled {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"bucket": b.Name}
		return d, nil
	}
	return c
}

// s3EncryptionDisabled flags buckets without default encryption.
func s3EncryptionDisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "S3_Encryption_Disabled",
		Title:          "S3 bucket default encryption disabled",
		Description:    "No default server-side encryption configuration exists, so new objects may be stored unencrypted.",
		Severity:       models.SeverityMedium,
		Recommendation: "Configure default encryption (SSE-S3 or SSE-KMS) on the bucket.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.S3Bucket)
		if b.Encryption.Enabled {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"bucket": b.Name}
		return d, nil
	}
	return c
}
