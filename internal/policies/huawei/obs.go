// Package huawei provides the Huawei Cloud policy pack.
package huawei

import (
	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// Register wires all Huawei Cloud checks into the catalog.
func Register(c *policy.Catalog) {
	c.Register("huawei", "obs", OBSChecks()...)
}

// OBSChecks returns the checks evaluated against huawei/obs resources.
func OBSChecks() []policy.Check {
	return []policy.Check{
		obsPublicWrite(),
		obsPublicRead(),
		obsVersioningDisabled(),
		obsLoggingDisabled(),
	}
}

// obsPublicWrite flags buckets writable by everyone. World-writable storage
// enables data tampering and malware hosting, worse than plain exposure.
func obsPublicWrite() policy.Check {
	c := policy.Check{
		PolicyID:       "OBS_Public_Write",
		Title:          "OBS bucket allows public write",
		Description:    "The bucket ACL grants write access to the Everyone group; any anonymous user can modify or plant objects.",
		Severity:       models.SeverityCritical,
		Recommendation: "Remove Everyone write grants from the bucket ACL immediately.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.HuaweiOBSBucket)
		if !b.PublicWrite {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"bucket": b.Name}
		return d, nil
	}
	return c
}

// obsPublicRead flags buckets readable by everyone.
func obsPublicRead() policy.Check {
	c := policy.Check{
		PolicyID:       "OBS_Public_Read",
		Title:          "OBS bucket allows public read",
		Description:    "The bucket ACL grants read access to the Everyone group, exposing every object in the bucket.",
		Severity:       models.SeverityHigh,
		Recommendation: "Remove Everyone read grants from the bucket ACL and share objects via signed URLs.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.HuaweiOBSBucket)
		if !b.PublicRead {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"bucket": b.Name}
		return d, nil
	}
	return c
}

// obsVersioningDisabled flags buckets without versioning.
func obsVersioningDisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "OBS_Versioning_Disabled",
		Title:          "OBS bucket versioning disabled",
		Description:    "Object versioning is disabled, so overwritten or deleted objects cannot be recovered.",
		Severity:       models.SeverityMedium,
		Recommendation: "Enable versioning on the bucket.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.HuaweiOBSBucket)
		if b.VersioningEnabled {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"bucket": b.Name}
		return d, nil
	}
	return c
}

// obsLoggingDisabled flags buckets without access logging.
func obsLoggingDisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "OBS_Logging_Disabled",
		Title:          "OBS bucket access logging disabled",
		Description:    "Access logging is disabled, leaving no audit trail of requests against the bucket.",
		Severity:       models.SeverityMedium,
		Recommendation: "Enable access logging with a dedicated log delivery bucket.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.HuaweiOBSBucket)
		if b.LoggingEnabled {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"bucket": b.Name}
		return d, nil
	}
	return c
}
