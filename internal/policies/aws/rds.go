package aws

import (
	"fmt"

	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// Default threshold for RDS_Backup_Retention, overridable via policy params.
const defaultMinRetentionDays = 7

// RDSChecks returns the checks evaluated against aws/rds resources.
func RDSChecks() []policy.Check {
	return []policy.Check{
		rdsBackupRetention(),
		rdsPubliclyAccessible(),
		rdsStorageUnencrypted(),
	}
}

// rdsBackupRetention flags instances whose automated backup retention is
// disabled or below the configured minimum (param "min_retention_days",
// default 7). Retention 0 means backups are disabled entirely and is rated
// HIGH; a nonzero period below the minimum is rated MEDIUM.
func rdsBackupRetention() policy.Check {
	c := policy.Check{
		PolicyID:       "RDS_Backup_Retention",
		Title:          "RDS automated backups disabled",
		Description:    "Automated backups are disabled for this instance; a storage failure or bad migration means unrecoverable data loss.",
		Severity:       models.SeverityHigh,
		Recommendation: "Set the backup retention period to at least the configured minimum number of days.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		db := res.(models.RDSInstance)
		minDays := int(acct.Params.Threshold(c.PolicyID, "min_retention_days", defaultMinRetentionDays))
		if db.BackupRetentionDays >= minDays {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{
			"retention_days":     db.BackupRetentionDays,
			"min_retention_days": minDays,
		}
		if db.BackupRetentionDays > 0 {
			d.Severity = models.SeverityMedium
			d.Title = "RDS backup retention below minimum"
			d.Description = fmt.Sprintf(
				"Automated backup retention is %d days, below the required minimum of %d days.",
				db.BackupRetentionDays, minDays,
			)
		}
		return d, nil
	}
	return c
}

// rdsPubliclyAccessible flags database instances reachable from the internet.
func rdsPubliclyAccessible() policy.Check {
	c := policy.Check{
		PolicyID:       "RDS_Publicly_Accessible",
		Title:          "RDS instance publicly accessible",
		Description:    "The database instance has PubliclyAccessible enabled and resolves to a public address.",
		Severity:       models.SeverityHigh,
		Recommendation: "Disable public accessibility and route access through a VPC or bastion.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		db := res.(models.RDSInstance)
		if !db.PubliclyAccessible {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"instance_id": db.InstanceID, "engine": db.Engine}
		return d, nil
	}
	return c
}

// rdsStorageUnencrypted flags instances without storage encryption.
func rdsStorageUnencrypted() policy.Check {
	c := policy.Check{
		PolicyID:       "RDS_Storage_Unencrypted",
		Title:          "RDS storage not encrypted",
		Description:    "The database instance stores data on unencrypted volumes; snapshots and replicas inherit the same exposure.",
		Severity:       models.SeverityHigh,
		Recommendation: "Recreate the instance from an encrypted snapshot; encryption cannot be enabled in place.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		db := res.(models.RDSInstance)
		if db.StorageEncrypted {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"instance_id": db.InstanceID, "engine": db.Engine}
		return d, nil
	}
	return c
}
