package aws

import (
	"time"

	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// Default threshold for IAM_Access_Key_Unused, overridable via policy params.
const defaultMaxUnusedKeyDays = 90

// IAMChecks returns the checks evaluated against aws/iam resources.
func IAMChecks() []policy.Check {
	return []policy.Check{
		iamRootAccessKeyActive(),
		iamRootMFADisabled(),
		iamUserMFADisabled(),
		iamAccessKeyUnused(),
	}
}

// iamRootAccessKeyActive flags root accounts with active access keys. Root
// keys carry unrestricted account access and cannot be scoped down.
// Root identity comes from the collector-supplied IsRoot field only.
func iamRootAccessKeyActive() policy.Check {
	c := policy.Check{
		PolicyID:       "IAM_Root_Access_Key_Active",
		Title:          "Root account has active access keys",
		Description:    "The root account has one or more active access keys. A compromised root key grants unrestricted access to the entire account.",
		Severity:       models.SeverityCritical,
		Recommendation: "Delete all root access keys and use IAM users or roles with least-privilege policies instead.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		u := res.(models.IAMUser)
		if !u.IsRoot {
			return nil, nil
		}
		var active []string
		for _, k := range u.AccessKeys {
			if k.Active {
				active = append(active, k.KeyID)
			}
		}
		if len(active) == 0 {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"active_key_ids": active}
		return d, nil
	}
	return c
}

// iamRootMFADisabled flags root accounts without MFA.
func iamRootMFADisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "IAM_Root_MFA_Disabled",
		Title:          "Root account MFA not enabled",
		Description:    "The root account does not have MFA enabled. A compromised root password gives an attacker full account access with no second factor.",
		Severity:       models.SeverityCritical,
		Recommendation: "Enable MFA on the root account using a hardware token or virtual MFA device.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		u := res.(models.IAMUser)
		if !u.IsRoot || u.MFAEnabled {
			return nil, nil
		}
		return c.NewDraft(res, acct), nil
	}
	return c
}

// iamUserMFADisabled flags console-enabled IAM users without an MFA device.
// API-only users without console access are not flagged.
func iamUserMFADisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "IAM_User_MFA_Disabled",
		Title:          "IAM user without MFA",
		Description:    "The IAM user can sign in to the console but has no MFA device registered.",
		Severity:       models.SeverityMedium,
		Recommendation: "Require an MFA device for every IAM user with console access.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		u := res.(models.IAMUser)
		if u.IsRoot || !u.HasConsoleAccess || u.MFAEnabled {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"user_name": u.UserName}
		return d, nil
	}
	return c
}

// iamAccessKeyUnused flags active access keys that have not been used within
// the configured window (param "max_unused_days", default 90). Keys that were
// never used are measured from their creation date.
func iamAccessKeyUnused() policy.Check {
	c := policy.Check{
		PolicyID:       "IAM_Access_Key_Unused",
		Title:          "IAM access key unused",
		Description:    "An active access key has not been used within the allowed window. Stale keys widen the attack surface for no operational benefit.",
		Severity:       models.SeverityMedium,
		Recommendation: "Deactivate and delete access keys that are no longer in use; rotate the rest regularly.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		u := res.(models.IAMUser)
		maxDays := acct.Params.Threshold(c.PolicyID, "max_unused_days", defaultMaxUnusedKeyDays)
		cutoff := time.Duration(maxDays) * 24 * time.Hour
		now := time.Now().UTC()

		stale := make(map[string]any)
		for _, k := range u.AccessKeys {
			if !k.Active {
				continue
			}
			ref := k.CreatedAt
			if k.LastUsedAt != nil {
				ref = *k.LastUsedAt
			}
			if idle := now.Sub(ref); idle > cutoff {
				stale[k.KeyID] = int(idle.Hours() / 24)
			}
		}
		if len(stale) == 0 {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{
			"max_unused_days": int(maxDays),
			"stale_keys_days": stale,
		}
		return d, nil
	}
	return c
}
