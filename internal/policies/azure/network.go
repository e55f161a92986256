package azure

import (
	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

var azureAdminPorts = map[int]string{
	22:   "SSH",
	3389: "RDP",
}

// anySource reports whether prefix means "any source" in NSG terms.
func anySource(prefix string) bool {
	switch prefix {
	case "*", "Internet", "0.0.0.0/0":
		return true
	}
	return false
}

// NetworkChecks returns the checks evaluated against azure/network resources.
func NetworkChecks() []policy.Check {
	return []policy.Check{
		nsgOpenAdminPort(),
	}
}

// nsgOpenAdminPort flags inbound allow rules that open SSH or RDP to any
// source.
func nsgOpenAdminPort() policy.Check {
	c := policy.Check{
		PolicyID:       "Azure_NSG_Open_Admin_Port",
		Title:          "NSG rule opens administrative port to the internet",
		Description:    "An inbound allow rule permits SSH or RDP from any source address.",
		Severity:       models.SeverityHigh,
		Recommendation: "Restrict the source prefix to trusted CIDRs or use Azure Bastion for administrative access.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		r := res.(models.AzureNSGRule)
		if r.Direction != "Inbound" || r.Access != "Allow" || !anySource(r.SourcePrefix) {
			return nil, nil
		}
		name, ok := azureAdminPorts[r.Port]
		if !ok {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{
			"nsg":     r.NSGName,
			"rule":    r.RuleName,
			"port":    r.Port,
			"service": name,
			"source":  r.SourcePrefix,
		}
		return d, nil
	}
	return c
}
