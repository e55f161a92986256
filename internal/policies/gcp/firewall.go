package gcp

import (
	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

var gcpAdminPorts = map[int]string{
	22:   "SSH",
	3389: "RDP",
}

// FirewallChecks returns the checks evaluated against gcp/firewall resources.
func FirewallChecks() []policy.Check {
	return []policy.Check{
		firewallOpenAdminPort(),
	}
}

// firewallOpenAdminPort flags enabled ingress rules that open SSH or RDP to
// 0.0.0.0/0.
func firewallOpenAdminPort() policy.Check {
	c := policy.Check{
		PolicyID:       "GCP_Firewall_Open_Admin_Port",
		Title:          "Firewall rule opens administrative port to the internet",
		Description:    "An enabled ingress firewall rule allows SSH or RDP from 0.0.0.0/0.",
		Severity:       models.SeverityHigh,
		Recommendation: "Restrict the source ranges to trusted CIDRs or use Identity-Aware Proxy for administrative access.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		f := res.(models.GCPFirewall)
		if f.Disabled || f.Direction == "EGRESS" {
			return nil, nil
		}
		worldOpen := false
		for _, r := range f.SourceRanges {
			if r == "0.0.0.0/0" {
				worldOpen = true
				break
			}
		}
		if !worldOpen {
			return nil, nil
		}
		var exposed []string
		for _, p := range f.AllowedPorts {
			if name, ok := gcpAdminPorts[p]; ok {
				exposed = append(exposed, name)
			}
		}
		if len(exposed) == 0 {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{
			"firewall":      f.Name,
			"network":       f.Network,
			"exposed_ports": exposed,
		}
		return d, nil
	}
	return c
}
