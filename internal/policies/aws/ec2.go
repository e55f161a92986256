package aws

import (
	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// Administrative ports that must never be open to the internet.
var adminPorts = map[int]string{
	22:   "SSH",
	3389: "RDP",
}

// EC2Checks returns the checks evaluated against aws/ec2 resources.
func EC2Checks() []policy.Check {
	return []policy.Check{
		ec2OpenAdminPort(),
		ec2IMDSv1Enabled(),
		ec2PublicIP(),
	}
}

// ec2OpenAdminPort flags instances reachable from 0.0.0.0/0 on SSH or RDP.
func ec2OpenAdminPort() policy.Check {
	c := policy.Check{
		PolicyID:       "EC2_Open_Admin_Port",
		Title:          "EC2 instance exposes administrative port to the internet",
		Description:    "A security group attached to the instance allows inbound SSH or RDP from 0.0.0.0/0.",
		Severity:       models.SeverityHigh,
		Recommendation: "Restrict SSH/RDP ingress to trusted CIDRs or use Session Manager instead of direct access.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		i := res.(models.EC2Instance)
		var exposed []string
		for _, p := range i.OpenIngressPorts {
			if name, ok := adminPorts[p]; ok {
				exposed = append(exposed, name)
			}
		}
		if len(exposed) == 0 {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{
			"instance_id":   i.InstanceID,
			"exposed_ports": exposed,
		}
		return d, nil
	}
	return c
}

// ec2IMDSv1Enabled flags instances that still allow IMDSv1. IMDSv1 has no
// session protection and enables SSRF-based credential theft.
func ec2IMDSv1Enabled() policy.Check {
	c := policy.Check{
		PolicyID:       "EC2_IMDSv1_Enabled",
		Title:          "EC2 instance allows IMDSv1",
		Description:    "The instance metadata service accepts unauthenticated IMDSv1 requests, enabling credential theft via SSRF.",
		Severity:       models.SeverityMedium,
		Recommendation: "Set HttpTokens=required on the instance to enforce IMDSv2.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		i := res.(models.EC2Instance)
		if !i.IMDSv1Allowed {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"instance_id": i.InstanceID}
		return d, nil
	}
	return c
}

// ec2PublicIP flags instances with a public IP address.
func ec2PublicIP() policy.Check {
	c := policy.Check{
		PolicyID:       "EC2_Public_IP",
		Title:          "EC2 instance has a public IP address",
		Description:    "The instance is directly addressable from the internet. Workloads should sit behind a load balancer or NAT unless public exposure is intended.",
		Severity:       models.SeverityLow,
		Recommendation: "Move the instance to a private subnet or confirm the public exposure is intentional.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		i := res.(models.EC2Instance)
		if i.PublicIP == "" {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{
			"instance_id": i.InstanceID,
			"public_ip":   i.PublicIP,
		}
		return d, nil
	}
	return c
}
