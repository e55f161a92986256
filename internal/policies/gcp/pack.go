// Package gcp provides the GCP policy pack.
package gcp

import "github.com/devsec-labs/cloudsentry/internal/policy"

// Register wires all GCP checks into the catalog.
func Register(c *policy.Catalog) {
	c.Register("gcp", "iam", IAMChecks()...)
	c.Register("gcp", "storage", StorageChecks()...)
	c.Register("gcp", "firewall", FirewallChecks()...)
}
