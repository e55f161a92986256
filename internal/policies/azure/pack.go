// Package azure provides the Azure policy pack.
package azure

import "github.com/devsec-labs/cloudsentry/internal/policy"

// Register wires all Azure checks into the catalog.
func Register(c *policy.Catalog) {
	c.Register("azure", "storage", StorageChecks()...)
	c.Register("azure", "network", NetworkChecks()...)
}
