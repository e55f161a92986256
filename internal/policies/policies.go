// Package policies assembles the full policy catalog from the per-provider
// packs. The catalog is built once at process start; packs register their
// checks in a fixed order so evaluation output is reproducible.
package policies

import (
	"github.com/devsec-labs/cloudsentry/internal/policies/aws"
	"github.com/devsec-labs/cloudsentry/internal/policies/azure"
	"github.com/devsec-labs/cloudsentry/internal/policies/gcp"
	"github.com/devsec-labs/cloudsentry/internal/policies/gworkspace"
	"github.com/devsec-labs/cloudsentry/internal/policies/huawei"
	"github.com/devsec-labs/cloudsentry/internal/policies/m365"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// NewCatalog returns the default catalog with every provider pack registered.
func NewCatalog() *policy.Catalog {
	c := policy.NewCatalog()
	aws.Register(c)
	gcp.Register(c)
	azure.Register(c)
	huawei.Register(c)
	m365.Register(c)
	gworkspace.Register(c)
	return c
}
