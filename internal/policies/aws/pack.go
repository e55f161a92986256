// Package aws provides the AWS policy pack.
//
// Convention: every provider pack lives in internal/policies/<provider> and
// exposes a single Register function that wires its per-service checks into
// the shared catalog before the engine starts serving requests.
package aws

import "github.com/devsec-labs/cloudsentry/internal/policy"

// Register wires all AWS checks into the catalog.
func Register(c *policy.Catalog) {
	c.Register("aws", "s3", S3Checks()...)
	c.Register("aws", "ec2", EC2Checks()...)
	c.Register("aws", "iam", IAMChecks()...)
	c.Register("aws", "rds", RDSChecks()...)
}
