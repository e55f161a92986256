package policies

import "testing"

// NewCatalog panics on duplicate policy IDs, so constructing it is itself the
// wiring check.
func TestNewCatalog(t *testing.T) {
	c := NewCatalog()
	if c.Size() == 0 {
		t.Fatal("catalog is empty")
	}

	pairs := []struct{ provider, service string }{
		{"aws", "s3"},
		{"aws", "ec2"},
		{"aws", "iam"},
		{"aws", "rds"},
		{"gcp", "iam"},
		{"gcp", "storage"},
		{"gcp", "firewall"},
		{"azure", "storage"},
		{"azure", "network"},
		{"huawei", "obs"},
		{"m365", "conditional_access"},
		{"google_workspace", "users"},
	}
	for _, p := range pairs {
		if len(c.Lookup(p.provider, p.service)) == 0 {
			t.Errorf("no checks registered for %s/%s", p.provider, p.service)
		}
	}
}
