package policy

import "fmt"

// Catalog is the static registry mapping (provider, service) to an ordered
// list of checks. It is populated once at process start and read-only
// afterwards, so it is freely shared across concurrent evaluations.
type Catalog struct {
	entries map[string][]Check
	ids     map[string]string
}

// NewCatalog returns an empty catalog ready for registration.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[string][]Check),
		ids:     make(map[string]string),
	}
}

// Register appends checks for a (provider, service) pair in the given order.
// Panics on a duplicate policy ID to catch wiring mistakes at startup.
func (c *Catalog) Register(provider, service string, checks ...Check) {
	key := catalogKey(provider, service)
	for _, chk := range checks {
		if prev, exists := c.ids[chk.PolicyID]; exists {
			panic(fmt.Sprintf("duplicate policy ID %q (already registered for %s)", chk.PolicyID, prev))
		}
		c.ids[chk.PolicyID] = key
		c.entries[key] = append(c.entries[key], chk)
	}
}

// Lookup returns the ordered checks for a (provider, service) pair. An
// unregistered pair yields an empty list, never an error: a request for a
// service with no checks is valid and simply produces no alerts.
func (c *Catalog) Lookup(provider, service string) []Check {
	return c.entries[catalogKey(provider, service)]
}

// Size returns the total number of registered checks.
func (c *Catalog) Size() int { return len(c.ids) }

func catalogKey(provider, service string) string {
	return provider + "/" + service
}
