package policy

// Params holds configured numeric parameter overrides per policy, loaded from
// the application config at startup. The zero/nil value means "all defaults".
type Params struct {
	// Policies maps policy ID to parameter name to value.
	Policies map[string]map[string]float64
}

// Threshold returns the configured value for a policy parameter, or def when
// no override is present. Safe to call on a nil receiver.
//
// Lookup order:
//  1. p == nil → def
//  2. p.Policies[policyID] absent → def
//  3. p.Policies[policyID][key] absent → def
//  4. otherwise → configured value
func (p *Params) Threshold(policyID, key string, def float64) float64 {
	if p == nil {
		return def
	}
	pc, ok := p.Policies[policyID]
	if !ok {
		return def
	}
	v, ok := pc[key]
	if !ok {
		return def
	}
	return v
}
