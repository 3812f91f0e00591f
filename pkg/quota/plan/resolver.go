package plan

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Resolver maps plan tiers to policies.
//
// Resolution is a pure lookup with no failure mode: tiers not present in
// the table resolve to the zero policy, which admission control treats as
// "no voice access". This keeps unknown and voiceless tiers on the same
// code path.
//
// Resolver is thread-safe. Update swaps the whole table atomically so an
// in-flight lookup never observes a partially applied reload.
type Resolver struct {
	policies map[Tier]Policy
	mu       sync.RWMutex
}

// NewResolver creates a resolver from the given plan table.
// Policies with unset shares get the default 0.20/0.80 split.
func NewResolver(table map[Tier]Policy) *Resolver {
	return &Resolver{policies: normalize(table)}
}

// Resolve returns the policy for a tier.
// Unknown tiers resolve to the zero policy (fail closed).
func (r *Resolver) Resolve(tier Tier) Policy {
	canonical := canonicalTier(tier)

	r.mu.RLock()
	defer r.mu.RUnlock()

	policy, ok := r.policies[canonical]
	if !ok {
		return Policy{Tier: canonical}
	}
	return policy
}

// Update replaces the plan table. Used by the file watcher on reload.
func (r *Resolver) Update(table map[Tier]Policy) {
	normalized := normalize(table)

	r.mu.Lock()
	r.policies = normalized
	r.mu.Unlock()
}

// Tiers returns the known tiers in sorted order.
func (r *Resolver) Tiers() []Tier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tiers := make([]Tier, 0, len(r.policies))
	for tier := range r.policies {
		tiers = append(tiers, tier)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	return tiers
}

// normalize fills defaulted shares, canonicalizes tier names, and stamps
// each policy with its tier. Canonicalizing here and in Resolve makes
// tier names case-insensitive, so a YAML table may spell them either way.
func normalize(table map[Tier]Policy) map[Tier]Policy {
	policies := make(map[Tier]Policy, len(table))
	for tier, policy := range table {
		canonical := canonicalTier(tier)
		policies[canonical] = policy.withDefaults(canonical)
	}
	return policies
}

// canonicalTier returns the uppercase form used as the table key.
func canonicalTier(tier Tier) Tier {
	return Tier(strings.ToUpper(string(tier)))
}

// ValidateTable checks a plan table for internally inconsistent policies.
// It is called by the loader before a table is handed to a resolver.
// Policies are checked with defaulted shares applied, so a table entry
// that sets only one share is judged on the combination it will actually
// run with.
func ValidateTable(table map[Tier]Policy) error {
	for tier, raw := range table {
		p := raw.withDefaults(tier)
		if p.DailyMinutes < 0 {
			return fmt.Errorf("plan %s: daily_minutes must not be negative", tier)
		}
		if p.MaxRequestSeconds < 0 {
			return fmt.Errorf("plan %s: max_request_seconds must not be negative", tier)
		}
		if p.RequestsPerHour < 0 {
			return fmt.Errorf("plan %s: requests_per_hour must not be negative", tier)
		}
		if p.InputShare < 0 || p.InputShare > 1 {
			return fmt.Errorf("plan %s: input_share must be in [0, 1]", tier)
		}
		if p.OutputShare < 0 || p.OutputShare > 1 {
			return fmt.Errorf("plan %s: output_share must be in [0, 1]", tier)
		}
		if p.InputShare+p.OutputShare > 1.0000001 {
			return fmt.Errorf("plan %s: input_share + output_share must not exceed 1", tier)
		}
		if p.DailyMinutes > 0 && p.MaxRequestSeconds == 0 {
			return fmt.Errorf("plan %s: voice-enabled plan requires max_request_seconds", tier)
		}
		if p.DailyMinutes > 0 && p.RequestsPerHour == 0 {
			return fmt.Errorf("plan %s: voice-enabled plan requires requests_per_hour", tier)
		}
	}
	return nil
}
