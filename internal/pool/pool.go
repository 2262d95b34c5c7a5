// Package pool holds the set of domains queued for batch export.
//
// Admission is gated by a completeness check evaluated at toggle time.
// Members are not re-validated when record values change later; callers
// that need that call Prune.
package pool

import "sort"

// Gate decides whether a domain may join the pool.
type Gate func(domain string) bool

// Pool is a set of domain names.
type Pool struct {
	gate    Gate
	members map[string]bool
}

// New creates an empty pool admitting domains for which gate returns true.
func New(gate Gate) *Pool {
	return &Pool{gate: gate, members: make(map[string]bool)}
}

// Toggle removes a member unconditionally, or adds a non-member when the
// gate allows it. A refused add is a no-op. It returns membership after
// the call.
func (p *Pool) Toggle(domain string) bool {
	if p.members[domain] {
		delete(p.members, domain)
		return false
	}
	if !p.gate(domain) {
		return false
	}
	p.members[domain] = true
	return true
}

// Contains reports membership.
func (p *Pool) Contains(domain string) bool {
	return p.members[domain]
}

// Len is the number of members.
func (p *Pool) Len() int {
	return len(p.members)
}

// Members returns a sorted snapshot.
func (p *Pool) Members() []string {
	out := make([]string, 0, len(p.members))
	for d := range p.members {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Remove drops a member if present.
func (p *Pool) Remove(domain string) {
	delete(p.members, domain)
}

// Clear empties the pool.
func (p *Pool) Clear() {
	p.members = make(map[string]bool)
}

// Prune re-runs the gate over current members and evicts those that no
// longer pass. Evicted names are returned sorted.
func (p *Pool) Prune() []string {
	var evicted []string
	for _, d := range p.Members() {
		if !p.gate(d) {
			delete(p.members, d)
			evicted = append(evicted, d)
		}
	}
	return evicted
}
