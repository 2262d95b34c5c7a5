// Package session holds the state of one assessment run: the record being
// filled, the export selection pool, the saved flags, and the active
// domain/subsystem/component context.
package session

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kokistudios/assess/internal/pool"
	"github.com/kokistudios/assess/internal/record"
	"github.com/kokistudios/assess/internal/taxonomy"
	"github.com/kokistudios/assess/internal/ui"
)

// Mode selects how the record behaves when the active context changes.
type Mode string

const (
	ModeMultiDomain  Mode = "multi"  // values persist across context switches
	ModeSingleRecord Mode = "single" // every context switch starts a fresh record
)

// ParseMode maps a config value to a Mode. Empty means ModeMultiDomain.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeMultiDomain:
		return ModeMultiDomain, nil
	case ModeSingleRecord:
		return ModeSingleRecord, nil
	}
	return "", fmt.Errorf("unknown session mode %q (want multi or single)", s)
}

// Context is the domain/subsystem/component the user is working in.
// Subsystem and Component may be empty while only a domain is chosen.
type Context struct {
	Domain    string
	Subsystem string
	Component string
}

// DomainStatus summarizes one domain for status views.
type DomainStatus struct {
	Domain   string
	Filled   int
	Total    int
	Complete bool
	Saved    bool
	Selected bool
}

// Session is the injectable state of one assessment run.
type Session struct {
	ID       string
	Mode     Mode
	Taxonomy *taxonomy.Taxonomy
	Record   *record.Store
	Pool     *pool.Pool

	autoEvict bool
	saved     map[string]bool
	context   Context
}

// Option configures New.
type Option func(*options)

type options struct {
	mode        Mode
	autoEvict   bool
	description string
	id          string
}

// WithMode sets the record mode.
func WithMode(mode Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithAutoEvict drops a domain from the pool as soon as an edit leaves it
// incomplete.
func WithAutoEvict(v bool) Option {
	return func(o *options) {
		o.autoEvict = v
	}
}

// WithDescription seeds the generated session ID.
func WithDescription(desc string) Option {
	return func(o *options) {
		o.description = desc
	}
}

// WithID fixes the session ID instead of generating one.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// New creates an empty session over tax. The pool admits only domains the
// record reports complete.
func New(tax *taxonomy.Taxonomy, opts ...Option) *Session {
	o := options{mode: ModeMultiDomain, description: "assessment"}
	for _, opt := range opts {
		opt(&o)
	}
	id := o.id
	if id == "" {
		id = GenerateID(o.description)
	}
	rec := record.New(tax)
	return &Session{
		ID:        id,
		Mode:      o.mode,
		Taxonomy:  tax,
		Record:    rec,
		Pool:      pool.New(rec.IsDomainComplete),
		autoEvict: o.autoEvict,
		saved:     make(map[string]bool),
	}
}

// GenerateID returns "<yyyymmdd>-<slug>-<8 hex>".
func GenerateID(description string) string {
	date := time.Now().Format("20060102")
	return fmt.Sprintf("%s-%s-%s", date, slugify(description), randomHex(8))
}

var (
	slugUnsafe = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace  = regexp.MustCompile(`\s+`)
)

func slugify(s string) string {
	s = strings.ToLower(s)
	s = slugUnsafe.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}
	if s == "" {
		s = "assessment"
	}
	return s
}

func randomHex(n int) string {
	b := make([]byte, (n+1)/2)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x", b)[:n]
}

// Context returns the active context.
func (s *Session) Context() Context {
	return s.context
}

// AutoEvict reports whether edits evict incomplete domains from the pool.
func (s *Session) AutoEvict() bool {
	return s.autoEvict
}

// Select makes domain/subsystem/component the active context. Subsystem and
// component may be left empty. In ModeSingleRecord any change of context
// clears the record.
func (s *Session) Select(domain, subsystem, component string) error {
	d, err := s.Taxonomy.LookupDomain(domain)
	if err != nil {
		return err
	}
	if component != "" && subsystem == "" {
		return fmt.Errorf("component %q selected without a subsystem", component)
	}
	if subsystem != "" {
		sub, ok := d.Subsystem(subsystem)
		if !ok {
			return fmt.Errorf("unknown subsystem %q in domain %q", subsystem, domain)
		}
		if component != "" {
			if _, ok := sub.Component(component); !ok {
				return fmt.Errorf("unknown component %q in %s/%s", component, domain, subsystem)
			}
		}
	}

	next := Context{Domain: domain, Subsystem: subsystem, Component: component}
	if s.Mode == ModeSingleRecord && s.context != (Context{}) && next != s.context {
		s.Record.Clear()
		ui.Logger.Debug("Record reset on context switch", "from", s.context.Domain, "to", domain)
		s.evictIncomplete()
	}
	s.context = next
	return nil
}

// SetField writes one value. The path must be declared in the taxonomy.
func (s *Session) SetField(p taxonomy.Path, value string) error {
	if err := s.Record.SetChecked(p, value); err != nil {
		return err
	}
	if s.autoEvict && s.Pool.Contains(p.Domain) && !s.Record.IsDomainComplete(p.Domain) {
		s.Pool.Remove(p.Domain)
		ui.Logger.Info("Domain left export selection", "domain", p.Domain, "reason", "incomplete")
	}
	return nil
}

func (s *Session) evictIncomplete() {
	if !s.autoEvict {
		return
	}
	for _, d := range s.Pool.Prune() {
		ui.Logger.Info("Domain left export selection", "domain", d, "reason", "incomplete")
	}
}

// Toggle flips pool membership for domain. Adding requires the domain to be
// complete; removing never does. It returns membership after the call.
func (s *Session) Toggle(domain string) bool {
	return s.Pool.Toggle(domain)
}

// MarkSaved sets the saved flag for domain. The flag is informational and
// does not affect export eligibility.
func (s *Session) MarkSaved(domain string) {
	s.saved[domain] = true
}

// IsSaved reports the saved flag for domain.
func (s *Session) IsSaved(domain string) bool {
	return s.saved[domain]
}

// Status summarizes every domain in taxonomy order.
func (s *Session) Status() []DomainStatus {
	out := make([]DomainStatus, 0, len(s.Taxonomy.Domains))
	for _, d := range s.Taxonomy.Domains {
		filled, total := s.Record.Filled(d.Name)
		out = append(out, DomainStatus{
			Domain:   d.Name,
			Filled:   filled,
			Total:    total,
			Complete: s.Record.IsDomainComplete(d.Name),
			Saved:    s.saved[d.Name],
			Selected: s.Pool.Contains(d.Name),
		})
	}
	return out
}
