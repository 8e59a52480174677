package experiment

import (
	"sort"
	"strings"

	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/metrics"
	"github.com/san-kum/spinlattice/internal/physics"
	"github.com/san-kum/spinlattice/internal/sim"
)

// Family groups dynamics that share a site alphabet and observables.
type Family int

const (
	Ising Family = iota
	Epidemic
)

func (f Family) String() string {
	switch f {
	case Ising:
		return "ising"
	case Epidemic:
		return "epidemic"
	default:
		return "unknown"
	}
}

type ruleEntry struct {
	family Family
	build  func() sim.Rule
}

// Registry resolves dynamics and initial-state selectors. Selectors are
// resolved once at construction; the simulator only sees a sim.Rule.
type Registry struct {
	rules   map[string]ruleEntry
	aliases map[string]string
	inits   map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		rules:   make(map[string]ruleEntry),
		aliases: make(map[string]string),
		inits:   make(map[string]string),
	}

	r.Register("glauber", Ising, func() sim.Rule { return physics.NewGlauber() }, "G", "g", "1")
	r.Register("kawasaki", Ising, func() sim.Rule { return physics.NewKawasaki() }, "K", "k", "2")
	r.Register("sirs", Epidemic, func() sim.Rule { return physics.NewSIRS() }, "epidemic", "S", "s")

	for name, aliases := range map[string][]string{
		"random":  {"R", "r"},
		"uniform": {"U", "u"},
		"split":   {"S", "s"},
	} {
		r.inits[name] = name
		for _, a := range aliases {
			r.inits[a] = name
		}
	}

	return r
}

// Register adds a dynamics under its canonical name and any aliases.
func (r *Registry) Register(name string, family Family, build func() sim.Rule, aliases ...string) {
	r.rules[name] = ruleEntry{family: family, build: build}
	r.aliases[name] = name
	for _, a := range aliases {
		r.aliases[a] = name
	}
}

// Resolve maps a selector to its canonical dynamics name.
func (r *Registry) Resolve(selector string) (string, error) {
	if name, ok := r.aliases[selector]; ok {
		return name, nil
	}
	if name, ok := r.aliases[strings.ToLower(selector)]; ok {
		return name, nil
	}
	return "", dynamo.ConfigErrorf("dynamics", selector, "unrecognised selector")
}

// GetRule builds a fresh rule for the selector.
func (r *Registry) GetRule(selector string) (sim.Rule, Family, error) {
	name, err := r.Resolve(selector)
	if err != nil {
		return nil, 0, err
	}
	e := r.rules[name]
	return e.build(), e.family, nil
}

// ResolveInit maps an initial-state selector to random, uniform or split.
// An empty selector means random.
func (r *Registry) ResolveInit(selector string) (string, error) {
	if selector == "" {
		return "random", nil
	}
	if name, ok := r.inits[selector]; ok {
		return name, nil
	}
	if name, ok := r.inits[strings.ToLower(selector)]; ok {
		return name, nil
	}
	return "", dynamo.ConfigErrorf("init", selector, "unrecognised initial state")
}

// ListRules returns the canonical dynamics names in sorted order.
func (r *Registry) ListRules() []string {
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aliases returns the selectors that resolve to name, sorted.
func (r *Registry) Aliases(name string) []string {
	var out []string
	for a, n := range r.aliases {
		if n == name && a != name {
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

// DefaultMetrics returns the per-sweep metrics reported for a family.
func (r *Registry) DefaultMetrics(family Family) metrics.Set {
	set := metrics.Set{metrics.NewAcceptance()}
	switch family {
	case Ising:
		set = append(set,
			metrics.NewAbsMagnetisation(),
			metrics.NewFraction("up", physics.SpinUp),
		)
	case Epidemic:
		set = append(set,
			metrics.NewInfectedFraction(),
			metrics.NewFraction("S", physics.Susceptible),
			metrics.NewFraction("R", physics.Recovered),
			metrics.NewFraction("Im", physics.Immune),
		)
	}
	return set
}
