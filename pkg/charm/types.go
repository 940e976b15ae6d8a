package charm

import (
	"slices"
	"strings"
)

// NotAvailable is the display value for anything that could not be
// determined: an unresolved repository, a missing library version or an
// undefined percentage.
const NotAvailable = "N/A"

// Package is a single catalog entry.
type Package struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	URL         string   `json:"url"` // Landing page
}

// DisplayName returns the name shown in tables. It falls back to the
// description and then to [NotAvailable].
func (p Package) DisplayName() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Description != "":
		return p.Description
	}
	return NotAvailable
}

// PlatformList joins the supported platforms the way they are displayed and
// sorted.
func (p Package) PlatformList() string {
	return strings.Join(p.Platforms, ", ")
}

// ConsumerSet is the set of charm names that provide or require the
// surveyed interface. Membership is case-sensitive.
type ConsumerSet map[string]struct{}

// NewConsumerSet builds a set from any number of name lists, typically the
// providers and the requirers of an interface.
func NewConsumerSet(lists ...[]string) ConsumerSet {
	s := make(ConsumerSet)
	for _, names := range lists {
		for _, n := range names {
			s[n] = struct{}{}
		}
	}
	return s
}

// Contains reports whether name declares the interface.
func (s ConsumerSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members in sorted order.
func (s ConsumerSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Repository is the outcome of resolving a package's source repository.
// A zero Repository is unresolved.
type Repository struct {
	URL string `json:"url,omitempty"`
	Err error  `json:"-"`
}

// Resolved reports whether the repository can be probed.
func (r Repository) Resolved() bool {
	return r.Err == nil && r.URL != ""
}

// String returns the URL or [NotAvailable].
func (r Repository) String() string {
	if !r.Resolved() {
		return NotAvailable
	}
	return r.URL
}

// Outcome classifies a [Detection].
type Outcome int

const (
	// Unresolved means no repository was available, so nothing was probed.
	Unresolved Outcome = iota
	// NotFound means every candidate path was checked and none exists.
	NotFound
	// Found means a library version was detected.
	Found
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not-found"
	default:
		return "unresolved"
	}
}

// Detection is the result of probing a repository for the library.
type Detection struct {
	Outcome   Outcome `json:"-"`
	Version   string  `json:"version,omitempty"`   // Set only when Outcome is Found
	Candidate string  `json:"candidate,omitempty"` // URL that answered, when Found
	Attempts  int     `json:"attempts"`            // Existence checks issued
}

// Found reports whether a version was detected.
func (d Detection) Found() bool { return d.Outcome == Found }

// String returns the detected version or [NotAvailable].
func (d Detection) String() string {
	if d.Outcome != Found {
		return NotAvailable
	}
	return d.Version
}
