package survey

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	errs "github.com/saltiyazan/charmhub-scrape/pkg/errors"
)

// SortField selects the sort key for re-sorting a pass.
type SortField string

const (
	SortByName     SortField = "name"
	SortByPlatform SortField = "platform"
)

// SortFields lists the supported fields.
var SortFields = []SortField{SortByName, SortByPlatform}

// ParseSortField validates a user-supplied field name.
func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(SortFields, f) {
		return "", errs.New(errs.ErrCodeInvalidSort, "unknown sort field %q (want name or platform)", s)
	}
	return f, nil
}

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection validates a user-supplied direction. Empty means ascending.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", errs.New(errs.ErrCodeInvalidSort, "unknown sort order %q (want asc or desc)", s)
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Sorter tracks one direction per field. Each request on a field uses the
// field's current direction and then flips it, so the first request sorts
// ascending and the next one descending.
type Sorter struct {
	mu   sync.Mutex
	next map[SortField]Direction
}

// NewSorter returns a Sorter with every field ascending.
func NewSorter() *Sorter {
	return &Sorter{next: make(map[SortField]Direction)}
}

// Next returns the direction to use for field and toggles it.
func (s *Sorter) Next(field SortField) Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.next[field]
	if !ok {
		d = Ascending
	}
	s.next[field] = d.Opposite()
	return d
}

// Set records that field was sorted in d, so the following Next flips it.
func (s *Sorter) Set(field SortField, d Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next[field] = d.Opposite()
}

// SortResults stably reorders results in place. Names compare by the
// package name; platforms compare by the joined platform list. Keys
// compare case-insensitively, with byte order breaking ties.
func SortResults(results []PackageResult, field SortField, dir Direction) {
	key := func(r PackageResult) string { return r.Package.Name }
	if field == SortByPlatform {
		key = func(r PackageResult) string { return r.Package.PlatformList() }
	}
	slices.SortStableFunc(results, func(a, b PackageResult) int {
		c := compareFold(key(a), key(b))
		if dir == Descending {
			return -c
		}
		return c
	})
}

func compareFold(a, b string) int {
	if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}
