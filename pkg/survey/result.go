package survey

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/saltiyazan/charmhub-scrape/pkg/charm"
)

// PackageResult is the outcome of resolving and probing one charm.
type PackageResult struct {
	Package   charm.Package
	Repo      charm.Repository
	Detection charm.Detection
	Elapsed   time.Duration
}

// Row is one line of the rendered table.
type Row struct {
	Index         int      `json:"index"` // 1-based display position
	Name          string   `json:"name"`
	Platforms     []string `json:"platforms"`
	URL           string   `json:"url"`
	UsesInterface bool     `json:"uses_interface"`
	Repository    string   `json:"repository"`
	Version       string   `json:"version"`
}

// VersionCount is the number of charms vendoring one library version.
type VersionCount struct {
	Version string `json:"version"`
	Count   int    `json:"count"`
}

// Summary holds the counts of one pass. Percentages are derived on demand.
type Summary struct {
	Total          int            `json:"total"`
	InterfaceUsers int            `json:"interface_users"`
	LibraryUsers   int            `json:"library_users"` // Charms with any recognised version
	Versions       []VersionCount `json:"versions"`
}

// NoLibrary is the implicit bucket of charms without a detected version.
func (s Summary) NoLibrary() int { return s.Total - s.LibraryUsers }

// Count returns the number of charms vendoring version.
func (s Summary) Count(version string) int {
	for _, vc := range s.Versions {
		if vc.Version == version {
			return vc.Count
		}
	}
	return 0
}

// InterfacePercent is the share of all charms that declare the interface.
func (s Summary) InterfacePercent() Percent { return Percentage(s.InterfaceUsers, s.Total) }

// LibraryPercent is the share of all charms with a detected library version.
func (s Summary) LibraryPercent() Percent { return Percentage(s.LibraryUsers, s.Total) }

// VersionPercent is the share of library users vendoring version. The
// denominator is [Summary.LibraryUsers], not the catalog size.
func (s Summary) VersionPercent(version string) Percent {
	return Percentage(s.Count(version), s.LibraryUsers)
}

// Percent is a percentage that may be undefined (zero denominator).
type Percent struct {
	Value float64
	Valid bool
}

// Percentage returns 100*count/denominator, or an invalid Percent when the
// denominator is zero.
func Percentage(count, denominator int) Percent {
	if denominator == 0 {
		return Percent{}
	}
	return Percent{Value: 100 * float64(count) / float64(denominator), Valid: true}
}

// String formats the value with two decimals, or returns [charm.NotAvailable].
func (p Percent) String() string {
	if !p.Valid {
		return charm.NotAvailable
	}
	return fmt.Sprintf("%.2f%%", p.Value)
}

// MarshalJSON encodes an undefined percentage as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Percent{}
		return nil
	}
	if err := json.Unmarshal(data, &p.Value); err != nil {
		return err
	}
	p.Valid = true
	return nil
}

// SummaryReport is a [Summary] with its percentages computed, as shown to
// users.
type SummaryReport struct {
	Total            int             `json:"total"`
	InterfaceUsers   int             `json:"interface_users"`
	InterfacePercent Percent         `json:"interface_percent"`
	LibraryUsers     int             `json:"library_users"`
	LibraryPercent   Percent         `json:"library_percent"`
	NoLibrary        int             `json:"no_library"`
	Versions         []VersionReport `json:"versions"`
}

// VersionReport is one library version's count and share of library users.
type VersionReport struct {
	Version string  `json:"version"`
	Count   int     `json:"count"`
	Percent Percent `json:"percent"`
}

// Report computes the percentages of s.
func (s Summary) Report() SummaryReport {
	r := SummaryReport{
		Total:            s.Total,
		InterfaceUsers:   s.InterfaceUsers,
		InterfacePercent: s.InterfacePercent(),
		LibraryUsers:     s.LibraryUsers,
		LibraryPercent:   s.LibraryPercent(),
		NoLibrary:        s.NoLibrary(),
		Versions:         make([]VersionReport, len(s.Versions)),
	}
	for i, vc := range s.Versions {
		r.Versions[i] = VersionReport{Version: vc.Version, Count: vc.Count, Percent: s.VersionPercent(vc.Version)}
	}
	return r
}

// Fold turns per-charm results, in display order, into rows and a summary.
// versions lists the recognised version tags in reporting order; detected
// versions outside it are shown in rows but not counted.
//
// Fold is pure: the same inputs always yield the same outputs.
func Fold(results []PackageResult, consumers charm.ConsumerSet, versions []string) ([]Row, Summary) {
	rows := make([]Row, 0, len(results))
	sum := Summary{Versions: make([]VersionCount, len(versions))}
	for i, v := range versions {
		sum.Versions[i].Version = v
	}

	for i, r := range results {
		uses := consumers.Contains(r.Package.Name)
		rows = append(rows, Row{
			Index:         i + 1,
			Name:          r.Package.DisplayName(),
			Platforms:     slices.Clone(r.Package.Platforms),
			URL:           r.Package.URL,
			UsesInterface: uses,
			Repository:    r.Repo.String(),
			Version:       r.Detection.String(),
		})

		sum.Total++
		if uses {
			sum.InterfaceUsers++
		}
		if r.Detection.Found() {
			if j := slices.Index(versions, r.Detection.Version); j >= 0 {
				sum.Versions[j].Count++
				sum.LibraryUsers++
			}
		}
	}
	return rows, sum
}
