package survey

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/saltiyazan/charmhub-scrape/pkg/charm"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		count, denom int
		want         string
		json         string
	}{
		{0, 0, "N/A", "null"},
		{3, 0, "N/A", "null"},
		{1, 4, "25.00%", "25"},
		{2, 3, "66.67%", "66.66666666666667"},
		{0, 5, "0.00%", "0"},
		{5, 5, "100.00%", "100"},
	}
	for _, tt := range tests {
		p := Percentage(tt.count, tt.denom)
		if got := p.String(); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %q, want %q", tt.count, tt.denom, got, tt.want)
		}
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if string(data) != tt.json {
			t.Errorf("Percentage(%d, %d) JSON = %s, want %s", tt.count, tt.denom, data, tt.json)
		}
	}
}

var testVersions = []string{"v0", "v1", "v2", "v3", "v4"}

func found(v string) charm.Detection {
	return charm.Detection{Outcome: charm.Found, Version: v, Attempts: 1}
}

func sampleResults() []PackageResult {
	return []PackageResult{
		{
			Package:   charm.Package{Name: "alpha", Platforms: []string{"ubuntu"}, URL: "https://charmhub.io/alpha"},
			Repo:      charm.Repository{URL: "https://github.com/o/alpha"},
			Detection: found("v2"),
		},
		{
			Package:   charm.Package{Name: "bravo", URL: "https://charmhub.io/bravo"},
			Repo:      charm.Repository{URL: "https://github.com/o/bravo"},
			Detection: charm.Detection{Outcome: charm.NotFound, Attempts: 15},
		},
		{
			Package: charm.Package{Name: "charlie", URL: "https://charmhub.io/charlie"},
		},
		{
			Package:   charm.Package{Name: "delta", Platforms: []string{"centos", "ubuntu"}, URL: "https://charmhub.io/delta"},
			Repo:      charm.Repository{URL: "https://opendev.org/o/delta"},
			Detection: found("v4"),
		},
	}
}

func TestFold(t *testing.T) {
	consumers := charm.NewConsumerSet([]string{"alpha"}, []string{"charlie", "zulu"})
	rows, sum := Fold(sampleResults(), consumers, testVersions)

	wantRows := []Row{
		{1, "alpha", []string{"ubuntu"}, "https://charmhub.io/alpha", true, "https://github.com/o/alpha", "v2"},
		{2, "bravo", nil, "https://charmhub.io/bravo", false, "https://github.com/o/bravo", "N/A"},
		{3, "charlie", nil, "https://charmhub.io/charlie", true, "N/A", "N/A"},
		{4, "delta", []string{"centos", "ubuntu"}, "https://charmhub.io/delta", false, "https://opendev.org/o/delta", "v4"},
	}
	if diff := cmp.Diff(wantRows, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	wantSum := Summary{
		Total:          4,
		InterfaceUsers: 2,
		LibraryUsers:   2,
		Versions: []VersionCount{
			{"v0", 0}, {"v1", 0}, {"v2", 1}, {"v3", 0}, {"v4", 1},
		},
	}
	if diff := cmp.Diff(wantSum, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	if got := sum.NoLibrary(); got != 2 {
		t.Errorf("NoLibrary() = %d, want 2", got)
	}
	if got := sum.InterfacePercent().String(); got != "50.00%" {
		t.Errorf("InterfacePercent() = %s, want 50.00%%", got)
	}
	if got := sum.LibraryPercent().String(); got != "50.00%" {
		t.Errorf("LibraryPercent() = %s, want 50.00%%", got)
	}
	if got := sum.VersionPercent("v2").String(); got != "50.00%" {
		t.Errorf("VersionPercent(v2) = %s, want 50.00%%", got)
	}
	if got := sum.VersionPercent("v0").String(); got != "0.00%" {
		t.Errorf("VersionPercent(v0) = %s, want 0.00%%", got)
	}
}

func TestFoldEmpty(t *testing.T) {
	rows, sum := Fold(nil, charm.NewConsumerSet(), testVersions)
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
	if sum.Total != 0 || sum.LibraryUsers != 0 {
		t.Errorf("summary = %+v, want zero counts", sum)
	}
	for _, p := range []Percent{sum.InterfacePercent(), sum.LibraryPercent(), sum.VersionPercent("v1")} {
		if p.Valid || p.String() != "N/A" {
			t.Errorf("percent = %v, want N/A", p)
		}
	}
}

func TestFoldNoLibraryUsers(t *testing.T) {
	results := []PackageResult{
		{Package: charm.Package{Name: "a"}, Detection: charm.Detection{Outcome: charm.NotFound}},
	}
	_, sum := Fold(results, nil, testVersions)
	if got := sum.LibraryPercent().String(); got != "0.00%" {
		t.Errorf("LibraryPercent() = %s, want 0.00%%", got)
	}
	if got := sum.VersionPercent("v1").String(); got != "N/A" {
		t.Errorf("VersionPercent(v1) = %s, want N/A", got)
	}
}

func TestFoldUnknownVersionNotCounted(t *testing.T) {
	results := []PackageResult{
		{Package: charm.Package{Name: "a"}, Detection: found("v9")},
	}
	rows, sum := Fold(results, nil, testVersions)
	if rows[0].Version != "v9" {
		t.Errorf("row version = %q, want v9", rows[0].Version)
	}
	if sum.LibraryUsers != 0 {
		t.Errorf("LibraryUsers = %d, want 0", sum.LibraryUsers)
	}
}

func TestFoldIsPure(t *testing.T) {
	results := sampleResults()
	consumers := charm.NewConsumerSet([]string{"bravo"})
	rows1, sum1 := Fold(results, consumers, testVersions)
	rows2, sum2 := Fold(results, consumers, testVersions)
	if diff := cmp.Diff(rows1, rows2); diff != "" {
		t.Errorf("rows differ between folds:\n%s", diff)
	}
	if diff := cmp.Diff(sum1, sum2); diff != "" {
		t.Errorf("summaries differ between folds:\n%s", diff)
	}
}

func TestFoldDisplayNameFallback(t *testing.T) {
	results := []PackageResult{
		{Package: charm.Package{Description: "unnamed charm"}},
		{Package: charm.Package{}},
	}
	rows, _ := Fold(results, nil, testVersions)
	if rows[0].Name != "unnamed charm" || rows[1].Name != "N/A" {
		t.Errorf("names = %q, %q", rows[0].Name, rows[1].Name)
	}
}

func TestSummaryReport(t *testing.T) {
	_, sum := Fold(sampleResults(), charm.NewConsumerSet([]string{"alpha"}), testVersions)
	r := sum.Report()
	if r.Total != 4 || r.NoLibrary != 2 || r.InterfacePercent.String() != "25.00%" {
		t.Errorf("report = %+v", r)
	}
	if len(r.Versions) != 5 || r.Versions[2].Version != "v2" || r.Versions[2].Percent.String() != "50.00%" {
		t.Errorf("versions = %+v", r.Versions)
	}

	data, err := json.Marshal(Summary{}.Report())
	if err != nil {
		t.Fatal(err)
	}
	var back SummaryReport
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.LibraryPercent.Valid || back.InterfacePercent.Valid {
		t.Errorf("empty report percentages = %+v", back)
	}

	data, _ = json.Marshal(r)
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.LibraryPercent.Valid || back.LibraryPercent.Value != 50 {
		t.Errorf("round-tripped library percent = %+v", back.LibraryPercent)
	}
}
