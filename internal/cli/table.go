package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/saltiyazan/charmhub-scrape/pkg/charm"
	errs "github.com/saltiyazan/charmhub-scrape/pkg/errors"
	"github.com/saltiyazan/charmhub-scrape/pkg/survey"
)

// Output formats for scan.
const (
	formatTable = "table"
	formatJSON  = "json"
)

var tableHeaders = []string{"#", "Name", "Platforms", "URL", "Interface", "Repository", "Library"}

// tableWindow selects the rows of a table to draw and the highlighted row.
type tableWindow struct {
	offset int
	height int // Zero draws every row
	cursor int // -1 for none
}

// surveyTable builds the survey table for rows.
func surveyTable(rows []survey.Row, win tableWindow) *table.Table {
	end := len(rows)
	if win.height > 0 {
		end = min(win.offset+win.height, len(rows))
	}
	start := min(win.offset, end)

	cells := make([][]string, 0, end-start)
	for _, r := range rows[start:end] {
		uses := ""
		if r.UsesInterface {
			uses = iconCheck
		}
		cells = append(cells, []string{
			strconv.Itoa(r.Index),
			r.Name,
			strings.Join(r.Platforms, ", "),
			r.URL,
			uses,
			r.Repository,
			r.Version,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(tableHeaders...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			idx := start + row
			if idx >= end {
				return base
			}
			if idx == win.cursor {
				base = base.Bold(true)
			}
			r := rows[idx]
			switch {
			case col == 4:
				return base.Foreground(colorGreen)
			case col == 5 && r.Repository == charm.NotAvailable,
				col == 6 && r.Version == charm.NotAvailable:
				return base.Foreground(colorDim)
			case col == 6:
				return base.Foreground(colorCyan)
			case idx == win.cursor:
				return base.Foreground(colorCyan)
			}
			return base
		})
}

// renderSummary formats the pass summary.
func renderSummary(rep survey.SummaryReport) string {
	label := lipgloss.NewStyle().Foreground(colorGray).Width(26)
	line := func(name string, count int, pct survey.Percent) string {
		return label.Render(name) + " " + StyleNumber.Render(strconv.Itoa(count)) +
			StyleDim.Render("  ratio ") + StyleValue.Render(pct.String())
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Summary") + "\n")
	b.WriteString(label.Render("Total charms") + " " + StyleNumber.Render(strconv.Itoa(rep.Total)) + "\n")
	b.WriteString(line("Using the interface", rep.InterfaceUsers, rep.InterfacePercent) + "\n")
	b.WriteString(line("Using the library", rep.LibraryUsers, rep.LibraryPercent) + "\n")
	b.WriteString(label.Render("Without the library") + " " + StyleNumber.Render(strconv.Itoa(rep.NoLibrary)) + "\n")
	b.WriteString(StyleDim.Render("Library versions") + "\n")
	for _, v := range rep.Versions {
		b.WriteString(line("  "+strings.ToUpper(v.Version), v.Count, v.Percent) + "\n")
	}
	return b.String()
}

// scanReport is the JSON form of a pass.
type scanReport struct {
	PassID    string               `json:"pass_id"`
	Interface string               `json:"interface"`
	Rows      []survey.Row         `json:"rows"`
	Summary   survey.SummaryReport `json:"summary"`
}

func writeReport(w io.Writer, res *survey.Result, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(scanReport{
			PassID:    res.PassID,
			Interface: res.Interface,
			Rows:      res.Rows,
			Summary:   res.Summary.Report(),
		})
	case formatTable, "":
		if _, err := fmt.Fprintln(w, surveyTable(res.Rows, tableWindow{cursor: -1}).Render()); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, "\n"+renderSummary(res.Summary.Report()))
		return err
	}
	return errs.New(errs.ErrCodeInvalidFormat, "unknown format %q (want table or json)", format)
}
