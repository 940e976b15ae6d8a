package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/saltiyazan/charmhub-scrape/pkg/survey"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// refreshDoneMsg reports the end of a background pass.
type refreshDoneMsg struct{ err error }

// BrowseModel is the bubbletea model for the interactive survey table.
type BrowseModel struct {
	ctx     context.Context
	view    *survey.View
	snap    survey.Snapshot
	cursor  int
	offset  int
	height  int
	loading bool
	status  string
}

// NewBrowseModel creates a model over view. The first pass starts when the
// program starts.
func NewBrowseModel(ctx context.Context, view *survey.View) BrowseModel {
	return BrowseModel{ctx: ctx, view: view, snap: view.Snapshot(), height: 15}
}

func (m BrowseModel) refresh(force bool) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: m.view.Refresh(m.ctx, force)}
	}
}

func (m BrowseModel) Init() tea.Cmd {
	if m.snap.Ready {
		return nil
	}
	return m.refresh(false)
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.height)
		case "pgdown":
			m.move(m.height)
		case "n":
			dir := m.view.Sort(survey.SortByName)
			m.status = fmt.Sprintf("sorted by name (%s)", dir)
			m.snap = m.view.Snapshot()
		case "p":
			dir := m.view.Sort(survey.SortByPlatform)
			m.status = fmt.Sprintf("sorted by platform (%s)", dir)
			m.snap = m.view.Snapshot()
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.status = "refreshing..."
			return m, m.refresh(true)
		}
	case refreshDoneMsg:
		m.loading = false
		m.snap = m.view.Snapshot()
		m.move(0)
		if msg.err != nil {
			m.status = "refresh failed, showing previous results"
		} else {
			m.status = fmt.Sprintf("%d charms", len(m.snap.Rows))
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-16, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta and keeps it inside the visible window.
func (m *BrowseModel) move(delta int) {
	n := len(m.snap.Rows)
	if n == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Charmhub library survey"))
	if m.snap.Interface != "" {
		b.WriteString(StyleDim.Render("  " + m.snap.Interface))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  n sort by name  p sort by platform  r refresh  q quit"))
	b.WriteString("\n\n")

	if !m.snap.Ready {
		switch {
		case m.snap.Error != "":
			b.WriteString(styleIconError.Render(iconError) + " " + m.snap.Error + "\n")
			b.WriteString(listDimStyle.Render("press r to retry"))
		default:
			b.WriteString(styleIconSpinner.Render("⠿") + " " + StyleDim.Render("Surveying charms, this can take a while..."))
		}
		return b.String()
	}

	b.WriteString(surveyTable(m.snap.Rows, tableWindow{
		offset: m.offset,
		height: m.height,
		cursor: m.cursor,
	}).Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.snap.Rows))))
	if m.status != "" {
		b.WriteString(listDimStyle.Render("  " + m.status))
	}
	if m.snap.Error != "" {
		b.WriteString("\n" + styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(m.snap.Error))
	}
	b.WriteString("\n\n")
	b.WriteString(renderSummary(m.snap.Summary))
	return b.String()
}

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Explore the survey in an interactive table",
		Long: `Browse runs a survey pass and shows the results in a scrollable table.

Press n or p to sort by name or platform; pressing the same key again
reverses the order. Press r to run a fresh pass; if it fails the previous
results stay on screen.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.newServices(ctx, flags.serviceOptions())
			if err != nil {
				return err
			}
			defer svc.Close()

			// The alternate screen owns the terminal while the program runs.
			c.Logger.SetOutput(io.Discard)
			defer c.Logger.SetOutput(cmd.ErrOrStderr())

			view := survey.NewView(svc.runner, c.passOptions(&flags))
			p := tea.NewProgram(NewBrowseModel(ctx, view), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
