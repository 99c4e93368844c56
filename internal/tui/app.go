// Package tui implements the interactive trend browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/greywatch/srev/internal/cli"
	"github.com/greywatch/srev/internal/trend"
	"github.com/greywatch/srev/internal/tui/theme"
)

// rowsMsg delivers freshly read ledger rows.
type rowsMsg struct {
	rows []trend.Row
	err  error
}

// App is the bubbletea model for the trend browser.
type App struct {
	ledger  *trend.Ledger
	project string

	spinner spinner.Model
	table   table.Model
	rows    []trend.Row
	loaded  bool
	err     error

	width  int
	height int
}

// NewApp builds the trend browser over the given ledger. An empty
// project shows all projects.
func NewApp(ledger *trend.Ledger, project string) App {
	t := theme.Active

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(t.Accent)

	columns := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Project", Width: 16},
		{Title: "Source", Width: 8},
		{Title: "Run", Width: 11},
		{Title: "Uncached", Width: 9},
		{Title: "Eff", Width: 6},
		{Title: "Comp", Width: 6},
		{Title: "Verdict", Width: 7},
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		Foreground(t.Accent).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(t.TextPrimary).
		Background(t.SurfaceHover).
		Bold(false)
	tbl.SetStyles(styles)

	return App{
		ledger:  ledger,
		project: project,
		spinner: sp,
		table:   tbl,
	}
}

// Init starts the spinner and the first ledger read.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.loadRows())
}

func (a App) loadRows() tea.Cmd {
	ledger, project := a.ledger, a.project
	return func() tea.Msg {
		var (
			rows []trend.Row
			err  error
		)
		if project != "" {
			rows, err = ledger.Rows(project)
		} else {
			rows, err = ledger.AllRows()
		}
		return rowsMsg{rows: rows, err: err}
	}
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if h := msg.Height - 10; h > 3 {
			a.table.SetHeight(h)
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return a, tea.Quit
		case "r":
			a.loaded = false
			return a, tea.Batch(a.spinner.Tick, a.loadRows())
		}

	case rowsMsg:
		a.loaded = true
		a.err = msg.err
		a.rows = msg.rows
		a.table.SetRows(tableRows(msg.rows))
		if len(msg.rows) > 0 {
			a.table.GotoBottom()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

func tableRows(rows []trend.Row) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{
			r.Date,
			r.Project,
			r.Source,
			r.RunType,
			cli.FormatTokens(r.UncachedTokens),
			cli.FormatScore(r.Efficiency),
			cli.FormatScore(r.Composite),
			r.Verdict,
		})
	}
	return out
}

// View renders the app.
func (a App) View() string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent)

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(titleStyle.Render("srev — score trends"))
	if a.project != "" {
		b.WriteString(mutedStyle.Render("  project: " + a.project))
	}
	b.WriteString("\n\n")

	if !a.loaded {
		b.WriteString("  " + a.spinner.View() + mutedStyle.Render(" reading ledger..."))
		b.WriteString("\n")
		return b.String()
	}

	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(t.Red)
		b.WriteString("  " + errStyle.Render(fmt.Sprintf("ledger error: %v", a.err)))
		b.WriteString("\n")
		return b.String()
	}

	if len(a.rows) == 0 {
		b.WriteString(mutedStyle.Render("  No scored sessions yet. Run `srev review` first."))
		b.WriteString("\n")
		return b.String()
	}

	composites := make([]float64, 0, len(a.rows))
	var sum float64
	fails := 0
	for _, r := range a.rows {
		composites = append(composites, r.Composite)
		sum += r.Composite
		if r.Verdict == "fail" {
			fails++
		}
	}
	b.WriteString(fmt.Sprintf("  %s sessions   avg composite %s   %d fails   %s\n\n",
		accentStyle.Render(cli.FormatNumber(int64(len(a.rows)))),
		accentStyle.Render(cli.FormatScore(sum/float64(len(a.rows)))),
		fails,
		cli.RenderSparkline(tail(composites, 40)),
	))

	b.WriteString(a.table.View())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  j/k move · r reload · q quit"))
	b.WriteString("\n")
	return b.String()
}

func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
