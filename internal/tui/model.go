// Package tui is an interactive terminal view of the category list.
// Remote calls run as tea.Cmds against the grid and toggle controllers; the
// view renders whatever snapshot the controller holds when a call settles.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/billyloki/module-shop-admin/pkg/grid"
	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/shopadmin"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	boxStyle    = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

const helpLine = "n/p page · s sort · r reverse · / filter · t toggle menu · d delete · q quit"

var columns = []table.Column{
	{Title: "ID", Width: 6},
	{Title: "Name", Width: 24},
	{Title: "Order", Width: 6},
	{Title: "In menu", Width: 8},
	{Title: "Published", Width: 10},
	{Title: "Updated", Width: 17},
}

// doneMsg reports that a controller call settled.
type doneMsg struct {
	snap grid.Snapshot[types.Category]
	err  error
}

// Model is the bubbletea model of the category list.
type Model struct {
	ctx   context.Context
	list  *shopadmin.CategoryList
	notes *notify.Recorder

	table  table.Model
	filter textinput.Model

	snap       grid.Snapshot[types.Category]
	filtering  bool
	confirming string // id awaiting delete confirmation
	status     string
	failed     bool
	busy       int
}

// New returns a model over list. notes must be the notifier list was built
// with; its latest message is shown in the status line.
func New(ctx context.Context, list *shopadmin.CategoryList, notes *notify.Recorder) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(types.DefaultPageSize+1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	f := textinput.New()
	f.Placeholder = "name contains"
	f.Prompt = "/ "

	return Model{
		ctx:    ctx,
		list:   list,
		notes:  notes,
		table:  t,
		filter: f,
		snap:   list.Grid.Snapshot(),
		busy:   1,
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.command(m.list.Mount)
}

// run counts op as pending and returns its command.
func (m *Model) run(op func(ctx context.Context) error) tea.Cmd {
	m.busy++
	return m.command(op)
}

// command executes op and reports the resulting snapshot.
func (m Model) command(op func(ctx context.Context) error) tea.Cmd {
	ctx, list := m.ctx, m.list
	return func() tea.Msg {
		err := op(ctx)
		return doneMsg{snap: list.Grid.Snapshot(), err: err}
	}
}

// Update handles key presses and settled calls.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.busy = max(m.busy-1, 0)
		m.apply(msg)
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		if m.confirming != "" {
			return m.updateConfirm(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) apply(msg doneMsg) {
	m.snap = msg.snap
	m.table.SetRows(rows(msg.snap.Result.Items()))
	if n, ok := m.notes.Last(); ok {
		m.status = n.Message
		m.failed = n.Level == notify.LevelError
		m.notes.Reset()
		return
	}
	if msg.err == nil {
		m.status = ""
		m.failed = false
	}
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n":
		return m, m.run(m.list.Grid.NextPage)
	case "p":
		return m, m.run(m.list.Grid.PrevPage)
	case "s":
		next := nextSortField(m.snap.Query.SortPredicate)
		desc := m.snap.Query.SortDescending
		return m, m.run(func(ctx context.Context) error { return m.list.Grid.Sort(ctx, next, desc) })
	case "r":
		pred, desc := m.snap.Query.SortPredicate, m.snap.Query.SortDescending
		return m, m.run(func(ctx context.Context) error { return m.list.Grid.Sort(ctx, pred, !desc) })
	case "/":
		m.filtering = true
		m.filter.SetValue(keyword(m.snap.Query.Filters))
		return m, m.filter.Focus()
	case "t":
		rec, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) error { return m.list.ToggleMenu(ctx, &rec) })
	case "d":
		if rec, ok := m.selected(); ok {
			m.confirming = rec.Key()
			m.status = fmt.Sprintf("delete %q? (y/n)", rec.Name)
			m.failed = false
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirming
	m.confirming = ""
	m.status = ""
	if msg.String() != "y" {
		return m, nil
	}
	return m, m.run(func(ctx context.Context) error { return m.list.Delete(ctx, id) })
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filter.Blur()
		filters := map[string]any{}
		if v := strings.TrimSpace(m.filter.Value()); v != "" {
			filters[types.CategoryFieldName] = v
		}
		return m, m.run(func(ctx context.Context) error { return m.list.Grid.ApplyFilters(ctx, filters) })
	case "esc":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

// selected returns the record under the cursor.
func (m Model) selected() (types.Category, bool) {
	items := m.snap.Result.Items()
	i := m.table.Cursor()
	if i < 0 || i >= len(items) {
		return types.Category{}, false
	}
	return items[i], true
}

// View renders the table, the footer and the prompt or help line.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Categories"))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.table.View()))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(footer(m.snap, m.busy > 0)))
	b.WriteString("\n")
	switch {
	case m.filtering:
		b.WriteString(m.filter.View())
	case m.confirming != "":
		b.WriteString(promptStyle.Render(m.status))
	case m.status != "" && m.failed:
		b.WriteString(errorStyle.Render(m.status))
	case m.status != "":
		b.WriteString(m.status)
	default:
		b.WriteString(footerStyle.Render(helpLine))
	}
	b.WriteString("\n")
	return b.String()
}

func footer(s grid.Snapshot[types.Category], busy bool) string {
	dir := "asc"
	if s.Query.SortDescending {
		dir = "desc"
	}
	line := fmt.Sprintf("%s · page %d/%d · sort %s %s",
		s.Range, s.Query.PageNumber, max(s.PageCount, 1), s.Query.SortPredicate, dir)
	if kw := keyword(s.Query.Filters); kw != "" {
		line += fmt.Sprintf(" · name ~ %q", kw)
	}
	if busy || s.Status == grid.Loading {
		line += " · loading…"
	}
	return line
}

func rows(items []types.Category) []table.Row {
	out := make([]table.Row, len(items))
	for i, c := range items {
		out[i] = table.Row{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			strconv.Itoa(c.DisplayOrder),
			yesNo(c.IncludeInMenu),
			yesNo(c.IsPublished),
			c.UpdatedOn.Local().Format("2006-01-02 15:04"),
		}
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func keyword(filters map[string]any) string {
	s, _ := filters[types.CategoryFieldName].(string)
	return s
}

// nextSortField cycles through the sortable columns.
func nextSortField(current string) string {
	fields := types.CategorySortFields
	for i, f := range fields {
		if f == current {
			return fields[(i+1)%len(fields)]
		}
	}
	return fields[0]
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, list *shopadmin.CategoryList, notes *notify.Recorder, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(New(ctx, list, notes), opts...).Run()
	return err
}
