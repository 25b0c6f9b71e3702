// Package tui implements SnapKit's single-window terminal interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/snapkit/snapkit/internal/launcher"
	"github.com/snapkit/snapkit/internal/storage"
	"go.uber.org/zap"
)

// Tab identifies one of the four catalog views.
type Tab int

const (
	TabLocal Tab = iota
	TabPinned
	TabNotInstalled
	TabResources
	tabCount
)

var tabTitles = [tabCount]string{"Local Scan", "Pinned", "Not Installed", "Resources"}

// String returns the tab title.
func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "unknown"
	}
	return tabTitles[t]
}

// Deps are the side effects the window performs.
type Deps struct {
	DB     *storage.DB
	Launch func(ctx context.Context, command string) error
	Open   func(ctx context.Context, item catalog.ResourceItem) error
	Copy   func(text string) error
	Logger *zap.Logger
	Tab    Tab // Initially visible tab
}

// Model is the window model
type Model struct {
	deps Deps
	ctx  context.Context

	installed    []catalog.InstalledApp
	pinned       []catalog.PinnedApp
	notInstalled []catalog.NotInstalledApp
	resources    []catalog.ResourceItem

	tables   [tabCount]table.Model
	searches [tabCount]string

	active    Tab
	search    textinput.Model
	searching bool
	form      *form
	help      help.Model
	keys      KeyMap
	status    string
	width     int
	height    int
}

// New creates the window model and loads every tab.
func New(ctx context.Context, deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	search := textinput.New()
	search.Placeholder = "type to filter by name"
	search.Prompt = ""
	search.CharLimit = 256
	search.Width = 40

	m := &Model{
		deps:   deps,
		ctx:    ctx,
		search: search,
		help:   help.New(),
		keys:   DefaultKeyMap(),
		status: "Ready",
		width:  100,
		height: 30,
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Border).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(Foreground).
		Background(Selected).
		Bold(false)

	for t := Tab(0); t < tabCount; t++ {
		tbl := table.New(
			table.WithColumns(m.columns(t)),
			table.WithFocused(true),
			table.WithHeight(m.tableHeight()),
			table.WithKeyMap(tableKeyMap()),
		)
		tbl.SetStyles(styles)
		m.tables[t] = tbl
	}

	if err := m.reloadAll(); err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return m
	}
	if deps.Tab != TabLocal {
		m.SetTab(deps.Tab)
	}
	return m
}

// Run opens the window and blocks until the user quits. The window reloads
// whenever the database file changes on disk.
func Run(ctx context.Context, deps Deps) error {
	m := New(ctx, deps)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if path := deps.DB.Path(); path != storage.MemoryPath {
		stop, err := WatchDB(ctx, path, m.deps.Logger, func() { p.Send(dbChangedMsg{}) })
		if err != nil {
			m.deps.Logger.Warn("live refresh disabled", zap.Error(err))
		} else {
			defer stop()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case dbChangedMsg:
		if err := m.reloadAll(); err != nil {
			m.status = fmt.Sprintf("Error: %v", err)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.form != nil:
			return m.handleFormKeys(msg)
		case m.searching:
			return m.handleSearchKeys(msg)
		default:
			return m.handleMainKeys(msg)
		}
	}
	return m, nil
}

func (m *Model) handleMainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		m.SetTab((m.active + 1) % tabCount)
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.SetTab((m.active + tabCount - 1) % tabCount)
		return m, nil

	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '4':
		m.SetTab(Tab(msg.Runes[0] - '1'))
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.searches[m.active])
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Escape):
		if m.searches[m.active] != "" {
			m.searches[m.active] = ""
			m.reloadActive()
			m.status = "Search cleared"
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if err := m.reloadAll(); err != nil {
			m.status = fmt.Sprintf("Error: %v", err)
		} else {
			m.status = "✓ Refreshed"
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		return m, m.openAddForm()

	case key.Matches(msg, m.keys.Pin):
		m.pinSelected()
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		return m, m.openLaunchCommandForm()

	case key.Matches(msg, m.keys.Activate):
		m.activateSelected()
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected()
		return m, nil

	case key.Matches(msg, m.keys.Yank):
		m.yankSelected()
		return m, nil
	}

	var cmd tea.Cmd
	m.tables[m.active], cmd = m.tables[m.active].Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.searches[m.active] = ""
		m.reloadActive()
		m.status = "Search cancelled"
		return m, nil

	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.status = fmt.Sprintf("Showing %d matching rows", len(m.tables[m.active].Rows()))
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.tables[m.active], cmd = m.tables[m.active].Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != m.searches[m.active] {
		m.searches[m.active] = q
		m.reloadActive()
	}
	return m, cmd
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.form = nil
		m.status = "Cancelled"
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.form.move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.form.move(-1)
	case tea.KeyEnter:
		if err := m.form.validate(); err != nil {
			return m, nil
		}
		if err := m.submitForm(); err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.form = nil
		return m, nil
	}
	return m, m.form.update(msg)
}

// SetTab switches the visible tab.
func (m *Model) SetTab(t Tab) {
	if t < 0 || t >= tabCount {
		return
	}
	m.active = t
	m.status = fmt.Sprintf("%s: %d rows", t, len(m.tables[t].Rows()))
}

// ActiveTab returns the visible tab.
func (m *Model) ActiveTab() Tab {
	return m.active
}

// Status returns the status line message.
func (m *Model) Status() string {
	return m.status
}

func (m *Model) openAddForm() tea.Cmd {
	switch m.active {
	case TabLocal:
		m.form = newInstalledForm()
	case TabNotInstalled:
		m.form = newNotInstalledForm()
	case TabResources:
		m.form = newResourceForm()
	default:
		m.status = "Pin apps from the Local Scan tab"
		return nil
	}
	return textinput.Blink
}

func (m *Model) openLaunchCommandForm() tea.Cmd {
	if m.active != TabPinned {
		return nil
	}
	pin, ok := m.selectedPin()
	if !ok {
		return nil
	}
	m.form = newLaunchCommandForm(pin)
	return textinput.Blink
}

// submitForm writes the form to the database.
func (m *Model) submitForm() error {
	f := m.form
	db := m.deps.DB

	switch f.kind {
	case formInstalled:
		app := &catalog.InstalledApp{
			Name:            f.value("Name"),
			Publisher:       f.value("Publisher"),
			Version:         f.value("Version"),
			InstallLocation: f.value("Location"),
			Tags:            f.value("Tags"),
		}
		if err := db.AddInstalledApp(app); err != nil {
			return err
		}
		m.status = fmt.Sprintf("✓ Added %s", app.Name)
		m.deps.Logger.Debug("added installed app", zap.Int64("id", app.ID))
		return m.reload(TabLocal)

	case formNotInstalled:
		app := &catalog.NotInstalledApp{
			Name:        f.value("Name"),
			DownloadURL: f.value("Download URL"),
			Description: f.value("Description"),
			Tags:        f.value("Tags"),
		}
		if err := db.AddNotInstalledApp(app); err != nil {
			return err
		}
		m.status = fmt.Sprintf("✓ Added %s", app.Name)
		return m.reload(TabNotInstalled)

	case formResource:
		item := &catalog.ResourceItem{
			Name: f.value("Name"),
			Path: f.value("Path"),
			Tags: f.value("Tags"),
		}
		typ := strings.ToLower(f.value("Type"))
		if typ == "" || typ == "auto" {
			item.Type = catalog.DetectResourceType(item.Path)
		} else {
			parsed, err := catalog.ParseResourceType(typ)
			if err != nil {
				return err
			}
			item.Type = parsed
		}
		if err := db.AddResource(item); err != nil {
			return err
		}
		m.status = fmt.Sprintf("✓ Added %s (%s)", item.Name, item.Type)
		return m.reload(TabResources)

	case formLaunchCommand:
		if err := db.SetLaunchCommand(f.pinID, f.value("Command")); err != nil {
			return err
		}
		m.status = "✓ Launch command saved"
		return m.reload(TabPinned)
	}
	return nil
}

func (m *Model) pinSelected() {
	if m.active != TabLocal {
		return
	}
	app, ok := m.selectedInstalled()
	if !ok {
		return
	}
	_, created, err := m.deps.DB.PinApp(app.ID)
	switch {
	case err != nil:
		m.status = fmt.Sprintf("Error: %v", err)
	case !created:
		m.status = fmt.Sprintf("%s is already pinned", app.Name)
	default:
		m.status = fmt.Sprintf("✓ Pinned %s", app.Name)
		m.setError(m.reload(TabPinned))
	}
}

func (m *Model) activateSelected() {
	switch m.active {
	case TabPinned:
		pin, ok := m.selectedPin()
		if !ok {
			return
		}
		command, err := launcher.ResolveCommand(pin)
		if errors.Is(err, launcher.ErrNoCommand) {
			m.status = fmt.Sprintf("Error: cannot infer an executable for %s; press e to set a launch command", pin.App.Name)
			return
		}
		if err == nil {
			err = m.deps.Launch(m.ctx, command)
		}
		if err != nil {
			m.status = fmt.Sprintf("Error: %v", err)
			return
		}
		m.status = fmt.Sprintf("✓ Launched %s", pin.App.Name)
		m.deps.Logger.Info("launched app", zap.String("name", pin.App.Name), zap.String("command", command))

	case TabResources:
		item, ok := m.selectedResource()
		if !ok {
			return
		}
		if err := m.deps.Open(m.ctx, item); err != nil {
			m.status = fmt.Sprintf("Error: %v", err)
			return
		}
		m.status = fmt.Sprintf("✓ Opened %s", item.Name)
	}
}

func (m *Model) deleteSelected() {
	var err error
	switch m.active {
	case TabPinned:
		pin, ok := m.selectedPin()
		if !ok {
			return
		}
		if err = m.deps.DB.UnpinApp(pin.ID); err == nil {
			m.status = fmt.Sprintf("✓ Unpinned %s", pin.App.Name)
		}
	case TabNotInstalled:
		app, ok := m.selectedNotInstalled()
		if !ok {
			return
		}
		if err = m.deps.DB.DeleteNotInstalledApp(app.ID); err == nil {
			m.status = fmt.Sprintf("✓ Deleted %s", app.Name)
		}
	case TabResources:
		item, ok := m.selectedResource()
		if !ok {
			return
		}
		if err = m.deps.DB.DeleteResource(item.ID); err == nil {
			m.status = fmt.Sprintf("✓ Deleted %s", item.Name)
		}
	default:
		return
	}
	if err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return
	}
	m.setError(m.reload(m.active))
}

func (m *Model) yankSelected() {
	var text string
	switch m.active {
	case TabLocal:
		if app, ok := m.selectedInstalled(); ok {
			text = app.CopyText()
		}
	case TabPinned:
		if pin, ok := m.selectedPin(); ok {
			text = pin.CopyText()
		}
	case TabNotInstalled:
		if app, ok := m.selectedNotInstalled(); ok {
			text = app.CopyText()
		}
	case TabResources:
		if item, ok := m.selectedResource(); ok {
			text = item.CopyText()
		}
	}
	if text == "" {
		return
	}
	if err := m.deps.Copy(text); err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return
	}
	m.status = fmt.Sprintf("✓ Copied %s", text)
}

func (m *Model) setError(err error) {
	if err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
	}
}

// Selection helpers. Rows mirror the loaded slices index for index.

func (m *Model) cursor(t Tab, n int) (int, bool) {
	c := m.tables[t].Cursor()
	return c, c >= 0 && c < n
}

func (m *Model) selectedInstalled() (catalog.InstalledApp, bool) {
	c, ok := m.cursor(TabLocal, len(m.installed))
	if !ok {
		return catalog.InstalledApp{}, false
	}
	return m.installed[c], true
}

func (m *Model) selectedPin() (catalog.PinnedApp, bool) {
	c, ok := m.cursor(TabPinned, len(m.pinned))
	if !ok {
		return catalog.PinnedApp{}, false
	}
	return m.pinned[c], true
}

func (m *Model) selectedNotInstalled() (catalog.NotInstalledApp, bool) {
	c, ok := m.cursor(TabNotInstalled, len(m.notInstalled))
	if !ok {
		return catalog.NotInstalledApp{}, false
	}
	return m.notInstalled[c], true
}

func (m *Model) selectedResource() (catalog.ResourceItem, bool) {
	c, ok := m.cursor(TabResources, len(m.resources))
	if !ok {
		return catalog.ResourceItem{}, false
	}
	return m.resources[c], true
}

// Loading

func (m *Model) reloadAll() error {
	for t := Tab(0); t < tabCount; t++ {
		if err := m.reload(t); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) reloadActive() {
	m.setError(m.reload(m.active))
}

// reload re-queries one tab with its search filter and rebuilds its rows.
func (m *Model) reload(t Tab) error {
	filter := storage.ListFilter{Search: m.searches[t]}
	var rows []table.Row

	switch t {
	case TabLocal:
		apps, err := m.deps.DB.ListInstalledApps(filter)
		if err != nil {
			return err
		}
		m.installed = apps
		for _, a := range apps {
			rows = append(rows, table.Row{a.Name, a.Publisher, a.Version, a.Tags, relTime(a)})
		}
	case TabPinned:
		pins, err := m.deps.DB.ListPinnedApps(filter)
		if err != nil {
			return err
		}
		m.pinned = pins
		for _, p := range pins {
			command := p.LaunchCommand
			if command == "" {
				command = "(auto)"
			}
			rows = append(rows, table.Row{p.App.Name, command, p.Tags, humanize.Time(p.PinnedAt)})
		}
	case TabNotInstalled:
		apps, err := m.deps.DB.ListNotInstalledApps(filter)
		if err != nil {
			return err
		}
		m.notInstalled = apps
		for _, a := range apps {
			rows = append(rows, table.Row{a.Name, a.DownloadURL, a.Description, a.Tags})
		}
	case TabResources:
		items, err := m.deps.DB.ListResources(filter)
		if err != nil {
			return err
		}
		m.resources = items
		for _, r := range items {
			rows = append(rows, table.Row{r.Name, string(r.Type), r.Path, r.Tags})
		}
	}

	tbl := &m.tables[t]
	tbl.SetRows(rows)
	switch c := tbl.Cursor(); {
	case len(rows) == 0:
	case c < 0:
		tbl.SetCursor(0)
	case c >= len(rows):
		tbl.SetCursor(len(rows) - 1)
	}
	return nil
}

func relTime(a catalog.InstalledApp) string {
	if a.ScannedAt.IsZero() {
		return ""
	}
	return humanize.Time(a.ScannedAt)
}

// Layout

func (m *Model) columns(t Tab) []table.Column {
	w := max(m.width-8, 40)
	switch t {
	case TabLocal:
		return []table.Column{
			{Title: "Name", Width: w * 35 / 100},
			{Title: "Publisher", Width: w * 25 / 100},
			{Title: "Version", Width: w * 12 / 100},
			{Title: "Tags", Width: w * 14 / 100},
			{Title: "Scanned", Width: w * 14 / 100},
		}
	case TabPinned:
		return []table.Column{
			{Title: "Name", Width: w * 30 / 100},
			{Title: "Launch command", Width: w * 40 / 100},
			{Title: "Tags", Width: w * 15 / 100},
			{Title: "Pinned", Width: w * 15 / 100},
		}
	case TabNotInstalled:
		return []table.Column{
			{Title: "Name", Width: w * 25 / 100},
			{Title: "Download URL", Width: w * 35 / 100},
			{Title: "Description", Width: w * 25 / 100},
			{Title: "Tags", Width: w * 15 / 100},
		}
	default:
		return []table.Column{
			{Title: "Name", Width: w * 25 / 100},
			{Title: "Type", Width: w * 10 / 100},
			{Title: "Path", Width: w * 50 / 100},
			{Title: "Tags", Width: w * 15 / 100},
		}
	}
}

func (m *Model) tableHeight() int {
	reserved := 10
	if m.help.ShowAll {
		reserved += 4
	}
	return max(m.height-reserved, 3)
}

func (m *Model) resize() {
	for t := Tab(0); t < tabCount; t++ {
		m.tables[t].SetColumns(m.columns(t))
		m.tables[t].SetHeight(m.tableHeight())
	}
	m.help.Width = m.width
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.form != nil {
		b.WriteString(m.form.view())
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderSearch())
		b.WriteString("\n")
		b.WriteString(PanelStyle.Render(m.tables[m.active].View()))
		b.WriteString("\n")
	}

	b.WriteString(StatusBarStyle.Render(RenderStatus(m.status)))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return AppStyle.Render(b.String())
}

func (m *Model) renderHeader() string {
	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s (%s)", t+1, t, humanize.Comma(int64(len(m.tables[t].Rows()))))
		if t == m.active {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	title := TitleStyle.Render("SnapKit")
	return HeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", strings.Join(tabs, "")))
}

func (m *Model) renderSearch() string {
	label := SearchLabelStyle.Render("Search: ")
	if m.searching {
		return label + m.search.View()
	}
	if q := m.searches[m.active]; q != "" {
		return label + q + MutedStyle.Render("  (/ to edit, esc to clear)")
	}
	return label + MutedStyle.Render("press / to filter "+strings.ToLower(m.active.String()))
}
