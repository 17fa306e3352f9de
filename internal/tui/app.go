// Package tui provides a terminal UI for browsing and editing folio content.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/klubi/folio/pkg/apis/v1alpha1"
	"github.com/klubi/folio/pkg/client"
)

const (
	viewPosts    = "posts"
	viewProjects = "projects"
)

// pollInterval is used while the change feed is unavailable.
const pollInterval = 5 * time.Second

// snapshot is the data behind the table. It is replaced wholesale on reload.
type snapshot struct {
	posts    []v1alpha1.Post
	projects []v1alpha1.Project
	err      error
}

// App shows posts and projects in a table and reloads whenever the server
// reports a change.
type App struct {
	client *client.Client

	ui      *tview.Application
	pages   *tview.Pages
	root    *tview.Flex // header, body, status line
	body    *tview.Flex // table, optional detail panel
	header  *tview.TextView
	status  *tview.TextView
	table   *tview.Table
	search  *tview.InputField
	details *tview.TextView

	mu     sync.Mutex
	view   string
	filter string
	data   snapshot
	live   bool

	// Panel flags are only touched on the UI goroutine.
	detailsShown bool
	searchShown  bool
}

// NewApp creates a TUI backed by c.
func NewApp(c *client.Client) *App {
	a := &App{
		client: c,
		ui:     tview.NewApplication(),
		view:   viewPosts,
	}

	a.header = newBar()
	a.status = newBar()
	a.table = newContentTable()
	a.search = newSearchInput(a.applySearch)
	a.details = newDetailPanel()

	a.body = tview.NewFlex().AddItem(a.table, 0, 1, true)
	a.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 1, 0, false).
		AddItem(a.body, 0, 1, true).
		AddItem(a.status, 1, 0, false)
	a.pages = tview.NewPages().AddPage("main", a.root, true, true)

	a.ui.SetInputCapture(a.handleKey)
	a.ui.SetRoot(a.pages, true).SetFocus(a.table)

	a.redrawChrome()
	return a
}

func newBar() *tview.TextView {
	bar := tview.NewTextView().SetDynamicColors(true)
	bar.SetBackgroundColor(tcell.ColorDarkBlue)
	return bar
}

func newContentTable() *tview.Table {
	t := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0).
		SetSeparator(tview.Borders.Vertical)
	t.SetBorderPadding(0, 0, 1, 1)
	return t
}

func newSearchInput(done func(tcell.Key)) *tview.InputField {
	in := tview.NewInputField().
		SetLabel(" Filter: ").
		SetLabelColor(tcell.ColorYellow).
		SetFieldWidth(40).
		SetFieldBackgroundColor(tcell.ColorBlack)
	in.SetDoneFunc(done)
	return in
}

func newDetailPanel() *tview.TextView {
	p := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	p.SetBorder(true).SetTitle(" Describe ").SetBorderColor(tcell.ColorDodgerBlue)
	return p
}

// Run loads both collections, follows the change feed and blocks until the
// user quits.
func (a *App) Run() error {
	a.reload()
	a.renderTable()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.follow(ctx)

	return a.ui.Run()
}

// follow reloads on every change feed event. While the feed is down it polls
// and keeps trying to reconnect.
func (a *App) follow(ctx context.Context) {
	for {
		if events, err := a.client.Watch(ctx); err == nil {
			a.setLive(true)
			for range events {
				a.reloadAsync()
			}
		}
		a.setLive(false)

		select {
		case <-ctx.Done():
			return
		case <-time.After(pollInterval):
			a.reloadAsync()
		}
	}
}

func (a *App) setLive(live bool) {
	a.mu.Lock()
	a.live = live
	a.mu.Unlock()
	a.ui.QueueUpdateDraw(a.redrawChrome)
}

// ---------------------------------------------------------------------------
// Input
// ---------------------------------------------------------------------------

// actions maps single-key commands to handlers.
func (a *App) actions() map[rune]func() {
	return map[rune]func(){
		'1': func() { a.setView(viewPosts) },
		'2': func() { a.setView(viewProjects) },
		'/': a.openSearch,
		'q': a.ui.Stop,
		'r': func() { go a.serverRefresh() },
		'd': a.confirmDelete,
		'f': a.toggleFeatured,
		'm': a.confirmMigrate,
		'j': func() { a.moveCursor(1) },
		'k': func() { a.moveCursor(-1) },
	}
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	// Modals and the search field own their keys.
	if a.searchShown || a.pages.HasPage("confirm") {
		return ev
	}

	switch ev.Key() {
	case tcell.KeyRune:
		if fn, ok := a.actions()[ev.Rune()]; ok {
			fn()
			return nil
		}
	case tcell.KeyEnter:
		a.openDetails()
		return nil
	case tcell.KeyEscape:
		if a.detailsShown {
			a.closeDetails()
		} else if a.currentFilter() != "" {
			a.setFilter("")
		}
		return nil
	}
	return ev
}

func (a *App) moveCursor(delta int) {
	row, _ := a.table.GetSelection()
	row += delta
	if row >= 1 && row < a.table.GetRowCount() {
		a.table.Select(row, 0)
	}
}

func (a *App) setView(view string) {
	a.mu.Lock()
	a.view = view
	a.mu.Unlock()

	a.closeDetails()
	a.redrawChrome()
	a.renderTable()
}

func (a *App) currentView() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

func (a *App) currentFilter() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filter
}

func (a *App) setFilter(f string) {
	a.mu.Lock()
	a.filter = f
	a.mu.Unlock()
	a.redrawChrome()
	a.renderTable()
}

// ---------------------------------------------------------------------------
// Data
// ---------------------------------------------------------------------------

func (a *App) reload() {
	var next snapshot
	next.posts, next.err = a.client.ListPosts(client.ListFilter{})
	if next.err == nil {
		next.projects, next.err = a.client.ListProjects(client.ListFilter{})
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if next.err != nil {
		// Keep the last good rows; only surface the error.
		a.data.err = next.err
		return
	}
	a.data = next
}

func (a *App) reloadAsync() {
	a.reload()
	a.ui.QueueUpdateDraw(a.renderTable)
}

// serverRefresh asks the server to re-read storage, then reloads.
func (a *App) serverRefresh() {
	if _, err := a.client.Refresh(); err != nil {
		a.ui.QueueUpdateDraw(func() { a.flash("Refresh failed", err) })
		return
	}
	a.reloadAsync()
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func (a *App) renderTable() {
	a.mu.Lock()
	view, filter, data := a.view, a.filter, a.data
	a.mu.Unlock()

	keep := a.selectedKey()
	a.table.Clear()

	if data.err != nil {
		a.table.SetCell(0, 0, headerCell("ERROR"))
		a.table.SetCell(1, 0, tview.NewTableCell("Error: "+data.err.Error()).SetTextColor(tcell.ColorRed))
		return
	}

	headers, rows := projectHeaders, projectRows(data.projects, filter)
	if view == viewPosts {
		headers, rows = postHeaders, postRows(data.posts, filter)
	}

	for c, h := range headers {
		a.table.SetCell(0, c, headerCell(h))
	}
	last := len(headers) - 1
	selectRow := 1
	for r, row := range rows {
		if row[0] == keep {
			selectRow = r + 1
		}
		for c, text := range row {
			cell := tview.NewTableCell(text).SetExpansion(1)
			if c == last {
				cell.SetTextColor(featuredColor(text))
			}
			a.table.SetCell(r+1, c, cell)
		}
	}
	if len(rows) > 0 {
		a.table.Select(selectRow, 0)
	}
}

func headerCell(text string) *tview.TableCell {
	return tview.NewTableCell(text).
		SetTextColor(tcell.ColorWhite).
		SetBackgroundColor(tcell.ColorDarkCyan).
		SetAttributes(tcell.AttrBold).
		SetSelectable(false).
		SetExpansion(1)
}

// selectedKey returns the slug or id in the selected row, or "".
func (a *App) selectedKey() string {
	row, _ := a.table.GetSelection()
	if row < 1 || row >= a.table.GetRowCount() {
		return ""
	}
	return a.table.GetCell(row, 0).Text
}

// ---------------------------------------------------------------------------
// Panels
// ---------------------------------------------------------------------------

func (a *App) openDetails() {
	key := a.selectedKey()
	if key == "" {
		return
	}

	a.details.SetText(a.describe(a.currentView(), key)).ScrollToBeginning()
	if !a.detailsShown {
		a.body.AddItem(a.details, 0, 1, false)
		a.detailsShown = true
	}
}

func (a *App) describe(view, key string) string {
	if view == viewPosts {
		post, err := a.client.GetPost(key)
		if err != nil {
			return fmt.Sprintf("[red]Error: %v[-]", err)
		}
		return formatPostDescribe(post)
	}
	proj, err := a.client.GetProject(key)
	if err != nil {
		return fmt.Sprintf("[red]Error: %v[-]", err)
	}
	return formatProjectDescribe(proj)
}

func (a *App) closeDetails() {
	if !a.detailsShown {
		return
	}
	a.body.RemoveItem(a.details)
	a.detailsShown = false
	a.ui.SetFocus(a.table)
}

func (a *App) openSearch() {
	if a.searchShown {
		return
	}
	a.searchShown = true
	a.search.SetText(a.currentFilter())
	a.root.RemoveItem(a.status)
	a.root.AddItem(a.search, 1, 0, true)
	a.ui.SetFocus(a.search)
}

// applySearch handles Enter (apply) and Escape (clear) in the search field.
func (a *App) applySearch(key tcell.Key) {
	var next string
	switch key {
	case tcell.KeyEnter:
		next = a.search.GetText()
	case tcell.KeyEscape:
		a.search.SetText("")
	default:
		return
	}

	a.searchShown = false
	a.root.RemoveItem(a.search)
	a.root.AddItem(a.status, 1, 0, false)
	a.ui.SetFocus(a.table)
	a.setFilter(next)
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// ask shows a Yes/Cancel modal and runs onYes off the UI goroutine.
func (a *App) ask(question string, onYes func()) {
	modal := tview.NewModal().
		SetText(question).
		AddButtons([]string{"Yes", "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			a.pages.RemovePage("confirm")
			a.ui.SetFocus(a.table)
			if label == "Yes" {
				go onYes()
			}
		})
	modal.SetBackgroundColor(tcell.ColorDarkRed)
	a.pages.AddPage("confirm", modal, true, true)
}

func (a *App) confirmDelete() {
	key := a.selectedKey()
	if key == "" {
		return
	}
	view := a.currentView()

	a.ask(fmt.Sprintf("Delete %s %q?", strings.TrimSuffix(view, "s"), key), func() {
		if view == viewPosts {
			a.settle("Delete failed", a.client.DeletePost(key))
			return
		}
		a.settle("Delete failed", a.client.DeleteProject(key))
	})
}

func (a *App) confirmMigrate() {
	if a.currentView() != viewProjects {
		return
	}
	a.ask("Replace all projects with the converted legacy portfolio?", func() {
		_, err := a.client.MigrateProjects()
		a.settle("Migrate failed", err)
	})
}

// toggleFeatured flips the featured flag of the selected record.
func (a *App) toggleFeatured() {
	key := a.selectedKey()
	if key == "" {
		return
	}

	a.mu.Lock()
	view := a.view
	featured, ok := featuredState(view, key, a.data.posts, a.data.projects)
	a.mu.Unlock()
	if !ok {
		return
	}

	fields := map[string]interface{}{"featured": !featured}
	go func() {
		var err error
		if view == viewPosts {
			_, err = a.client.UpdatePost(key, fields)
		} else {
			_, err = a.client.UpdateProject(key, fields)
		}
		a.settle("Update failed", err)
	}()
}

// settle reports err or reloads. The change feed reloads too; doing it here
// keeps the table current while the feed is down.
func (a *App) settle(what string, err error) {
	if err != nil {
		a.ui.QueueUpdateDraw(func() { a.flash(what, err) })
		return
	}
	a.reloadAsync()
}

// flash shows err on the status line for a few seconds.
func (a *App) flash(what string, err error) {
	a.status.SetText(fmt.Sprintf(" [red]%s: %v[-]", what, err))
	time.AfterFunc(3*time.Second, func() {
		a.ui.QueueUpdateDraw(a.redrawChrome)
	})
}

// ---------------------------------------------------------------------------
// Header & status line
// ---------------------------------------------------------------------------

func (a *App) redrawChrome() {
	a.mu.Lock()
	view, filter, live := a.view, a.filter, a.live
	a.mu.Unlock()

	a.header.SetText(headerText(a.client.BaseURL(), view, filter, live))
	a.status.SetText(keyHints(view))
}

func headerText(server, view, filter string, live bool) string {
	tabs := []string{tabLabel("1", "Posts", view == viewPosts), tabLabel("2", "Projects", view == viewProjects)}

	feed := "[gray]polling[-]"
	if live {
		feed = "[green]live[-]"
	}

	text := fmt.Sprintf(" [::b]Folio[::-] | %s | %s | %s", server, feed, strings.Join(tabs, "  "))
	if filter != "" {
		text += fmt.Sprintf(" | [yellow]filter: %s[-]", tview.Escape(filter))
	}
	return text
}

func tabLabel(key, name string, active bool) string {
	if active {
		return fmt.Sprintf("[::b]<%s>[%s][::-]", key, name)
	}
	return fmt.Sprintf("<%s>%s", key, name)
}

func keyHints(view string) string {
	hints := [][2]string{
		{"enter", "Describe"}, {"f", "Feature"}, {"d", "Delete"},
		{"/", "Filter"}, {"r", "Refresh"}, {"q", "Quit"},
	}
	if view == viewProjects {
		hints = append(hints, [2]string{"m", "Migrate"})
	}
	var b strings.Builder
	for _, h := range hints {
		fmt.Fprintf(&b, " [yellow]<%s>[white]%s ", h[0], h[1])
	}
	return b.String()
}
