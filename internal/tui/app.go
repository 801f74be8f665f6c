// Package tui is the terminal display surface: a full-screen paged viewer,
// a thumbnail strip and the picker and alert modals.
//
// The App update loop is the only writer of the gallery. Imports, loads and
// saves run as tea.Cmds and report back with messages; nothing outside
// Update touches gallery state.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/niuview/internal/gallery"
	"github.com/jask/niuview/internal/picker"
)

// Deps are the collaborators the app drives.
type Deps struct {
	Store    gallery.BlobStore
	Library  picker.Library
	Importer *picker.Importer
	Logger   *slog.Logger
}

// Options holds startup behaviour.
type Options struct {
	LoadOnStart bool
}

type mode string

const (
	modeView    mode = "view"
	modeChooser mode = "chooser"
	modeAlert   mode = "alert"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// App ties together the viewer, strip and modals.
type App struct {
	ctx  context.Context
	deps Deps
	opts Options
	log  *slog.Logger
	keys keyMap

	gallery   *gallery.Gallery
	current   int
	showStrip bool
	mode      mode
	chooser   *picker.Chooser
	alert     string
	alertErr  bool
	status    string
	hasSaved  bool
	pending   int

	width  int
	height int
	frame  frameCache
}

type frameCache struct {
	id     string
	cols   int
	rows   int
	render string
}

// messages
type (
	libraryMsg struct {
		handles []picker.Handle
		err     error
	}
	importDoneMsg struct {
		result picker.Result
	}
	saveDoneMsg struct {
		report gallery.SaveReport
		err    error
	}
	loadDoneMsg struct {
		result  gallery.LoadResult
		err     error
		startup bool
	}
	savedStateMsg struct {
		has bool
		err error
	}
)

func New(ctx context.Context, deps Deps, opts Options) *App {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.Importer == nil {
		deps.Importer = &picker.Importer{Resolver: deps.Library, Logger: log}
	}
	return &App{
		ctx:       ctx,
		deps:      deps,
		opts:      opts,
		log:       log,
		keys:      defaultKeyMap(),
		gallery:   gallery.New(),
		showStrip: true,
		mode:      modeView,
	}
}

// Gallery exposes the current images, in order.
func (a *App) Gallery() []gallery.Image { return a.gallery.Images() }

// Current returns the index shown in the viewer.
func (a *App) Current() int { return a.current }

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.checkSaved()}
	if a.opts.LoadOnStart {
		cmds = append(cmds, a.load(true))
	}
	return tea.Batch(cmds...)
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (a *App) checkSaved() tea.Cmd {
	return func() tea.Msg {
		if a.deps.Store == nil {
			return savedStateMsg{}
		}
		has, err := gallery.HasSaved(a.ctx, a.deps.Store)
		return savedStateMsg{has: has, err: err}
	}
}

func (a *App) listLibrary() tea.Cmd {
	return func() tea.Msg {
		if a.deps.Library == nil {
			return libraryMsg{err: errors.New("no library configured")}
		}
		handles, err := a.deps.Library.List(a.ctx)
		return libraryMsg{handles: handles, err: err}
	}
}

func (a *App) importSelection(handles []picker.Handle) tea.Cmd {
	importer := a.deps.Importer
	return func() tea.Msg {
		return importDoneMsg{result: importer.Import(a.ctx, handles)}
	}
}

func (a *App) save() tea.Cmd {
	images := a.gallery.Images()
	return func() tea.Msg {
		if a.deps.Store == nil {
			return saveDoneMsg{err: errors.New("no store configured")}
		}
		report, err := gallery.Save(a.ctx, a.deps.Store, images)
		return saveDoneMsg{report: report, err: err}
	}
}

func (a *App) load(startup bool) tea.Cmd {
	return func() tea.Msg {
		if a.deps.Store == nil {
			return loadDoneMsg{startup: startup}
		}
		res, err := gallery.Load(a.ctx, a.deps.Store)
		return loadDoneMsg{result: res, err: err, startup: startup}
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case tea.KeyMsg:
		switch a.mode {
		case modeAlert:
			a.mode = modeView
			a.alert = ""
			a.alertErr = false
			return a, nil
		case modeChooser:
			return a.handleChooserKey(m)
		default:
			return a.handleViewKey(m)
		}
	case libraryMsg:
		if m.err != nil {
			a.log.Error("list library", "err", m.err)
			a.status = "library: " + m.err.Error()
			return a, nil
		}
		a.chooser = picker.NewChooser(m.handles)
		a.mode = modeChooser
		return a, nil
	case importDoneMsg:
		a.applyImport(m.result)
		return a, nil
	case saveDoneMsg:
		a.applySave(m)
		return a, nil
	case loadDoneMsg:
		a.applyLoad(m)
		return a, nil
	case savedStateMsg:
		if m.err != nil {
			a.log.Warn("check saved gallery", "err", m.err)
		}
		a.hasSaved = m.has
		return a, nil
	}
	return a, nil
}

func (a *App) handleViewKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := a.gallery.Len()
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Prev):
		if a.current > 0 {
			a.current--
		}
	case key.Matches(m, a.keys.Next):
		if a.current < n-1 {
			a.current++
		}
	case key.Matches(m, a.keys.First):
		a.current = 0
	case key.Matches(m, a.keys.Last):
		if n > 0 {
			a.current = n - 1
		}
	case key.Matches(m, a.keys.Strip):
		a.showStrip = !a.showStrip
	case key.Matches(m, a.keys.Add):
		return a, a.listLibrary()
	case key.Matches(m, a.keys.Remove):
		if removed, err := a.gallery.RemoveAt(a.current); err == nil {
			a.status = "removed " + removed.Name
			a.clampCurrent()
		}
	case key.Matches(m, a.keys.MoveLeft):
		if a.current > 0 && a.gallery.Move(a.current, a.current-1) == nil {
			a.current--
		}
	case key.Matches(m, a.keys.MoveRight):
		if a.current < n-1 && a.gallery.Move(a.current, a.current+1) == nil {
			a.current++
		}
	case key.Matches(m, a.keys.Clear):
		if n > 0 {
			a.gallery.Clear()
			a.current = 0
			a.status = fmt.Sprintf("cleared %d images", n)
		}
	case key.Matches(m, a.keys.Save):
		return a, a.save()
	case key.Matches(m, a.keys.Load):
		if !a.hasSaved {
			a.status = "nothing saved yet"
			return a, nil
		}
		return a, a.load(false)
	default:
		// 1-9 jump straight to a thumbnail
		if s := m.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i, _ := strconv.Atoi(s); i <= n {
				a.current = i - 1
			}
		}
	}
	return a, nil
}

func (a *App) handleChooserKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	res := a.chooser.HandleKey(m.String())
	switch res.Action {
	case picker.ChooserCancelled:
		a.mode = modeView
		a.chooser = nil
	case picker.ChooserSubmitted:
		a.mode = modeView
		a.chooser = nil
		if len(res.Selected) == 0 {
			return a, nil
		}
		a.pending++
		a.log.Info("import started", "count", len(res.Selected))
		return a, a.importSelection(res.Selected)
	}
	return a, nil
}

func (a *App) applyImport(res picker.Result) {
	if a.pending > 0 {
		a.pending--
	}
	a.gallery.Append(res.Images...)
	for _, f := range res.Failures {
		a.log.Warn("import item failed", "index", f.Index, "name", f.Handle.Name, "err", f.Err)
	}
	a.log.Info("import finished", "requested", res.Requested, "imported", len(res.Images), "failed", len(res.Failures))
	if len(res.Failures) > 0 {
		a.status = fmt.Sprintf("imported %d, %d failed", len(res.Images), len(res.Failures))
	} else {
		a.status = fmt.Sprintf("imported %d", len(res.Images))
	}
}

func (a *App) applySave(m saveDoneMsg) {
	if m.err != nil {
		a.log.Error("save gallery", "err", m.err)
		a.showAlert("Save failed: "+m.err.Error(), true)
		return
	}
	a.log.Info("save gallery", "count", m.report.Count, "bytes", m.report.Bytes)
	a.hasSaved = m.report.Bytes > 2
	a.showAlert(fmt.Sprintf("Saved %d images (%d bytes)", m.report.Count, m.report.Bytes), false)
}

func (a *App) applyLoad(m loadDoneMsg) {
	if m.err != nil {
		// an unreadable blob means there is nothing to load
		a.log.Warn("load gallery", "err", m.err, "startup", m.startup)
		if !m.startup {
			a.status = "nothing to load"
		}
		return
	}
	for _, s := range m.result.Skipped {
		a.log.Warn("skip saved payload", "index", s.Index, "err", s.Err)
	}
	if !m.result.Found {
		if !m.startup {
			a.status = "nothing saved yet"
		}
		return
	}
	a.gallery.Replace(m.result.Images)
	a.current = 0
	a.log.Info("load gallery", "count", len(m.result.Images), "skipped", len(m.result.Skipped), "bytes", m.result.Bytes)
	if m.startup {
		if n := len(m.result.Images); n > 0 {
			a.status = fmt.Sprintf("restored %d images", n)
		}
		return
	}
	text := fmt.Sprintf("Loaded %d images (%d bytes)", len(m.result.Images), m.result.Bytes)
	if k := len(m.result.Skipped); k > 0 {
		text += fmt.Sprintf(", %d unreadable", k)
	}
	a.showAlert(text, false)
}

func (a *App) showAlert(text string, failed bool) {
	a.alert = text
	a.alertErr = failed
	a.mode = modeAlert
}

func (a *App) clampCurrent() {
	if n := a.gallery.Len(); a.current >= n {
		a.current = n - 1
	}
	if a.current < 0 {
		a.current = 0
	}
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (a *App) size() (int, int) {
	w, h := a.width, a.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (a *App) View() string {
	width, height := a.size()
	images := a.gallery.Images()

	status := renderStatus(a.status, a.pending, len(images), a.current, width)
	strip := ""
	if a.showStrip || len(images) == 0 {
		help := renderHelp(a.keys.stripHelp(len(images) == 0, a.hasSaved))
		strip = renderStrip(images, a.current, width, help)
	}
	viewerHeight := height - lipgloss.Height(status)
	if strip != "" {
		viewerHeight -= lipgloss.Height(strip)
	}
	if viewerHeight < 1 {
		viewerHeight = 1
	}

	var viewer string
	if img, ok := a.gallery.At(a.current); ok && img.Pixels != nil {
		viewer = a.renderViewer(img, width, viewerHeight)
	} else {
		viewer = renderEmpty(width, viewerHeight)
	}

	parts := []string{viewer}
	if strip != "" {
		parts = append(parts, strip)
	}
	parts = append(parts, status)
	screen := lipgloss.JoinVertical(lipgloss.Left, parts...)

	switch a.mode {
	case modeChooser:
		screen = overlayCenter(screen, renderChooser(a.chooser, width), width, height)
	case modeAlert:
		screen = overlayCenter(screen, renderAlert(a.alert, a.alertErr), width, height)
	}
	return screen
}

func (a *App) renderViewer(img gallery.Image, cols, rows int) string {
	if a.frame.id == img.ID && a.frame.cols == cols && a.frame.rows == rows {
		return a.frame.render
	}
	out := renderPixels(img.Pixels, cols, rows)
	a.frame = frameCache{id: img.ID, cols: cols, rows: rows, render: out}
	return out
}
