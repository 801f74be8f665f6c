package tui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/niuview/internal/gallery"
	"github.com/jask/niuview/internal/picker"
	"github.com/jask/niuview/internal/store"
)

type fakeLibrary struct {
	names []string
	fail  map[string]bool
}

func (l *fakeLibrary) List(context.Context) ([]picker.Handle, error) {
	out := make([]picker.Handle, len(l.names))
	for i, n := range l.names {
		out[i] = picker.Handle{ID: n, Name: n}
	}
	return out, nil
}

func (l *fakeLibrary) Resolve(_ context.Context, h picker.Handle) (gallery.Image, error) {
	if l.fail[h.ID] {
		return gallery.Image{}, fmt.Errorf("decode %s: broken", h.Name)
	}
	return gallery.NewImage(h.Name, solid(4, 4, color.RGBA{R: 200, A: 255}))
}

func solid(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newTestApp(t *testing.T, lib *fakeLibrary, opts Options) (*App, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	app := New(context.Background(), Deps{Store: mem, Library: lib}, opts)
	return app, mem
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs any resulting command, feeding its message back.
func press(t *testing.T, app *App, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := app.Update(msg)
	drain(t, app, cmd)
}

func drain(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				drain(t, app, c)
			}
			return
		}
		_, cmd = app.Update(msg)
	}
}

func names(images []gallery.Image) []string {
	out := make([]string, len(images))
	for i, img := range images {
		out[i] = img.Name
	}
	return out
}

func importSelection(t *testing.T, app *App, keys ...tea.KeyMsg) {
	t.Helper()
	press(t, app, runes("a"))
	require.Equal(t, modeChooser, app.mode)
	for _, k := range keys {
		press(t, app, k)
	}
	press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestImportAppendsInSelectionOrder(t *testing.T) {
	app, _ := newTestApp(t, &fakeLibrary{names: []string{"a.png", "b.png", "c.png"}}, Options{})

	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}
	space := tea.KeyMsg{Type: tea.KeySpace}
	importSelection(t, app, down, down, space, up, up, space)

	require.Equal(t, modeView, app.mode)
	require.Equal(t, []string{"c.png", "a.png"}, names(app.Gallery()))
	require.Equal(t, "imported 2", app.status)
	require.Zero(t, app.pending)

	// a second import appends after the first batch
	importSelection(t, app, down, space)
	require.Equal(t, []string{"c.png", "a.png", "b.png"}, names(app.Gallery()))
}

func TestImportReportsFailures(t *testing.T) {
	lib := &fakeLibrary{names: []string{"a.png", "b.png", "c.png"}, fail: map[string]bool{"b.png": true}}
	app, _ := newTestApp(t, lib, Options{})

	space := tea.KeyMsg{Type: tea.KeySpace}
	down := tea.KeyMsg{Type: tea.KeyDown}
	importSelection(t, app, space, down, space, down, space)

	require.Equal(t, []string{"a.png", "c.png"}, names(app.Gallery()))
	require.Equal(t, "imported 2, 1 failed", app.status)
}

func TestChooserCancelLeavesGallery(t *testing.T) {
	app, _ := newTestApp(t, &fakeLibrary{names: []string{"a.png"}}, Options{})
	press(t, app, runes("a"))
	press(t, app, tea.KeyMsg{Type: tea.KeySpace})
	press(t, app, tea.KeyMsg{Type: tea.KeyEsc})

	require.Equal(t, modeView, app.mode)
	require.Nil(t, app.chooser)
	require.Empty(t, app.Gallery())
}

func TestNavigationAndEditing(t *testing.T) {
	app, _ := newTestApp(t, &fakeLibrary{names: []string{"a.png", "b.png", "c.png"}}, Options{})
	space := tea.KeyMsg{Type: tea.KeySpace}
	down := tea.KeyMsg{Type: tea.KeyDown}
	importSelection(t, app, space, down, space, down, space)
	require.Equal(t, 0, app.Current())

	press(t, app, tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, 0, app.Current())
	press(t, app, tea.KeyMsg{Type: tea.KeyRight})
	press(t, app, runes("l"))
	press(t, app, runes("l"))
	require.Equal(t, 2, app.Current())
	press(t, app, runes("2"))
	require.Equal(t, 1, app.Current())
	press(t, app, runes("9"))
	require.Equal(t, 1, app.Current())

	press(t, app, runes("]"))
	require.Equal(t, []string{"a.png", "c.png", "b.png"}, names(app.Gallery()))
	require.Equal(t, 2, app.Current())

	press(t, app, runes("x"))
	require.Equal(t, []string{"a.png", "c.png"}, names(app.Gallery()))
	require.Equal(t, 1, app.Current())
	require.Equal(t, "removed b.png", app.status)

	press(t, app, runes("["))
	require.Equal(t, []string{"c.png", "a.png"}, names(app.Gallery()))
	require.Equal(t, 0, app.Current())

	press(t, app, runes("C"))
	require.Empty(t, app.Gallery())
	require.Equal(t, 0, app.Current())

	// removing from an empty gallery is a no-op
	press(t, app, runes("x"))
	require.Empty(t, app.Gallery())
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	app, mem := newTestApp(t, &fakeLibrary{names: []string{"a.png", "b.png"}}, Options{})
	space := tea.KeyMsg{Type: tea.KeySpace}
	down := tea.KeyMsg{Type: tea.KeyDown}
	importSelection(t, app, space, down, space)

	press(t, app, runes("s"))
	require.Equal(t, modeAlert, app.mode)
	require.False(t, app.alertErr)
	require.True(t, strings.HasPrefix(app.alert, "Saved 2 images ("), app.alert)
	require.True(t, app.hasSaved)

	blob, ok, err := mem.Get(context.Background(), gallery.BlobKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, app.alert, fmt.Sprintf("%d bytes", len(blob)))

	// any key dismisses the alert
	press(t, app, runes("z"))
	require.Equal(t, modeView, app.mode)

	press(t, app, runes("C"))
	require.Empty(t, app.Gallery())

	press(t, app, runes("L"))
	require.Equal(t, modeAlert, app.mode)
	require.True(t, strings.HasPrefix(app.alert, "Loaded 2 images"), app.alert)
	require.Equal(t, []string{"saved #1", "saved #2"}, names(app.Gallery()))
	require.Equal(t, 0, app.Current())
}

func TestSaveFailureShowsAlert(t *testing.T) {
	app, mem := newTestApp(t, &fakeLibrary{names: []string{"a.png"}}, Options{})
	importSelection(t, app)
	mem.FailWrites(errors.New("disk full"))

	press(t, app, runes("s"))
	require.Equal(t, modeAlert, app.mode)
	require.True(t, app.alertErr)
	require.Equal(t, "Save failed: write images: disk full", app.alert)
	require.False(t, app.hasSaved)
	require.Len(t, app.Gallery(), 1)
}

func TestLoadWithoutSavedData(t *testing.T) {
	app, _ := newTestApp(t, &fakeLibrary{}, Options{})
	drain(t, app, app.Init())
	require.False(t, app.hasSaved)

	press(t, app, runes("L"))
	require.Equal(t, modeView, app.mode)
	require.Equal(t, "nothing saved yet", app.status)
}

func TestCorruptBlobLeavesGalleryUntouched(t *testing.T) {
	app, mem := newTestApp(t, &fakeLibrary{names: []string{"a.png"}}, Options{})
	importSelection(t, app)
	require.NoError(t, mem.Put(context.Background(), gallery.BlobKey, []byte("{not a list}")))
	drain(t, app, app.checkSaved())
	require.True(t, app.hasSaved)

	press(t, app, runes("L"))
	require.Equal(t, modeView, app.mode)
	require.Equal(t, "nothing to load", app.status)
	require.Equal(t, []string{"a.png"}, names(app.Gallery()))
}

func TestLoadOnStartRestoresGallery(t *testing.T) {
	mem := store.NewMemory()
	first, err := gallery.NewImage("one", solid(2, 2, color.RGBA{G: 255, A: 255}))
	require.NoError(t, err)
	_, err = gallery.Save(context.Background(), mem, []gallery.Image{first, first})
	require.NoError(t, err)

	app := New(context.Background(), Deps{Store: mem, Library: &fakeLibrary{}}, Options{LoadOnStart: true})
	drain(t, app, app.Init())

	require.Equal(t, modeView, app.mode, "startup load does not raise an alert")
	require.Len(t, app.Gallery(), 2)
	require.True(t, app.hasSaved)
	require.Equal(t, "restored 2 images", app.status)
}

func TestStripToggleAndView(t *testing.T) {
	app, _ := newTestApp(t, &fakeLibrary{names: []string{"a.png"}}, Options{})
	_, _ = app.Update(tea.WindowSizeMsg{Width: 60, Height: 20})

	out := app.View()
	require.Contains(t, out, "No images yet")
	require.Contains(t, out, "0/0")

	importSelection(t, app)
	out = app.View()
	require.Contains(t, out, "a.png")
	require.Contains(t, out, "1/1")

	press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	require.False(t, app.showStrip)
	require.NotContains(t, app.View(), "a.png")

	press(t, app, runes("a"))
	require.Contains(t, app.View(), "Add images")
}

func TestQuit(t *testing.T) {
	app, _ := newTestApp(t, &fakeLibrary{}, Options{})
	_, cmd := app.Update(runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
