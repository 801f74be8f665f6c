package gallery

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, name string, shade uint8) Image {
	t.Helper()
	px := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			px.Set(x, y, color.RGBA{R: shade, G: shade, B: shade, A: 255})
		}
	}
	img, err := NewImage(name, px)
	require.NoError(t, err)
	return img
}

func names(g *Gallery) []string {
	out := make([]string, 0, g.Len())
	for _, img := range g.Images() {
		out = append(out, img.Name)
	}
	return out
}

func TestAppendKeepsExistingFirst(t *testing.T) {
	g := New(testImage(t, "a", 1))
	g.Append(testImage(t, "b", 2), testImage(t, "c", 3))
	require.Equal(t, []string{"a", "b", "c"}, names(g))

	g.Append()
	require.Equal(t, 3, g.Len())
}

func TestRemoveAtKeepsRelativeOrder(t *testing.T) {
	for i := 0; i < 4; i++ {
		g := New(testImage(t, "a", 1), testImage(t, "b", 2), testImage(t, "c", 3), testImage(t, "d", 4))
		want := []string{"a", "b", "c", "d"}
		removed, err := g.RemoveAt(i)
		require.NoError(t, err)
		require.Equal(t, want[i], removed.Name)
		want = append(want[:i], want[i+1:]...)
		require.Equal(t, want, names(g))
	}
}

func TestRemoveAtOutOfRange(t *testing.T) {
	g := New(testImage(t, "a", 1))
	_, err := g.RemoveAt(1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = g.RemoveAt(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = New().RemoveAt(0)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	require.Equal(t, 1, g.Len())
}

func TestRemoveDoesNotAliasSnapshots(t *testing.T) {
	g := New(testImage(t, "a", 1), testImage(t, "b", 2), testImage(t, "c", 3))
	snap := g.Images()
	_, err := g.RemoveAt(0)
	require.NoError(t, err)
	require.Equal(t, "a", snap[0].Name)
	require.Equal(t, "b", snap[1].Name)
}

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{name: "forward", from: 0, to: 2, want: []string{"b", "c", "a", "d"}},
		{name: "backward", from: 3, to: 1, want: []string{"a", "d", "b", "c"}},
		{name: "noop", from: 2, to: 2, want: []string{"a", "b", "c", "d"}},
		{name: "adjacent", from: 1, to: 2, want: []string{"a", "c", "b", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(testImage(t, "a", 1), testImage(t, "b", 2), testImage(t, "c", 3), testImage(t, "d", 4))
			require.NoError(t, g.Move(tt.from, tt.to))
			require.Equal(t, tt.want, names(g))
		})
	}

	g := New(testImage(t, "a", 1))
	require.ErrorIs(t, g.Move(0, 1), ErrIndexOutOfRange)
}

func TestClearAlwaysEmpties(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		g := New()
		for i := 0; i < n; i++ {
			g.Append(testImage(t, "x", uint8(i)))
		}
		g.Clear()
		require.Zero(t, g.Len())
		_, ok := g.At(0)
		require.False(t, ok)
	}
}

func TestReplaceCopiesInput(t *testing.T) {
	in := []Image{testImage(t, "a", 1), testImage(t, "b", 2)}
	g := New(testImage(t, "old", 9))
	g.Replace(in)
	in[0].Name = "mutated"
	require.Equal(t, []string{"a", "b"}, names(g))
}

func TestImageSize(t *testing.T) {
	img := testImage(t, "a", 1)
	w, h := img.Size()
	require.Equal(t, 2, w)
	require.Equal(t, 2, h)

	w, h = Image{}.Size()
	require.Zero(t, w)
	require.Zero(t, h)
}
