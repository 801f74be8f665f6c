package store

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/niuview/internal/gallery"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	sq, err := Open(ctx, Options{Driver: DriverSQLite, Path: filepath.Join(dir, "db", "niuview.db")})
	require.NoError(t, err)
	fs, err := Open(ctx, Options{Driver: DriverFile, Dir: filepath.Join(dir, "blobs")})
	require.NoError(t, err)
	mem, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)

	out := map[string]Store{"sqlite": sq, "file": fs, "memory": mem}
	t.Cleanup(func() {
		for _, s := range out {
			_ = s.Close()
		}
	})
	return out
}

func TestStoreGetPut(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "images")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Put(ctx, "images", []byte("one")))
			require.NoError(t, s.Put(ctx, "images", []byte("two")))
			v, ok, err := s.Get(ctx, "images")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, []byte("two"), v)
		})
	}
}

func TestStoreEnsure(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Ensure(ctx, s, "images"))
			v, ok, err := s.Get(ctx, "images")
			require.NoError(t, err)
			require.True(t, ok)
			require.Empty(t, v)

			require.NoError(t, s.Put(ctx, "images", []byte("[]")))
			require.NoError(t, Ensure(ctx, s, "images"))
			v, _, err = s.Get(ctx, "images")
			require.NoError(t, err)
			require.Equal(t, []byte("[]"), v, "ensure must not overwrite")
		})
	}
}

func TestStoreRejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../images", `a\b`, ".."} {
				require.ErrorIs(t, s.Put(ctx, key, []byte("x")), ErrInvalidKey)
				_, _, err := s.Get(ctx, key)
				require.ErrorIs(t, err, ErrInvalidKey)
			}
		})
	}
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Close())
			require.NoError(t, s.Close())
			require.ErrorIs(t, s.Put(ctx, "images", nil), ErrClosed)
			_, _, err := s.Get(ctx, "images")
			require.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestGalleryRoundTripThroughBackends(t *testing.T) {
	ctx := context.Background()
	var imgs []gallery.Image
	for i := 0; i < 3; i++ {
		px := image.NewRGBA(image.Rect(0, 0, i+1, 2))
		px.Set(0, 0, color.RGBA{R: uint8(40 * i), A: 255})
		img, err := gallery.NewImage("img", px)
		require.NoError(t, err)
		imgs = append(imgs, img)
	}

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := gallery.Save(ctx, s, imgs)
			require.NoError(t, err)
			has, err := gallery.HasSaved(ctx, s)
			require.NoError(t, err)
			require.True(t, has)

			res, err := gallery.Load(ctx, s)
			require.NoError(t, err)
			require.Len(t, res.Images, 3)
			for i := range imgs {
				require.Equal(t, imgs[i].Payload, res.Images[i].Payload)
				w, _ := res.Images[i].Size()
				require.Equal(t, i+1, w)
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "niuview.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "images", []byte("[]")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	v, ok, err := s.Get(ctx, "images")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("[]"), v)
}

func TestMemoryFailWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("synchronize failed")
	m.FailWrites(boom)
	require.ErrorIs(t, m.Put(ctx, "images", []byte("x")), boom)
	_, ok, err := m.Get(ctx, "images")
	require.NoError(t, err)
	require.False(t, ok)

	m.FailWrites(nil)
	require.NoError(t, m.Put(ctx, "images", []byte("x")))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "redis"})
	require.Error(t, err)
}

func TestOpenRequiresLocation(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: DriverSQLite})
	require.Error(t, err)
	_, err = Open(context.Background(), Options{Driver: DriverFile})
	require.Error(t, err)
}
