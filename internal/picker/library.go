package picker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jask/niuview/internal/gallery"
)

// Library lists selectable images and resolves them.
type Library interface {
	Resolver
	List(ctx context.Context) ([]Handle, error)
}

// DefaultExtensions is the images-only filter used when none is configured.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// ErrOutsideLibrary is returned for handles that do not point below the root.
var ErrOutsideLibrary = errors.New("picker: handle outside library")

// DirLibrary is a directory of image files. Handle IDs are slash separated
// paths relative to Root.
type DirLibrary struct {
	Root       string
	Recursive  bool
	extensions map[string]bool
}

func NewDirLibrary(root string, extensions []string, recursive bool) *DirLibrary {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &DirLibrary{Root: root, Recursive: recursive, extensions: exts}
}

func (l *DirLibrary) accepts(name string) bool {
	return l.extensions[strings.ToLower(filepath.Ext(name))]
}

// List returns the image files under Root sorted by relative path.
func (l *DirLibrary) List(ctx context.Context) ([]Handle, error) {
	var out []Handle
	err := filepath.WalkDir(l.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != l.Root && (!l.Recursive || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !l.accepts(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(l.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		out = append(out, Handle{ID: rel, Name: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", l.Root, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Resolve reads and decodes the file behind h.
func (l *DirLibrary) Resolve(ctx context.Context, h Handle) (gallery.Image, error) {
	if err := ctx.Err(); err != nil {
		return gallery.Image{}, err
	}
	clean := path.Clean("/" + h.ID)[1:]
	if clean == "" || clean != h.ID {
		return gallery.Image{}, fmt.Errorf("%q: %w", h.ID, ErrOutsideLibrary)
	}
	if !l.accepts(clean) {
		return gallery.Image{}, fmt.Errorf("%q: not an image file", h.ID)
	}
	data, err := os.ReadFile(filepath.Join(l.Root, filepath.FromSlash(clean)))
	if err != nil {
		return gallery.Image{}, fmt.Errorf("read %s: %w", h.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return gallery.Image{}, err
	}
	decoded, err := gallery.DecodeImage(h.Name, data)
	if err != nil {
		return gallery.Image{}, fmt.Errorf("decode %s: %w", h.Name, err)
	}
	// Persisted payloads are always PNG, whatever the source format was.
	img, err := gallery.NewImage(h.Name, decoded.Pixels)
	if err != nil {
		return gallery.Image{}, err
	}
	img.Format = decoded.Format
	return img, nil
}
