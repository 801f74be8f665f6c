// Package gallery holds the ordered list of images on screen and the
// encode/load pair that persists it.
//
// A Gallery is not safe for concurrent use. It has exactly one owner (the
// TUI update loop); background work hands results to the owner as messages
// instead of mutating the gallery directly.
package gallery

import (
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/jask/niuview/internal/imaging"
)

// ErrIndexOutOfRange is returned by index based mutations.
var ErrIndexOutOfRange = errors.New("gallery: index out of range")

// Image is one decoded entry. Payload is the encoded form that gets persisted;
// Pixels is the decoded form used for display. Format names the encoding the
// image arrived in, which may differ from the payload's.
type Image struct {
	ID      string
	Name    string
	Format  string
	Payload []byte
	Pixels  image.Image
}

// NewImage encodes pixels into the persisted payload format.
func NewImage(name string, pixels image.Image) (Image, error) {
	payload, err := imaging.EncodePNG(pixels)
	if err != nil {
		return Image{}, fmt.Errorf("encode %s: %w", name, err)
	}
	return Image{
		ID:      uuid.NewString(),
		Name:    name,
		Format:  "png",
		Payload: payload,
		Pixels:  pixels,
	}, nil
}

// DecodeImage builds an Image from an encoded payload.
func DecodeImage(name string, payload []byte) (Image, error) {
	pixels, format, err := imaging.Decode(payload)
	if err != nil {
		return Image{}, err
	}
	return Image{
		ID:      uuid.NewString(),
		Name:    name,
		Format:  format,
		Payload: payload,
		Pixels:  pixels,
	}, nil
}

// Size returns the pixel dimensions, or 0x0 when the image has no pixels.
func (img Image) Size() (int, int) {
	if img.Pixels == nil {
		return 0, 0
	}
	b := img.Pixels.Bounds()
	return b.Dx(), b.Dy()
}

// Gallery is an ordered sequence of images.
type Gallery struct {
	images []Image
}

// New returns a gallery holding images in the given order.
func New(images ...Image) *Gallery {
	g := &Gallery{}
	g.Replace(images)
	return g
}

func (g *Gallery) Len() int { return len(g.images) }

// At returns the image at i.
func (g *Gallery) At(i int) (Image, bool) {
	if i < 0 || i >= len(g.images) {
		return Image{}, false
	}
	return g.images[i], true
}

// Images returns a copy of the current order.
func (g *Gallery) Images() []Image {
	return append([]Image(nil), g.images...)
}

// Append adds a batch after the existing contents in one update.
func (g *Gallery) Append(batch ...Image) {
	if len(batch) == 0 {
		return
	}
	g.images = append(g.images, batch...)
}

// RemoveAt removes the image at i keeping the relative order of the rest.
func (g *Gallery) RemoveAt(i int) (Image, error) {
	if i < 0 || i >= len(g.images) {
		return Image{}, fmt.Errorf("remove %d of %d: %w", i, len(g.images), ErrIndexOutOfRange)
	}
	removed := g.images[i]
	g.images = append(g.images[:i:i], g.images[i+1:]...)
	return removed, nil
}

// Move relocates the image at from so that it ends up at index to.
func (g *Gallery) Move(from, to int) error {
	n := len(g.images)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move %d to %d of %d: %w", from, to, n, ErrIndexOutOfRange)
	}
	if from == to {
		return nil
	}
	img := g.images[from]
	if from < to {
		copy(g.images[from:to], g.images[from+1:to+1])
	} else {
		copy(g.images[to+1:from+1], g.images[to:from])
	}
	g.images[to] = img
	return nil
}

// Clear drops every image.
func (g *Gallery) Clear() {
	g.images = nil
}

// Replace swaps the whole collection, keeping the given order.
func (g *Gallery) Replace(images []Image) {
	g.images = append([]Image(nil), images...)
}
