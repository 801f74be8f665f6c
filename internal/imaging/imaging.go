// Package imaging decodes and encodes image payloads and scales them for display.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyPayload is returned when asked to decode zero bytes.
var ErrEmptyPayload = errors.New("imaging: empty payload")

// Decode decodes any registered format (png, jpeg, gif, webp, bmp, tiff).
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyPayload
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// EncodePNG encodes img losslessly. This is the payload format that gets persisted.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("imaging: nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit scales img to the largest size that fits in maxW x maxH while keeping
// its aspect ratio. The result is always at least 1x1.
func Fit(img image.Image, maxW, maxH int) *image.RGBA {
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	src := img.Bounds()
	w, h := FitSize(src.Dx(), src.Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}

// FitSize returns the dimensions of a w x h box scaled into maxW x maxH.
func FitSize(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	// compare w/h with maxW/maxH without floats
	var nw, nh int
	if w*maxH >= h*maxW {
		nw = maxW
		nh = h * maxW / w
	} else {
		nh = maxH
		nw = w * maxH / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
