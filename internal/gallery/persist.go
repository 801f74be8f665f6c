package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jask/niuview/internal/imaging"
)

// BlobKey is the fixed storage key of the persisted gallery.
const BlobKey = "images"

// ErrCorruptBlob means the stored bytes are not a payload list.
var ErrCorruptBlob = errors.New("gallery: stored blob is not a payload list")

// BlobReader reads one value by key. ok is false when the key is absent.
type BlobReader interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
}

// BlobWriter writes one value under key.
type BlobWriter interface {
	Put(ctx context.Context, key string, value []byte) error
}

// BlobStore is what a gallery is saved to and loaded from.
type BlobStore interface {
	BlobReader
	BlobWriter
}

// EncodeBlob serializes the payloads of images, in order, as a JSON array of
// base64 strings. Images without a payload are encoded from their pixels;
// images with neither are skipped and counted.
func EncodeBlob(images []Image) (blob []byte, skipped int, err error) {
	payloads := make([][]byte, 0, len(images))
	for _, img := range images {
		payload := img.Payload
		if len(payload) == 0 {
			if img.Pixels == nil {
				skipped++
				continue
			}
			if payload, err = imaging.EncodePNG(img.Pixels); err != nil {
				skipped++
				continue
			}
		}
		payloads = append(payloads, payload)
	}
	blob, err = json.Marshal(payloads)
	if err != nil {
		return nil, skipped, fmt.Errorf("marshal payloads: %w", err)
	}
	return blob, skipped, nil
}

// DecodeBlob parses a blob produced by EncodeBlob. Zero bytes is an empty list.
func DecodeBlob(blob []byte) ([][]byte, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var payloads [][]byte
	if err := json.Unmarshal(blob, &payloads); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	return payloads, nil
}

// SaveReport describes a successful save.
type SaveReport struct {
	Count   int // payloads written
	Skipped int // images that had nothing to encode
	Bytes   int // blob size
}

// Save encodes images and writes the blob under BlobKey.
func Save(ctx context.Context, w BlobWriter, images []Image) (SaveReport, error) {
	blob, skipped, err := EncodeBlob(images)
	if err != nil {
		return SaveReport{}, err
	}
	if err := w.Put(ctx, BlobKey, blob); err != nil {
		return SaveReport{}, fmt.Errorf("write %s: %w", BlobKey, err)
	}
	return SaveReport{Count: len(images) - skipped, Skipped: skipped, Bytes: len(blob)}, nil
}

// SkippedPayload is a stored payload that could not be decoded.
type SkippedPayload struct {
	Index int
	Err   error
}

// LoadResult is the outcome of Load. Images are in stored order.
type LoadResult struct {
	Found   bool
	Bytes   int
	Images  []Image
	Skipped []SkippedPayload
}

// Load reads the blob under BlobKey and decodes every payload. A missing key
// yields an empty result with Found false. A blob that does not parse returns
// ErrCorruptBlob; callers should leave their gallery untouched in that case.
func Load(ctx context.Context, r BlobReader) (LoadResult, error) {
	blob, ok, err := r.Get(ctx, BlobKey)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read %s: %w", BlobKey, err)
	}
	if !ok {
		return LoadResult{}, nil
	}
	payloads, err := DecodeBlob(blob)
	if err != nil {
		return LoadResult{}, err
	}
	res := LoadResult{Found: true, Bytes: len(blob), Images: make([]Image, 0, len(payloads))}
	for i, payload := range payloads {
		img, err := DecodeImage(fmt.Sprintf("saved #%d", i+1), payload)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedPayload{Index: i, Err: err})
			continue
		}
		res.Images = append(res.Images, img)
	}
	return res, nil
}

// HasSaved reports whether the stored blob holds more than an empty list.
func HasSaved(ctx context.Context, r BlobReader) (bool, error) {
	blob, ok, err := r.Get(ctx, BlobKey)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", BlobKey, err)
	}
	return ok && len(blob) > 2, nil
}
