// Package picker resolves library selections into gallery images.
//
// The Importer fans the resolves of one selection out over goroutines and
// joins them back in selection order, whatever order they complete in.
package picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jask/niuview/internal/gallery"
)

// Handle is an opaque reference to one library item. Its selection position
// is its index in the slice passed to Import.
type Handle struct {
	ID   string
	Name string
}

// Resolver turns a handle into a decoded image.
type Resolver interface {
	Resolve(ctx context.Context, h Handle) (gallery.Image, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, h Handle) (gallery.Image, error)

func (f ResolverFunc) Resolve(ctx context.Context, h Handle) (gallery.Image, error) {
	return f(ctx, h)
}

// Failure is a handle that did not resolve. Index is its selection position.
type Failure struct {
	Index  int
	Handle Handle
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("item %d (%s): %v", f.Index, f.Handle.Name, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result is the joined outcome of one selection. Images and Failures are both
// in selection order; len(Images)+len(Failures) == Requested.
type Result struct {
	Requested int
	Images    []gallery.Image
	Failures  []Failure
}

// Err joins every failure, or returns nil when all handles resolved.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Importer resolves selections concurrently.
type Importer struct {
	Resolver Resolver
	// MaxConcurrent bounds in flight resolves; zero or less means unbounded.
	MaxConcurrent int
	// DecodeTimeout bounds one resolve; zero means no timeout.
	DecodeTimeout time.Duration
	Logger        *slog.Logger
}

type slot struct {
	img gallery.Image
	err error
}

// Import resolves every handle and returns once all of them have completed,
// successfully or not. Each outcome lands in the slot of its handle's index,
// so completion order never affects the result order.
func (im *Importer) Import(ctx context.Context, handles []Handle) Result {
	res := Result{Requested: len(handles)}
	if len(handles) == 0 {
		return res
	}

	slots := make([]slot, len(handles))
	var g errgroup.Group
	if im.MaxConcurrent > 0 {
		g.SetLimit(im.MaxConcurrent)
	}
	start := time.Now()
	for i, h := range handles {
		i, h := i, h
		g.Go(func() error {
			img, err := im.resolve(ctx, h)
			slots[i] = slot{img: img, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, s := range slots {
		if s.err != nil {
			res.Failures = append(res.Failures, Failure{Index: i, Handle: handles[i], Err: s.err})
			continue
		}
		res.Images = append(res.Images, s.img)
	}
	im.logger().Debug("import joined",
		"requested", res.Requested,
		"imported", len(res.Images),
		"failed", len(res.Failures),
		"elapsed", time.Since(start))
	return res
}

func (im *Importer) resolve(ctx context.Context, h Handle) (gallery.Image, error) {
	if err := ctx.Err(); err != nil {
		return gallery.Image{}, err
	}
	if im.Resolver == nil {
		return gallery.Image{}, errors.New("picker: no resolver configured")
	}
	if im.DecodeTimeout <= 0 {
		return im.Resolver.Resolve(ctx, h)
	}

	ctx, cancel := context.WithTimeout(ctx, im.DecodeTimeout)
	defer cancel()
	done := make(chan slot, 1)
	go func() {
		img, err := im.Resolver.Resolve(ctx, h)
		done <- slot{img: img, err: err}
	}()
	select {
	case s := <-done:
		return s.img, s.err
	case <-ctx.Done():
		// a resolver that ignores ctx keeps running; its result is dropped
		return gallery.Image{}, fmt.Errorf("resolve %s: %w", h.Name, ctx.Err())
	}
}

func (im *Importer) logger() *slog.Logger {
	if im.Logger != nil {
		return im.Logger
	}
	return slog.Default()
}
