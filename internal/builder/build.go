// Package builder fingerprints icon collections into index blobs, rendering
// icons in sprite-sheet batches so the rasterizer runs once per batch.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/kamusis/iconhash-cli/internal/fingerprint"
	"github.com/kamusis/iconhash-cli/internal/index"
	"github.com/kamusis/iconhash-cli/internal/match"
	"github.com/kamusis/iconhash-cli/internal/raster"
)

const (
	DefaultBatchSize = 1000
	DefaultColumns   = 50
)

// Icon is one named SVG source.
type Icon struct {
	Name string
	SVG  []byte
}

// Observer is told about progress after each batch. Calls are serialized but
// may arrive out of batch order; processed only grows.
type Observer interface {
	BatchDone(processed, total int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(processed, total int)

// BatchDone implements Observer.
func (f ObserverFunc) BatchDone(processed, total int) { f(processed, total) }

// Options configures Build. Zero values pick defaults.
type Options struct {
	Size       int
	BatchSize  int
	Columns    int
	Workers    int
	Rasterizer raster.Rasterizer
	Observer   Observer
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Size == 0 {
		o.Size = fingerprint.DefaultSize
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Columns <= 0 {
		o.Columns = DefaultColumns
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Rasterizer == nil {
		o.Rasterizer = raster.NewOKSVG()
	}
	o.Logger = orDiscard(o.Logger)
	return o
}

// Dropped is an icon that could not be fingerprinted.
type Dropped struct {
	Name string
	Err  error
}

// Report summarizes a build.
type Report struct {
	Total     int
	Indexed   int
	Batches   int
	Fallbacks int // batches that were re-rendered icon by icon
	Dropped   []Dropped
	Elapsed   time.Duration
}

// Result holds the index blobs in the form index.Load consumes.
type Result struct {
	Names  []byte
	Hashes []byte
	Report Report
}

type batchOutput struct {
	names    []string
	hashes   [][]byte
	dropped  []Dropped
	fallback bool
}

// Build fingerprints icons in input order. Batches run concurrently on up to
// opts.Workers goroutines; their outputs are concatenated in submission order.
// Cancellation is checked before each batch starts and returns ctx.Err().
func Build(ctx context.Context, icons []Icon, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := fingerprint.CheckSize(opts.Size); err != nil {
		return nil, err
	}
	if n := fingerprint.ByteLen(opts.Size); n != index.RecordSize {
		return nil, fmt.Errorf("%w: size %d gives %d-byte fingerprints, index records are %d", fingerprint.ErrInvalidSize, opts.Size, n, index.RecordSize)
	}
	start := time.Now()
	log := opts.Logger

	var batches [][]Icon
	for i := 0; i < len(icons); i += opts.BatchSize {
		end := min(i+opts.BatchSize, len(icons))
		batches = append(batches, icons[i:end])
	}
	log.Debug("build started", "icons", len(icons), "batches", len(batches), "workers", opts.Workers)

	outputs := make([]batchOutput, len(batches))
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)
	semaphore := make(chan struct{}, opts.Workers)

	var cancelled error
	for i, batch := range batches {
		semaphore <- struct{}{}
		if err := ctx.Err(); err != nil {
			<-semaphore
			cancelled = err
			break
		}
		wg.Add(1)
		go func(i int, batch []Icon) {
			defer wg.Done()
			defer func() { <-semaphore }()

			outputs[i] = runBatch(ctx, batch, opts)
			log.Debug("batch done", "batch", i, "icons", len(batch), "dropped", len(outputs[i].dropped), "fallback", outputs[i].fallback)

			mu.Lock()
			processed += len(batch)
			if opts.Observer != nil {
				opts.Observer.BatchDone(processed, len(icons))
			}
			mu.Unlock()
		}(i, batch)
	}
	wg.Wait()
	if cancelled != nil {
		return nil, cancelled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := index.NewWriter(len(icons))
	report := Report{Total: len(icons), Batches: len(batches)}
	for _, out := range outputs {
		if out.fallback {
			report.Fallbacks++
		}
		report.Dropped = append(report.Dropped, out.dropped...)
		for j, name := range out.names {
			if err := w.Add(name, out.hashes[j]); err != nil {
				report.Dropped = append(report.Dropped, Dropped{Name: name, Err: err})
				log.Warn("icon dropped", "name", name, "err", err)
			}
		}
	}
	report.Indexed = w.Len()
	report.Elapsed = time.Since(start)
	log.Info("build finished", "indexed", report.Indexed, "dropped", len(report.Dropped), "fallbacks", report.Fallbacks, "elapsed", report.Elapsed)

	return &Result{Names: w.Names(), Hashes: w.Hashes(), Report: report}, nil
}

// runBatch renders batch on one sheet and falls back to icon-by-icon rendering
// when the sheet cannot be produced.
func runBatch(ctx context.Context, batch []Icon, opts Options) batchOutput {
	out, err := renderSheet(ctx, batch, opts)
	if err == nil {
		return out
	}
	if ctx.Err() != nil {
		return batchOutput{}
	}
	opts.Logger.Warn("sheet render failed, fingerprinting icons individually", "first", batch[0].Name, "icons", len(batch), "err", err)

	out = batchOutput{fallback: true}
	for _, icon := range batch {
		fp, err := match.Fingerprint(ctx, opts.Rasterizer, icon.SVG, opts.Size)
		if err != nil {
			opts.Logger.Warn("icon dropped", "name", icon.Name, "err", err)
			out.dropped = append(out.dropped, Dropped{Name: icon.Name, Err: err})
			continue
		}
		out.names = append(out.names, icon.Name)
		out.hashes = append(out.hashes, fp)
	}
	return out
}

func renderSheet(ctx context.Context, batch []Icon, opts Options) (batchOutput, error) {
	l, err := NewLayout(opts.Size, opts.Columns, len(batch))
	if err != nil {
		return batchOutput{}, err
	}
	docs := make([]*raster.Document, len(batch))
	for i, icon := range batch {
		doc, err := raster.ParseDocument(icon.SVG)
		if err != nil {
			return batchOutput{}, fmt.Errorf("%s: %w", icon.Name, err)
		}
		docs[i] = doc
	}

	sheet := composeSheet(l, docs)
	img, err := opts.Rasterizer.Rasterize(ctx, sheet, l.Width(), l.Height(), raster.White)
	if err != nil {
		return batchOutput{}, err
	}
	if img.Width != l.Width() || img.Height != l.Height() {
		return batchOutput{}, fmt.Errorf("%w: sheet is %dx%d, want %dx%d", raster.ErrRasterize, img.Width, img.Height, l.Width(), l.Height())
	}

	out := batchOutput{names: make([]string, len(batch)), hashes: make([][]byte, len(batch))}
	for i, icon := range batch {
		x, y := l.Origin(i)
		fp, err := fingerprint.ComputeRegion(img.Pix, img.Width, x, y, l.Size)
		if err != nil {
			return batchOutput{}, err
		}
		out.names[i] = icon.Name
		out.hashes[i] = fp
	}
	return out, nil
}
