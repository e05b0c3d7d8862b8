// Package ingest drives batch photo ingestion: validation, deduplication,
// batching through the scheduler, pause/cancel control and streaming
// catalog appends.
package ingest

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fieldshot/internal/catalog"
	"fieldshot/internal/config"
	"fieldshot/internal/naming"
	"fieldshot/internal/pipeline"
	"fieldshot/internal/scheduler"
)

// Progress reports files finished (success or failure) out of the total
// accepted for processing.
type Progress struct {
	Completed int
	Total     int
}

// ProgressFunc receives a progress update after every file.
type ProgressFunc func(Progress)

// Summary is the aggregate outcome of one Process call.
type Summary struct {
	Processed      int
	Failed         int
	Excluded       int
	Duplicates     int
	DuplicateNames []string
	Cancelled      bool
	OriginalBytes  int64
	CompactBytes   int64
}

// maxDuplicateNames bounds the names carried in the aggregate notice.
const maxDuplicateNames = 3

// Controller runs the ingestion state machine. A controller is reusable:
// each Process call resets the pause and cancel flags.
type Controller struct {
	cat        *catalog.Catalog
	onProgress ProgressFunc

	mu        sync.Mutex
	cond      *sync.Cond
	paused    bool
	cancelled bool
	aborter   interface{ Abort() }
}

func New(cat *catalog.Catalog, onProgress ProgressFunc) *Controller {
	c := &Controller{cat: cat, onProgress: onProgress}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Pause suspends processing before the next file. In-flight transforms
// finish normally.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume releases a paused controller.
func (c *Controller) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
	c.cond.Broadcast()
}

// Paused reports the pause flag.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Cancel stops processing: no new work starts, queued pool tasks are
// discarded, in-flight transforms drain and their results are dropped.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	aborter := c.aborter
	c.mu.Unlock()
	c.cond.Broadcast()
	if aborter != nil {
		aborter.Abort()
	}
}

func (c *Controller) isCancelled(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// waitIfPaused blocks while the pause flag is set, without consuming
// scheduler capacity. Cancellation releases waiters.
func (c *Controller) waitIfPaused(ctx context.Context) {
	c.mu.Lock()
	for c.paused && !c.cancelled && ctx.Err() == nil {
		c.cond.Wait()
	}
	c.mu.Unlock()
}

// Process ingests a set of files. Unsupported types are silently excluded,
// duplicates of existing catalog photos are skipped, and the survivors run
// through the transform pipeline in fixed-size batches. Each completed photo
// is appended to the catalog immediately.
func (c *Controller) Process(ctx context.Context, files []File) Summary {
	var summary Summary

	var accepted []File
	for _, f := range files {
		if IsValidImage(f) {
			accepted = append(accepted, f)
		} else {
			summary.Excluded++
		}
	}

	var toProcess []File
	for _, f := range accepted {
		if c.cat.HasDuplicate(f.Name(), f.Size()) {
			summary.Duplicates++
			if len(summary.DuplicateNames) < maxDuplicateNames {
				summary.DuplicateNames = append(summary.DuplicateNames, f.Name())
			}
		} else {
			toProcess = append(toProcess, f)
		}
	}
	if summary.Duplicates > 0 {
		log.Printf("ingest: skipped %d duplicate(s): %v", summary.Duplicates, summary.DuplicateNames)
	}
	if len(toProcess) == 0 {
		return summary
	}

	c.mu.Lock()
	c.cancelled = false
	c.paused = false
	c.mu.Unlock()

	exec := scheduler.Select(len(toProcess))
	if pool, ok := exec.(*scheduler.Pool); ok {
		c.mu.Lock()
		c.aborter = pool
		c.mu.Unlock()
	}
	defer func() {
		c.mu.Lock()
		c.aborter = nil
		c.mu.Unlock()
		exec.Close()
	}()

	total := len(toProcess)
	startSort := c.cat.Len()
	project := c.cat.Project()

	var done atomic.Int64
	var processed, failed atomic.Int64
	var originalBytes, compactBytes atomic.Int64
	var nameCounter atomic.Int64
	nameCounter.Store(int64(c.cat.NextCounter()) - 1)

	report := func() {
		if c.onProgress != nil {
			c.onProgress(Progress{Completed: int(done.Load()), Total: total})
		}
	}

	for start := 0; start < total; start += config.BatchSize {
		if c.isCancelled(ctx) {
			break
		}
		c.waitIfPaused(ctx)
		if c.isCancelled(ctx) {
			break
		}

		end := start + config.BatchSize
		if end > total {
			end = total
		}

		g := new(errgroup.Group)
		for i, f := range toProcess[start:end] {
			sortOrder := startSort + start + i
			f := f
			g.Go(func() error {
				if c.isCancelled(ctx) {
					return nil
				}
				c.waitIfPaused(ctx)
				if c.isCancelled(ctx) {
					return nil
				}

				photo, err := c.processOne(ctx, exec, f, sortOrder, project, &nameCounter)
				if c.isCancelled(ctx) {
					// In-flight result after cancel is discarded.
					return nil
				}
				if err != nil {
					log.Printf("ingest: failed to process %s: %v", f.Name(), err)
					failed.Add(1)
					done.Add(1)
					report()
					return nil
				}

				c.cat.Append(*photo)
				processed.Add(1)
				originalBytes.Add(photo.OriginalSize)
				compactBytes.Add(photo.Size)
				done.Add(1)
				report()
				return nil
			})
		}
		// Per-file errors never surface here; the group only sequences the
		// batch.
		_ = g.Wait()
	}

	summary.Processed = int(processed.Load())
	summary.Failed = int(failed.Load())
	summary.OriginalBytes = originalBytes.Load()
	summary.CompactBytes = compactBytes.Load()
	summary.Cancelled = c.isCancelled(ctx)

	if summary.Cancelled {
		log.Printf("ingest: cancelled after %d photo(s)", summary.Processed)
	} else {
		log.Printf("ingest: uploaded %d photo(s), %d failed, %d excluded, %d duplicate(s)",
			summary.Processed, summary.Failed, summary.Excluded, summary.Duplicates)
	}
	return summary
}

// processOne extracts metadata, transforms the image (one inline retry on
// executor failure) and assembles the photo record.
func (c *Controller) processOne(
	ctx context.Context,
	exec scheduler.Executor,
	f File,
	sortOrder int,
	project catalog.ProjectInfo,
	nameCounter *atomic.Int64,
) (*catalog.Photo, error) {
	data, err := f.Bytes()
	if err != nil {
		return nil, err
	}

	meta := pipeline.ExtractMetadata(f.Name(), data)

	id := uuid.NewString()
	result := exec.Do(ctx, scheduler.Task{
		ID:          id,
		Data:        data,
		Orientation: meta.Orientation,
		MaxWidth:    config.MaxImageWidth,
		MaxHeight:   config.MaxImageHeight,
		Quality:     config.ImageQuality,
	})
	variants := result.Variants
	if result.Err != nil {
		// Retry once synchronously before counting the file as failed.
		variants, err = pipeline.Transform(data, meta.Orientation,
			config.MaxImageWidth, config.MaxImageHeight, config.ImageQuality)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	captureTime := f.ModTime()
	if meta.CaptureDate != nil {
		captureTime = *meta.CaptureDate
	}
	hasLongLag := now.Sub(captureTime) > config.LagThresholdHours*time.Hour

	counter := int(nameCounter.Add(1))
	photo := &catalog.Photo{
		ID:           id,
		Name:         naming.SmartName(project.ClientName, project.JobName, captureTime, counter),
		OriginalName: f.Name(),
		Category:     naming.DetectCategory(f.Name()),
		WebP:         variants.WebP,
		JPEG:         variants.JPEG,
		Size:         int64(variants.Size),
		OriginalSize: f.Size(),
		MimeType:     f.ContentType(),
		LastModified: f.ModTime(),
		UploadedAt:   now,
		CaptureTime:  captureTime,
		Meta:         meta,
		HasLongLag:   hasLongLag,
		SortOrder:    sortOrder,
	}
	return photo, nil
}
