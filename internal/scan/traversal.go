package scan

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ppiankov/piispectre/internal/store"
)

// LogPrefix marks buckets holding provider infrastructure logs; a bucket
// with any object under it is excluded from full scans.
const LogPrefix = "AWSLogs"

// BucketWalker enumerates buckets and their objects.
type BucketWalker interface {
	ListBucketNames(ctx context.Context) ([]string, error)
	HasPrefix(ctx context.Context, bucket, prefix string) (bool, error)
	ForEachObject(ctx context.Context, bucket string, fn func(key string) bool) error
}

// ObjectProcessor is the per-object entry point, normally a *Coordinator.
type ObjectProcessor interface {
	ProcessObject(ctx context.Context, ref store.ObjectRef) Outcome
}

// Traverser drives scans across buckets, feeding each object to the
// processor. One object's failure never blocks its siblings.
type Traverser struct {
	walker         BucketWalker
	processor      ObjectProcessor
	resultBucket   string
	excludeBuckets map[string]bool
	concurrency    int
}

// NewTraverser creates a traverser. The result bucket is always excluded
// from full scans.
func NewTraverser(walker BucketWalker, processor ObjectProcessor, resultBucket string, concurrency int) *Traverser {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Traverser{
		walker:         walker,
		processor:      processor,
		resultBucket:   resultBucket,
		excludeBuckets: map[string]bool{},
		concurrency:    concurrency,
	}
}

// SetExcludeBuckets excludes additional buckets from full scans.
func (t *Traverser) SetExcludeBuckets(buckets []string) {
	t.excludeBuckets = make(map[string]bool, len(buckets))
	for _, b := range buckets {
		t.excludeBuckets[b] = true
	}
}

// ScanObjects processes explicit object references independently, the
// event-trigger entry point.
func (t *Traverser) ScanObjects(ctx context.Context, refs []store.ObjectRef) *Summary {
	summary := &Summary{}
	for _, ref := range refs {
		outcome := t.processor.ProcessObject(ctx, ref)
		if outcome.Status == StatusFailed {
			slog.Warn("Object processing failed", "object", ref.String(), "error", outcome.Err)
		}
		summary.add(outcome)
	}
	return summary
}

// ScanAll enumerates every visible bucket and processes its objects with a
// bounded worker pool. Bucket-level failures are logged and traversal
// continues with the next bucket.
func (t *Traverser) ScanAll(ctx context.Context) (*Summary, error) {
	buckets, err := t.walker.ListBucketNames(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, bucket := range buckets {
		if bucket == t.resultBucket || t.excludeBuckets[bucket] {
			slog.Debug("Bucket excluded", "bucket", bucket)
			summary.BucketsSkipped++
			continue
		}

		hasLogs, err := t.walker.HasPrefix(ctx, bucket, LogPrefix)
		if err != nil {
			slog.Warn("Failed to probe bucket, skipping", "bucket", bucket, "error", err)
			summary.BucketsSkipped++
			continue
		}
		if hasLogs {
			slog.Info("Skipping infrastructure log bucket", "bucket", bucket)
			summary.BucketsSkipped++
			continue
		}

		slog.Info("Scanning bucket", "bucket", bucket)
		if err := t.scanBucket(ctx, bucket, summary); err != nil {
			slog.Warn("Failed to scan bucket", "bucket", bucket, "error", err)
			continue
		}
		summary.BucketsScanned++
	}

	return summary, nil
}

// scanBucket pages through one bucket's keys and processes them
// concurrently. Each key is assigned to exactly one worker, so no two
// workers touch the same object's stores.
func (t *Traverser) scanBucket(ctx context.Context, bucket string, summary *Summary) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	semaphore := make(chan struct{}, t.concurrency)

	err := t.walker.ForEachObject(ctx, bucket, func(key string) bool {
		wg.Add(1)
		go func(ref store.ObjectRef) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			outcome := t.processor.ProcessObject(ctx, ref)
			if outcome.Status == StatusFailed {
				slog.Warn("Object processing failed", "object", ref.String(), "error", outcome.Err)
			}

			mu.Lock()
			summary.add(outcome)
			mu.Unlock()
		}(store.ObjectRef{Bucket: bucket, Key: key})
		return ctx.Err() == nil
	})

	wg.Wait()
	return err
}
