package scan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/ppiankov/piispectre/internal/store"
)

type fakeWalker struct {
	buckets    map[string][]string
	listErr    error
	probeErr   map[string]error
	forEachErr map[string]error
}

func (w *fakeWalker) ListBucketNames(context.Context) ([]string, error) {
	if w.listErr != nil {
		return nil, w.listErr
	}
	names := make([]string, 0, len(w.buckets))
	for name := range w.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (w *fakeWalker) HasPrefix(_ context.Context, bucket, prefix string) (bool, error) {
	if err := w.probeErr[bucket]; err != nil {
		return false, err
	}
	for _, key := range w.buckets[bucket] {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			return true, nil
		}
	}
	return false, nil
}

func (w *fakeWalker) ForEachObject(_ context.Context, bucket string, fn func(string) bool) error {
	if err := w.forEachErr[bucket]; err != nil {
		return err
	}
	for _, key := range w.buckets[bucket] {
		if !fn(key) {
			return nil
		}
	}
	return nil
}

type recordingProcessor struct {
	mu   sync.Mutex
	seen []store.ObjectRef
	fail map[store.ObjectRef]error
}

func (p *recordingProcessor) ProcessObject(_ context.Context, ref store.ObjectRef) Outcome {
	p.mu.Lock()
	p.seen = append(p.seen, ref)
	p.mu.Unlock()
	if err := p.fail[ref]; err != nil {
		return failed(ref, err)
	}
	return processed(ref, 0)
}

func (p *recordingProcessor) sawBucket(bucket string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ref := range p.seen {
		if ref.Bucket == bucket {
			return true
		}
	}
	return false
}

func TestScanAll_ProcessesEveryObject(t *testing.T) {
	walker := &fakeWalker{buckets: map[string][]string{
		"alpha": {"a.txt", "b.csv", "c.json"},
		"beta":  {"d.txt"},
	}}
	processor := &recordingProcessor{}
	traverser := NewTraverser(walker, processor, "results-bucket", 3)

	summary, err := traverser.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(processor.seen) != 4 {
		t.Fatalf("expected 4 objects processed, got %d", len(processor.seen))
	}
	if summary.BucketsScanned != 2 {
		t.Fatalf("expected 2 buckets scanned, got %d", summary.BucketsScanned)
	}
	if summary.Processed() != 4 {
		t.Fatalf("expected 4 processed outcomes, got %d", summary.Processed())
	}
}

func TestScanAll_ExcludesResultBucket(t *testing.T) {
	walker := &fakeWalker{buckets: map[string][]string{
		"alpha":          {"a.txt"},
		"results-bucket": {"results/a.txt.emails.json"},
	}}
	processor := &recordingProcessor{}
	traverser := NewTraverser(walker, processor, "results-bucket", 1)

	if _, err := traverser.ScanAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processor.sawBucket("results-bucket") {
		t.Fatal("result bucket must never be scanned")
	}
}

func TestScanAll_SkipsLogBucketEntirely(t *testing.T) {
	walker := &fakeWalker{buckets: map[string][]string{
		"infra": {"AWSLogs/2024/01/trail.json", "notes.txt"},
		"data":  {"a.txt"},
	}}
	processor := &recordingProcessor{}
	traverser := NewTraverser(walker, processor, "results-bucket", 1)

	summary, err := traverser.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processor.sawBucket("infra") {
		t.Fatal("log bucket must be skipped with zero processor calls")
	}
	if summary.BucketsSkipped != 1 {
		t.Fatalf("expected 1 bucket skipped, got %d", summary.BucketsSkipped)
	}
}

func TestScanAll_ExcludesConfiguredBuckets(t *testing.T) {
	walker := &fakeWalker{buckets: map[string][]string{
		"alpha": {"a.txt"},
		"noisy": {"b.txt"},
	}}
	processor := &recordingProcessor{}
	traverser := NewTraverser(walker, processor, "results-bucket", 1)
	traverser.SetExcludeBuckets([]string{"noisy"})

	if _, err := traverser.ScanAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processor.sawBucket("noisy") {
		t.Fatal("excluded bucket was scanned")
	}
	if !processor.sawBucket("alpha") {
		t.Fatal("non-excluded bucket was not scanned")
	}
}

func TestScanAll_BucketFailureDoesNotBlockSiblings(t *testing.T) {
	walker := &fakeWalker{
		buckets: map[string][]string{
			"broken": {"a.txt"},
			"fine":   {"b.txt"},
		},
		forEachErr: map[string]error{"broken": errors.New("AccessDenied")},
	}
	processor := &recordingProcessor{}
	traverser := NewTraverser(walker, processor, "results-bucket", 1)

	summary, err := traverser.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("bucket failure must not abort traversal: %v", err)
	}
	if !processor.sawBucket("fine") {
		t.Fatal("sibling bucket was not scanned after a failure")
	}
	if summary.BucketsScanned != 1 {
		t.Fatalf("expected 1 bucket scanned, got %d", summary.BucketsScanned)
	}
}

func TestScanAll_ProbeFailureSkipsBucket(t *testing.T) {
	walker := &fakeWalker{
		buckets:  map[string][]string{"alpha": {"a.txt"}, "beta": {"b.txt"}},
		probeErr: map[string]error{"alpha": errors.New("timeout")},
	}
	processor := &recordingProcessor{}
	traverser := NewTraverser(walker, processor, "results-bucket", 1)

	if _, err := traverser.ScanAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processor.sawBucket("alpha") {
		t.Fatal("unprobeable bucket should be skipped")
	}
	if !processor.sawBucket("beta") {
		t.Fatal("sibling bucket should still be scanned")
	}
}

func TestScanAll_ListFailure(t *testing.T) {
	walker := &fakeWalker{listErr: errors.New("AccessDenied")}
	traverser := NewTraverser(walker, &recordingProcessor{}, "results-bucket", 1)

	if _, err := traverser.ScanAll(context.Background()); err == nil {
		t.Fatal("expected error when bucket enumeration fails")
	}
}

func TestScanObjects_FailureDoesNotBlockOthers(t *testing.T) {
	bad := store.ObjectRef{Bucket: "data", Key: "bad.txt"}
	good := store.ObjectRef{Bucket: "data", Key: "good.txt"}
	processor := &recordingProcessor{
		fail: map[store.ObjectRef]error{bad: errors.New("boom")},
	}
	traverser := NewTraverser(&fakeWalker{}, processor, "results-bucket", 1)

	summary := traverser.ScanObjects(context.Background(), []store.ObjectRef{bad, good})
	if len(processor.seen) != 2 {
		t.Fatalf("expected both objects attempted, got %d", len(processor.seen))
	}
	if summary.Failed() != 1 || summary.Processed() != 1 {
		t.Fatalf("unexpected summary: failed=%d processed=%d", summary.Failed(), summary.Processed())
	}
}

func TestScanAll_ConcurrentWorkersCoverAllKeys(t *testing.T) {
	keys := make([]string, 50)
	for i := range keys {
		keys[i] = fmt.Sprintf("dir/file-%02d.txt", i)
	}
	walker := &fakeWalker{buckets: map[string][]string{"big": keys}}
	processor := &recordingProcessor{}
	traverser := NewTraverser(walker, processor, "results-bucket", 8)

	summary, err := traverser.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Outcomes) != len(keys) {
		t.Fatalf("expected %d outcomes, got %d", len(keys), len(summary.Outcomes))
	}
	seen := map[store.ObjectRef]int{}
	for _, ref := range processor.seen {
		seen[ref]++
	}
	for _, key := range keys {
		ref := store.ObjectRef{Bucket: "big", Key: key}
		if seen[ref] != 1 {
			t.Fatalf("key %q processed %d times", key, seen[ref])
		}
	}
}
