package scan

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/ppiankov/piispectre/internal/content"
	"github.com/ppiankov/piispectre/internal/extract"
	"github.com/ppiankov/piispectre/internal/notify"
	"github.com/ppiankov/piispectre/internal/store"
)

// ObjectFetcher reads an object's raw bytes from the storage provider.
type ObjectFetcher interface {
	FetchObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Coordinator runs the incremental scan pipeline for single objects:
// change detection, decode, extraction, persistence, notification.
type Coordinator struct {
	fetcher      ObjectFetcher
	fingerprints store.FingerprintStore
	results      store.ResultStore
	notifier     notify.Notifier
	notifyOn     bool
	dryRun       bool
}

// NewCoordinator creates a coordinator over the given stores.
func NewCoordinator(fetcher ObjectFetcher, fingerprints store.FingerprintStore, results store.ResultStore) *Coordinator {
	return &Coordinator{
		fetcher:      fetcher,
		fingerprints: fingerprints,
		results:      results,
	}
}

// SetNotifier enables downstream notification for non-empty finding sets.
func (c *Coordinator) SetNotifier(n notify.Notifier) {
	c.notifier = n
	c.notifyOn = n != nil
}

// SetDryRun makes ProcessObject report findings without persisting results,
// fingerprints, or notifications.
func (c *Coordinator) SetDryRun(enabled bool) {
	c.dryRun = enabled
}

// ProcessObject scans one object, skipping it when its content digest and
// stored result show nothing changed since the last run. Failures leave the
// fingerprint untouched so the next run retries the object.
func (c *Coordinator) ProcessObject(ctx context.Context, ref store.ObjectRef) Outcome {
	// Type check comes before any network I/O.
	typ, ok := content.Classify(ref.Key)
	if !ok {
		slog.Debug("Skipping unsupported object type", "object", ref.String())
		return skipped(ref, SkipUnsupportedType)
	}

	raw, err := c.fetcher.FetchObject(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return failed(ref, fmt.Errorf("fetch: %w", err))
	}

	digest := contentDigest(raw)

	stored, found, err := c.fingerprints.Get(ctx, ref)
	if err != nil {
		return failed(ref, fmt.Errorf("fingerprint lookup: %w", err))
	}
	haveResult, err := c.results.Exists(ctx, ref.Key)
	if err != nil {
		return failed(ref, fmt.Errorf("result lookup: %w", err))
	}

	// Both conditions must hold: a digest match alone may be a leftover
	// from a run that died before its result write.
	if found && stored == digest && haveResult {
		slog.Debug("Object unchanged", "object", ref.String(), "digest", digest)
		return skipped(ref, SkipUnchanged)
	}

	text, ok := content.Load(raw, typ)
	if !ok {
		slog.Info("No decoder for object, skipping", "object", ref.String(), "type", string(typ))
		return skipped(ref, SkipDecode)
	}

	findings := extract.Bind(extract.Extract(text), ref.Bucket, ref.Key)
	slog.Info("Object scanned", "object", ref.String(), "findings", len(findings))

	if c.dryRun {
		return processed(ref, len(findings))
	}

	// Result first, fingerprint second: dying between the two writes leaves
	// a stale digest, so the object is re-scanned instead of silently
	// trusted.
	if err := c.results.Put(ctx, ref.Key, findings); err != nil {
		return failed(ref, fmt.Errorf("persist result: %w", err))
	}
	if err := c.fingerprints.Put(ctx, ref, digest); err != nil {
		return failed(ref, fmt.Errorf("persist fingerprint: %w", err))
	}

	if c.notifyOn && len(findings) > 0 {
		msgID, err := c.notifier.Notify(ctx, ref, findings)
		if err != nil {
			// Best-effort: the result is already durable, never fail the
			// object over delivery.
			slog.Warn("Notification failed", "object", ref.String(), "error", err)
		} else {
			slog.Info("Notification sent", "object", ref.String(), "message_id", msgID)
		}
	}

	return processed(ref, len(findings))
}

// contentDigest fingerprints object bytes for change detection. MD5 keeps
// the digests interchangeable with those already persisted under hashes/.
func contentDigest(raw []byte) string {
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}
