package store

import (
	"context"
	"fmt"

	"github.com/ppiankov/piispectre/internal/extract"
)

// ObjectRef identifies one scannable object.
type ObjectRef struct {
	Bucket string
	Key    string
}

func (r ObjectRef) String() string {
	return fmt.Sprintf("%s/%s", r.Bucket, r.Key)
}

// FingerprintStore persists the last-seen content digest per object.
// A missing digest is a normal outcome, reported via the bool, not an error.
type FingerprintStore interface {
	Get(ctx context.Context, ref ObjectRef) (digest string, found bool, err error)
	Put(ctx context.Context, ref ObjectRef, digest string) error
}

// ResultStore persists the most recent finding set per object key.
//
// Result keys derive from the object key alone: two buckets holding the same
// key overwrite each other's results. This mirrors the persisted layout the
// tool inherited and is kept for compatibility.
type ResultStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]extract.Finding, error)
	Put(ctx context.Context, key string, findings []extract.Finding) error
}

const (
	hashPrefix   = "hashes/"
	resultPrefix = "results/"
	resultSuffix = ".emails.json"
	hashSuffix   = ".hash"
)

// FingerprintKey derives the storage key for an object's digest.
func FingerprintKey(ref ObjectRef) string {
	return hashPrefix + ref.Bucket + "/" + ref.Key + hashSuffix
}

// ResultKey derives the storage key for an object key's findings.
func ResultKey(key string) string {
	return resultPrefix + key + resultSuffix
}
