package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/piispectre/internal/extract"
	"github.com/ppiankov/piispectre/internal/s3"
)

// S3Fingerprints is a FingerprintStore laid out as plain-text digest
// objects under hashes/ in the result bucket.
type S3Fingerprints struct {
	client       *s3.Client
	resultBucket string
}

// NewS3Fingerprints creates a fingerprint store in resultBucket.
func NewS3Fingerprints(client *s3.Client, resultBucket string) *S3Fingerprints {
	return &S3Fingerprints{client: client, resultBucket: resultBucket}
}

// Get returns the stored digest for ref. A missing digest is (_, false, nil).
func (s *S3Fingerprints) Get(ctx context.Context, ref ObjectRef) (string, bool, error) {
	body, err := s.client.FetchObject(ctx, s.resultBucket, FingerprintKey(ref))
	if err != nil {
		if s3.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read fingerprint for %s: %w", ref, err)
	}
	return strings.TrimSpace(string(body)), true, nil
}

// Put stores the digest for ref, replacing any previous value.
func (s *S3Fingerprints) Put(ctx context.Context, ref ObjectRef, digest string) error {
	err := s.client.PutObject(ctx, s.resultBucket, FingerprintKey(ref), []byte(digest), "text/plain")
	if err != nil {
		return fmt.Errorf("store fingerprint for %s: %w", ref, err)
	}
	return nil
}

// S3Results is a ResultStore laid out as JSON finding arrays under
// results/ in the result bucket.
type S3Results struct {
	client       *s3.Client
	resultBucket string
}

// NewS3Results creates a result store in resultBucket.
func NewS3Results(client *s3.Client, resultBucket string) *S3Results {
	return &S3Results{client: client, resultBucket: resultBucket}
}

// Exists reports whether a result object is present for key.
func (s *S3Results) Exists(ctx context.Context, key string) (bool, error) {
	found, err := s.client.ObjectExists(ctx, s.resultBucket, ResultKey(key))
	if err != nil {
		return false, fmt.Errorf("probe result for %s: %w", key, err)
	}
	return found, nil
}

// Get reads the stored finding set for key.
func (s *S3Results) Get(ctx context.Context, key string) ([]extract.Finding, error) {
	body, err := s.client.FetchObject(ctx, s.resultBucket, ResultKey(key))
	if err != nil {
		return nil, fmt.Errorf("read result for %s: %w", key, err)
	}
	var findings []extract.Finding
	if err := json.Unmarshal(body, &findings); err != nil {
		return nil, fmt.Errorf("parse result for %s: %w", key, err)
	}
	return findings, nil
}

// Put stores the finding set for key, replacing any previous value. An
// empty set is stored as an empty JSON array, not omitted.
func (s *S3Results) Put(ctx context.Context, key string, findings []extract.Finding) error {
	if findings == nil {
		findings = []extract.Finding{}
	}
	body, err := json.Marshal(findings)
	if err != nil {
		return fmt.Errorf("encode result for %s: %w", key, err)
	}
	if err := s.client.PutObject(ctx, s.resultBucket, ResultKey(key), body, "application/json"); err != nil {
		return fmt.Errorf("store result for %s: %w", key, err)
	}
	return nil
}

var (
	_ FingerprintStore = (*S3Fingerprints)(nil)
	_ ResultStore      = (*S3Results)(nil)
)
