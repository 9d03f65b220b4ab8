package s3

import (
	"context"
	"log/slog"
	"sync"
)

// RegionRouter routes object fetches through a client for the bucket's own
// region, resolving and caching bucket locations lazily. Buckets whose
// region cannot be determined fall back to the base client.
type RegionRouter struct {
	base *Client

	mu           sync.Mutex
	byRegion     map[string]*Client
	bucketRegion map[string]string
}

// NewRegionRouter creates a router over base.
func NewRegionRouter(base *Client) *RegionRouter {
	return &RegionRouter{
		base:         base,
		byRegion:     map[string]*Client{},
		bucketRegion: map[string]string{},
	}
}

// FetchObject reads an object via the client for its bucket's region.
func (r *RegionRouter) FetchObject(ctx context.Context, bucket, key string) ([]byte, error) {
	return r.clientFor(ctx, bucket).FetchObject(ctx, bucket, key)
}

func (r *RegionRouter) clientFor(ctx context.Context, bucket string) *Client {
	r.mu.Lock()
	region, ok := r.bucketRegion[bucket]
	r.mu.Unlock()

	if !ok {
		resolved, err := r.base.GetBucketRegion(ctx, bucket)
		if err != nil {
			slog.Debug("Could not resolve bucket region, using default",
				"bucket", bucket, "error", err)
			resolved = r.base.GetRegion()
		}
		region = resolved
		r.mu.Lock()
		r.bucketRegion[bucket] = region
		r.mu.Unlock()
	}

	if region == r.base.GetRegion() {
		return r.base
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.byRegion[region]
	if !ok {
		client = NewClientForRegion(r.base.GetConfig(), region)
		r.byRegion[region] = client
	}
	return client
}
