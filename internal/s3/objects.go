package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FetchObject reads an object's full byte content.
func (c *Client) FetchObject(ctx context.Context, bucket, key string) ([]byte, error) {
	var body []byte
	err := c.WithRetry(ctx, func() error {
		out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer func() { _ = out.Body.Close() }()
		body, err = io.ReadAll(out.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	return body, nil
}

// PutObject writes an object with the given content type.
func (c *Client) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	err := c.WithRetry(ctx, func() error {
		_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(contentType),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// ObjectExists checks object presence via a HEAD request. Absence is a
// normal outcome, not an error.
func (c *Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head object %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

// ListBucketNames returns the names of all buckets visible to the caller.
// ListBuckets is a global call, so one request covers every region.
func (c *Client) ListBucketNames(ctx context.Context) ([]string, error) {
	var result *s3.ListBucketsOutput
	err := c.WithRetry(ctx, func() error {
		var err error
		result, err = c.api.ListBuckets(ctx, &s3.ListBucketsInput{})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	names := make([]string, 0, len(result.Buckets))
	for _, bucket := range result.Buckets {
		if bucket.Name != nil {
			names = append(names, *bucket.Name)
		}
	}
	return names, nil
}

// GetBucketRegion gets the region of a specific bucket
func (c *Client) GetBucketRegion(ctx context.Context, bucket string) (string, error) {
	var locationResult *s3.GetBucketLocationOutput
	err := c.WithRetry(ctx, func() error {
		var err error
		locationResult, err = c.api.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
			Bucket: aws.String(bucket),
		})
		return err
	})
	if err != nil {
		return "", err
	}

	// us-east-1 reports an empty location constraint
	if locationResult.LocationConstraint == "" {
		return "us-east-1", nil
	}

	return string(locationResult.LocationConstraint), nil
}

// HasPrefix probes whether any object exists under prefix, reading at most
// one key.
func (c *Client) HasPrefix(ctx context.Context, bucket, prefix string) (bool, error) {
	var found bool
	err := c.WithRetry(ctx, func() error {
		out, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:  aws.String(bucket),
			Prefix:  aws.String(prefix),
			MaxKeys: aws.Int32(1),
		})
		if err != nil {
			return err
		}
		found = len(out.Contents) > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("probe prefix %s in %s: %w", prefix, bucket, err)
	}
	return found, nil
}

// ForEachObject walks every object key in a bucket, page by page, invoking
// fn per key. A false return from fn stops the walk early.
func (c *Client) ForEachObject(ctx context.Context, bucket string, fn func(key string) bool) error {
	paginator := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list objects in %s: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			if !fn(*obj.Key) {
				return nil
			}
		}
	}
	return nil
}
