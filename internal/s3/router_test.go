package s3

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

type routerFakeAPI struct {
	locationCalls int
	locationErr   error
	getCalls      int
}

func (f *routerFakeAPI) GetObject(context.Context, *awss3.GetObjectInput, ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	f.getCalls++
	return &awss3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("body")))}, nil
}

func (f *routerFakeAPI) PutObject(context.Context, *awss3.PutObjectInput, ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	return &awss3.PutObjectOutput{}, nil
}

func (f *routerFakeAPI) HeadObject(context.Context, *awss3.HeadObjectInput, ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	return &awss3.HeadObjectOutput{}, nil
}

func (f *routerFakeAPI) ListBuckets(context.Context, *awss3.ListBucketsInput, ...func(*awss3.Options)) (*awss3.ListBucketsOutput, error) {
	return &awss3.ListBucketsOutput{}, nil
}

func (f *routerFakeAPI) ListObjectsV2(context.Context, *awss3.ListObjectsV2Input, ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	return &awss3.ListObjectsV2Output{}, nil
}

func (f *routerFakeAPI) GetBucketLocation(context.Context, *awss3.GetBucketLocationInput, ...func(*awss3.Options)) (*awss3.GetBucketLocationOutput, error) {
	f.locationCalls++
	if f.locationErr != nil {
		return nil, f.locationErr
	}
	// Empty constraint means us-east-1
	return &awss3.GetBucketLocationOutput{}, nil
}

func TestRegionRouter_CachesBucketRegion(t *testing.T) {
	api := &routerFakeAPI{}
	router := NewRegionRouter(NewFromAPI(api, aws.Config{Region: "us-east-1"}))

	for i := 0; i < 3; i++ {
		if _, err := router.FetchObject(context.Background(), "data", "notes.txt"); err != nil {
			t.Fatalf("FetchObject failed: %v", err)
		}
	}

	if api.locationCalls != 1 {
		t.Fatalf("expected 1 location lookup, got %d", api.locationCalls)
	}
	if api.getCalls != 3 {
		t.Fatalf("expected 3 fetches through the base client, got %d", api.getCalls)
	}
}

func TestRegionRouter_LocationFailureFallsBack(t *testing.T) {
	api := &routerFakeAPI{
		locationErr: &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"},
	}
	router := NewRegionRouter(NewFromAPI(api, aws.Config{Region: "eu-west-1"}))

	body, err := router.FetchObject(context.Background(), "data", "notes.txt")
	if err != nil {
		t.Fatalf("expected fallback to base client, got %v", err)
	}
	if string(body) != "body" {
		t.Fatalf("unexpected body: %q", body)
	}
	if api.getCalls != 1 {
		t.Fatalf("expected fetch via base client, got %d calls", api.getCalls)
	}
}
