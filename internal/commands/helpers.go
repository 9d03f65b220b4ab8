package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/piispectre/internal/report"
	"github.com/ppiankov/piispectre/internal/scan"
	"github.com/ppiankov/piispectre/internal/store"
)

func printStatus(format string, args ...interface{}) {
	slog.Info(fmt.Sprintf(format, args...))
}

// parseObjectRefs converts CLI arguments of the form s3://bucket/key or
// bucket/key into object references for event mode.
func parseObjectRefs(args []string) ([]store.ObjectRef, error) {
	refs := make([]store.ObjectRef, 0, len(args))
	for _, arg := range args {
		trimmed := strings.TrimPrefix(arg, "s3://")
		bucket, key, found := strings.Cut(trimmed, "/")
		if !found || bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid object reference %q (expected s3://bucket/key)", arg)
		}
		refs = append(refs, store.ObjectRef{Bucket: bucket, Key: key})
	}
	return refs, nil
}

// buildReportData flattens a traversal summary into the report shape.
func buildReportData(mode, resultBucket string, summary *scan.Summary) report.Data {
	objects := make([]report.Object, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		obj := report.Object{
			Bucket:   o.Ref.Bucket,
			Key:      o.Ref.Key,
			Status:   string(o.Status),
			Reason:   o.Reason,
			Findings: o.Findings,
		}
		if o.Err != nil {
			obj.Error = o.Err.Error()
		}
		objects = append(objects, obj)
	}

	return report.Data{
		Tool:         "piispectre",
		Version:      GetVersion(),
		Timestamp:    time.Now(),
		Mode:         mode,
		ResultBucket: resultBucket,
		Summary: report.Summary{
			BucketsScanned:   summary.BucketsScanned,
			BucketsSkipped:   summary.BucketsSkipped,
			ObjectsProcessed: summary.Processed(),
			ObjectsSkipped:   summary.Skipped(),
			ObjectsFailed:    summary.Failed(),
			TotalFindings:    summary.TotalFindings(),
		},
		Objects: objects,
	}
}

// enhanceError enhances an error with additional context and helpful suggestions
func enhanceError(operation string, err error, concurrency int) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "NoCredentialProviders") || strings.Contains(errMsg, "no valid credentials") {
		return fmt.Errorf("%s failed: No AWS credentials found.\n"+
			"Solutions:\n"+
			"  - Set AWS_PROFILE environment variable\n"+
			"  - Use --aws-profile flag\n"+
			"  - Configure AWS credentials with 'aws configure'\n"+
			"Original error: %w", operation, err)
	}

	if strings.Contains(errMsg, "AccessDenied") || strings.Contains(errMsg, "Access Denied") {
		return fmt.Errorf("%s failed: Access Denied.\n"+
			"Solutions:\n"+
			"  - Check IAM permissions for S3 operations\n"+
			"  - Ensure you have s3:ListAllMyBuckets, s3:ListBucket, s3:GetObject and s3:PutObject permissions\n"+
			"  - Verify the correct AWS profile is being used\n"+
			"Original error: %w", operation, err)
	}

	if strings.Contains(errMsg, "RequestLimitExceeded") || strings.Contains(errMsg, "SlowDown") {
		return fmt.Errorf("%s failed: AWS rate limit exceeded.\n"+
			"Solutions:\n"+
			"  - Reduce concurrency with --concurrency flag (current: %d)\n"+
			"  - Wait a few seconds and try again\n"+
			"Original error: %w", operation, concurrency, err)
	}

	// Default error with context
	return fmt.Errorf("%s failed: %w", operation, err)
}

func selectReporter(format string, writer io.Writer) (report.Reporter, error) {
	switch format {
	case "json":
		return report.NewJSONReporter(writer), nil
	case "text":
		return report.NewTextReporter(writer), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: text, json)", format)
	}
}
