package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ppiankov/piispectre/internal/config"
	"github.com/ppiankov/piispectre/internal/notify"
	"github.com/ppiankov/piispectre/internal/s3"
	"github.com/ppiankov/piispectre/internal/scan"
	"github.com/ppiankov/piispectre/internal/store"
)

var scanFlags struct {
	awsProfile     string
	awsRegion      string
	resultBucket   string
	excludeBuckets []string
	maxConcurrency int
	outputFormat   string
	outputFile     string
	dryRun         bool
	timeout        time.Duration
}

var scanCmd = &cobra.Command{
	Use:   "scan [s3://bucket/key ...]",
	Short: "Scan S3 objects for PII",
	Long: `Scans S3 objects for sensitive text patterns.

With no arguments, enumerates all visible buckets (except the result bucket,
excluded buckets, and buckets holding infrastructure logs) and processes
every object: full-scan mode.

With one or more s3://bucket/key or bucket/key arguments, processes exactly
those objects: event mode, the CLI analogue of an S3-notification trigger.

Per-object failures are logged and reported but do not fail the command;
only a failed traversal or invalid configuration does.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFlags.awsProfile, "aws-profile", "", "AWS profile to use")
	scanCmd.Flags().StringVar(&scanFlags.awsRegion, "aws-region", "", "AWS region (defaults to profile default)")
	scanCmd.Flags().StringVar(&scanFlags.resultBucket, "result-bucket", "", "Bucket for hashes and results (or RESULT_BUCKET env)")
	scanCmd.Flags().StringSliceVar(&scanFlags.excludeBuckets, "exclude-buckets", nil, "Buckets to exclude from full scans (comma-separated)")
	scanCmd.Flags().IntVar(&scanFlags.maxConcurrency, "concurrency", 4, "Max objects processed concurrently per bucket")
	scanCmd.Flags().StringVarP(&scanFlags.outputFormat, "format", "f", "text", "Output format: text or json")
	scanCmd.Flags().StringVarP(&scanFlags.outputFile, "output", "o", "", "Output file (default: stdout)")
	scanCmd.Flags().BoolVar(&scanFlags.dryRun, "dry-run", false, "Scan and report without writing results or notifying")
	scanCmd.Flags().DurationVar(&scanFlags.timeout, "timeout", 0, "Total operation timeout (e.g. 5m, 30s). 0 means no timeout")
}

func runScan(cmd *cobra.Command, args []string) error {
	applyConfigToScanFlags(cmd)

	settings := config.FromEnv()
	if scanFlags.resultBucket != "" {
		settings.ResultBucket = scanFlags.resultBucket
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	refs, err := parseObjectRefs(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if scanFlags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, scanFlags.timeout)
		defer cancel()
	}
	start := time.Now()

	printStatus("Initializing AWS S3 client...")
	s3Client, err := s3.NewClient(ctx, scanFlags.awsProfile, scanFlags.awsRegion)
	if err != nil {
		return enhanceError("S3 client initialization", err, scanFlags.maxConcurrency)
	}

	fingerprints := store.NewS3Fingerprints(s3Client, settings.ResultBucket)
	results := store.NewS3Results(s3Client, settings.ResultBucket)

	coordinator := scan.NewCoordinator(s3.NewRegionRouter(s3Client), fingerprints, results)
	coordinator.SetDryRun(scanFlags.dryRun)

	if settings.EnableSQS && !scanFlags.dryRun {
		printStatus("SQS notification enabled: %s", settings.SQSQueueURL)
		coordinator.SetNotifier(notify.NewSQSNotifier(s3Client.GetConfig(), settings.SQSQueueURL))
	} else {
		slog.Debug("SQS notification disabled")
	}

	traverser := scan.NewTraverser(s3Client, coordinator, settings.ResultBucket, scanFlags.maxConcurrency)
	traverser.SetExcludeBuckets(scanFlags.excludeBuckets)

	var summary *scan.Summary
	mode := "full-scan"
	if len(refs) > 0 {
		mode = "event"
		printStatus("Processing %d explicit object(s)", len(refs))
		summary = traverser.ScanObjects(ctx, refs)
	} else {
		printStatus("Performing full bucket scan")
		summary, err = traverser.ScanAll(ctx)
		if err != nil {
			return enhanceError("bucket traversal", err, scanFlags.maxConcurrency)
		}
	}

	reportData := buildReportData(mode, settings.ResultBucket, summary)

	// Keep report files free of ANSI codes
	if scanFlags.outputFile != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	writer := os.Stdout
	if scanFlags.outputFile != "" {
		f, err := os.Create(scanFlags.outputFile)
		if err != nil {
			return enhanceError("output file creation", err, scanFlags.maxConcurrency)
		}
		defer func() { _ = f.Close() }()
		writer = f
	}

	reporter, err := selectReporter(scanFlags.outputFormat, writer)
	if err != nil {
		return err
	}
	if err := reporter.Generate(reportData); err != nil {
		return enhanceError("report generation", err, scanFlags.maxConcurrency)
	}

	// Per-object failures are in the report and logs; the command still
	// succeeds so schedulers and triggers are never blocked.
	slog.Info("Scan complete",
		slog.String("mode", mode),
		slog.Int("buckets_scanned", summary.BucketsScanned),
		slog.Int("objects_processed", summary.Processed()),
		slog.Int("objects_skipped", summary.Skipped()),
		slog.Int("objects_failed", summary.Failed()),
		slog.Int("findings", summary.TotalFindings()),
		slog.Duration("duration", time.Since(start)),
	)

	return nil
}

func applyConfigToScanFlags(cmd *cobra.Command) {
	if !cmd.Flags().Lookup("aws-region").Changed && cfg.Region != "" {
		scanFlags.awsRegion = cfg.Region
	}
	if !cmd.Flags().Lookup("result-bucket").Changed && cfg.ResultBucket != "" {
		scanFlags.resultBucket = cfg.ResultBucket
	}
	if !cmd.Flags().Lookup("exclude-buckets").Changed && len(cfg.ExcludeBuckets) > 0 {
		scanFlags.excludeBuckets = cfg.ExcludeBuckets
	}
	if !cmd.Flags().Lookup("concurrency").Changed && cfg.Concurrency > 0 {
		scanFlags.maxConcurrency = cfg.Concurrency
	}
	if !cmd.Flags().Lookup("format").Changed && cfg.Format != "" {
		scanFlags.outputFormat = cfg.Format
	}
	if !cmd.Flags().Lookup("timeout").Changed {
		if d := cfg.TimeoutDuration(); d > 0 {
			scanFlags.timeout = d
		}
	}
}
