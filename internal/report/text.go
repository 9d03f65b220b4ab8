package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// TextReporter generates human-readable text reports
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new text reporter
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{writer: w}
}

// Generate generates a text report
func (r *TextReporter) Generate(data Data) error {
	// Header
	fmt.Fprintf(r.writer, "PIISpectre Report\n")
	fmt.Fprintf(r.writer, "=================\n\n")
	fmt.Fprintf(r.writer, "Scan Time: %s\n", data.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.writer, "Mode: %s\n", data.Mode)
	if data.ResultBucket != "" {
		fmt.Fprintf(r.writer, "Result Bucket: %s\n", data.ResultBucket)
	}
	fmt.Fprintf(r.writer, "\n")

	r.printSummary(data.Summary)
	r.printObjects(data.Objects)

	return nil
}

func (r *TextReporter) printSummary(summary Summary) {
	fmt.Fprintf(r.writer, "Summary\n")
	fmt.Fprintf(r.writer, "-------\n")
	fmt.Fprintf(r.writer, "Buckets Scanned: %d\n", summary.BucketsScanned)
	fmt.Fprintf(r.writer, "Buckets Skipped: %d\n", summary.BucketsSkipped)
	fmt.Fprintf(r.writer, "Objects Processed: %d\n", summary.ObjectsProcessed)
	fmt.Fprintf(r.writer, "Objects Skipped: %d\n", summary.ObjectsSkipped)

	if summary.ObjectsFailed > 0 {
		fmt.Fprintf(r.writer, "%s: %d\n",
			color.RedString("Objects Failed"),
			summary.ObjectsFailed)
	}

	if summary.TotalFindings > 0 {
		fmt.Fprintf(r.writer, "%s: %d\n",
			color.YellowString("PII Findings"),
			summary.TotalFindings)
	} else {
		fmt.Fprintf(r.writer, "PII Findings: 0\n")
	}

	fmt.Fprintf(r.writer, "\n")
}

func (r *TextReporter) printObjects(objects []Object) {
	var withFindings, failures []Object
	for _, obj := range objects {
		switch {
		case obj.Status == "FAILED":
			failures = append(failures, obj)
		case obj.Findings > 0:
			withFindings = append(withFindings, obj)
		}
	}

	if len(withFindings) > 0 {
		fmt.Fprintf(r.writer, "%s\n", color.YellowString("Objects With Findings"))
		fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", 50))
		sortObjects(withFindings)
		for _, obj := range withFindings {
			fmt.Fprintf(r.writer, "  %s: %s/%s (%d)\n",
				color.YellowString("[PII]"),
				obj.Bucket, obj.Key, obj.Findings)
		}
		fmt.Fprintf(r.writer, "\n")
	}

	if len(failures) > 0 {
		fmt.Fprintf(r.writer, "%s\n", color.RedString("Failed Objects"))
		fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", 50))
		sortObjects(failures)
		for _, obj := range failures {
			fmt.Fprintf(r.writer, "  %s: %s/%s\n",
				color.RedString("[FAILED]"),
				obj.Bucket, obj.Key)
			if obj.Error != "" {
				fmt.Fprintf(r.writer, "    %s\n", obj.Error)
			}
		}
		fmt.Fprintf(r.writer, "\n")
	}
}

func sortObjects(objects []Object) {
	sort.Slice(objects, func(i, j int) bool {
		if objects[i].Bucket != objects[j].Bucket {
			return objects[i].Bucket < objects[j].Bucket
		}
		return objects[i].Key < objects[j].Key
	})
}
