package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func sampleData() Data {
	return Data{
		Tool:         "piispectre",
		Version:      "0.1.0",
		Timestamp:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Mode:         "full-scan",
		ResultBucket: "scan-results",
		Summary: Summary{
			BucketsScanned:   2,
			BucketsSkipped:   1,
			ObjectsProcessed: 3,
			ObjectsSkipped:   5,
			ObjectsFailed:    1,
			TotalFindings:    4,
		},
		Objects: []Object{
			{Bucket: "data", Key: "notes.txt", Status: "PROCESSED", Findings: 4},
			{Bucket: "data", Key: "old.txt", Status: "SKIPPED", Reason: "unchanged"},
			{Bucket: "data", Key: "flaky.txt", Status: "FAILED", Error: "fetch: connection reset"},
		},
	}
}

func TestJSONReporter_Generate(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf)

	if err := reporter.Generate(sampleData()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var decoded Data
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Summary.TotalFindings != 4 {
		t.Fatalf("expected 4 findings in decoded report, got %d", decoded.Summary.TotalFindings)
	}
	if len(decoded.Objects) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(decoded.Objects))
	}
	if decoded.Objects[1].Reason != "unchanged" {
		t.Fatalf("expected skip reason preserved, got %q", decoded.Objects[1].Reason)
	}
}

func TestJSONReporter_TimestampUTC(t *testing.T) {
	data := sampleData()
	loc := time.FixedZone("UTC+5", 5*3600)
	data.Timestamp = time.Date(2024, 3, 1, 17, 0, 0, 0, loc)

	var buf bytes.Buffer
	if err := NewJSONReporter(&buf).Generate(data); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var decoded Data
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !decoded.Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected UTC timestamp, got %v", decoded.Timestamp)
	}
}
