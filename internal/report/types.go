package report

import "time"

// Reporter generates a run report in a specific format
type Reporter interface {
	Generate(data Data) error
}

// Object is one object's outcome in the report.
type Object struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Findings int    `json:"findings"`
	Error    string `json:"error,omitempty"`
}

// Summary contains high-level run totals
type Summary struct {
	BucketsScanned   int `json:"buckets_scanned"`
	BucketsSkipped   int `json:"buckets_skipped"`
	ObjectsProcessed int `json:"objects_processed"`
	ObjectsSkipped   int `json:"objects_skipped"`
	ObjectsFailed    int `json:"objects_failed"`
	TotalFindings    int `json:"total_findings"`
}

// Data is the complete run report
type Data struct {
	Tool         string    `json:"tool"`
	Version      string    `json:"version"`
	Timestamp    time.Time `json:"timestamp"`
	Mode         string    `json:"mode"`
	ResultBucket string    `json:"result_bucket"`
	Summary      Summary   `json:"summary"`
	Objects      []Object  `json:"objects,omitempty"`
}
