package scan

import "github.com/ppiankov/piispectre/internal/store"

// Status classifies what happened to one object
type Status string

const (
	StatusProcessed Status = "PROCESSED"
	StatusSkipped   Status = "SKIPPED"
	StatusFailed    Status = "FAILED"
)

// Skip reasons
const (
	SkipUnsupportedType = "unsupported-type"
	SkipUnchanged       = "unchanged"
	SkipDecode          = "decode-skip"
)

// Outcome is the per-object result of a coordinator run.
type Outcome struct {
	Ref      store.ObjectRef
	Status   Status
	Reason   string
	Findings int
	Err      error
}

func skipped(ref store.ObjectRef, reason string) Outcome {
	return Outcome{Ref: ref, Status: StatusSkipped, Reason: reason}
}

func processed(ref store.ObjectRef, findings int) Outcome {
	return Outcome{Ref: ref, Status: StatusProcessed, Findings: findings}
}

func failed(ref store.ObjectRef, err error) Outcome {
	return Outcome{Ref: ref, Status: StatusFailed, Err: err}
}

// Summary aggregates outcomes across one traversal.
type Summary struct {
	Outcomes       []Outcome
	BucketsScanned int
	BucketsSkipped int
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
}

// Processed counts objects that went through the full pipeline.
func (s *Summary) Processed() int { return s.count(StatusProcessed) }

// Skipped counts objects short-circuited before extraction.
func (s *Summary) Skipped() int { return s.count(StatusSkipped) }

// Failed counts objects aborted by I/O errors.
func (s *Summary) Failed() int { return s.count(StatusFailed) }

// TotalFindings sums findings across processed objects.
func (s *Summary) TotalFindings() int {
	total := 0
	for _, o := range s.Outcomes {
		total += o.Findings
	}
	return total
}

func (s *Summary) count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
