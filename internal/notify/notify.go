// Package notify delivers finding sets to an external sink. Delivery is
// best-effort: callers log failures and never let them affect stored scan
// state.
package notify

import (
	"context"

	"github.com/ppiankov/piispectre/internal/extract"
	"github.com/ppiankov/piispectre/internal/store"
)

// Notifier delivers one object's finding set downstream and returns the
// sink's message id.
type Notifier interface {
	Notify(ctx context.Context, ref store.ObjectRef, findings []extract.Finding) (string, error)
}

// Source identifies the scanned object inside the message envelope.
type Source struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Result summarizes the findings inside the message envelope.
type Result struct {
	Type     string            `json:"type"`
	Count    int               `json:"count"`
	Data     []string          `json:"data"`
	Detailed []extract.Finding `json:"detailed_results"`
}

// Message is the JSON envelope sent to the sink. Field names are part of
// the consumer contract.
type Message struct {
	Source    Source `json:"source"`
	Timestamp string `json:"timestamp"`
	Result    Result `json:"result"`
}

// NewMessage builds the envelope for one object's findings.
func NewMessage(ref store.ObjectRef, findings []extract.Finding, timestamp string) Message {
	values := make([]string, 0, len(findings))
	for _, f := range findings {
		values = append(values, f.Value)
	}
	return Message{
		Source:    Source{Bucket: ref.Bucket, Key: ref.Key},
		Timestamp: timestamp,
		Result: Result{
			Type:     string(extract.KindEmail),
			Count:    len(findings),
			Data:     values,
			Detailed: findings,
		},
	}
}
