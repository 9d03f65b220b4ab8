package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/ppiankov/piispectre/internal/extract"
	"github.com/ppiankov/piispectre/internal/store"
)

// QueueAPI is the slice of the AWS SQS client this tool uses.
type QueueAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

var _ QueueAPI = (*sqs.Client)(nil)

// SQSNotifier sends finding envelopes to an SQS queue.
type SQSNotifier struct {
	api      QueueAPI
	queueURL string
	now      func() time.Time
}

// NewSQSNotifier creates a notifier targeting queueURL.
func NewSQSNotifier(cfg aws.Config, queueURL string) *SQSNotifier {
	return &SQSNotifier{
		api:      sqs.NewFromConfig(cfg),
		queueURL: queueURL,
		now:      time.Now,
	}
}

// NewSQSNotifierFromAPI wraps an existing API implementation, for tests.
func NewSQSNotifierFromAPI(api QueueAPI, queueURL string) *SQSNotifier {
	return &SQSNotifier{api: api, queueURL: queueURL, now: time.Now}
}

// Notify sends one envelope and returns the SQS message id.
func (n *SQSNotifier) Notify(ctx context.Context, ref store.ObjectRef, findings []extract.Finding) (string, error) {
	msg := NewMessage(ref, findings, n.now().UTC().Format(time.RFC3339))
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode notification for %s: %w", ref, err)
	}

	out, err := n.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return "", fmt.Errorf("send notification for %s: %w", ref, err)
	}

	if out.MessageId == nil {
		return "", nil
	}
	return *out.MessageId, nil
}

var _ Notifier = (*SQSNotifier)(nil)
