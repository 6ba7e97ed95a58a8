package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// AuditEvent is published after an import or export run completes.
type AuditEvent struct {
	Action        string    `json:"action"` // "import" | "export"
	CorrelationId string    `json:"correlation_id"`
	Actor         string    `json:"actor"`
	BoardCount    int       `json:"board_count"`
	SkippedRows   int       `json:"skipped_rows"`
	OccurredAt    time.Time `json:"occurred_at"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

func init() {
	godotenv.Load()
}

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return ""
}

func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("pubsub project id not configured")
	}

	var opts []option.ClientOption
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	pubsubClient = client
	return client, nil
}

// PublishAuditEvent publishes an audit event to the AUDIT_TOPIC topic.
// Best-effort: callers log failures but never fail the operation on them.
func PublishAuditEvent(ctx context.Context, event *AuditEvent) error {
	if !AuditEventsEnabled() {
		return nil
	}
	topicName := os.Getenv("AUDIT_TOPIC")
	if topicName == "" {
		return errors.New("AUDIT_TOPIC not configured")
	}

	client, err := getPubSubClient(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := client.Topic(topicName)
	result := topic.Publish(ctx, &pubsub.Message{Data: data})
	_, err = result.Get(ctx)
	return err
}
