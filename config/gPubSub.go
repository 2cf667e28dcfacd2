package config

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// PushEnvelope is the body Pub/Sub push subscriptions POST to the service.
type PushEnvelope struct {
	Message struct {
		Data       []byte            `json:"data,omitempty"`
		ID         string            `json:"id"`
		Attributes map[string]string `json:"attributes,omitempty"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// Event is the payload published for domain events.
type Event struct {
	Type          string          `json:"type"`
	EntityId      int             `json:"entity_id"`
	CorrelationId string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

var ErrPubSubDisabled = errors.New("pubsub disabled")

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return ""
}

// EventsTopic is the topic domain events go to; empty disables publishing.
func EventsTopic() string {
	return strings.TrimSpace(os.Getenv("PUBSUB_EVENTS_TOPIC"))
}

// GetPubSubClient lazily creates the shared client.
// It uses Application Default Credentials unless PUBSUB_CREDENTIALS_JSON is provided.
func GetPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, ErrPubSubDisabled
	}

	var (
		c   *pubsub.Client
		err error
	)
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		c, err = pubsub.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	pubsubClient = c
	log.Printf("pubsub client ready (project_id=%s)", projectID)
	return pubsubClient, nil
}

// PublishJSON marshals obj and publishes it to topicName, waiting for the server id.
func PublishJSON(ctx context.Context, topicName string, obj any, attributes map[string]string) (string, error) {
	if topicName == "" {
		return "", ErrPubSubDisabled
	}
	client, err := GetPubSubClient(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	result := client.Topic(topicName).Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	})
	return result.Get(ctx)
}

func ClosePubSub() {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		_ = pubsubClient.Close()
		pubsubClient = nil
	}
}
