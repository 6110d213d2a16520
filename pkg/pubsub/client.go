package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const publishTimeout = 10 * time.Second

var errProjectIDRequired = errors.New("gcp project id is required")

// Event is the envelope published for every order lifecycle change.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher sends JSON events to one topic. A nil *Publisher drops events,
// which is how a deployment without a topic runs.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
}

// NewPublisher connects to the orders topic. It returns (nil, nil) when no
// topic is configured.
func NewPublisher(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger, extra ...option.ClientOption) (*Publisher, error) {
	topic := strings.TrimSpace(cfg.OrdersTopic)
	if topic == "" {
		return nil, nil
	}
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}

	var opts []option.ClientOption
	switch {
	case gcp.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case gcp.ApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	opts = append(opts, extra...)

	client, err := pubsub.NewClient(ctx, gcp.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	fullName := topicResourceName(gcp.ProjectID, topic)
	p := &Publisher{
		client:    client,
		publisher: client.Publisher(fullName),
		topic:     fullName,
	}

	if err := p.Ping(ctx); err != nil {
		_ = p.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topic", fullName), "pubsub publisher initialized")
	}
	return p, nil
}

// Publish serializes the event and waits for the server ack.
func (p *Publisher) Publish(ctx context.Context, eventType string, attrs map[string]string, data any) error {
	if p == nil || p.publisher == nil {
		return nil
	}

	payload, err := json.Marshal(Event{Type: eventType, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	attributes := map[string]string{"event_type": eventType}
	for k, v := range attrs {
		attributes[k] = v
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	res := p.publisher.Publish(ctx, &pubsub.Message{Data: payload, Attributes: attributes})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("publish %s to %s: %w", eventType, p.topic, err)
	}
	return nil
}

// Ping verifies the topic exists.
func (p *Publisher) Ping(ctx context.Context) error {
	if p == nil || p.client == nil {
		return errors.New("pubsub publisher not initialized")
	}
	_, err := p.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: p.topic})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("topic %q does not exist", p.topic)
		}
		return fmt.Errorf("checking topic %q: %w", p.topic, err)
	}
	return nil
}

// Close flushes pending messages and releases the client.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	if p.publisher != nil {
		p.publisher.Stop()
	}
	return p.client.Close()
}

func topicResourceName(projectID, name string) string {
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/topics/") {
		return name
	}
	return fmt.Sprintf("projects/%s/topics/%s", strings.TrimSpace(projectID), name)
}
