package pubsub

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"cloud.google.com/go/pubsub/v2/pstest"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func TestNewPublisherDisabledWithoutTopic(t *testing.T) {
	p, err := NewPublisher(context.Background(), config.GCPConfig{}, config.PubSubConfig{}, nil)
	require.NoError(t, err)
	require.Nil(t, p)

	// nil publishers drop events
	require.NoError(t, p.Publish(context.Background(), "order.created", nil, map[string]string{}))
	require.NoError(t, p.Close())
}

func TestNewPublisherRequiresProject(t *testing.T) {
	_, err := NewPublisher(context.Background(), config.GCPConfig{}, config.PubSubConfig{OrdersTopic: "orders"}, nil)
	require.ErrorIs(t, err, errProjectIDRequired)
}

func TestPublishDeliversEnvelope(t *testing.T) {
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })
	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = pubsubpb.NewPublisherClient(conn).CreateTopic(context.Background(), &pubsubpb.Topic{Name: "projects/demo/topics/orders"})
	require.NoError(t, err)

	p, err := NewPublisher(context.Background(),
		config.GCPConfig{ProjectID: "demo"},
		config.PubSubConfig{OrdersTopic: "orders"},
		nil,
		option.WithGRPCConn(conn),
	)
	require.NoError(t, err)
	require.NotNil(t, p)
	t.Cleanup(func() { _ = p.Close() })

	err = p.Publish(context.Background(), "order.created", map[string]string{"order_id": "o-1"}, map[string]any{"orderId": "o-1", "total": 171})
	require.NoError(t, err)

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "order.created", msgs[0].Attributes["event_type"])
	require.Equal(t, "o-1", msgs[0].Attributes["order_id"])

	var env struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msgs[0].Data, &env))
	require.Equal(t, "order.created", env.Type)
	require.Equal(t, "o-1", env.Data["orderId"])
}

func TestNewPublisherFailsForMissingTopic(t *testing.T) {
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })
	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = NewPublisher(context.Background(),
		config.GCPConfig{ProjectID: "demo"},
		config.PubSubConfig{OrdersTopic: "missing"},
		nil,
		option.WithGRPCConn(conn),
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestTopicResourceName(t *testing.T) {
	require.Equal(t, "projects/p/topics/orders", topicResourceName("p", "orders"))
	require.Equal(t, "projects/x/topics/y", topicResourceName("p", "projects/x/topics/y"))
}
