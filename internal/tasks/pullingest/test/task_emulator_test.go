package pullingest_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/pubsub/pstest"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/bionicotaku/order-ingest/internal/infrastructure/schemaregistry"
	"github.com/bionicotaku/order-ingest/internal/models/vo"
	"github.com/bionicotaku/order-ingest/internal/services"
	"github.com/bionicotaku/order-ingest/internal/tasks/pullingest"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/require"
)

func TestTask_ConsumesFromEmulator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logger := log.NewStdLogger(io.Discard)

	server := pstest.NewServer()
	t.Cleanup(func() { _ = server.Close() })

	projectID := "test-project"
	topicID := "orders"
	subscriptionID := "orders-pull"
	topicName := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	_, err := server.GServer.CreateTopic(ctx, &pubsubpb.Topic{Name: topicName})
	require.NoError(t, err)
	_, err = server.GServer.CreateSubscription(ctx, &pubsubpb.Subscription{
		Name:  fmt.Sprintf("projects/%s/subscriptions/%s", projectID, subscriptionID),
		Topic: topicName,
	})
	require.NoError(t, err)

	cfg := gcpubsub.Config{
		ProjectID:        projectID,
		TopicID:          topicID,
		SubscriptionID:   subscriptionID,
		EnableLogging:    boolPtr(false),
		EnableMetrics:    boolPtr(false),
		EmulatorEndpoint: server.Addr,
	}

	publisherComponent, cleanupPublisher, err := gcpubsub.NewComponent(ctx, cfg, gcpubsub.Dependencies{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(cleanupPublisher)
	publisher := gcpubsub.ProvidePublisher(publisherComponent)

	sink := &collectingIngest{}
	sink.delegate = newDelegate(t)

	task, cleanupTask, err := pullingest.ProvideTask(ctx, cfg, gcpubsub.Dependencies{Logger: logger}, sink, logger)
	require.NoError(t, err)
	require.NotNil(t, task)
	t.Cleanup(cleanupTask)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- task.Run(runCtx) }()

	codec, err := goavro.NewCodec(orderSchema)
	require.NoError(t, err)
	avroPayload, err := codec.BinaryFromNative(nil, map[string]any{"order_id": int64(42)})
	require.NoError(t, err)

	_, err = publisher.Publish(ctx, gcpubsub.Message{Data: []byte(`{"order_id": 1}`)})
	require.NoError(t, err)
	_, err = publisher.Publish(ctx, gcpubsub.Message{Data: avroPayload})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 2 }, 10*time.Second, 50*time.Millisecond)

	encodings := map[vo.Encoding]vo.Record{}
	for _, decoded := range sink.snapshot() {
		encodings[decoded.Encoding] = decoded.Record
	}
	require.Contains(t, encodings, vo.EncodingJSON)
	require.Contains(t, encodings, vo.EncodingAvro)
	require.Equal(t, int64(42), encodings[vo.EncodingAvro]["order_id"])
	require.Equal(t, "PENDING", encodings[vo.EncodingAvro]["fulfillment_status"])

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("pull ingest did not stop after cancel")
	}
}

type collectingIngest struct {
	mu       sync.Mutex
	delegate *services.IngestService
	records  []*vo.DecodedRecord
}

func (c *collectingIngest) Ingest(ctx context.Context, payload []byte) (*vo.DecodedRecord, error) {
	decoded, err := c.delegate.Ingest(ctx, payload)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.records = append(c.records, decoded)
	c.mu.Unlock()
	return decoded, nil
}

func (c *collectingIngest) snapshot() []*vo.DecodedRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*vo.DecodedRecord(nil), c.records...)
}

func newDelegate(t *testing.T) *services.IngestService {
	t.Helper()
	schema, err := schemaregistry.ParseSchema("test", "", orderSchema)
	require.NoError(t, err)
	return services.NewIngestService(services.NewDecodeDispatcher(schema), log.NewStdLogger(io.Discard))
}

func boolPtr(v bool) *bool { return &v }
