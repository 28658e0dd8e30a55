//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/aew-track-map/internal/adapter/kafka"
	"github.com/couchcryptid/aew-track-map/internal/config"
	"github.com/couchcryptid/aew-track-map/internal/controller"
	"github.com/couchcryptid/aew-track-map/internal/domain"
	"github.com/couchcryptid/aew-track-map/internal/observability"
	"github.com/couchcryptid/aew-track-map/internal/render"
	"github.com/paulmach/orb"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-aew-interactions"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("aew-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controllerBroker, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controllerBroker.Host, strconv.Itoa(controllerBroker.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type publishedEvent struct {
	Event   domain.InteractionEvent
	Key     string
	Headers map[string]string
}

func readEvent(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedEvent {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read interaction topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.InteractionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	return publishedEvent{Event: event, Key: string(msg.Key), Headers: headers}
}

type fixedFetcher struct {
	tracks []domain.Track
}

func (f fixedFetcher) FetchYear(_ context.Context, year string) ([]domain.Track, error) {
	if year != "2012" {
		return nil, fmt.Errorf("%w: %s", domain.ErrYearNotFound, year)
	}
	return f.tracks, nil
}

// TestInteractionEventsReachKafka drives the controller through a load, a
// failed load, a selection and a reset, and reads the events back in order.
func TestInteractionEventsReachKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaEnabled: true,
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}
	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	metrics := observability.NewMetricsForTesting()
	surface := render.NewSurface(discardLogger(), metrics)
	tracks := []domain.Track{{
		SystemID:    "2012_07",
		Year:        2012,
		Coordinates: []orb.Point{{-20, 12}, {-30, 13}},
		Samples: []domain.Sample{
			{Time: "2012-08-15 00:00", Strength: 2e-5, Month: 8},
			{Time: "2012-08-15 06:00", Strength: 4e-5, Month: 8},
		},
		Months: []int{8},
	}}
	ctrl := controller.New(surface, fixedFetcher{tracks: tracks}, discardLogger(), metrics,
		controller.WithEventSink(publisher))

	require.NoError(t, ctrl.LoadDataForYear(ctx, "2012"))
	require.NoError(t, ctrl.Select(0, 1))
	ctrl.MapDoubleClick(ctx)
	require.Error(t, ctrl.LoadDataForYear(ctx, "1999"))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	loaded := readEvent(ctx, t, consumer)
	assert.Equal(t, domain.EventYearLoaded, loaded.Event.Type)
	assert.Equal(t, "2012", loaded.Event.Year)
	assert.Equal(t, 1, loaded.Event.Tracks)
	assert.Equal(t, loaded.Event.ID, loaded.Key)
	assert.Equal(t, domain.EventYearLoaded, loaded.Headers["event_type"])
	assert.NotEmpty(t, loaded.Headers["occurred_at"])

	selected := readEvent(ctx, t, consumer)
	assert.Equal(t, domain.EventTrackSelected, selected.Event.Type)
	assert.Equal(t, "2012_07", selected.Event.SystemID)
	assert.Equal(t, "2012-08-15 06:00", selected.Event.Date)
	assert.Equal(t, "4.00", selected.Event.Value)

	reset := readEvent(ctx, t, consumer)
	assert.Equal(t, domain.EventHighlightReset, reset.Event.Type)

	failed := readEvent(ctx, t, consumer)
	assert.Equal(t, domain.EventYearLoadFailed, failed.Event.Type)
	assert.Equal(t, "1999", failed.Event.Year)
	assert.Equal(t, "Year 1999 not found", failed.Event.Detail)
}
