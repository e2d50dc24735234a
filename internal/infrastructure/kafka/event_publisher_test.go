package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wms-platform/consignment-service/api"
	"github.com/wms-platform/consignment-service/internal/domain"
	"github.com/wms-platform/consignment-service/pkg/cloudevents"
	"github.com/wms-platform/consignment-service/pkg/contracts/asyncapi"
	"github.com/wms-platform/consignment-service/pkg/kafka"
)

type recordingProducer struct {
	err    error
	topics []string
	events []*cloudevents.WMSCloudEvent
}

func (r *recordingProducer) PublishEvent(_ context.Context, topic string, event *cloudevents.WMSCloudEvent) error {
	if r.err != nil {
		return r.err
	}
	r.topics = append(r.topics, topic)
	r.events = append(r.events, event)
	return nil
}

var publishedAt = time.Date(2024, 3, 5, 3, 37, 3, 0, time.UTC)

func newPublisher(t *testing.T, producer *recordingProducer) *EventPublisher {
	t.Helper()
	validator, err := asyncapi.NewEventValidatorFromBytes(api.AsyncAPI)
	require.NoError(t, err)

	factory := cloudevents.NewEventFactory(cloudevents.SourceConsignment).
		WithClock(func() time.Time { return publishedAt })
	p := NewEventPublisher(producer, factory, validator, kafka.Topics.ConsignmentEvents)
	p.now = func() time.Time { return publishedAt }
	return p
}

func bookedConsignment() *domain.Consignment {
	return &domain.Consignment{
		ID:             primitive.NewObjectID(),
		SrNo:           12,
		ConsignmentNo:  "DXOO0503240337",
		Date:           "2024-03-05",
		CustomerID:     primitive.NewObjectID().Hex(),
		Destination:    "Mumbai",
		Zone:           "local",
		Weight:         3,
		BaseRate:       110,
		Total:          110,
		TrackingNumber: "RR20240305033703",
		CreatedBy:      "admin-1",
		CreatedAt:      publishedAt,
		UpdatedAt:      publishedAt,
	}
}

func TestAsyncAPICoversPublishedEvents(t *testing.T) {
	validator, err := asyncapi.NewEventValidatorFromBytes(api.AsyncAPI)
	require.NoError(t, err)
	assert.Equal(t, []string{
		cloudevents.ConsignmentCreated,
		cloudevents.ConsignmentDeleted,
		cloudevents.ConsignmentUpdated,
	}, validator.SupportedEventTypes())
}

func TestEventPublisherConsignmentCreated(t *testing.T) {
	producer := &recordingProducer{}
	p := newPublisher(t, producer)
	c := bookedConsignment()

	require.NoError(t, p.ConsignmentCreated(context.Background(), c))
	require.Len(t, producer.events, 1)

	event := producer.events[0]
	assert.Equal(t, kafka.Topics.ConsignmentEvents, producer.topics[0])
	assert.Equal(t, cloudevents.ConsignmentCreated, event.Type)
	assert.Equal(t, cloudevents.SourceConsignment, event.Source)
	assert.Equal(t, "consignment/"+c.ID.Hex(), event.Subject)
	assert.Equal(t, publishedAt, event.Time)

	raw, err := json.Marshal(event.Data)
	require.NoError(t, err)
	var data map[string]any
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, c.ID.Hex(), data["consignmentId"])
	assert.Equal(t, 12.0, data["srNo"])
	assert.Equal(t, "2024-03-05T03:37:03Z", data["createdAt"])
	assert.NotContains(t, data, "invoiceId")
}

func TestEventPublisherRejectsInvalidPayload(t *testing.T) {
	producer := &recordingProducer{}
	p := newPublisher(t, producer)
	c := bookedConsignment()
	c.ConsignmentNo = "not-a-code"

	err := p.ConsignmentCreated(context.Background(), c)
	assert.ErrorContains(t, err, "refusing to publish")
	assert.Empty(t, producer.events)
}

func TestEventPublisherUpdatedAndDeleted(t *testing.T) {
	producer := &recordingProducer{}
	p := newPublisher(t, producer)
	c := bookedConsignment()
	c.UpdatedBy = "admin-2"

	require.NoError(t, p.ConsignmentUpdated(context.Background(), c))
	require.NoError(t, p.ConsignmentDeleted(context.Background(), c.ID.Hex(), "admin-2"))

	require.Len(t, producer.events, 2)
	assert.Equal(t, cloudevents.ConsignmentUpdated, producer.events[0].Type)
	assert.Equal(t, cloudevents.ConsignmentDeleted, producer.events[1].Type)

	deleted, ok := producer.events[1].Data.(ConsignmentDeletedData)
	require.True(t, ok)
	assert.Equal(t, "admin-2", deleted.DeletedBy)
	assert.Equal(t, "2024-03-05T03:37:03Z", deleted.DeletedAt)
}

func TestEventPublisherProducerFailure(t *testing.T) {
	producer := &recordingProducer{err: assert.AnError}
	p := newPublisher(t, producer)

	err := p.ConsignmentCreated(context.Background(), bookedConsignment())
	assert.ErrorIs(t, err, assert.AnError)
}
