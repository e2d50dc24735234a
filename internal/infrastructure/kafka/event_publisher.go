package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/wms-platform/consignment-service/internal/domain"
	"github.com/wms-platform/consignment-service/pkg/cloudevents"
	"github.com/wms-platform/consignment-service/pkg/contracts/asyncapi"
	"github.com/wms-platform/consignment-service/pkg/kafka"
)

// ConsignmentCreatedData is the payload of wms.consignment.created
type ConsignmentCreatedData struct {
	ConsignmentID  string  `json:"consignmentId"`
	SrNo           int64   `json:"srNo"`
	ConsignmentNo  string  `json:"consignmentNo"`
	Date           string  `json:"date"`
	CustomerID     string  `json:"customerId,omitempty"`
	Destination    string  `json:"destination"`
	Zone           string  `json:"zone"`
	Weight         float64 `json:"weight"`
	Total          float64 `json:"total"`
	ShipmentID     string  `json:"shipmentId,omitempty"`
	TrackingNumber string  `json:"trackingNumber,omitempty"`
	InvoiceID      string  `json:"invoiceId,omitempty"`
	InvoiceNo      string  `json:"invoiceNo,omitempty"`
	CreatedBy      string  `json:"createdBy,omitempty"`
	CreatedAt      string  `json:"createdAt"`
}

// ConsignmentUpdatedData is the payload of wms.consignment.updated
type ConsignmentUpdatedData struct {
	ConsignmentID string  `json:"consignmentId"`
	SrNo          int64   `json:"srNo"`
	ConsignmentNo string  `json:"consignmentNo"`
	Zone          string  `json:"zone,omitempty"`
	Weight        float64 `json:"weight"`
	Total         float64 `json:"total"`
	UpdatedBy     string  `json:"updatedBy,omitempty"`
	UpdatedAt     string  `json:"updatedAt"`
}

// ConsignmentDeletedData is the payload of wms.consignment.deleted
type ConsignmentDeletedData struct {
	ConsignmentID string `json:"consignmentId"`
	DeletedBy     string `json:"deletedBy,omitempty"`
	DeletedAt     string `json:"deletedAt"`
}

// EventPublisher publishes consignment lifecycle events to Kafka as CloudEvents
type EventPublisher struct {
	producer     kafka.EventPublisher
	eventFactory *cloudevents.EventFactory
	validator    *asyncapi.EventValidator
	topic        string
	now          func() time.Time
}

// NewEventPublisher creates a new Kafka-based event publisher. validator may be nil.
func NewEventPublisher(
	producer kafka.EventPublisher,
	eventFactory *cloudevents.EventFactory,
	validator *asyncapi.EventValidator,
	topic string,
) *EventPublisher {
	return &EventPublisher{
		producer:     producer,
		eventFactory: eventFactory,
		validator:    validator,
		topic:        topic,
		now:          time.Now,
	}
}

// ConsignmentCreated publishes wms.consignment.created
func (p *EventPublisher) ConsignmentCreated(ctx context.Context, c *domain.Consignment) error {
	return p.publish(ctx, cloudevents.ConsignmentCreated, c.ID.Hex(), ConsignmentCreatedData{
		ConsignmentID:  c.ID.Hex(),
		SrNo:           c.SrNo,
		ConsignmentNo:  c.ConsignmentNo,
		Date:           c.Date,
		CustomerID:     c.CustomerID,
		Destination:    c.Destination,
		Zone:           c.Zone,
		Weight:         c.Weight,
		Total:          c.Total,
		ShipmentID:     c.ShipmentID,
		TrackingNumber: c.TrackingNumber,
		InvoiceID:      c.InvoiceID,
		InvoiceNo:      c.InvoiceNo,
		CreatedBy:      c.CreatedBy,
		CreatedAt:      c.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// ConsignmentUpdated publishes wms.consignment.updated
func (p *EventPublisher) ConsignmentUpdated(ctx context.Context, c *domain.Consignment) error {
	return p.publish(ctx, cloudevents.ConsignmentUpdated, c.ID.Hex(), ConsignmentUpdatedData{
		ConsignmentID: c.ID.Hex(),
		SrNo:          c.SrNo,
		ConsignmentNo: c.ConsignmentNo,
		Zone:          c.Zone,
		Weight:        c.Weight,
		Total:         c.Total,
		UpdatedBy:     c.UpdatedBy,
		UpdatedAt:     c.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// ConsignmentDeleted publishes wms.consignment.deleted
func (p *EventPublisher) ConsignmentDeleted(ctx context.Context, consignmentID, actorID string) error {
	return p.publish(ctx, cloudevents.ConsignmentDeleted, consignmentID, ConsignmentDeletedData{
		ConsignmentID: consignmentID,
		DeletedBy:     actorID,
		DeletedAt:     p.now().UTC().Format(time.RFC3339),
	})
}

func (p *EventPublisher) publish(ctx context.Context, eventType, consignmentID string, data interface{}) error {
	if p.validator != nil {
		if err := p.validator.ValidatePayload(eventType, data); err != nil {
			return fmt.Errorf("refusing to publish %s: %w", eventType, err)
		}
	}

	ce := p.eventFactory.CreateEvent(ctx, eventType, "consignment/"+consignmentID, data)

	if err := p.producer.PublishEvent(ctx, p.topic, ce); err != nil {
		return fmt.Errorf("failed to publish event to kafka: %w", err)
	}
	return nil
}

// GetTopic returns the topic this publisher publishes to
func (p *EventPublisher) GetTopic() string {
	return p.topic
}
