// Package cloudevents defines the CloudEvents v1.0 envelope used on Kafka.
package cloudevents

import (
	"time"
)

// Event types emitted by the consignment service
const (
	ConsignmentCreated = "wms.consignment.created"
	ConsignmentUpdated = "wms.consignment.updated"
	ConsignmentDeleted = "wms.consignment.deleted"
)

// SourceConsignment is the CloudEvents source of this service
const SourceConsignment = "/wms/consignment-service"

// WMSCloudEvent is a CloudEvents v1.0 structured-mode event
type WMSCloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// extensions
	CorrelationID string `json:"wmscorrelationid,omitempty"`
	ActorID       string `json:"wmsactorid,omitempty"`
	TraceParent   string `json:"traceparent,omitempty"`
	TraceState    string `json:"tracestate,omitempty"`
}
