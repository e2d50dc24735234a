package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDerivationWarning(t *testing.T) {
	m := New(DefaultConfig("consignment-service"))

	m.RecordDerivationWarning("shipment")
	m.RecordDerivationWarning("shipment")
	m.RecordDerivationWarning("invoice")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DerivationWarnings.WithLabelValues("consignment-service", "shipment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DerivationWarnings.WithLabelValues("consignment-service", "invoice")))
}

func TestRecordConsignmentCreated(t *testing.T) {
	m := New(DefaultConfig("consignment-service"))

	m.RecordConsignmentCreated("local", 118)
	m.RecordConsignmentCreated("local", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ConsignmentsCreated.WithLabelValues("consignment-service", "local")))
	assert.Equal(t, 118.0, testutil.ToFloat64(m.InvoiceAmountsBilled.WithLabelValues("consignment-service", "local")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New(DefaultConfig("consignment-service"))
	m.RecordHTTPRequest(http.MethodPost, "/api/v1/consignments", http.StatusCreated, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wms_http_requests_total")
}
