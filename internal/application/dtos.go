package application

import (
	"strings"
	"time"

	"github.com/wms-platform/consignment-service/internal/domain"
)

// CreateConsignmentCommand represents the command to book a consignment
type CreateConsignmentCommand struct {
	Date               string   `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Name               string   `json:"name" binding:"max=200"`
	CustomerID         string   `json:"customerId" binding:"omitempty,objectid"`
	Destination        string   `json:"destination" binding:"required,max=200"`
	DestinationCity    string   `json:"destinationCity" binding:"max=100"`
	DestinationState   string   `json:"destinationState" binding:"max=100"`
	DestinationPincode string   `json:"destinationPincode" binding:"omitempty,pincode"`
	Pieces             int      `json:"pieces" binding:"gte=0"`
	Weight             float64  `json:"weight" binding:"gte=0"`
	ProductName        string   `json:"productName" binding:"max=200"`
	Value              float64  `json:"value" binding:"gte=0"`
	Zone               string   `json:"zone" binding:"omitempty,zone"`
	BaseRate           float64  `json:"baseRate" binding:"gte=0"`
	DocketCharges      float64  `json:"docketCharges" binding:"gte=0"`
	ODACharge          float64  `json:"odaCharge" binding:"gte=0"`
	FOV                float64  `json:"fov" binding:"gte=0"`
	FuelChargePercent  *float64 `json:"fuelChargePercent" binding:"omitempty,gte=0,lte=100"`
	GSTPercent         *float64 `json:"gstPercent" binding:"omitempty,gte=0,lte=100"`
	Box1Dimensions     string   `json:"box1Dimensions" binding:"max=50"`
	Box2Dimensions     string   `json:"box2Dimensions" binding:"max=50"`
	Box3Dimensions     string   `json:"box3Dimensions" binding:"max=50"`
}

// toConsignment normalises the command into an unsaved consignment
func (cmd CreateConsignmentCommand) toConsignment() (*domain.Consignment, error) {
	pieces := cmd.Pieces
	if pieces == 0 {
		pieces = 1
	}
	c := &domain.Consignment{
		Date:               strings.TrimSpace(cmd.Date),
		Name:               strings.TrimSpace(cmd.Name),
		CustomerID:         strings.TrimSpace(cmd.CustomerID),
		Destination:        strings.TrimSpace(cmd.Destination),
		DestinationCity:    strings.TrimSpace(cmd.DestinationCity),
		DestinationState:   strings.TrimSpace(cmd.DestinationState),
		DestinationPincode: strings.TrimSpace(cmd.DestinationPincode),
		Pieces:             pieces,
		Weight:             cmd.Weight,
		ProductName:        strings.TrimSpace(cmd.ProductName),
		Value:              cmd.Value,
		Zone:               domain.NormalizeZone(cmd.Zone),
		BaseRate:           cmd.BaseRate,
		DocketCharges:      cmd.DocketCharges,
		ODACharge:          cmd.ODACharge,
		FOV:                cmd.FOV,
		FuelChargePercent:  cmd.FuelChargePercent,
		GSTPercent:         cmd.GSTPercent,
		Box1Dimensions:     strings.TrimSpace(cmd.Box1Dimensions),
		Box2Dimensions:     strings.TrimSpace(cmd.Box2Dimensions),
		Box3Dimensions:     strings.TrimSpace(cmd.Box3Dimensions),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateConsignmentCommand represents a partial update. Absent fields are left untouched.
type UpdateConsignmentCommand struct {
	Date               *string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Name               *string  `json:"name" binding:"omitempty,max=200"`
	CustomerID         *string  `json:"customerId" binding:"omitempty,objectid"`
	Destination        *string  `json:"destination" binding:"omitempty,min=1,max=200"`
	DestinationCity    *string  `json:"destinationCity" binding:"omitempty,max=100"`
	DestinationState   *string  `json:"destinationState" binding:"omitempty,max=100"`
	DestinationPincode *string  `json:"destinationPincode" binding:"omitempty,pincode"`
	Pieces             *int     `json:"pieces" binding:"omitempty,gte=0"`
	Weight             *float64 `json:"weight" binding:"omitempty,gte=0"`
	ProductName        *string  `json:"productName" binding:"omitempty,max=200"`
	Value              *float64 `json:"value" binding:"omitempty,gte=0"`
	Zone               *string  `json:"zone" binding:"omitempty,zone"`
	BaseRate           *float64 `json:"baseRate" binding:"omitempty,gte=0"`
	DocketCharges      *float64 `json:"docketCharges" binding:"omitempty,gte=0"`
	ODACharge          *float64 `json:"odaCharge" binding:"omitempty,gte=0"`
	FOV                *float64 `json:"fov" binding:"omitempty,gte=0"`
	FuelChargePercent  *float64 `json:"fuelChargePercent" binding:"omitempty,gte=0,lte=100"`
	GSTPercent         *float64 `json:"gstPercent" binding:"omitempty,gte=0,lte=100"`
	Box1Dimensions     *string  `json:"box1Dimensions" binding:"omitempty,max=50"`
	Box2Dimensions     *string  `json:"box2Dimensions" binding:"omitempty,max=50"`
	Box3Dimensions     *string  `json:"box3Dimensions" binding:"omitempty,max=50"`
}

func (cmd UpdateConsignmentCommand) toPatch() domain.ConsignmentPatch {
	return domain.ConsignmentPatch{
		Date:               cmd.Date,
		Name:               cmd.Name,
		CustomerID:         cmd.CustomerID,
		Destination:        cmd.Destination,
		DestinationCity:    cmd.DestinationCity,
		DestinationState:   cmd.DestinationState,
		DestinationPincode: cmd.DestinationPincode,
		Pieces:             cmd.Pieces,
		Weight:             cmd.Weight,
		ProductName:        cmd.ProductName,
		Value:              cmd.Value,
		Zone:               cmd.Zone,
		BaseRate:           cmd.BaseRate,
		DocketCharges:      cmd.DocketCharges,
		ODACharge:          cmd.ODACharge,
		FOV:                cmd.FOV,
		FuelChargePercent:  cmd.FuelChargePercent,
		GSTPercent:         cmd.GSTPercent,
		Box1Dimensions:     cmd.Box1Dimensions,
		Box2Dimensions:     cmd.Box2Dimensions,
		Box3Dimensions:     cmd.Box3Dimensions,
	}
}

// QuoteCommand asks for the charges a consignment would carry, without booking it
type QuoteCommand struct {
	CustomerID        string   `json:"customerId" binding:"omitempty,objectid"`
	Zone              string   `json:"zone" binding:"omitempty,zone"`
	Weight            float64  `json:"weight" binding:"gte=0"`
	BaseRate          float64  `json:"baseRate" binding:"gte=0"`
	DocketCharges     float64  `json:"docketCharges" binding:"gte=0"`
	ODACharge         float64  `json:"odaCharge" binding:"gte=0"`
	FOV               float64  `json:"fov" binding:"gte=0"`
	FuelChargePercent *float64 `json:"fuelChargePercent" binding:"omitempty,gte=0,lte=100"`
	GSTPercent        *float64 `json:"gstPercent" binding:"omitempty,gte=0,lte=100"`
}

// ListConsignmentsQuery represents the query to list consignments
type ListConsignmentsQuery struct {
	Page       int64  `form:"page" binding:"omitempty,gte=1,lte=1000000"`
	PageSize   int64  `form:"pageSize" binding:"omitempty,gte=1,lte=200"`
	Zone       string `form:"zone" binding:"omitempty,zone"`
	CustomerID string `form:"customerId"`
	InvoiceID  string `form:"-"`
	StartDate  string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

// ConsignmentDTO is the API representation of a consignment
type ConsignmentDTO struct {
	ID                 string    `json:"id"`
	SrNo               int64     `json:"srNo"`
	ConsignmentNo      string    `json:"consignmentNo"`
	Date               string    `json:"date"`
	Name               string    `json:"name"`
	CustomerID         string    `json:"customerId,omitempty"`
	Destination        string    `json:"destination"`
	DestinationCity    string    `json:"destinationCity,omitempty"`
	DestinationState   string    `json:"destinationState,omitempty"`
	DestinationPincode string    `json:"destinationPincode,omitempty"`
	Pieces             int       `json:"pieces"`
	Weight             float64   `json:"weight"`
	ProductName        string    `json:"productName,omitempty"`
	Value              float64   `json:"value"`
	Zone               string    `json:"zone"`
	BaseRate           float64   `json:"baseRate"`
	DocketCharges      float64   `json:"docketCharges"`
	ODACharge          float64   `json:"odaCharge"`
	FOV                float64   `json:"fov"`
	Total              float64   `json:"total"`
	FuelChargePercent  *float64  `json:"fuelChargePercent,omitempty"`
	GSTPercent         *float64  `json:"gstPercent,omitempty"`
	Box1Dimensions     string    `json:"box1Dimensions,omitempty"`
	Box2Dimensions     string    `json:"box2Dimensions,omitempty"`
	Box3Dimensions     string    `json:"box3Dimensions,omitempty"`
	ShipmentID         string    `json:"shipmentId,omitempty"`
	TrackingNumber     string    `json:"trackingNumber,omitempty"`
	InvoiceID          string    `json:"invoiceId,omitempty"`
	InvoiceNo          string    `json:"invoiceNo,omitempty"`
	CreatedBy          string    `json:"createdBy,omitempty"`
	UpdatedBy          string    `json:"updatedBy,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ToConsignmentDTO converts a domain consignment to its DTO
func ToConsignmentDTO(c *domain.Consignment) *ConsignmentDTO {
	return &ConsignmentDTO{
		ID:                 c.ID.Hex(),
		SrNo:               c.SrNo,
		ConsignmentNo:      c.ConsignmentNo,
		Date:               c.Date,
		Name:               c.Name,
		CustomerID:         c.CustomerID,
		Destination:        c.Destination,
		DestinationCity:    c.DestinationCity,
		DestinationState:   c.DestinationState,
		DestinationPincode: c.DestinationPincode,
		Pieces:             c.Pieces,
		Weight:             c.Weight,
		ProductName:        c.ProductName,
		Value:              c.Value,
		Zone:               c.Zone,
		BaseRate:           c.BaseRate,
		DocketCharges:      c.DocketCharges,
		ODACharge:          c.ODACharge,
		FOV:                c.FOV,
		Total:              c.Total,
		FuelChargePercent:  c.FuelChargePercent,
		GSTPercent:         c.GSTPercent,
		Box1Dimensions:     c.Box1Dimensions,
		Box2Dimensions:     c.Box2Dimensions,
		Box3Dimensions:     c.Box3Dimensions,
		ShipmentID:         c.ShipmentID,
		TrackingNumber:     c.TrackingNumber,
		InvoiceID:          c.InvoiceID,
		InvoiceNo:          c.InvoiceNo,
		CreatedBy:          c.CreatedBy,
		UpdatedBy:          c.UpdatedBy,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// ConsignmentListResponse is a page of consignments
type ConsignmentListResponse struct {
	Data     []ConsignmentDTO `json:"data"`
	Total    int64            `json:"total"`
	Page     int64            `json:"page"`
	PageSize int64            `json:"pageSize"`
}

// StepStatus is the outcome of a derivation step
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// StepOutcome records what one derivation step of a consignment creation did
type StepOutcome struct {
	Step   string     `json:"step"`
	Status StepStatus `json:"status"`
	ID     string     `json:"id,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

// ConsignmentResult is returned by CreateConsignment
type ConsignmentResult struct {
	Consignment *ConsignmentDTO `json:"consignment"`
	Steps       []StepOutcome   `json:"steps"`
}

// Warnings returns the failed steps
func (r *ConsignmentResult) Warnings() []StepOutcome {
	var failed []StepOutcome
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// Outcome returns the outcome recorded for step
func (r *ConsignmentResult) Outcome(step string) (StepOutcome, bool) {
	for _, s := range r.Steps {
		if s.Step == step {
			return s, true
		}
	}
	return StepOutcome{}, false
}

// QuoteDTO previews the charges of a consignment
type QuoteDTO struct {
	BaseRate      float64                   `json:"baseRate"`
	Total         float64                   `json:"total"`
	PolicyID      string                    `json:"policyId,omitempty"`
	PolicyName    string                    `json:"policyName,omitempty"`
	PricingSource string                    `json:"pricingSource"`
	ShipmentType  domain.ShipmentType       `json:"shipmentType"`
	Invoice       domain.InvoiceComputation `json:"invoice"`
}
