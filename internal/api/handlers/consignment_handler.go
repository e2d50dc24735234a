package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/consignment-service/internal/application"
	"github.com/wms-platform/consignment-service/internal/domain"
	"github.com/wms-platform/consignment-service/pkg/errors"
	"github.com/wms-platform/consignment-service/pkg/logging"
	"github.com/wms-platform/consignment-service/pkg/middleware"
)

// ConsignmentHandler handles HTTP requests for consignments
type ConsignmentHandler struct {
	service *application.ConsignmentService
	logger  *logging.Logger
}

// NewConsignmentHandler creates a new ConsignmentHandler
func NewConsignmentHandler(service *application.ConsignmentService, logger *logging.Logger) *ConsignmentHandler {
	return &ConsignmentHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the consignment API on v1. Every route requires an admin principal.
func (h *ConsignmentHandler) RegisterRoutes(v1 *gin.RouterGroup, auth *middleware.AuthConfig) {
	admin := v1.Group("",
		middleware.Authenticate(auth),
		middleware.RequireRoles(middleware.RoleMasterAdmin, middleware.RoleChildAdmin),
	)

	consignments := admin.Group("/consignments")
	{
		consignments.POST("", h.CreateConsignment)
		consignments.GET("", h.ListConsignments)
		consignments.POST("/quote", h.Quote)
		consignments.GET("/:consignmentId", h.GetConsignment)
		consignments.PUT("/:consignmentId", h.UpdateConsignment)
		consignments.DELETE("/:consignmentId", h.DeleteConsignment)
	}

	admin.GET("/customers/:customerId/consignments", h.ListByCustomer)
	admin.GET("/invoices/:invoiceId/consignments", h.ListByInvoice)
}

// CreateConsignment handles POST /api/v1/consignments
func (h *ConsignmentHandler) CreateConsignment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.CreateConsignmentCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"customer.id":      cmd.CustomerID,
		"consignment.zone": cmd.Zone,
	})

	result, err := h.service.CreateConsignment(c.Request.Context(), cmd, actorFrom(c))
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":  result.Consignment,
		"steps": result.Steps,
	})
}

// ListConsignments handles GET /api/v1/consignments
func (h *ConsignmentHandler) ListConsignments(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var query application.ListConsignmentsQuery
	if appErr := middleware.BindQuery(c, &query); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	result, err := h.service.ListConsignments(c.Request.Context(), query)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListByCustomer handles GET /api/v1/customers/:customerId/consignments
func (h *ConsignmentHandler) ListByCustomer(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var query application.ListConsignmentsQuery
	if appErr := middleware.BindQuery(c, &query); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	customerID := c.Param("customerId")
	middleware.AddSpanAttributes(c, map[string]interface{}{"customer.id": customerID})

	result, err := h.service.ListByCustomer(c.Request.Context(), customerID, query)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListByInvoice handles GET /api/v1/invoices/:invoiceId/consignments
func (h *ConsignmentHandler) ListByInvoice(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var query application.ListConsignmentsQuery
	if appErr := middleware.BindQuery(c, &query); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	result, err := h.service.ListByInvoice(c.Request.Context(), c.Param("invoiceId"), query)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetConsignment handles GET /api/v1/consignments/:consignmentId
func (h *ConsignmentHandler) GetConsignment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	consignmentID := c.Param("consignmentId")
	middleware.AddSpanAttributes(c, map[string]interface{}{"consignment.id": consignmentID})

	result, err := h.service.GetConsignment(c.Request.Context(), consignmentID)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// UpdateConsignment handles PUT /api/v1/consignments/:consignmentId
func (h *ConsignmentHandler) UpdateConsignment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.UpdateConsignmentCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	consignmentID := c.Param("consignmentId")
	middleware.AddSpanAttributes(c, map[string]interface{}{"consignment.id": consignmentID})

	result, err := h.service.UpdateConsignment(c.Request.Context(), consignmentID, cmd, actorFrom(c))
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// DeleteConsignment handles DELETE /api/v1/consignments/:consignmentId
func (h *ConsignmentHandler) DeleteConsignment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	consignmentID := c.Param("consignmentId")
	middleware.AddSpanAttributes(c, map[string]interface{}{"consignment.id": consignmentID})

	if err := h.service.DeleteConsignment(c.Request.Context(), consignmentID, actorFrom(c)); err != nil {
		h.respondError(responder, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Quote handles POST /api/v1/consignments/quote
func (h *ConsignmentHandler) Quote(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.QuoteCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	result, err := h.service.Quote(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *ConsignmentHandler) respondError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
	} else {
		responder.RespondWithError(err)
	}
}

func actorFrom(c *gin.Context) domain.Actor {
	principal, _ := middleware.PrincipalFromGin(c)
	return domain.Actor{ID: principal.Subject, Role: principal.Role}
}
