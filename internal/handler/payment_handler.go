package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/service"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
	"github.com/edulane/educenter-api/pkg/response"
)

// PaymentHandler wires tuition payment operations to HTTP routes.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs a new PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// List godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Param enrollment_id query string false "Filter by enrollment"
// @Param class_id query string false "Filter by class"
// @Param student_id query string false "Filter by student"
// @Param status query string false "Filter by status (PENDING,PAID,VOID)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	filter := models.PaymentFilter{
		EnrollmentID: c.Query("enrollment_id"),
		ClassID:      c.Query("class_id"),
		StudentID:    c.Query("student_id"),
		Status:       models.PaymentStatus(strings.ToUpper(c.Query("status"))),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	payments, pagination, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Get godoc
// @Summary Get payment detail
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Create godoc
// @Summary Record a pending payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreatePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	payment, err := h.payments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// MarkPaid godoc
// @Summary Mark a pending payment as paid
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /payments/{id}/pay [post]
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	payment, err := h.payments.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Void godoc
// @Summary Void a pending payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /payments/{id}/void [post]
func (h *PaymentHandler) Void(c *gin.Context) {
	payment, err := h.payments.Void(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}
