package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edulane/educenter-api/internal/service"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
	"github.com/edulane/educenter-api/pkg/response"
)

// TimeSlotHandler exposes the global time-slot catalog.
type TimeSlotHandler struct {
	slots *service.TimeSlotService
}

// NewTimeSlotHandler constructs a new TimeSlotHandler.
func NewTimeSlotHandler(slots *service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{slots: slots}
}

// List godoc
// @Summary List active time slots
// @Tags TimeSlots
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /time-slots [get]
func (h *TimeSlotHandler) List(c *gin.Context) {
	slots, err := h.slots.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Get godoc
// @Summary Get time slot detail
// @Tags TimeSlots
// @Produce json
// @Param id path string true "Time slot ID"
// @Success 200 {object} response.Envelope
// @Router /time-slots/{id} [get]
func (h *TimeSlotHandler) Get(c *gin.Context) {
	slot, err := h.slots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Create godoc
// @Summary Create time slot
// @Tags TimeSlots
// @Accept json
// @Produce json
// @Param payload body service.CreateTimeSlotRequest true "Time slot payload"
// @Success 201 {object} response.Envelope
// @Router /time-slots [post]
func (h *TimeSlotHandler) Create(c *gin.Context) {
	var req service.CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid time slot payload"))
		return
	}
	slot, err := h.slots.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update time slot
// @Tags TimeSlots
// @Accept json
// @Produce json
// @Param id path string true "Time slot ID"
// @Param payload body service.UpdateTimeSlotRequest true "Time slot payload"
// @Success 200 {object} response.Envelope
// @Router /time-slots/{id} [put]
func (h *TimeSlotHandler) Update(c *gin.Context) {
	var req service.UpdateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid time slot payload"))
		return
	}
	slot, err := h.slots.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Deactivate godoc
// @Summary Deactivate time slot
// @Description Hide the slot from pickers; existing schedules keep it
// @Tags TimeSlots
// @Produce json
// @Param id path string true "Time slot ID"
// @Success 204 {object} response.Envelope
// @Router /time-slots/{id} [delete]
func (h *TimeSlotHandler) Deactivate(c *gin.Context) {
	if err := h.slots.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
