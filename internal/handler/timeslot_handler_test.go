package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/service"
)

type timeSlotRepoMock struct {
	slots []models.TimeSlot
}

func (m *timeSlotRepoMock) List(ctx context.Context, activeOnly bool) ([]models.TimeSlot, error) {
	return m.slots, nil
}

func (m *timeSlotRepoMock) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	for i := range m.slots {
		if m.slots[i].ID == id {
			return &m.slots[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *timeSlotRepoMock) ExistsByStartTime(ctx context.Context, startTime, excludeID string) (bool, error) {
	return false, nil
}

func (m *timeSlotRepoMock) Create(ctx context.Context, slot *models.TimeSlot) error { return nil }

func (m *timeSlotRepoMock) Update(ctx context.Context, slot *models.TimeSlot) error { return nil }

func (m *timeSlotRepoMock) Deactivate(ctx context.Context, id string) error { return nil }

func newTimeSlotHandler(slots []models.TimeSlot) *TimeSlotHandler {
	svc := service.NewTimeSlotService(&timeSlotRepoMock{slots: slots}, nil, time.Minute, nil, nil)
	return NewTimeSlotHandler(svc)
}

func TestTimeSlotHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimeSlotHandler([]models.TimeSlot{
		{ID: "s1", Label: "Evening A", StartTime: "18:00:00", EndTime: "19:30:00", Active: true},
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/time-slots", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.TimeSlot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Evening A", envelope.Data[0].Label)
}

func TestTimeSlotHandlerCreateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimeSlotHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/time-slots", nil)
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimeSlotHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimeSlotHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/time-slots/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
