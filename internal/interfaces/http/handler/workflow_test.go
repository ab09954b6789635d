package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stocksync/backend/internal/domain/stock"
)

func newWorkflowRouter(steps *MockWorkflowStepStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewWorkflowHandler(steps).RegisterRoutes(api)
	return engine
}

func TestListSteps(t *testing.T) {
	steps := new(MockWorkflowStepStore)
	steps.On("Steps", mock.Anything).Return(stock.DefaultWorkflowSteps(), nil)
	engine := newWorkflowRouter(steps)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflow-steps", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    []stock.WorkflowStep `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 7)
	assert.Equal(t, stock.StepCleanClosingStock, resp.Data[0].Key)
}

func TestToggleStep(t *testing.T) {
	steps := new(MockWorkflowStepStore)
	steps.On("SetEnabled", mock.Anything, stock.StepApplyDiscounts, false).Return(nil)
	steps.On("Steps", mock.Anything).Return(stock.DefaultWorkflowSteps(), nil)
	engine := newWorkflowRouter(steps)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/workflow-steps/"+stock.StepApplyDiscounts,
		bytes.NewBufferString(`{"enabled":false}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	steps.AssertCalled(t, "SetEnabled", mock.Anything, stock.StepApplyDiscounts, false)
}

func TestToggleStep_MissingEnabled(t *testing.T) {
	steps := new(MockWorkflowStepStore)
	engine := newWorkflowRouter(steps)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/workflow-steps/"+stock.StepApplyDiscounts,
		bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	steps.AssertNotCalled(t, "SetEnabled", mock.Anything, mock.Anything, mock.Anything)
}
