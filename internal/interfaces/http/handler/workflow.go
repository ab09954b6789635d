package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/stocksync/backend/internal/domain/stock"
)

// WorkflowStepStore is the configuration surface the workflow handler
// needs: reading the step list and toggling optional steps.
type WorkflowStepStore interface {
	stock.WorkflowStepRepository
	SetEnabled(ctx context.Context, key string, enabled bool) error
}

// WorkflowHandler exposes the transform pipeline step configuration
type WorkflowHandler struct {
	BaseHandler
	steps WorkflowStepStore
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(steps WorkflowStepStore) *WorkflowHandler {
	return &WorkflowHandler{steps: steps}
}

// ListSteps returns the configured pipeline steps in execution order.
func (h *WorkflowHandler) ListSteps(c *gin.Context) {
	steps, err := h.steps.Steps(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, steps)
}

// ToggleStepRequest carries the new enabled flag for one step
type ToggleStepRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// ToggleStep enables or disables an optional pipeline step. Mandatory
// steps cannot be disabled; the store rejects the update silently and the
// step list reflects the unchanged state.
func (h *WorkflowHandler) ToggleStep(c *gin.Context) {
	key := c.Param("key")

	var req ToggleStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.steps.SetEnabled(c.Request.Context(), key, *req.Enabled); err != nil {
		h.HandleError(c, err)
		return
	}

	steps, err := h.steps.Steps(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, steps)
}

// RegisterRoutes registers all workflow step routes
func (h *WorkflowHandler) RegisterRoutes(rg *gin.RouterGroup) {
	steps := rg.Group("/workflow-steps")
	{
		steps.GET("", h.ListSteps)
		steps.PUT("/:key", h.ToggleStep)
	}
}
