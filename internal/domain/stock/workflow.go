package stock

import (
	"sort"

	"github.com/stocksync/backend/internal/domain/shared"
)

// Workflow step keys. The execution order of these steps is fixed: later
// steps depend on the output shape of earlier ones, so configuration can
// toggle a step on or off but never reorder the sequence.
const (
	StepCleanClosingStock       = "cleanClosingStock"
	StepDeduplicateClosingStock = "deduplicateClosingStock"
	StepCleanItemDirectory      = "cleanItemDirectory"
	StepRenameColumns           = "renameColumns"
	StepApplyDiscounts          = "applyDiscounts"
	StepCalculateNewSalePrice   = "calculateNewSalePrice"
	StepFinalizeData            = "finalizeData"
)

// ErrNoWorkflowConfig is returned when the pipeline is run without any
// workflow step configuration.
var ErrNoWorkflowConfig = shared.NewDomainError("NO_WORKFLOW_CONFIG", "No workflow step configuration supplied")

// WorkflowStep is one configurable stage of the transform pipeline.
// Mandatory steps always execute; the Enabled flag on a mandatory step only
// affects how the step is displayed, never whether it runs.
type WorkflowStep struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	Enabled   bool   `json:"enabled"`
	Mandatory bool   `json:"mandatory"`
}

// ShouldExecute reports whether the step runs in this pipeline execution.
func (s WorkflowStep) ShouldExecute() bool {
	return s.Mandatory || s.Enabled
}

// DefaultWorkflowSteps returns the built-in step configuration used to seed
// the workflow_steps table. Cleaning, deduplication and projection are
// mandatory; the discount steps can be toggled off by an administrator.
func DefaultWorkflowSteps() []WorkflowStep {
	return []WorkflowStep{
		{Key: StepCleanClosingStock, Name: "Clean closing stock", Order: 1, Enabled: true, Mandatory: true},
		{Key: StepDeduplicateClosingStock, Name: "Deduplicate closing stock", Order: 2, Enabled: true, Mandatory: true},
		{Key: StepCleanItemDirectory, Name: "Clean item directory", Order: 3, Enabled: true, Mandatory: false},
		{Key: StepRenameColumns, Name: "Rename columns", Order: 4, Enabled: true, Mandatory: true},
		{Key: StepApplyDiscounts, Name: "Apply discounts", Order: 5, Enabled: true, Mandatory: false},
		{Key: StepCalculateNewSalePrice, Name: "Calculate new sale price", Order: 6, Enabled: true, Mandatory: false},
		{Key: StepFinalizeData, Name: "Finalize data", Order: 7, Enabled: true, Mandatory: true},
	}
}

// SortSteps orders steps by their fixed execution order.
func SortSteps(steps []WorkflowStep) {
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})
}
