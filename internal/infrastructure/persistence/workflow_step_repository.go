package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocksync/backend/internal/domain/stock"
	"github.com/stocksync/backend/internal/infrastructure/persistence/models"
)

// GormWorkflowStepRepository implements stock.WorkflowStepRepository using GORM
type GormWorkflowStepRepository struct {
	db *gorm.DB
}

var _ stock.WorkflowStepRepository = (*GormWorkflowStepRepository)(nil)

// NewGormWorkflowStepRepository creates a new GormWorkflowStepRepository
func NewGormWorkflowStepRepository(db *gorm.DB) *GormWorkflowStepRepository {
	return &GormWorkflowStepRepository{db: db}
}

// Steps returns the pipeline step configuration in execution order
func (r *GormWorkflowStepRepository) Steps(ctx context.Context) ([]stock.WorkflowStep, error) {
	var rows []models.WorkflowStepModel
	if err := r.db.WithContext(ctx).
		Order("step_order ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	steps := make([]stock.WorkflowStep, len(rows))
	for i := range rows {
		steps[i] = rows[i].ToDomain()
	}
	return steps, nil
}

// SetEnabled toggles one optional step. Mandatory steps cannot be disabled;
// the write is silently restricted to non-mandatory rows.
func (r *GormWorkflowStepRepository) SetEnabled(ctx context.Context, key string, enabled bool) error {
	return r.db.WithContext(ctx).
		Model(&models.WorkflowStepModel{}).
		Where("key = ? AND mandatory = false", key).
		Update("enabled", enabled).Error
}

// Seed inserts the default step rows, leaving existing rows untouched so
// operator toggles survive restarts.
func (r *GormWorkflowStepRepository) Seed(ctx context.Context) error {
	defaults := stock.DefaultWorkflowSteps()
	rows := make([]*models.WorkflowStepModel, len(defaults))
	for i, s := range defaults {
		rows[i] = models.WorkflowStepModelFromDomain(s)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rows).Error
}
