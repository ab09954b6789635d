package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/backend/internal/domain/stock"
)

// SyncSummaryModel is the persistence model for one recorded sync run
type SyncSummaryModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	SiteUser       string    `gorm:"type:varchar(100);not null;index"`
	TotalProcessed int       `gorm:"not null;default:0"`
	TotalUpdated   int       `gorm:"not null;default:0"`
	TotalNotFound  int       `gorm:"not null;default:0"`
	TotalUpToDate  int       `gorm:"not null;default:0"`
	TotalErrors    int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SyncSummaryModel) TableName() string {
	return "sync_summaries"
}

// ToDomain converts the persistence model to a domain SyncSummary
func (m *SyncSummaryModel) ToDomain() *stock.SyncSummary {
	return &stock.SyncSummary{
		ID:             m.ID,
		SiteUser:       m.SiteUser,
		TotalProcessed: m.TotalProcessed,
		TotalUpdated:   m.TotalUpdated,
		TotalNotFound:  m.TotalNotFound,
		TotalUpToDate:  m.TotalUpToDate,
		TotalErrors:    m.TotalErrors,
		CreatedAt:      m.CreatedAt,
	}
}

// SyncSummaryModelFromDomain builds the persistence model from a domain SyncSummary
func SyncSummaryModelFromDomain(s *stock.SyncSummary) *SyncSummaryModel {
	return &SyncSummaryModel{
		ID:             s.ID,
		SiteUser:       s.SiteUser,
		TotalProcessed: s.TotalProcessed,
		TotalUpdated:   s.TotalUpdated,
		TotalNotFound:  s.TotalNotFound,
		TotalUpToDate:  s.TotalUpToDate,
		TotalErrors:    s.TotalErrors,
		CreatedAt:      s.CreatedAt,
	}
}

// SyncDetailModel is one audit row of a recorded sync run
type SyncDetailModel struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key"`
	SummaryID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	SKU         string           `gorm:"type:varchar(100);not null"`
	ProductName string           `gorm:"type:varchar(255)"`
	Status      stock.SyncStatus `gorm:"type:varchar(20);not null"`
	ChangesJSON string           `gorm:"type:jsonb;not null;default:'{}'"`
}

// TableName returns the table name for GORM
func (SyncDetailModel) TableName() string {
	return "sync_details"
}

// ToDomain converts the persistence model to a domain SyncDetail
func (m *SyncDetailModel) ToDomain() stock.SyncDetail {
	return stock.SyncDetail{
		SKU:         m.SKU,
		ProductName: m.ProductName,
		Status:      m.Status,
		ChangesJSON: m.ChangesJSON,
	}
}

// SyncDetailModelFromDomain builds the persistence model from a domain SyncDetail
func SyncDetailModelFromDomain(summaryID uuid.UUID, d stock.SyncDetail) *SyncDetailModel {
	return &SyncDetailModel{
		ID:          uuid.New(),
		SummaryID:   summaryID,
		SKU:         d.SKU,
		ProductName: d.ProductName,
		Status:      d.Status,
		ChangesJSON: d.ChangesJSON,
	}
}

// WorkflowStepModel is the persistence model for one pipeline step's
// configuration row
type WorkflowStepModel struct {
	Key       string    `gorm:"type:varchar(50);primary_key"`
	Name      string    `gorm:"type:varchar(100);not null"`
	StepOrder int       `gorm:"not null"`
	Enabled   bool      `gorm:"not null;default:true"`
	Mandatory bool      `gorm:"not null;default:false"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WorkflowStepModel) TableName() string {
	return "workflow_steps"
}

// ToDomain converts the persistence model to a domain WorkflowStep
func (m *WorkflowStepModel) ToDomain() stock.WorkflowStep {
	return stock.WorkflowStep{
		Key:       m.Key,
		Name:      m.Name,
		Order:     m.StepOrder,
		Enabled:   m.Enabled,
		Mandatory: m.Mandatory,
	}
}

// WorkflowStepModelFromDomain builds the persistence model from a domain WorkflowStep
func WorkflowStepModelFromDomain(s stock.WorkflowStep) *WorkflowStepModel {
	return &WorkflowStepModel{
		Key:       s.Key,
		Name:      s.Name,
		StepOrder: s.Order,
		Enabled:   s.Enabled,
		Mandatory: s.Mandatory,
		UpdatedAt: time.Now(),
	}
}
