package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/domain/stock"
	"github.com/stocksync/backend/internal/infrastructure/persistence/models"
)

// GormSyncHistoryRepository implements stock.SyncHistoryRepository using GORM
type GormSyncHistoryRepository struct {
	db *gorm.DB
}

var _ stock.SyncHistoryRepository = (*GormSyncHistoryRepository)(nil)

// NewGormSyncHistoryRepository creates a new GormSyncHistoryRepository
func NewGormSyncHistoryRepository(db *gorm.DB) *GormSyncHistoryRepository {
	return &GormSyncHistoryRepository{db: db}
}

// RecordSync persists one summary and its audit rows atomically. A failed
// write leaves no partial history behind.
func (r *GormSyncHistoryRepository) RecordSync(ctx context.Context, summary *stock.SyncSummary, details []stock.SyncDetail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.SyncSummaryModelFromDomain(summary)).Error; err != nil {
			return err
		}
		if len(details) == 0 {
			return nil
		}
		rows := make([]*models.SyncDetailModel, len(details))
		for i, d := range details {
			rows[i] = models.SyncDetailModelFromDomain(summary.ID, d)
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}

// LatestSummary returns the most recent sync summary for a site user
func (r *GormSyncHistoryRepository) LatestSummary(ctx context.Context, siteUser string) (*stock.SyncSummary, error) {
	var model models.SyncSummaryModel
	if err := r.db.WithContext(ctx).
		Where("site_user = ?", siteUser).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Details returns the audit rows of one recorded sync
func (r *GormSyncHistoryRepository) Details(ctx context.Context, summaryID uuid.UUID) ([]stock.SyncDetail, error) {
	var rows []models.SyncDetailModel
	if err := r.db.WithContext(ctx).
		Where("summary_id = ?", summaryID).
		Order("sku ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	details := make([]stock.SyncDetail, len(rows))
	for i := range rows {
		details[i] = rows[i].ToDomain()
	}
	return details, nil
}
