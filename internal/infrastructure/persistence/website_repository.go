package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/infrastructure/persistence/models"
)

// GormWebsiteRepository implements integration.WebsiteRepository using GORM
type GormWebsiteRepository struct {
	db *gorm.DB
}

var _ integration.WebsiteRepository = (*GormWebsiteRepository)(nil)

// NewGormWebsiteRepository creates a new GormWebsiteRepository
func NewGormWebsiteRepository(db *gorm.DB) *GormWebsiteRepository {
	return &GormWebsiteRepository{db: db}
}

// FindByID finds a website by ID
func (r *GormWebsiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Website, error) {
	var model models.WebsiteModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySiteUser returns the websites registered for a site user
func (r *GormWebsiteRepository) FindBySiteUser(ctx context.Context, siteUser string) ([]integration.Website, error) {
	var rows []models.WebsiteModel
	if err := r.db.WithContext(ctx).
		Where("site_user = ?", siteUser).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	sites := make([]integration.Website, len(rows))
	for i := range rows {
		sites[i] = *rows[i].ToDomain()
	}
	return sites, nil
}

// Save inserts or updates a website configuration
func (r *GormWebsiteRepository) Save(ctx context.Context, site *integration.Website) error {
	return r.db.WithContext(ctx).Save(models.WebsiteModelFromDomain(site)).Error
}
