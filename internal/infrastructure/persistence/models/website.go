package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/backend/internal/domain/integration"
)

// WebsiteModel is the persistence model for one connected store
type WebsiteModel struct {
	ID             uuid.UUID                `gorm:"type:uuid;primary_key"`
	SiteUser       string                   `gorm:"type:varchar(100);not null;index"`
	Name           string                   `gorm:"type:varchar(255);not null"`
	Platform       integration.PlatformCode `gorm:"type:varchar(20);not null"`
	BaseURL        string                   `gorm:"type:varchar(500);not null"`
	ConsumerKey    string                   `gorm:"type:varchar(255)"`
	ConsumerSecret string                   `gorm:"type:varchar(255)"`
	AccessToken    string                   `gorm:"type:varchar(255)"`
	LocationID     string                   `gorm:"type:varchar(50)"`
	CurrencySymbol string                   `gorm:"type:varchar(10)"`
	CreatedAt      time.Time                `gorm:"not null"`
	UpdatedAt      time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WebsiteModel) TableName() string {
	return "websites"
}

// ToDomain converts the persistence model to a domain Website
func (m *WebsiteModel) ToDomain() *integration.Website {
	return &integration.Website{
		ID:             m.ID,
		SiteUser:       m.SiteUser,
		Name:           m.Name,
		Platform:       m.Platform,
		BaseURL:        m.BaseURL,
		ConsumerKey:    m.ConsumerKey,
		ConsumerSecret: m.ConsumerSecret,
		AccessToken:    m.AccessToken,
		LocationID:     m.LocationID,
		CurrencySymbol: m.CurrencySymbol,
	}
}

// WebsiteModelFromDomain builds the persistence model from a domain Website
func WebsiteModelFromDomain(w *integration.Website) *WebsiteModel {
	return &WebsiteModel{
		ID:             w.ID,
		SiteUser:       w.SiteUser,
		Name:           w.Name,
		Platform:       w.Platform,
		BaseURL:        w.BaseURL,
		ConsumerKey:    w.ConsumerKey,
		ConsumerSecret: w.ConsumerSecret,
		AccessToken:    w.AccessToken,
		LocationID:     w.LocationID,
		CurrencySymbol: w.CurrencySymbol,
	}
}
