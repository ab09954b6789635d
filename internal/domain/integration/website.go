package integration

import (
	"context"

	"github.com/google/uuid"
)

// Website is the credential scope for all catalog calls: one remote store
// owned by one site user. Credential material is threaded through client
// construction explicitly; there is no process-wide credential state.
type Website struct {
	ID       uuid.UUID
	SiteUser string
	Name     string
	Platform PlatformCode
	BaseURL  string

	// WooCommerce credentials
	ConsumerKey    string
	ConsumerSecret string

	// Shopify credentials. LocationID identifies the inventory location for
	// stock writes; it is deployment-specific and must come from site
	// configuration, never from a constant.
	AccessToken string
	LocationID  string

	CurrencySymbol string
}

// Validate checks that the website carries the credential material its
// platform requires.
func (w *Website) Validate() error {
	if !w.Platform.IsValid() || w.BaseURL == "" {
		return ErrPlatformNotConfigured
	}
	switch w.Platform {
	case PlatformCodeWordPress:
		if w.ConsumerKey == "" || w.ConsumerSecret == "" {
			return ErrPlatformNotConfigured
		}
	case PlatformCodeShopify:
		if w.AccessToken == "" {
			return ErrPlatformNotConfigured
		}
	}
	return nil
}

// WebsiteRepository looks up site configurations. Website CRUD itself is an
// external collaborator; the sync pipeline only ever reads.
type WebsiteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Website, error)
	FindBySiteUser(ctx context.Context, siteUser string) ([]Website, error)
}
