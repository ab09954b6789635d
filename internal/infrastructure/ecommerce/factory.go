package ecommerce

import (
	"time"

	"github.com/stocksync/backend/internal/domain/integration"
)

// FactoryConfig carries the adapter tunables drawn from app configuration
type FactoryConfig struct {
	// ShopifyMinInterval spaces consecutive Shopify API calls. Zero keeps
	// the adapter default.
	ShopifyMinInterval time.Duration
}

// NewClientFactory returns a constructor that binds a catalog client to one
// site. Platform dispatch happens here, once per client; callers hold a
// uniform CatalogPlatform afterwards and never branch on the platform again.
func NewClientFactory(cfg FactoryConfig) func(site *integration.Website) (integration.CatalogPlatform, error) {
	return func(site *integration.Website) (integration.CatalogPlatform, error) {
		switch site.Platform {
		case integration.PlatformCodeWordPress:
			return NewWordPressAdapter(site)
		case integration.PlatformCodeShopify:
			if cfg.ShopifyMinInterval > 0 {
				return NewShopifyAdapter(site, WithMinInterval(cfg.ShopifyMinInterval))
			}
			return NewShopifyAdapter(site)
		default:
			return nil, integration.ErrPlatformNotConfigured
		}
	}
}
