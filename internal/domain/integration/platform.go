package integration

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Platform Errors
// ---------------------------------------------------------------------------

var (
	// ErrPlatformNotConfigured indicates the site carries no usable credentials
	ErrPlatformNotConfigured = errors.New("integration: platform not configured")
	// ErrPlatformInvalidResponse indicates the platform returned an unparseable body
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	// ErrPlatformUnavailable indicates the platform could not be reached
	ErrPlatformUnavailable = errors.New("integration: platform temporarily unavailable")

	// ErrRateLimitExceeded maps HTTP 429 responses
	ErrRateLimitExceeded = errors.New("integration: platform rate limit exceeded")
	// ErrAuthenticationFailed maps HTTP 401 responses
	ErrAuthenticationFailed = errors.New("integration: platform authentication failed")
	// ErrPermissionDenied maps HTTP 403 responses
	ErrPermissionDenied = errors.New("integration: platform permission denied")

	// ErrOrderNotFound indicates the platform has no order with the given ID
	ErrOrderNotFound = errors.New("integration: platform order not found")
	// ErrMissingLocationID indicates a Shopify inventory write was attempted
	// without a configured location ID
	ErrMissingLocationID = errors.New("integration: site has no inventory location ID configured")
)

// RemoteAPIError carries the status and body of a non-2xx platform response
// that does not map to one of the classified sentinel errors above.
type RemoteAPIError struct {
	Status int
	Body   string
}

// Error implements the error interface
func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("integration: platform request failed with HTTP %d: %s", e.Status, e.Body)
}

// ClassifyStatus maps a non-2xx HTTP status to the corresponding error.
// 429, 401 and 403 get dedicated sentinels so callers can branch on them;
// everything else surfaces as a RemoteAPIError with the raw body attached.
func ClassifyStatus(status int, body string) error {
	switch status {
	case 429:
		return ErrRateLimitExceeded
	case 401:
		return ErrAuthenticationFailed
	case 403:
		return ErrPermissionDenied
	default:
		return &RemoteAPIError{Status: status, Body: body}
	}
}

// ---------------------------------------------------------------------------
// PlatformCode represents the type of commerce platform
// ---------------------------------------------------------------------------

// PlatformCode represents the type of commerce platform a site runs on
type PlatformCode string

const (
	// PlatformCodeWordPress represents a WordPress site running WooCommerce
	PlatformCodeWordPress PlatformCode = "WORDPRESS"
	// PlatformCodeShopify represents a Shopify store
	PlatformCodeShopify PlatformCode = "SHOPIFY"
)

// IsValid returns true if the platform code is valid
func (c PlatformCode) IsValid() bool {
	switch c {
	case PlatformCodeWordPress, PlatformCodeShopify:
		return true
	default:
		return false
	}
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the platform
func (c PlatformCode) DisplayName() string {
	switch c {
	case PlatformCodeWordPress:
		return "WooCommerce"
	case PlatformCodeShopify:
		return "Shopify"
	default:
		return string(c)
	}
}
