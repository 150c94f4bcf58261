package model

import "time"

// LogEntry is one structured application event. DeviceType and OsName are
// filled in by enrichment, not present in the raw log line.
type LogEntry struct {
	Id         string                 `json:"_id,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	EventType  string                 `json:"event_type"`
	SessionId  string                 `json:"session_id"`
	UserId     string                 `json:"user_id"`
	IpAddress  string                 `json:"ip_address"`
	UserAgent  string                 `json:"user_agent"`
	Location   string                 `json:"location"`
	DeviceType string                 `json:"device_type,omitempty"`
	OsName     string                 `json:"os_name,omitempty"`
	Data       map[string]interface{} `json:"data"`
}

const (
	EventPageView          = "page_view"
	EventLogin             = "login"
	EventUserRegistration  = "user_registration"
	EventProductView       = "product_view"
	EventSearch            = "search"
	EventAddToCart         = "add_to_cart"
	EventRemoveFromCart    = "remove_from_cart"
	EventCheckoutInitiated = "checkout_initiated"
	EventPurchase          = "purchase"
	EventCartAbandoned     = "cart_abandoned"
	EventAddToWishlist     = "add_to_wishlist"
	EventSubmitReview      = "submit_review"
	EventLogout            = "logout"
	EventError             = "error"
	EventUserSessionEnd    = "user_session_end"
)
