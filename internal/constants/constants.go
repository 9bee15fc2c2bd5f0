package constants

import "time"

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	// Срок жизни dev-токена, выпускаемого командой token
	DevTokenTTL = 24 * time.Hour

	ListingsExchange      = "listings_exchange"
	ListingImportQueue    = "listing_import"
	ListingImportRouting  = "listings.import"
	PropertyEventsVersion = "1"

	ListingImportRetryExchange = ListingImportQueue + "_retry_ex"
	ListingImportRetryQueue    = ListingImportQueue + "_retry_wait"
	FinalDLXExchange           = "final_dlx_exchange"
	FinalDLQ                   = "final_dead_letter_queue"
	FinalDLQRoutingKey         = "final_dlq"

	RoleOwner = "owner"
)
