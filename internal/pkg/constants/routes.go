package constants

// API route constants
const (
	APIRoute = "/api"

	PaymentWebhookRoute = "/payments/webhook"
	PaymentCreateRoute  = "/payments"
	PaymentStatusRoute  = "/payments/:ref"
	ListingRoute        = "/listings/:uuid"

	// Admin routes, relative to the /admin group
	AdminRoute               = "/admin"
	AdminPaymentListRoute    = "/payments"
	AdminPaymentAuditRoute   = "/payments/:ref/audit"
	AdminSecurityEventsRoute = "/security/:identifier"
)
