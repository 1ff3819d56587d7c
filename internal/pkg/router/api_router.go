package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/kleinmarkt/KleinMarkt/app/controllers"
	"github.com/kleinmarkt/KleinMarkt/internal/pkg/constants"
	"github.com/kleinmarkt/KleinMarkt/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")

	// Payment gateway webhook. The processor runs its own store-backed
	// rate limiter keyed by client IP, the group limiter above is only a
	// coarse burst shield.
	v1.Post(constants.PaymentWebhookRoute, controllers.HandlePaymentWebhook)

	v1.Post(constants.PaymentCreateRoute, middleware.APIKeyAuthMiddleware(), controllers.HandleCreatePayment)
	v1.Get(constants.PaymentStatusRoute, middleware.APIKeyAuthMiddleware(), controllers.HandleGetPayment)
	v1.Get(constants.ListingRoute, controllers.HandleGetListing)

	// Operator endpoints, admin only
	admin := v1.Group(constants.AdminRoute, middleware.APIKeyAuthMiddleware(), middleware.RequireAdmin())
	admin.Get(constants.AdminPaymentListRoute, controllers.HandleListPayments)
	admin.Get(constants.AdminPaymentAuditRoute, controllers.HandleGetPaymentAudit)
	admin.Get(constants.AdminSecurityEventsRoute, controllers.HandleGetSecurityEvents)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
