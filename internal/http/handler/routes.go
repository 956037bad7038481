package handler

import (
	"nomorebugs-admin/internal/http/middleware"
	"nomorebugs-admin/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes mounts the admin API on app. A nil hub leaves the live board
// endpoint unmounted.
func (h *Handler) Routes(app *fiber.App, hub *realtime.Hub) {
	app.Get("/", func(c *fiber.Ctx) error {
		return ok(c, fiber.StatusOK, "No More Bugs admin API is running", nil)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/dispatch", websocket.New(hub.Serve))
	}

	app.Post("/api/auth/register", h.Register)
	app.Post("/api/auth/login", h.Login)

	// Everything below requires an admin token.
	api := app.Group("/api", middleware.JWTAuth(h.tokens))

	api.Post("/logout", h.Logout)

	// Service requests
	api.Get("/requests", h.ListRequests)
	api.Post("/requests/:id/approve", h.ApproveRequest)
	api.Delete("/requests/:id", h.DeleteRequest)

	// Workers
	api.Get("/workers", h.ListWorkers)
	api.Put("/workers/:id/verify", h.VerifyWorker)
	api.Delete("/workers/:id", h.FireWorker)

	// Customers
	api.Get("/customers", h.ListCustomers)
	api.Put("/customers/:id/status", h.SetCustomerStatus)

	// Payments
	api.Get("/payments", h.ListPayments)
	api.Get("/payments/approved", h.ListApprovedPayments)
	api.Post("/payments/:id/approve", h.ApprovePayment)

	// Dispatch board
	api.Get("/dispatch/jobs", h.ListJobs)
	api.Get("/dispatch/jobs/:id", h.GetJob)
	api.Put("/dispatch/jobs/:id/assign", h.AssignWorker)
	api.Post("/dispatch/jobs/:id/confirm", h.ConfirmDispatch)
	api.Get("/dispatch/jobs/:id/document", h.DispatchDocument)
	api.Post("/dispatch/jobs/:id/notify/customer", h.NotifyCustomer)
	api.Post("/dispatch/jobs/:id/notify/worker", h.NotifyWorker)
	api.Get("/dispatch/records", h.ListDispatchRecords)

	api.Post("/mail/send", h.SendMail)
	api.Post("/documents/quotation", h.Quotation)
}
