package http

import (
	"github.com/gofiber/fiber/v2"
)

// Router registra las rutas del mock backend sobre la app Fiber.
func Router(app *fiber.App, b *MockBackend) {
	app.Post("/auth/login", b.Login)
	app.Post("/auth/refresh", b.Refresh)

	auth := AuthMiddleware(b.cfg.JWTSecret)
	app.Get("/auth/me", auth, b.Me)
	app.Get("/products", auth, b.Products)
	app.Get("/clients", auth, b.Clients)
	app.Post("/orders", auth, b.CreateOrder)

	// Solo para desarrollo: fuerza el escenario de refresh inválido.
	app.Post("/debug/revoke", b.RevokeSessions)
}
