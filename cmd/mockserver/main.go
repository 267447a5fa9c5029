package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpRouter "github.com/jhoicas/medisupply-core/internal/interfaces/http"
	"github.com/jhoicas/medisupply-core/pkg/config"
	"github.com/jhoicas/medisupply-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})

	secret := cfg.JWT.Secret
	if secret == "" {
		// Solo para desarrollo local; el mock nunca corre en producción.
		secret = "medisupply-mock-dev-secret"
		log.Warn().Msg("JWT_SECRET vacío, usando secret de desarrollo")
	}

	backend := httpRouter.NewMockBackend(httpRouter.Config{
		JWTSecret:  secret,
		Issuer:     cfg.JWT.Issuer,
		ExpMinutes: cfg.JWT.Expiration,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name + "-mock",
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name + "-mock"})
	})

	httpRouter.Router(app, backend)

	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("mock backend escuchando")
	if err := app.Listen(cfg.HTTP.Addr()); err != nil {
		log.Fatal().Err(err).Msg("servidor HTTP")
	}
}
