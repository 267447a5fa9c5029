// Demo de consola del motor de la app: restaura o inicia sesión contra el
// backend (o el mock server local), llena el carrito desde el catálogo y crea
// un pedido ejercitando el pipeline HTTP completo, incluido el refresh.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appauth "github.com/jhoicas/medisupply-core/internal/application/auth"
	"github.com/jhoicas/medisupply-core/internal/application/order"
	"github.com/jhoicas/medisupply-core/internal/application/store"
	"github.com/jhoicas/medisupply-core/internal/domain/entity"
	"github.com/jhoicas/medisupply-core/internal/domain/storage"
	"github.com/jhoicas/medisupply-core/internal/infrastructure/api"
	"github.com/jhoicas/medisupply-core/internal/infrastructure/securestore"
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
	log.Info().Str("env", cfg.App.Env).Str("api", cfg.API.BaseURL).Msg("iniciando aplicación")

	// Almacenamiento del dispositivo: cifrado si hay passphrase, en memoria
	// si no (los datos no sobreviven al proceso).
	var kv storage.KeyValue
	if cfg.Storage.Passphrase != "" {
		sec, err := securestore.Open(cfg.Storage.Dir, cfg.Storage.Passphrase)
		if err != nil {
			log.Fatal().Err(err).Msg("abrir almacenamiento cifrado")
		}
		kv = sec
	} else {
		log.Warn().Msg("STORAGE_PASSPHRASE vacío: la sesión no se persistirá")
		kv = storage.NewMemory()
	}

	authStore := store.NewAuthStore(kv, log)
	cartStore := store.NewCartStore(kv, log)
	// Único acople entre stores: cerrar sesión vacía el carrito.
	authStore.OnLogout(cartStore.ClearCart)

	client := api.New(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	}, authStore, log)

	session := appauth.NewSessionUseCase(client, authStore, log)
	checkout := order.NewCheckoutUseCase(client, cartStore, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, session, checkout, client, cartStore, log); err != nil {
		log.Error().Err(err).Msg("demo terminó con error")
		os.Exit(1)
	}
}

func run(ctx context.Context, session *appauth.SessionUseCase, checkout *order.CheckoutUseCase, client *api.Client, cart *store.CartStore, log *logger.Logger) error {
	user, ok := session.Restore()
	if !ok || user == nil {
		email := envOr("DEMO_EMAIL", "vendedor@medisupply.test")
		password := envOr("DEMO_PASSWORD", "medisupply123")
		var err error
		user, err = session.Login(ctx, email, password)
		if err != nil {
			return err
		}
	}
	fmt.Printf("Sesión activa: %s <%s> (%s)\n", user.Name, user.Email, user.Role)

	products, err := client.ListProducts(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Catálogo: %d unidades vendibles\n", len(products))

	if len(products) >= 2 {
		cart.AddItem(entity.CartItem{
			InventoryID:       products[0].InventoryID,
			ProductID:         products[0].ProductID,
			ProductName:       products[0].Name,
			ProductSKU:        products[0].SKU,
			ProductPrice:      products[0].Price,
			WarehouseName:     products[0].WarehouseName,
			AvailableQuantity: products[0].AvailableQuantity,
		}, 2)
		cart.AddItem(entity.CartItem{
			InventoryID:       products[1].InventoryID,
			ProductID:         products[1].ProductID,
			ProductName:       products[1].Name,
			ProductSKU:        products[1].SKU,
			ProductPrice:      products[1].Price,
			WarehouseName:     products[1].WarehouseName,
			AvailableQuantity: products[1].AvailableQuantity,
		}, 10)
	}

	if user.Role == entity.RoleSeller {
		clients, err := client.ListClients(ctx)
		if err != nil {
			return err
		}
		if len(clients) > 0 {
			cart.SetClient(clients[0].ID)
			fmt.Printf("Pedido a nombre de: %s\n", clients[0].Name)
		}
	}

	// Formato de moneda local (es-CO) para el resumen.
	p := message.NewPrinter(language.Spanish)
	for _, it := range cart.Items() {
		fmt.Println(p.Sprintf("  %d × %s = $ %.0f", it.Quantity, it.ProductName, it.Subtotal().InexactFloat64()))
	}
	fmt.Println(p.Sprintf("Total: $ %.0f", cart.Total().InexactFloat64()))

	resp, err := checkout.Checkout(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Pedido %s creado (%s)\n", resp.ID, resp.Status)
	if cart.Len() != 0 {
		log.Warn().Msg("el carrito debería quedar vacío tras el checkout")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
