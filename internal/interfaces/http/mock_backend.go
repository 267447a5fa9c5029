// Package http implementa el mock server de desarrollo: el backend contra el
// que se prueba la app en local. Emite tokens reales (HS256) para que el
// protocolo de refresh del cliente se ejerza de verdad, pero todo el estado
// vive en memoria.
package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/medisupply-core/internal/application/dto"
	"github.com/jhoicas/medisupply-core/pkg/jwt"
	"github.com/jhoicas/medisupply-core/pkg/logger"
)

// Config parámetros del mock backend.
type Config struct {
	JWTSecret  string
	Issuer     string
	ExpMinutes int
}

type mockUser struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Groups       []string
	Profile      *dto.ProfileResponse
}

// MockBackend estado en memoria del mock server.
type MockBackend struct {
	cfg Config
	log *logger.Logger

	mu       sync.Mutex
	users    map[string]mockUser // email → usuario
	sessions map[string]string   // refresh token → email
	orders   []dto.OrderResponse

	products []dto.ProductResponse
	clients  []dto.ClientResponse
}

// NewMockBackend construye el mock con datos de demostración sembrados.
func NewMockBackend(cfg Config, log *logger.Logger) *MockBackend {
	b := &MockBackend{
		cfg:      cfg,
		log:      log,
		users:    make(map[string]mockUser),
		sessions: make(map[string]string),
	}
	b.seed()
	return b
}

// SeedUser registra un usuario (password en claro, se hashea con bcrypt).
func (b *MockBackend) SeedUser(email, password, name, role string, groups []string, profile *dto.ProfileResponse) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		b.log.Error().Err(err).Str("email", email).Msg("sembrar usuario")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[email] = mockUser{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Groups:       groups,
		Profile:      profile,
	}
}

func (b *MockBackend) seed() {
	b.SeedUser("vendedor@medisupply.test", "medisupply123", "Laura Vendedora", "seller",
		[]string{"sellers"}, &dto.ProfileResponse{
			Phone:           "+57 300 000 0000",
			InstitutionName: "MediSupply S.A.S.",
			City:            "Bogotá",
			Country:         "CO",
		})
	b.SeedUser("clinica@medisupply.test", "medisupply123", "Clínica San Rafael", "client", nil, nil)

	b.products = []dto.ProductResponse{
		{InventoryID: "inv-001", ProductID: "prod-001", Name: "Guantes de nitrilo talla M (caja x100)", SKU: "GNT-M-100", Price: decimal.NewFromFloat(35000), WarehouseName: "Bodega Norte", AvailableQuantity: 240},
		{InventoryID: "inv-002", ProductID: "prod-002", Name: "Jeringa desechable 5ml", SKU: "JER-5ML", Price: decimal.NewFromFloat(850), WarehouseName: "Bodega Norte", AvailableQuantity: 5000},
		{InventoryID: "inv-003", ProductID: "prod-003", Name: "Alcohol antiséptico 700ml", SKU: "ALC-700", Price: decimal.NewFromFloat(12500), WarehouseName: "Bodega Sur", AvailableQuantity: 180},
		{InventoryID: "inv-004", ProductID: "prod-001", Name: "Guantes de nitrilo talla M (caja x100)", SKU: "GNT-M-100", Price: decimal.NewFromFloat(36500), WarehouseName: "Bodega Sur", AvailableQuantity: 60},
	}
	b.clients = []dto.ClientResponse{
		{ID: "cli-001", Name: "Clínica San Rafael", TaxID: "900111222-3", City: "Bogotá"},
		{ID: "cli-002", Name: "Hospital del Valle", TaxID: "900333444-5", City: "Cali"},
		{ID: "cli-003", Name: "Droguería Central", TaxID: "900555666-7", City: "Medellín"},
	}
}

// issueTokens emite access/id tokens HS256 para el usuario.
func (b *MockBackend) issueTokens(u mockUser) (access, id string, err error) {
	access, err = jwt.Generate(b.cfg.JWTSecret, u.ID, u.Email, u.Name, u.Role, b.cfg.Issuer, b.cfg.ExpMinutes)
	if err != nil {
		return "", "", err
	}
	id, err = jwt.Generate(b.cfg.JWTSecret, u.ID, u.Email, u.Name, u.Role, b.cfg.Issuer, b.cfg.ExpMinutes)
	if err != nil {
		return "", "", err
	}
	return access, id, nil
}

// Login maneja POST /auth/login.
func (b *MockBackend) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Email == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email y password son requeridos"})
	}

	b.mu.Lock()
	u, ok := b.users[in.Email]
	b.mu.Unlock()
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "credenciales inválidas"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "credenciales inválidas"})
	}

	access, id, err := b.issueTokens(u)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	refresh := uuid.New().String()
	b.mu.Lock()
	b.sessions[refresh] = u.Email
	b.mu.Unlock()

	return c.JSON(dto.TokenResponse{
		AccessToken:  access,
		IDToken:      id,
		RefreshToken: refresh,
		ExpiresIn:    b.cfg.ExpMinutes * 60,
		TokenType:    "Bearer",
	})
}

// Refresh maneja POST /auth/refresh. No rota el refresh token: el cliente
// reutiliza el original.
func (b *MockBackend) Refresh(c *fiber.Ctx) error {
	var in dto.RefreshRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	b.mu.Lock()
	email, ok := b.sessions[in.RefreshToken]
	var u mockUser
	if ok {
		u, ok = b.users[email]
	}
	b.mu.Unlock()
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "INVALID_REFRESH_TOKEN", Message: "refresh token inválido o revocado"})
	}

	access, id, err := b.issueTokens(u)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.RefreshResponse{
		AccessToken: access,
		IDToken:     id,
		ExpiresIn:   b.cfg.ExpMinutes * 60,
		TokenType:   "Bearer",
	})
}

// Me maneja GET /auth/me (requiere AuthMiddleware).
func (b *MockBackend) Me(c *fiber.Ctx) error {
	email := GetEmail(c)
	b.mu.Lock()
	u, ok := b.users[email]
	b.mu.Unlock()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "USER_NOT_FOUND", Message: "usuario no encontrado"})
	}
	return c.JSON(dto.MeResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    u.Role,
		Groups:  u.Groups,
		Profile: u.Profile,
	})
}

// Products maneja GET /products.
func (b *MockBackend) Products(c *fiber.Ctx) error {
	return c.JSON(b.products)
}

// Clients maneja GET /clients.
func (b *MockBackend) Clients(c *fiber.Ctx) error {
	return c.JSON(b.clients)
}

// CreateOrder maneja POST /orders.
func (b *MockBackend) CreateOrder(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el pedido necesita al menos una línea"})
	}
	out := dto.OrderResponse{
		ID:        in.ID,
		Status:    "received",
		Total:     in.Total,
		CreatedAt: time.Now().UTC(),
	}
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	b.mu.Lock()
	b.orders = append(b.orders, out)
	b.mu.Unlock()
	b.log.Info().Str("order_id", out.ID).Str("user_id", GetUserID(c)).Msg("pedido recibido")
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RevokeSessions maneja POST /debug/revoke: invalida todos los refresh
// tokens emitidos. Útil para probar manualmente el camino "refresh devuelve
// 403 → logout" del cliente.
func (b *MockBackend) RevokeSessions(c *fiber.Ctx) error {
	b.mu.Lock()
	n := len(b.sessions)
	b.sessions = make(map[string]string)
	b.mu.Unlock()
	return c.JSON(fiber.Map{"revoked": n})
}
