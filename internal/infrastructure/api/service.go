package api

import (
	"context"
	"net/http"

	"github.com/jhoicas/medisupply-core/internal/application/dto"
)

// Endpoints tipados del backend. Todos pasan por Do, es decir, por la
// inyección de bearer y el protocolo de refresh.

// Login autentica con email/password y devuelve el paquete de tokens inicial
// (incluido el refresh token).
func (c *Client) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	var out dto.TokenResponse
	in := dto.LoginRequest{Email: email, Password: password}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me devuelve los datos del usuario autenticado.
func (c *Client) Me(ctx context.Context) (*dto.MeResponse, error) {
	var out dto.MeResponse
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts devuelve el catálogo de unidades vendibles (producto + bodega).
func (c *Client) ListProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	var out []dto.ProductResponse
	if err := c.Do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListClients devuelve los clientes asignables a un pedido (flujo de
// vendedor).
func (c *Client) ListClients(ctx context.Context) ([]dto.ClientResponse, error) {
	var out []dto.ClientResponse
	if err := c.Do(ctx, http.MethodGet, "/clients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PlaceOrder crea un pedido a partir del carrito.
func (c *Client) PlaceOrder(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	var out dto.OrderResponse
	if err := c.Do(ctx, http.MethodPost, "/orders", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
