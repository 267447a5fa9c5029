package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de un pedido a crear.
type OrderItemRequest struct {
	InventoryID string          `json:"inventory_id"`
	ProductID   string          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest cuerpo de POST /orders. El ID lo genera el cliente
// (UUID) y actúa como clave de idempotencia si el pedido se reintenta.
type CreateOrderRequest struct {
	ID       string             `json:"id"`
	ClientID string             `json:"client_id,omitempty"`
	VisitID  string             `json:"visit_id,omitempty"`
	Items    []OrderItemRequest `json:"items"`
	Total    decimal.Decimal    `json:"total"`
}

// OrderResponse confirmación del backend al crear un pedido.
type OrderResponse struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}
