package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/medisupply-core/internal/application/dto"
	"github.com/jhoicas/medisupply-core/internal/application/store"
	"github.com/jhoicas/medisupply-core/internal/domain"
	"github.com/jhoicas/medisupply-core/pkg/logger"
)

// API puerto hacia el backend para la creación de pedidos.
type API interface {
	PlaceOrder(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error)
}

// CheckoutUseCase convierte el carrito en un pedido: arma la petición con las
// líneas y el contexto de cliente/visita, la envía y vacía el carrito solo si
// el backend confirma.
type CheckoutUseCase struct {
	api  API
	cart *store.CartStore
	log  *logger.Logger
}

// NewCheckoutUseCase construye el caso de uso de checkout.
func NewCheckoutUseCase(api API, cart *store.CartStore, log *logger.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{api: api, cart: cart, log: log}
}

// Checkout envía el pedido en curso. Con carrito vacío devuelve
// domain.ErrEmptyCart. Si el backend falla, el carrito queda intacto para
// reintentar.
func (uc *CheckoutUseCase) Checkout(ctx context.Context) (*dto.OrderResponse, error) {
	items := uc.cart.Items()
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	req := dto.CreateOrderRequest{
		ID:       uuid.New().String(),
		ClientID: uc.cart.SelectedClientID(),
		VisitID:  uc.cart.SelectedVisitID(),
		Items:    make([]dto.OrderItemRequest, 0, len(items)),
		Total:    uc.cart.Total(),
	}
	for _, it := range items {
		req.Items = append(req.Items, dto.OrderItemRequest{
			InventoryID: it.InventoryID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.ProductPrice,
		})
	}

	resp, err := uc.api.PlaceOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("crear pedido: %w", err)
	}
	uc.cart.ClearCart()
	uc.log.Info().Str("order_id", resp.ID).Str("status", resp.Status).Msg("pedido creado")
	return resp, nil
}
