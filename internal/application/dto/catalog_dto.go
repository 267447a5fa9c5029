package dto

import "github.com/shopspring/decimal"

// ProductResponse unidad vendible del catálogo: producto + bodega con
// disponibilidad. InventoryID es la clave que usa el carrito.
type ProductResponse struct {
	InventoryID       string          `json:"inventory_id"`
	ProductID         string          `json:"product_id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Price             decimal.Decimal `json:"price"`
	WarehouseName     string          `json:"warehouse_name"`
	AvailableQuantity int             `json:"available_quantity"`
}

// ClientResponse cliente institucional asignable a un pedido (flujo de
// vendedor).
type ClientResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id,omitempty"`
	City  string `json:"city,omitempty"`
}
