package entity

import "github.com/shopspring/decimal"

func init() {
	// Los snapshots de la app móvil original serializan productPrice como
	// número JSON, no como string. Se mantiene por compatibilidad con los
	// datos ya persistidos en los dispositivos.
	decimal.MarshalJSONWithoutQuotes = true
}

// CartItem línea del carrito. InventoryID es la clave única dentro del
// carrito: identifica la unidad vendible (producto + bodega), distinta del
// producto abstracto (ProductID). Un CartItem con Quantity <= 0 no debe
// existir: las operaciones del CartStore lo eliminan en lugar de almacenarlo.
type CartItem struct {
	InventoryID       string          `json:"inventoryId"`
	ProductID         string          `json:"productId"`
	ProductName       string          `json:"productName"`
	ProductSKU        string          `json:"productSku"`
	ProductPrice      decimal.Decimal `json:"productPrice"`
	Quantity          int             `json:"quantity"`
	WarehouseName     string          `json:"warehouseName"`
	AvailableQuantity int             `json:"availableQuantity"`
}

// Subtotal devuelve precio * cantidad de la línea.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
