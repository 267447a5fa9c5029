package store

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/medisupply-core/internal/domain/entity"
	"github.com/jhoicas/medisupply-core/internal/domain/storage"
	"github.com/jhoicas/medisupply-core/pkg/logger"
)

// CartStore contenedor del estado del pedido en curso: líneas del carrito
// (únicas por inventoryId, en orden de inserción) más el contexto opcional de
// cliente/visita que fija el flujo de vendedor. Se persiste completo bajo
// CartStorageKey tras cada mutación.
//
// Invariante: ninguna línea existe con Quantity <= 0; esas actualizaciones
// eliminan la línea en lugar de almacenarla.
type CartStore struct {
	mu               sync.Mutex
	items            []entity.CartItem
	selectedClientID string
	selectedVisitID  string

	kv  storage.KeyValue
	log *logger.Logger

	subs    map[int]func()
	nextSub int
}

// NewCartStore construye el store y carga el snapshot persistido si existe.
func NewCartStore(kv storage.KeyValue, log *logger.Logger) *CartStore {
	s := &CartStore{kv: kv, log: log, subs: make(map[int]func())}
	var snap cartSnapshot
	if load(kv, log, CartStorageKey, &snap) {
		s.items = snap.Items
		s.selectedClientID = snap.SelectedClientID
		s.selectedVisitID = snap.SelectedVisitID
	}
	return s
}

// ── Mutaciones ────────────────────────────────────────────────────────────────

// AddItem agrega quantity unidades de item al carrito. Si quantity <= 0 es
// no-op. Si ya existe una línea con el mismo InventoryID solo se incrementa
// su cantidad: los demás campos de la línea existente se conservan y los del
// item entrante se descartan. Si no existe, se agrega al final (orden de
// inserción). El campo Quantity del item entrante se ignora; manda el
// parámetro quantity.
func (s *CartStore) AddItem(item entity.CartItem, quantity int) {
	if quantity <= 0 {
		return
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].InventoryID == item.InventoryID {
			s.items[i].Quantity += quantity
			s.persist()
			s.mu.Unlock()
			s.notify()
			return
		}
	}
	item.Quantity = quantity
	s.items = append(s.items, item)
	s.persist()
	s.mu.Unlock()
	s.notify()
}

// UpdateQuantity fija la cantidad exacta (absoluta, no delta) de la línea con
// ese inventoryID. Con quantity <= 0 equivale a RemoveItem. No-op si el
// inventoryID no está en el carrito.
func (s *CartStore) UpdateQuantity(inventoryID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(inventoryID)
		return
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].InventoryID == inventoryID {
			s.items[i].Quantity = quantity
			s.persist()
			s.mu.Unlock()
			s.notify()
			return
		}
	}
	s.mu.Unlock()
}

// RemoveItem elimina la línea con ese inventoryID. No-op silencioso si no
// existe.
func (s *CartStore) RemoveItem(inventoryID string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].InventoryID == inventoryID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist()
			s.mu.Unlock()
			s.notify()
			return
		}
	}
	s.mu.Unlock()
}

// ClearCart vacía las líneas y limpia cliente y visita seleccionados. Los
// tres campos se resetean siempre como una unidad.
func (s *CartStore) ClearCart() {
	s.mu.Lock()
	s.items = nil
	s.selectedClientID = ""
	s.selectedVisitID = ""
	s.persist()
	s.mu.Unlock()
	s.notify()
}

// SetClient fija el cliente del pedido en curso sin tocar las líneas.
func (s *CartStore) SetClient(clientID string) {
	s.mu.Lock()
	s.selectedClientID = clientID
	s.persist()
	s.mu.Unlock()
	s.notify()
}

// SetVisit fija (o limpia, con "") la visita del pedido en curso sin tocar
// las líneas.
func (s *CartStore) SetVisit(visitID string) {
	s.mu.Lock()
	s.selectedVisitID = visitID
	s.persist()
	s.mu.Unlock()
	s.notify()
}

// ── Getters ───────────────────────────────────────────────────────────────────

// Items devuelve una copia de las líneas en orden de inserción.
func (s *CartStore) Items() []entity.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.CartItem(nil), s.items...)
}

// Len devuelve el número de líneas.
func (s *CartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// SelectedClientID devuelve el cliente seleccionado ("" si ninguno).
func (s *CartStore) SelectedClientID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedClientID
}

// SelectedVisitID devuelve la visita seleccionada ("" si ninguna).
func (s *CartStore) SelectedVisitID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedVisitID
}

// Subtotal devuelve precio * cantidad de la línea con ese inventoryID, o 0 si
// no existe.
func (s *CartStore) Subtotal(inventoryID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].InventoryID == inventoryID {
			return s.items[i].Subtotal()
		}
	}
	return decimal.Zero
}

// Total devuelve la suma de precio * cantidad sobre todas las líneas; 0 para
// carrito vacío.
func (s *CartStore) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for i := range s.items {
		total = total.Add(s.items[i].Subtotal())
	}
	return total
}

// Subscribe registra un callback que se invoca tras cada mutación. Devuelve
// la función para desuscribirse.
func (s *CartStore) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// persist escribe el snapshot completo. Debe llamarse con el mutex tomado.
// Items nunca se persiste como null: un carrito vacío serializa items: [].
func (s *CartStore) persist() {
	items := s.items
	if items == nil {
		items = []entity.CartItem{}
	}
	save(s.kv, s.log, CartStorageKey, cartSnapshot{
		Items:            items,
		SelectedClientID: s.selectedClientID,
		SelectedVisitID:  s.selectedVisitID,
	})
}

func (s *CartStore) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
