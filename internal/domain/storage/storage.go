// Package storage define el contrato del almacenamiento clave-valor
// persistente del dispositivo. Las implementaciones concretas viven en
// internal/infrastructure; aquí solo el puerto y una implementación en
// memoria para tests.
package storage

// KeyValue almacenamiento clave-valor síncrono de strings. Cada SetItem
// sobrescribe durablemente el valor anterior de esa clave; no se asumen
// semánticas transaccionales ni de escritura parcial.
type KeyValue interface {
	// GetItem devuelve el valor y true, o ("", false) si la clave no existe.
	GetItem(key string) (string, bool)
	SetItem(key, value string)
	RemoveItem(key string)
	Clear()
	ListKeys() []string
}
