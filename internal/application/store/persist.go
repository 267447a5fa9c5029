// Package store contiene los contenedores de estado de la app: sesión
// (AuthStore) y carrito (CartStore). Son singletons por proceso inyectados
// explícitamente, con ciclo de vida cargar-al-inicio / mutar-en-memoria /
// persistir-en-cada-mutación sobre el almacenamiento clave-valor del
// dispositivo.
package store

import (
	"encoding/json"

	"github.com/jhoicas/medisupply-core/internal/domain/entity"
	"github.com/jhoicas/medisupply-core/internal/domain/storage"
	"github.com/jhoicas/medisupply-core/pkg/logger"
)

// Claves de persistencia. Deben conservarse exactamente para interoperar con
// los datos ya persistidos por versiones anteriores de la app.
const (
	AuthStorageKey = "auth-storage"
	CartStorageKey = "cart-storage"
)

// authSnapshot subconjunto persistido del AuthStore (partialize): solo user y
// tokens. isAuthenticated nunca se persiste; se recalcula al cargar a partir
// de la presencia de user/tokens.
type authSnapshot struct {
	User   *entity.User       `json:"user"`
	Tokens *entity.AuthTokens `json:"tokens"`
}

// cartSnapshot estado completo persistido del CartStore.
type cartSnapshot struct {
	Items            []entity.CartItem `json:"items"`
	SelectedClientID string            `json:"selectedClientId,omitempty"`
	SelectedVisitID  string            `json:"selectedVisitId,omitempty"`
}

// save serializa y sobrescribe el snapshot bajo key. Un error de
// serialización se registra y se descarta: las mutaciones del store nunca
// fallan hacia el caller.
func save(kv storage.KeyValue, log *logger.Logger, key string, snap any) {
	raw, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("persistir snapshot")
		return
	}
	kv.SetItem(key, string(raw))
}

// load deserializa el snapshot bajo key en out. Devuelve false si no existe
// o está corrupto (en cuyo caso el store arranca vacío).
func load(kv storage.KeyValue, log *logger.Logger, key string, out any) bool {
	raw, ok := kv.GetItem(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("snapshot persistido inválido, se ignora")
		return false
	}
	return true
}
