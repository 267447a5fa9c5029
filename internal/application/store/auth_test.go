package store_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/medisupply-core/internal/application/store"
	"github.com/jhoicas/medisupply-core/internal/domain/entity"
	"github.com/jhoicas/medisupply-core/internal/domain/storage"
	"github.com/jhoicas/medisupply-core/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newAuth(t *testing.T) (*store.AuthStore, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	return store.NewAuthStore(kv, logger.Nop()), kv
}

func demoUser() entity.User {
	return entity.User{
		ID:    "usr-1",
		Email: "vendedor@medisupply.test",
		Name:  "Laura Vendedora",
		Role:  entity.RoleSeller,
		Groups: []string{
			"sellers",
		},
	}
}

func demoTokens() entity.AuthTokens {
	return entity.AuthTokens{
		AccessToken:  "access-1",
		IDToken:      "id-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    3600,
		TokenType:    "Bearer",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Login / Logout
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_FlagDerivado(t *testing.T) {
	auth, _ := newAuth(t)

	auth.Login(demoUser(), demoTokens())

	assert.True(t, auth.IsAuthenticated())
	require.NotNil(t, auth.User())
	require.NotNil(t, auth.Tokens())
	assert.Equal(t, "usr-1", auth.User().ID)
}

// Logout limpia usuario y tokens, y vía el hook OnLogout vacía el carrito:
// escenario completo login → logout.
func TestLogout_LimpiaSesionYVaciaCarrito(t *testing.T) {
	kv := storage.NewMemory()
	auth := store.NewAuthStore(kv, logger.Nop())
	cart := store.NewCartStore(kv, logger.Nop())
	auth.OnLogout(cart.ClearCart)

	auth.Login(demoUser(), demoTokens())
	cart.AddItem(entity.CartItem{InventoryID: "inv-1", ProductPrice: decimal.NewFromInt(50)}, 2)
	cart.SetClient("cli-1")

	auth.Logout()

	assert.False(t, auth.IsAuthenticated())
	assert.Nil(t, auth.User())
	assert.Nil(t, auth.Tokens())
	assert.Equal(t, 0, cart.Len(), "cerrar sesión debe vaciar el carrito")
	assert.Empty(t, cart.SelectedClientID())
}

// Logout es idempotente: repetirlo sin sesión activa no hace daño.
func TestLogout_Idempotente(t *testing.T) {
	auth, _ := newAuth(t)

	auth.Logout()
	auth.Logout()

	assert.False(t, auth.IsAuthenticated())
	assert.Nil(t, auth.User())
}

// ──────────────────────────────────────────────────────────────────────────────
// Actualizaciones parciales
// ──────────────────────────────────────────────────────────────────────────────

// UpdateUser cambia solo los campos del patch; el resto queda intacto.
func TestUpdateUser_PreservaOtrosCampos(t *testing.T) {
	auth, _ := newAuth(t)
	auth.Login(demoUser(), demoTokens())

	nombre := "X"
	auth.UpdateUser(entity.UserPatch{Name: &nombre})

	u := auth.User()
	require.NotNil(t, u)
	assert.Equal(t, "X", u.Name)
	assert.Equal(t, "usr-1", u.ID, "el id no debe cambiar")
	assert.Equal(t, "vendedor@medisupply.test", u.Email, "el email no debe cambiar")
	assert.Equal(t, entity.RoleSeller, u.Role, "el role no debe cambiar")
	assert.Equal(t, []string{"sellers"}, u.Groups, "los groups no deben cambiar")
	assert.True(t, auth.IsAuthenticated(), "UpdateUser no altera isAuthenticated")
}

func TestUpdateUser_SinUsuario_NoOp(t *testing.T) {
	auth, _ := newAuth(t)

	nombre := "X"
	auth.UpdateUser(entity.UserPatch{Name: &nombre})

	assert.Nil(t, auth.User())
}

// UpdateTokens con patch parcial rota access/id y conserva el refresh token:
// exactamente lo que hace el flujo de refresh.
func TestUpdateTokens_ConservaRefreshToken(t *testing.T) {
	auth, _ := newAuth(t)
	auth.Login(demoUser(), demoTokens())

	access, id := "access-2", "id-2"
	auth.UpdateTokens(entity.TokenPatch{AccessToken: &access, IDToken: &id})

	tok := auth.Tokens()
	require.NotNil(t, tok)
	assert.Equal(t, "access-2", tok.AccessToken)
	assert.Equal(t, "id-2", tok.IDToken)
	assert.Equal(t, "refresh-1", tok.RefreshToken, "el refresh token debe conservarse")
}

func TestUpdateTokens_SinTokens_NoOp(t *testing.T) {
	auth, _ := newAuth(t)

	access := "access-2"
	auth.UpdateTokens(entity.TokenPatch{AccessToken: &access})

	assert.Nil(t, auth.Tokens())
}

// ──────────────────────────────────────────────────────────────────────────────
// Matiz documentado: el flag refleja solo el campo recién escrito
// ──────────────────────────────────────────────────────────────────────────────

// Comportamiento histórico de la app: SetUser/SetTokens calculan el flag solo
// desde el campo que acaban de escribir, no desde la conjunción de ambos.
// Este test fija ese contrato tal cual; si producto decide cambiarlo, este es
// el test que debe actualizarse.
func TestSetUserSetTokens_FlagSoloDelCampoEscrito(t *testing.T) {
	auth, _ := newAuth(t)

	u := demoUser()
	auth.SetUser(&u)
	assert.True(t, auth.IsAuthenticated(),
		"SetUser con tokens nil deja isAuthenticated=true (matiz documentado)")

	auth.SetTokens(nil)
	assert.False(t, auth.IsAuthenticated(),
		"SetTokens(nil) apaga el flag aunque el usuario siga presente")
	assert.NotNil(t, auth.User(), "el usuario sigue en el store (estado mixto)")
}

// ──────────────────────────────────────────────────────────────────────────────
// Persistencia (partialize)
// ──────────────────────────────────────────────────────────────────────────────

// El snapshot bajo auth-storage contiene solo user y tokens: el flag derivado
// jamás se persiste.
func TestPersistencia_SoloUserYTokens(t *testing.T) {
	auth, kv := newAuth(t)
	auth.Login(demoUser(), demoTokens())

	raw, ok := kv.GetItem(store.AuthStorageKey)
	require.True(t, ok, "debe existir el snapshot bajo auth-storage")

	var snap map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.Len(t, snap, 2, "el snapshot debe tener exactamente user y tokens")
	assert.Contains(t, snap, "user")
	assert.Contains(t, snap, "tokens")
	assert.NotContains(t, snap, "isAuthenticated")
}

// Al construir sobre un snapshot existente, isAuthenticated se recalcula
// desde la presencia de user/tokens, nunca de un valor persistido.
func TestPersistencia_RecalculaFlagAlCargar(t *testing.T) {
	kv := storage.NewMemory()
	auth := store.NewAuthStore(kv, logger.Nop())
	auth.Login(demoUser(), demoTokens())

	restaurado := store.NewAuthStore(kv, logger.Nop())
	assert.True(t, restaurado.IsAuthenticated())
	require.NotNil(t, restaurado.Tokens())
	assert.Equal(t, "refresh-1", restaurado.Tokens().RefreshToken)

	// Snapshot con ambos campos null → flag false.
	kv.SetItem(store.AuthStorageKey, `{"user":null,"tokens":null}`)
	vacio := store.NewAuthStore(kv, logger.Nop())
	assert.False(t, vacio.IsAuthenticated())

	// Snapshot solo con tokens → flag true (presencia de cualquiera de los dos).
	kv.SetItem(store.AuthStorageKey, `{"user":null,"tokens":{"accessToken":"a","idToken":"i","refreshToken":"r","expiresIn":60,"tokenType":"Bearer"}}`)
	soloTokens := store.NewAuthStore(kv, logger.Nop())
	assert.True(t, soloTokens.IsAuthenticated())
	assert.Nil(t, soloTokens.User())
}

// Un snapshot corrupto no debe tumbar el arranque: el store inicia vacío.
func TestPersistencia_SnapshotCorrupto_ArrancaVacio(t *testing.T) {
	kv := storage.NewMemory()
	kv.SetItem(store.AuthStorageKey, "{esto no es json")

	auth := store.NewAuthStore(kv, logger.Nop())

	assert.False(t, auth.IsAuthenticated())
	assert.Nil(t, auth.User())
}

// ──────────────────────────────────────────────────────────────────────────────
// Suscripciones y copias defensivas
// ──────────────────────────────────────────────────────────────────────────────

func TestSubscribe_NotificaMutaciones(t *testing.T) {
	auth, _ := newAuth(t)

	calls := 0
	unsub := auth.Subscribe(func() { calls++ })

	auth.Login(demoUser(), demoTokens())
	auth.Logout()
	require.Equal(t, 2, calls)

	unsub()
	u := demoUser()
	auth.SetUser(&u)
	assert.Equal(t, 2, calls)
}

// Mutar la copia devuelta por User() no debe afectar el estado interno.
func TestUser_DevuelveCopia(t *testing.T) {
	auth, _ := newAuth(t)
	auth.Login(demoUser(), demoTokens())

	copia := auth.User()
	copia.Name = "Mutada"
	copia.Groups[0] = "hackers"

	assert.Equal(t, "Laura Vendedora", auth.User().Name)
	assert.Equal(t, "sellers", auth.User().Groups[0])
}
