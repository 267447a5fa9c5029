package store

import (
	"sync"

	"github.com/jhoicas/medisupply-core/internal/domain/entity"
	"github.com/jhoicas/medisupply-core/internal/domain/storage"
	"github.com/jhoicas/medisupply-core/pkg/logger"
)

// AuthStore contenedor del estado de sesión: usuario actual, paquete de
// tokens y el flag derivado isAuthenticated. Persiste {user, tokens} bajo
// AuthStorageKey tras cada mutación; el flag se recalcula al cargar.
//
// Todas las operaciones son síncronas y atómicas bajo un mutex (el
// equivalente en Go a la atomicidad del event loop de la app móvil). Ninguna
// hace I/O de red.
type AuthStore struct {
	mu            sync.Mutex
	user          *entity.User
	tokens        *entity.AuthTokens
	authenticated bool

	kv  storage.KeyValue
	log *logger.Logger

	onLogout []func()
	subs     map[int]func()
	nextSub  int
}

// NewAuthStore construye el store y carga el snapshot persistido si existe.
// isAuthenticated se recalcula desde la presencia de user/tokens; nunca se
// confía en un flag persistido.
func NewAuthStore(kv storage.KeyValue, log *logger.Logger) *AuthStore {
	s := &AuthStore{kv: kv, log: log, subs: make(map[int]func())}
	var snap authSnapshot
	if load(kv, log, AuthStorageKey, &snap) {
		s.user = snap.User
		s.tokens = snap.Tokens
		s.authenticated = snap.User != nil || snap.Tokens != nil
	}
	return s
}

// ── Getters ───────────────────────────────────────────────────────────────────

// User devuelve una copia del usuario actual, o nil si no hay sesión.
func (s *AuthStore) User() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

// Tokens devuelve una copia del paquete de tokens actual, o nil.
func (s *AuthStore) Tokens() *entity.AuthTokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return nil
	}
	t := *s.tokens
	return &t
}

// IsAuthenticated devuelve el flag derivado de autenticación.
func (s *AuthStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// ── Mutaciones ────────────────────────────────────────────────────────────────

// SetUser reemplaza el usuario. OJO: el flag isAuthenticated refleja SOLO la
// presencia del usuario en esta llamada, sin considerar tokens. Es el
// comportamiento histórico de la app (ver nota en DESIGN.md): SetUser(u) con
// tokens nil deja isAuthenticated=true. No "corregir" sin decisión de
// producto.
func (s *AuthStore) SetUser(user *entity.User) {
	s.mu.Lock()
	s.user = copyUser(user)
	s.authenticated = user != nil
	s.persist()
	s.mu.Unlock()
	s.notify()
}

// SetTokens reemplaza los tokens. Mismo matiz que SetUser: el flag refleja
// solo la presencia de tokens en esta llamada.
func (s *AuthStore) SetTokens(tokens *entity.AuthTokens) {
	s.mu.Lock()
	if tokens == nil {
		s.tokens = nil
	} else {
		t := *tokens
		s.tokens = &t
	}
	s.authenticated = tokens != nil
	s.persist()
	s.mu.Unlock()
	s.notify()
}

// Login establece usuario y tokens en una sola mutación atómica.
func (s *AuthStore) Login(user entity.User, tokens entity.AuthTokens) {
	s.mu.Lock()
	u := user
	t := tokens
	s.user = &u
	s.tokens = &t
	s.authenticated = true
	s.persist()
	s.mu.Unlock()
	s.log.Info().Str("user_id", user.ID).Msg("sesión iniciada")
	s.notify()
}

// Logout limpia usuario y tokens. Idempotente: llamar sin sesión activa no
// hace daño. Dispara los hooks registrados con OnLogout (el carrito se
// suscribe para vaciarse) en cada invocación.
func (s *AuthStore) Logout() {
	s.mu.Lock()
	s.user = nil
	s.tokens = nil
	s.authenticated = false
	s.persist()
	hooks := make([]func(), len(s.onLogout))
	copy(hooks, s.onLogout)
	s.mu.Unlock()

	for _, h := range hooks {
		h()
	}
	s.log.Info().Msg("sesión cerrada")
	s.notify()
}

// UpdateUser aplica un merge superficial sobre el usuario actual. No-op si no
// hay usuario. No altera isAuthenticated.
func (s *AuthStore) UpdateUser(patch entity.UserPatch) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	s.user.Apply(patch)
	s.persist()
	s.mu.Unlock()
	s.notify()
}

// UpdateTokens aplica un merge superficial sobre los tokens actuales. No-op
// si no hay tokens. No altera isAuthenticated. Es la operación que usa el
// flujo de refresh: rota access/id token y expiración conservando el refresh
// token.
func (s *AuthStore) UpdateTokens(patch entity.TokenPatch) {
	s.mu.Lock()
	if s.tokens == nil {
		s.mu.Unlock()
		return
	}
	s.tokens.Apply(patch)
	s.persist()
	s.mu.Unlock()
	s.notify()
}

// ── Suscripciones ─────────────────────────────────────────────────────────────

// OnLogout registra un hook que se dispara en cada Logout. Así el carrito se
// vacía al cerrar sesión sin que este paquete dependa del CartStore (ni al
// revés).
func (s *AuthStore) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Subscribe registra un callback que se invoca tras cada mutación. Devuelve
// la función para desuscribirse.
func (s *AuthStore) Subscribe(fn func()) func() {
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

// persist escribe el snapshot {user, tokens}. Debe llamarse con el mutex
// tomado.
func (s *AuthStore) persist() {
	save(s.kv, s.log, AuthStorageKey, authSnapshot{User: s.user, Tokens: s.tokens})
}

// notify invoca los suscriptores fuera del mutex para que puedan leer el
// store sin bloquearse.
func (s *AuthStore) notify() {
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

func copyUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Groups != nil {
		c.Groups = append([]string(nil), u.Groups...)
	}
	if u.Profile != nil {
		p := *u.Profile
		c.Profile = &p
	}
	return &c
}
