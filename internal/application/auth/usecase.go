package auth

import (
	"context"
	"fmt"

	"github.com/jhoicas/medisupply-core/internal/application/dto"
	"github.com/jhoicas/medisupply-core/internal/application/store"
	"github.com/jhoicas/medisupply-core/internal/domain/entity"
	"github.com/jhoicas/medisupply-core/pkg/jwt"
	"github.com/jhoicas/medisupply-core/pkg/logger"
)

// API puerto hacia el backend para el flujo de sesión. La implementación
// concreta es el cliente HTTP; para tests se inyecta un fake.
type API interface {
	Login(ctx context.Context, email, password string) (*dto.TokenResponse, error)
	Me(ctx context.Context) (*dto.MeResponse, error)
}

// SessionUseCase orquesta login, restauración y cierre de sesión alrededor
// del AuthStore.
type SessionUseCase struct {
	api   API
	store *store.AuthStore
	log   *logger.Logger
}

// NewSessionUseCase construye el caso de uso de sesión.
func NewSessionUseCase(api API, st *store.AuthStore, log *logger.Logger) *SessionUseCase {
	return &SessionUseCase{api: api, store: st, log: log}
}

// Login autentica contra el backend, obtiene el perfil "me" y establece la
// sesión completa en el store. Los tokens se guardan antes de pedir "me"
// porque esa llamada ya viaja con bearer por el pipeline.
func (uc *SessionUseCase) Login(ctx context.Context, email, password string) (*entity.User, error) {
	res, err := uc.api.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	tokens := entity.AuthTokens{
		AccessToken:  res.AccessToken,
		IDToken:      res.IDToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
		TokenType:    res.TokenType,
	}
	uc.store.SetTokens(&tokens)

	me, err := uc.api.Me(ctx)
	if err != nil {
		// Los tokens quedan en el store: la app puede reintentar el perfil
		// sin volver a pedir credenciales.
		return nil, fmt.Errorf("obtener perfil: %w", err)
	}
	user := TransformUser(me)
	uc.store.Login(user, tokens)
	return &user, nil
}

// RefreshProfile vuelve a pedir "me" y reemplaza el usuario completo.
func (uc *SessionUseCase) RefreshProfile(ctx context.Context) (*entity.User, error) {
	me, err := uc.api.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtener perfil: %w", err)
	}
	user := TransformUser(me)
	uc.store.SetUser(&user)
	return &user, nil
}

// UpdateProfile aplica un parche parcial sobre el usuario en el store.
func (uc *SessionUseCase) UpdateProfile(patch entity.UserPatch) {
	uc.store.UpdateUser(patch)
}

// Logout cierra la sesión. El carrito se vacía vía el hook OnLogout
// registrado en el armado de la app.
func (uc *SessionUseCase) Logout() {
	uc.store.Logout()
}

// Restore informa si hay una sesión persistida utilizable (el AuthStore ya la
// cargó al construirse) y registra la expiración del id token para
// diagnóstico.
func (uc *SessionUseCase) Restore() (*entity.User, bool) {
	if !uc.store.IsAuthenticated() {
		return nil, false
	}
	if tok := uc.store.Tokens(); tok != nil && tok.IDToken != "" {
		if claims, err := jwt.DecodeUnverified(tok.IDToken); err == nil && claims.ExpiresAt != nil {
			uc.log.Debug().Time("expira", claims.ExpiresAt.Time).Msg("sesión restaurada")
		}
	}
	return uc.store.User(), true
}

// TransformUser construye la entidad User desde la respuesta "me". El perfil
// solo se incluye si al menos un sub-campo tiene valor; un perfil vacío se
// representa como nil.
func TransformUser(me *dto.MeResponse) entity.User {
	u := entity.User{
		ID:     me.ID,
		Email:  me.Email,
		Name:   me.Name,
		Role:   me.Role,
		Groups: me.Groups,
	}
	if me.Profile != nil {
		p := entity.UserProfile{
			Phone:              me.Profile.Phone,
			InstitutionName:    me.Profile.InstitutionName,
			InstitutionType:    me.Profile.InstitutionType,
			TaxID:              me.Profile.TaxID,
			Address:            me.Profile.Address,
			City:               me.Profile.City,
			Country:            me.Profile.Country,
			RepresentativeName: me.Profile.RepresentativeName,
		}
		if !p.IsEmpty() {
			u.Profile = &p
		}
	}
	return u
}
