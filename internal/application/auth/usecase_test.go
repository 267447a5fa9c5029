package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/jhoicas/medisupply-core/internal/application/auth"
	"github.com/jhoicas/medisupply-core/internal/application/dto"
	"github.com/jhoicas/medisupply-core/internal/application/store"
	"github.com/jhoicas/medisupply-core/internal/domain/entity"
	"github.com/jhoicas/medisupply-core/internal/domain/storage"
	"github.com/jhoicas/medisupply-core/pkg/logger"
)

// fakeAPI implementa el puerto API con funciones inyectables.
type fakeAPI struct {
	login func(ctx context.Context, email, password string) (*dto.TokenResponse, error)
	me    func(ctx context.Context) (*dto.MeResponse, error)
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAPI) Me(ctx context.Context) (*dto.MeResponse, error) {
	return f.me(ctx)
}

func tokensOK() *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:  "access-1",
		IDToken:      "id-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    3600,
		TokenType:    "Bearer",
	}
}

func TestLogin_EstableceSesionCompleta(t *testing.T) {
	st := store.NewAuthStore(storage.NewMemory(), logger.Nop())
	api := &fakeAPI{
		login: func(_ context.Context, email, password string) (*dto.TokenResponse, error) {
			assert.Equal(t, "v@medisupply.test", email)
			assert.Equal(t, "secreto123", password)
			return tokensOK(), nil
		},
		me: func(_ context.Context) (*dto.MeResponse, error) {
			return &dto.MeResponse{ID: "usr-1", Email: "v@medisupply.test", Name: "V", Role: "seller"}, nil
		},
	}
	uc := appauth.NewSessionUseCase(api, st, logger.Nop())

	user, err := uc.Login(context.Background(), "v@medisupply.test", "secreto123")

	require.NoError(t, err)
	assert.Equal(t, "usr-1", user.ID)
	assert.True(t, st.IsAuthenticated())
	require.NotNil(t, st.Tokens())
	assert.Equal(t, "refresh-1", st.Tokens().RefreshToken)
	require.NotNil(t, st.User())
	assert.Equal(t, "seller", st.User().Role)
}

// Si "me" falla tras un login exitoso, los tokens quedan en el store para que
// la app reintente el perfil sin pedir credenciales otra vez.
func TestLogin_MeFalla_ConservaTokens(t *testing.T) {
	st := store.NewAuthStore(storage.NewMemory(), logger.Nop())
	api := &fakeAPI{
		login: func(_ context.Context, _, _ string) (*dto.TokenResponse, error) { return tokensOK(), nil },
		me:    func(_ context.Context) (*dto.MeResponse, error) { return nil, errors.New("timeout") },
	}
	uc := appauth.NewSessionUseCase(api, st, logger.Nop())

	_, err := uc.Login(context.Background(), "v@medisupply.test", "secreto123")

	require.Error(t, err)
	require.NotNil(t, st.Tokens(), "los tokens deben quedar para reintentar el perfil")
	assert.Nil(t, st.User())
}

func TestRestore_SinSesion(t *testing.T) {
	st := store.NewAuthStore(storage.NewMemory(), logger.Nop())
	uc := appauth.NewSessionUseCase(&fakeAPI{}, st, logger.Nop())

	_, ok := uc.Restore()
	assert.False(t, ok)
}

func TestRestore_ConSesionPersistida(t *testing.T) {
	kv := storage.NewMemory()
	previo := store.NewAuthStore(kv, logger.Nop())
	previo.Login(entity.User{ID: "usr-1", Name: "V"}, entity.AuthTokens{IDToken: "id-1", RefreshToken: "r"})

	st := store.NewAuthStore(kv, logger.Nop())
	uc := appauth.NewSessionUseCase(&fakeAPI{}, st, logger.Nop())

	user, ok := uc.Restore()
	require.True(t, ok)
	require.NotNil(t, user)
	assert.Equal(t, "usr-1", user.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// TransformUser: regla de presencia del perfil
// ──────────────────────────────────────────────────────────────────────────────

// El perfil solo existe en la entidad si al menos un sub-campo tiene valor.
func TestTransformUser_PerfilVacioEsNil(t *testing.T) {
	u := appauth.TransformUser(&dto.MeResponse{
		ID:      "usr-1",
		Email:   "v@medisupply.test",
		Name:    "V",
		Profile: &dto.ProfileResponse{},
	})
	assert.Nil(t, u.Profile, "un perfil sin campos no debe materializarse")

	u = appauth.TransformUser(&dto.MeResponse{ID: "usr-1"})
	assert.Nil(t, u.Profile, "sin perfil en la respuesta tampoco")
}

func TestTransformUser_PerfilConUnCampo(t *testing.T) {
	u := appauth.TransformUser(&dto.MeResponse{
		ID:      "usr-1",
		Profile: &dto.ProfileResponse{City: "Bogotá"},
	})
	require.NotNil(t, u.Profile)
	assert.Equal(t, "Bogotá", u.Profile.City)
	assert.Empty(t, u.Profile.Phone)
}

func TestTransformUser_CamposCompletos(t *testing.T) {
	u := appauth.TransformUser(&dto.MeResponse{
		ID:     "usr-1",
		Email:  "v@medisupply.test",
		Name:   "V",
		Role:   "seller",
		Groups: []string{"sellers", "north"},
		Profile: &dto.ProfileResponse{
			Phone:              "+57 300",
			InstitutionName:    "MediSupply",
			InstitutionType:    "distribuidor",
			TaxID:              "900111222-3",
			Address:            "Cll 1 # 2-3",
			City:               "Bogotá",
			Country:            "CO",
			RepresentativeName: "L. Vendedora",
		},
	})
	assert.Equal(t, []string{"sellers", "north"}, u.Groups)
	require.NotNil(t, u.Profile)
	assert.Equal(t, "900111222-3", u.Profile.TaxID)
	assert.Equal(t, "distribuidor", u.Profile.InstitutionType)
}
