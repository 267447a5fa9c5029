package securestore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/medisupply-core/internal/domain"
	"github.com/jhoicas/medisupply-core/internal/infrastructure/securestore"
)

const passphrase = "passphrase-de-test"

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	st, err := securestore.Open(dir, passphrase)
	require.NoError(t, err)

	_, ok := st.GetItem("auth-storage")
	assert.False(t, ok, "clave inexistente debe dar ok=false")

	st.SetItem("auth-storage", `{"user":null,"tokens":null}`)
	st.SetItem("cart-storage", `{"items":[]}`)

	v, ok := st.GetItem("auth-storage")
	require.True(t, ok)
	assert.Equal(t, `{"user":null,"tokens":null}`, v)
	assert.Equal(t, []string{"auth-storage", "cart-storage"}, st.ListKeys())

	st.RemoveItem("auth-storage")
	_, ok = st.GetItem("auth-storage")
	assert.False(t, ok)

	st.Clear()
	assert.Empty(t, st.ListKeys())
	require.NoError(t, st.Err())
}

// Cada SetItem sobrescribe durablemente: una reapertura con el mismo
// passphrase ve el último valor.
func TestStore_PersisteEntreAperturas(t *testing.T) {
	dir := t.TempDir()
	st, err := securestore.Open(dir, passphrase)
	require.NoError(t, err)
	st.SetItem("cart-storage", "v1")
	st.SetItem("cart-storage", "v2")
	require.NoError(t, st.Err())

	otro, err := securestore.Open(dir, passphrase)
	require.NoError(t, err)
	v, ok := otro.GetItem("cart-storage")
	require.True(t, ok)
	assert.Equal(t, "v2", v, "debe sobrevivir el último valor escrito")
}

func TestStore_PassphraseIncorrecto(t *testing.T) {
	dir := t.TempDir()
	st, err := securestore.Open(dir, passphrase)
	require.NoError(t, err)
	st.SetItem("k", "v")

	_, err = securestore.Open(dir, "otro-passphrase")
	assert.ErrorIs(t, err, domain.ErrStorageCorrupted,
		"passphrase incorrecto debe distinguirse de otros errores")
}

func TestStore_ArchivoCorrupto(t *testing.T) {
	dir := t.TempDir()
	st, err := securestore.Open(dir, passphrase)
	require.NoError(t, err)
	st.SetItem("k", "v")

	// Voltear un byte del contenido sellado invalida el tag AEAD.
	path := filepath.Join(dir, "medisupply.store")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = securestore.Open(dir, passphrase)
	assert.ErrorIs(t, err, domain.ErrStorageCorrupted)
}

func TestStore_ArchivoDemasiadoCorto(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medisupply.store")
	require.NoError(t, os.WriteFile(path, []byte("corto"), 0o600))

	_, err := securestore.Open(dir, passphrase)
	assert.ErrorIs(t, err, domain.ErrStorageCorrupted)
}
