// Package securestore implementa el almacenamiento clave-valor cifrado del
// dispositivo (contraparte de expo-secure-store): un único archivo con un
// mapa JSON clave→valor sellado con XChaCha20-Poly1305, clave derivada del
// passphrase con scrypt.
package securestore

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/jhoicas/medisupply-core/internal/domain"
)

const (
	fileName = "medisupply.store"
	saltLen  = 16

	// Parámetros scrypt: N interactivo (el archivo se abre una vez por
	// proceso, no por operación).
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Store almacenamiento cifrado en archivo que implementa storage.KeyValue.
// Todas las mutaciones reescriben el archivo completo con un nonce nuevo.
type Store struct {
	mu   sync.Mutex
	path string
	aead cipher.AEAD
	salt []byte
	data map[string]string
	err  error // último error de escritura (el contrato KeyValue no devuelve error)
}

// Open abre (o crea) el almacenamiento en dir, derivando la clave de cifrado
// del passphrase. Devuelve domain.ErrStorageCorrupted si el archivo existe
// pero no puede descifrarse (passphrase incorrecto o archivo dañado).
func Open(dir, passphrase string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("crear directorio de almacenamiento: %w", err)
	}
	path := filepath.Join(dir, fileName)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return create(path, passphrase)
	}
	if err != nil {
		return nil, fmt.Errorf("leer almacenamiento: %w", err)
	}
	if len(raw) < saltLen+chacha20poly1305.NonceSizeX {
		return nil, domain.ErrStorageCorrupted
	}

	salt := raw[:saltLen]
	aead, err := deriveAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}
	nonce := raw[saltLen : saltLen+chacha20poly1305.NonceSizeX]
	sealed := raw[saltLen+chacha20poly1305.NonceSizeX:]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, domain.ErrStorageCorrupted
	}
	data := make(map[string]string)
	if err := json.Unmarshal(plain, &data); err != nil {
		return nil, domain.ErrStorageCorrupted
	}
	return &Store{path: path, aead: aead, salt: salt, data: data}, nil
}

func create(path, passphrase string) (*Store, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generar salt: %w", err)
	}
	aead, err := deriveAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path, aead: aead, salt: salt, data: make(map[string]string)}
	if err := s.flush(); err != nil {
		return nil, err
	}
	return s, nil
}

func deriveAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derivar clave: %w", err)
	}
	return chacha20poly1305.NewX(key)
}

// flush reescribe el archivo completo: salt + nonce aleatorio + mapa sellado.
// Debe llamarse con el mutex tomado.
func (s *Store) flush() error {
	plain, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("serializar almacenamiento: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generar nonce: %w", err)
	}
	out := make([]byte, 0, saltLen+len(nonce)+len(plain)+s.aead.Overhead())
	out = append(out, s.salt...)
	out = append(out, nonce...)
	out = s.aead.Seal(out, nonce, plain, nil)
	if err := os.WriteFile(s.path, out, 0o600); err != nil {
		return fmt.Errorf("escribir almacenamiento: %w", err)
	}
	return nil
}

func (s *Store) GetItem(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *Store) SetItem(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.err = s.flush()
}

func (s *Store) RemoveItem(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	s.err = s.flush()
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	s.err = s.flush()
}

func (s *Store) ListKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Err devuelve el último error de escritura, o nil. El contrato síncrono de
// KeyValue no permite devolver errores por operación.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
