package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNoRefreshToken   = errors.New("no hay refresh token disponible")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrUserNotFound     = errors.New("usuario no encontrado")
	ErrEmptyCart        = errors.New("el carrito está vacío")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrStorageCorrupted = errors.New("almacenamiento local corrupto o clave incorrecta")
)
