package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidState      = errors.New("operación no permitida en el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con una operación en curso")
	ErrUnauthorized      = errors.New("no autorizado")

	// ErrTxConflict se devuelve cuando los reintentos de la transacción se agotan
	// (bloqueos, serialización). Es un error interno, nunca de negocio.
	ErrTxConflict = errors.New("conflicto transaccional persistente")
)
