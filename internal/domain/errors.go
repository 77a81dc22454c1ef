package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los handlers HTTP los mapean a códigos de estado; ninguna operación deja
// una entidad a medio mutar cuando retorna uno de estos errores.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("actor no autorizado para este recurso")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOverUse           = errors.New("uso mayor al restante de la asignación")
	ErrOverReturn        = errors.New("devolución mayor al restante de la asignación")
)
