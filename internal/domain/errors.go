package domain

import "errors"

// Errores de dominio (sin dependencias externas). Cada uno distingue la
// remediación del llamador: registrar la unidad, aportar densidad, reponer
// stock, corregir el dato de entrada, etc. Nunca se reintentan aquí.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrItemArchived           = errors.New("item archivado: no acepta ajustes")
	ErrUnknownUnit            = errors.New("unidad no registrada en el catálogo")
	ErrMissingDensity         = errors.New("conversión peso-volumen sin densidad")
	ErrIncompatibleDimensions = errors.New("dimensiones de unidad incompatibles")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrLotNotFound            = errors.New("lote de origen no encontrado")
)
