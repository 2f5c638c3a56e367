package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidState       = errors.New("transición de estado no permitida")
	ErrReceiptRejected    = errors.New("recepción rechazada por validación contra la orden de compra")
)

// Issue describe un problema puntual de validación (campo + código estable para el cliente).
type Issue struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError agrupa varios Issue. errors.Is(err, ErrInvalidInput) es verdadero;
// si Kind no es nil, errors.Is(err, Kind) también.
type ValidationError struct {
	Kind   error
	Issues []Issue
}

// NewValidationError construye el error con los issues dados.
func NewValidationError(issues ...Issue) *ValidationError {
	return &ValidationError{Issues: issues}
}

// NewReceiptRejected error de validación de una recepción (GRN).
func NewReceiptRejected(issues ...Issue) *ValidationError {
	return &ValidationError{Kind: ErrReceiptRejected, Issues: issues}
}

func (e *ValidationError) Error() string {
	head := ErrInvalidInput.Error()
	if e.Kind != nil {
		head = e.Kind.Error()
	}
	if len(e.Issues) == 0 {
		return head
	}
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, is.Code+": "+is.Message)
	}
	return head + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput || (e.Kind != nil && target == e.Kind)
}
