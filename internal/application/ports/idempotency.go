// Package ports define los puertos de salida que la capa de aplicación usa sin conocer el adaptador.
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrKeyInFlight la llave está reservada por una petición que aún no termina.
var ErrKeyInFlight = errors.New("idempotency key en proceso")

// StoredResponse respuesta HTTP guardada para repetir ante la misma Idempotency-Key.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore llaves de idempotencia por empresa.
// Reserve es atómico (SETNX): solo la primera petición obtiene true.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Get devuelve la respuesta guardada; ErrKeyInFlight si la llave sigue reservada sin respuesta.
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	// Release libera la reserva cuando la petición falla y puede reintentarse.
	Release(ctx context.Context, key string) error
}
