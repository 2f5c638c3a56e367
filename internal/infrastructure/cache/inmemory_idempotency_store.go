package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/erp-api/internal/application/ports"
)

var _ ports.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

type entry struct {
	resp      *ports.StoredResponse // nil = reservada, sin respuesta
	expiresAt time.Time
}

// InMemoryIdempotencyStore para una sola instancia y para pruebas.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewInMemoryIdempotencyStore construye el almacén vacío.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{entries: make(map[string]entry), now: time.Now}
}

func (s *InMemoryIdempotencyStore) live(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

// Reserve marca la llave si no existe o venció.
func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(key); ok {
		return false, nil
	}
	s.entries[key] = entry{expiresAt: s.now().Add(ttl)}
	return true, nil
}

// Get devuelve la respuesta guardada o ErrKeyInFlight.
func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return nil, nil
	}
	if e.resp == nil {
		return nil, ports.ErrKeyInFlight
	}
	cp := *e.resp
	return &cp, nil
}

// Save guarda la respuesta final.
func (s *InMemoryIdempotencyStore) Save(_ context.Context, key string, resp ports.StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{resp: &resp, expiresAt: s.now().Add(ttl)}
	return nil
}

// Release borra la llave.
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Size cantidad de llaves vigentes.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.entries {
		if _, ok := s.live(k); ok {
			n++
		}
	}
	return n
}
