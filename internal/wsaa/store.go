package wsaa

import (
	"context"
	"sync"

	"github.com/rezonia/afip-client/internal/model"
)

// TokenStore is an optional, caller-supplied ticket cache shared across
// processes. The manager treats it as foreign state: Get and Save are
// independent best-effort calls, failures are logged and never fatal,
// and the in-memory ticket always takes priority when valid.
type TokenStore interface {
	// Get returns the stored ticket for (cuit, environment), or nil
	// when absent.
	Get(ctx context.Context, cuit string, env model.Environment) (*model.Ticket, error)

	// Save persists a freshly obtained ticket.
	Save(ctx context.Context, cuit string, env model.Environment, ticket *model.Ticket) error
}

// MemoryStore is a process-local TokenStore, useful for tests and as a
// reference implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]*model.Ticket
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tickets: make(map[string]*model.Ticket)}
}

func storeKey(cuit string, env model.Environment) string {
	return cuit + "|" + string(env)
}

// Get returns the stored ticket, or nil when absent.
func (s *MemoryStore) Get(_ context.Context, cuit string, env model.Environment) (*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickets[storeKey(cuit, env)], nil
}

// Save stores a ticket, replacing any previous one.
func (s *MemoryStore) Save(_ context.Context, cuit string, env model.Environment, ticket *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[storeKey(cuit, env)] = ticket
	return nil
}
