package wsaa

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/rezonia/afip-client/internal/model"
	"github.com/rezonia/afip-client/internal/soap"
)

// RenewalBuffer is how long before expiry a cached ticket stops being
// served and a renewal is triggered.
const RenewalBuffer = 5 * time.Minute

// Manager owns the authentication ticket for one (cuit, environment,
// service) triple. No other component talks to the LoginCms endpoint.
//
// Acquisition is serialized by a mutex so concurrent callers share a
// single in-flight exchange; redundant tickets would each be valid, the
// serialization just avoids pointless remote authentication calls.
type Manager struct {
	cuit      string
	env       model.Environment
	service   string
	signer    *Signer
	transport *soap.Client
	store     TokenStore
	endpoint  string
	verbose   bool

	now func() time.Time

	mu     sync.Mutex
	ticket *model.Ticket
}

// ManagerOption configures the manager
type ManagerOption func(*Manager)

// WithTokenStore attaches an external ticket store.
func WithTokenStore(store TokenStore) ManagerOption {
	return func(m *Manager) {
		m.store = store
	}
}

// WithService scopes the ticket to a service other than wsfe.
func WithService(service string) ManagerOption {
	return func(m *Manager) {
		m.service = service
	}
}

// WithEndpoint overrides the LoginCms URL, mainly for tests.
func WithEndpoint(url string) ManagerOption {
	return func(m *Manager) {
		m.endpoint = url
	}
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithVerbose enables best-effort store failure logging detail.
func WithVerbose(verbose bool) ManagerOption {
	return func(m *Manager) {
		m.verbose = verbose
	}
}

// NewManager creates a ticket lifecycle manager.
func NewManager(cuit string, env model.Environment, signer *Signer, transport *soap.Client, opts ...ManagerOption) *Manager {
	m := &Manager{
		cuit:      cuit,
		env:       env,
		service:   ServiceWSFE,
		signer:    signer,
		transport: transport,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.endpoint == "" {
		m.endpoint = env.WSAAEndpoint()
	}
	return m
}

// Ticket returns a valid authentication ticket, renewing it when the
// cached one is inside the renewal buffer. Signing and exchange
// failures surface as authentication errors; store failures never do.
func (m *Manager) Ticket(ctx context.Context) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.ticket.ValidFor(now, RenewalBuffer) {
		return m.ticket, nil
	}

	if m.store != nil {
		if stored, err := m.store.Get(ctx, m.cuit, m.env); err != nil {
			log.Printf("[WSAA] token store get failed, treating as cache miss: %v", err)
		} else if stored.ValidFor(now, RenewalBuffer) {
			m.ticket = stored
			return stored, nil
		}
	}

	ticket, err := m.authenticate(ctx, now)
	if err != nil {
		return nil, err
	}
	m.ticket = ticket

	if m.store != nil {
		if err := m.store.Save(ctx, m.cuit, m.env, ticket); err != nil {
			log.Printf("[WSAA] token store save failed, ticket kept in memory only: %v", err)
		}
	}

	return ticket, nil
}

// Invalidate clears the cached ticket. The next acquisition will hit
// the store or the remote service.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticket = nil
}

func (m *Manager) authenticate(ctx context.Context, now time.Time) (*model.Ticket, error) {
	tra, err := BuildTRA(m.service, now)
	if err != nil {
		return nil, model.NewAuthError("failed to build login request", err)
	}

	cms, err := m.signer.Sign(tra)
	if err != nil {
		return nil, err
	}

	envelope, err := BuildLoginEnvelope(cms)
	if err != nil {
		return nil, model.NewAuthError("failed to build login envelope", err)
	}

	if m.verbose {
		log.Printf("[WSAA] requesting %s ticket for %s (%s)", m.service, m.cuit, m.env)
	}

	resp, err := m.transport.Call(ctx, m.endpoint, "", envelope)
	if err != nil {
		return nil, err
	}

	return ParseLoginResponse(resp.Body)
}
