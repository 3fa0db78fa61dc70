// internal/registry/registry.go
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tamzrod/modbus-slavesim/internal/event"
	"github.com/tamzrod/modbus-slavesim/internal/slave"
)

var (
	// ErrDuplicateID reports an Add with a slave id or endpoint already present.
	ErrDuplicateID = errors.New("registry: duplicate slave id")

	// ErrEndpointConflict reports an Add whose endpoint collides with a
	// currently claimed endpoint.
	ErrEndpointConflict = errors.New("registry: endpoint conflict")

	// ErrSlaveBusy reports a Remove against a slave that is not Stopped or
	// Failed.
	ErrSlaveBusy = errors.New("registry: slave busy")

	// ErrNotFound reports an unknown slave id.
	ErrNotFound = errors.New("registry: slave not found")
)

// Registry owns the collection of slaves. It enforces id uniqueness and
// endpoint exclusivity and threads the shared event sink into every slave
// it constructs. Its lock is distinct from the per-store locks, so control
// operations never contend with in-flight register traffic on other slaves.
type Registry struct {
	sink   event.Sink
	claims *claims

	mu     sync.Mutex
	slaves map[string]*slave.Slave
	order  []string // insertion order, for deterministic listings
}

// New creates an empty registry. All slaves it constructs share the sink.
func New(sink event.Sink) *Registry {
	return &Registry{
		sink:   sink,
		claims: newClaims(),
		slaves: make(map[string]*slave.Slave),
	}
}

// Add validates the config against the registry's invariants and constructs
// the slave in Stopped state.
func (r *Registry) Add(cfg slave.Config) (string, error) {
	if cfg.ID == "" {
		return "", fmt.Errorf("registry: slave id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slaves[cfg.ID]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, cfg.ID)
	}
	if owner, taken := r.claims.ownerOf(cfg.Endpoint()); taken {
		return "", fmt.Errorf("%w: %s bound by slave %s", ErrEndpointConflict, cfg.Endpoint(), owner)
	}

	s, err := slave.New(cfg, r.sink, r.claims)
	if err != nil {
		return "", err
	}
	r.slaves[cfg.ID] = s
	r.order = append(r.order, cfg.ID)
	event.Postf(r.sink, cfg.Name, event.Info, "slave added (%s %s)", cfg.Protocol, cfg.Endpoint())
	return cfg.ID, nil
}

// Remove deletes a slave. Only Stopped or Failed slaves may be removed.
// Retiring the slave first closes the race against a concurrent Start:
// a retired slave refuses to bind even if a caller kept its pointer.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slaves[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := s.Retire(); err != nil {
		return fmt.Errorf("%w: %s is %s", ErrSlaveBusy, id, s.State())
	}

	delete(r.slaves, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	event.Postf(r.sink, s.Name(), event.Info, "slave removed")
	return nil
}

// Get returns the slave with the given id.
func (r *Registry) Get(id string) (*slave.Slave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slaves[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// List returns all slaves in insertion order.
func (r *Registry) List() []*slave.Slave {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*slave.Slave, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.slaves[id])
	}
	return out
}

// Start starts one slave by id.
func (r *Registry) Start(id string) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	return s.Start()
}

// Stop stops one slave by id.
func (r *Registry) Stop(id string) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	return s.Stop()
}

// Reset clears one Failed slave by id.
func (r *Registry) Reset(id string) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	return s.Reset()
}

// StartAll starts every slave, best effort. Per-slave failures are
// collected by id; one failing slave never blocks the others.
func (r *Registry) StartAll() map[string]error {
	return r.each(func(s *slave.Slave) error { return s.Start() })
}

// StopAll stops every slave, best effort.
func (r *Registry) StopAll() map[string]error {
	return r.each(func(s *slave.Slave) error { return s.Stop() })
}

// Close stops every slave; used at process shutdown.
func (r *Registry) Close() {
	r.StopAll()
}

func (r *Registry) each(op func(*slave.Slave) error) map[string]error {
	failures := make(map[string]error)
	for _, s := range r.List() {
		if err := op(s); err != nil {
			failures[s.ID()] = err
		}
	}
	return failures
}
