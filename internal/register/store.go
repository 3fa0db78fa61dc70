// internal/register/store.go
package register

import (
	"fmt"
	"sort"
	"sync"
)

// Entry is one row of a store snapshot: the point definition plus its
// current value.
type Entry struct {
	Address uint16
	Point   Point
	Value   uint16
}

// Store holds the current values of one register kind for one slave.
// Every address carries a backing Point; every write is checked against
// that point before it is applied. All access is serialized per store, so
// a reader never observes a partially applied write.
type Store struct {
	kind Kind

	mu     sync.RWMutex
	points map[uint16]Point
	values map[uint16]uint16
}

// NewStore creates an empty store for one register kind.
func NewStore(kind Kind) *Store {
	return &Store{
		kind:   kind,
		points: make(map[uint16]Point),
		values: make(map[uint16]uint16),
	}
}

// Kind returns the register area this store backs.
func (s *Store) Kind() Kind {
	return s.kind
}

// Load replaces all points and values wholesale. Lists carrying the same
// address twice are rejected and leave the store unchanged. Points of a
// foreign kind are rejected as well.
func (s *Store) Load(points []Point) error {
	np := make(map[uint16]Point, len(points))
	nv := make(map[uint16]uint16, len(points))
	for _, p := range points {
		if p.Kind != s.kind {
			return fmt.Errorf("register: point %d has kind %s, store is %s", p.Address, p.Kind, s.kind)
		}
		if _, dup := np[p.Address]; dup {
			return fmt.Errorf("%w: %s %d", ErrDuplicateAddress, s.kind, p.Address)
		}
		np[p.Address] = p
		nv[p.Address] = p.Initial
	}

	s.mu.Lock()
	s.points = np
	s.values = nv
	s.mu.Unlock()
	return nil
}

// Read returns the current value at addr.
func (s *Store) Read(addr uint16) (uint16, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[addr]
	if !ok {
		return 0, fmt.Errorf("%w: %s %d", ErrAddressNotFound, s.kind, addr)
	}
	return v, nil
}

// ReadRange returns qty consecutive values starting at addr. Every address
// in the span must exist.
func (s *Store) ReadRange(addr uint16, qty uint16) ([]uint16, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uint16, 0, qty)
	for i := uint16(0); i < qty; i++ {
		v, ok := s.values[addr+i]
		if !ok {
			return nil, fmt.Errorf("%w: %s %d", ErrAddressNotFound, s.kind, addr+i)
		}
		out = append(out, v)
	}
	return out, nil
}

// Write validates and commits a single value. On any failure the stored
// value is unchanged.
func (s *Store) Write(addr uint16, value uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(addr, value)
}

// WriteRange commits len(values) consecutive values starting at addr.
// The whole span is validated first; nothing is applied unless every
// write would succeed.
func (s *Store) WriteRange(addr uint16, values []uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range values {
		if err := s.checkLocked(addr+uint16(i), v); err != nil {
			return err
		}
	}
	for i, v := range values {
		s.values[addr+uint16(i)] = v
	}
	return nil
}

// Point returns the point definition at addr.
func (s *Store) Point(addr uint16) (Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.points[addr]
	if !ok {
		return Point{}, fmt.Errorf("%w: %s %d", ErrAddressNotFound, s.kind, addr)
	}
	return p, nil
}

// Len returns the number of configured points.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Snapshot returns every point with its current value, ordered by ascending
// address. The ordering is a contract: consumers enumerate points for
// display and export and must never see insertion order.
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	entries := make([]Entry, 0, len(s.points))
	for addr, p := range s.points {
		entries = append(entries, Entry{Address: addr, Point: p, Value: s.values[addr]})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Address < entries[j].Address
	})
	return entries
}

func (s *Store) checkLocked(addr uint16, value uint16) error {
	p, ok := s.points[addr]
	if !ok {
		return fmt.Errorf("%w: %s %d", ErrAddressNotFound, s.kind, addr)
	}
	if p.ReadOnly {
		return fmt.Errorf("%w: %s %d", ErrReadOnly, s.kind, addr)
	}
	return p.Check(value)
}

func (s *Store) writeLocked(addr uint16, value uint16) error {
	if err := s.checkLocked(addr, value); err != nil {
		return err
	}
	s.values[addr] = value
	return nil
}
