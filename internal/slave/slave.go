// internal/slave/slave.go
package slave

import (
	"fmt"
	"sync"

	"github.com/tbrandon/mbserver"

	"github.com/tamzrod/modbus-slavesim/internal/event"
	"github.com/tamzrod/modbus-slavesim/internal/register"
)

// EndpointClaimer arbitrates exclusive ownership of transport endpoints
// across slaves. The registry implements it; tests use a fake.
type EndpointClaimer interface {
	Claim(endpoint, slaveID string) error
	Release(endpoint, slaveID string)
}

// Slave is one simulated Modbus field device: a register bank, a transport
// listener and the lifecycle state machine tying them together. Every
// mutating operation emits one leveled event through the injected sink.
type Slave struct {
	cfg    Config
	bank   *register.Bank
	sink   event.Sink
	claims EndpointClaimer

	mu      sync.Mutex
	state   State
	retired bool
	lastErr error
	srv     *mbserver.Server
}

// New builds a slave in Stopped state. The address space is default-filled
// from cfg.Counts, then explicit points replace their kinds wholesale.
func New(cfg Config, sink event.Sink, claims EndpointClaimer) (*Slave, error) {
	s := &Slave{
		cfg:    cfg,
		bank:   register.NewBank(),
		sink:   sink,
		claims: claims,
	}
	if err := s.bank.Fill(cfg.Counts); err != nil {
		return nil, err
	}
	if len(cfg.Points) > 0 {
		if err := s.bank.Load(cfg.Points); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Slave) ID() string         { return s.cfg.ID }
func (s *Slave) Name() string       { return s.cfg.Name }
func (s *Slave) Config() Config     { return s.cfg }
func (s *Slave) Endpoint() string   { return s.cfg.Endpoint() }
func (s *Slave) Bank() *register.Bank { return s.bank }

// State returns the current lifecycle state.
func (s *Slave) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the bind error of a Failed slave, nil otherwise.
func (s *Slave) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Start claims the endpoint, binds the transport listener and moves the
// slave to Running. A bind failure releases the endpoint and leaves the
// slave Failed until Reset.
func (s *Slave) Start() error {
	s.mu.Lock()
	if s.retired {
		s.mu.Unlock()
		return fmt.Errorf("%w: slave removed", ErrInvalidState)
	}
	switch s.state {
	case Starting, Running:
		s.mu.Unlock()
		return ErrAlreadyRunning
	case Stopping:
		s.mu.Unlock()
		return fmt.Errorf("%w: stopping", ErrInvalidState)
	case Failed:
		s.mu.Unlock()
		return fmt.Errorf("%w: failed, reset first", ErrInvalidState)
	}
	s.state = Starting
	s.mu.Unlock()

	ep := s.cfg.Endpoint()
	if s.claims != nil {
		if err := s.claims.Claim(ep, s.cfg.ID); err != nil {
			s.mu.Lock()
			s.state = Stopped
			s.mu.Unlock()
			event.Postf(s.sink, s.cfg.Name, event.Warning, "endpoint %s already in use", ep)
			return fmt.Errorf("%w: %s", ErrEndpointInUse, ep)
		}
	}

	switch s.cfg.Protocol {
	case ProtocolRTU:
		event.Postf(s.sink, s.cfg.Name, event.Info,
			"starting RTU listener on %s (baud %d, unit address %d)",
			s.cfg.Device, s.cfg.Baud, s.cfg.UnitAddress)
	default:
		event.Postf(s.sink, s.cfg.Name, event.Info,
			"starting TCP listener on %s (unit address %d)", ep, s.cfg.UnitAddress)
	}

	srv := mbserver.NewServer()
	s.registerHandlers(srv)

	if err := s.bind(srv); err != nil {
		if s.claims != nil {
			s.claims.Release(ep, s.cfg.ID)
		}
		s.mu.Lock()
		s.state = Failed
		s.lastErr = err
		s.mu.Unlock()
		event.Postf(s.sink, s.cfg.Name, event.Error, "bind %s failed: %v", ep, err)
		return fmt.Errorf("%w: %v", ErrBindFailed, err)
	}

	// A Stop or Remove may have won the race while the endpoint was being
	// claimed and bound. Commit Running only if the slave is still Starting;
	// otherwise the bind is undone so the completed Stop stays stopped.
	s.mu.Lock()
	if s.state != Starting || s.retired {
		s.mu.Unlock()
		shutdown(srv, stopTimeout)
		if s.claims != nil {
			s.claims.Release(ep, s.cfg.ID)
		}
		event.Post(s.sink, s.cfg.Name, "start aborted: slave was stopped while starting", event.Warning)
		return fmt.Errorf("%w: stopped while starting", ErrInvalidState)
	}
	s.srv = srv
	s.state = Running
	s.lastErr = nil
	s.mu.Unlock()
	event.Postf(s.sink, s.cfg.Name, event.Success, "slave started on %s", ep)
	return nil
}

// Stop releases the transport endpoint and moves the slave to Stopped.
// Stopping an already Stopped or Failed slave is a no-op. The underlying
// listener may not support prompt cancellation, so teardown is signalled
// and waited for at most stopTimeout; afterwards the slave is Stopped
// regardless and the event notes whether release was clean or forced.
func (s *Slave) Stop() error {
	s.mu.Lock()
	if s.state == Stopped || s.state == Failed {
		s.mu.Unlock()
		return nil
	}
	srv := s.srv
	s.srv = nil
	s.state = Stopping
	s.mu.Unlock()

	event.Post(s.sink, s.cfg.Name, "stopping listener", event.Info)

	clean := true
	if srv != nil {
		clean = shutdown(srv, stopTimeout)
	}
	if s.claims != nil {
		s.claims.Release(s.cfg.Endpoint(), s.cfg.ID)
	}

	s.mu.Lock()
	s.state = Stopped
	s.mu.Unlock()

	if clean {
		event.Post(s.sink, s.cfg.Name, "slave stopped (listener released)", event.Info)
	} else {
		event.Postf(s.sink, s.cfg.Name, event.Warning,
			"slave stopped (forced: listener did not release within %s)", stopTimeout)
	}
	return nil
}

// Retire permanently decommissions a Stopped or Failed slave. A retired
// slave refuses Start, so removal can never race an in-flight start into
// a bound listener.
func (s *Slave) Retire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Stopped && s.state != Failed {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.state)
	}
	s.retired = true
	return nil
}

// Reset clears a Failed slave back to Stopped.
func (s *Slave) Reset() error {
	s.mu.Lock()
	if s.state != Failed {
		s.mu.Unlock()
		return fmt.Errorf("%w: reset requires failed state", ErrInvalidState)
	}
	s.state = Stopped
	s.lastErr = nil
	s.mu.Unlock()
	event.Post(s.sink, s.cfg.Name, "failure cleared, slave reset", event.Info)
	return nil
}

// ReadRegister reads one address on behalf of the operator or the protocol
// dispatch.
func (s *Slave) ReadRegister(kind register.Kind, addr uint16) (uint16, error) {
	v, err := s.bank.Store(kind).Read(addr)
	if err != nil {
		event.Postf(s.sink, s.cfg.Name, event.Error, "read %s address %d failed: %v", kind, addr, err)
		return 0, err
	}
	event.Postf(s.sink, s.cfg.Name, event.Info, "read %s address %d = %d", kind, addr, v)
	return v, nil
}

// WriteRegister validates and writes one address. Constraint violations are
// reported at WARNING with the attempted value; the store stays unchanged.
func (s *Slave) WriteRegister(kind register.Kind, addr uint16, value uint16) error {
	st := s.bank.Store(kind)
	err := st.Write(addr, value)
	switch {
	case err == nil:
		event.Postf(s.sink, s.cfg.Name, event.Success, "write %s address %d = %d", kind, addr, value)
		return nil
	case isReadOnly(err):
		event.Postf(s.sink, s.cfg.Name, event.Warning, "%d is read-only", addr)
		return err
	case isOutOfRange(err):
		bounds := "[-, -]"
		if p, perr := st.Point(addr); perr == nil {
			bounds = p.Bounds()
		}
		event.Postf(s.sink, s.cfg.Name, event.Warning,
			"write %s address %d = %d rejected: out of range %s", kind, addr, value, bounds)
		return err
	default:
		event.Postf(s.sink, s.cfg.Name, event.Error, "write %s address %d failed: %v", kind, addr, err)
		return err
	}
}

// LoadPoints replaces the address space of the kinds present in points.
// Not valid while the slave is Running: the listener would serve a store
// being swapped underneath it.
func (s *Slave) LoadPoints(points []register.Point) error {
	s.mu.Lock()
	if s.state == Running || s.state == Starting {
		s.mu.Unlock()
		return fmt.Errorf("%w: stop slave before loading points", ErrInvalidState)
	}
	s.mu.Unlock()

	if err := s.bank.Load(points); err != nil {
		event.Postf(s.sink, s.cfg.Name, event.Error, "point table rejected: %v", err)
		return err
	}
	event.Postf(s.sink, s.cfg.Name, event.Info, "loaded %d register points", len(points))
	return nil
}

// Snapshot returns the current point table of one kind, address ascending.
func (s *Slave) Snapshot(kind register.Kind) []register.Entry {
	return s.bank.Store(kind).Snapshot()
}
