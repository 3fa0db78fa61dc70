// internal/probe/probe.go
package probe

import (
	"errors"
	"time"

	"github.com/tamzrod/modbus-slavesim/internal/register"
)

// Client abstracts the Modbus master operations the probe needs.
// The probe depends on geometry only.
type Client interface {
	ReadCoils(addr, qty uint16) ([]bool, error)              // FC 1
	ReadDiscreteInputs(addr, qty uint16) ([]bool, error)     // FC 2
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)   // FC 4
}

// ReadBlock describes one read geometry against a running slave.
type ReadBlock struct {
	Kind     register.Kind
	Address  uint16
	Quantity uint16
}

// BlockResult is the raw result of a single read.
type BlockResult struct {
	Kind     register.Kind
	Address  uint16
	Quantity uint16

	// Exactly one of these is used depending on the kind.
	Bits      []bool   // coils, discrete inputs
	Registers []uint16 // holding, input registers
}

// Result is the snapshot produced by one probe cycle.
type Result struct {
	At     time.Time
	Blocks []BlockResult
	Err    error // non-nil means the cycle failed
}

// Config is the minimal runtime config the probe needs.
type Config struct {
	Interval time.Duration
	Reads    []ReadBlock
}

// Probe is a dumb, clock-driven reader against one slave endpoint.
type Probe struct {
	cfg    Config
	client Client
}

// New creates a probe with immutable config.
func New(cfg Config, client Client) (*Probe, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("probe: interval must be > 0")
	}
	if len(cfg.Reads) == 0 {
		return nil, errors.New("probe: at least one read block required")
	}
	return &Probe{cfg: cfg, client: client}, nil
}

// ReadOnce performs exactly one probe cycle.
// All-or-nothing: any failure aborts the cycle.
func (p *Probe) ReadOnce() Result {
	res := Result{At: time.Now()}

	var blocks []BlockResult

	for _, rb := range p.cfg.Reads {
		switch rb.Kind {
		case register.Coil:
			bits, err := p.client.ReadCoils(rb.Address, rb.Quantity)
			if err != nil {
				res.Err = err
				return res
			}
			blocks = append(blocks, BlockResult{
				Kind: rb.Kind, Address: rb.Address, Quantity: rb.Quantity, Bits: bits,
			})

		case register.DiscreteInput:
			bits, err := p.client.ReadDiscreteInputs(rb.Address, rb.Quantity)
			if err != nil {
				res.Err = err
				return res
			}
			blocks = append(blocks, BlockResult{
				Kind: rb.Kind, Address: rb.Address, Quantity: rb.Quantity, Bits: bits,
			})

		case register.HoldingRegister:
			regs, err := p.client.ReadHoldingRegisters(rb.Address, rb.Quantity)
			if err != nil {
				res.Err = err
				return res
			}
			blocks = append(blocks, BlockResult{
				Kind: rb.Kind, Address: rb.Address, Quantity: rb.Quantity, Registers: regs,
			})

		case register.InputRegister:
			regs, err := p.client.ReadInputRegisters(rb.Address, rb.Quantity)
			if err != nil {
				res.Err = err
				return res
			}
			blocks = append(blocks, BlockResult{
				Kind: rb.Kind, Address: rb.Address, Quantity: rb.Quantity, Registers: regs,
			})

		default:
			res.Err = errors.New("probe: unsupported register kind")
			return res
		}
	}

	// Commit only if all reads succeeded
	res.Blocks = blocks
	return res
}
