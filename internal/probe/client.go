// internal/probe/client.go
package probe

import (
	"time"

	"github.com/goburrow/modbus"
	"github.com/pkg/errors"
)

// TCPClient implements Client over Modbus TCP.
type TCPClient struct {
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// ClientConfig is minimal transport config.
type ClientConfig struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
}

// Dial creates a connected Modbus TCP client.
func Dial(cfg ClientConfig) (*TCPClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("probe: endpoint required")
	}

	handler := modbus.NewTCPClientHandler(cfg.Endpoint)
	handler.Timeout = cfg.Timeout
	handler.SlaveId = cfg.UnitID
	if err := handler.Connect(); err != nil {
		return nil, errors.Wrapf(err, "probe: connect %s", cfg.Endpoint)
	}

	return &TCPClient{
		handler: handler,
		client:  modbus.NewClient(handler),
	}, nil
}

// Close closes the TCP connection.
func (c *TCPClient) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

// ---- probe.Client interface ----

func (c *TCPClient) ReadCoils(addr, qty uint16) ([]bool, error) {
	raw, err := c.client.ReadCoils(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackBits(raw, int(qty)), nil
}

func (c *TCPClient) ReadDiscreteInputs(addr, qty uint16) ([]bool, error) {
	raw, err := c.client.ReadDiscreteInputs(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackBits(raw, int(qty)), nil
}

func (c *TCPClient) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	raw, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(raw), nil
}

func (c *TCPClient) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	raw, err := c.client.ReadInputRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(raw), nil
}

// ---- wire-side writes ----

// WriteCoil writes a single coil. Any non-zero value means ON.
func (c *TCPClient) WriteCoil(addr uint16, on bool) error {
	coil := uint16(0x0000)
	if on {
		coil = 0xFF00
	}
	_, err := c.client.WriteSingleCoil(addr, coil)
	return err
}

// WriteRegister writes a single holding register.
func (c *TCPClient) WriteRegister(addr, value uint16) error {
	_, err := c.client.WriteSingleRegister(addr, value)
	return err
}

// ---- helpers (pure geometry) ----

func unpackBits(data []byte, count int) []bool {
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		byteIdx := i / 8
		bitIdx := i % 8
		if byteIdx >= len(data) {
			out[i] = false
			continue
		}
		out[i] = data[byteIdx]&(1<<bitIdx) != 0
	}
	return out
}

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
