// internal/probe/probe_test.go
package probe

import (
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/modbus-slavesim/internal/register"
)

type fakeClient struct {
	failKind register.Kind
}

func (f *fakeClient) ReadCoils(addr, qty uint16) ([]bool, error) {
	if f.failKind == register.Coil {
		return nil, errors.New("fail coils")
	}
	return make([]bool, qty), nil
}

func (f *fakeClient) ReadDiscreteInputs(addr, qty uint16) ([]bool, error) {
	if f.failKind == register.DiscreteInput {
		return nil, errors.New("fail discrete inputs")
	}
	return make([]bool, qty), nil
}

func (f *fakeClient) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	if f.failKind == register.HoldingRegister {
		return nil, errors.New("fail holding registers")
	}
	return make([]uint16, qty), nil
}

func (f *fakeClient) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	if f.failKind == register.InputRegister {
		return nil, errors.New("fail input registers")
	}
	return make([]uint16, qty), nil
}

func TestReadOnce_Success(t *testing.T) {
	cfg := Config{
		Interval: 1 * time.Second,
		Reads: []ReadBlock{
			{Kind: register.Coil, Address: 0, Quantity: 8},
			{Kind: register.HoldingRegister, Address: 0, Quantity: 10},
		},
	}

	p, err := New(cfg, &fakeClient{})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.ReadOnce()
	if res.Err != nil {
		t.Fatalf("ReadOnce err=%v", res.Err)
	}
	if len(res.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(res.Blocks))
	}
	if len(res.Blocks[0].Bits) != 8 {
		t.Fatalf("expected 8 bits, got %d", len(res.Blocks[0].Bits))
	}
	if len(res.Blocks[1].Registers) != 10 {
		t.Fatalf("expected 10 registers, got %d", len(res.Blocks[1].Registers))
	}
}

func TestReadOnce_Failure(t *testing.T) {
	cfg := Config{
		Interval: 1 * time.Second,
		Reads: []ReadBlock{
			{Kind: register.Coil, Address: 0, Quantity: 8},
			{Kind: register.HoldingRegister, Address: 0, Quantity: 10},
		},
	}

	p, err := New(cfg, &fakeClient{failKind: register.HoldingRegister})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.ReadOnce()
	if res.Err == nil {
		t.Fatalf("expected error, got nil")
	}
	if len(res.Blocks) != 0 {
		t.Fatalf("failed cycle must not commit blocks, got %d", len(res.Blocks))
	}
}

func TestNew_RequiresReads(t *testing.T) {
	if _, err := New(Config{Interval: time.Second}, &fakeClient{}); err == nil {
		t.Fatalf("expected error for empty read set, got nil")
	}
}

func TestNew_RequiresPositiveInterval(t *testing.T) {
	cfg := Config{
		Reads: []ReadBlock{{Kind: register.Coil, Address: 0, Quantity: 1}},
	}
	if _, err := New(cfg, &fakeClient{}); err == nil {
		t.Fatalf("expected error for zero interval, got nil")
	}
}
