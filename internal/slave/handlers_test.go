// internal/slave/handlers_test.go
package slave

import (
	"encoding/binary"
	"testing"

	"github.com/tbrandon/mbserver"

	"github.com/tamzrod/modbus-slavesim/internal/event"
	"github.com/tamzrod/modbus-slavesim/internal/register"
)

// testFrame is a minimal Framer carrying only the request data the
// handlers inspect.
type testFrame struct {
	function uint8
	data     []byte
}

func (f *testFrame) Bytes() []byte                      { return f.data }
func (f *testFrame) Copy() mbserver.Framer              { c := *f; return &c }
func (f *testFrame) GetData() []byte                    { return f.data }
func (f *testFrame) GetFunction() uint8                 { return f.function }
func (f *testFrame) SetException(_ *mbserver.Exception) {}
func (f *testFrame) SetData(data []byte)                { f.data = data }

func readBitsFrame(addr, qty uint16) *testFrame {
	data := make([]byte, 4)
	binary.BigEndian.PutUint16(data[0:2], addr)
	binary.BigEndian.PutUint16(data[2:4], qty)
	return &testFrame{function: 1, data: data}
}

// TestReadBitsQuantityCap rejects bit reads beyond the protocol maximum of
// 2000. Without the cap a span over a large coil space truncates the byte
// count and answers a corrupt frame instead of an exception.
func TestReadBitsQuantityCap(t *testing.T) {
	cfg := tcpConfig("S1", 15028)
	cfg.Points = nil
	cfg.Counts = register.Counts{Coils: 2048}
	s, err := New(cfg, event.Nop(), newFakeClaims())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	h := s.handleReadBits(register.Coil)

	if _, exc := h(nil, readBitsFrame(0, 2008)); exc != &mbserver.IllegalDataValue {
		t.Fatalf("qty 2008 exception = %v, want IllegalDataValue", exc)
	}

	payload, exc := h(nil, readBitsFrame(0, 2000))
	if exc != &mbserver.Success {
		t.Fatalf("qty 2000 exception = %v, want Success", exc)
	}
	if payload[0] != 250 {
		t.Fatalf("byte count = %d, want 250", payload[0])
	}
	if len(payload) != 1+250 {
		t.Fatalf("payload length = %d, want 251", len(payload))
	}
}
