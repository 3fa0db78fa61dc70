// internal/slave/handlers.go
package slave

import (
	"encoding/binary"
	"errors"

	"github.com/goburrow/modbus"
	"github.com/tbrandon/mbserver"

	"github.com/tamzrod/modbus-slavesim/internal/event"
	"github.com/tamzrod/modbus-slavesim/internal/register"
)

// registerHandlers wires the protocol library's function-code dispatch to
// this slave's register stores. The library owns framing, CRC and MBAP;
// the handlers own data access and exception mapping only.
func (s *Slave) registerHandlers(srv *mbserver.Server) {
	srv.RegisterFunctionHandler(modbus.FuncCodeReadCoils, s.handleReadBits(register.Coil))
	srv.RegisterFunctionHandler(modbus.FuncCodeReadDiscreteInputs, s.handleReadBits(register.DiscreteInput))
	srv.RegisterFunctionHandler(modbus.FuncCodeReadHoldingRegisters, s.handleReadRegisters(register.HoldingRegister))
	srv.RegisterFunctionHandler(modbus.FuncCodeReadInputRegisters, s.handleReadRegisters(register.InputRegister))
	srv.RegisterFunctionHandler(modbus.FuncCodeWriteSingleCoil, s.handleWriteSingleCoil)
	srv.RegisterFunctionHandler(modbus.FuncCodeWriteSingleRegister, s.handleWriteSingleRegister)
	srv.RegisterFunctionHandler(modbus.FuncCodeWriteMultipleCoils, s.handleWriteMultipleCoils)
	srv.RegisterFunctionHandler(modbus.FuncCodeWriteMultipleRegisters, s.handleWriteMultipleRegisters)
}

func span(frame mbserver.Framer) (addr, qty uint16, ok bool) {
	data := frame.GetData()
	if len(data) < 4 {
		return 0, 0, false
	}
	return binary.BigEndian.Uint16(data[0:2]), binary.BigEndian.Uint16(data[2:4]), true
}

func (s *Slave) handleReadBits(kind register.Kind) func(*mbserver.Server, mbserver.Framer) ([]byte, *mbserver.Exception) {
	return func(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		addr, qty, ok := span(frame)
		if !ok || qty == 0 || qty > 2000 {
			return nil, &mbserver.IllegalDataValue
		}
		values, err := s.bank.Store(kind).ReadRange(addr, qty)
		if err != nil {
			event.Postf(s.sink, s.cfg.Name, event.Error, "read %s address %d count %d failed: %v", kind, addr, qty, err)
			return nil, exceptionFor(err)
		}
		event.Postf(s.sink, s.cfg.Name, event.Info, "read %s address %d count %d", kind, addr, qty)

		byteCount := (qty + 7) / 8
		payload := make([]byte, 1+byteCount)
		payload[0] = byte(byteCount)
		for i, v := range values {
			if v != 0 {
				payload[1+i/8] |= 1 << (uint(i) % 8)
			}
		}
		return payload, &mbserver.Success
	}
}

func (s *Slave) handleReadRegisters(kind register.Kind) func(*mbserver.Server, mbserver.Framer) ([]byte, *mbserver.Exception) {
	return func(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		addr, qty, ok := span(frame)
		if !ok || qty == 0 || qty > 125 {
			return nil, &mbserver.IllegalDataValue
		}
		values, err := s.bank.Store(kind).ReadRange(addr, qty)
		if err != nil {
			event.Postf(s.sink, s.cfg.Name, event.Error, "read %s address %d count %d failed: %v", kind, addr, qty, err)
			return nil, exceptionFor(err)
		}
		event.Postf(s.sink, s.cfg.Name, event.Info, "read %s address %d count %d", kind, addr, qty)
		return append([]byte{byte(qty * 2)}, mbserver.Uint16ToBytes(values)...), &mbserver.Success
	}
}

func (s *Slave) handleWriteSingleCoil(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 4 {
		return nil, &mbserver.IllegalDataValue
	}
	addr := binary.BigEndian.Uint16(data[0:2])
	raw := binary.BigEndian.Uint16(data[2:4])

	var value uint16
	switch raw {
	case 0x0000:
		value = 0
	case 0xFF00:
		value = 1
	default:
		return nil, &mbserver.IllegalDataValue
	}

	if err := s.WriteRegister(register.Coil, addr, value); err != nil {
		return nil, exceptionFor(err)
	}
	return data[0:4], &mbserver.Success
}

func (s *Slave) handleWriteSingleRegister(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 4 {
		return nil, &mbserver.IllegalDataValue
	}
	addr := binary.BigEndian.Uint16(data[0:2])
	value := binary.BigEndian.Uint16(data[2:4])

	if err := s.WriteRegister(register.HoldingRegister, addr, value); err != nil {
		return nil, exceptionFor(err)
	}
	return data[0:4], &mbserver.Success
}

func (s *Slave) handleWriteMultipleCoils(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 5 {
		return nil, &mbserver.IllegalDataValue
	}
	addr := binary.BigEndian.Uint16(data[0:2])
	qty := binary.BigEndian.Uint16(data[2:4])
	byteCount := int(data[4])
	if qty == 0 || qty > 1968 || len(data) < 5+byteCount || (int(qty)+7)/8 > byteCount {
		return nil, &mbserver.IllegalDataValue
	}

	values := make([]uint16, qty)
	for i := range values {
		if data[5+i/8]&(1<<(uint(i)%8)) != 0 {
			values[i] = 1
		}
	}

	if err := s.writeSpan(register.Coil, addr, values); err != nil {
		return nil, exceptionFor(err)
	}
	return data[0:4], &mbserver.Success
}

func (s *Slave) handleWriteMultipleRegisters(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 5 {
		return nil, &mbserver.IllegalDataValue
	}
	addr := binary.BigEndian.Uint16(data[0:2])
	qty := binary.BigEndian.Uint16(data[2:4])
	byteCount := int(data[4])
	if qty == 0 || qty > 123 || byteCount != int(qty)*2 || len(data) < 5+byteCount {
		return nil, &mbserver.IllegalDataValue
	}

	values := make([]uint16, qty)
	for i := range values {
		values[i] = binary.BigEndian.Uint16(data[5+i*2 : 7+i*2])
	}

	if err := s.writeSpan(register.HoldingRegister, addr, values); err != nil {
		return nil, exceptionFor(err)
	}
	return data[0:4], &mbserver.Success
}

// writeSpan commits a multi-address write all-or-nothing and emits one
// event for the whole span.
func (s *Slave) writeSpan(kind register.Kind, addr uint16, values []uint16) error {
	if err := s.bank.Store(kind).WriteRange(addr, values); err != nil {
		event.Postf(s.sink, s.cfg.Name, event.Warning,
			"write %s address %d count %d rejected: %v", kind, addr, len(values), err)
		return err
	}
	event.Postf(s.sink, s.cfg.Name, event.Success,
		"write %s address %d count %d", kind, addr, len(values))
	return nil
}

// exceptionFor maps engine errors to Modbus exception responses. The
// listener never crashes on a data error; the master sees an exception.
func exceptionFor(err error) *mbserver.Exception {
	switch {
	case errors.Is(err, register.ErrAddressNotFound), errors.Is(err, register.ErrReadOnly):
		return &mbserver.IllegalDataAddress
	case errors.Is(err, register.ErrOutOfRange), errors.Is(err, register.ErrNotBoolean):
		return &mbserver.IllegalDataValue
	default:
		return &mbserver.SlaveDeviceFailure
	}
}

func isReadOnly(err error) bool   { return errors.Is(err, register.ErrReadOnly) }
func isOutOfRange(err error) bool { return errors.Is(err, register.ErrOutOfRange) }
