// internal/register/point.go
package register

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Kind identifies one of the four Modbus register areas.
type Kind uint8

const (
	Coil Kind = iota + 1
	DiscreteInput
	HoldingRegister
	InputRegister
)

// Kinds lists all register areas in function-code order.
var Kinds = []Kind{Coil, DiscreteInput, HoldingRegister, InputRegister}

func (k Kind) String() string {
	switch k {
	case Coil:
		return "coil"
	case DiscreteInput:
		return "discrete_input"
	case HoldingRegister:
		return "holding_register"
	case InputRegister:
		return "input_register"
	default:
		return "unknown"
	}
}

// Discrete reports whether the kind is boolean-valued.
func (k Kind) Discrete() bool {
	return k == Coil || k == DiscreteInput
}

// ParseKind maps the on-disk register type name to its Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("register: unknown kind %q", s)
}

// Point is the configuration of one address: its identity, its initial value
// and the constraints every write must satisfy. Name, Unit and Description are
// display-only.
type Point struct {
	Address     uint16
	Kind        Kind
	Name        string
	Initial     uint16
	Min         *uint16 // inclusive lower bound; nil means unbounded
	Max         *uint16 // inclusive upper bound; nil means unbounded
	ReadOnly    bool
	Unit        string
	Description string
}

// Check validates a candidate value against the point's constraints.
// Discrete kinds accept 0/1 only; bounds do not apply to them.
func (p Point) Check(value uint16) error {
	if p.Kind.Discrete() {
		if value > 1 {
			return ErrNotBoolean
		}
		return nil
	}
	if p.Min == nil && p.Max == nil {
		return nil
	}
	lo := uint16(0)
	if p.Min != nil {
		lo = *p.Min
	}
	hi := ^uint16(0)
	if p.Max != nil {
		hi = *p.Max
	}
	if !within(value, lo, hi) {
		return ErrOutOfRange
	}
	return nil
}

// Bounds renders the point's range for event messages, e.g. "[0, 1000]".
func (p Point) Bounds() string {
	lo, hi := "-", "-"
	if p.Min != nil {
		lo = fmt.Sprintf("%d", *p.Min)
	}
	if p.Max != nil {
		hi = fmt.Sprintf("%d", *p.Max)
	}
	return fmt.Sprintf("[%s, %s]", lo, hi)
}

func within[T constraints.Ordered](v, lo, hi T) bool {
	return v >= lo && v <= hi
}
