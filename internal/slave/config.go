// internal/slave/config.go
package slave

import (
	"net"
	"strconv"

	"github.com/tamzrod/modbus-slavesim/internal/register"
)

// Protocol selects the transport variant of a slave.
type Protocol string

const (
	ProtocolTCP Protocol = "tcp"
	ProtocolRTU Protocol = "rtu"
)

// Config is the immutable identity and connection configuration of one slave.
// Connection parameters must not change while the slave is not Stopped.
type Config struct {
	ID       string
	Name     string
	Protocol Protocol

	// TCP
	Host    string
	TCPPort int

	// RTU
	Device   string
	Baud     int
	DataBits int
	Parity   string // N, E or O
	StopBits int

	// Modbus station address. Carried for shared RTU lines; TCP masters
	// conventionally ignore it.
	UnitAddress uint8

	// Address space: defaults per kind, optionally overridden by an explicit
	// point table.
	Counts register.Counts
	Points []register.Point
}

// Endpoint is the transport binding the slave occupies exclusively while
// Starting or Running: "host:port" for TCP, the device path for RTU.
func (c Config) Endpoint() string {
	if c.Protocol == ProtocolRTU {
		return c.Device
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.TCPPort))
}
