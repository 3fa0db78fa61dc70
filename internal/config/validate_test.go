// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

func u16(v uint16) *uint16 { return &v }

// helper to build a slave quickly
func tcpSlave(id string, port int) SlaveConfig {
	return SlaveConfig{
		ID:       id,
		Protocol: "tcp",
		Host:     "127.0.0.1",
		TCPPort:  port,
	}
}

// ---- tests ----

func TestValidate_Empty(t *testing.T) {
	if err := Validate(&Config{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingID(t *testing.T) {
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{
		{Protocol: "tcp"},
	}}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected missing-id error, got nil")
	}
}

func TestValidate_DuplicateID(t *testing.T) {
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{
		tcpSlave("s1", 502),
		tcpSlave("s1", 503),
	}}}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "duplicate slave id") {
		t.Fatalf("expected duplicate-id error, got %v", err)
	}
}

func TestValidate_DuplicateEndpoint(t *testing.T) {
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{
		tcpSlave("s1", 502),
		tcpSlave("s2", 502),
	}}}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "endpoint") {
		t.Fatalf("expected endpoint error, got %v", err)
	}
}

func TestValidate_DuplicateEndpointViaDefaults(t *testing.T) {
	// one slave spells out the defaults, the other relies on them
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{
		{ID: "s1", Protocol: "tcp", Host: "0.0.0.0", TCPPort: 502},
		{ID: "s2"},
	}}}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "endpoint") {
		t.Fatalf("expected endpoint error, got %v", err)
	}
}

func TestValidate_RTURequiresDevice(t *testing.T) {
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{
		{ID: "s1", Protocol: "rtu"},
	}}}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "device") {
		t.Fatalf("expected device error, got %v", err)
	}
}

func TestValidate_UnknownProtocol(t *testing.T) {
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{
		{ID: "s1", Protocol: "udp"},
	}}}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "protocol") {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestValidate_DuplicatePointAddress(t *testing.T) {
	s := tcpSlave("s1", 502)
	s.Points = []PointConfig{
		{Address: 5, Type: "holding_register"},
		{Address: 5, Type: "holding_register"},
	}
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{s}}}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate-address error, got %v", err)
	}
}

func TestValidate_SameAddressDifferentTypesAllowed(t *testing.T) {
	s := tcpSlave("s1", 502)
	s.Points = []PointConfig{
		{Address: 5, Type: "holding_register"},
		{Address: 5, Type: "input_register"},
		{Address: 5, Type: "coil"},
	}
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{s}}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MinGreaterThanMax(t *testing.T) {
	s := tcpSlave("s1", 502)
	s.Points = []PointConfig{
		{Address: 0, Type: "holding_register", Min: u16(10), Max: u16(5)},
	}
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{s}}}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "min") {
		t.Fatalf("expected min>max error, got %v", err)
	}
}

func TestValidate_BoundsOnDiscreteRejected(t *testing.T) {
	s := tcpSlave("s1", 502)
	s.Points = []PointConfig{
		{Address: 0, Type: "coil", Max: u16(1)},
	}
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{s}}}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "discrete") {
		t.Fatalf("expected discrete-bounds error, got %v", err)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{
		{ID: "s1"},
	}}}
	Normalize(cfg)

	sc := cfg.Simulator.Slaves[0]
	if sc.Name != "s1" {
		t.Fatalf("Name = %q, want %q", sc.Name, "s1")
	}
	if sc.Protocol != "tcp" {
		t.Fatalf("Protocol = %q, want tcp", sc.Protocol)
	}
	if sc.Host != "0.0.0.0" || sc.TCPPort != 502 {
		t.Fatalf("endpoint defaults = %s:%d, want 0.0.0.0:502", sc.Host, sc.TCPPort)
	}
	if sc.Baud != 9600 || sc.DataBits != 8 || sc.Parity != "N" || sc.StopBits != 1 {
		t.Fatalf("serial defaults = %d %d %s %d", sc.Baud, sc.DataBits, sc.Parity, sc.StopBits)
	}
	if sc.UnitAddress != 1 {
		t.Fatalf("UnitAddress = %d, want 1", sc.UnitAddress)
	}
	if sc.Counts.HoldingRegisters != 1000 {
		t.Fatalf("default holding register count = %d, want 1000", sc.Counts.HoldingRegisters)
	}
}

func TestNormalize_ExplicitPointsSkipDefaultCounts(t *testing.T) {
	cfg := &Config{Simulator: SimulatorConfig{Slaves: []SlaveConfig{
		{ID: "s1", Points: []PointConfig{{Address: 0, Type: "coil"}}},
	}}}
	Normalize(cfg)

	if !cfg.Simulator.Slaves[0].Counts.empty() {
		t.Fatalf("counts defaulted despite explicit point table: %+v", cfg.Simulator.Slaves[0].Counts)
	}
}
