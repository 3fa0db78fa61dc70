// internal/config/points.go
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tamzrod/modbus-slavesim/internal/register"
	"github.com/tamzrod/modbus-slavesim/internal/slave"
)

// SlaveConfigFor converts one validated, normalized slave entry into the
// engine's slave configuration.
func SlaveConfigFor(sc SlaveConfig) (slave.Config, error) {
	points, err := Points(sc)
	if err != nil {
		return slave.Config{}, err
	}
	return slave.Config{
		ID:          sc.ID,
		Name:        sc.Name,
		Protocol:    slave.Protocol(sc.Protocol),
		Host:        sc.Host,
		TCPPort:     sc.TCPPort,
		Device:      sc.Device,
		Baud:        sc.Baud,
		DataBits:    sc.DataBits,
		Parity:      sc.Parity,
		StopBits:    sc.StopBits,
		UnitAddress: sc.UnitAddress,
		Counts: register.Counts{
			Coils:            sc.Counts.Coils,
			DiscreteInputs:   sc.Counts.DiscreteInputs,
			HoldingRegisters: sc.Counts.HoldingRegisters,
			InputRegisters:   sc.Counts.InputRegisters,
		},
		Points: points,
	}, nil
}

// Points converts a slave's point table entries.
func Points(sc SlaveConfig) ([]register.Point, error) {
	out := make([]register.Point, 0, len(sc.Points))
	for _, pc := range sc.Points {
		kind, err := register.ParseKind(pc.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, register.Point{
			Address:     pc.Address,
			Kind:        kind,
			Name:        pc.Name,
			Initial:     pc.Initial,
			Min:         pc.Min,
			Max:         pc.Max,
			ReadOnly:    pc.ReadOnly,
			Unit:        pc.Unit,
			Description: pc.Description,
		})
	}
	return out, nil
}

// PointTable is the on-disk shape of an exported point-table snapshot.
type PointTable struct {
	Slave  string        `yaml:"slave"`
	Points []PointConfig `yaml:"points"`
}

// ExportPoints renders store entries as a point table. Current values
// become the initial values, so importing the snapshot reproduces the
// state at export time. Entries arrive address-ascending from Snapshot
// and are written in that order.
func ExportPoints(slaveName string, entries []register.Entry) PointTable {
	tbl := PointTable{Slave: slaveName}
	for _, e := range entries {
		tbl.Points = append(tbl.Points, PointConfig{
			Address:     e.Address,
			Type:        e.Point.Kind.String(),
			Name:        e.Point.Name,
			Initial:     e.Value,
			Min:         e.Point.Min,
			Max:         e.Point.Max,
			ReadOnly:    e.Point.ReadOnly,
			Unit:        e.Point.Unit,
			Description: e.Point.Description,
		})
	}
	return tbl
}

// SavePointTable writes an exported point table to disk as yaml.
func SavePointTable(path string, tbl PointTable) error {
	raw, err := yaml.Marshal(tbl)
	if err != nil {
		return errors.Wrap(err, "config: encode point table")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrapf(err, "config: write %s", path)
	}
	return nil
}
