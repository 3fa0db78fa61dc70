// internal/config/config.go
package config

type Config struct {
	Simulator SimulatorConfig `yaml:"simulator"`
}

type SimulatorConfig struct {
	Slaves []SlaveConfig `yaml:"slaves"`
}

// ---- SLAVE ----

type SlaveConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Protocol string `yaml:"protocol"` // tcp | rtu

	// TCP
	Host    string `yaml:"host"`
	TCPPort int    `yaml:"tcp_port"`

	// RTU
	Device   string `yaml:"device"`
	Baud     int    `yaml:"baud"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`

	UnitAddress uint8 `yaml:"unit_address"`

	Counts CountsConfig  `yaml:"counts"`
	Points []PointConfig `yaml:"points"`
}

// ---- ADDRESS SPACE ----

type CountsConfig struct {
	Coils            int `yaml:"coils"`
	DiscreteInputs   int `yaml:"discrete_inputs"`
	HoldingRegisters int `yaml:"holding_registers"`
	InputRegisters   int `yaml:"input_registers"`
}

func (c CountsConfig) empty() bool {
	return c.Coils == 0 && c.DiscreteInputs == 0 &&
		c.HoldingRegisters == 0 && c.InputRegisters == 0
}

// ---- POINT ----

type PointConfig struct {
	Address     uint16  `yaml:"address"`
	Type        string  `yaml:"type"` // coil | discrete_input | holding_register | input_register
	Name        string  `yaml:"name"`
	Initial     uint16  `yaml:"initial"`
	Min         *uint16 `yaml:"min"`
	Max         *uint16 `yaml:"max"`
	ReadOnly    bool    `yaml:"read_only"`
	Unit        string  `yaml:"unit"`
	Description string  `yaml:"description"`
}
