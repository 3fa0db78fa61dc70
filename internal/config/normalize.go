// internal/config/normalize.go
package config

const (
	defaultHost     = "0.0.0.0"
	defaultTCPPort  = 502
	defaultBaud     = 9600
	defaultDataBits = 8
	defaultParity   = "N"
	defaultStopBits = 1
	defaultUnitAddr = 1

	// defaultCount sizes each register area when neither counts nor an
	// explicit point table are given.
	defaultCount = 1000
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for i := range cfg.Simulator.Slaves {
		sc := &cfg.Simulator.Slaves[i]

		if sc.Name == "" {
			sc.Name = sc.ID
		}
		if sc.Protocol == "" {
			sc.Protocol = "tcp"
		}
		if sc.Host == "" {
			sc.Host = defaultHost
		}
		if sc.TCPPort == 0 {
			sc.TCPPort = defaultTCPPort
		}
		if sc.Baud == 0 {
			sc.Baud = defaultBaud
		}
		if sc.DataBits == 0 {
			sc.DataBits = defaultDataBits
		}
		if sc.Parity == "" {
			sc.Parity = defaultParity
		}
		if sc.StopBits == 0 {
			sc.StopBits = defaultStopBits
		}
		if sc.UnitAddress == 0 {
			sc.UnitAddress = defaultUnitAddr
		}

		if sc.Counts.empty() && len(sc.Points) == 0 {
			sc.Counts = CountsConfig{
				Coils:            defaultCount,
				DiscreteInputs:   defaultCount,
				HoldingRegisters: defaultCount,
				InputRegisters:   defaultCount,
			}
		}
	}
}
