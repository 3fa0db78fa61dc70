// internal/config/validate.go
package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/tamzrod/modbus-slavesim/internal/register"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	seenIDs := make(map[string]bool)
	seenEndpoints := make(map[string]string)

	for _, sc := range cfg.Simulator.Slaves {
		if sc.ID == "" {
			return fmt.Errorf("config: slave without id")
		}
		if seenIDs[sc.ID] {
			return fmt.Errorf("config: duplicate slave id %q", sc.ID)
		}
		seenIDs[sc.ID] = true

		switch sc.Protocol {
		case "", "tcp":
			// ok; defaults applied by Normalize
		case "rtu":
			if sc.Device == "" {
				return fmt.Errorf("config: slave %q: rtu requires a device", sc.ID)
			}
		default:
			return fmt.Errorf("config: slave %q: unknown protocol %q", sc.ID, sc.Protocol)
		}

		switch sc.Parity {
		case "", "N", "E", "O":
		default:
			return fmt.Errorf("config: slave %q: parity must be N, E or O", sc.ID)
		}

		ep := effectiveEndpoint(sc)
		if prev, dup := seenEndpoints[ep]; dup {
			return fmt.Errorf("config: endpoint %s used by slaves %q and %q", ep, prev, sc.ID)
		}
		seenEndpoints[ep] = sc.ID

		if err := validatePoints(sc); err != nil {
			return err
		}
	}

	return nil
}

func validatePoints(sc SlaveConfig) error {
	// key = type | address
	seen := make(map[string]bool)

	for _, pc := range sc.Points {
		kind, err := register.ParseKind(pc.Type)
		if err != nil {
			return fmt.Errorf("config: slave %q: point %d: unknown type %q", sc.ID, pc.Address, pc.Type)
		}

		key := fmt.Sprintf("%s|%d", pc.Type, pc.Address)
		if seen[key] {
			return fmt.Errorf("config: slave %q: duplicate %s address %d", sc.ID, pc.Type, pc.Address)
		}
		seen[key] = true

		if kind.Discrete() {
			if pc.Min != nil || pc.Max != nil {
				return fmt.Errorf("config: slave %q: %s %d: bounds do not apply to discrete types",
					sc.ID, pc.Type, pc.Address)
			}
			if pc.Initial > 1 {
				return fmt.Errorf("config: slave %q: %s %d: initial value must be 0 or 1",
					sc.ID, pc.Type, pc.Address)
			}
			continue
		}

		if pc.Min != nil && pc.Max != nil && *pc.Min > *pc.Max {
			return fmt.Errorf("config: slave %q: %s %d: min %d > max %d",
				sc.ID, pc.Type, pc.Address, *pc.Min, *pc.Max)
		}
	}

	return nil
}

// effectiveEndpoint computes the endpoint a slave would claim after
// normalization, without mutating the config.
func effectiveEndpoint(sc SlaveConfig) string {
	if sc.Protocol == "rtu" {
		return sc.Device
	}
	host := sc.Host
	if host == "" {
		host = defaultHost
	}
	port := sc.TCPPort
	if port == 0 {
		port = defaultTCPPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
