// internal/slave/state.go
package slave

// State is the lifecycle state of a slave.
//
//	Stopped --start--> Starting --bind ok--> Running
//	Starting --bind fails--> Failed
//	Running --stop--> Stopping --release--> Stopped
//	Failed --reset--> Stopped
type State int

const (
	Stopped State = iota
	Starting
	Running
	Stopping
	Failed
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
