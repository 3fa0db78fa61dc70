// internal/slave/listener.go
package slave

import (
	"fmt"
	"time"

	"github.com/goburrow/serial"
	"github.com/tbrandon/mbserver"
)

// stopTimeout bounds how long Stop waits for the listener to release its
// endpoint before forcing the Stopped state. Best effort: the transport
// primitive does not guarantee prompt cancellation.
const stopTimeout = 3 * time.Second

// bind starts the transport endpoint for the slave's protocol. The
// protocol library runs its accept loop on its own goroutines; bind
// returns once the endpoint is claimed or with the bind error.
func (s *Slave) bind(srv *mbserver.Server) error {
	switch s.cfg.Protocol {
	case ProtocolTCP:
		return srv.ListenTCP(s.cfg.Endpoint())
	case ProtocolRTU:
		return srv.ListenRTU(&serial.Config{
			Address:  s.cfg.Device,
			BaudRate: s.cfg.Baud,
			DataBits: s.cfg.DataBits,
			Parity:   s.cfg.Parity,
			StopBits: s.cfg.StopBits,
			Timeout:  10 * time.Second,
		})
	default:
		return fmt.Errorf("unknown protocol %q", s.cfg.Protocol)
	}
}

// shutdown closes the server and waits at most timeout for teardown to be
// acknowledged. Reports whether the release was clean.
func shutdown(srv *mbserver.Server, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		srv.Close()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
