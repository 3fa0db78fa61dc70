// internal/registry/claims.go
package registry

import (
	"fmt"
	"sync"
)

// claims tracks which slave owns each transport endpoint. One endpoint has
// at most one owner across all Starting/Running slaves.
type claims struct {
	mu    sync.Mutex
	owner map[string]string // endpoint -> slave id
}

func newClaims() *claims {
	return &claims{owner: make(map[string]string)}
}

// Claim records slaveID as the owner of endpoint. Claiming an endpoint a
// different slave owns fails; re-claiming one's own endpoint is idempotent.
func (c *claims) Claim(endpoint, slaveID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, taken := c.owner[endpoint]; taken && prev != slaveID {
		return fmt.Errorf("endpoint %s claimed by slave %s", endpoint, prev)
	}
	c.owner[endpoint] = slaveID
	return nil
}

// Release drops the claim if slaveID still owns it.
func (c *claims) Release(endpoint, slaveID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner[endpoint] == slaveID {
		delete(c.owner, endpoint)
	}
}

// ownerOf returns the claiming slave id, if any.
func (c *claims) ownerOf(endpoint string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.owner[endpoint]
	return id, ok
}
