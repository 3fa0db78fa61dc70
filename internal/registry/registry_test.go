// internal/registry/registry_test.go
package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tamzrod/modbus-slavesim/internal/event"
	"github.com/tamzrod/modbus-slavesim/internal/slave"
)

func tcpConfig(id string, port int) slave.Config {
	return slave.Config{
		ID:          id,
		Name:        id,
		Protocol:    slave.ProtocolTCP,
		Host:        "127.0.0.1",
		TCPPort:     port,
		UnitAddress: 1,
	}
}

// ---- tests ----

func TestAddDuplicateID(t *testing.T) {
	r := New(event.Nop())
	if _, err := r.Add(tcpConfig("s1", 15040)); err != nil {
		t.Fatalf("Add() err=%v", err)
	}
	if _, err := r.Add(tcpConfig("s1", 15041)); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Add() err=%v, want ErrDuplicateID", err)
	}
}

func TestAddEndpointConflictWithRunningSlave(t *testing.T) {
	r := New(event.Nop())
	if _, err := r.Add(tcpConfig("s1", 15042)); err != nil {
		t.Fatalf("Add(s1) err=%v", err)
	}
	if err := r.Start("s1"); err != nil {
		t.Fatalf("Start(s1) err=%v", err)
	}
	defer r.Close()

	if _, err := r.Add(tcpConfig("s2", 15042)); !errors.Is(err, ErrEndpointConflict) {
		t.Fatalf("Add(s2) err=%v, want ErrEndpointConflict", err)
	}
}

func TestStartSecondSlaveOnSameEndpoint(t *testing.T) {
	r := New(event.Nop())
	// same endpoint, both stopped: allowed to coexist
	if _, err := r.Add(tcpConfig("s1", 15043)); err != nil {
		t.Fatalf("Add(s1) err=%v", err)
	}
	if _, err := r.Add(tcpConfig("s2", 15043)); err != nil {
		t.Fatalf("Add(s2) err=%v", err)
	}

	if err := r.Start("s1"); err != nil {
		t.Fatalf("Start(s1) err=%v", err)
	}
	defer r.Close()

	if err := r.Start("s2"); !errors.Is(err, slave.ErrEndpointInUse) {
		t.Fatalf("Start(s2) err=%v, want ErrEndpointInUse", err)
	}

	s1, _ := r.Get("s1")
	if got := s1.State(); got != slave.Running {
		t.Fatalf("s1 state = %s, want running", got)
	}

	// once s1 stops, the endpoint is free for s2
	if err := r.Stop("s1"); err != nil {
		t.Fatalf("Stop(s1) err=%v", err)
	}
	if err := r.Start("s2"); err != nil {
		t.Fatalf("Start(s2) after Stop(s1) err=%v", err)
	}
}

func TestRemoveBusySlave(t *testing.T) {
	r := New(event.Nop())
	if _, err := r.Add(tcpConfig("s1", 15044)); err != nil {
		t.Fatalf("Add() err=%v", err)
	}
	if err := r.Start("s1"); err != nil {
		t.Fatalf("Start() err=%v", err)
	}
	defer r.Close()

	if err := r.Remove("s1"); !errors.Is(err, ErrSlaveBusy) {
		t.Fatalf("Remove() on running slave err=%v, want ErrSlaveBusy", err)
	}

	if err := r.Stop("s1"); err != nil {
		t.Fatalf("Stop() err=%v", err)
	}
	if err := r.Remove("s1"); err != nil {
		t.Fatalf("Remove() after stop err=%v", err)
	}
	if _, err := r.Get("s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after remove err=%v, want ErrNotFound", err)
	}
}

// TestRemovedSlaveCannotStart covers a Start racing a Remove: a caller
// that fetched the slave before removal must not be able to bind it
// afterwards, or a running listener would survive outside List().
func TestRemovedSlaveCannotStart(t *testing.T) {
	r := New(event.Nop())
	if _, err := r.Add(tcpConfig("s1", 15053)); err != nil {
		t.Fatalf("Add() err=%v", err)
	}

	s, err := r.Get("s1")
	if err != nil {
		t.Fatalf("Get() err=%v", err)
	}
	if err := r.Remove("s1"); err != nil {
		t.Fatalf("Remove() err=%v", err)
	}

	if err := s.Start(); !errors.Is(err, slave.ErrInvalidState) {
		t.Fatalf("Start() on removed slave err=%v, want ErrInvalidState", err)
	}
	if got := s.State(); got != slave.Stopped {
		t.Fatalf("removed slave state = %s, want stopped", got)
	}
}

func TestListInsertionOrder(t *testing.T) {
	r := New(event.Nop())
	ids := []string{"c", "a", "b"}
	for i, id := range ids {
		if _, err := r.Add(tcpConfig(id, 15045+i)); err != nil {
			t.Fatalf("Add(%s) err=%v", id, err)
		}
	}

	list := r.List()
	if len(list) != len(ids) {
		t.Fatalf("List() len=%d, want %d", len(list), len(ids))
	}
	for i, s := range list {
		if s.ID() != ids[i] {
			t.Fatalf("List()[%d] = %s, want %s", i, s.ID(), ids[i])
		}
	}
}

func TestStartAllCollectsPartialFailures(t *testing.T) {
	r := New(event.Nop())
	// s1 and s2 share an endpoint: exactly one of the pair must fail,
	// and s3 must start regardless.
	if _, err := r.Add(tcpConfig("s1", 15050)); err != nil {
		t.Fatalf("Add(s1) err=%v", err)
	}
	if _, err := r.Add(tcpConfig("s2", 15050)); err != nil {
		t.Fatalf("Add(s2) err=%v", err)
	}
	if _, err := r.Add(tcpConfig("s3", 15051)); err != nil {
		t.Fatalf("Add(s3) err=%v", err)
	}
	defer r.Close()

	failures := r.StartAll()
	if len(failures) != 1 {
		t.Fatalf("StartAll() failures=%v, want exactly one", failures)
	}
	if err, ok := failures["s2"]; !ok || !errors.Is(err, slave.ErrEndpointInUse) {
		t.Fatalf("StartAll() failures=%v, want s2 ErrEndpointInUse", failures)
	}

	s3, _ := r.Get("s3")
	if got := s3.State(); got != slave.Running {
		t.Fatalf("s3 state = %s, want running", got)
	}

	if failures := r.StopAll(); len(failures) != 0 {
		t.Fatalf("StopAll() failures=%v, want none", failures)
	}
}

func TestSinkSharedAcrossSlaves(t *testing.T) {
	var got []string
	sink := event.SinkFunc(func(message string, _ event.Level) {
		got = append(got, message)
	})

	r := New(sink)
	if _, err := r.Add(tcpConfig("s1", 15052)); err != nil {
		t.Fatalf("Add() err=%v", err)
	}

	want := fmt.Sprintf("[%s]", "s1")
	found := false
	for _, m := range got {
		if len(m) >= len(want) && m[:len(want)] == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("no event carried the [name] prefix, got %v", got)
	}
}
