// cmd/modprobe/main.go
//
// modprobe is a Modbus TCP master used to poke a running simulator from
// the wire side, e.g.:
//
//	modprobe -addr 127.0.0.1:502 -kind holding_register -address 0
//	modprobe -addr 127.0.0.1:502 -kind coil -address 3 -write -value 1
//	modprobe -addr 127.0.0.1:502 -kind input_register -quantity 4 -watch -interval 1s
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamzrod/modbus-slavesim/internal/probe"
	"github.com/tamzrod/modbus-slavesim/internal/register"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:502", "slave endpoint host:port")
	unit := flag.Int("unit", 1, "unit (station) address")
	kindStr := flag.String("kind", "holding_register", "register kind: coil, discrete_input, holding_register, input_register")
	address := flag.Uint("address", 0, "register address")
	quantity := flag.Uint("quantity", 1, "number of registers to read")
	write := flag.Bool("write", false, "write instead of read")
	value := flag.Uint("value", 0, "value to write")
	watch := flag.Bool("watch", false, "keep reading on an interval until interrupted")
	interval := flag.Duration("interval", time.Second, "watch interval")
	timeout := flag.Duration("timeout", 2*time.Second, "request timeout")
	flag.Parse()

	kind, err := register.ParseKind(*kindStr)
	if err != nil {
		log.Fatalf("modprobe: %v", err)
	}

	client, err := probe.Dial(probe.ClientConfig{
		Endpoint: *addr,
		UnitID:   uint8(*unit),
		Timeout:  *timeout,
	})
	if err != nil {
		log.Fatalf("modprobe: %v", err)
	}
	defer client.Close()

	if *write {
		if err := doWrite(client, kind, uint16(*address), uint16(*value)); err != nil {
			log.Fatalf("modprobe: %v", err)
		}
		fmt.Printf("write %s %d = %d ok\n", kind, *address, *value)
		return
	}

	p, err := probe.New(probe.Config{
		Interval: *interval,
		Reads: []probe.ReadBlock{
			{Kind: kind, Address: uint16(*address), Quantity: uint16(*quantity)},
		},
	}, client)
	if err != nil {
		log.Fatalf("modprobe: %v", err)
	}

	if !*watch {
		res := p.ReadOnce()
		if res.Err != nil {
			log.Fatalf("modprobe: read %s %d: %v", kind, *address, res.Err)
		}
		printResult(res)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	results := make(chan probe.Result)
	go p.Run(ctx, results)

	for {
		select {
		case <-ctx.Done():
			return
		case res := <-results:
			if res.Err != nil {
				fmt.Printf("%s read failed: %v\n", res.At.Format(time.TimeOnly), res.Err)
				continue
			}
			printResult(res)
		}
	}
}

func printResult(res probe.Result) {
	for _, b := range res.Blocks {
		if b.Kind.Discrete() {
			for i, bit := range b.Bits {
				v := 0
				if bit {
					v = 1
				}
				fmt.Printf("%s %d = %d\n", b.Kind, b.Address+uint16(i), v)
			}
			continue
		}
		for i, reg := range b.Registers {
			fmt.Printf("%s %d = %d\n", b.Kind, b.Address+uint16(i), reg)
		}
	}
}

func doWrite(client *probe.TCPClient, kind register.Kind, addr, value uint16) error {
	switch kind {
	case register.Coil:
		return client.WriteCoil(addr, value != 0)
	case register.HoldingRegister:
		return client.WriteRegister(addr, value)
	default:
		return fmt.Errorf("%s is not writable over the wire", kind)
	}
}
