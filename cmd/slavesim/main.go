// cmd/slavesim/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tamzrod/modbus-slavesim/internal/config"
	"github.com/tamzrod/modbus-slavesim/internal/event"
	"github.com/tamzrod/modbus-slavesim/internal/registry"
	"github.com/tamzrod/modbus-slavesim/internal/tui"
)

func main() {
	configPath := flag.String("config", "slavesim.yaml", "path to the simulator configuration")
	headless := flag.Bool("headless", false, "run without the cockpit, events on stdout")
	flag.Parse()

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	// --------------------
	// Event sink
	// --------------------

	logs := tui.NewLogBuffer(500)
	var sink event.Sink = logs
	if *headless {
		sink = event.SinkFunc(func(message string, level event.Level) {
			fmt.Printf("%s %-7s %s\n", time.Now().Format(time.DateTime), level, message)
		})
	}

	// --------------------
	// Build registry
	// --------------------

	reg := registry.New(sink)
	defer reg.Close()

	for _, sc := range cfg.Simulator.Slaves {
		scfg, err := config.SlaveConfigFor(sc)
		if err != nil {
			log.Fatalf("slave %s config failed: %v", sc.ID, err)
		}
		if _, err := reg.Add(scfg); err != nil {
			log.Fatalf("add slave %s failed: %v", sc.ID, err)
		}
	}

	for id, err := range reg.StartAll() {
		slog.Error("slave failed to start", "slave", id, "err", err)
	}

	// --------------------
	// Run
	// --------------------

	if *headless {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		return
	}

	if _, err := tea.NewProgram(tui.New(reg, logs), tea.WithAltScreen()).Run(); err != nil {
		fmt.Printf("Error running cockpit: %v\n", err)
		os.Exit(1)
	}
}
