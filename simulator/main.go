// Command simulator publishes synthetic station telemetry over MQTT so a
// running service can be exercised without real charging hardware.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
)

func main() {
	cfg := Config{}
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.StringVar(&cfg.TopicPrefix, "topic-prefix", "ev/stations", "status topic prefix")
	flag.IntVar(&cfg.Stations, "stations", 5, "number of simulated stations")
	flag.DurationVar(&cfg.Interval, "interval", 10*time.Second, "publish interval")
	flag.Float64Var(&cfg.MaintenancePct, "maintenance-pct", 0.01, "probability of a maintenance report per tick")
	flag.Int64Var(&cfg.Seed, "seed", 0, "random seed (0 uses the current time)")
	flag.Parse()

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg Config) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	stations := make([]*SimulatedStation, cfg.Stations)
	for i := range stations {
		stations[i] = NewSimulatedStation(i+1, rng)
	}

	cli, err := newMQTTClient(cfg.Broker, "evopt-sim-"+uuid.NewString()[:8])
	if err != nil {
		return fmt.Errorf("connect mqtt: %w", err)
	}
	defer cli.Disconnect(250)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			return nil
		case now := <-ticker.C:
			for _, st := range stations {
				load, status := st.Step(now, rng, cfg.MaintenancePct)
				if err := publishStatus(cli, cfg.TopicPrefix, st.ID, load, status); err != nil {
					fmt.Fprintf(os.Stderr, "publish station %d: %v\n", st.ID, err)
				}
			}
		}
	}
}
