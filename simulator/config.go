package main

import "time"

// Config holds parameters for the telemetry simulator.
type Config struct {
	Broker         string
	TopicPrefix    string
	Stations       int
	Interval       time.Duration
	MaintenancePct float64
	Seed           int64
}
