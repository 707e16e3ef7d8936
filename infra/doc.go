// Package infra contains technical adapters such as the MQTT telemetry
// client, the SQLite record store and the metrics exporters. These packages
// should depend only on the interfaces defined in the core packages.
package infra
