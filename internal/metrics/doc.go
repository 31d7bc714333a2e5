// Package metrics exposes integration metrics through a private Prometheus
// registry and reads Go runtime memory statistics for the verbose report.
//
// The registry is served by the HTTP service at /metrics and can be written
// once to a node_exporter textfile at the end of a CLI run.
package metrics
