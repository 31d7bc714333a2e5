// Package server exposes the integrator over HTTP with gin.
//
// Routes:
//
//	GET /v1/integrate?steps=&terms=&threads=&partition=&scheduler=
//	GET /metrics
//	GET /healthz
//
// Every request runs its own integration with a per-request deadline.
// Missing parameters fall back to the process configuration.
package server
