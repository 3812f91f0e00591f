// Package server provides the HTTP API for the quota service.
//
// The server exposes the three quota operations plus operational
// endpoints:
//
//	POST /v1/admission/check  - may this interaction proceed?
//	POST /v1/usage/commit     - record a completed interaction
//	GET  /v1/usage/stats      - usage snapshot for a user
//	GET  /healthz             - liveness probe
//	GET  /metrics             - Prometheus metrics (when enabled)
//
// Policy denials are HTTP 200 responses carrying a decision body with
// allowed=false and a reason code: they are outcomes, not errors.
// Validation problems map to 400 and ledger store failures to 503, so
// callers can retry infrastructure trouble with backoff.
//
// The server handles graceful shutdown on SIGTERM/SIGINT: it stops
// accepting connections, drains in-flight requests up to the configured
// shutdown timeout, then closes.
package server
