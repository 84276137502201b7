// Package observability provides structured logging and Prometheus metrics
// for the gateway.
//
// This package implements:
//   - zap logger construction from LOG_LEVEL / LOG_FORMAT
//   - request logging middleware carrying the chi request id
//   - Prometheus collectors for upstream instance attempts and resolutions
package observability
