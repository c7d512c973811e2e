// Package middleware provides HTTP middleware for the library API server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - Response compression and gzip request bodies
package middleware
