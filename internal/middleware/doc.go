// Package middleware provides HTTP middleware for the media-resolver server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labeled by gorilla/mux route template
//   - gzip compression of JSON responses
package middleware
