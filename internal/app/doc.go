// Package app assembles the Ordenes Reporter server: configuration,
// logging, metrics, the in-memory report service, the WebSocket hub and
// the chi router, plus graceful start and stop.
//
// The middleware chain is deliberately split in two. RequestID and RealIP
// run for every request so the WebSocket upgrade and the Prometheus
// scrape endpoint still get trace correlation, while logging, recovery,
// security headers, CORS, rate limiting and metrics wrap only the JSON
// API group.
package app
