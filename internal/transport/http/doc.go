// Package http implements HTTP request handlers for the orders reporting
// service. It provides a thin layer between HTTP transport and business
// logic, keeping handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to RFC 7807 problems
//	4. No business logic - all logic belongs in the service layer
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Pipeline
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// Each handler struct owns a Routes() chi.Router that the application
// mounts under its API prefix.
package http
