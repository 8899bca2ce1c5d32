// Package services implements the business logic layer of the orders
// reporting application. It sits between the HTTP handlers and the data
// processing pipeline so that business rules stay centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection for loose coupling
//	3. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
//	- ReportService: owns uploaded datasets and runs the filter,
//	  aggregation, and KPI pipeline over them
//	- HealthService: provides system health checks and version info
//
// # Error Handling
//
// Services return sentinel errors that handlers transform into RFC 7807
// problem responses:
//
//	- ErrDatasetNotFound for unknown dataset IDs
//	- ErrNoData when a filter selection matches no rows
//	- ErrVendorNotFound for unknown detail vendors
package services
