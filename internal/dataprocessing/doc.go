// Package dataprocessing implements the reporting pipeline for uploaded
// maintenance-order workbooks: schema normalization, the filter chain, the
// pivot aggregator and the KPI calculator.
//
// # Architecture
//
// 1. Normalizer: reads an .xlsx stream and coerces it into typed orders
// 2. Filter chain: pure, order-independent predicate filters
// 3. Aggregator: count and amount pivots with synthetic totals
// 4. KPI calculator: the four scalar indicators for the filtered subset
//
// # Data Flow
//
//	Workbook → Normalizer → Dataset → ApplyFilters → { BuildSummary, ComputeKPIs }
//
// # Error Handling
//
// Only an unreadable workbook is fatal. Per-cell coercion failures become
// absent values and missing canonical columns disable their dependent
// features, recorded as dataset warnings. An empty filtered subset is a
// distinct no-data state handled by the service layer, never passed to the
// aggregator.
package dataprocessing
