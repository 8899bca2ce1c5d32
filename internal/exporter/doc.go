// Package exporter turns report results into downloadable files.
//
// Two formats are supported:
//
// Workbook: writes an .xlsx workbook with an Ordenes sheet (count summary)
// and an Importes sheet (amount summary). When detail rows are supplied it
// adds Detalle and Detalle_Proveedor sheets with the filtered orders.
//
// SummaryCSV: writes a single summary table as CSV, with an optional UTF-8
// BOM so Excel recognizes the encoding.
package exporter
