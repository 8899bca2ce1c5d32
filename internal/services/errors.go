package services

import "errors"

// Report service errors
var (
	// Dataset errors
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrNoData          = errors.New("no rows match the current selection")
	ErrEmptyDataset    = errors.New("dataset contains no rows")

	// Detail errors
	ErrVendorNotFound = errors.New("vendor not found in filtered data")
)
