package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ordenescli/internal/config"
	"ordenescli/internal/dataprocessing"
	"ordenescli/pkg/contracts/domain"
	"ordenescli/pkg/contracts/events"
)

// DefaultOrderType is preselected when present in the uploaded data.
const DefaultOrderType = "CORRECTIVO"

// EventPublisher receives dataset lifecycle notifications. The websocket
// hub implements it; a nil publisher disables notifications.
type EventPublisher interface {
	PublishEvent(eventType string, data interface{})
}

// ReportMetrics receives business counters from the service. Implemented
// by the infrastructure metrics providers; nil disables recording.
type ReportMetrics interface {
	RecordUpload(ctx context.Context, rows int)
	RecordSummary(ctx context.Context)
	RecordExport(ctx context.Context, format string)
	RecordDatasetDelta(ctx context.Context, delta int64)
}

// ReportService owns uploaded datasets and runs the filter, aggregation,
// and KPI pipeline over them. Datasets live in memory only.
type ReportService struct {
	logger     *slog.Logger
	normalizer *dataprocessing.Normalizer
	cfg        config.UploadConfig
	publisher  EventPublisher
	metrics    ReportMetrics

	mu       sync.RWMutex
	datasets map[string]*storedDataset
}

// storedDataset tracks the last access time so the janitor can expire
// idle sessions.
type storedDataset struct {
	dataset    *domain.Dataset
	lastAccess time.Time
}

// NewReportService creates a report service with the given upload limits.
// Publisher and metrics may be nil.
func NewReportService(cfg config.UploadConfig, logger *slog.Logger, publisher EventPublisher, metrics ReportMetrics) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		logger:     logger.With(slog.String("component", "report_service")),
		normalizer: dataprocessing.NewNormalizer(logger),
		cfg:        cfg,
		publisher:  publisher,
		metrics:    metrics,
		datasets:   make(map[string]*storedDataset),
	}
}

// Upload parses a workbook and stores the resulting dataset. A file that
// cannot be read as a workbook, or one with no data rows at all, is
// rejected; missing columns and unparsable cells only produce warnings.
func (s *ReportService) Upload(ctx context.Context, filename string, r io.Reader) (*domain.Dataset, error) {
	ds, err := s.normalizer.ParseWorkbook(r)
	if err != nil {
		s.logger.WarnContext(ctx, "workbook rejected",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return nil, err
	}
	if len(ds.Orders) == 0 {
		s.logger.WarnContext(ctx, "workbook rejected",
			slog.String("filename", filename),
			slog.String("error", ErrEmptyDataset.Error()))
		return nil, ErrEmptyDataset
	}

	ds.ID = uuid.New().String()
	ds.Filename = filename
	ds.UploadedAt = time.Now().UTC()

	s.mu.Lock()
	s.evictOldestLocked(ctx)
	s.datasets[ds.ID] = &storedDataset{dataset: ds, lastAccess: time.Now()}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset stored",
		slog.String("dataset_id", ds.ID),
		slog.String("filename", filename),
		slog.Int("rows", len(ds.Orders)),
		slog.Int("warnings", len(ds.Warnings)))

	if s.metrics != nil {
		s.metrics.RecordUpload(ctx, len(ds.Orders))
		s.metrics.RecordDatasetDelta(ctx, 1)
	}
	s.publish(events.MessageTypeDatasetUploaded, events.DatasetEvent{
		DatasetID: ds.ID,
		Filename:  filename,
		Rows:      len(ds.Orders),
	})

	return ds, nil
}

// Get returns the stored dataset for the given ID.
func (s *ReportService) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.datasets[id]
	if !ok {
		return nil, ErrDatasetNotFound
	}
	stored.lastAccess = time.Now()
	return stored.dataset, nil
}

// Delete drops a dataset from the store.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return ErrDatasetNotFound
	}
	delete(s.datasets, id)

	s.logger.InfoContext(ctx, "dataset deleted", slog.String("dataset_id", id))
	if s.metrics != nil {
		s.metrics.RecordDatasetDelta(ctx, -1)
	}
	s.publish(events.MessageTypeDatasetDeleted, events.DatasetEvent{DatasetID: id})
	return nil
}

// Count returns the number of datasets currently stored.
func (s *ReportService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

// Options enumerates the selector values available for a dataset together
// with the defaults the UI should preselect: CORRECTIVO when present, the
// most recent year, and the current calendar month.
func (s *ReportService) Options(ctx context.Context, id string) (domain.FilterOptions, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return domain.FilterOptions{}, err
	}

	opts := domain.FilterOptions{Warnings: ds.Warnings}

	typeSet := make(map[string]struct{})
	yearSet := make(map[int]struct{})
	monthSet := make(map[int]struct{})
	vendorSet := make(map[string]struct{})
	statusSet := make(map[string]struct{})

	for _, o := range ds.Orders {
		if o.OrderType != "" {
			typeSet[o.OrderType] = struct{}{}
		}
		if o.CreationDate != nil {
			yearSet[o.CreationDate.Year()] = struct{}{}
			monthSet[int(o.CreationDate.Month())] = struct{}{}
		}
		if o.Vendor != "" {
			vendorSet[o.Vendor] = struct{}{}
		}
		if o.UserStatus != "" {
			statusSet[o.UserStatus] = struct{}{}
		}
	}

	opts.Types = sortedStrings(typeSet)
	opts.Years = sortedInts(yearSet)
	opts.Months = sortedInts(monthSet)
	opts.Vendors = sortedStrings(vendorSet)
	opts.Statuses = sortedStrings(statusSet)

	if _, ok := typeSet[DefaultOrderType]; ok {
		opts.DefaultTypes = []string{DefaultOrderType}
	}
	if len(opts.Years) > 0 {
		opts.DefaultYear = opts.Years[len(opts.Years)-1]
	}
	opts.DefaultMonths = []int{int(time.Now().Month())}

	return opts, nil
}

// Summary filters the dataset and computes KPIs plus the count and amount
// summary tables. Returns ErrNoData when the selection matches no rows.
func (s *ReportService) Summary(ctx context.Context, id string, sel domain.Selection) (*domain.ReportResult, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	filtered := dataprocessing.ApplyFilters(ds, sel)
	if len(filtered) == 0 {
		return nil, ErrNoData
	}

	countTable, err := dataprocessing.BuildSummary(filtered, dataprocessing.AggregateCount)
	if err != nil {
		return nil, fmt.Errorf("count summary: %w", err)
	}
	amountTable, err := dataprocessing.BuildSummary(filtered, dataprocessing.AggregateAmount)
	if err != nil {
		return nil, fmt.Errorf("amount summary: %w", err)
	}

	result := &domain.ReportResult{
		DatasetID:   id,
		Selection:   sel,
		KPIs:        dataprocessing.ComputeKPIs(filtered),
		CountTable:  countTable,
		AmountTable: amountTable,
		RowCount:    len(filtered),
	}

	if s.metrics != nil {
		s.metrics.RecordSummary(ctx)
	}
	s.publish(events.MessageTypeDatasetRecomputed, events.DatasetEvent{
		DatasetID: id,
		Rows:      len(filtered),
	})

	return result, nil
}

// DetailResult holds the filtered rows plus the optional single-vendor
// subset with its own status selection.
type DetailResult struct {
	Orders       []domain.Order `json:"orders"`
	Vendor       string         `json:"vendor,omitempty"`
	VendorOrders []domain.Order `json:"vendor_orders,omitempty"`
}

// Detail returns the filtered rows and, when sel.DetailVendor is set, the
// single-vendor subset narrowed by sel.DetailStatuses.
func (s *ReportService) Detail(ctx context.Context, id string, sel domain.Selection) (*DetailResult, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	filtered := dataprocessing.ApplyFilters(ds, sel)
	if len(filtered) == 0 {
		return nil, ErrNoData
	}

	result := &DetailResult{Orders: filtered}

	if sel.DetailVendor != "" {
		if !vendorPresent(filtered, sel.DetailVendor) {
			return nil, ErrVendorNotFound
		}
		result.Vendor = sel.DetailVendor
		result.VendorOrders = dataprocessing.VendorDetail(filtered, sel.DetailVendor, sel.DetailStatuses)
	}

	return result, nil
}

// RecordExport forwards an export event to metrics and the publisher.
// Called by the transport layer after a successful download.
func (s *ReportService) RecordExport(ctx context.Context, id, format string) {
	if s.metrics != nil {
		s.metrics.RecordExport(ctx, format)
	}
	s.publish(events.MessageTypeDatasetExported, events.DatasetEvent{
		DatasetID: id,
		Format:    format,
	})
}

// PruneExpired removes datasets idle longer than the configured TTL.
// Returns the number of datasets removed.
func (s *ReportService) PruneExpired(ctx context.Context) int {
	if s.cfg.TTL <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-s.cfg.TTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, stored := range s.datasets {
		if stored.lastAccess.Before(cutoff) {
			delete(s.datasets, id)
			removed++
			s.logger.InfoContext(ctx, "dataset expired",
				slog.String("dataset_id", id),
				slog.Time("last_access", stored.lastAccess))
		}
	}
	if removed > 0 && s.metrics != nil {
		s.metrics.RecordDatasetDelta(ctx, -int64(removed))
	}
	return removed
}

// StartJanitor runs PruneExpired on a fixed interval until the context is
// cancelled.
func (s *ReportService) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PruneExpired(ctx)
		}
	}
}

// evictOldestLocked makes room for a new dataset when the store is full.
// Caller must hold s.mu.
func (s *ReportService) evictOldestLocked(ctx context.Context) {
	if s.cfg.MaxDatasets <= 0 || len(s.datasets) < s.cfg.MaxDatasets {
		return
	}

	var oldestID string
	var oldest time.Time
	for id, stored := range s.datasets {
		if oldestID == "" || stored.lastAccess.Before(oldest) {
			oldestID = id
			oldest = stored.lastAccess
		}
	}
	if oldestID != "" {
		delete(s.datasets, oldestID)
		s.logger.WarnContext(ctx, "dataset evicted to make room",
			slog.String("dataset_id", oldestID))
		if s.metrics != nil {
			s.metrics.RecordDatasetDelta(ctx, -1)
		}
	}
}

func (s *ReportService) publish(eventType events.MessageType, event events.DatasetEvent) {
	if s.publisher != nil {
		s.publisher.PublishEvent(string(eventType), event)
	}
}

func vendorPresent(orders []domain.Order, vendor string) bool {
	for _, o := range orders {
		if o.Vendor == vendor {
			return true
		}
	}
	return false
}

func sortedStrings(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func sortedInts(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

