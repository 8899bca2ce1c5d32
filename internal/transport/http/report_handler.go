package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "ordenescli/internal/errors"
	"ordenescli/internal/exporter"
	"ordenescli/internal/middleware"
	"ordenescli/internal/services"
	"ordenescli/internal/validation"
	"ordenescli/pkg/contracts/domain"
)

// Export formats accepted by the export endpoint.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// ReportHandler handles dataset and report HTTP requests with RFC 7807
// compliance
type ReportHandler struct {
	service       *services.ReportService
	logger        *slog.Logger
	errorHandler  *apierrors.ErrorHandler
	validation    *middleware.ValidationMiddleware
	query         *middleware.QueryParamValidator
	uploads       *validation.UploadValidator
	maxUploadSize int64
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *services.ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadSize int64) *ReportHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	return &ReportHandler{
		service:       service,
		logger:        logger.With(slog.String("component", "report_handler")),
		errorHandler:  errorHandler,
		validation:    middleware.NewValidationMiddleware(logger, errorHandler),
		query:         middleware.NewQueryParamValidator(logger, errorHandler),
		uploads:       validation.NewUploadValidator(logger),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the dataset routes with proper Chi patterns
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upload)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/options", h.Options)
		r.Post("/summary", h.Summary)
		r.Post("/detail", h.Detail)
		r.Get("/export", h.Export)
		r.Delete("/", h.Delete)
	})

	return r
}

// DatasetCtx validates the dataset ID parameter
func (h *ReportHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Dataset ID is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/datasets: a multipart form with a single
// workbook under the "file" field.
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.logger.WarnContext(r.Context(), "multipart parse failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		if strings.Contains(err.Error(), "request body too large") {
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.MalformedUploadError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A workbook file is required under the 'file' field"))
		return
	}
	defer file.Close()

	if err := h.uploads.ValidateFilename(header.Filename); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", err.Error()))
		return
	}
	stream, err := h.uploads.ValidateWorkbook(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.MalformedUploadError(err))
		return
	}

	ds, err := h.service.Upload(r.Context(), header.Filename, stream)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "upload rejected",
			slog.String("error", err.Error()),
			slog.String("filename", header.Filename),
			slog.String("request_id", reqID))
		if errors.Is(err, services.ErrEmptyDataset) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusUnprocessableEntity,
				"EMPTY_DATASET",
				"The workbook contains no data rows",
				header.Filename,
			))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset uploaded",
		slog.String("dataset_id", ds.ID),
		slog.String("filename", ds.Filename),
		slog.Int("rows", len(ds.Orders)))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"id":          ds.ID,
		"filename":    ds.Filename,
		"uploaded_at": ds.UploadedAt,
		"rows":        len(ds.Orders),
		"columns":     ds.Columns,
		"warnings":    ds.Warnings,
	})
}

// Options handles GET /api/datasets/{id}/options
func (h *ReportHandler) Options(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	opts, err := h.service.Options(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, id, err)
		return
	}

	render.JSON(w, r, opts)
}

// Summary handles POST /api/datasets/{id}/summary
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var sel domain.Selection
	if err := render.DecodeJSON(r.Body, &sel); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(sel); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Summary(r.Context(), id, sel)
	if err != nil {
		h.handleServiceError(w, r, id, err)
		return
	}

	render.JSON(w, r, result)
}

// Detail handles POST /api/datasets/{id}/detail
func (h *ReportHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var sel domain.Selection
	if err := render.DecodeJSON(r.Body, &sel); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(sel); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Detail(r.Context(), id, sel)
	if err != nil {
		h.handleServiceError(w, r, id, err)
		return
	}

	render.JSON(w, r, result)
}

// Export handles GET /api/datasets/{id}/export. The selection arrives as
// query parameters so the download works as a plain link.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	format, ok := h.query.ValidateEnum(w, r, "format", []string{FormatXLSX, FormatCSV}, FormatXLSX)
	if !ok {
		return
	}

	sel, err := parseSelectionQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("selection", err.Error()))
		return
	}
	year, ok := h.query.ValidateInt(w, r, "year", 0, 9999, 0)
	if !ok {
		return
	}
	sel.Year = year

	result, err := h.service.Summary(r.Context(), id, sel)
	if err != nil {
		h.handleServiceError(w, r, id, err)
		return
	}

	switch format {
	case FormatCSV:
		h.exportCSV(w, r, id, result)
	default:
		h.exportWorkbook(w, r, id, sel, result)
	}
}

func (h *ReportHandler) exportWorkbook(w http.ResponseWriter, r *http.Request, id string, sel domain.Selection, result *domain.ReportResult) {
	opts := exporter.WorkbookOptions{}
	if r.URL.Query().Get("detail") == "1" {
		detail, err := h.service.Detail(r.Context(), id, sel)
		if err != nil {
			h.handleServiceError(w, r, id, err)
			return
		}
		opts.DetailOrders = detail.Orders
		opts.VendorLabel = detail.Vendor
		opts.VendorOrders = detail.VendorOrders
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ordenes_%s.xlsx"`, id))

	if err := exporter.Workbook(w, result, opts); err != nil {
		h.logger.ErrorContext(r.Context(), "workbook export failed",
			slog.String("error", err.Error()),
			slog.String("dataset_id", id))
		// Headers are out already; nothing sensible left to send
		return
	}
	h.service.RecordExport(r.Context(), id, FormatXLSX)
}

func (h *ReportHandler) exportCSV(w http.ResponseWriter, r *http.Request, id string, result *domain.ReportResult) {
	which, ok := h.query.ValidateEnum(w, r, "table", []string{"count", "amount"}, "count")
	if !ok {
		return
	}
	table := result.CountTable
	asInt := true
	if which == "amount" {
		table = result.AmountTable
		asInt = false
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ordenes_%s.csv"`, id))

	if err := exporter.SummaryCSV(w, table, exporter.CSVOptions{BOMPrefix: true, AsInt: asInt}); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("error", err.Error()),
			slog.String("dataset_id", id))
		return
	}
	h.service.RecordExport(r.Context(), id, FormatCSV)
}

// Delete handles DELETE /api/datasets/{id}
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, id, err)
		return
	}

	render.NoContent(w, r)
}

// handleServiceError maps service sentinels onto API errors
func (h *ReportHandler) handleServiceError(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, services.ErrDatasetNotFound):
		h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(id))
	case errors.Is(err, services.ErrNoData):
		h.errorHandler.HandleError(w, r, apierrors.NoDataError(map[string]interface{}{
			"dataset_id": id,
			"hint":       "No rows match the current selection; widen the filters",
		}))
	case errors.Is(err, services.ErrVendorNotFound):
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusNotFound,
			"VENDOR_NOT_FOUND",
			"The requested vendor does not appear in the filtered data",
		))
	default:
		h.logger.ErrorContext(r.Context(), "service error",
			slog.String("error", err.Error()),
			slog.String("dataset_id", id))
		h.errorHandler.HandleError(w, r, err)
	}
}

// parseSelectionQuery builds a Selection from export query parameters:
// comma-separated lists for types, vendors, statuses and months. The year
// is validated separately since it is a single bounded integer.
func parseSelectionQuery(r *http.Request) (domain.Selection, error) {
	q := r.URL.Query()
	sel := domain.Selection{
		Types:          splitParam(q.Get("types")),
		Vendors:        splitParam(q.Get("vendors")),
		Statuses:       splitParam(q.Get("statuses")),
		DetailVendor:   q.Get("vendor"),
		DetailStatuses: splitParam(q.Get("vendor_statuses")),
	}

	for _, m := range splitParam(q.Get("months")) {
		month, err := strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			return sel, fmt.Errorf("months must be numbers between 1 and 12")
		}
		sel.Months = append(sel.Months, month)
	}

	return sel, nil
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
