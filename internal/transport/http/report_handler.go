package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "sellerpulse/internal/errors"
	"sellerpulse/internal/services"
	"sellerpulse/pkg/contracts/domain"
)

// multipartMemory is how much of a multipart upload is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// ReportHandler handles order payment uploads and summaries with RFC 7807 errors
type ReportHandler struct {
	service        ReportServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "report_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes mounts the order payments routes. They live at the API root to keep
// the upload path stable for existing clients.
func (h *ReportHandler) Routes(r chi.Router) {
	r.Post("/upload-order-file", h.UploadOrderFile)
	r.Route("/order-payments", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/summary", h.GetSummary)
		r.Get("/files", h.ListFiles)
	})
}

// UploadOrderFile handles POST /api/upload-order-file
func (h *ReportHandler) UploadOrderFile(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				apierrors.ErrPayloadTooLarge.Message,
				map[string]int64{"max_bytes": tooLarge.Limit},
			))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	info, err := h.service.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "order file uploaded",
		slog.String("request_id", reqID),
		slog.String("filename", info.Name),
		slog.Int64("size_bytes", info.Size))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"filename": info.Name,
		"message":  "File uploaded successfully.",
	})
}

// GetSummary handles GET /api/order-payments/summary
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	q, err := parseSummaryQuery(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "building order payments summary",
		slog.String("request_id", reqID),
		slog.String("mode", q.Mode),
		slog.String("selection", q.Selection))

	report, err := h.service.Summary(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, report)
}

// ListFiles handles GET /api/order-payments/files
func (h *ReportHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	stored, err := h.service.ListFiles(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"files": stored,
		"count": len(stored),
	})
}

// parseSummaryQuery reads the optional summary overrides. Numeric constants
// must parse as finite floats.
func parseSummaryQuery(v url.Values) (services.SummaryQuery, error) {
	q := services.SummaryQuery{
		Mode:      v.Get("mode"),
		From:      v.Get("from"),
		To:        v.Get("to"),
		Selection: v.Get("selection"),
		Schema:    v.Get("schema"),
	}

	constants := []struct {
		name string
		dst  **float64
	}{
		{"cost_of_goods_sold", &q.Constants.CostOfGoodsSold},
		{"gst_payable", &q.Constants.GSTPayable},
		{"tds", &q.Constants.TDS},
		{"other_charges", &q.Constants.OtherCharges},
	}
	for _, c := range constants {
		raw := v.Get(c.name)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.Abs(f) > maxConstant {
			return services.SummaryQuery{}, apierrors.InvalidParameter(c.name, raw)
		}
		*c.dst = domain.Float(f)
	}
	return q, nil
}

// maxConstant bounds query constants; anything larger is a typo.
const maxConstant = 1e15
