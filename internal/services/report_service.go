package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"sellerpulse/internal/config"
	"sellerpulse/internal/dataprocessing"
	"sellerpulse/internal/errors"
	"sellerpulse/internal/files"
	"sellerpulse/internal/infrastructure"
	"sellerpulse/internal/validation"
	"sellerpulse/pkg/contracts/domain"
)

// SummaryQuery carries per-request overrides of the report configuration.
// Empty fields fall back to the configured values.
type SummaryQuery struct {
	Mode      string
	From      string
	To        string
	Selection string
	Schema    string
	Constants domain.Constants
}

// ReportService builds order payment summaries from stored workbooks.
type ReportService struct {
	store     files.Store
	pipeline  *dataprocessing.Pipeline
	cfg       config.ReportConfig
	validator *validation.FileValidator
	metrics   *infrastructure.ReportMetrics
	logger    *slog.Logger

	inflight singleflight.Group
}

// NewReportService creates a report service. A nil metrics records nothing.
func NewReportService(store files.Store, pipeline *dataprocessing.Pipeline, cfg config.ReportConfig, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("ReportService initialized",
		slog.String("mode", cfg.Mode),
		slog.String("schema", cfg.Schema),
		slog.String("selection", cfg.Selection))

	return &ReportService{
		store:     store,
		pipeline:  pipeline,
		cfg:       cfg,
		validator: validation.NewFileValidator(logger),
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "report_service")),
	}
}

// Upload validates and stores an uploaded workbook.
func (s *ReportService) Upload(ctx context.Context, name string, r io.Reader) (files.FileInfo, error) {
	if err := s.validator.ValidateUploadName(name); err != nil {
		return files.FileInfo{}, err
	}
	body, err := s.validator.SniffWorkbook(name, r)
	if err != nil {
		return files.FileInfo{}, err
	}

	info, err := s.store.Save(ctx, name, body)
	if err != nil {
		s.logger.ErrorContext(ctx, "Upload failed",
			slog.String("filename", name),
			slog.String("error", err.Error()))
		return files.FileInfo{}, err
	}

	s.metrics.RecordUpload(ctx)
	s.logger.InfoContext(ctx, "Upload stored",
		slog.String("filename", info.Name),
		slog.Int64("size_bytes", info.Size))
	return info, nil
}

// ListFiles returns the stored workbooks.
func (s *ReportService) ListFiles(ctx context.Context) ([]files.FileInfo, error) {
	return s.store.List(ctx)
}

// Summary builds the report for q. Concurrent calls that resolve to the same
// files and parameters share one computation; nothing is kept afterwards.
func (s *ReportService) Summary(ctx context.Context, q SummaryQuery) (*domain.SummaryReport, error) {
	req, selected, err := s.buildRequest(ctx, q)
	if err != nil {
		return nil, err
	}

	key, err := requestKey(req, selected)
	if err != nil {
		return nil, errors.NewComputationError("failed to key summary request", err)
	}

	// The shared run outlives any one caller; each caller still stops
	// waiting when its own context ends.
	runCtx := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		return s.generate(runCtx, req)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.DebugContext(ctx, "Summary shared with concurrent request")
		}
		return res.Val.(*domain.SummaryReport), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *ReportService) generate(ctx context.Context, req dataprocessing.Request) (*domain.SummaryReport, error) {
	start := time.Now()
	report, err := s.pipeline.Run(ctx, s.store, req)
	duration := time.Since(start)

	rows := 0
	if report != nil {
		rows = report.Summary.TotalOrders
	}
	s.metrics.RecordReport(ctx, string(req.Mode), rows, duration, errorType(err))

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Summary generation failed",
			slog.String("mode", string(req.Mode)),
			slog.Int("files", len(req.Files)),
			slog.String("error_type", errorType(err)),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, "Summary generated",
		slog.String("mode", string(req.Mode)),
		slog.String("schema", report.Metadata.Schema),
		slog.Int("files", len(req.Files)),
		slog.Int("orders", rows),
		slog.Duration("duration", duration))
	return report, nil
}

// buildRequest resolves q against the configuration and the stored files.
func (s *ReportService) buildRequest(ctx context.Context, q SummaryQuery) (dataprocessing.Request, []files.FileInfo, error) {
	var req dataprocessing.Request

	mode := firstNonEmpty(q.Mode, s.cfg.Mode, string(domain.ReportModeStandard))
	req.Mode = domain.ReportMode(mode)
	if !req.Mode.Valid() {
		return req, nil, invalidQuery("mode", mode, "expected standard or ads_adjusted")
	}

	from := firstNonEmpty(q.From, s.cfg.DateFrom)
	to := firstNonEmpty(q.To, s.cfg.DateTo)
	window, err := dataprocessing.ParseDateWindow(from, to)
	if err != nil {
		return req, nil, invalidQuery("date window", from+".."+to, "expected YYYY-MM-DD")
	}
	if !window.From.IsZero() && !window.To.IsZero() && window.From.After(window.To) {
		return req, nil, invalidQuery("date window", from+".."+to, "from is after to")
	}
	req.Window = window

	policy, err := files.ParseSelectionPolicy(firstNonEmpty(q.Selection, s.cfg.Selection))
	if err != nil {
		return req, nil, err
	}

	req.Schema = firstNonEmpty(q.Schema, s.cfg.Schema, dataprocessing.SchemaAuto)
	req.Constants = s.cfg.Constants.Merge(q.Constants)

	stored, err := s.store.List(ctx)
	if err != nil {
		if errors.IsType(err, errors.ErrTypeNotFound) {
			return req, nil, errors.NewNoInputError()
		}
		return req, nil, err
	}
	selected := policy.Select(stored)
	req.Files = files.Names(selected)

	s.logger.DebugContext(ctx, "Summary request resolved",
		slog.String("mode", mode),
		slog.String("selection", string(policy)),
		slog.Any("files", req.Files))
	return req, selected, nil
}

// requestKey identifies a computation by its inputs, including file sizes
// and modification times so a re-upload starts a new one.
func requestKey(req dataprocessing.Request, selected []files.FileInfo) (string, error) {
	b, err := json.Marshal(struct {
		Files     []files.FileInfo
		Schema    string
		Mode      domain.ReportMode
		From, To  time.Time
		Constants domain.Constants
	}{selected, req.Schema, req.Mode, req.Window.From, req.Window.To, req.Constants})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// BuildSchemaRegistry returns the built-in schemas plus those configured.
func BuildSchemaRegistry(schemas []config.SchemaConfig) (*dataprocessing.SchemaRegistry, error) {
	registry := dataprocessing.NewSchemaRegistry()

	for _, sc := range schemas {
		columns := make(map[dataprocessing.Field]string, len(sc.Columns))
		for name, header := range sc.Columns {
			f, err := dataprocessing.ParseField(name)
			if err != nil {
				return nil, errors.NewConfigError(fmt.Sprintf("schema %s", sc.Version), err)
			}
			columns[f] = header
		}

		optional := make([]dataprocessing.Field, 0, len(sc.Optional))
		for _, name := range sc.Optional {
			f, err := dataprocessing.ParseField(name)
			if err != nil {
				return nil, errors.NewConfigError(fmt.Sprintf("schema %s", sc.Version), err)
			}
			optional = append(optional, f)
		}

		schema, err := dataprocessing.NewColumnSchema(sc.Version, columns, optional...)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(schema); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
