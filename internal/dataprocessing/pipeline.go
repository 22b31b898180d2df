package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sellerpulse/internal/errors"
	"sellerpulse/pkg/contracts/domain"
)

const tracerName = "sellerpulse/dataprocessing"

// WorkbookOpener opens a stored workbook by name.
type WorkbookOpener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Request describes one summary computation.
type Request struct {
	Files     []string
	Schema    string
	Mode      domain.ReportMode
	Window    DateWindow
	Constants domain.Constants
}

// Pipeline turns order payments workbooks into a summary report.
type Pipeline struct {
	logger   *slog.Logger
	registry *SchemaRegistry
	tracer   trace.Tracer
	now      func() time.Time
}

// NewPipeline creates a pipeline. A nil registry means v1 and v2 only.
func NewPipeline(logger *slog.Logger, registry *SchemaRegistry) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = NewSchemaRegistry()
	}
	return &Pipeline{
		logger:   logger.With(slog.String("component", "pipeline")),
		registry: registry,
		tracer:   otel.Tracer(tracerName),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Registry returns the schema registry the pipeline resolves headers with.
func (p *Pipeline) Registry() *SchemaRegistry {
	return p.registry
}

// Run reads every requested file and builds the report. It returns either a
// complete report or an error, never both; a panic in any stage becomes a
// computation error.
func (p *Pipeline) Run(ctx context.Context, opener WorkbookOpener, req Request) (report *domain.SummaryReport, err error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("mode", string(req.Mode)),
		attribute.Int("files", len(req.Files)),
	))
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			p.logger.ErrorContext(ctx, "pipeline panic recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			report = nil
			err = errors.NewComputationError("report computation failed", fmt.Errorf("panic: %v", rec))
		}
		if err != nil {
			span.RecordError(err)
		}
	}()

	if len(req.Files) == 0 {
		return nil, errors.NewNoInputError()
	}
	if req.Schema == "" {
		req.Schema = SchemaAuto
	}
	if !p.registry.Known(req.Schema) {
		return nil, errors.NewAppValidationError(fmt.Sprintf("unknown column schema %q", req.Schema))
	}
	if err := CheckConstants(req.Mode, req.Constants); err != nil {
		return nil, err
	}

	tables, schemas, err := p.load(ctx, opener, req)
	if err != nil {
		return nil, err
	}

	_, normSpan := p.tracer.Start(ctx, "pipeline.normalize")
	records, stats := Normalize(tables, req.Window)
	normSpan.SetAttributes(
		attribute.Int("rows_read", stats.RowsRead),
		attribute.Int("rows_kept", len(records)),
	)
	normSpan.End()

	p.logger.DebugContext(ctx, "order rows normalized",
		slog.Int("rows_read", stats.RowsRead),
		slog.Int("rows_after_dedup", stats.RowsAfterDedup),
		slog.Int("rows_dropped_invalid_date", stats.RowsDroppedInvalidDate),
		slog.Int("rows_outside_window", stats.RowsOutsideWindow))

	_, aggSpan := p.tracer.Start(ctx, "pipeline.aggregate")
	agg := Aggregate(records)
	fin, err := Calculate(req.Mode, agg.Overall, req.Constants)
	aggSpan.End()
	if err != nil {
		return nil, err
	}

	meta := domain.ReportMetadata{
		Mode:                   req.Mode,
		Schema:                 schemas,
		SourceFiles:            append([]string(nil), req.Files...),
		GeneratedAt:            p.now(),
		RowsRead:               stats.RowsRead,
		RowsAfterDedup:         stats.RowsAfterDedup,
		RowsDroppedInvalidDate: stats.RowsDroppedInvalidDate,
		RowsOutsideWindow:      stats.RowsOutsideWindow,
	}
	if !req.Window.From.IsZero() {
		meta.DateFrom = req.Window.From.Format(DateLayout)
	}
	if !req.Window.To.IsZero() {
		meta.DateTo = req.Window.To.Format(DateLayout)
	}

	return Assemble(agg, fin, meta), nil
}

// load parses and resolves every file in order. The returned schema label
// is the single version used, or a comma list when files differ.
func (p *Pipeline) load(ctx context.Context, opener WorkbookOpener, req Request) ([]ResolvedTable, string, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.parse")
	defer span.End()

	tables := make([]ResolvedTable, 0, len(req.Files))
	var versions []string
	seen := make(map[string]bool)

	for _, name := range req.Files {
		if err := ctx.Err(); err != nil {
			return nil, "", errors.NewComputationError("report computation cancelled", err)
		}

		table, err := p.readFile(ctx, opener, name)
		if err != nil {
			return nil, "", err
		}

		cols, err := p.registry.Resolve(req.Schema, table.Header)
		if err != nil {
			var appErr *errors.AppError
			if errors.As(err, &appErr) {
				appErr.WithContext("file", name)
			}
			return nil, "", err
		}

		if !seen[cols.Schema] {
			seen[cols.Schema] = true
			versions = append(versions, cols.Schema)
		}
		tables = append(tables, ResolvedTable{Table: table, Columns: cols})

		p.logger.DebugContext(ctx, "workbook parsed",
			slog.String("file", name),
			slog.String("schema", cols.Schema),
			slog.Int("rows", len(table.Rows)))
	}

	return tables, strings.Join(versions, ","), nil
}

func (p *Pipeline) readFile(ctx context.Context, opener WorkbookOpener, name string) (*RawTable, error) {
	rc, err := opener.Open(ctx, name)
	if err != nil {
		if errors.TypeOf(err) != "" {
			return nil, err
		}
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open %s", name), err).
			WithContext("file", name)
	}
	defer rc.Close()

	return ReadWorkbook(rc, name)
}
