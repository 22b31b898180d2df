package http

import (
	"context"
	"io"

	"sellerpulse/internal/files"
	"sellerpulse/internal/services"
	"sellerpulse/pkg/contracts/domain"
)

// ReportServiceInterface defines the order payments operations the handlers use
type ReportServiceInterface interface {
	Upload(ctx context.Context, name string, r io.Reader) (files.FileInfo, error)
	ListFiles(ctx context.Context) ([]files.FileInfo, error)
	Summary(ctx context.Context, q services.SummaryQuery) (*domain.SummaryReport, error)
}
