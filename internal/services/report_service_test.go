package services

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sellerpulse/internal/config"
	"sellerpulse/internal/dataprocessing"
	"sellerpulse/internal/errors"
	"sellerpulse/internal/files"
	"sellerpulse/pkg/contracts/domain"
)

func seededStore(t *testing.T) *files.MemoryStore {
	t.Helper()
	store := files.NewMemoryStore()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	store.Put("a_april.xlsx", orderWorkbook(t,
		[]any{"S1", "Kurta", "Delivered", "2025-04-02", 100},
		[]any{"S2", "Kurta", "RTO", "2025-04-20", 50, 50, 0, ""},
	), base.Add(time.Hour))
	store.Put("b_may.xlsx", orderWorkbook(t,
		[]any{"S3", "Saree", "Delivered", "2025-05-03", 300, "", "", 25},
	), base)
	return store
}

func TestReportService_Summary(t *testing.T) {
	rec := newMetricsRecorder(t)
	svc := newReportService(t, seededStore(t), reportConfig(), rec.Metrics)

	report, err := svc.Summary(context.Background(), SummaryQuery{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.TotalOrders)
	assert.Equal(t, 450.0, report.Summary.TotalSettlementAmount)
	assert.Equal(t, []string{"a_april.xlsx", "b_may.xlsx"}, report.Metadata.SourceFiles)
	assert.Equal(t, domain.ReportModeStandard, report.Metadata.Mode)
	assert.Equal(t, -1000.0, report.GrossProfit.CostOfGoodsSold)
	assert.Equal(t, 1, report.Summary.ClaimsSuccessCount)

	assert.Equal(t, int64(1), rec.Sum(t, "reports_generated_total"))
	assert.Equal(t, int64(3), rec.Sum(t, "order_rows_processed_total"))
	assert.Zero(t, rec.Sum(t, "report_failures_total"))
}

func TestReportService_SummaryOverrides(t *testing.T) {
	tests := []struct {
		name   string
		query  SummaryQuery
		check  func(t *testing.T, r *domain.SummaryReport)
	}{
		{
			name:  "ads adjusted mode",
			query: SummaryQuery{Mode: "ads_adjusted"},
			check: func(t *testing.T, r *domain.SummaryReport) {
				assert.Equal(t, domain.ReportModeAdsAdjusted, r.Metadata.Mode)
				assert.Zero(t, r.GrossProfit.CostOfGoodsSold)
			},
		},
		{
			name:  "constant override",
			query: SummaryQuery{Constants: domain.Constants{CostOfGoodsSold: domain.Float(10)}},
			check: func(t *testing.T, r *domain.SummaryReport) {
				assert.Equal(t, -10.0, r.GrossProfit.CostOfGoodsSold)
				assert.Equal(t, -20.0, r.GrossProfit.OtherCharges, "unset overrides keep config")
			},
		},
		{
			name:  "first file only",
			query: SummaryQuery{Selection: "first"},
			check: func(t *testing.T, r *domain.SummaryReport) {
				assert.Equal(t, []string{"a_april.xlsx"}, r.Metadata.SourceFiles)
				assert.Equal(t, 2, r.Summary.TotalOrders)
			},
		},
		{
			name:  "latest file only",
			query: SummaryQuery{Selection: "latest"},
			check: func(t *testing.T, r *domain.SummaryReport) {
				assert.Equal(t, []string{"a_april.xlsx"}, r.Metadata.SourceFiles)
			},
		},
		{
			name:  "date window",
			query: SummaryQuery{From: "2025-04-10", To: "2025-05-31"},
			check: func(t *testing.T, r *domain.SummaryReport) {
				assert.Equal(t, 2, r.Summary.TotalOrders)
				assert.Equal(t, 1, r.Metadata.RowsOutsideWindow)
				assert.Equal(t, "2025-04-10", r.Metadata.DateFrom)
			},
		},
		{
			name:  "explicit schema",
			query: SummaryQuery{Schema: "v1"},
			check: func(t *testing.T, r *domain.SummaryReport) {
				assert.Equal(t, "v1", r.Metadata.Schema)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newReportService(t, seededStore(t), reportConfig(), nil)
			report, err := svc.Summary(context.Background(), tt.query)
			require.NoError(t, err)
			tt.check(t, report)
		})
	}
}

func TestReportService_SummaryErrors(t *testing.T) {
	noConstants := reportConfig()
	noConstants.Constants = domain.Constants{}

	tests := []struct {
		name    string
		store   files.Store
		cfg     config.ReportConfig
		query   SummaryQuery
		errType errors.ErrorType
	}{
		{"no files", files.NewMemoryStore(), reportConfig(), SummaryQuery{}, errors.ErrTypeNoInput},
		{"bad mode", seededStore(t), reportConfig(), SummaryQuery{Mode: "gross"}, errors.ErrTypeValidation},
		{"bad date", seededStore(t), reportConfig(), SummaryQuery{From: "01/04/2025"}, errors.ErrTypeValidation},
		{"inverted window", seededStore(t), reportConfig(), SummaryQuery{From: "2025-05-01", To: "2025-04-01"}, errors.ErrTypeValidation},
		{"bad selection", seededStore(t), reportConfig(), SummaryQuery{Selection: "random"}, errors.ErrTypeValidation},
		{"unknown schema", seededStore(t), reportConfig(), SummaryQuery{Schema: "v7"}, errors.ErrTypeValidation},
		{"missing constants", seededStore(t), noConstants, SummaryQuery{}, errors.ErrTypeComputation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newReportService(t, tt.store, tt.cfg, nil)
			report, err := svc.Summary(context.Background(), tt.query)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.Equal(t, tt.errType, errors.TypeOf(err), err.Error())
		})
	}
}

func TestReportService_SummaryFailureMetrics(t *testing.T) {
	rec := newMetricsRecorder(t)
	cfg := reportConfig()
	cfg.Constants = domain.Constants{}
	svc := newReportService(t, seededStore(t), cfg, rec.Metrics)

	_, err := svc.Summary(context.Background(), SummaryQuery{})
	require.Error(t, err)

	assert.Equal(t, int64(1), rec.Sum(t, "report_failures_total"))
	assert.Zero(t, rec.Sum(t, "reports_generated_total"))
}

func TestReportService_StorageErrorPropagates(t *testing.T) {
	store := new(MockStore)
	store.On("List", mock.Anything).Return(nil, errors.NewStorageError("disk unavailable", nil))

	svc := newReportService(t, store, reportConfig(), nil)
	_, err := svc.Summary(context.Background(), SummaryQuery{})

	assert.Equal(t, errors.ErrTypeStorage, errors.TypeOf(err))
	store.AssertExpectations(t)
}

func TestReportService_ConcurrentSummariesShareOneRun(t *testing.T) {
	store := newGatedStore()
	store.Put("orders.xlsx", orderWorkbook(t, []any{"S1", "A", "Delivered", "2025-04-02", 100}), time.Now())

	svc := newReportService(t, store, reportConfig(), nil)

	var wg sync.WaitGroup
	results := make([]*domain.SummaryReport, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = svc.Summary(context.Background(), SummaryQuery{})
	}()
	<-store.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = svc.Summary(context.Background(), SummaryQuery{})
	}()
	time.Sleep(100 * time.Millisecond)
	close(store.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Same(t, results[0], results[1])
	assert.Equal(t, int32(1), store.opens.Load())

	// Nothing is cached once the run returns.
	_, err := svc.Summary(context.Background(), SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.opens.Load())
}

func TestReportService_SummaryCallerCancelled(t *testing.T) {
	store := newGatedStore()
	store.Put("orders.xlsx", orderWorkbook(t, []any{"S1", "A", "Delivered", "2025-04-02", 100}), time.Now())
	svc := newReportService(t, store, reportConfig(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.Summary(ctx, SummaryQuery{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The shared run keeps going without its caller; a later call joins or
	// follows it, so returning here means it has finished.
	close(store.release)
	report, err := svc.Summary(context.Background(), SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.TotalOrders)
}

func TestReportService_LeaderCancelDoesNotFailFollower(t *testing.T) {
	store := newGatedStore()
	store.Put("orders.xlsx", orderWorkbook(t, []any{"S1", "A", "Delivered", "2025-04-02", 100}), time.Now())
	svc := newReportService(t, store, reportConfig(), nil)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	defer cancelLeader()

	var wg sync.WaitGroup
	var leaderErr, followerErr error
	var followerReport *domain.SummaryReport

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, leaderErr = svc.Summary(leaderCtx, SummaryQuery{})
	}()
	<-store.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		followerReport, followerErr = svc.Summary(context.Background(), SummaryQuery{})
	}()
	time.Sleep(100 * time.Millisecond)

	cancelLeader()
	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()

	assert.ErrorIs(t, leaderErr, context.Canceled)
	require.NoError(t, followerErr)
	require.NotNil(t, followerReport)
	assert.Equal(t, 1, followerReport.Summary.TotalOrders)
	assert.Equal(t, int32(1), store.opens.Load())
}

func TestReportService_Upload(t *testing.T) {
	rec := newMetricsRecorder(t)
	store := files.NewMemoryStore()
	svc := newReportService(t, store, reportConfig(), rec.Metrics)
	wb := orderWorkbook(t, []any{"S1", "A", "Delivered", "2025-04-02", 100})

	info, err := svc.Upload(context.Background(), "orders.xlsx", bytes.NewReader(wb))
	require.NoError(t, err)
	assert.Equal(t, "orders.xlsx", info.Name)
	assert.Equal(t, int64(len(wb)), info.Size)
	assert.Equal(t, int64(1), rec.Sum(t, "uploads_total"))

	listed, err := svc.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"orders.xlsx"}, files.Names(listed))

	report, err := svc.Summary(context.Background(), SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.TotalOrders)
}

func TestReportService_UploadRejects(t *testing.T) {
	store := new(MockStore)
	svc := newReportService(t, store, reportConfig(), nil)

	_, err := svc.Upload(context.Background(), "orders.csv", strings.NewReader("a,b"))
	assert.Equal(t, errors.ErrTypeInputFormat, errors.TypeOf(err))

	_, err = svc.Upload(context.Background(), "orders.xlsx", strings.NewReader("a,b"))
	assert.Equal(t, errors.ErrTypeInputFormat, errors.TypeOf(err))

	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportService_ListFilesEmpty(t *testing.T) {
	svc := newReportService(t, files.NewMemoryStore(), reportConfig(), nil)
	_, err := svc.ListFiles(context.Background())
	assert.Equal(t, errors.ErrTypeNotFound, errors.TypeOf(err))
}

func TestBuildSchemaRegistry(t *testing.T) {
	registry, err := BuildSchemaRegistry([]config.SchemaConfig{{
		Version: "v3",
		Columns: map[string]string{
			"sub_order_id":    "Sub Order ID",
			"product_name":    "Product",
			"status":          "Order Status",
			"payment_date":    "Settlement Date",
			"settlement":      "Net Settlement",
			"return_amount":   "Return Value",
			"shipping_charge": "Return Shipping",
			"claims":          "Claim Amount",
			"ads_cost":        "Ads Spend",
		},
		Optional: []string{"ads_cost", "claims"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2", "v3"}, registry.Versions())

	set, err := registry.Resolve(dataprocessing.SchemaAuto, []string{
		"Sub Order ID", "Product", "Order Status", "Settlement Date", "Net Settlement",
		"Return Value", "Return Shipping",
	})
	require.NoError(t, err)
	assert.Equal(t, "v3", set.Schema)
	assert.False(t, set.Has(dataprocessing.FieldClaims))

	_, err = BuildSchemaRegistry([]config.SchemaConfig{{Version: "v4", Columns: map[string]string{"colour": "Colour"}}})
	assert.Equal(t, errors.ErrTypeConfig, errors.TypeOf(err))

	_, err = BuildSchemaRegistry([]config.SchemaConfig{{Version: "v1", Columns: dataprocessingV1Columns()}})
	assert.Equal(t, errors.ErrTypeConfig, errors.TypeOf(err), "built-in versions cannot be replaced")
}

func dataprocessingV1Columns() map[string]string {
	out := make(map[string]string)
	for f, h := range dataprocessing.SchemaV1().Columns {
		out[string(f)] = h
	}
	return out
}
