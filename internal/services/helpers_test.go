package services

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"sellerpulse/internal/config"
	"sellerpulse/internal/dataprocessing"
	"sellerpulse/internal/files"
	"sellerpulse/internal/infrastructure"
	"sellerpulse/internal/shared/testutil"
	"sellerpulse/pkg/contracts/domain"
)

var orderHeader = []string{
	"Sub Order No", "Product Name", "Live Order Status", "Payment Date",
	"Final Settlement Amount", "Sale Return Amount (Incl. GST)",
	"Return Shipping Charge (Excl. GST)", "Claims",
}

func orderWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	return testutil.Workbook{Header: orderHeader, Rows: rows}.Bytes(t)
}

func reportConfig() config.ReportConfig {
	cfg := config.Default().Report
	cfg.Constants = domain.Constants{
		CostOfGoodsSold:         domain.Float(1000),
		GSTPayable:              domain.Float(50),
		TDS:                     domain.Float(5),
		OtherCharges:            domain.Float(-20),
		AveragePaymentCycleDays: domain.Float(7),
	}
	return cfg
}

func newReportService(t *testing.T, store files.Store, cfg config.ReportConfig, metrics *infrastructure.ReportMetrics) *ReportService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewReportService(store, dataprocessing.NewPipeline(logger, nil), cfg, metrics, logger)
}

// metricsRecorder collects report metrics in memory.
type metricsRecorder struct {
	reader  *sdkmetric.ManualReader
	Metrics *infrastructure.ReportMetrics
}

func newMetricsRecorder(t *testing.T) *metricsRecorder {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := infrastructure.CreateReportMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return &metricsRecorder{reader: reader, Metrics: m}
}

// Sum returns the total of an int64 counter, or 0 when it never recorded.
func (r *metricsRecorder) Sum(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, r.reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

// MockStore is a testify mock of files.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, name string, r io.Reader) (files.FileInfo, error) {
	args := m.Called(ctx, name, r)
	return args.Get(0).(files.FileInfo), args.Error(1)
}

func (m *MockStore) List(ctx context.Context) ([]files.FileInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]files.FileInfo), args.Error(1)
}

func (m *MockStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// gatedStore blocks Open until release is closed and counts calls.
type gatedStore struct {
	*files.MemoryStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	opens   atomic.Int32
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: files.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	g.opens.Add(1)
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.MemoryStore.Open(ctx, name)
}
