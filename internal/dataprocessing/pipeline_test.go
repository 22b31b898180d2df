package dataprocessing

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellerpulse/internal/errors"
	"sellerpulse/internal/shared/testutil"
	"sellerpulse/pkg/contracts/domain"
)

type panicOpener struct{}

type openerFunc func(ctx context.Context, name string) (io.ReadCloser, error)

func (f openerFunc) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return f(ctx, name)
}

func (panicOpener) Open(context.Context, string) (io.ReadCloser, error) {
	panic("disk on fire")
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewPipeline(logger, nil)
}

func TestPipeline_Run(t *testing.T) {
	opener := mapOpener{
		"april.xlsx": v1Workbook(t,
			[]any{"S1", "Kurta", "Delivered", "2025-04-02", 100, 0, 0, ""},
			[]any{"S2", "Kurta", "Shipped", "2025-04-03", 50, 30, 5, ""},
			[]any{"S3", "Saree", "RTO", "not a date", 40, 40, 0, ""},
		),
		"may.xlsx": v1Workbook(t,
			[]any{"S2", "Kurta", "Return", "2025-04-05", 55, 30, 5, 10},
			[]any{"S4", "Saree", "RTO", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), 20, 15, 0, ""},
		),
	}

	p := newTestPipeline(t)
	report, err := p.Run(context.Background(), opener, Request{
		Files:     []string{"april.xlsx", "may.xlsx"},
		Mode:      domain.ReportModeStandard,
		Constants: standardConstants(),
	})
	require.NoError(t, err)

	md := report.Metadata
	assert.Equal(t, "v1", md.Schema)
	assert.Equal(t, []string{"april.xlsx", "may.xlsx"}, md.SourceFiles)
	assert.Equal(t, 5, md.RowsRead)
	assert.Equal(t, 4, md.RowsAfterDedup)
	assert.Equal(t, 1, md.RowsDroppedInvalidDate)
	assert.Equal(t, domain.ReportModeStandard, md.Mode)

	s := report.Summary
	assert.Equal(t, 3, s.TotalOrders)
	assert.Equal(t, 175.0, s.TotalSettlementAmount, "S2 taken from the later file")
	assert.Equal(t, 2, s.TotalReturnCount)
	assert.Equal(t, 1, s.CustomerReturnCount)
	assert.Equal(t, 1, s.RTOCount)
	assert.Equal(t, 15.0, s.RTOAmount)
	assert.Equal(t, 1, s.ClaimsSuccessCount)
	assert.Equal(t, 10.0, s.ClaimsAmount)

	require.Len(t, report.PaymentsByDate, 3)
	assert.Equal(t, "2025-04-02", report.PaymentsByDate[0].PaymentDate)
	assert.Equal(t, "2025-05-01", report.PaymentsByDate[2].PaymentDate, "date cell read from an Excel serial")

	require.Len(t, report.Productwise, 2)
	assert.Equal(t, "Kurta", report.Productwise[0].ProductName)
}

func TestPipeline_Window(t *testing.T) {
	opener := mapOpener{"f.xlsx": v1Workbook(t,
		[]any{"S1", "A", "Delivered", "2025-04-01", 10},
		[]any{"S2", "A", "Delivered", "2025-04-15", 20},
		[]any{"S3", "A", "Delivered", "2025-05-01", 30},
	)}
	window, err := ParseDateWindow("2025-04-02", "2025-04-30")
	require.NoError(t, err)

	report, err := newTestPipeline(t).Run(context.Background(), opener, Request{
		Files:     []string{"f.xlsx"},
		Mode:      domain.ReportModeStandard,
		Window:    window,
		Constants: standardConstants(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.TotalOrders)
	assert.Equal(t, 20.0, report.Summary.TotalSettlementAmount)
	assert.Equal(t, 2, report.Metadata.RowsOutsideWindow)
	assert.Equal(t, "2025-04-02", report.Metadata.DateFrom)
	assert.Equal(t, "2025-04-30", report.Metadata.DateTo)
}

func TestPipeline_AdsAdjustedMixedSchemas(t *testing.T) {
	opener := mapOpener{
		"old.xlsx": v1Workbook(t, []any{"S1", "A", "Delivered", "2025-04-01", 100}),
		"new.xlsx": v2Workbook(t, []any{"S2", "A", "Delivered", "2025-04-02", 200, "", "", "", 25}),
	}

	report, err := newTestPipeline(t).Run(context.Background(), opener, Request{
		Files:     []string{"old.xlsx", "new.xlsx"},
		Schema:    SchemaAuto,
		Mode:      domain.ReportModeAdsAdjusted,
		Constants: domain.Constants{OtherCharges: domain.Float(0)},
	})
	require.NoError(t, err)

	assert.Equal(t, "v1,v2", report.Metadata.Schema)
	assert.Equal(t, 25.0, report.Summary.TotalAdsCost)
	assert.Equal(t, 25.0, report.GrossProfit.AdsCost)
	assert.Equal(t, 325.0, report.GrossProfit.SalesLessExpenses)
	assert.Zero(t, report.GrossProfit.CostOfGoodsSold)
	assert.Zero(t, report.FundsFlow.GSTPayable)
}

func TestPipeline_Errors(t *testing.T) {
	good := v1Workbook(t, []any{"S1", "A", "Delivered", "2025-04-01", 100})
	wrongSheet := testutil.Workbook{Sheet: "Orders", Header: v1Header}.Bytes(t)
	missingColumn := testutil.Workbook{Header: v1Header[:4]}.Bytes(t)

	tests := []struct {
		name    string
		opener  WorkbookOpener
		req     Request
		errType errors.ErrorType
	}{
		{
			name:    "no files",
			opener:  mapOpener{},
			req:     Request{Mode: domain.ReportModeStandard, Constants: standardConstants()},
			errType: errors.ErrTypeNoInput,
		},
		{
			name:    "missing sheet",
			opener:  mapOpener{"f.xlsx": wrongSheet},
			req:     Request{Files: []string{"f.xlsx"}, Mode: domain.ReportModeStandard, Constants: standardConstants()},
			errType: errors.ErrTypeInputSchema,
		},
		{
			name:    "missing column",
			opener:  mapOpener{"f.xlsx": missingColumn},
			req:     Request{Files: []string{"f.xlsx"}, Schema: "v1", Mode: domain.ReportModeStandard, Constants: standardConstants()},
			errType: errors.ErrTypeInputSchema,
		},
		{
			name:    "not a workbook",
			opener:  mapOpener{"f.xlsx": []byte("plain text")},
			req:     Request{Files: []string{"f.xlsx"}, Mode: domain.ReportModeStandard, Constants: standardConstants()},
			errType: errors.ErrTypeParsing,
		},
		{
			name:    "unknown schema",
			opener:  mapOpener{"f.xlsx": good},
			req:     Request{Files: []string{"f.xlsx"}, Schema: "v9", Mode: domain.ReportModeStandard, Constants: standardConstants()},
			errType: errors.ErrTypeValidation,
		},
		{
			name:    "missing constants",
			opener:  mapOpener{"f.xlsx": good},
			req:     Request{Files: []string{"f.xlsx"}, Mode: domain.ReportModeStandard},
			errType: errors.ErrTypeComputation,
		},
		{
			name:    "file vanished",
			opener:  mapOpener{},
			req:     Request{Files: []string{"f.xlsx"}, Mode: domain.ReportModeStandard, Constants: standardConstants()},
			errType: errors.ErrTypeStorage,
		},
		{
			name: "typed opener error kept",
			opener: openerFunc(func(context.Context, string) (io.ReadCloser, error) {
				return nil, errors.NewNotFoundError("file f.xlsx")
			}),
			req:     Request{Files: []string{"f.xlsx"}, Mode: domain.ReportModeStandard, Constants: standardConstants()},
			errType: errors.ErrTypeNotFound,
		},
		{
			name:    "panic in a stage",
			opener:  panicOpener{},
			req:     Request{Files: []string{"f.xlsx"}, Mode: domain.ReportModeStandard, Constants: standardConstants()},
			errType: errors.ErrTypeComputation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := newTestPipeline(t).Run(context.Background(), tt.opener, tt.req)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.Equal(t, tt.errType, errors.TypeOf(err), err.Error())
		})
	}
}

func TestPipeline_SchemaErrorNamesFile(t *testing.T) {
	opener := mapOpener{"bad.xlsx": testutil.Workbook{Header: v1Header[:4]}.Bytes(t)}

	_, err := newTestPipeline(t).Run(context.Background(), opener, Request{
		Files:     []string{"bad.xlsx"},
		Schema:    "v1",
		Mode:      domain.ReportModeStandard,
		Constants: standardConstants(),
	})

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "bad.xlsx", appErr.Context["file"])
	assert.Contains(t, appErr.Context["missing_columns"], "Final Settlement Amount")
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opener := mapOpener{"f.xlsx": v1Workbook(t, []any{"S1", "A", "Delivered", "2025-04-01", 100})}
	_, err := newTestPipeline(t).Run(ctx, opener, Request{
		Files:     []string{"f.xlsx"},
		Mode:      domain.ReportModeStandard,
		Constants: standardConstants(),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, errors.ErrTypeComputation, errors.TypeOf(err))
}

func TestPipeline_PanicIsLogged(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	p := NewPipeline(logger, nil)

	_, err := p.Run(context.Background(), panicOpener{}, Request{
		Files:     []string{"f.xlsx"},
		Mode:      domain.ReportModeStandard,
		Constants: standardConstants(),
	})
	require.Error(t, err)
	assert.True(t, handler.ContainsMessage("pipeline panic recovered"))
	assert.True(t, handler.ContainsAttr("component", "pipeline"))
}
