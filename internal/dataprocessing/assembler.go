package dataprocessing

import (
	"time"

	"github.com/shopspring/decimal"

	"sellerpulse/pkg/contracts/domain"
)

// Round2 rounds v to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// percent returns part/whole*100, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Assemble shapes aggregates and financials into the summary report.
// Rounding happens here and nowhere earlier.
func Assemble(agg Aggregates, fin Financials, meta domain.ReportMetadata) *domain.SummaryReport {
	t := agg.Overall

	report := &domain.SummaryReport{
		GrossProfit: domain.GrossProfitSection{
			SalesExclGST:       Round2(fin.SalesExclGST),
			Commission:         0,
			Shipping:           Round2(fin.ShippingCost),
			OtherCharges:       Round2(fin.OtherCharges),
			AdsCost:            Round2(fin.AdsTerm),
			SalesLessExpenses:  Round2(fin.SalesLessExpenses),
			NonRefundableGST:   0,
			CostOfGoodsSold:    Round2(-fin.CostOfGoodsSold),
			GrossProfit:        Round2(fin.GrossProfit),
			GrossProfitPercent: Round2(fin.GrossProfitPercent),
		},
		FundsFlow: domain.FundsFlowSection{
			SalesLessExpenses:       Round2(fin.SalesLessExpenses),
			NonRefundableGST:        0,
			RefundableGST:           0,
			GSTPayable:              Round2(-fin.GSTPayable),
			TDS:                     Round2(fin.TDS),
			ClaimsFromMarketplace:   Round2(fin.Claims),
			NetAmountReceived:       Round2(fin.NetAmountReceived),
			AveragePaymentCycleDays: Round2(fin.AveragePaymentCycleDays),
		},
		Quantity:       fin.Quantity,
		PaymentsByDate: make([]domain.DatePaymentSummary, 0, len(agg.Dates)),
		Productwise:    make([]domain.ProductBreakdown, 0, len(agg.Products)),
		Summary: domain.OrderSummary{
			TotalOrders:                  t.TotalOrders,
			TotalSettlementAmount:        Round2(t.TotalSettlement),
			ReturnRatePercent:            Round2(percent(t.ReturnCount, t.TotalOrders)),
			TotalReturnCount:             t.ReturnCount,
			TotalReturnAmount:            Round2(t.TotalReturnAmount()),
			ClaimsSuccessCount:           t.ClaimsCount,
			ClaimsAmount:                 Round2(t.ClaimsAmount),
			CustomerReturnCount:          t.CustomerReturnCount,
			CustomerReturnAmount:         Round2(t.CustomerReturnAmount()),
			CustomerReturnShippingCharge: Round2(t.CustomerShippingCharge),
			RTOCount:                     t.RTOCount,
			RTOAmount:                    Round2(t.RTOAmount),
			TotalAdsCost:                 Round2(t.AdsCost),
		},
		Metadata: meta,
	}

	for _, d := range agg.Dates {
		report.PaymentsByDate = append(report.PaymentsByDate, domain.DatePaymentSummary{
			PaymentDate:           d.Date.Format(DateLayout),
			FinalSettlementAmount: Round2(d.Settlement),
			AdsAmount:             Round2(d.AdsCost),
			TotalAmount:           Round2(d.Settlement - d.AdsCost),
		})
	}

	for _, p := range agg.Products {
		pt := p.Totals
		report.Productwise = append(report.Productwise, domain.ProductBreakdown{
			ProductName:            p.Name,
			TotalOrders:            pt.TotalOrders,
			TotalSettlementAmount:  Round2(pt.TotalSettlement),
			ReturnCount:            pt.ReturnCount,
			ReturnAmount:           Round2(pt.TotalReturnAmount()),
			ProductReturnAmount:    Round2(pt.ProductReturnAmount),
			CustomerShippingCharge: Round2(pt.CustomerShippingCharge),
			CustomerReturnCount:    pt.CustomerReturnCount,
			CustomerReturnAmount:   Round2(pt.CustomerReturnAmount()),
			RTOCount:               pt.RTOCount,
			RTOAmount:              Round2(pt.RTOAmount),
			ClaimsCount:            pt.ClaimsCount,
			ClaimsAmount:           Round2(pt.ClaimsAmount),
		})
	}

	if report.Metadata.GeneratedAt.IsZero() {
		report.Metadata.GeneratedAt = time.Now().UTC()
	}
	return report
}
