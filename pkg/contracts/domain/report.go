package domain

import (
	"time"
)

// ReportMode selects the formula set used for the gross profit and funds
// flow sections.
type ReportMode string

const (
	// ReportModeStandard folds cost of goods sold, GST payable and TDS into
	// the report and deducts ads cost.
	ReportModeStandard ReportMode = "standard"
	// ReportModeAdsAdjusted zeroes cost of goods sold, GST payable and TDS
	// and adds ads cost back into sales less expenses.
	ReportModeAdsAdjusted ReportMode = "ads_adjusted"
)

// Valid reports whether m is a known mode.
func (m ReportMode) Valid() bool {
	return m == ReportModeStandard || m == ReportModeAdsAdjusted
}

// SummaryReport is the complete order payments summary.
type SummaryReport struct {
	GrossProfit    GrossProfitSection   `json:"calculation_of_gross_profit"`
	FundsFlow      FundsFlowSection     `json:"funds_flow_analysis"`
	Quantity       QuantityAnalysis     `json:"quantity_analysis"`
	PaymentsByDate []DatePaymentSummary `json:"neft_wise_payment_summary"`
	Productwise    []ProductBreakdown   `json:"productwise"`
	Summary        OrderSummary         `json:"summary"`
	Metadata       ReportMetadata       `json:"metadata"`
}

// GrossProfitSection is the "calculation of gross profit" block.
type GrossProfitSection struct {
	SalesExclGST       float64 `json:"sales_excl_gst"`
	Commission         float64 `json:"commission"`
	Shipping           float64 `json:"shipping"`
	OtherCharges       float64 `json:"other_charges"`
	AdsCost            float64 `json:"ads_cost"`
	SalesLessExpenses  float64 `json:"sales_less_expenses"`
	NonRefundableGST   float64 `json:"non_refundable_gst"`
	CostOfGoodsSold    float64 `json:"cost_of_goods_sold"`
	GrossProfit        float64 `json:"gross_profit"`
	GrossProfitPercent float64 `json:"gross_profit_percent"`
}

// FundsFlowSection reconciles sales less expenses with the amount received.
type FundsFlowSection struct {
	SalesLessExpenses       float64 `json:"sales_less_expenses"`
	NonRefundableGST        float64 `json:"non_refundable_gst"`
	RefundableGST           float64 `json:"refundable_gst"`
	GSTPayable              float64 `json:"gst_payable"`
	TDS                     float64 `json:"tds"`
	ClaimsFromMarketplace   float64 `json:"claims_from_meesho"`
	NetAmountReceived       float64 `json:"net_amount_received"`
	AveragePaymentCycleDays float64 `json:"average_payment_cycle_days"`
}

// QuantityAnalysis carries order quantities; returns are negative.
type QuantityAnalysis struct {
	SalesQty          int `json:"sales_qty"`
	CustomerReturnQty int `json:"customer_return_qty"`
	RTOReturnQty      int `json:"rto_return_qty"`
	NetSalesQty       int `json:"net_sales_qty"`
}

// DatePaymentSummary is the settlement received on one payment date.
type DatePaymentSummary struct {
	PaymentDate           string  `json:"payment_date"`
	FinalSettlementAmount float64 `json:"final_settlement_amount"`
	AdsAmount             float64 `json:"ads_amount"`
	TotalAmount           float64 `json:"total_amount"`
}

// ProductBreakdown is the per-product slice of the order statistics.
type ProductBreakdown struct {
	ProductName            string  `json:"product_name"`
	TotalOrders            int     `json:"total_orders"`
	TotalSettlementAmount  float64 `json:"total_settlement_amount"`
	ReturnCount            int     `json:"return_count"`
	ReturnAmount           float64 `json:"return_amount"`
	ProductReturnAmount    float64 `json:"product_return_amount"`
	CustomerShippingCharge float64 `json:"customer_shipping_charge"`
	CustomerReturnCount    int     `json:"customer_return_count"`
	CustomerReturnAmount   float64 `json:"customer_return_amount"`
	RTOCount               int     `json:"rto_count"`
	RTOAmount              float64 `json:"rto_amount"`
	ClaimsCount            int     `json:"claims_count"`
	ClaimsAmount           float64 `json:"claims_amount"`
}

// OrderSummary holds the headline order, return and claim statistics.
type OrderSummary struct {
	TotalOrders                  int     `json:"total_orders"`
	TotalSettlementAmount        float64 `json:"total_settlement_amount"`
	ReturnRatePercent            float64 `json:"return_rate_percent"`
	TotalReturnCount             int     `json:"total_return_count"`
	TotalReturnAmount            float64 `json:"total_return_amount"`
	ClaimsSuccessCount           int     `json:"claims_success_count"`
	ClaimsAmount                 float64 `json:"claims_amount"`
	CustomerReturnCount          int     `json:"customer_return_count"`
	CustomerReturnAmount         float64 `json:"customer_return_amount"`
	CustomerReturnShippingCharge float64 `json:"customer_return_shipping_charge"`
	RTOCount                     int     `json:"rto_count"`
	RTOAmount                    float64 `json:"rto_amount"`
	TotalAdsCost                 float64 `json:"total_ads_cost"`
}

// ReportMetadata describes how a report was produced.
type ReportMetadata struct {
	Mode                   ReportMode `json:"mode"`
	Schema                 string     `json:"schema"`
	DateFrom               string     `json:"date_from,omitempty"`
	DateTo                 string     `json:"date_to,omitempty"`
	SourceFiles            []string   `json:"source_files"`
	GeneratedAt            time.Time  `json:"generated_at"`
	RowsRead               int        `json:"rows_read"`
	RowsAfterDedup         int        `json:"rows_after_dedup"`
	RowsDroppedInvalidDate int        `json:"rows_dropped_invalid_date"`
	RowsOutsideWindow      int        `json:"rows_outside_window"`
}
