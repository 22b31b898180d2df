package dataprocessing

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"sellerpulse/internal/errors"
	"sellerpulse/pkg/contracts/domain"
)

// Financials are the derived gross profit and funds flow figures, unrounded.
type Financials struct {
	Mode domain.ReportMode

	SalesExclGST       float64
	ShippingCost       float64
	OtherCharges       float64
	AdsTerm            float64
	SalesLessExpenses  float64
	CostOfGoodsSold    float64
	GrossProfit        float64
	GrossProfitPercent float64

	GSTPayable              float64
	TDS                     float64
	Claims                  float64
	NetAmountReceived       float64
	AveragePaymentCycleDays float64

	Quantity domain.QuantityAnalysis
}

// constantInputs ties constant requirements to the mode.
type constantInputs struct {
	Mode            string
	CostOfGoodsSold *float64 `json:"cost_of_goods_sold" validate:"required_if=Mode standard"`
	GSTPayable      *float64 `json:"gst_payable" validate:"required_if=Mode standard"`
	TDS             *float64 `json:"tds" validate:"required_if=Mode standard"`
	OtherCharges    *float64 `json:"other_charges" validate:"required"`
}

var constantsValidator = newConstantsValidator()

func newConstantsValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// CheckConstants reports the constants mode needs but c leaves unset.
func CheckConstants(mode domain.ReportMode, c domain.Constants) error {
	if !mode.Valid() {
		return errors.NewAppValidationError(fmt.Sprintf("unknown report mode %q", mode))
	}

	err := constantsValidator.Struct(constantInputs{
		Mode:            string(mode),
		CostOfGoodsSold: c.CostOfGoodsSold,
		GSTPayable:      c.GSTPayable,
		TDS:             c.TDS,
		OtherCharges:    c.OtherCharges,
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.NewComputationError("failed to check constants", err)
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	sort.Strings(missing)

	return errors.NewComputationError(
		fmt.Sprintf("missing constant for %s mode: %s", mode, strings.Join(missing, ", ")), nil).
		WithContext("missing_constants", missing)
}

// Calculate derives the financial sections from the overall totals. In
// ads_adjusted mode cost of goods sold, GST payable and TDS are zero and ads
// cost is added back instead of deducted.
func Calculate(mode domain.ReportMode, t SegmentTotals, c domain.Constants) (Financials, error) {
	if err := CheckConstants(mode, c); err != nil {
		return Financials{}, err
	}

	f := Financials{
		Mode:                    mode,
		SalesExclGST:            t.TotalSettlement,
		ShippingCost:            -(t.CustomerShippingCharge + t.RTOAmount),
		OtherCharges:            *c.OtherCharges,
		Claims:                  t.ClaimsAmount,
		AveragePaymentCycleDays: c.CycleDays(),
	}

	switch mode {
	case domain.ReportModeStandard:
		f.AdsTerm = -t.AdsCost
		f.CostOfGoodsSold = *c.CostOfGoodsSold
		f.GSTPayable = *c.GSTPayable
		f.TDS = *c.TDS
	case domain.ReportModeAdsAdjusted:
		f.AdsTerm = t.AdsCost
	}

	f.SalesLessExpenses = f.SalesExclGST + f.ShippingCost + f.OtherCharges + f.AdsTerm
	f.GrossProfit = f.SalesLessExpenses - f.CostOfGoodsSold
	if f.SalesExclGST != 0 {
		f.GrossProfitPercent = f.GrossProfit / f.SalesExclGST * 100
	}
	f.NetAmountReceived = f.SalesLessExpenses - f.GSTPayable + f.Claims + f.TDS

	f.Quantity = domain.QuantityAnalysis{
		SalesQty:          t.TotalOrders,
		CustomerReturnQty: -t.CustomerReturnCount,
		RTOReturnQty:      -t.RTOCount,
		NetSalesQty:       t.TotalOrders - t.CustomerReturnCount - t.RTOCount,
	}

	if name, ok := f.firstNonFinite(); !ok {
		return Financials{}, errors.NewComputationError(
			fmt.Sprintf("%s is not a finite number", name), nil).
			WithContext("field", name)
	}
	return f, nil
}

func (f Financials) firstNonFinite() (string, bool) {
	values := []struct {
		name string
		v    float64
	}{
		{"sales_excl_gst", f.SalesExclGST},
		{"shipping", f.ShippingCost},
		{"other_charges", f.OtherCharges},
		{"ads_cost", f.AdsTerm},
		{"sales_less_expenses", f.SalesLessExpenses},
		{"cost_of_goods_sold", f.CostOfGoodsSold},
		{"gross_profit", f.GrossProfit},
		{"gross_profit_percent", f.GrossProfitPercent},
		{"gst_payable", f.GSTPayable},
		{"tds", f.TDS},
		{"claims_from_meesho", f.Claims},
		{"net_amount_received", f.NetAmountReceived},
		{"average_payment_cycle_days", f.AveragePaymentCycleDays},
	}
	for _, v := range values {
		if math.IsNaN(v.v) || math.IsInf(v.v, 0) {
			return v.name, false
		}
	}
	return "", true
}
