package domain

// Constants are the per-period financial inputs that do not come from the
// order payments export. A nil field is unset.
type Constants struct {
	CostOfGoodsSold *float64 `json:"cost_of_goods_sold,omitempty" yaml:"cost_of_goods_sold" envconfig:"COST_OF_GOODS_SOLD"`
	GSTPayable      *float64 `json:"gst_payable,omitempty" yaml:"gst_payable" envconfig:"GST_PAYABLE"`
	TDS             *float64 `json:"tds,omitempty" yaml:"tds" envconfig:"TDS"`
	OtherCharges    *float64 `json:"other_charges,omitempty" yaml:"other_charges" envconfig:"OTHER_CHARGES"`

	// AveragePaymentCycleDays is reported as configured. It is not derived
	// from payment dates.
	AveragePaymentCycleDays *float64 `json:"average_payment_cycle_days,omitempty" yaml:"average_payment_cycle_days" envconfig:"AVERAGE_PAYMENT_CYCLE_DAYS"`
}

// Merge returns c with every field set in override replacing its own.
func (c Constants) Merge(override Constants) Constants {
	out := c
	if override.CostOfGoodsSold != nil {
		out.CostOfGoodsSold = override.CostOfGoodsSold
	}
	if override.GSTPayable != nil {
		out.GSTPayable = override.GSTPayable
	}
	if override.TDS != nil {
		out.TDS = override.TDS
	}
	if override.OtherCharges != nil {
		out.OtherCharges = override.OtherCharges
	}
	if override.AveragePaymentCycleDays != nil {
		out.AveragePaymentCycleDays = override.AveragePaymentCycleDays
	}
	return out
}

// CycleDays returns the configured average payment cycle, 0 when unset.
func (c Constants) CycleDays() float64 {
	if c.AveragePaymentCycleDays == nil {
		return 0
	}
	return *c.AveragePaymentCycleDays
}

// Float returns a pointer to v, for building Constants literals.
func Float(v float64) *float64 {
	return &v
}
