package domain

import (
	"time"
)

// OrderStatus is the "Live Order Status" value of an order payment row.
type OrderStatus string

const (
	StatusRTO       OrderStatus = "RTO"
	StatusReturn    OrderStatus = "Return"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
)

// MoneyField identifies one of the monetary columns of an order payment row.
type MoneyField uint8

const (
	MoneySettlement MoneyField = 1 << iota
	MoneyReturnAmount
	MoneyShippingCharge
	MoneyClaims
	MoneyAdsCost
)

// String returns the report name of the field.
func (f MoneyField) String() string {
	switch f {
	case MoneySettlement:
		return "settlement"
	case MoneyReturnAmount:
		return "return_amount"
	case MoneyShippingCharge:
		return "shipping_charge"
	case MoneyClaims:
		return "claims"
	case MoneyAdsCost:
		return "ads_cost"
	default:
		return "unknown"
	}
}

// MissingSet records which monetary fields were empty or failed numeric
// coercion. The amount of such a field is 0.
type MissingSet uint8

// Has reports whether f was missing.
func (m MissingSet) Has(f MoneyField) bool {
	return m&MissingSet(f) != 0
}

// With returns the set with f marked missing.
func (m MissingSet) With(f MoneyField) MissingSet {
	return m | MissingSet(f)
}

// OrderRecord is one normalized row of the "Order Payments" sheet.
type OrderRecord struct {
	SubOrderID     string      `json:"sub_order_id" validate:"required"`
	ProductName    string      `json:"product_name"`
	Status         OrderStatus `json:"live_order_status"`
	PaymentDate    time.Time   `json:"payment_date" validate:"required"`
	PaymentMonth   string      `json:"payment_month"`
	Settlement     float64     `json:"final_settlement_amount"`
	ReturnAmount   float64     `json:"sale_return_amount"`
	ShippingCharge float64     `json:"return_shipping_charge"`
	Claims         float64     `json:"claims"`
	AdsCost        float64     `json:"ads_cost"`
	Missing        MissingSet  `json:"-"`

	// SourceFile is the workbook the row was read from.
	SourceFile string `json:"source_file,omitempty"`
}

// ClaimFiled reports whether the claims cell held a value, as opposed to
// being empty. A filed claim may still be 0.
func (r OrderRecord) ClaimFiled() bool {
	return !r.Missing.Has(MoneyClaims)
}
