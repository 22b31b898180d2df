package dataprocessing

import (
	"sort"
	"time"

	"sellerpulse/pkg/contracts/domain"
)

// SegmentTotals accumulates order counts and amounts per segment at full
// precision.
type SegmentTotals struct {
	TotalOrders            int
	TotalSettlement        float64
	ReturnCount            int
	ProductReturnAmount    float64
	CustomerShippingCharge float64
	CustomerReturnCount    int
	CustomerReturnSale     float64
	RTOCount               int
	RTOAmount              float64
	ClaimsCount            int
	ClaimsAmount           float64
	AdsCost                float64
}

// Add folds one record into the totals.
func (t *SegmentTotals) Add(r domain.OrderRecord) {
	t.TotalOrders++
	t.TotalSettlement += r.Settlement
	t.AdsCost += r.AdsCost

	if IsReturned(r) {
		t.ReturnCount++
		t.ProductReturnAmount += r.ReturnAmount
	}
	if IsCustomerReturned(r) {
		t.CustomerReturnCount++
		t.CustomerReturnSale += r.ReturnAmount
		t.CustomerShippingCharge += r.ShippingCharge
	}
	if IsRTO(r) {
		t.RTOCount++
		t.RTOAmount += r.ReturnAmount
	}
	if IsClaimed(r) {
		t.ClaimsCount++
		t.ClaimsAmount += r.Claims
	}
}

// TotalReturnAmount is the product return amount plus customer shipping.
func (t SegmentTotals) TotalReturnAmount() float64 {
	return t.ProductReturnAmount + t.CustomerShippingCharge
}

// CustomerReturnAmount is the customer returns' sale amount plus their
// shipping charges.
func (t SegmentTotals) CustomerReturnAmount() float64 {
	return t.CustomerReturnSale + t.CustomerShippingCharge
}

// ProductGroup is the totals of one product.
type ProductGroup struct {
	Name   string
	Totals SegmentTotals
}

// DateGroup is the settlement and ads cost of one payment date.
type DateGroup struct {
	Date       time.Time
	Settlement float64
	AdsCost    float64
}

// Aggregates is everything the calculator and assembler need.
type Aggregates struct {
	Overall  SegmentTotals
	Products []ProductGroup
	Dates    []DateGroup
}

// Aggregate computes overall, per-product and per-date totals. Products keep
// the order of first appearance; dates are sorted ascending. Records without
// a product name form their own group under "".
func Aggregate(records []domain.OrderRecord) Aggregates {
	var agg Aggregates

	productIdx := make(map[string]int)
	dateIdx := make(map[time.Time]int)

	for _, r := range records {
		agg.Overall.Add(r)

		i, ok := productIdx[r.ProductName]
		if !ok {
			i = len(agg.Products)
			productIdx[r.ProductName] = i
			agg.Products = append(agg.Products, ProductGroup{Name: r.ProductName})
		}
		agg.Products[i].Totals.Add(r)

		day := truncateDay(r.PaymentDate)
		j, ok := dateIdx[day]
		if !ok {
			j = len(agg.Dates)
			dateIdx[day] = j
			agg.Dates = append(agg.Dates, DateGroup{Date: day})
		}
		agg.Dates[j].Settlement += r.Settlement
		agg.Dates[j].AdsCost += r.AdsCost
	}

	sort.Slice(agg.Dates, func(a, b int) bool {
		return agg.Dates[a].Date.Before(agg.Dates[b].Date)
	})
	return agg
}
