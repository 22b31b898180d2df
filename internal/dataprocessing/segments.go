package dataprocessing

import "sellerpulse/pkg/contracts/domain"

// IsReturned reports whether the order is in the returned segment: RTO,
// Return or Shipped.
func IsReturned(r domain.OrderRecord) bool {
	switch r.Status {
	case domain.StatusRTO, domain.StatusReturn, domain.StatusShipped:
		return true
	}
	return false
}

// IsCustomerReturned reports whether the order is a customer return. The
// marketplace export reports in-transit returns as Shipped, so Shipped
// counts here too.
func IsCustomerReturned(r domain.OrderRecord) bool {
	return r.Status == domain.StatusReturn || r.Status == domain.StatusShipped
}

// IsRTO reports whether the order was returned to origin.
func IsRTO(r domain.OrderRecord) bool {
	return r.Status == domain.StatusRTO
}

// IsClaimed reports whether a strictly positive claim was paid.
func IsClaimed(r domain.OrderRecord) bool {
	return r.Claims > 0
}
