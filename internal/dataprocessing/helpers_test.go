package dataprocessing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"sellerpulse/internal/shared/testutil"
	"sellerpulse/pkg/contracts/domain"
)

var v1Header = []string{
	"Sub Order No", "Product Name", "Live Order Status", "Payment Date",
	"Final Settlement Amount", "Sale Return Amount (Incl. GST)",
	"Return Shipping Charge (Excl. GST)", "Claims",
}

var v2Header = []string{
	"Sub Order No", "Product Name", "Live Order Status", "Payment Date",
	"Final Settlement Amount", "Total Sale Return Amount (Incl. Shipping & GST)",
	"Return Shipping Charge (Incl. GST)", "Claims", "Ads Cost",
}

// mapOpener serves workbooks from memory.
type mapOpener map[string][]byte

func (m mapOpener) Open(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%s: no such file", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func v1Workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	return testutil.Workbook{Header: v1Header, Rows: rows}.Bytes(t)
}

func v2Workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	return testutil.Workbook{Header: v2Header, Rows: rows}.Bytes(t)
}

func date(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func record(id, product string, status domain.OrderStatus, settlement, ret float64) domain.OrderRecord {
	return domain.OrderRecord{
		SubOrderID:   id,
		ProductName:  product,
		Status:       status,
		PaymentDate:  date("2025-04-10"),
		PaymentMonth: "2025-04",
		Settlement:   settlement,
		ReturnAmount: ret,
		Missing:      domain.MissingSet(0).With(domain.MoneyClaims).With(domain.MoneyAdsCost),
	}
}

func standardConstants() domain.Constants {
	return domain.Constants{
		CostOfGoodsSold:         domain.Float(4000),
		GSTPayable:              domain.Float(150),
		TDS:                     domain.Float(12.5),
		OtherCharges:            domain.Float(-100),
		AveragePaymentCycleDays: domain.Float(7),
	}
}
