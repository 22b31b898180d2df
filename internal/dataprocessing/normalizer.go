package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"sellerpulse/pkg/contracts/domain"
)

const (
	// DateLayout is the calendar date format used in requests and reports.
	DateLayout = "2006-01-02"
	// MonthLayout is the payment month label format.
	MonthLayout = "2006-01"
)

// emptySentinels are cell texts that mean "no value".
var emptySentinels = map[string]bool{
	"":     true,
	"nan":  true,
	"NaN":  true,
	"None": true,
	"null": true,
	"NULL": true,
	"N/A":  true,
	"NA":   true,
	"-":    true,
}

// minDateSerial is 1927-05-18, the first serial that cannot be read as a
// four-digit year.
const minDateSerial = 10000

var paymentDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// IsMissing reports whether a cell holds one of the empty sentinels.
func IsMissing(cell string) bool {
	return emptySentinels[strings.TrimSpace(cell)]
}

// ParsePaymentDate parses a payment date cell to a UTC calendar date. Text
// dates and Excel serial numbers are accepted.
func ParsePaymentDate(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if IsMissing(s) {
		return time.Time{}, false
	}

	for _, layout := range paymentDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}

	// Excel serials. Values below minDateSerial are bare years or noise,
	// and 2958465 is 9999-12-31.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minDateSerial && serial <= 2958465 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var amountReplacer = strings.NewReplacer(",", "", "₹", "", " ", "", "\u00a0", "")

// ParseAmount coerces a monetary cell. Thousands separators, the rupee sign
// and spaces are stripped. Missing or non-numeric cells yield 0 and false.
func ParseAmount(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(amountReplacer.Replace(strings.TrimSpace(cell)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// DateWindow is an inclusive range of calendar dates. A zero bound is open.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the calendar date d lies in the window.
func (w DateWindow) Contains(d time.Time) bool {
	d = truncateDay(d)
	if !w.From.IsZero() && d.Before(truncateDay(w.From)) {
		return false
	}
	if !w.To.IsZero() && d.After(truncateDay(w.To)) {
		return false
	}
	return true
}

// ParseDateWindow parses optional YYYY-MM-DD bounds.
func ParseDateWindow(from, to string) (DateWindow, error) {
	var w DateWindow
	var err error
	if from = strings.TrimSpace(from); from != "" {
		if w.From, err = time.Parse(DateLayout, from); err != nil {
			return DateWindow{}, err
		}
	}
	if to = strings.TrimSpace(to); to != "" {
		if w.To, err = time.Parse(DateLayout, to); err != nil {
			return DateWindow{}, err
		}
	}
	return w, nil
}

// NormalizeStats counts what normalization kept and dropped.
type NormalizeStats struct {
	RowsRead               int
	RowsAfterDedup         int
	RowsDroppedInvalidDate int
	RowsOutsideWindow      int
}

// ResolvedTable is a raw table paired with its resolved columns.
type ResolvedTable struct {
	Table   *RawTable
	Columns ColumnSet
}

// Normalize concatenates tables in order and turns them into order records:
// deduplicate by sub-order id, drop rows without a parseable payment date,
// then apply the window.
func Normalize(tables []ResolvedTable, window DateWindow) ([]domain.OrderRecord, NormalizeStats) {
	var stats NormalizeStats

	var records []domain.OrderRecord
	for _, t := range tables {
		for _, row := range t.Table.Rows {
			records = append(records, toRecord(row, t.Columns, t.Table.Source))
		}
	}
	stats.RowsRead = len(records)

	records = Deduplicate(records)
	stats.RowsAfterDedup = len(records)

	kept := records[:0]
	for _, r := range records {
		if r.PaymentDate.IsZero() {
			stats.RowsDroppedInvalidDate++
			continue
		}
		if !window.Contains(r.PaymentDate) {
			stats.RowsOutsideWindow++
			continue
		}
		kept = append(kept, r)
	}

	return kept, stats
}

// Deduplicate keeps one record per sub-order id. The last occurrence wins
// and sits at the position of that last occurrence.
func Deduplicate(records []domain.OrderRecord) []domain.OrderRecord {
	seen := make(map[string]bool, len(records))
	out := make([]domain.OrderRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		id := records[i].SubOrderID
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, records[i])
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func toRecord(row []string, cols ColumnSet, source string) domain.OrderRecord {
	text := func(f Field) string {
		i, ok := cols.Index(f)
		if !ok {
			return ""
		}
		cell := strings.TrimSpace(Cell(row, i))
		if IsMissing(cell) {
			return ""
		}
		return cell
	}

	r := domain.OrderRecord{
		SubOrderID:  text(FieldSubOrderID),
		ProductName: text(FieldProductName),
		Status:      domain.OrderStatus(text(FieldStatus)),
		SourceFile:  source,
	}

	if d, ok := ParsePaymentDate(text(FieldPaymentDate)); ok {
		r.PaymentDate = d
		r.PaymentMonth = d.Format(MonthLayout)
	}

	amount := func(f Field, mf domain.MoneyField) float64 {
		v, ok := ParseAmount(text(f))
		if !ok {
			r.Missing = r.Missing.With(mf)
		}
		return v
	}
	r.Settlement = amount(FieldSettlement, domain.MoneySettlement)
	r.ReturnAmount = amount(FieldReturnAmount, domain.MoneyReturnAmount)
	r.ShippingCharge = amount(FieldShippingCharge, domain.MoneyShippingCharge)
	r.Claims = amount(FieldClaims, domain.MoneyClaims)
	r.AdsCost = amount(FieldAdsCost, domain.MoneyAdsCost)

	return r
}
