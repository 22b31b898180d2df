package dataprocessing

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"sellerpulse/internal/errors"
)

// Field is a semantic column of the order payments sheet.
type Field string

const (
	FieldSubOrderID     Field = "sub_order_id"
	FieldProductName    Field = "product_name"
	FieldStatus         Field = "status"
	FieldPaymentDate    Field = "payment_date"
	FieldSettlement     Field = "settlement"
	FieldReturnAmount   Field = "return_amount"
	FieldShippingCharge Field = "shipping_charge"
	FieldClaims         Field = "claims"
	FieldAdsCost        Field = "ads_cost"
)

// SchemaAuto asks the resolver to detect the schema from the header row.
const SchemaAuto = "auto"

// coreFields must be mapped by every schema.
var coreFields = []Field{
	FieldSubOrderID,
	FieldProductName,
	FieldStatus,
	FieldPaymentDate,
	FieldSettlement,
	FieldReturnAmount,
	FieldShippingCharge,
	FieldClaims,
}

var knownFields = map[Field]bool{
	FieldSubOrderID:     true,
	FieldProductName:    true,
	FieldStatus:         true,
	FieldPaymentDate:    true,
	FieldSettlement:     true,
	FieldReturnAmount:   true,
	FieldShippingCharge: true,
	FieldClaims:         true,
	FieldAdsCost:        true,
}

// ParseField converts a configuration key to a Field.
func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	if !knownFields[f] {
		return "", fmt.Errorf("unknown column field %q", name)
	}
	return f, nil
}

// ColumnSchema maps semantic fields to the literal headers of one export
// format. Fields listed in Optional resolve to absent when their header is
// missing; fields not in Columns are always absent.
type ColumnSchema struct {
	Version  string
	Columns  map[Field]string
	Optional map[Field]bool
}

// NewColumnSchema builds and checks a schema.
func NewColumnSchema(version string, columns map[Field]string, optional ...Field) (ColumnSchema, error) {
	if strings.TrimSpace(version) == "" {
		return ColumnSchema{}, errors.NewConfigError("column schema needs a version", nil)
	}
	if version == SchemaAuto {
		return ColumnSchema{}, errors.NewConfigError(fmt.Sprintf("%q is reserved", SchemaAuto), nil)
	}

	for _, f := range coreFields {
		if strings.TrimSpace(columns[f]) == "" {
			return ColumnSchema{}, errors.NewConfigError(
				fmt.Sprintf("column schema %s does not map field %s", version, f), nil)
		}
	}

	s := ColumnSchema{
		Version:  version,
		Columns:  make(map[Field]string, len(columns)),
		Optional: make(map[Field]bool, len(optional)),
	}
	for f, header := range columns {
		if !knownFields[f] {
			return ColumnSchema{}, errors.NewConfigError(fmt.Sprintf("unknown column field %q", f), nil)
		}
		s.Columns[f] = strings.TrimSpace(header)
	}
	for _, f := range optional {
		s.Optional[f] = true
	}
	return s, nil
}

func mustSchema(version string, columns map[Field]string, optional ...Field) ColumnSchema {
	s, err := NewColumnSchema(version, columns, optional...)
	if err != nil {
		panic(err)
	}
	return s
}

// SchemaV1 is the original export layout.
func SchemaV1() ColumnSchema {
	return mustSchema("v1", map[Field]string{
		FieldSubOrderID:     "Sub Order No",
		FieldProductName:    "Product Name",
		FieldStatus:         "Live Order Status",
		FieldPaymentDate:    "Payment Date",
		FieldSettlement:     "Final Settlement Amount",
		FieldReturnAmount:   "Sale Return Amount (Incl. GST)",
		FieldShippingCharge: "Return Shipping Charge (Excl. GST)",
		FieldClaims:         "Claims",
	})
}

// SchemaV2 is the newer layout with shipping folded into the return amount
// and an optional ads cost column.
func SchemaV2() ColumnSchema {
	return mustSchema("v2", map[Field]string{
		FieldSubOrderID:     "Sub Order No",
		FieldProductName:    "Product Name",
		FieldStatus:         "Live Order Status",
		FieldPaymentDate:    "Payment Date",
		FieldSettlement:     "Final Settlement Amount",
		FieldReturnAmount:   "Total Sale Return Amount (Incl. Shipping & GST)",
		FieldShippingCharge: "Return Shipping Charge (Incl. GST)",
		FieldClaims:         "Claims",
		FieldAdsCost:        "Ads Cost",
	}, FieldAdsCost)
}

// ColumnSet is a schema resolved against one header row.
type ColumnSet struct {
	Schema string
	index  map[Field]int
}

// Index returns the column position of f, or false when f is absent.
func (c ColumnSet) Index(f Field) (int, bool) {
	i, ok := c.index[f]
	return i, ok
}

// Has reports whether f resolved to a column.
func (c ColumnSet) Has(f Field) bool {
	_, ok := c.index[f]
	return ok
}

// Resolve matches the schema against header. Headers compare exactly after
// trimming surrounding whitespace; the first of duplicate headers wins.
func (s ColumnSchema) Resolve(header []string) (ColumnSet, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, seen := positions[h]; !seen {
			positions[h] = i
		}
	}

	set := ColumnSet{Schema: s.Version, index: make(map[Field]int, len(s.Columns))}
	var missing []string
	for _, f := range s.fields() {
		name := s.Columns[f]
		if i, ok := positions[name]; ok {
			set.index[f] = i
			continue
		}
		if !s.Optional[f] {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return ColumnSet{}, errors.NewInputSchemaError(
			fmt.Sprintf("order payments sheet does not match schema %s, missing columns", s.Version), missing).
			WithContext("schema", s.Version)
	}
	return set, nil
}

// fields returns the mapped fields in a stable order.
func (s ColumnSchema) fields() []Field {
	fields := make([]Field, 0, len(s.Columns))
	for f := range s.Columns {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// SchemaRegistry holds the known export layouts by version.
type SchemaRegistry struct {
	mu      sync.RWMutex
	order   []string
	schemas map[string]ColumnSchema
}

// NewSchemaRegistry returns a registry holding v1 and v2.
func NewSchemaRegistry() *SchemaRegistry {
	r := &SchemaRegistry{schemas: make(map[string]ColumnSchema)}
	_ = r.Register(SchemaV1())
	_ = r.Register(SchemaV2())
	return r
}

// Register adds a schema. Versions are unique.
func (r *SchemaRegistry) Register(s ColumnSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[s.Version]; exists {
		return errors.NewConfigError(fmt.Sprintf("column schema %s already registered", s.Version), nil)
	}
	r.schemas[s.Version] = s
	r.order = append(r.order, s.Version)
	return nil
}

// Get returns the schema registered under version.
func (r *SchemaRegistry) Get(version string) (ColumnSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[version]
	return s, ok
}

// Versions lists registered versions in registration order.
func (r *SchemaRegistry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Known reports whether version names a registered schema or auto.
func (r *SchemaRegistry) Known(version string) bool {
	if version == SchemaAuto {
		return true
	}
	_, ok := r.Get(version)
	return ok
}

// Resolve resolves header with the named schema, or detects one for auto.
func (r *SchemaRegistry) Resolve(version string, header []string) (ColumnSet, error) {
	if version == SchemaAuto {
		return r.DetectSchema(header)
	}
	s, ok := r.Get(version)
	if !ok {
		return ColumnSet{}, errors.NewAppValidationError(fmt.Sprintf("unknown column schema %q", version))
	}
	return s.Resolve(header)
}

// DetectSchema resolves header against each registered schema in
// registration order and returns the first match. When none match, the
// error lists the columns missing from the closest schema.
func (r *SchemaRegistry) DetectSchema(header []string) (ColumnSet, error) {
	var best error
	bestMissing := -1

	for _, version := range r.Versions() {
		s, _ := r.Get(version)
		set, err := s.Resolve(header)
		if err == nil {
			return set, nil
		}

		missing := 0
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			if cols, ok := appErr.Context["missing_columns"].([]string); ok {
				missing = len(cols)
			}
		}
		if bestMissing < 0 || missing < bestMissing {
			best, bestMissing = err, missing
		}
	}

	if best == nil {
		return ColumnSet{}, errors.NewInputSchemaError("no column schema registered", nil)
	}
	return ColumnSet{}, best
}
