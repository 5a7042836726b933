package reconcile

import (
	"fmt"
	"strconv"
	"strings"
)

// Placeholder renders an absent field.
const Placeholder = "N/A"

// Canonical field names understood by ResolveField.
const (
	FieldEventType     = "eventType"
	FieldGuests        = "numPeople"
	FieldMainDish      = "foodPackage"
	FieldSides         = "selectedSides"
	FieldDrink         = "drink"
	FieldDessert       = "dessert"
	FieldNotes         = "notes"
	FieldTotalAmount   = "totalAmount"
	FieldReceiptName   = "receiptFileName"
	FieldBookingDate   = "bookingDate"
	FieldBookingTime   = "bookingTime"
	FieldPaymentStatus = "paymentStatus"
	FieldAmountPaid    = "amountPaid"
)

const detailsKey = "serviceDetails"

// legacyAliases are older names for a field, tried after the nested
// details object and the top-level field. Dotted names reach into
// sub-objects.
var legacyAliases = map[string][]string{
	FieldEventType:     {"serviceName", "event"},
	FieldGuests:        {"guestsPerTable", "guests"},
	FieldMainDish:      {"mainDish"},
	FieldSides:         {"sideDishes"},
	FieldTotalAmount:   {"amountDue"},
	FieldReceiptName:   {"receiptName", "payment.receiptName"},
	FieldBookingDate:   {"date"},
	FieldBookingTime:   {"time"},
	FieldPaymentStatus: {"status"},
	FieldAmountPaid:    {"payment.amountPaid"},
}

// Value is the outcome of a field lookup.
type Value struct {
	raw     any
	present bool
}

// Present reports whether a real value was found.
func (v Value) Present() bool { return v.present }

// Raw returns the underlying JSON value, or nil when absent.
func (v Value) Raw() any { return v.raw }

// String renders the value for display; absent values render as
// Placeholder.
func (v Value) String() string {
	if !v.present {
		return Placeholder
	}

	switch t := v.raw.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any, []string:
		return strings.Join(v.Strings(), ", ")
	default:
		return fmt.Sprint(t)
	}
}

// Strings returns list values as strings; a scalar becomes a one-element
// list. Absent values yield nil.
func (v Value) Strings() []string {
	if !v.present {
		return nil
	}

	switch t := v.raw.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{v.String()}
	}
}

// Float returns numeric values, including numeric strings.
func (v Value) Float() (float64, bool) {
	if !v.present {
		return 0, false
	}

	switch t := v.raw.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// Int returns the value truncated to an integer.
func (v Value) Int() (int, bool) {
	f, ok := v.Float()
	return int(f), ok
}

// ResolveField looks field up in the nested details object, then at the
// top level, then under its legacy aliases, and returns the first present
// value. It never panics; when nothing is found the Value is absent.
func ResolveField(rec Record, field string) Value {
	if rec == nil {
		return Value{}
	}

	if details, ok := asMap(rec[detailsKey]); ok {
		if v, ok := present(details[field]); ok {
			return v
		}
	}

	if v, ok := present(rec[field]); ok {
		return v
	}

	for _, alias := range legacyAliases[field] {
		if v, ok := present(lookup(rec, alias)); ok {
			return v
		}
	}

	return Value{}
}

// lookup follows a dotted path through nested objects.
func lookup(rec Record, path string) any {
	var cur any = map[string]any(rec)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// present treats nil, blank strings and empty lists as absent.
func present(v any) (Value, bool) {
	switch t := v.(type) {
	case nil:
		return Value{}, false
	case string:
		if strings.TrimSpace(t) == "" {
			return Value{}, false
		}
	case []any:
		if len(t) == 0 {
			return Value{}, false
		}
	case []string:
		if len(t) == 0 {
			return Value{}, false
		}
	}
	return Value{raw: v, present: true}, true
}
