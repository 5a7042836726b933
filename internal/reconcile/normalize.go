package reconcile

import (
	"time"

	"github.com/BradenHooton/eventease/internal/models"
)

// Normalize resolves every display field of rec once so callers work with
// a fixed shape. Absent strings stay empty.
func Normalize(rec Record) models.Booking {
	b := models.Booking{
		ID:            ID(rec),
		OwnerID:       OwnerID(rec),
		OwnerEmail:    OwnerEmail(rec),
		OwnerName:     OwnerName(rec),
		EventType:     text(rec, FieldEventType),
		BookingDate:   text(rec, FieldBookingDate),
		BookingTime:   text(rec, FieldBookingTime),
		MainDish:      text(rec, FieldMainDish),
		Sides:         ResolveField(rec, FieldSides).Strings(),
		Drink:         text(rec, FieldDrink),
		Dessert:       text(rec, FieldDessert),
		Notes:         text(rec, FieldNotes),
		Status:        status(rec),
		PaymentStatus: text(rec, FieldPaymentStatus),
		ReceiptName:   text(rec, FieldReceiptName),
		Local:         rec["source"] == SourceLocal,
	}

	if t, ok := CreatedAt(rec); ok {
		b.CreatedAt = &t
	}
	if n, ok := ResolveField(rec, FieldGuests).Int(); ok {
		b.Guests = n
	}
	if f, ok := ResolveField(rec, FieldTotalAmount).Float(); ok {
		b.TotalAmount = &f
	}

	b.Payment = normalizePayment(rec)
	return b
}

// NormalizeAll normalizes records preserving order.
func NormalizeAll(records []Record) []models.Booking {
	out := make([]models.Booking, 0, len(records))
	for _, rec := range records {
		out = append(out, Normalize(rec))
	}
	return out
}

func normalizePayment(rec Record) *models.Payment {
	payment, ok := asMap(rec["payment"])
	if !ok {
		return nil
	}

	p := &models.Payment{}
	if v, ok := present(payment["amountPaid"]); ok {
		p.AmountPaid, _ = v.Float()
	}
	p.ReceiptName = scalarString(payment["receiptName"])
	p.ReceiptStored, _ = payment["receiptStored"].(bool)
	p.Notes = scalarString(payment["notes"])
	if s := scalarString(payment["submittedAt"]); s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			p.SubmittedAt = &t
		}
	}
	return p
}

// status prefers the booking status and falls back to the payment status.
func status(rec Record) models.BookingStatus {
	if s := scalarString(rec["status"]); s != "" {
		return models.NormalizeStatus(s)
	}
	return models.NormalizeStatus(scalarString(rec[FieldPaymentStatus]))
}

func text(rec Record, field string) string {
	v := ResolveField(rec, field)
	if !v.Present() {
		return ""
	}
	return v.String()
}
