package reconcile

import (
	"strings"

	"github.com/BradenHooton/eventease/internal/menu"
	"github.com/BradenHooton/eventease/internal/models"
	"github.com/shopspring/decimal"
)

// Tone is the visual weight of a status badge.
type Tone string

const (
	ToneWarning Tone = "warning"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
)

// StatusCopy is the user-facing wording for a booking status.
type StatusCopy struct {
	Label       string
	Description string
	Tone        Tone
}

var statusCopy = map[models.BookingStatus]StatusCopy{
	models.StatusAwaitingPayment: {"Awaiting Payment", "Please complete the payment to continue.", ToneWarning},
	models.StatusPendingPayment:  {"Awaiting Payment", "Please resubmit your payment to continue.", ToneWarning},
	models.StatusPendingReview:   {"Under Review", "Your payment receipt is being reviewed by admin.", ToneInfo},
	models.StatusPendingApproval: {"Pending Approval", "Your payment receipt is being reviewed by admin.", ToneInfo},
	models.StatusPending:         {"Pending", "Your booking is waiting for admin review.", ToneInfo},
	models.StatusPaymentReceived: {"Payment Received", "Payment confirmed. Booking is being processed.", ToneInfo},
	models.StatusConfirmed:       {"Confirmed", "Booking confirmed. See you at the event!", ToneSuccess},
	models.StatusCompleted:       {"Completed", "Event completed. Thank you!", ToneSuccess},
	models.StatusRejected:        {"Payment Rejected", "Please resubmit a valid payment receipt.", ToneDanger},
}

// CopyFor returns the wording for status. Unknown statuses show the raw
// status with no description.
func CopyFor(status models.BookingStatus) StatusCopy {
	if c, ok := statusCopy[status]; ok {
		return c
	}
	return StatusCopy{Label: string(status), Tone: ToneInfo}
}

// NeedsPayment reports whether the user still has to pay.
func NeedsPayment(status models.BookingStatus) bool {
	switch status {
	case models.StatusAwaitingPayment, models.StatusPendingPayment, models.StatusRejected:
		return true
	}
	return false
}

// PayActionLabel is the wording of the pay button.
func PayActionLabel(status models.BookingStatus) string {
	if status == models.StatusPendingPayment || status == models.StatusRejected {
		return "Resubmit payment"
	}
	return "Pay now"
}

// AdminActionLabel is the admin table's status column.
func AdminActionLabel(rawStatus string) string {
	status := models.NormalizeStatus(rawStatus)
	switch {
	case status == models.StatusCompleted:
		return "COMPLETED"
	case strings.HasPrefix(string(status), "pending"), status == models.StatusUnknown:
		return "PENDING"
	default:
		return strings.ToUpper(strings.Replace(strings.TrimSpace(rawStatus), "_", " ", 1))
	}
}

// Total returns the amount to show for b. A backend total wins; otherwise
// the amount is recomputed from the menu. ok is false when neither is
// possible.
func Total(b models.Booking, catalog *menu.Catalog) (decimal.Decimal, bool) {
	if b.TotalAmount != nil {
		return decimal.NewFromFloat(*b.TotalAmount).Round(2), true
	}
	if _, known := catalog.MainDish(b.MainDish); !known || b.Guests <= 0 {
		return decimal.Zero, false
	}
	return catalog.Total(b.MainDish, b.Drink, b.Dessert, b.Guests), true
}

// TotalDisplay renders Total in ringgit, or Placeholder.
func TotalDisplay(b models.Booking, catalog *menu.Catalog) string {
	total, ok := Total(b, catalog)
	if !ok {
		return Placeholder
	}
	return "RM " + total.StringFixed(2)
}
