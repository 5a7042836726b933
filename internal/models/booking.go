package models

import (
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusAwaitingPayment BookingStatus = "awaiting_payment"
	StatusPendingReview   BookingStatus = "pending_review"
	StatusPendingApproval BookingStatus = "pending_approval"
	StatusPaymentReceived BookingStatus = "payment_received"
	StatusConfirmed       BookingStatus = "confirmed"
	StatusCompleted       BookingStatus = "completed"
	StatusRejected        BookingStatus = "rejected"
	StatusPending         BookingStatus = "pending"
	StatusPendingPayment  BookingStatus = "pending_payment"
	StatusUnknown         BookingStatus = "unknown"
)

// NormalizeStatus lower-cases, trims and snake-cases a free-form status.
func NormalizeStatus(s string) BookingStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatusUnknown
	}
	return BookingStatus(strings.Join(strings.Fields(s), "_"))
}

// Payment is the receipt sub-record attached on payment submission.
type Payment struct {
	AmountPaid    float64    `json:"amountPaid"`
	ReceiptName   string     `json:"receiptName,omitempty"`
	ReceiptStored bool       `json:"receiptStored"`
	Notes         string     `json:"notes,omitempty"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
}

// Booking is the normalised view of a booking regardless of where the
// backend placed each field. Empty strings mean the field was absent.
type Booking struct {
	ID            string
	OwnerID       string
	OwnerEmail    string
	OwnerName     string
	CreatedAt     *time.Time
	BookingDate   string
	BookingTime   string
	EventType     string
	Guests        int
	MainDish      string
	Sides         []string
	Drink         string
	Dessert       string
	Notes         string
	TotalAmount   *float64
	Status        BookingStatus
	PaymentStatus string
	ReceiptName   string
	Payment       *Payment
	Local         bool
}

// HasOwner reports whether the booking carries any ownership field.
func (b *Booking) HasOwner() bool {
	return strings.TrimSpace(b.OwnerID) != "" || strings.TrimSpace(b.OwnerEmail) != ""
}
