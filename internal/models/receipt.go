package models

import "time"

// ReceiptBlob is a locally cached payment receipt, keyed by booking id.
type ReceiptBlob struct {
	BookingID   string
	Content     []byte
	ContentType string
	FileName    string
	StoredAt    time.Time
}
