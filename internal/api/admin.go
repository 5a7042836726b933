package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/reconcile"
)

// ListUsers returns every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var raw json.RawMessage
	if err := c.call(ctx, c.authed, http.MethodGet, "/api/admin/users", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[models.User](raw, "users")
}

// ListAllBookings returns every booking in the system. Admin only; the
// records are often summaries and may need GetBooking for details.
func (c *Client) ListAllBookings(ctx context.Context) ([]reconcile.Record, error) {
	var raw json.RawMessage
	if err := c.call(ctx, c.authed, http.MethodGet, "/api/admin/bookings", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[reconcile.Record](raw, "bookings")
}
