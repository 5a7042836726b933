package services

import (
	"context"

	"github.com/BradenHooton/eventease/internal/api"
	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/reconcile"
)

// MockBackend implements every backend interface for testing. Unset
// functions answer like an empty, healthy backend.
type MockBackend struct {
	LoginFunc               func(ctx context.Context, req api.LoginRequest) (*api.LoginResult, error)
	VerifyMFAFunc           func(ctx context.Context, req api.VerifyMFARequest) (*api.LoginResult, error)
	RegisterFunc            func(ctx context.Context, req api.RegisterRequest) (*api.MessageResponse, error)
	ForgotPasswordFunc      func(ctx context.Context, email string) (*api.MessageResponse, error)
	ResetPasswordFunc       func(ctx context.Context, req api.ResetPasswordRequest) (*api.MessageResponse, error)
	VerifyEmailFunc         func(ctx context.Context, token string) (*api.MessageResponse, error)
	LogoutFunc              func(ctx context.Context) error
	ListBookingsFunc        func(ctx context.Context) ([]reconcile.Record, error)
	GetBookingFunc          func(ctx context.Context, id string) (reconcile.Record, error)
	CreateBookingFunc       func(ctx context.Context, booking reconcile.Record) (reconcile.Record, error)
	UpdateBookingStatusFunc func(ctx context.Context, id string, status models.BookingStatus) error
	UploadReceiptFunc       func(ctx context.Context, bookingID string, blob models.ReceiptBlob) (map[string]any, error)
	ListUsersFunc           func(ctx context.Context) ([]models.User, error)
	ListAllBookingsFunc     func(ctx context.Context) ([]reconcile.Record, error)
}

func (m *MockBackend) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockBackend) VerifyMFA(ctx context.Context, req api.VerifyMFARequest) (*api.LoginResult, error) {
	if m.VerifyMFAFunc != nil {
		return m.VerifyMFAFunc(ctx, req)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockBackend) Register(ctx context.Context, req api.RegisterRequest) (*api.MessageResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return &api.MessageResponse{}, nil
}

func (m *MockBackend) ForgotPassword(ctx context.Context, email string) (*api.MessageResponse, error) {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return &api.MessageResponse{}, nil
}

func (m *MockBackend) ResetPassword(ctx context.Context, req api.ResetPasswordRequest) (*api.MessageResponse, error) {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, req)
	}
	return &api.MessageResponse{}, nil
}

func (m *MockBackend) VerifyEmail(ctx context.Context, token string) (*api.MessageResponse, error) {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, token)
	}
	return &api.MessageResponse{}, nil
}

func (m *MockBackend) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockBackend) ListBookings(ctx context.Context) ([]reconcile.Record, error) {
	if m.ListBookingsFunc != nil {
		return m.ListBookingsFunc(ctx)
	}
	return []reconcile.Record{}, nil
}

func (m *MockBackend) GetBooking(ctx context.Context, id string) (reconcile.Record, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockBackend) CreateBooking(ctx context.Context, booking reconcile.Record) (reconcile.Record, error) {
	if m.CreateBookingFunc != nil {
		return m.CreateBookingFunc(ctx, booking)
	}
	return nil, models.ErrNetwork
}

func (m *MockBackend) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if m.UpdateBookingStatusFunc != nil {
		return m.UpdateBookingStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockBackend) UploadReceipt(ctx context.Context, bookingID string, blob models.ReceiptBlob) (map[string]any, error) {
	if m.UploadReceiptFunc != nil {
		return m.UploadReceiptFunc(ctx, bookingID, blob)
	}
	return map[string]any{}, nil
}

func (m *MockBackend) ListUsers(ctx context.Context) ([]models.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return []models.User{}, nil
}

func (m *MockBackend) ListAllBookings(ctx context.Context) ([]reconcile.Record, error) {
	if m.ListAllBookingsFunc != nil {
		return m.ListAllBookingsFunc(ctx)
	}
	return []reconcile.Record{}, nil
}
