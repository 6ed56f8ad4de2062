// Package mocks provides mock implementations for testing the transport layer.
package mocks

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/jamesprial/coffee-shop/internal/drink"
	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
	"github.com/jamesprial/coffee-shop/internal/model"
	"github.com/jamesprial/coffee-shop/internal/oauth"
)

// DrinkService is a mock implementation of transportcore.DrinkService.
// Unset funcs return zero values.
type DrinkService struct {
	ListFunc   func(ctx context.Context, authorization string) ([]model.ShortDrink, error)
	DetailFunc func(ctx context.Context, authorization string) ([]model.LongDrink, error)
	CreateFunc func(ctx context.Context, authorization string, body drink.Decoder) (model.LongDrink, error)
	UpdateFunc func(ctx context.Context, authorization string, id int64, body drink.Decoder) (model.LongDrink, error)
	DeleteFunc func(ctx context.Context, authorization string, id int64) error
}

// List calls the mock ListFunc.
func (m *DrinkService) List(ctx context.Context, authorization string) ([]model.ShortDrink, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, authorization)
	}
	return []model.ShortDrink{}, nil
}

// Detail calls the mock DetailFunc.
func (m *DrinkService) Detail(ctx context.Context, authorization string) ([]model.LongDrink, error) {
	if m.DetailFunc != nil {
		return m.DetailFunc(ctx, authorization)
	}
	return []model.LongDrink{}, nil
}

// Create calls the mock CreateFunc.
func (m *DrinkService) Create(ctx context.Context, authorization string, body drink.Decoder) (model.LongDrink, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, authorization, body)
	}
	return model.LongDrink{}, nil
}

// Update calls the mock UpdateFunc.
func (m *DrinkService) Update(ctx context.Context, authorization string, id int64, body drink.Decoder) (model.LongDrink, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, authorization, id, body)
	}
	return model.LongDrink{ID: id}, nil
}

// Delete calls the mock DeleteFunc.
func (m *DrinkService) Delete(ctx context.Context, authorization string, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, authorization, id)
	}
	return nil
}

// MetadataService is a mock implementation of oauth.MetadataService.
type MetadataService struct {
	GetMetadataFunc    func(ctx context.Context) (*oauth.ProtectedResourceMetadata, error)
	GetMetadataURLFunc func() string
}

// GetMetadata calls the mock GetMetadataFunc.
func (m *MetadataService) GetMetadata(ctx context.Context) (*oauth.ProtectedResourceMetadata, error) {
	if m.GetMetadataFunc != nil {
		return m.GetMetadataFunc(ctx)
	}
	return &oauth.ProtectedResourceMetadata{}, nil
}

// GetMetadataURL calls the mock GetMetadataURLFunc.
func (m *MetadataService) GetMetadataURL() string {
	if m.GetMetadataURLFunc != nil {
		return m.GetMetadataURLFunc()
	}
	return "https://example.com/.well-known/oauth-protected-resource"
}

// Pinger is a mock storage connection for health checks.
type Pinger struct {
	Err   error
	Calls int
}

// PingContext records the call and returns Err.
func (m *Pinger) PingContext(context.Context) error {
	m.Calls++
	return m.Err
}

// Responder is a mock implementation of transportcore.Responder. It records
// calls and writes a minimal envelope using the real status mapping.
type Responder struct {
	mu sync.Mutex

	SuccessCalled bool
	SuccessFields map[string]any
	ErrorCalled   bool
	Err           error
}

// Success records the call and writes a 200 envelope.
func (m *Responder) Success(w http.ResponseWriter, _ *http.Request, fields map[string]any) {
	m.mu.Lock()
	m.SuccessCalled = true
	m.SuccessFields = fields
	m.mu.Unlock()

	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

// Error records the call and writes the resolved status and tag.
func (m *Responder) Error(w http.ResponseWriter, _ *http.Request, err error) {
	m.mu.Lock()
	m.ErrorCalled = true
	m.Err = err
	m.mu.Unlock()

	res := ierrors.Resolve(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": res.Code, "message": res.Message})
}

// Reset clears all recorded state.
func (m *Responder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuccessCalled = false
	m.SuccessFields = nil
	m.ErrorCalled = false
	m.Err = nil
}
