package mocks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jamesprial/coffee-shop/internal/drink"
	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
	"github.com/jamesprial/coffee-shop/internal/model"
	"github.com/jamesprial/coffee-shop/internal/oauth"
	"github.com/jamesprial/coffee-shop/internal/transport/internal/handlers"
	"github.com/jamesprial/coffee-shop/internal/transport/transportcore"
)

// Compile-time interface checks.
var (
	_ transportcore.DrinkService = (*DrinkService)(nil)
	_ transportcore.Responder    = (*Responder)(nil)
	_ oauth.MetadataService      = (*MetadataService)(nil)
	_ handlers.Pinger            = (*Pinger)(nil)
)

func TestDrinkService_Defaults(t *testing.T) {
	t.Parallel()

	m := &DrinkService{}
	ctx := context.Background()

	list, err := m.List(ctx, "")
	if err != nil || list == nil {
		t.Errorf("List() = %v, %v, want empty non-nil slice", list, err)
	}
	detail, err := m.Detail(ctx, "")
	if err != nil || detail == nil {
		t.Errorf("Detail() = %v, %v, want empty non-nil slice", detail, err)
	}
	updated, err := m.Update(ctx, "", 7, nil)
	if err != nil || updated.ID != 7 {
		t.Errorf("Update() = %+v, %v, want id 7", updated, err)
	}
	if err := m.Delete(ctx, "", 1); err != nil {
		t.Errorf("Delete() = %v, want nil", err)
	}
}

func TestDrinkService_Funcs(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	var gotAuth string
	m := &DrinkService{
		CreateFunc: func(_ context.Context, authorization string, _ drink.Decoder) (model.LongDrink, error) {
			gotAuth = authorization
			return model.LongDrink{}, wantErr
		},
	}

	if _, err := m.Create(context.Background(), "Bearer x", nil); !errors.Is(err, wantErr) {
		t.Errorf("Create() error = %v, want %v", err, wantErr)
	}
	if gotAuth != "Bearer x" {
		t.Errorf("CreateFunc saw authorization %q", gotAuth)
	}
}

func TestMetadataService_DefaultURL(t *testing.T) {
	t.Parallel()

	m := &MetadataService{}
	if got := m.GetMetadataURL(); got != "https://example.com/.well-known/oauth-protected-resource" {
		t.Errorf("GetMetadataURL() = %q", got)
	}
	meta, err := m.GetMetadata(context.Background())
	if err != nil || meta == nil {
		t.Errorf("GetMetadata() = %v, %v", meta, err)
	}
}

func TestPinger(t *testing.T) {
	t.Parallel()

	m := &Pinger{Err: errors.New("down")}
	if err := m.PingContext(context.Background()); err == nil {
		t.Error("PingContext() = nil, want error")
	}
	if m.Calls != 1 {
		t.Errorf("Calls = %d, want 1", m.Calls)
	}
}

func TestResponder_RecordsAndReset(t *testing.T) {
	t.Parallel()

	m := &Responder{}
	req := httptest.NewRequest(http.MethodGet, "/drinks", nil)

	w := httptest.NewRecorder()
	m.Error(w, req, ierrors.NewNotFoundError("drink", 1))
	if !m.ErrorCalled || w.Code != http.StatusNotFound {
		t.Errorf("Error() called=%v status=%d, want true 404", m.ErrorCalled, w.Code)
	}

	w = httptest.NewRecorder()
	m.Success(w, req, map[string]any{"drinks": []int{}})
	if !m.SuccessCalled || w.Code != http.StatusOK {
		t.Errorf("Success() called=%v status=%d, want true 200", m.SuccessCalled, w.Code)
	}

	m.Reset()
	if m.ErrorCalled || m.SuccessCalled || m.Err != nil || m.SuccessFields != nil {
		t.Error("Reset() left recorded state")
	}
}
