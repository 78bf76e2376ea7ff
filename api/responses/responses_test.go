package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestWriteSuccessWrapsData(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	WriteSuccess(rr, map[string]string{"orderId": "abc"})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	body := decodeBody(t, rr)
	data, ok := body["data"].(map[string]any)
	if !ok || data["orderId"] != "abc" {
		t.Fatalf("unexpected envelope %v", body)
	}
}

func TestWriteSuccessStatus(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	WriteSuccessStatus(rr, http.StatusCreated, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}

func TestWriteErrorSurfacesCallerMessages(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	logg := logger.New(logger.Options{ServiceName: "test"})
	err := pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
		WithDetails([]string{"quantity"})

	WriteError(context.Background(), logg, rr, err)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	errBody, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("missing error envelope: %v", body)
	}
	if errBody["code"] != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %v", errBody["code"])
	}
	if errBody["message"] != "quantity must be at least 1" {
		t.Fatalf("unexpected message %v", errBody["message"])
	}
	if errBody["details"] == nil {
		t.Fatal("expected details for validation errors")
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	err := pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("pq: connection refused"), "query failed")

	WriteError(context.Background(), nil, rr, err)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	errBody := body["error"].(map[string]any)
	if errBody["message"] != "internal server error" {
		t.Fatalf("internal detail leaked: %v", errBody["message"])
	}
}

func TestWriteErrorWrapsUntypedErrors(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	WriteError(context.Background(), nil, rr, errors.New("boom"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	errBody := body["error"].(map[string]any)
	if errBody["code"] != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %v", errBody["code"])
	}
}

func TestWriteErrorInsufficientStockMapsToConflict(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for 2 products")

	WriteError(context.Background(), nil, rr, err)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}
