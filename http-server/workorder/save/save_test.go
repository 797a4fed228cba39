package save

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tender-backend/internal/lib/api"
	"tender-backend/internal/lib/validate"
	"tender-backend/internal/service/workorder"
	"tender-backend/internal/storage"
)

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) Create(ctx context.Context, d workorder.Draft) (*storage.WorkOrder, error) {
	args := m.Called(ctx, d)

	var wo *storage.WorkOrder
	if args.Get(0) != nil {
		wo = args.Get(0).(*storage.WorkOrder)
	}

	return wo, args.Error(1)
}

func (m *MockOrders) AddQuotation(ctx context.Context, requestID string, q workorder.Quotation) (*storage.WorkOrder, error) {
	args := m.Called(ctx, requestID, q)

	var wo *storage.WorkOrder
	if args.Get(0) != nil {
		wo = args.Get(0).(*storage.WorkOrder)
	}

	return wo, args.Error(1)
}

func do(t *testing.T, orders *MockOrders, target, body string) (*httptest.ResponseRecorder, api.Response) {
	t.Helper()

	router := chi.NewRouter()
	router.Post("/create", Create(slog.Default(), orders))
	router.Post("/{request_id}/quotations", AddQuotation(slog.Default(), orders))

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var resp api.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return rr, resp
}

func TestCreate(t *testing.T) {
	orders := new(MockOrders)
	orders.On("Create", mock.Anything, workorder.Draft{
		ProjectID:         "PRJ-1",
		MaterialsRequired: []workorder.MaterialInput{{MaterialName: "Cement", Quantity: 10, Unit: "Bags"}},
	}).Return(&storage.WorkOrder{
		RequestID:         "WO-00001",
		ProjectID:         "PRJ-1",
		MaterialsRequired: []storage.Material{{MaterialName: "Cement", Quantity: 10, Unit: "Bags", ExQuantity: 10}},
		Status:            "Request Raised",
	}, nil)

	rr, resp := do(t, orders, "/create",
		`{"projectId":"PRJ-1","materialsRequired":[{"materialName":"Cement","quantity":10,"unit":"Bags"}]}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "WO-00001", data["requestId"])
	assert.Equal(t, 10.0, data["materialsRequired"].([]any)[0].(map[string]any)["ex_quantity"])
	orders.AssertExpectations(t)
}

func TestCreate_Invalid(t *testing.T) {
	orders := new(MockOrders)
	orders.On("Create", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("service.workorder.Create: %w", &validate.Error{Fields: []string{"Draft.projectId (required)"}}))

	rr, resp := do(t, orders, "/create", `{"materialsRequired":[]}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, resp.Error, "projectId")

	rr, _ = do(t, orders, "/create", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	orders.AssertNumberOfCalls(t, "Create", 1)
}

func TestAddQuotation(t *testing.T) {
	orders := new(MockOrders)
	q := workorder.Quotation{VendorName: "Acme", Amount: 125000, Remarks: "incl. transport"}
	orders.On("AddQuotation", mock.Anything, "WO-00001", q).Return(&storage.WorkOrder{
		RequestID:        "WO-00001",
		VendorQuotations: []storage.VendorQuotation{{VendorName: "Acme", Amount: 125000}},
		Status:           "Quotation Received",
	}, nil)
	orders.On("AddQuotation", mock.Anything, "WO-09999", q).Return(nil, storage.ErrNotFound)

	body := `{"vendorName":"Acme","amount":125000,"remarks":"incl. transport"}`

	rr, resp := do(t, orders, "/WO-00001/quotations", body)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Quotation Received", resp.Data.(map[string]any)["status"])

	rr, _ = do(t, orders, "/WO-09999/quotations", body)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	orders.AssertExpectations(t)
}
