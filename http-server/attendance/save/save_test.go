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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tender-backend/internal/lib/api"
	"tender-backend/internal/service/workforce"
	"tender-backend/internal/storage"
)

type MockAttendance struct {
	mock.Mock
}

func (m *MockAttendance) Mark(ctx context.Context, b workforce.Batch) ([]storage.Attendance, error) {
	args := m.Called(ctx, b)

	var records []storage.Attendance
	if args.Get(0) != nil {
		records = args.Get(0).([]storage.Attendance)
	}

	return records, args.Error(1)
}

func TestMark(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	batch := workforce.Batch{TenderID: "TND-00001", Date: "2024-06-03", Entries: []workforce.Entry{
		{WorkerID: "CW-00001", Status: "Present", HoursWorked: 8},
		{WorkerID: "CW-00002", Status: "HalfDay", HoursWorked: 4, Remarks: "left at noon"},
	}}

	att := new(MockAttendance)
	att.On("Mark", mock.Anything, batch).Return([]storage.Attendance{
		{TenderID: "TND-00001", WorkerID: "CW-00001", Date: day, Status: "Present", HoursWorked: 8},
		{TenderID: "TND-00001", WorkerID: "CW-00002", Date: day, Status: "HalfDay", HoursWorked: 4},
	}, nil)

	body := `{"tender_id":"TND-00001","date":"2024-06-03","entries":[
		{"worker_id":"CW-00001","status":"Present","hours_worked":8},
		{"worker_id":"CW-00002","status":"HalfDay","hours_worked":4,"remarks":"left at noon"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/attendance/mark", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	Mark(slog.Default(), att).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp api.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Count)
	assert.Equal(t, 2, *resp.Count)
	att.AssertExpectations(t)
}

func TestMark_UnknownWorker(t *testing.T) {
	att := new(MockAttendance)
	att.On("Mark", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("worker CW-00042: %w", storage.ErrNotFound))

	req := httptest.NewRequest(http.MethodPost, "/api/attendance/mark",
		strings.NewReader(`{"tender_id":"TND-00001","date":"2024-06-03","entries":[{"worker_id":"CW-00042","status":"Present"}]}`))
	rr := httptest.NewRecorder()

	Mark(slog.Default(), att).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "CW-00042")
}
