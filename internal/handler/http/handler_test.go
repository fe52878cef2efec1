package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/severance"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/handler/http/response"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/jwt"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/sse"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRunID      = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	testEmployeeID = "5b0c2f1e-8d3a-4c6b-9e7f-1a2b3c4d5e6f"
)

type fakePayrollService struct {
	payroll.PayrollService // unimplemented methods panic

	createFn    func(ctx context.Context, companyID string, req payroll.CreateRunRequest) (payroll.RunResponse, error)
	listFn      func(ctx context.Context, companyID string, filter payroll.RunFilter) (payroll.ListRunResponse, error)
	calculateFn func(ctx context.Context, companyID, runID string) (payroll.RunResponse, error)
	adjustFn    func(ctx context.Context, companyID string, req payroll.AdjustItemRequest) (payroll.ItemResponse, error)
	previewFn   func(ctx context.Context, companyID string, req payroll.PreviewRequest) (payroll.PayDetail, error)
	payslipFn   func(ctx context.Context, companyID, runID, employeeID string) ([]byte, error)
}

func (f *fakePayrollService) CreateRun(ctx context.Context, companyID string, req payroll.CreateRunRequest) (payroll.RunResponse, error) {
	return f.createFn(ctx, companyID, req)
}

func (f *fakePayrollService) ListRuns(ctx context.Context, companyID string, filter payroll.RunFilter) (payroll.ListRunResponse, error) {
	return f.listFn(ctx, companyID, filter)
}

func (f *fakePayrollService) CalculateRun(ctx context.Context, companyID, runID string) (payroll.RunResponse, error) {
	return f.calculateFn(ctx, companyID, runID)
}

func (f *fakePayrollService) AdjustItem(ctx context.Context, companyID string, req payroll.AdjustItemRequest) (payroll.ItemResponse, error) {
	return f.adjustFn(ctx, companyID, req)
}

func (f *fakePayrollService) PreviewEmployee(ctx context.Context, companyID string, req payroll.PreviewRequest) (payroll.PayDetail, error) {
	return f.previewFn(ctx, companyID, req)
}

func (f *fakePayrollService) Payslip(ctx context.Context, companyID, runID, employeeID string) ([]byte, error) {
	return f.payslipFn(ctx, companyID, runID, employeeID)
}

type fakeSeveranceService struct {
	calculateFn func(ctx context.Context, companyID string, req severance.CalculateSeveranceRequest) (severance.SeveranceDetail, error)
}

func (f *fakeSeveranceService) CalculateSeverance(ctx context.Context, companyID string, req severance.CalculateSeveranceRequest) (severance.SeveranceDetail, error) {
	return f.calculateFn(ctx, companyID, req)
}

type testServer struct {
	handler http.Handler
	jwt     jwt.Service
	hub     *sse.Hub
}

func newTestServer(t *testing.T, payrollSvc payroll.PayrollService, severanceSvc severance.SeveranceService) *testServer {
	t.Helper()
	jwtService := jwt.NewJWTService("test-secret", time.Hour)
	hub := sse.NewHub()
	router := NewRouter(
		RouterConfig{},
		jwtService,
		NewPayrollHandler(payrollSvc),
		NewSeveranceHandler(severanceSvc),
		NewEventsHandler(hub, jwtService),
	)
	return &testServer{handler: router, jwt: jwtService, hub: hub}
}

func (s *testServer) token(t *testing.T, companyID string) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(jwt.Claims{UserID: "user-1", CompanyID: companyID, Role: "admin"})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateRun_UsesCompanyFromToken(t *testing.T) {
	var gotCompany string
	svc := &fakePayrollService{
		createFn: func(ctx context.Context, companyID string, req payroll.CreateRunRequest) (payroll.RunResponse, error) {
			gotCompany = companyID
			return payroll.RunResponse{ID: testRunID, CompanyID: companyID, YearMonth: req.YearMonth, Status: payroll.RunStatusDraft}, nil
		},
	}
	srv := newTestServer(t, svc, nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/payroll/runs", srv.token(t, "company-1"), map[string]string{"year_month": "2025-03"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "company-1", gotCompany)
	assert.True(t, decodeBody(t, rec).Success)
}

func TestRoutes_RequireToken(t *testing.T) {
	srv := newTestServer(t, &fakePayrollService{}, nil)

	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/runs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sseToken, _, err := srv.jwt.GenerateSSEToken(jwt.Claims{UserID: "user-1", CompanyID: "company-1"})
	require.NoError(t, err)
	rec = srv.do(t, http.MethodGet, "/api/v1/payroll/runs", sseToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListRuns_ParsesQuery(t *testing.T) {
	var got payroll.RunFilter
	svc := &fakePayrollService{
		listFn: func(ctx context.Context, companyID string, filter payroll.RunFilter) (payroll.ListRunResponse, error) {
			got = filter
			return payroll.ListRunResponse{Page: filter.Page, Limit: filter.Limit}, nil
		},
	}
	srv := newTestServer(t, svc, nil)

	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/runs?year=2025&status=REVIEW&page=2&limit=5", srv.token(t, "company-1"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Year)
	assert.Equal(t, 2025, *got.Year)
	require.NotNil(t, got.Status)
	assert.Equal(t, "REVIEW", *got.Status)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Limit)

	rec = srv.do(t, http.MethodGet, "/api/v1/payroll/runs?year=abc", srv.token(t, "company-1"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRun_RejectsMalformedID(t *testing.T) {
	srv := newTestServer(t, &fakePayrollService{}, nil)
	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/runs/not-a-uuid", srv.token(t, "company-1"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateRun_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"not found", payroll.ErrRunNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"not draft", payroll.ErrRunNotDraft, http.StatusConflict, "CONFLICT"},
		{"status race", payroll.ErrRunStatusConflict, http.StatusConflict, "CONFLICT"},
		{"employee failure", &payroll.EmployeeCalculationError{EmployeeID: "emp-4", Err: errors.New("boom")}, http.StatusInternalServerError, "CALCULATION_FAILED"},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePayrollService{
				calculateFn: func(ctx context.Context, companyID, runID string) (payroll.RunResponse, error) {
					return payroll.RunResponse{}, tt.err
				},
			}
			srv := newTestServer(t, svc, nil)

			rec := srv.do(t, http.MethodPost, "/api/v1/payroll/runs/"+testRunID+"/calculate", srv.token(t, "company-1"), nil)

			assert.Equal(t, tt.wantCode, rec.Code)
			resp := decodeBody(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}

func TestAdjustItem_BindsPathParams(t *testing.T) {
	var got payroll.AdjustItemRequest
	svc := &fakePayrollService{
		adjustFn: func(ctx context.Context, companyID string, req payroll.AdjustItemRequest) (payroll.ItemResponse, error) {
			got = req
			return payroll.ItemResponse{RunID: req.RunID, EmployeeID: req.EmployeeID, IsManuallyAdjusted: true}, nil
		},
	}
	srv := newTestServer(t, svc, nil)

	rec := srv.do(t, http.MethodPatch, "/api/v1/payroll/runs/"+testRunID+"/items/"+testEmployeeID, srv.token(t, "company-1"),
		map[string]string{"bonus": "500000", "reason": "Q1 incentive"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testRunID, got.RunID)
	assert.Equal(t, testEmployeeID, got.EmployeeID)
	require.NotNil(t, got.Bonus)
	assert.True(t, decimal.NewFromInt(500000).Equal(*got.Bonus))
	assert.Nil(t, got.OtherDeductions)
}

func TestAdjustItem_ValidationIs422(t *testing.T) {
	svc := &fakePayrollService{
		adjustFn: func(ctx context.Context, companyID string, req payroll.AdjustItemRequest) (payroll.ItemResponse, error) {
			return payroll.ItemResponse{}, validator.ValidationErrors{{Field: "reason", Message: "is required"}}
		},
	}
	srv := newTestServer(t, svc, nil)

	rec := srv.do(t, http.MethodPatch, "/api/v1/payroll/runs/"+testRunID+"/items/"+testEmployeeID, srv.token(t, "company-1"),
		map[string]string{"bonus": "1"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeBody(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "is required", resp.Error.Details["reason"])
}

func TestPayslip_ServesPDF(t *testing.T) {
	svc := &fakePayrollService{
		payslipFn: func(ctx context.Context, companyID, runID, employeeID string) ([]byte, error) {
			return []byte("%PDF-1.3 test"), nil
		},
	}
	srv := newTestServer(t, svc, nil)

	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/runs/"+testRunID+"/items/"+testEmployeeID+"/payslip", srv.token(t, "company-1"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payslip-"+testEmployeeID+".pdf")
	assert.Equal(t, "%PDF-1.3 test", rec.Body.String())
}

func TestPreviewEmployee_PassesYearMonth(t *testing.T) {
	var got payroll.PreviewRequest
	svc := &fakePayrollService{
		previewFn: func(ctx context.Context, companyID string, req payroll.PreviewRequest) (payroll.PayDetail, error) {
			got = req
			return payroll.PayDetail{EmployeeID: req.EmployeeID}, nil
		},
	}
	srv := newTestServer(t, svc, nil)

	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/preview/"+testEmployeeID+"?year_month=2025-03", srv.token(t, "company-1"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testEmployeeID, got.EmployeeID)
	assert.Equal(t, "2025-03", got.YearMonth)
}

func TestSeverance_ErrorMapping(t *testing.T) {
	sev := &fakeSeveranceService{
		calculateFn: func(ctx context.Context, companyID string, req severance.CalculateSeveranceRequest) (severance.SeveranceDetail, error) {
			return severance.SeveranceDetail{}, severance.ErrTerminationBeforeHire
		},
	}
	srv := newTestServer(t, &fakePayrollService{}, sev)

	rec := srv.do(t, http.MethodPost, "/api/v1/payroll/severance", srv.token(t, "company-1"),
		map[string]string{"employee_id": testEmployeeID, "termination_date": "2025-04-01"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEventsToken_IssuesSSEToken(t *testing.T) {
	srv := newTestServer(t, &fakePayrollService{}, nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/payroll/runs/events/token", srv.token(t, "company-1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Token     string `json:"token"`
			ExpiresIn int    `json:"expires_in"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 300, body.Data.ExpiresIn)

	claims, err := srv.jwt.ValidateSSEToken(body.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "company-1", claims.CompanyID)
}

func TestEventsStream_RejectsAccessToken(t *testing.T) {
	srv := newTestServer(t, &fakePayrollService{}, nil)

	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/runs/events?token="+srv.token(t, "company-1"), "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/payroll/runs/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventsStream_DeliversCompanyEvents(t *testing.T) {
	srv := newTestServer(t, &fakePayrollService{}, nil)
	sseToken, _, err := srv.jwt.GenerateSSEToken(jwt.Claims{UserID: "user-1", CompanyID: "company-1"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payroll/runs/events?token="+sseToken, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.handler.ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return srv.hub.SubscriberCount("company-1") == 1 }, time.Second, 5*time.Millisecond)
	srv.hub.Publish("company-2", sse.Event{Event: payroll.EventRunReviewed, Data: map[string]string{"run_id": "other"}})
	srv.hub.Publish("company-1", sse.Event{Event: payroll.EventRunReviewed, Data: map[string]string{"run_id": testRunID}})

	// Let the stream write before closing it.
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: "+payroll.EventRunReviewed+"\ndata: {\"run_id\":\""+testRunID+"\"}")
	assert.NotContains(t, body, "other")
	assert.Equal(t, 0, srv.hub.SubscriberCount("company-1"))
}
