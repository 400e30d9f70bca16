package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/arithmetic-dispatcher/domain/arithmetic"
	"github.com/example/arithmetic-dispatcher/modules/calculator"
	"github.com/example/arithmetic-dispatcher/modules/stats"
	monoerrors "github.com/go-monolith/mono/pkg/errors"
	"github.com/go-monolith/mono/pkg/types"
)

type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)         {}
func (m *mockLogger) Info(_ string, _ ...any)          {}
func (m *mockLogger) Warn(_ string, _ ...any)          {}
func (m *mockLogger) Error(_ string, _ ...any)         {}
func (m *mockLogger) With(_ ...any) types.Logger       { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger   { return m }

// mockCalculatorPort implements calculator.CalculatorPort for testing
type mockCalculatorPort struct {
	computeFunc      func(ctx context.Context, req *calculator.CalculateRequest) (*calculator.CalculateResponse, error)
	computeBatchFunc func(ctx context.Context, req *calculator.BatchRequest) (*calculator.BatchResponse, error)
	operationsFunc   func(ctx context.Context) (*calculator.OperationsResponse, error)
}

func (m *mockCalculatorPort) Compute(ctx context.Context, req *calculator.CalculateRequest) (*calculator.CalculateResponse, error) {
	if m.computeFunc != nil {
		return m.computeFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCalculatorPort) ComputeBatch(ctx context.Context, req *calculator.BatchRequest) (*calculator.BatchResponse, error) {
	if m.computeBatchFunc != nil {
		return m.computeBatchFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCalculatorPort) Operations(ctx context.Context) (*calculator.OperationsResponse, error) {
	if m.operationsFunc != nil {
		return m.operationsFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

// mockStatsPort implements stats.StatsPort for testing
type mockStatsPort struct {
	getStatsFunc func(ctx context.Context) (*stats.StatsResponse, error)
}

func (m *mockStatsPort) GetStats(ctx context.Context) (*stats.StatsResponse, error) {
	if m.getStatsFunc != nil {
		return m.getStatsFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

// dispatchingCompute answers like the calculator module without NATS.
func dispatchingCompute(_ context.Context, req *calculator.CalculateRequest) (*calculator.CalculateResponse, error) {
	o := arithmetic.Dispatch(req.A, req.B, req.Operation)
	resp := &calculator.CalculateResponse{
		ID:        "calc-1",
		Operation: req.Operation,
		OK:        o.OK(),
		Text:      o.String(),
	}
	if v, ok := o.Value(); ok {
		resp.Result = &v
	} else {
		resp.Error = o.Kind().String()
		resp.ErrorKind = o.Kind().Code()
	}
	return resp, nil
}

func newTestModule(calc calculator.CalculatorPort, st stats.StatsPort) *APIModule {
	m := NewModule(3000, 2, &mockLogger{})
	m.calculator = calc
	m.stats = st
	return m
}

func doRequest(t *testing.T, m *APIModule, req *http.Request) (int, []byte) {
	t.Helper()

	app := m.newApp()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("io.ReadAll() error = %v", err)
	}
	return resp.StatusCode, body
}

func TestComputeJSON(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		wantOK         bool
		wantResult     float64
		wantErrorKind  string
	}{
		{
			name:           "addition",
			body:           `{"a":10,"b":5,"operation":"addition"}`,
			expectedStatus: http.StatusOK,
			wantOK:         true,
			wantResult:     15,
		},
		{
			name:           "division",
			body:           `{"a":10,"b":5,"operation":"division"}`,
			expectedStatus: http.StatusOK,
			wantOK:         true,
			wantResult:     2,
		},
		{
			name:           "division by zero is data",
			body:           `{"a":10,"b":0,"operation":"division"}`,
			expectedStatus: http.StatusOK,
			wantErrorKind:  "division_by_zero",
		},
		{
			name:           "invalid operation is data",
			body:           `{"a":10,"b":5,"operation":"exponentiation"}`,
			expectedStatus: http.StatusOK,
			wantErrorKind:  "invalid_operation",
		},
		{
			name:           "malformed body",
			body:           `{"a":"ten"`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModule(&mockCalculatorPort{computeFunc: dispatchingCompute}, &mockStatsPort{})

			req := httptest.NewRequest("POST", "/api/v1/compute", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			status, body := doRequest(t, m, req)
			if status != tt.expectedStatus {
				t.Fatalf("status = %v, want %v (body %s)", status, tt.expectedStatus, body)
			}
			if status != http.StatusOK {
				return
			}

			var got ComputeResponse
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if got.OK != tt.wantOK {
				t.Errorf("ok = %v, want %v", got.OK, tt.wantOK)
			}
			if got.ErrorKind != tt.wantErrorKind {
				t.Errorf("error_kind = %q, want %q", got.ErrorKind, tt.wantErrorKind)
			}
			if tt.wantOK {
				if got.Result == nil || *got.Result != tt.wantResult {
					t.Errorf("result = %v, want %v", got.Result, tt.wantResult)
				}
			} else if got.Result != nil {
				t.Errorf("result = %v, want nil", *got.Result)
			}
		})
	}
}

func TestComputeQuery(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "multiplication",
			query:          "?a=10&b=5&operation=multiplication",
			expectedStatus: http.StatusOK,
			expectedBody:   `"result":50`,
		},
		{
			name:           "missing operation is invalid",
			query:          "?a=10&b=5",
			expectedStatus: http.StatusOK,
			expectedBody:   `"error_kind":"invalid_operation"`,
		},
		{
			name:           "non-numeric operand",
			query:          "?a=ten&b=5&operation=addition",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `'a' is not a number`,
		},
		{
			name:           "missing operand a",
			query:          "?b=5&operation=addition",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `'a' is required`,
		},
		{
			name:           "missing operand b",
			query:          "?a=1&operation=addition",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `'b' is required`,
		},
		{
			name:           "empty operand b",
			query:          "?a=1&b=&operation=division",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `'b' is required`,
		},
		{
			name:           "non-numeric divisor",
			query:          "?a=1&b=x&operation=division",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `'b' is not a number`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModule(&mockCalculatorPort{computeFunc: dispatchingCompute}, &mockStatsPort{})

			status, body := doRequest(t, m, httptest.NewRequest("GET", "/api/v1/compute"+tt.query, nil))
			if status != tt.expectedStatus {
				t.Errorf("status = %v, want %v", status, tt.expectedStatus)
			}
			if !strings.Contains(string(body), tt.expectedBody) {
				t.Errorf("body = %s, want to contain %s", body, tt.expectedBody)
			}
		})
	}
}

func TestCompute_PortFailure(t *testing.T) {
	m := newTestModule(&mockCalculatorPort{}, &mockStatsPort{})

	req := httptest.NewRequest("POST", "/api/v1/compute", strings.NewReader(`{"a":1,"b":2,"operation":"addition"}`))
	req.Header.Set("Content-Type", "application/json")

	status, body := doRequest(t, m, req)
	if status != http.StatusInternalServerError {
		t.Errorf("status = %v, want 500", status)
	}
	if !strings.Contains(string(body), `"compute_failed"`) {
		t.Errorf("body = %s, want compute_failed", body)
	}
}

func limitExceeded(service string) error {
	return fmt.Errorf("%s service call failed: %w", service, &monoerrors.RemoteError{
		ServiceName: service,
		ModuleName:  "calculator",
		Message:     "rate limit exceeded for service " + service,
		ErrorType:   "limitexceeded",
	})
}

func TestCompute_RateLimited(t *testing.T) {
	calc := &mockCalculatorPort{
		computeFunc: func(_ context.Context, _ *calculator.CalculateRequest) (*calculator.CalculateResponse, error) {
			return nil, limitExceeded("compute")
		},
		computeBatchFunc: func(_ context.Context, _ *calculator.BatchRequest) (*calculator.BatchResponse, error) {
			return nil, limitExceeded("compute-batch")
		},
	}

	tests := []struct {
		name string
		req  func() *http.Request
	}{
		{
			name: "json",
			req: func() *http.Request {
				r := httptest.NewRequest("POST", "/api/v1/compute", strings.NewReader(`{"a":1,"b":2,"operation":"addition"}`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
		},
		{
			name: "query",
			req: func() *http.Request {
				return httptest.NewRequest("GET", "/api/v1/compute?a=1&b=2&operation=addition", nil)
			},
		},
		{
			name: "batch",
			req: func() *http.Request {
				r := httptest.NewRequest("POST", "/api/v1/compute/batch", strings.NewReader(`{"items":[{"a":1,"b":2,"operation":"addition"}]}`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModule(calc, &mockStatsPort{})

			status, body := doRequest(t, m, tt.req())
			if status != http.StatusTooManyRequests {
				t.Errorf("status = %v, want 429", status)
			}

			var got ErrorResponse
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if got.Error != "rate_limited" {
				t.Errorf("error = %q, want rate_limited", got.Error)
			}
			if !strings.Contains(got.Message, "rate limit exceeded") {
				t.Errorf("message = %q", got.Message)
			}
		})
	}
}

func TestComputeBatch(t *testing.T) {
	var received *calculator.BatchRequest
	calc := &mockCalculatorPort{
		computeBatchFunc: func(ctx context.Context, req *calculator.BatchRequest) (*calculator.BatchResponse, error) {
			received = req
			resp := &calculator.BatchResponse{BatchID: "batch-1"}
			for _, item := range req.Items {
				r, _ := dispatchingCompute(ctx, &item)
				resp.Results = append(resp.Results, *r)
				if r.OK {
					resp.Succeeded++
				} else {
					resp.Failed++
				}
			}
			return resp, nil
		},
	}

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "two items",
			body:           `{"items":[{"a":10,"b":5,"operation":"subtraction"},{"a":10,"b":0,"operation":"division"}]}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"succeeded":1,"failed":1`,
		},
		{
			name:           "empty batch",
			body:           `{"items":[]}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"validation_error"`,
		},
		{
			name:           "over limit",
			body:           `{"items":[{"operation":"addition"},{"operation":"addition"},{"operation":"addition"}]}`,
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedBody:   `"batch_too_large"`,
		},
		{
			name:           "malformed body",
			body:           `{"items":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid_request"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			received = nil
			m := newTestModule(calc, &mockStatsPort{})

			req := httptest.NewRequest("POST", "/api/v1/compute/batch", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			status, body := doRequest(t, m, req)
			if status != tt.expectedStatus {
				t.Errorf("status = %v, want %v (body %s)", status, tt.expectedStatus, body)
			}
			if !strings.Contains(string(body), tt.expectedBody) {
				t.Errorf("body = %s, want to contain %s", body, tt.expectedBody)
			}
			if tt.expectedStatus != http.StatusOK && received != nil {
				t.Error("calculator port should not be called for rejected batches")
			}
		})
	}
}

func TestListOperations(t *testing.T) {
	calc := &mockCalculatorPort{
		operationsFunc: func(ctx context.Context) (*calculator.OperationsResponse, error) {
			return &calculator.OperationsResponse{Operations: []calculator.OperationInfo{
				{Name: "addition", Symbol: "+", Aliases: []string{"suma"}},
				{Name: "division", Symbol: "/"},
			}}, nil
		},
	}
	m := newTestModule(calc, &mockStatsPort{})

	status, body := doRequest(t, m, httptest.NewRequest("GET", "/api/v1/operations", nil))
	if status != http.StatusOK {
		t.Fatalf("status = %v, want 200", status)
	}

	var got ListOperationsResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(got.Operations) != 2 || got.Operations[0].Aliases[0] != "suma" {
		t.Errorf("operations = %+v", got.Operations)
	}
}

func TestGetStats(t *testing.T) {
	seen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	st := &mockStatsPort{
		getStatsFunc: func(ctx context.Context) (*stats.StatsResponse, error) {
			return &stats.StatsResponse{
				Total:       3,
				Succeeded:   2,
				Failed:      1,
				ByOperation: map[string]int64{"addition": 3},
				ByErrorKind: map[string]int64{"division_by_zero": 1},
				LastSeenAt:  &seen,
			}, nil
		},
	}
	m := newTestModule(&mockCalculatorPort{}, st)

	status, body := doRequest(t, m, httptest.NewRequest("GET", "/api/v1/stats", nil))
	if status != http.StatusOK {
		t.Fatalf("status = %v, want 200", status)
	}

	var got StatsResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if got.Total != 3 || got.ByErrorKind["division_by_zero"] != 1 {
		t.Errorf("stats = %+v", got)
	}
	if got.LastSeenAt == nil || !got.LastSeenAt.Equal(seen) {
		t.Errorf("last_seen_at = %v, want %v", got.LastSeenAt, seen)
	}
}

func TestGetStats_PortFailure(t *testing.T) {
	m := newTestModule(&mockCalculatorPort{}, &mockStatsPort{})

	status, _ := doRequest(t, m, httptest.NewRequest("GET", "/api/v1/stats", nil))
	if status != http.StatusInternalServerError {
		t.Errorf("status = %v, want 500", status)
	}
}

func TestHealth(t *testing.T) {
	m := newTestModule(&mockCalculatorPort{}, &mockStatsPort{})

	status, body := doRequest(t, m, httptest.NewRequest("GET", "/health", nil))
	if status != http.StatusOK {
		t.Errorf("status = %v, want 200", status)
	}
	if !strings.Contains(string(body), `"healthy"`) {
		t.Errorf("body = %s", body)
	}
}

func TestRequestIDHeader(t *testing.T) {
	m := newTestModule(&mockCalculatorPort{}, &mockStatsPort{})

	resp, err := m.newApp().Test(httptest.NewRequest("GET", "/health", nil), -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestAPIModule_StartRequiresDependencies(t *testing.T) {
	m := NewModule(0, 10, &mockLogger{})

	if err := m.Start(context.Background()); err == nil {
		t.Error("expected error when dependencies are missing")
	}
	if m.Health(context.Background()).Healthy {
		t.Error("expected unhealthy module before start")
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Errorf("Stop() on unstarted module error = %v", err)
	}
}

func TestAPIModule_Dependencies(t *testing.T) {
	m := NewModule(3000, 10, &mockLogger{})

	deps := m.Dependencies()
	if len(deps) != 2 || deps[0] != "calculator" || deps[1] != "stats" {
		t.Errorf("Dependencies() = %v", deps)
	}
	if m.Name() != "api" {
		t.Errorf("Name() = %q, want 'api'", m.Name())
	}
}
