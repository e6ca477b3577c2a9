package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/receipt-review-backend/internal/api/dto"
	"github.com/spendlens/receipt-review-backend/internal/application/service"
	"github.com/spendlens/receipt-review-backend/internal/domain/aggregator"
	"github.com/spendlens/receipt-review-backend/internal/infrastructure/storage"
	"github.com/spendlens/receipt-review-backend/internal/scan"
)

type stubLedger struct {
	err error
}

func (l *stubLedger) CreateExpense(context.Context, aggregator.ExpenseCreate, string) error {
	return l.err
}

func (l *stubLedger) CreateExpenses(context.Context, []aggregator.ExpenseCreate, string) error {
	return l.err
}

type stubScanner struct {
	result *scan.Result
	err    error
}

func (s *stubScanner) Scan(context.Context, string, string) (*scan.Result, error) {
	return s.result, s.err
}

type testServer struct {
	server *Server
	repo   *storage.MockRepository
	ledger *stubLedger
}

func newTestServer(t *testing.T, scanner *stubScanner) *testServer {
	t.Helper()
	repo := storage.NewMockRepository()
	ledger := &stubLedger{}
	reviews := service.NewReviewService(ledger, scanner, repo, nil, service.DefaultIdleTTL)
	return &testServer{
		server: NewServer(DefaultConfig(), repo, reviews, nil),
		repo:   repo,
		ledger: ledger,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func storeScanResult() *scan.Result {
	return &scan.Result{
		Success: true,
		Data: &scan.Receipt{
			ReceiptType: scan.TypeStore,
			Date:        "2024-03-15",
			Merchant:    "SuperMart",
			Tax:         10,
			Items: []scan.LineItem{
				{Amount: 20, Category: "Groceries", Description: "milk"},
				{Amount: 30, Category: "Groceries", Description: "bread"},
				{Amount: 50, Description: "lamp"},
			},
		},
	}
}

func (ts *testServer) startReview(t *testing.T) dto.DraftResponse {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/reviews",
		dto.StartReviewRequest{ScanResult: storeScanResult()})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[dto.DraftResponse](t, rec)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
}

func TestStartReview_FromScanResult(t *testing.T) {
	ts := newTestServer(t, nil)
	d := ts.startReview(t)

	assert.NotEmpty(t, d.SessionID)
	assert.Equal(t, "SuperMart", d.Merchant)
	require.Len(t, d.Items, 3)
	assert.Equal(t, "2.00", d.Items[0].TaxShare)
	assert.Equal(t, 110.00, d.Total)
}

func TestStartReview_FromImage(t *testing.T) {
	ts := newTestServer(t, &stubScanner{result: storeScanResult()})

	rec := ts.do(t, http.MethodPost, "/api/reviews",
		dto.StartReviewRequest{ImageBase64: "aW1n", Language: "en"})

	require.Equal(t, http.StatusCreated, rec.Code)
	d := decode[dto.DraftResponse](t, rec)
	assert.Len(t, d.Items, 3)
}

func TestStartReview_UtilityPassesThrough(t *testing.T) {
	ts := newTestServer(t, nil)

	result := storeScanResult()
	result.Data.ReceiptType = scan.TypeUtility
	result.Data.Items = nil
	result.Data.Amount = 84.12

	rec := ts.do(t, http.MethodPost, "/api/reviews", dto.StartReviewRequest{ScanResult: result})

	// no session is created; the scan data comes back for confirmation
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[scan.Result](t, rec)
	assert.Equal(t, scan.TypeUtility, resp.Data.ReceiptType)
}

func TestStartReview_MissingInput(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodPost, "/api/reviews", dto.StartReviewRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decode[dto.APIError](t, rec).Code)
}

func TestStartReview_FailedScanResult(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodPost, "/api/reviews",
		dto.StartReviewRequest{ScanResult: &scan.Result{Success: false, Detail: "blurry"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, dto.ErrCodeScanFailed, decode[dto.APIError](t, rec).Code)
}

func TestGetReview(t *testing.T) {
	ts := newTestServer(t, nil)
	d := ts.startReview(t)

	rec := ts.do(t, http.MethodGet, "/api/reviews/"+d.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dto.DraftResponse](t, rec)
	assert.Equal(t, d.SessionID, got.SessionID)
	assert.Len(t, got.Items, 3)
}

func TestGetReview_NotFound(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/api/reviews/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decode[dto.APIError](t, rec).Code)
}

func TestItemLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)
	d := ts.startReview(t)
	base := "/api/reviews/" + d.SessionID

	rec := ts.do(t, http.MethodPost, base+"/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d = decode[dto.DraftResponse](t, rec)
	require.Len(t, d.Items, 4)
	newID := d.Items[3].ID

	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("%s/items/%s", base, newID),
		dto.UpdateItemRequest{Field: "amount", Value: "25"})
	require.Equal(t, http.StatusOK, rec.Code)
	d = decode[dto.DraftResponse](t, rec)
	assert.Equal(t, 125.00, d.Subtotal)
	assert.Equal(t, "2.00", d.Items[3].TaxShare)

	rec = ts.do(t, http.MethodDelete, fmt.Sprintf("%s/items/%s", base, newID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d = decode[dto.DraftResponse](t, rec)
	assert.Len(t, d.Items, 3)
	assert.Equal(t, 100.00, d.Subtotal)
}

func TestUpdateItem_BadField(t *testing.T) {
	ts := newTestServer(t, nil)
	d := ts.startReview(t)

	rec := ts.do(t, http.MethodPatch,
		fmt.Sprintf("/api/reviews/%s/items/%s", d.SessionID, d.Items[0].ID),
		dto.UpdateItemRequest{Field: "merchant", Value: "x"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateItem_TaxShareBacksolve(t *testing.T) {
	ts := newTestServer(t, nil)
	d := ts.startReview(t)

	rec := ts.do(t, http.MethodPatch,
		fmt.Sprintf("/api/reviews/%s/items/%s", d.SessionID, d.Items[0].ID),
		dto.UpdateItemRequest{Field: "tax_share", Value: "4"})

	require.Equal(t, http.StatusOK, rec.Code)
	d = decode[dto.DraftResponse](t, rec)
	assert.Equal(t, "20.00", d.Tax)
	assert.Equal(t, "4.00", d.Items[0].TaxShare)
	assert.Equal(t, "10.00", d.Items[2].TaxShare)
}

func TestUpdateTax(t *testing.T) {
	ts := newTestServer(t, nil)
	d := ts.startReview(t)

	rec := ts.do(t, http.MethodPut, "/api/reviews/"+d.SessionID+"/tax",
		dto.UpdateTaxRequest{Tax: "20"})

	require.Equal(t, http.StatusOK, rec.Code)
	d = decode[dto.DraftResponse](t, rec)
	assert.Equal(t, "20", d.Tax)
	assert.Equal(t, 120.00, d.Total)
}

func TestSubmitReview(t *testing.T) {
	ts := newTestServer(t, nil)
	d := ts.startReview(t)

	rec := ts.do(t, http.MethodPost, "/api/reviews/"+d.SessionID+"/submit", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.SubmissionResponse](t, rec)
	assert.Equal(t, "submitted", resp.Status)
	assert.Equal(t, 2, resp.GroupCount)
	assert.Equal(t, 110.00, resp.Total)

	// the session is gone afterwards
	rec = ts.do(t, http.MethodGet, "/api/reviews/"+d.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitReview_LedgerDown(t *testing.T) {
	ts := newTestServer(t, nil)
	d := ts.startReview(t)
	ts.ledger.err = errors.New("connection refused")

	rec := ts.do(t, http.MethodPost, "/api/reviews/"+d.SessionID+"/submit", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, dto.ErrCodeUpstream, decode[dto.APIError](t, rec).Code)

	// the session survives for a retry
	rec = ts.do(t, http.MethodGet, "/api/reviews/"+d.SessionID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDiscardReview(t *testing.T) {
	ts := newTestServer(t, nil)
	d := ts.startReview(t)

	rec := ts.do(t, http.MethodDelete, "/api/reviews/"+d.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/reviews/"+d.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitUtilityExpense(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/expenses/utility", dto.SubmitUtilityRequest{
		Receipt: &scan.Receipt{
			ReceiptType: scan.TypeUtility,
			Date:        "2024-02-01",
			Merchant:    "City Power",
			Amount:      84.12,
			Category:    "Utilities",
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.SubmissionResponse](t, rec)
	assert.Equal(t, scan.TypeUtility, resp.ReceiptType)
	assert.Equal(t, 84.12, resp.Total)
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, "Utilities", resp.Groups[0].Category)
}

func TestSubmitUtilityExpense_RejectsStoreReceipt(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/expenses/utility",
		dto.SubmitUtilityRequest{Receipt: &scan.Receipt{ReceiptType: scan.TypeStore}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSubmissions(t *testing.T) {
	ts := newTestServer(t, nil)
	now := time.Now().UTC()
	ts.repo.AddRecord(&storage.SubmissionRecord{
		ReceiptID: "r-1", Status: storage.StatusSubmitted, SubmittedAt: now,
	})
	ts.repo.AddRecord(&storage.SubmissionRecord{
		ReceiptID: "r-2", Status: storage.StatusFailed, SubmittedAt: now.Add(time.Minute),
	})

	rec := ts.do(t, http.MethodGet, "/api/submissions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.SubmissionListResponse](t, rec)
	require.Len(t, resp.Submissions, 2)
	assert.Equal(t, "r-2", resp.Submissions[0].ReceiptID)

	rec = ts.do(t, http.MethodGet, "/api/submissions?status=failed", nil)
	resp = decode[dto.SubmissionListResponse](t, rec)
	require.Len(t, resp.Submissions, 1)
	assert.Equal(t, "r-2", resp.Submissions[0].ReceiptID)
}

func TestGetSubmission_NotFound(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/api/submissions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.repo.AddRecord(&storage.SubmissionRecord{
		ReceiptID: "r-1", Status: storage.StatusSubmitted, Total: 110,
		Groups: []storage.SubmittedGroup{{Category: "Groceries", Amount: 55}},
	})

	rec := ts.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.StatsResponse](t, rec)
	assert.Equal(t, 1, resp.TotalSubmissions)
	assert.Equal(t, 110.00, resp.TotalAmount)
	assert.Equal(t, 55.00, resp.CategoryTotals["Groceries"])
}

func TestCategories(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/api/categories", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.CategoryListResponse](t, rec)
	require.Len(t, resp.Expense, 17)
	require.Len(t, resp.Income, 6)
	assert.Equal(t, dto.CategoryResponse{Key: "category.groceries", Name: "Groceries"}, resp.Expense[0])
	assert.Equal(t, dto.CategoryResponse{Key: "category.otherIncome", Name: "Other"}, resp.Income[5])
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/reviews", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
