package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"depotrack/backend/internal/service"
	"depotrack/backend/internal/store/memory"
)

// newTestAPI builds a full API with a seeded in-memory store, real
// AuthManager and real Service so handler tests exercise the complete
// request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, nil, nil, time.Second)
	auth := NewAuthManager("test-secret-key-test-secret-key!", time.Hour)

	return New(svc, auth, "*")
}

func loginAs(t *testing.T, handler http.Handler, username string) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"username": username, "password": "whatever"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login as %s: expected 200, got %d (body: %s)", username, rec.Code, rec.Body.String())
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if body.AccessToken == "" {
		t.Fatalf("empty access token")
	}
	return body.AccessToken
}

func csrfToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/csrf-token", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("csrf token: expected 200, got %d", rec.Code)
	}
	var body struct {
		Token string `json:"csrf_token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode csrf response: %v", err)
	}
	return body.Token
}

func doJSON(t *testing.T, handler http.Handler, method string, path string, token string, csrf string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodGet, "/healthz", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestLoginAcceptsAnyPasswordForKnownUser(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginAs(t, handler, "owner")
	if token == "" {
		t.Fatalf("expected token")
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	handler := newTestAPI(t).Handler()

	payload, _ := json.Marshal(map[string]string{"username": "ghost", "password": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	handler := newTestAPI(t).Handler()

	var last int
	for i := 0; i < 7; i++ {
		payload, _ := json.Marshal(map[string]string{"username": "ghost"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.1.2.3:40000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated attempts, got %d", last)
	}
}

func TestProtectedEndpointsRequireBearerToken(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/products", "", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMutationRequiresCSRFToken(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginAs(t, handler, "owner")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/suppliers", token, "", map[string]string{"name": "NoCSRF Co"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF token, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/suppliers", token, csrfToken(t, handler), map[string]string{"name": "WithCSRF Co"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with CSRF token, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestUserListingIsOwnerOnly(t *testing.T) {
	handler := newTestAPI(t).Handler()

	ownerToken := loginAs(t, handler, "owner")
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/users", ownerToken, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d", rec.Code)
	}

	dispatchToken := loginAs(t, handler, "dispatch")
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/users", dispatchToken, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("dispatch manager: expected 403, got %d", rec.Code)
	}
}

func TestAuditLogsAreOwnerOnly(t *testing.T) {
	handler := newTestAPI(t).Handler()

	storeToken := loginAs(t, handler, "store")
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/audit-logs", storeToken, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("store manager: expected 403, got %d", rec.Code)
	}

	ownerToken := loginAs(t, handler, "owner")
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/audit-logs?limit=5", ownerToken, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d", rec.Code)
	}
	var body struct {
		Logs []map[string]any `json:"audit_logs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Logs) == 0 {
		t.Fatalf("expected seeded audit entries")
	}
}

func TestSaleEndpointDecrementsStock(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginAs(t, handler, "dispatch")
	csrf := csrfToken(t, handler)

	// Seeded b2: product p1 at DISPATCH with 45 on hand.
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/sales", token, csrf, map[string]any{
		"product_id": "p1", "batch_id": "b2", "quantity": 5, "location": "DISPATCH",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/sales", token, csrf, map[string]any{
		"product_id": "p1", "batch_id": "b2", "quantity": 100, "location": "DISPATCH",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for oversell, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestTransferEndpointsEnforceRoleSplit(t *testing.T) {
	handler := newTestAPI(t).Handler()
	csrf := csrfToken(t, handler)

	dispatchToken := loginAs(t, handler, "dispatch")
	storeToken := loginAs(t, handler, "store")

	// Dispatch managers request; store managers fulfill.
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/transfers", storeToken, csrf, map[string]any{
		"product_id": "p1", "requested_qty": 10,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("store manager request: expected 403, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/transfers", dispatchToken, csrf, map[string]any{
		"product_id": "p1", "requested_qty": 10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("dispatch request: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var created struct {
		Transfer struct {
			ID string `json:"id"`
		} `json:"transfer"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	fulfillPath := fmt.Sprintf("/api/v1/transfers/%s/fulfill", created.Transfer.ID)
	rec = doJSON(t, handler, http.MethodPost, fulfillPath, dispatchToken, csrf, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("dispatch fulfill: expected 403, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, fulfillPath, storeToken, csrf, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("store fulfill: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var fulfilled struct {
		StockMoved bool `json:"stock_moved"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&fulfilled); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !fulfilled.StockMoved {
		t.Fatalf("expected stock to move")
	}

	// Terminal state: a second fulfillment conflicts.
	rec = doJSON(t, handler, http.MethodPost, fulfillPath, storeToken, csrf, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second fulfill: expected 409, got %d", rec.Code)
	}
}

func TestSwitchViewIssuesScopedToken(t *testing.T) {
	handler := newTestAPI(t).Handler()
	csrf := csrfToken(t, handler)

	ownerToken := loginAs(t, handler, "owner")
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/switch-view", ownerToken, csrf, map[string]string{"role": "STORE_MANAGER"})
	if rec.Code != http.StatusOK {
		t.Fatalf("owner switch: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var switched struct {
		AccessToken string `json:"access_token"`
		ActiveRole  string `json:"active_role"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&switched); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if switched.ActiveRole != "STORE_MANAGER" {
		t.Fatalf("expected STORE_MANAGER active role, got %s", switched.ActiveRole)
	}

	// The scoped token sees the store manager's surface, not the owner's.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/users", switched.AccessToken, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("scoped token on owner surface: expected 403, got %d", rec.Code)
	}

	storeToken := loginAs(t, handler, "store")
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/auth/switch-view", storeToken, csrf, map[string]string{"role": "OWNER"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("store manager switch: expected 403, got %d", rec.Code)
	}
}

func TestStockSummaryReport(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginAs(t, handler, "store")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports/stock-summary", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary struct {
		Products []struct {
			ProductID string `json:"product_id"`
			StoreQty  int    `json:"store_qty"`
		} `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(summary.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(summary.Products))
	}
}

func TestRejectUnknownJSONFields(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginAs(t, handler, "owner")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/suppliers", token, csrfToken(t, handler), map[string]any{
		"name": "Strict Co", "surprise": true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodGet, "/healthz", "", "", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
}
