package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	actor  string
	body   map[string]any
}

// fakeAPI answers every request with status and body and records what it saw.
func fakeAPI(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			actor:  r.Header.Get("X-Actor"),
		}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			if err := json.Unmarshal(raw, &rec.body); err != nil {
				t.Errorf("request body is not JSON: %s", raw)
			}
		}
		seen = append(seen, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func execute(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands_BuildRequests(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		method string
		path   string
		query  string
		body   map[string]any
	}{
		{
			name:   "accounts get",
			args:   []string{"accounts", "get", "acc-1"},
			method: http.MethodGet,
			path:   "/api/v1/accounts/acc-1",
		},
		{
			name:   "accounts list",
			args:   []string{"accounts", "list", "--status", "Active", "--limit", "5"},
			method: http.MethodGet,
			path:   "/api/v1/accounts",
			query:  "limit=5&status=Active",
		},
		{
			name:   "accounts open",
			args:   []string{"accounts", "open", "--customer", "c1", "--product", "p1", "--balance", "100.00"},
			method: http.MethodPost,
			path:   "/api/v1/accounts",
			body:   map[string]any{"customer_id": "c1", "product_id": "p1", "opening_balance": "100.00"},
		},
		{
			name:   "balance as of",
			args:   []string{"balance", "acc-1", "--as-of", "2024-02-29"},
			method: http.MethodGet,
			path:   "/api/v1/accounts/acc-1/balance",
			query:  "as_of=2024-02-29",
		},
		{
			name:   "journal",
			args:   []string{"journal", "acc-1", "--offset", "10"},
			method: http.MethodGet,
			path:   "/api/v1/accounts/acc-1/transactions",
			query:  "offset=10",
		},
		{
			name:   "credit",
			args:   []string{"credit", "acc-1", "25.00", "--reference", "DEP-1"},
			method: http.MethodPost,
			path:   "/api/v1/accounts/acc-1/credit",
			body:   map[string]any{"amount": "25.00", "reference": "DEP-1"},
		},
		{
			name:   "debit",
			args:   []string{"debit", "acc-1", "5.00"},
			method: http.MethodPost,
			path:   "/api/v1/accounts/acc-1/debit",
			body:   map[string]any{"amount": "5.00"},
		},
		{
			name:   "accruals run",
			args:   []string{"accruals", "run", "--as-of", "2024-04-01", "--dry-run"},
			method: http.MethodPost,
			path:   "/api/v1/batch/monthly-accruals",
			body:   map[string]any{"as_of": "2024-04-01", "dry_run": true},
		},
		{
			name:   "accruals history",
			args:   []string{"accruals", "history", "--account", "acc-1", "--status", "Failed"},
			method: http.MethodGet,
			path:   "/api/v1/batch/accrual-history",
			query:  "account_id=acc-1&status=Failed",
		},
		{
			name:   "fees run",
			args:   []string{"fees", "run"},
			method: http.MethodPost,
			path:   "/api/v1/batch/monthly-fees",
			body:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, seen := fakeAPI(t, http.StatusOK, `{"ok":true}`)

			out, err := execute(t, srv, tt.args...)
			if err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if !strings.Contains(out, `"ok": true`) {
				t.Fatalf("expected pretty-printed response, got %q", out)
			}
			if len(*seen) != 1 {
				t.Fatalf("expected one request, got %d", len(*seen))
			}

			got := (*seen)[0]
			if got.method != tt.method || got.path != tt.path || got.query != tt.query {
				t.Fatalf("unexpected request %s %s?%s", got.method, got.path, got.query)
			}
			if got.actor != "cli" {
				t.Fatalf("expected default actor, got %q", got.actor)
			}
			for k, v := range tt.body {
				if got.body[k] != v {
					t.Fatalf("body[%s] = %v, want %v (%v)", k, got.body[k], v, got.body)
				}
			}
		})
	}
}

func TestCommands_APIError(t *testing.T) {
	srv, _ := fakeAPI(t, http.StatusUnprocessableEntity,
		`{"error":"Unprocessable Entity","code":"INSUFFICIENT_FUNDS","message":"insufficient funds"}`)

	_, err := execute(t, srv, "debit", "acc-1", "5000.00")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "INSUFFICIENT_FUNDS") || !strings.Contains(err.Error(), "422") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestReconcileCmd(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		srv, seen := fakeAPI(t, http.StatusOK, `{"total_accounts":2,"reconciled_accounts":2,"discrepancies":[]}`)
		if _, err := execute(t, srv, "reconcile"); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if (*seen)[0].path != "/api/v1/ledger/reconciliation" {
			t.Fatalf("unexpected path %s", (*seen)[0].path)
		}
	})

	t.Run("drift on one account", func(t *testing.T) {
		srv, seen := fakeAPI(t, http.StatusConflict, `{"account_id":"acc-1","is_reconciled":false}`)
		out, err := execute(t, srv, "reconcile", "acc-1")
		if err == nil || !strings.Contains(err.Error(), "FAILED") {
			t.Fatalf("expected reconciliation failure, got %v", err)
		}
		if !strings.Contains(out, `"is_reconciled": false`) {
			t.Fatalf("expected report to be printed, got %q", out)
		}
		if (*seen)[0].path != "/api/v1/accounts/acc-1/reconciliation" {
			t.Fatalf("unexpected path %s", (*seen)[0].path)
		}
	})
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, json.RawMessage(`{"a":1}`)); err != nil {
		t.Fatalf("printJSON: %v", err)
	}

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}
