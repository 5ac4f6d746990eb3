package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
)

func testRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = Entry(fullEntry()).Row()
	}
	return rows
}

func TestAppendSuccess(t *testing.T) {
	var gotBody struct {
		Values [][]string `json:"values"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if want := "/spreadsheets/sheet-123/values/Data!A:AC:append"; r.URL.Path != want {
			t.Errorf("path = %q, want %q", r.URL.Path, want)
		}
		q := r.URL.Query()
		if q.Get("valueInputOption") != "USER_ENTERED" {
			t.Errorf("valueInputOption = %q", q.Get("valueInputOption"))
		}
		if q.Get("insertDataOption") != "INSERT_ROWS" {
			t.Errorf("insertDataOption = %q", q.Get("insertDataOption"))
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok-1" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"updates":{"updatedRange":"Data!A2:AC3","updatedRows":2}}`))
	}))
	defer srv.Close()

	client := NewAppendClient(Config{BaseURL: srv.URL, SpreadsheetID: "sheet-123", SheetName: "Data"})
	res, err := client.Append(context.Background(), "tok-1", testRows(2))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if res.UpdatedRange != "Data!A2:AC3" {
		t.Errorf("updatedRange = %q", res.UpdatedRange)
	}
	if len(gotBody.Values) != 2 {
		t.Fatalf("sent %d rows, want 2", len(gotBody.Values))
	}
	for i, row := range gotBody.Values {
		if len(row) != NumColumns {
			t.Errorf("row %d width = %d, want %d", i, len(row), NumColumns)
		}
	}
}

func TestAppendAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			"upstream message",
			http.StatusForbidden,
			`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`,
			"The caller does not have permission",
		},
		{
			"no message",
			http.StatusBadRequest,
			`{}`,
			"Failed to append data to Google Sheets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewAppendClient(Config{BaseURL: srv.URL, SpreadsheetID: "s", SheetName: "Data"})
			_, err := client.Append(context.Background(), "tok", testRows(1))

			var aerr *APIError
			if !errors.As(err, &aerr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if aerr.Status != tt.status {
				t.Errorf("status = %d, want %d", aerr.Status, tt.status)
			}
			if aerr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", aerr.Message, tt.wantMsg)
			}
		})
	}
}

func TestAppendEmptyBatch(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewAppendClient(Config{BaseURL: srv.URL, SpreadsheetID: "s", SheetName: "Data"})
	_, err := client.Append(context.Background(), "tok", nil)
	if !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if calls != 0 {
		t.Errorf("empty batch must not hit the API (calls = %d)", calls)
	}
}

func TestRange(t *testing.T) {
	client := NewAppendClient(Config{SpreadsheetID: "s", SheetName: "Production"})
	if got := client.Range(); got != "Production!A:AC" {
		t.Errorf("Range() = %q", got)
	}
}
