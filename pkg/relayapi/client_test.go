package relayapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testHeader() Header {
	return Header{
		Machine: "17H",
		Date:    time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Shift:   "D",
	}
}

func TestAppendSuccess(t *testing.T) {
	var got struct {
		Entries []map[string]string `json:"entries"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/append" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"Successfully appended 2 rows","updatedRange":"Data!A5:AC6"}`))
	}))
	defer srv.Close()

	rows := []EntryRow{
		{Block: "B-101", Nos: "4", H: [17]string{0: "DB24", 16: "R100"}},
		{Block: "B-102"},
	}

	updated, err := New(srv.URL).Append(context.Background(), testHeader(), rows)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if updated != "Data!A5:AC6" {
		t.Errorf("updatedRange = %q", updated)
	}

	if len(got.Entries) != 2 {
		t.Fatalf("sent %d entries, want 2", len(got.Entries))
	}
	first := got.Entries[0]
	if first["machine"] != "17H" || first["shift"] != "D" {
		t.Errorf("header not flattened: %v", first)
	}
	if first["date"] != "2024-03-09" {
		t.Errorf("date = %q", first["date"])
	}
	if first["h1"] != "DB24" || first["h17"] != "R100" {
		t.Errorf("hole fields not mapped: %v", first)
	}
	if len(first) != 29 {
		t.Errorf("entry has %d fields, want 29", len(first))
	}
	// Second row carries the header too, with its own blanks intact.
	if got.Entries[1]["machine"] != "17H" || got.Entries[1]["block"] != "B-102" {
		t.Errorf("second entry mangled: %v", got.Entries[1])
	}
}

func TestAppendRelayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"No entries provided"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Append(context.Background(), testHeader(), nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "No entries provided" {
		t.Errorf("error = %q", err)
	}
}

func TestAppendFailureWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Append(context.Background(), testHeader(), []EntryRow{{}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "Failed to append data to Google Sheets" {
		t.Errorf("error = %q", err)
	}
}

func TestAppendConnectivityErrors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := New(srv.URL).Append(context.Background(), testHeader(), []EntryRow{{}})
		if err == nil || err.Error() != connectivityMessage {
			t.Errorf("error = %v, want connectivity message", err)
		}
	})

	t.Run("non-json response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>gateway timeout</html>"))
		}))
		defer srv.Close()

		_, err := New(srv.URL).Append(context.Background(), testHeader(), []EntryRow{{}})
		if err == nil || err.Error() != connectivityMessage {
			t.Errorf("error = %v, want connectivity message", err)
		}
	})
}

func TestFlattenZeroDate(t *testing.T) {
	entries := flatten(Header{Machine: "6H"}, []EntryRow{{}})
	if entries[0]["date"] != "" {
		t.Errorf("zero date = %q, want empty", entries[0]["date"])
	}
}
