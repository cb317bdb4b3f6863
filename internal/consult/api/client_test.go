package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestClient_Start(t *testing.T) {
	var gotPath string
	var gotBody PatientDetails

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"consultation_id": "c-42", "status": "active"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	result, err := c.Start(context.Background(), PatientDetails{
		FirstName: "Asha",
		LastName:  "Rao",
		Age:       34,
		Gender:    "female",
		Email:     "asha@example.com",
		Mobile:    "9876543210",
		Vitals:    Vitals{Height: 160, Weight: 55},
		LanguagePreferences: LanguagePreferences{
			Preferred: "kn",
			Interface: "en",
		},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if gotPath != "/consultation/start" {
		t.Errorf("path = %q, want /consultation/start", gotPath)
	}
	if gotBody.FirstName != "Asha" || gotBody.LanguagePreferences.Preferred != "kn" {
		t.Errorf("request body = %+v", gotBody)
	}
	if result.ConsultationID != "c-42" || result.Status != "active" {
		t.Errorf("result = %+v", result)
	}
}

func TestClient_StartWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "active"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	if _, err := c.Start(context.Background(), PatientDetails{}); err == nil {
		t.Error("Start() with missing id = nil error")
	}
}

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/consultation/status/c-42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"status": "active",
			"created_at": "2026-04-02T09:00:00Z",
			"last_activity": "2026-04-02T09:15:00Z"
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	info, err := c.Status(context.Background(), "c-42")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !info.Active() {
		t.Errorf("Active() = false for status %q", info.Status)
	}
	if info.CreatedAt.IsZero() || info.LastActivity.IsZero() {
		t.Error("timestamps not parsed")
	}
}

func TestClient_StatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Consultation not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	if _, err := c.Status(context.Background(), "missing"); err == nil {
		t.Error("Status() on 404 = nil error")
	}
}

func TestClient_DownloadReport(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake report")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/report/c-42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "reports", "consultation-report.pdf")
	c := NewClient(srv.URL, 0, nil)
	if err := c.DownloadReport(context.Background(), "c-42", path); err != nil {
		t.Fatalf("DownloadReport() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved report: %v", err)
	}
	if string(data) != string(pdf) {
		t.Errorf("saved report = %q", data)
	}
}

func TestClient_DownloadReportNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no report", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := c.DownloadReport(context.Background(), "c-42", path); err == nil {
		t.Error("DownloadReport() on 404 = nil error")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("report file created despite 404")
	}
}
