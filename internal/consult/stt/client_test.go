package stt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Transcribe(t *testing.T) {
	var gotPath string
	var gotFields map[string]string
	var gotAudio []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		gotFields = map[string]string{}
		for key, vals := range r.MultipartForm.Value {
			gotFields[key] = vals[0]
		}
		file, _, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("missing audio part: %v", err)
			return
		}
		gotAudio, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"text": "मुझे बुखार है",
			"english_text": "I have a fever",
			"language": {"detected": "hi", "name": "Hindi", "confidence": 0.91}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	result, err := c.Transcribe(context.Background(), []byte("RIFFfakewav"), Request{
		ConsultationID: "c-123",
		SourceLanguage: "hi",
		AutoDetect:     true,
		VoiceGender:    "female",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if gotPath != "/speech-to-text" {
		t.Errorf("path = %q, want /speech-to-text", gotPath)
	}
	if string(gotAudio) != "RIFFfakewav" {
		t.Errorf("audio payload = %q", gotAudio)
	}
	if gotFields["consultation_id"] != "c-123" {
		t.Errorf("consultation_id = %q", gotFields["consultation_id"])
	}
	if gotFields["source_language"] != "hi" {
		t.Errorf("source_language = %q", gotFields["source_language"])
	}
	if gotFields["enable_auto_detect"] != "true" {
		t.Errorf("enable_auto_detect = %q", gotFields["enable_auto_detect"])
	}
	if gotFields["voice_preferences"] != `{"gender":"female"}` {
		t.Errorf("voice_preferences = %q", gotFields["voice_preferences"])
	}

	if result.Text != "मुझे बुखार है" {
		t.Errorf("Text = %q", result.Text)
	}
	if result.EnglishText != "I have a fever" {
		t.Errorf("EnglishText = %q", result.EnglishText)
	}
	if result.Language != "hi" || result.Confidence != 0.91 {
		t.Errorf("Language = %q, Confidence = %v", result.Language, result.Confidence)
	}
}

func TestClient_TranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":{"error":"stt backend down","type":"processing_error"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	if _, err := c.Transcribe(context.Background(), []byte("RIFF"), Request{ConsultationID: "c-1"}); err == nil {
		t.Error("Transcribe() on 500 = nil error")
	}
}

func TestClient_TranscribeFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "text": ""}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	if _, err := c.Transcribe(context.Background(), []byte("RIFF"), Request{ConsultationID: "c-1"}); err == nil {
		t.Error("Transcribe() with non-success status = nil error")
	}
}

func TestClient_TranscribeEmptyAudio(t *testing.T) {
	c := NewClient("http://localhost:0", 0, nil)
	if _, err := c.Transcribe(context.Background(), nil, Request{}); err == nil {
		t.Error("Transcribe(nil audio) = nil error")
	}
}
