package executor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"furniture-editor/core/models"
)

func TestRelayClient_ProcessImage(t *testing.T) {
	var got ProcessRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ProcessImagePath || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"processedImageUrl":"/api/placeholder-image","description":"a sofa"}`))
	}))
	defer server.Close()

	client, err := NewRelayClient(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewRelayClient failed: %v", err)
	}

	job := &models.ImageJob{Data: []byte("jpeg-bytes"), MimeType: "image/jpeg"}
	resp, err := client.ProcessImage(context.Background(), job, "add a sofa")
	if err != nil {
		t.Fatalf("ProcessImage failed: %v", err)
	}

	if resp.ProcessedImageURL != "/api/placeholder-image" {
		t.Errorf("Unexpected result URL %s", resp.ProcessedImageURL)
	}
	if resp.Description != "a sofa" {
		t.Errorf("Unexpected description %q", resp.Description)
	}
	if got.Prompt != "add a sofa" || got.MimeType != "image/jpeg" {
		t.Errorf("Unexpected request body: %+v", got)
	}
	decoded, _ := base64.StdEncoding.DecodeString(got.Image)
	if string(decoded) != "jpeg-bytes" {
		t.Errorf("Image was not base64 of the original bytes: %q", got.Image)
	}
}

func TestRelayClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to process image"}`))
	}))
	defer server.Close()

	client, _ := NewRelayClient(server.URL, 5*time.Second)
	_, err := client.ProcessImage(context.Background(), &models.ImageJob{}, "x")
	if !errors.Is(err, ErrRelayFailed) {
		t.Errorf("Expected ErrRelayFailed, got %v", err)
	}
	if err.Error() != "Failed to process image" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestRelayClient_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client, _ := NewRelayClient(server.URL, 5*time.Second)
	if _, err := client.ProcessImage(context.Background(), &models.ImageJob{}, "x"); err == nil {
		t.Error("Expected error for malformed response")
	}
}

func TestRelayClient_MissingResultURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client, _ := NewRelayClient(server.URL, 5*time.Second)
	if _, err := client.ProcessImage(context.Background(), &models.ImageJob{}, "x"); err == nil {
		t.Error("Expected error when processedImageUrl is missing")
	}
}

func TestRelayClient_FetchResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/placeholder-image" {
			w.Write([]byte("<svg/>"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, _ := NewRelayClient(server.URL, 5*time.Second)

	data, err := client.FetchResult(context.Background(), "/api/placeholder-image")
	if err != nil {
		t.Fatalf("FetchResult failed: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("Unexpected payload %q", data)
	}

	if _, err := client.FetchResult(context.Background(), "/missing"); err == nil {
		t.Error("Expected error for missing result")
	}
}

func TestRelayClient_Resolve(t *testing.T) {
	client, _ := NewRelayClient("http://relay.test:8080/", time.Second)

	got, _ := client.Resolve("/api/placeholder-image")
	if got != "http://relay.test:8080/api/placeholder-image" {
		t.Errorf("Unexpected resolved URL %s", got)
	}

	got, _ = client.Resolve("https://cdn.test/result.png")
	if got != "https://cdn.test/result.png" {
		t.Errorf("Absolute reference changed: %s", got)
	}
}

func TestNewRelayClient_RejectsBadScheme(t *testing.T) {
	if _, err := NewRelayClient("ftp://relay.test", time.Second); err == nil {
		t.Error("Expected error for non-http scheme")
	}
}
