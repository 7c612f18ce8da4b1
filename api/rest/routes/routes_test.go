package routes

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"furniture-editor/api/rest/handlers"
	"furniture-editor/config"
	"furniture-editor/core/executor"
	"furniture-editor/core/models"
	"furniture-editor/core/scheduler"
	"furniture-editor/providers/gemini"
	"furniture-editor/storage"

	"github.com/klauspost/compress/zip"
)

type stubDescriber struct{}

func (stubDescriber) DescribeRoom(ctx context.Context, description, mimeType string, image []byte) (string, error) {
	return "Placed: " + description, nil
}

type memorySink struct {
	files map[string][]byte
}

func (s *memorySink) Write(ctx context.Context, name string, data []byte) error {
	s.files[name] = data
	return nil
}

func (s *memorySink) Location(name string) string { return name }

func newTestServer(t *testing.T, describer handlers.RoomDescriber) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	server := httptest.NewServer(NewRouter(cfg, describer))
	t.Cleanup(server.Close)
	return server
}

func TestEndToEnd_UploadProcessExport(t *testing.T) {
	server := newTestServer(t, stubDescriber{})

	relay, err := executor.NewRelayClient(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewRelayClient failed: %v", err)
	}

	queue := scheduler.NewJobQueue()
	queue.Add([]scheduler.Upload{
		{Name: "room1.jpg", MimeType: "image/jpeg", Data: []byte{0xff, 0xd8, 0x01}},
		{Name: "room2.jpg", MimeType: "image/jpeg", Data: []byte{0xff, 0xd8, 0x02}},
	})

	result, err := scheduler.NewScheduler(queue, relay, nil).Run(context.Background(), "add a sofa")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Completed != 2 {
		t.Fatalf("Expected 2 completed jobs, got %+v", result)
	}

	for _, job := range queue.List() {
		if job.Status != models.JobStatusCompleted || job.ProcessedURL != "/api/placeholder-image" {
			t.Errorf("Unexpected job %s: %s %s", job.Name, job.Status, job.ProcessedURL)
		}
		if job.Description != "Placed: add a sofa" {
			t.Errorf("Unexpected description %q", job.Description)
		}
	}

	sink := &memorySink{files: make(map[string][]byte)}
	export, err := storage.NewBundleExporter(relay).Export(context.Background(), queue.Completed(), sink)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if export.Kind != storage.ExportArchive {
		t.Fatalf("Expected archive export, got %s", export.Kind)
	}

	archive := sink.files[storage.ArchiveName]
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("Invalid archive: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
		rc, _ := f.Open()
		body, _ := io.ReadAll(rc)
		rc.Close()
		if !strings.Contains(string(body), "Furnished Room Preview") {
			t.Errorf("Entry %s does not hold the placeholder", f.Name)
		}
	}
	if !names["furnished_room1.jpg"] || !names["furnished_room2.jpg"] || len(names) != 2 {
		t.Errorf("Unexpected archive entries %v", names)
	}
}

func TestProcessImage_MissingAPIKeyThroughRouter(t *testing.T) {
	server := newTestServer(t, gemini.NewClient("", ""))

	resp, err := http.Post(server.URL+"/api/process-image", "application/json",
		strings.NewReader(`{"image":"aGVsbG8=","prompt":"add a sofa","mimeType":"image/jpeg"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != `{"error":"Failed to process image"}` {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestPlaceholderImage_ByteIdentical(t *testing.T) {
	server := newTestServer(t, stubDescriber{})

	var bodies [][]byte
	for i := 0; i < 2; i++ {
		resp, err := http.Get(server.URL + "/api/placeholder-image")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.Header.Get("Content-Type") != "image/svg+xml" {
			t.Errorf("Unexpected content type %s", resp.Header.Get("Content-Type"))
		}
		bodies = append(bodies, body)
	}

	if !bytes.Equal(bodies[0], bodies[1]) {
		t.Error("Expected byte-identical placeholder bodies")
	}
}

func TestProcessImage_WrongMethod(t *testing.T) {
	server := newTestServer(t, stubDescriber{})

	resp, err := http.Get(server.URL + "/api/process-image")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t, stubDescriber{})

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/api/process-image", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Unexpected allow origin %q", got)
	}
}

func TestProcessImage_PlainOptionsNotRelayed(t *testing.T) {
	server := newTestServer(t, stubDescriber{})

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/api/process-image", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
	if strings.Contains(string(body), "Failed to process image") {
		t.Errorf("OPTIONS reached the relay handler: %s", body)
	}
}

func TestPlaceholderImage_WrongMethod(t *testing.T) {
	server := newTestServer(t, stubDescriber{})

	resp, err := http.Post(server.URL+"/api/placeholder-image", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}

func TestHealthRoute(t *testing.T) {
	server := newTestServer(t, stubDescriber{})

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}
