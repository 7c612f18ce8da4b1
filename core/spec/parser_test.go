package spec

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseBatchSpec(t *testing.T) {
	batch, err := ParseBatchSpec(`
batch:
  prompt: "  Add a modern sofa and a floor lamp "
  server: http://relay.test:8080
  output: s3://rooms/out
  images:
    - living/room1.jpg
    - /abs/room2.png
`, "/data")
	if err != nil {
		t.Fatalf("ParseBatchSpec failed: %v", err)
	}

	if batch.Prompt != "Add a modern sofa and a floor lamp" {
		t.Errorf("Unexpected prompt %q", batch.Prompt)
	}
	if batch.Server != "http://relay.test:8080" || batch.Output != "s3://rooms/out" {
		t.Errorf("Unexpected server/output: %+v", batch)
	}
	if len(batch.Images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(batch.Images))
	}
	if batch.Images[0] != filepath.Join("/data", "living/room1.jpg") {
		t.Errorf("Relative path not resolved: %s", batch.Images[0])
	}
	if batch.Images[1] != "/abs/room2.png" {
		t.Errorf("Absolute path changed: %s", batch.Images[1])
	}
}

func TestParseBatchSpec_RequiresPrompt(t *testing.T) {
	_, err := ParseBatchSpec("batch:\n  images: [a.jpg]\n", "")
	if err == nil {
		t.Error("Expected error for missing prompt")
	}
}

func TestParseBatchSpec_RequiresImages(t *testing.T) {
	_, err := ParseBatchSpec("batch:\n  prompt: a sofa\n", "")
	if err == nil {
		t.Error("Expected error for missing images")
	}
}

func TestParseBatchSpec_InvalidYAML(t *testing.T) {
	if _, err := ParseBatchSpec("batch: [", ""); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestParseBatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	os.WriteFile(path, []byte("batch:\n  prompt: a sofa\n  images: [room.jpg]\n"), 0o644)

	batch, err := ParseBatchFile(path)
	if err != nil {
		t.Fatalf("ParseBatchFile failed: %v", err)
	}
	if batch.Images[0] != filepath.Join(dir, "room.jpg") {
		t.Errorf("Image not resolved against batch dir: %s", batch.Images[0])
	}
}
