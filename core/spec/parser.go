package spec

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// BatchSpec represents the YAML batch file accepted by the CLI
type BatchSpec struct {
	Batch BatchSpecBatch `yaml:"batch"`
}

// BatchSpecBatch represents the batch section of the file
type BatchSpecBatch struct {
	Prompt string   `yaml:"prompt"`
	Server string   `yaml:"server,omitempty"`
	Output string   `yaml:"output,omitempty"` // directory or s3://bucket/prefix
	Images []string `yaml:"images"`
}

// Batch is a parsed, validated batch with image paths made absolute
type Batch struct {
	Prompt string
	Server string
	Output string
	Images []string
}

// ParseBatchFile reads and parses a batch file. Relative image paths are
// resolved against the file's directory.
func ParseBatchFile(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read batch file")
	}
	return ParseBatchSpec(string(data), filepath.Dir(path))
}

// ParseBatchSpec parses a YAML batch specification
func ParseBatchSpec(specYAML, baseDir string) (*Batch, error) {
	var spec BatchSpec
	if err := yaml.Unmarshal([]byte(specYAML), &spec); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}

	prompt := strings.TrimSpace(spec.Batch.Prompt)
	if prompt == "" {
		return nil, errors.New("batch prompt is required")
	}
	if len(spec.Batch.Images) == 0 {
		return nil, errors.New("batch needs at least one image")
	}

	batch := &Batch{
		Prompt: prompt,
		Server: spec.Batch.Server,
		Output: spec.Batch.Output,
	}

	for _, image := range spec.Batch.Images {
		if image == "" {
			continue
		}
		if !filepath.IsAbs(image) && baseDir != "" {
			image = filepath.Join(baseDir, image)
		}
		batch.Images = append(batch.Images, image)
	}

	return batch, nil
}
