package storage

import (
	"bytes"
	"context"
	"log"
	"path"
	"strings"

	"furniture-editor/core/models"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

const (
	// ExportPrefix is prepended to every exported filename
	ExportPrefix = "furnished_"
	// ArchiveName is the name of the multi-image bundle
	ArchiveName = "furnished_rooms.zip"
)

// ErrNothingToExport is returned when no job has a completed result
var ErrNothingToExport = errors.New("no completed images to export")

// ExportKind tells whether an export produced one file or an archive
type ExportKind string

const (
	ExportSingle  ExportKind = "single"
	ExportArchive ExportKind = "archive"
)

// Fetcher downloads the payload behind a result reference
type Fetcher interface {
	FetchResult(ctx context.Context, ref string) ([]byte, error)
}

// ExportResult describes what an export wrote
type ExportResult struct {
	Kind     ExportKind
	Name     string   // file written to the sink
	Location string   // where the sink put it
	Entries  []string // archive entries, or the single file name
	Skipped  []string // jobs whose result could not be fetched
}

// BundleExporter packages completed results for download
type BundleExporter struct {
	fetcher Fetcher
}

// NewBundleExporter creates a new bundle exporter
func NewBundleExporter(fetcher Fetcher) *BundleExporter {
	return &BundleExporter{fetcher: fetcher}
}

// ExportName derives the download name of a job's result
func ExportName(original string) string {
	name := path.Base(strings.ReplaceAll(original, "\\", "/"))
	if name == "." || name == "/" {
		name = "image"
	}
	return ExportPrefix + name
}

// Export writes the completed jobs to the sink. One completed job is written
// as a single file; several are bundled into a zip archive, skipping any
// result that cannot be fetched.
func (e *BundleExporter) Export(ctx context.Context, jobs []*models.ImageJob, sink Sink) (*ExportResult, error) {
	var completed []*models.ImageJob
	for _, job := range jobs {
		if job.Status == models.JobStatusCompleted && job.ProcessedURL != "" {
			completed = append(completed, job)
		}
	}

	switch len(completed) {
	case 0:
		return nil, ErrNothingToExport
	case 1:
		return e.exportSingle(ctx, completed[0], sink)
	default:
		return e.exportArchive(ctx, completed, sink)
	}
}

// exportSingle writes one result directly, without an archive
func (e *BundleExporter) exportSingle(ctx context.Context, job *models.ImageJob, sink Sink) (*ExportResult, error) {
	data, err := e.fetcher.FetchResult(ctx, job.ProcessedURL)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch result for %s", job.Name)
	}

	name := ExportName(job.Name)
	if err := sink.Write(ctx, name, data); err != nil {
		return nil, errors.Wrapf(err, "write %s", name)
	}

	return &ExportResult{
		Kind:     ExportSingle,
		Name:     name,
		Location: sink.Location(name),
		Entries:  []string{name},
	}, nil
}

// exportArchive fetches every result and writes them as one zip
func (e *BundleExporter) exportArchive(ctx context.Context, jobs []*models.ImageJob, sink Sink) (*ExportResult, error) {
	result := &ExportResult{Kind: ExportArchive, Name: ArchiveName}

	var entries []ArchiveEntry
	index := make(map[string]int)

	for _, job := range jobs {
		data, err := e.fetcher.FetchResult(ctx, job.ProcessedURL)
		if err != nil {
			log.Printf("Error adding image to zip: %s: %v", job.Name, err)
			result.Skipped = append(result.Skipped, job.Name)
			continue
		}

		name := ExportName(job.Name)
		// Same name: the later payload replaces the earlier one
		if i, ok := index[name]; ok {
			entries[i].Data = data
			continue
		}
		index[name] = len(entries)
		entries = append(entries, ArchiveEntry{Name: name, Data: data})
	}

	archive, err := BuildArchive(entries)
	if err != nil {
		return nil, err
	}
	if err := sink.Write(ctx, ArchiveName, archive); err != nil {
		return nil, errors.Wrapf(err, "write %s", ArchiveName)
	}

	for _, entry := range entries {
		result.Entries = append(result.Entries, entry.Name)
	}
	result.Location = sink.Location(ArchiveName)
	return result, nil
}

// ArchiveEntry is one file inside a bundle
type ArchiveEntry struct {
	Name string
	Data []byte
}

// BuildArchive zips the entries in order
func BuildArchive(entries []ArchiveEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, entry := range entries {
		w, err := zw.Create(entry.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "create zip entry %s", entry.Name)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, errors.Wrapf(err, "write zip entry %s", entry.Name)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "finish zip")
	}
	return buf.Bytes(), nil
}
