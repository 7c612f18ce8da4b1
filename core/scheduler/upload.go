package scheduler

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// DetectMimeType guesses a file's MIME type from its extension, falling back
// to sniffing the content
func DetectMimeType(name string, data []byte) string {
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// UploadFromFile reads one file into an Upload
func UploadFromFile(path string) (Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, errors.Wrapf(err, "read %s", path)
	}
	name := filepath.Base(path)
	return Upload{
		Name:     name,
		MimeType: DetectMimeType(name, data),
		Source:   path,
		Data:     data,
	}, nil
}

// sniffLen is the most http.DetectContentType looks at
const sniffLen = 512

// isImageFile decides from the extension, reading only the head of the file
// when the extension is unknown
func isImageFile(path string) (bool, error) {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return strings.HasPrefix(ct, "image/"), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, errors.Wrapf(err, "read %s", path)
	}
	return strings.HasPrefix(DetectMimeType(path, head[:n]), "image/"), nil
}

// CollectUploads reads up to limit image files from paths. Directories
// contribute their regular files in name order, without recursing. Files that
// are not images or come after the limit are not read; skipped counts them.
func CollectUploads(paths []string, limit int) (uploads []Upload, skipped int, err error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "stat %s", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "read dir %s", p)
		}
		var names []string
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				names = append(names, entry.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			files = append(files, filepath.Join(p, name))
		}
	}

	for i, f := range files {
		if len(uploads) >= limit {
			skipped += len(files) - i
			break
		}

		image, err := isImageFile(f)
		if err != nil {
			return nil, 0, err
		}
		if !image {
			skipped++
			continue
		}

		upload, err := UploadFromFile(f)
		if err != nil {
			return nil, 0, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, skipped, nil
}
