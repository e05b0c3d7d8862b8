package ingest

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fieldshot/internal/config"
)

// File is the ingestion input: a file-like object with a name, declared byte
// size, MIME type, last-modified timestamp and a raw bytes accessor.
type File interface {
	Name() string
	Size() int64
	ContentType() string
	ModTime() time.Time
	Bytes() ([]byte, error)
}

// IsValidImage accepts a file by declared MIME type, falling back to the
// filename extension when no type is declared.
func IsValidImage(f File) bool {
	if ct := strings.ToLower(f.ContentType()); ct != "" {
		for _, valid := range config.ValidImageTypes {
			if ct == valid {
				return true
			}
		}
	}
	name := strings.ToLower(f.Name())
	for _, ext := range config.ValidImageExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// DiskFile adapts a file on disk to the File interface.
type DiskFile struct {
	path string
	info os.FileInfo
}

func OpenDisk(path string) (*DiskFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &DiskFile{path: path, info: info}, nil
}

func (f *DiskFile) Name() string { return filepath.Base(f.path) }

func (f *DiskFile) Size() int64 { return f.info.Size() }

func (f *DiskFile) ContentType() string {
	return mime.TypeByExtension(filepath.Ext(f.path))
}

func (f *DiskFile) ModTime() time.Time { return f.info.ModTime() }

func (f *DiskFile) Bytes() ([]byte, error) { return os.ReadFile(f.path) }
