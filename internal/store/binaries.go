package store

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"fieldshot/internal/catalog"
)

// BinaryStore holds the two encoded image variants per photo id as files
// under {baseDir}/binaries/{id}.webp and {id}.jpg. Writes are atomic and
// fan out concurrently across photos.
type BinaryStore struct {
	baseDir string
}

func NewBinaryStore(baseDir string) *BinaryStore {
	return &BinaryStore{baseDir: filepath.Join(baseDir, "binaries")}
}

func (b *BinaryStore) webpPath(id string) string {
	return filepath.Join(b.baseDir, id+".webp")
}

func (b *BinaryStore) jpegPath(id string) string {
	return filepath.Join(b.baseDir, id+".jpg")
}

// Put writes both variants for one photo id.
func (b *BinaryStore) Put(id string, bin catalog.Binary) error {
	if len(bin.WebP) > 0 {
		if err := atomicWrite(b.webpPath(id), bytes.NewReader(bin.WebP)); err != nil {
			return fmt.Errorf("write webp %s: %w", id, err)
		}
	}
	if len(bin.JPEG) > 0 {
		if err := atomicWrite(b.jpegPath(id), bytes.NewReader(bin.JPEG)); err != nil {
			return fmt.Errorf("write jpeg %s: %w", id, err)
		}
	}
	return nil
}

// PutAll writes every entry, a photo per goroutine. The first error is
// returned; remaining writes still run to completion.
func (b *BinaryStore) PutAll(bins map[string]catalog.Binary) error {
	g := new(errgroup.Group)
	for id, bin := range bins {
		id, bin := id, bin
		g.Go(func() error { return b.Put(id, bin) })
	}
	return g.Wait()
}

// Get reads the variant pair for one id. Missing files yield empty fields;
// the second result is false when neither variant exists.
func (b *BinaryStore) Get(id string) (catalog.Binary, bool) {
	var bin catalog.Binary
	if data, err := os.ReadFile(b.webpPath(id)); err == nil {
		bin.WebP = data
	}
	if data, err := os.ReadFile(b.jpegPath(id)); err == nil {
		bin.JPEG = data
	}
	return bin, len(bin.WebP) > 0 || len(bin.JPEG) > 0
}

// GetAll reads the pairs for every id that has at least one variant stored.
func (b *BinaryStore) GetAll(ids []string) map[string]catalog.Binary {
	out := make(map[string]catalog.Binary)
	for _, id := range ids {
		if bin, ok := b.Get(id); ok {
			out[id] = bin
		}
	}
	return out
}

// Delete removes the stored variants for the given ids. Unknown ids are
// ignored.
func (b *BinaryStore) Delete(ids []string) error {
	var firstErr error
	for _, id := range ids {
		for _, path := range []string{b.webpPath(id), b.jpegPath(id)} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
				firstErr = fmt.Errorf("remove %s: %w", path, err)
			}
		}
	}
	return firstErr
}

// Clear removes the whole binary directory.
func (b *BinaryStore) Clear() error {
	if err := os.RemoveAll(b.baseDir); err != nil {
		return fmt.Errorf("clear binaries: %w", err)
	}
	return nil
}

// atomicWrite writes data to path atomically using a temp file in the same
// directory.
func atomicWrite(path string, data io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	// ensure cleanup of tmp on error
	defer func() {
		tmp.Close()
		os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp to final: %w", err)
	}

	return nil
}
