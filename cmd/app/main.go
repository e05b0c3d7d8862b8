package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"fieldshot/internal/autosave"
	"fieldshot/internal/catalog"
	"fieldshot/internal/config"
	"fieldshot/internal/ingest"
	"fieldshot/internal/metrics"
	"fieldshot/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: fieldshot <photo-dir> [photo-dir...]")
	}

	cfg := config.Load()
	st, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	cat := catalog.New()
	if snap, bins, ok := st.Load(store.CurrentTarget); ok {
		cat.Hydrate(*snap, bins)
		log.Printf("Restored session: %d photos", cat.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Interrupted, cancelling...")
		cancel()
	}()

	events := metrics.New(st.DB())
	saver := autosave.New(autosave.Config{Catalog: cat, Store: st})
	saver.Start(ctx)

	ctrl := ingest.New(cat, func(p ingest.Progress) {
		log.Printf("Processed %d/%d", p.Completed, p.Total)
	})

	files, err := collectFiles(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	summary := ctrl.Process(ctx, files)
	log.Printf("Done: %d processed, %d failed, %d excluded, %d duplicates",
		summary.Processed, summary.Failed, summary.Excluded, summary.Duplicates)
	if summary.Cancelled {
		events.LogCancel(ctx, summary.Processed, len(files))
	}
	if summary.OriginalBytes > 0 {
		log.Printf("Compacted %d bytes to %d bytes", summary.OriginalBytes, summary.CompactBytes)
	}

	saver.Stop()
	if cat.Dirty() && cat.Len() > 0 {
		if st.Save(cat.Snapshot(), cat.Binaries(), store.CurrentTarget) {
			cat.MarkSaved()
			events.LogSave(ctx, store.CurrentTarget, cat.Len())
		}
	}
}

// collectFiles opens every valid image directly under the given directories.
// Single file paths are accepted too.
func collectFiles(paths []string) ([]ingest.File, error) {
	var files []ingest.File
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			f, err := ingest.OpenDisk(path)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			f, err := ingest.OpenDisk(filepath.Join(path, e.Name()))
			if err != nil {
				log.Printf("Skipping %s: %v", e.Name(), err)
				continue
			}
			files = append(files, f)
		}
	}
	return files, nil
}
