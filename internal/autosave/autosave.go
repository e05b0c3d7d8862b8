// Package autosave periodically persists the working session so a crash or
// power loss in the field costs at most one interval of work.
package autosave

import (
	"context"
	"log"
	"sync"
	"time"

	"fieldshot/internal/catalog"
	"fieldshot/internal/config"
	"fieldshot/internal/store"
)

// Saver runs the periodic save loop against the current session target.
type Saver struct {
	cat      *catalog.Catalog
	st       *store.Store
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}

	mu      sync.Mutex
	failing bool
}

// Config holds saver configuration.
type Config struct {
	Catalog  *catalog.Catalog
	Store    *store.Store
	Interval time.Duration
}

// New creates a new Saver instance.
func New(cfg Config) *Saver {
	if cfg.Interval == 0 {
		cfg.Interval = config.AutoSaveInterval
	}

	return &Saver{
		cat:      cfg.Catalog,
		st:       cfg.Store,
		interval: cfg.Interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the save scheduler in a goroutine.
func (s *Saver) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop gracefully stops the saver after flushing any unsaved changes.
func (s *Saver) Stop() {
	close(s.stopChan)
	<-s.doneChan
}

func (s *Saver) run(ctx context.Context) {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.saveIfDirty()
		case <-s.stopChan:
			log.Println("Autosave: received stop signal, flushing...")
			s.saveIfDirty()
			return
		case <-ctx.Done():
			log.Println("Autosave: context cancelled, shutting down...")
			return
		}
	}
}

// saveIfDirty persists the session when it has unsaved changes. An empty
// catalog is never written: it would clobber a restorable snapshot with
// nothing.
func (s *Saver) saveIfDirty() {
	if !s.cat.Dirty() || s.cat.Len() == 0 {
		return
	}
	s.save()
}

// SaveNow forces an immediate save regardless of the dirty flag. Returns
// false when the session is empty or the store rejected the write.
func (s *Saver) SaveNow() bool {
	if s.cat.Len() == 0 {
		return false
	}
	return s.save()
}

// save serializes concurrent SaveNow and ticker saves.
func (s *Saver) save() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.cat.Snapshot()
	ok := s.st.Save(snap, s.cat.Binaries(), store.CurrentTarget)
	if !ok {
		if !s.failing {
			log.Printf("Autosave: save failed, will retry next interval (%d photos)", len(snap.Photos))
		}
		s.failing = true
		return false
	}
	if s.failing {
		log.Printf("Autosave: save recovered (%d photos)", len(snap.Photos))
	}
	s.failing = false
	s.cat.MarkSaved()
	return true
}
