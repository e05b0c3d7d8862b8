// Package store is the split persistence layer: a synchronous, quota-bound
// record store (SQLite snapshot rows) and a larger binary store (filesystem
// blobs keyed by photo id). The two stores are independent resources with no
// cross-store transaction; a record without its binary must be tolerated on
// load.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"fieldshot/internal/catalog"
	"fieldshot/internal/config"
	"fieldshot/internal/db"
)

// CurrentTarget is the save target used for the auto-saved working session.
const CurrentTarget = "current"

// ErrQuotaExceeded is reported when a snapshot marshals larger than the
// record store quota.
var ErrQuotaExceeded = errors.New("store: snapshot exceeds record store quota")

// SavedInfo describes one saved target for listing.
type SavedInfo struct {
	Target     string
	PhotoCount int
	SavedAt    time.Time
}

// Store joins the record store and the binary store behind the persistence
// boundary. Failures never propagate past Save/Load as panics or errors;
// callers get a boolean and retry later.
type Store struct {
	rdb  *sql.DB
	bins *BinaryStore
}

// Open initializes both stores under the configured paths.
func Open(cfg *config.Config) (*Store, error) {
	rdb, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	return &Store{rdb: rdb, bins: NewBinaryStore(cfg.DataDir)}, nil
}

// NewWithDB wires a store from an existing database handle (for tests).
func NewWithDB(rdb *sql.DB, dataDir string) *Store {
	return &Store{rdb: rdb, bins: NewBinaryStore(dataDir)}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// DB exposes the record store handle for collaborators that log events into
// the same database.
func (s *Store) DB() *sql.DB {
	return s.rdb
}

// Save persists a snapshot under target: the compact record synchronously,
// then the binary payloads for every photo that has one, written
// concurrently. Returns false if either step fails; a failed record write
// leaves the previous snapshot intact.
func (s *Store) Save(snap catalog.Snapshot, binaries map[string]catalog.Binary, target string) bool {
	if err := s.saveRecord(snap, target); err != nil {
		log.Printf("store: record save failed for %q: %v", target, err)
		return false
	}
	if err := s.bins.PutAll(binaries); err != nil {
		log.Printf("store: binary save failed for %q: %v", target, err)
		return false
	}
	return true
}

func (s *Store) saveRecord(snap catalog.Snapshot, target string) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if len(payload) > config.MaxSnapshotBytes {
		return fmt.Errorf("%w: %d bytes", ErrQuotaExceeded, len(payload))
	}

	tx, err := s.rdb.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO snapshots (target, payload, photo_count, saved_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(target) DO UPDATE SET
            payload = excluded.payload,
            photo_count = excluded.photo_count,
            saved_at = excluded.saved_at`,
		target, string(payload), len(snap.Photos), snap.SavedAt)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return tx.Commit()
}

// Load reads the snapshot stored under target and rejoins binary payloads by
// photo id. Photos whose binaries are missing come back with empty payload
// fields. The last result is false when no snapshot exists for target.
func (s *Store) Load(target string) (*catalog.Snapshot, map[string]catalog.Binary, bool) {
	var payload string
	err := s.rdb.QueryRow(`SELECT payload FROM snapshots WHERE target = ?`, target).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, false
	}
	if err != nil {
		log.Printf("store: load %q: %v", target, err)
		return nil, nil, false
	}

	var snap catalog.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		log.Printf("store: corrupt snapshot %q: %v", target, err)
		return nil, nil, false
	}

	ids := make([]string, len(snap.Photos))
	for i, p := range snap.Photos {
		ids[i] = p.ID
	}
	return &snap, s.bins.GetAll(ids), true
}

// ListSaved returns all save targets, newest first.
func (s *Store) ListSaved() ([]SavedInfo, error) {
	rows, err := s.rdb.Query(`SELECT target, photo_count, saved_at FROM snapshots ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SavedInfo
	for rows.Next() {
		var info SavedInfo
		if err := rows.Scan(&info.Target, &info.PhotoCount, &info.SavedAt); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteSaved removes one saved snapshot. Binaries are left alone: they may
// be shared with other targets holding the same photo ids.
func (s *Store) DeleteSaved(target string) error {
	_, err := s.rdb.Exec(`DELETE FROM snapshots WHERE target = ?`, target)
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", target, err)
	}
	return nil
}

// DeleteBinaries eagerly removes the stored variants for deleted photos.
func (s *Store) DeleteBinaries(ids []string) error {
	return s.bins.Delete(ids)
}

// ClearAll wipes every snapshot and all stored binaries.
func (s *Store) ClearAll() error {
	if _, err := s.rdb.Exec(`DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return s.bins.Clear()
}
