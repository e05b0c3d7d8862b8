// Package catalog owns the live photo collection for a working session.
//
// The catalog is the single writer for all photo and well state: the ingest
// controller appends, user edit operations update and delete, and everything
// goes through methods on Catalog. Downstream consumers read copies.
package catalog

import (
	"sort"
	"sync"
	"time"
)

// Catalog is the in-memory collection of photos, wells and project state.
// All access is serialized through an internal mutex.
type Catalog struct {
	mu sync.Mutex

	photos        []Photo
	wells         []Well
	wellLocations map[string]GPSLocation
	project       ProjectInfo

	counter           int
	totalOriginalSize int64
	totalCompactSize  int64
	dirty             bool
}

func New() *Catalog {
	return &Catalog{
		wellLocations: make(map[string]GPSLocation),
		counter:       1,
	}
}

// Append adds a completed photo. Sort order defaults to the current length
// when the caller left it unset (negative).
func (c *Catalog) Append(p Photo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.SortOrder < 0 {
		p.SortOrder = len(c.photos)
	}
	c.photos = append(c.photos, p)
	c.counter++
	c.totalOriginalSize += p.OriginalSize
	c.totalCompactSize += p.Size
	c.dirty = true
}

// Remove deletes a photo and returns it so the caller can reclaim its
// binaries. The second result is false when the id is unknown.
func (c *Catalog) Remove(id string) (Photo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, p := range c.photos {
		if p.ID == id {
			c.photos = append(c.photos[:i], c.photos[i+1:]...)
			c.totalOriginalSize -= p.OriginalSize
			c.totalCompactSize -= p.Size
			c.dirty = true
			return p, true
		}
	}
	return Photo{}, false
}

// Update applies fn to the photo with the given id under the catalog lock.
func (c *Catalog) Update(id string, fn func(*Photo)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.photos {
		if c.photos[i].ID == id {
			fn(&c.photos[i])
			c.dirty = true
			return true
		}
	}
	return false
}

// Get returns a copy of the photo with the given id.
func (c *Catalog) Get(id string) (Photo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.photos {
		if p.ID == id {
			return p, true
		}
	}
	return Photo{}, false
}

// Photos returns a copy of the photo slice in sort order.
func (c *Catalog) Photos() []Photo {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Photo, len(c.photos))
	copy(out, c.photos)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// Len returns the number of photos.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.photos)
}

// NextCounter returns the per-session display name counter.
func (c *Catalog) NextCounter() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counter
}

// HasDuplicate reports whether a photo with the same original filename and
// original byte size already exists.
func (c *Catalog) HasDuplicate(name string, size int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.photos {
		if p.OriginalName == name && p.OriginalSize == size {
			return true
		}
	}
	return false
}

// AddWell registers a well name. Adding an existing name is a no-op.
func (c *Catalog) AddWell(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, w := range c.wells {
		if w.Name == name {
			return
		}
	}
	c.wells = append(c.wells, Well{Name: name})
	c.dirty = true
}

// RemoveWell drops a well and unassigns (never deletes) its photos.
func (c *Catalog) RemoveWell(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.wells[:0]
	for _, w := range c.wells {
		if w.Name != name {
			kept = append(kept, w)
		}
	}
	c.wells = kept
	delete(c.wellLocations, name)
	for i := range c.photos {
		if c.photos[i].Well == name {
			c.photos[i].Well = ""
		}
	}
	c.dirty = true
}

// SetWellLocation records a GPS location for a well.
func (c *Catalog) SetWellLocation(name string, loc GPSLocation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wellLocations[name] = loc
	c.dirty = true
}

// AssignWell sets the well for every photo in ids.
func (c *Catalog) AssignWell(ids []string, well string) {
	c.assign(ids, func(p *Photo) { p.Well = well })
}

// AssignCategory sets the category for every photo in ids.
func (c *Catalog) AssignCategory(ids []string, category string) {
	c.assign(ids, func(p *Photo) { p.Category = category })
}

func (c *Catalog) assign(ids []string, fn func(*Photo)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for i := range c.photos {
		if want[c.photos[i].ID] {
			fn(&c.photos[i])
		}
	}
	c.dirty = true
}

// Reorder moves the photo fromID to the position of toID and recomputes a
// contiguous sort order.
func (c *Catalog) Reorder(fromID, toID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	from, to := -1, -1
	for i, p := range c.photos {
		switch p.ID {
		case fromID:
			from = i
		case toID:
			to = i
		}
	}
	if from == -1 || to == -1 {
		return false
	}

	moved := c.photos[from]
	c.photos = append(c.photos[:from], c.photos[from+1:]...)
	rest := append([]Photo{}, c.photos[to:]...)
	c.photos = append(append(c.photos[:to:to], moved), rest...)
	for i := range c.photos {
		c.photos[i].SortOrder = i
	}
	c.dirty = true
	return true
}

// SetProject merges non-zero project info fields.
func (c *Catalog) SetProject(info ProjectInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.project = info
	c.dirty = true
}

// Project returns the session project info.
func (c *Catalog) Project() ProjectInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project
}

// Statistics summarizes the catalog state.
func (c *Catalog) Statistics() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Statistics{
		TotalPhotos: len(c.photos),
		TotalWells:  len(c.wells),
		SpaceSaved:  c.totalOriginalSize - c.totalCompactSize,
	}
	for _, p := range c.photos {
		if p.Well != "" && p.Category != "" {
			stats.OrganizedPhotos++
		} else {
			stats.UnassignedPhotos++
		}
	}
	return stats
}

// Snapshot produces the persisted unit: a deep copy of the catalog state with
// per-well photo counts recomputed. Binary payloads are carried on the copies
// but are excluded from JSON marshalling by the Photo type itself.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[string]int)
	photos := make([]Photo, len(c.photos))
	copy(photos, c.photos)
	for _, p := range photos {
		if p.Well != "" {
			counts[p.Well]++
		}
	}

	wells := make([]Well, len(c.wells))
	for i, w := range c.wells {
		wells[i] = Well{Name: w.Name, Count: counts[w.Name]}
	}

	locs := make(map[string]GPSLocation, len(c.wellLocations))
	for k, v := range c.wellLocations {
		locs[k] = v
	}

	return Snapshot{
		Version:           SnapshotVersion,
		Project:           c.project,
		Wells:             wells,
		WellLocations:     locs,
		Photos:            photos,
		TotalOriginalSize: c.totalOriginalSize,
		TotalCompactSize:  c.totalCompactSize,
		SavedAt:           time.Now().UTC(),
	}
}

// Binaries returns the payload pair for every photo that has one attached,
// keyed by photo id.
func (c *Catalog) Binaries() map[string]Binary {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Binary)
	for _, p := range c.photos {
		if p.HasPayload() {
			out[p.ID] = Binary{WebP: p.WebP, JPEG: p.JPEG}
		}
	}
	return out
}

// Hydrate replaces the catalog state from a loaded snapshot and reattaches
// binary payloads by photo id. Photos without an entry in binaries keep empty
// payload fields.
func (c *Catalog) Hydrate(snap Snapshot, binaries map[string]Binary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.photos = make([]Photo, len(snap.Photos))
	copy(c.photos, snap.Photos)
	for i := range c.photos {
		if b, ok := binaries[c.photos[i].ID]; ok {
			c.photos[i].WebP = b.WebP
			c.photos[i].JPEG = b.JPEG
		}
	}
	c.wells = make([]Well, len(snap.Wells))
	copy(c.wells, snap.Wells)
	c.wellLocations = make(map[string]GPSLocation, len(snap.WellLocations))
	for k, v := range snap.WellLocations {
		c.wellLocations[k] = v
	}
	c.project = snap.Project
	c.totalOriginalSize = snap.TotalOriginalSize
	c.totalCompactSize = snap.TotalCompactSize
	c.counter = len(c.photos) + 1
	c.dirty = false
}

// Reset clears all state back to a fresh session.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.photos = nil
	c.wells = nil
	c.wellLocations = make(map[string]GPSLocation)
	c.project = ProjectInfo{}
	c.counter = 1
	c.totalOriginalSize = 0
	c.totalCompactSize = 0
	c.dirty = true
}

// Dirty reports whether the catalog changed since the last MarkSaved.
func (c *Catalog) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// MarkSaved clears the dirty flag after a successful persist.
func (c *Catalog) MarkSaved() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
}
