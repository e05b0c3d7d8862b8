package store

import (
	"bytes"
	"testing"
	"time"

	"fieldshot/internal/catalog"
	"fieldshot/internal/config"
	"fieldshot/internal/testutil"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	database, cleanup := testutil.SetupTestDB(t)
	t.Cleanup(cleanup)
	s := NewWithDB(database, t.TempDir())
	return s
}

func testSnapshot(ids ...string) (catalog.Snapshot, map[string]catalog.Binary) {
	snap := catalog.Snapshot{
		Version: catalog.SnapshotVersion,
		Project: catalog.ProjectInfo{ClientName: "Acme", JobName: "Pad 12"},
		SavedAt: time.Now().UTC().Truncate(time.Second),
	}
	bins := make(map[string]catalog.Binary, len(ids))
	for i, id := range ids {
		snap.Photos = append(snap.Photos, catalog.Photo{
			ID:           id,
			Name:         "ACM_PAD_20260314_0001.webp",
			OriginalName: "IMG_0001.jpg",
			SortOrder:    i,
		})
		bins[id] = catalog.Binary{
			WebP: []byte("webp-" + id),
			JPEG: []byte("jpeg-" + id),
		}
	}
	return snap, bins
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)

	snap, bins := testSnapshot("p1", "p2")
	if !s.Save(snap, bins, CurrentTarget) {
		t.Fatal("save failed")
	}

	got, gotBins, ok := s.Load(CurrentTarget)
	if !ok {
		t.Fatal("load returned no snapshot")
	}
	if len(got.Photos) != 2 {
		t.Fatalf("photos = %d, want 2", len(got.Photos))
	}
	if got.Project.ClientName != "Acme" || got.Project.JobName != "Pad 12" {
		t.Errorf("project = %+v", got.Project)
	}
	for _, id := range []string{"p1", "p2"} {
		bin, present := gotBins[id]
		if !present {
			t.Fatalf("binary for %s missing", id)
		}
		if !bytes.Equal(bin.WebP, []byte("webp-"+id)) || !bytes.Equal(bin.JPEG, []byte("jpeg-"+id)) {
			t.Errorf("binary for %s corrupted", id)
		}
	}
}

func TestLoadMissingTarget(t *testing.T) {
	s := testStore(t)
	if _, _, ok := s.Load("nope"); ok {
		t.Error("expected ok=false for unknown target")
	}
}

func TestSaveOverwritesTarget(t *testing.T) {
	s := testStore(t)

	snap1, bins1 := testSnapshot("p1")
	if !s.Save(snap1, bins1, CurrentTarget) {
		t.Fatal("first save failed")
	}
	snap2, bins2 := testSnapshot("p1", "p2", "p3")
	if !s.Save(snap2, bins2, CurrentTarget) {
		t.Fatal("second save failed")
	}

	got, _, ok := s.Load(CurrentTarget)
	if !ok || len(got.Photos) != 3 {
		t.Fatalf("after overwrite: ok=%v photos=%d, want 3", ok, len(got.Photos))
	}

	infos, err := s.ListSaved()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 {
		t.Fatalf("targets = %d, want 1", len(infos))
	}
	if infos[0].PhotoCount != 3 {
		t.Errorf("photo_count = %d, want 3", infos[0].PhotoCount)
	}
}

func TestLoadToleratesMissingBinary(t *testing.T) {
	s := testStore(t)

	snap, bins := testSnapshot("p1", "p2")
	delete(bins, "p2")
	if !s.Save(snap, bins, CurrentTarget) {
		t.Fatal("save failed")
	}

	got, gotBins, ok := s.Load(CurrentTarget)
	if !ok {
		t.Fatal("load failed")
	}
	if len(got.Photos) != 2 {
		t.Fatalf("photos = %d, want 2; records survive binary loss", len(got.Photos))
	}
	if _, present := gotBins["p1"]; !present {
		t.Error("binary for p1 should be present")
	}
	if _, present := gotBins["p2"]; present {
		t.Error("binary for p2 should be absent, not fabricated")
	}
}

func TestSaveRejectsOversizedSnapshot(t *testing.T) {
	s := testStore(t)

	snap, _ := testSnapshot("p1")
	snap.Project.Notes = string(make([]byte, config.MaxSnapshotBytes+1))
	if s.Save(snap, nil, CurrentTarget) {
		t.Fatal("expected quota rejection")
	}
	if _, _, ok := s.Load(CurrentTarget); ok {
		t.Error("rejected save must not leave a snapshot behind")
	}
}

func TestQuotaFailureKeepsPreviousSnapshot(t *testing.T) {
	s := testStore(t)

	snap, bins := testSnapshot("p1")
	if !s.Save(snap, bins, CurrentTarget) {
		t.Fatal("save failed")
	}

	big, _ := testSnapshot("p1", "p2")
	big.Project.Notes = string(make([]byte, config.MaxSnapshotBytes+1))
	if s.Save(big, nil, CurrentTarget) {
		t.Fatal("expected quota rejection")
	}

	got, _, ok := s.Load(CurrentTarget)
	if !ok || len(got.Photos) != 1 {
		t.Fatalf("previous snapshot lost: ok=%v photos=%d", ok, len(got.Photos))
	}
}

func TestNamedSaves(t *testing.T) {
	s := testStore(t)

	snapA, binsA := testSnapshot("a1")
	snapB, binsB := testSnapshot("b1", "b2")
	snapB.SavedAt = snapA.SavedAt.Add(time.Minute)
	if !s.Save(snapA, binsA, "site-alpha") {
		t.Fatal("save alpha failed")
	}
	if !s.Save(snapB, binsB, "site-bravo") {
		t.Fatal("save bravo failed")
	}

	infos, err := s.ListSaved()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("targets = %d, want 2", len(infos))
	}
	if infos[0].Target != "site-bravo" {
		t.Errorf("newest first, got %q", infos[0].Target)
	}

	if err := s.DeleteSaved("site-alpha"); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := s.Load("site-alpha"); ok {
		t.Error("deleted target still loads")
	}
	if _, _, ok := s.Load("site-bravo"); !ok {
		t.Error("unrelated target lost")
	}
}

func TestDeleteBinaries(t *testing.T) {
	s := testStore(t)

	snap, bins := testSnapshot("p1", "p2")
	if !s.Save(snap, bins, CurrentTarget) {
		t.Fatal("save failed")
	}
	if err := s.DeleteBinaries([]string{"p1"}); err != nil {
		t.Fatal(err)
	}

	_, gotBins, _ := s.Load(CurrentTarget)
	if _, present := gotBins["p1"]; present {
		t.Error("p1 binary should be gone")
	}
	if _, present := gotBins["p2"]; !present {
		t.Error("p2 binary should survive")
	}

	// Deleting ids with no stored files is not an error.
	if err := s.DeleteBinaries([]string{"p1", "ghost"}); err != nil {
		t.Errorf("repeat delete: %v", err)
	}
}

func TestClearAll(t *testing.T) {
	s := testStore(t)

	snap, bins := testSnapshot("p1")
	s.Save(snap, bins, CurrentTarget)
	s.Save(snap, bins, "named")

	if err := s.ClearAll(); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := s.Load(CurrentTarget); ok {
		t.Error("current target survived clear")
	}
	infos, err := s.ListSaved()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 0 {
		t.Errorf("targets after clear = %d", len(infos))
	}
	if _, ok := s.bins.Get("p1"); ok {
		t.Error("binaries survived clear")
	}
}
