package store

import (
	"context"
	"os"
	"testing"

	bolt "go.etcd.io/bbolt"

	"github.com/nicka06/monketer/internal/template"
)

func setupTestDB(t *testing.T) (*bolt.DB, func()) {
	tmpfile, err := os.CreateTemp("", "store_test_*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpfile.Close()

	db, err := bolt.Open(tmpfile.Name(), 0600, nil)
	if err != nil {
		os.Remove(tmpfile.Name())
		t.Fatalf("failed to open db: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(tmpfile.Name())
	}

	return db, cleanup
}

func setupStore(t *testing.T) (*Store, func()) {
	db, cleanup := setupTestDB(t)
	s, err := New(db)
	if err != nil {
		cleanup()
		t.Fatalf("New() error = %v", err)
	}
	return s, cleanup
}

func sampleTemplate(name string) *template.Template {
	return &template.Template{
		Name: name,
		Sections: []template.Section{{
			Elements: []template.Element{{
				Type:       template.TypeText,
				Content:    "Hello",
				Properties: &template.TextProps{},
			}},
		}},
	}
}

func TestStore_Create(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	tpl := sampleTemplate("welcome")

	rec, err := s.Create(ctx, tpl)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if rec.Template.ID == "" {
		t.Error("Create() did not assign an id")
	}
	if rec.Revision != 1 {
		t.Errorf("Create() revision = %d, want 1", rec.Revision)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Create() did not set CreatedAt")
	}
}

func TestStore_CreateRequiresName(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	if _, err := s.Create(context.Background(), sampleTemplate("")); err == nil {
		t.Error("Create() with empty name should fail")
	}
}

func TestStore_CreateDuplicateName(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := s.Create(ctx, sampleTemplate("welcome")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.Create(ctx, sampleTemplate("welcome")); err == nil {
		t.Error("Create() with duplicate name should fail")
	}
}

func TestStore_GetRoundTrip(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	rec, err := s.Create(ctx, sampleTemplate("welcome"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.Get(ctx, rec.Template.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for stored template")
	}
	if got.Template.Name != "welcome" {
		t.Errorf("Get() name = %q, want welcome", got.Template.Name)
	}

	el := got.Template.Sections[0].Elements[0]
	if _, ok := el.Properties.(*template.TextProps); !ok {
		t.Errorf("Properties round-tripped as %T, want *TextProps", el.Properties)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	got, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil for unknown id", got)
	}
}

func TestStore_GetByName(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := s.Create(ctx, sampleTemplate("welcome")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.GetByName(ctx, "welcome")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got == nil || got.Template.Name != "welcome" {
		t.Errorf("GetByName() = %+v, want welcome", got)
	}
}

func TestStore_List(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	for _, name := range []string{"welcome", "digest", "receipt"} {
		if _, err := s.Create(ctx, sampleTemplate(name)); err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
	}

	all, err := s.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List() returned %d records, want 3", len(all))
	}

	filtered, err := s.List(ctx, ListFilter{Search: "wel"})
	if err != nil {
		t.Fatalf("List(search) error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].Template.Name != "welcome" {
		t.Errorf("List(search) = %+v, want only welcome", filtered)
	}

	limited, err := s.List(ctx, ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List(limit) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(limit) returned %d records, want 2", len(limited))
	}
}

func TestStore_UpdateSnapshotsPreviousRevision(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	rec, err := s.Create(ctx, sampleTemplate("welcome"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	id := rec.Template.ID

	updated, err := rec.Template.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	updated.Sections[0].Elements[0].Content = "Hello again"
	rec2, err := s.Update(ctx, updated)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if rec2.Revision != 2 {
		t.Errorf("Update() revision = %d, want 2", rec2.Revision)
	}
	if !rec2.CreatedAt.Equal(rec.CreatedAt) {
		t.Error("Update() must preserve CreatedAt")
	}

	old, err := s.GetVersion(ctx, id, 1)
	if err != nil {
		t.Fatalf("GetVersion(1) error = %v", err)
	}
	if old == nil {
		t.Fatal("GetVersion(1) returned nil, snapshot missing")
	}
	if old.Template.Sections[0].Elements[0].Content != "Hello" {
		t.Errorf("snapshot content = %q, want original", old.Template.Sections[0].Elements[0].Content)
	}

	current, err := s.GetVersion(ctx, id, 2)
	if err != nil {
		t.Fatalf("GetVersion(2) error = %v", err)
	}
	if current == nil || current.Template.Sections[0].Elements[0].Content != "Hello again" {
		t.Errorf("GetVersion(2) = %+v, want current content", current)
	}

	versions, err := s.Versions(ctx, id)
	if err != nil {
		t.Fatalf("Versions() error = %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("Versions() returned %d records, want 2", len(versions))
	}
	if versions[0].Revision != 1 || versions[1].Revision != 2 {
		t.Errorf("Versions() order = [%d %d], want [1 2]", versions[0].Revision, versions[1].Revision)
	}
}

func TestStore_UpdateRename(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	rec, err := s.Create(ctx, sampleTemplate("welcome"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.Create(ctx, sampleTemplate("digest")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	renamed, err := rec.Template.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	renamed.Name = "digest"
	if _, err := s.Update(ctx, renamed); err == nil {
		t.Error("Update() renaming onto an existing name should fail")
	}

	renamed.Name = "onboarding"
	if _, err := s.Update(ctx, renamed); err != nil {
		t.Fatalf("Update() rename error = %v", err)
	}

	old, err := s.GetByName(ctx, "welcome")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if old != nil {
		t.Error("old name index entry should be gone after rename")
	}
	now, err := s.GetByName(ctx, "onboarding")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if now == nil {
		t.Error("new name not indexed after rename")
	}
}

func TestStore_Delete(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	rec, err := s.Create(ctx, sampleTemplate("welcome"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	id := rec.Template.ID

	updated, err := rec.Template.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	updated.Sections[0].Elements[0].Content = "changed"
	if _, err := s.Update(ctx, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Error("template still present after Delete()")
	}
	byName, err := s.GetByName(ctx, "welcome")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if byName != nil {
		t.Error("name index entry still present after Delete()")
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 0 || stats.Snapshots != 0 {
		t.Errorf("Stats() after delete = %+v, want zeros", stats)
	}

	// Deleting again is a no-op.
	if err := s.Delete(ctx, id); err != nil {
		t.Errorf("Delete() of missing id error = %v", err)
	}
}
