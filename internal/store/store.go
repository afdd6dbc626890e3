// Package store persists templates in bbolt. Each template is stored under
// its id with a name index for lookups, and every update snapshots the
// previous revision so the diff API can compare any two points in a
// template's history.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/nicka06/monketer/internal/template"
)

var (
	bucketTemplates = []byte("templates")
	bucketNames     = []byte("template_names")
	bucketVersions  = []byte("template_versions")
)

// Record is the stored envelope around a template: the document itself plus
// the persistence metadata the model deliberately does not carry.
type Record struct {
	Template  template.Template `json:"template"`
	Revision  int               `json:"revision"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ListFilter controls List output
type ListFilter struct {
	Search string
	Offset int
	Limit  int
}

// Stats holds storage counters
type Stats struct {
	Total     int `json:"total"`
	Snapshots int `json:"snapshots"`
}

// Store provides template storage operations
type Store struct {
	db *bolt.DB
}

// New creates a template store, creating its buckets if needed.
func New(db *bolt.DB) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketTemplates, bucketNames, bucketVersions} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create template buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Create stores a new template at revision 1. The template keeps an id it
// already carries; one is generated otherwise.
func (s *Store) Create(ctx context.Context, tpl *template.Template) (*Record, error) {
	if tpl.Name == "" {
		return nil, fmt.Errorf("template name is required")
	}
	template.Normalize(tpl, template.NewID)
	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	now := time.Now()
	rec := &Record{
		Template:  *tpl,
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		templates := tx.Bucket(bucketTemplates)
		names := tx.Bucket(bucketNames)

		if existing := names.Get([]byte(tpl.Name)); existing != nil {
			return fmt.Errorf("template with name %q already exists", tpl.Name)
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal template: %w", err)
		}
		if err := templates.Put([]byte(tpl.ID), data); err != nil {
			return err
		}
		return names.Put([]byte(tpl.Name), []byte(tpl.ID))
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Get retrieves a template by id. A missing id yields (nil, nil).
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	var rec *Record

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketTemplates).Get([]byte(id))
		if data == nil {
			return nil
		}
		rec = &Record{}
		return json.Unmarshal(data, rec)
	})

	return rec, err
}

// GetByName retrieves a template through the name index.
func (s *Store) GetByName(ctx context.Context, name string) (*Record, error) {
	var rec *Record

	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketNames).Get([]byte(name))
		if id == nil {
			return nil
		}
		data := tx.Bucket(bucketTemplates).Get(id)
		if data == nil {
			return nil
		}
		rec = &Record{}
		return json.Unmarshal(data, rec)
	})

	return rec, err
}

// List returns stored templates with optional search and paging.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	var records []*Record

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTemplates).Cursor()

		skipped := 0
		count := 0

		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}

			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(rec.Template.Name), search) {
					continue
				}
			}

			if skipped < filter.Offset {
				skipped++
				continue
			}

			records = append(records, &rec)
			count++

			if filter.Limit > 0 && count >= filter.Limit {
				break
			}
		}

		return nil
	})

	return records, err
}

// Update replaces a stored template. The previous revision is snapshotted
// into the versions bucket before the new one is written, so history is
// never lost to an overwrite.
func (s *Store) Update(ctx context.Context, tpl *template.Template) (*Record, error) {
	template.Normalize(tpl, template.NewID)
	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	var rec *Record
	err := s.db.Update(func(tx *bolt.Tx) error {
		templates := tx.Bucket(bucketTemplates)
		names := tx.Bucket(bucketNames)
		versions := tx.Bucket(bucketVersions)

		existingData := templates.Get([]byte(tpl.ID))
		if existingData == nil {
			return fmt.Errorf("template not found")
		}
		var existing Record
		if err := json.Unmarshal(existingData, &existing); err != nil {
			return err
		}

		if existing.Template.Name != tpl.Name {
			if tpl.Name == "" {
				return fmt.Errorf("template name is required")
			}
			if otherID := names.Get([]byte(tpl.Name)); otherID != nil {
				return fmt.Errorf("template with name %q already exists", tpl.Name)
			}
			if err := names.Delete([]byte(existing.Template.Name)); err != nil {
				return err
			}
			if err := names.Put([]byte(tpl.Name), []byte(tpl.ID)); err != nil {
				return err
			}
		}

		if err := versions.Put(versionKey(tpl.ID, existing.Revision), existingData); err != nil {
			return err
		}

		rec = &Record{
			Template:  *tpl,
			Revision:  existing.Revision + 1,
			CreatedAt: existing.CreatedAt,
			UpdatedAt: time.Now(),
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal template: %w", err)
		}
		return templates.Put([]byte(tpl.ID), data)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a template, its name index entry and all its snapshots.
// Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		templates := tx.Bucket(bucketTemplates)

		data := templates.Get([]byte(id))
		if data == nil {
			return nil
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}

		if err := tx.Bucket(bucketNames).Delete([]byte(rec.Template.Name)); err != nil {
			return err
		}

		versions := tx.Bucket(bucketVersions)
		c := versions.Cursor()
		prefix := []byte(id + "/")
		var stale [][]byte
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			stale = append(stale, append([]byte(nil), k...))
		}
		for _, k := range stale {
			if err := versions.Delete(k); err != nil {
				return err
			}
		}

		return templates.Delete([]byte(id))
	})
}

// GetVersion retrieves one revision of a template. The current revision is
// served from the live bucket; older ones come from snapshots. A missing
// revision yields (nil, nil).
func (s *Store) GetVersion(ctx context.Context, id string, revision int) (*Record, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	if current.Revision == revision {
		return current, nil
	}

	var rec *Record
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketVersions).Get(versionKey(id, revision))
		if data == nil {
			return nil
		}
		rec = &Record{}
		return json.Unmarshal(data, rec)
	})
	return rec, err
}

// Versions lists the snapshot history of a template, oldest first, with the
// current revision appended.
func (s *Store) Versions(ctx context.Context, id string) ([]*Record, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	var records []*Record
	err = s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketVersions).Cursor()
		prefix := []byte(id + "/")
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return append(records, current), nil
}

// Stats returns storage counters
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTemplates).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			stats.Total++
		}
		vc := tx.Bucket(bucketVersions).Cursor()
		for k, _ := vc.First(); k != nil; k, _ = vc.Next() {
			stats.Snapshots++
		}
		return nil
	})

	return stats, err
}

// versionKey builds the snapshot key. Zero-padding keeps cursor order equal
// to revision order.
func versionKey(id string, revision int) []byte {
	return []byte(fmt.Sprintf("%s/%08d", id, revision))
}
