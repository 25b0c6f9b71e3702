package storage

import (
	"database/sql"
	"fmt"

	"github.com/snapkit/snapkit/internal/catalog"
)

const selectResourceFields = `id, name, path, resource_type, tags, added_at`

// AddResource inserts a resource item and sets its ID.
func (d *DB) AddResource(r *catalog.ResourceItem) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.AddedAt.IsZero() {
		r.AddedAt = nowUTC()
	}
	r.Tags = catalog.NormalizeTags(r.Tags)

	res, err := d.q.Exec(`
		INSERT INTO resource_items (name, path, resource_type, tags, added_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.Name, r.Path, string(r.Type), nullableStringValue(r.Tags), formatTime(r.AddedAt))
	if err != nil {
		return fmt.Errorf("inserting resource %q: %w", r.Name, err)
	}

	r.ID, err = res.LastInsertId()
	return err
}

// DeleteResource removes a resource item.
func (d *DB) DeleteResource(id int64) error {
	res, err := d.q.Exec(`DELETE FROM resource_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting resource %d: %w", id, err)
	}
	return requireAffected(res)
}

// GetResource retrieves a resource item by ID. Returns nil if absent.
func (d *DB) GetResource(id int64) (*catalog.ResourceItem, error) {
	row := d.q.QueryRow(`SELECT `+selectResourceFields+` FROM resource_items WHERE id = ?`, id)
	var f resourceScanFields
	if err := row.Scan(f.targets()...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	r := f.toResourceItem()
	return &r, nil
}

// FindResource returns the first resource with the given name and path, or nil.
func (d *DB) FindResource(name, path string) (*catalog.ResourceItem, error) {
	var id int64
	err := d.q.QueryRow(`
		SELECT id FROM resource_items
		WHERE name = ? AND path = ?
		ORDER BY id
		LIMIT 1
	`, name, path).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return d.GetResource(id)
}

// ListResources returns resource items ordered by name.
func (d *DB) ListResources(f ListFilter) ([]catalog.ResourceItem, error) {
	where, args := searchClause("name", f.Search)
	rows, err := d.q.Query(`SELECT `+selectResourceFields+` FROM resource_items`+where+
		` ORDER BY name COLLATE NOCASE, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	defer rows.Close()

	var items []catalog.ResourceItem
	for rows.Next() {
		var sf resourceScanFields
		if err := rows.Scan(sf.targets()...); err != nil {
			return nil, err
		}
		item := sf.toResourceItem()
		if f.Tag != "" && !catalog.HasTag(item.Tags, f.Tag) {
			continue
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type resourceScanFields struct {
	id int64

	name, path, resourceType, tags, addedAt sql.NullString
}

func (f *resourceScanFields) targets() []any {
	return []any{&f.id, &f.name, &f.path, &f.resourceType, &f.tags, &f.addedAt}
}

func (f *resourceScanFields) toResourceItem() catalog.ResourceItem {
	return catalog.ResourceItem{
		ID:      f.id,
		Name:    f.name.String,
		Path:    f.path.String,
		Type:    catalog.ResourceType(f.resourceType.String),
		Tags:    f.tags.String,
		AddedAt: parseTime(f.addedAt),
	}
}
