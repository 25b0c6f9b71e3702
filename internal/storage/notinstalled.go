package storage

import (
	"database/sql"
	"fmt"

	"github.com/snapkit/snapkit/internal/catalog"
)

const selectNotInstalledFields = `id, name, description, download_url, tags, added_at`

// AddNotInstalledApp inserts a not-installed app and sets its ID.
func (d *DB) AddNotInstalledApp(a *catalog.NotInstalledApp) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.AddedAt.IsZero() {
		a.AddedAt = nowUTC()
	}
	a.Tags = catalog.NormalizeTags(a.Tags)

	res, err := d.q.Exec(`
		INSERT INTO not_installed_apps (name, description, download_url, tags, added_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.Name, nullableStringValue(a.Description), nullableStringValue(a.DownloadURL),
		nullableStringValue(a.Tags), formatTime(a.AddedAt))
	if err != nil {
		return fmt.Errorf("inserting not-installed app %q: %w", a.Name, err)
	}

	a.ID, err = res.LastInsertId()
	return err
}

// DeleteNotInstalledApp removes a not-installed app.
func (d *DB) DeleteNotInstalledApp(id int64) error {
	res, err := d.q.Exec(`DELETE FROM not_installed_apps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting not-installed app %d: %w", id, err)
	}
	return requireAffected(res)
}

// GetNotInstalledApp retrieves a not-installed app by ID. Returns nil if absent.
func (d *DB) GetNotInstalledApp(id int64) (*catalog.NotInstalledApp, error) {
	row := d.q.QueryRow(`SELECT `+selectNotInstalledFields+` FROM not_installed_apps WHERE id = ?`, id)
	return scanNotInstalledApp(row)
}

// FindNotInstalledByName returns the first not-installed app with an exact name match, or nil.
func (d *DB) FindNotInstalledByName(name string) (*catalog.NotInstalledApp, error) {
	row := d.q.QueryRow(`
		SELECT `+selectNotInstalledFields+`
		FROM not_installed_apps
		WHERE name = ?
		ORDER BY id
		LIMIT 1
	`, name)
	return scanNotInstalledApp(row)
}

// ListNotInstalledApps returns not-installed apps ordered by name.
func (d *DB) ListNotInstalledApps(f ListFilter) ([]catalog.NotInstalledApp, error) {
	where, args := searchClause("name", f.Search)
	rows, err := d.q.Query(`SELECT `+selectNotInstalledFields+` FROM not_installed_apps`+where+
		` ORDER BY name COLLATE NOCASE, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying not-installed apps: %w", err)
	}
	defer rows.Close()

	var apps []catalog.NotInstalledApp
	for rows.Next() {
		var f notInstalledScanFields
		if err := rows.Scan(f.targets()...); err != nil {
			return nil, err
		}
		apps = append(apps, f.toNotInstalledApp())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if f.Tag == "" {
		return apps, nil
	}

	var filtered []catalog.NotInstalledApp
	for _, a := range apps {
		if catalog.HasTag(a.Tags, f.Tag) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

type notInstalledScanFields struct {
	id int64

	name, description, downloadURL, tags, addedAt sql.NullString
}

func (f *notInstalledScanFields) targets() []any {
	return []any{&f.id, &f.name, &f.description, &f.downloadURL, &f.tags, &f.addedAt}
}

func (f *notInstalledScanFields) toNotInstalledApp() catalog.NotInstalledApp {
	return catalog.NotInstalledApp{
		ID:          f.id,
		Name:        f.name.String,
		Description: f.description.String,
		DownloadURL: f.downloadURL.String,
		Tags:        f.tags.String,
		AddedAt:     parseTime(f.addedAt),
	}
}

func scanNotInstalledApp(row *sql.Row) (*catalog.NotInstalledApp, error) {
	var f notInstalledScanFields
	if err := row.Scan(f.targets()...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a := f.toNotInstalledApp()
	return &a, nil
}
