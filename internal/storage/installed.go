package storage

import (
	"database/sql"
	"fmt"

	"github.com/snapkit/snapkit/internal/catalog"
)

const selectInstalledFields = `id, name, publisher, install_location, version, registry_key, tags, scanned_at`

// AddInstalledApp inserts an installed app and sets its ID.
func (d *DB) AddInstalledApp(a *catalog.InstalledApp) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ScannedAt.IsZero() {
		a.ScannedAt = nowUTC()
	}
	a.Tags = catalog.NormalizeTags(a.Tags)

	res, err := d.q.Exec(`
		INSERT INTO installed_apps (name, publisher, install_location, version, registry_key, tags, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.Name, nullableStringValue(a.Publisher), nullableStringValue(a.InstallLocation),
		nullableStringValue(a.Version), nullableStringValue(a.RegistryKey),
		nullableStringValue(a.Tags), formatTime(a.ScannedAt))
	if err != nil {
		return fmt.Errorf("inserting installed app %q: %w", a.Name, err)
	}

	a.ID, err = res.LastInsertId()
	return err
}

// UpdateInstalledApp overwrites every column of an existing installed app.
func (d *DB) UpdateInstalledApp(a *catalog.InstalledApp) error {
	if err := a.Validate(); err != nil {
		return err
	}
	res, err := d.q.Exec(`
		UPDATE installed_apps
		SET name = ?, publisher = ?, install_location = ?, version = ?,
			registry_key = ?, tags = ?, scanned_at = ?
		WHERE id = ?
	`, a.Name, nullableStringValue(a.Publisher), nullableStringValue(a.InstallLocation),
		nullableStringValue(a.Version), nullableStringValue(a.RegistryKey),
		nullableStringValue(catalog.NormalizeTags(a.Tags)), formatTime(a.ScannedAt), a.ID)
	if err != nil {
		return fmt.Errorf("updating installed app %d: %w", a.ID, err)
	}
	return requireAffected(res)
}

// DeleteInstalledApp removes an installed app and, via cascade, its pin.
func (d *DB) DeleteInstalledApp(id int64) error {
	res, err := d.q.Exec(`DELETE FROM installed_apps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting installed app %d: %w", id, err)
	}
	return requireAffected(res)
}

// GetInstalledApp retrieves an installed app by ID. Returns nil if absent.
func (d *DB) GetInstalledApp(id int64) (*catalog.InstalledApp, error) {
	row := d.q.QueryRow(`SELECT `+selectInstalledFields+` FROM installed_apps WHERE id = ?`, id)
	return scanInstalledApp(row)
}

// FindInstalledByRegistryKey returns the first installed app with the given
// registry key, or nil. An empty key never matches.
func (d *DB) FindInstalledByRegistryKey(key string) (*catalog.InstalledApp, error) {
	if key == "" {
		return nil, nil
	}
	row := d.q.QueryRow(`
		SELECT `+selectInstalledFields+`
		FROM installed_apps
		WHERE registry_key = ?
		ORDER BY id
		LIMIT 1
	`, key)
	return scanInstalledApp(row)
}

// FindManualInstalledByName returns the first installed app with the given
// name and no registry key (a manual entry), or nil.
func (d *DB) FindManualInstalledByName(name string) (*catalog.InstalledApp, error) {
	row := d.q.QueryRow(`
		SELECT `+selectInstalledFields+`
		FROM installed_apps
		WHERE name = ? AND (registry_key IS NULL OR registry_key = '')
		ORDER BY id
		LIMIT 1
	`, name)
	return scanInstalledApp(row)
}

// ListInstalledApps returns installed apps ordered by name.
func (d *DB) ListInstalledApps(f ListFilter) ([]catalog.InstalledApp, error) {
	where, args := searchClause("name", f.Search)
	rows, err := d.q.Query(`SELECT `+selectInstalledFields+` FROM installed_apps`+where+
		` ORDER BY name COLLATE NOCASE, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying installed apps: %w", err)
	}
	defer rows.Close()

	apps, err := scanInstalledApps(rows)
	if err != nil {
		return nil, err
	}
	if f.Tag == "" {
		return apps, nil
	}

	var filtered []catalog.InstalledApp
	for _, a := range apps {
		if catalog.HasTag(a.Tags, f.Tag) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// installedScanFields holds the scan targets for an installed_apps row.
type installedScanFields struct {
	id int64

	name, publisher, location, version, registryKey, tags, scannedAt sql.NullString
}

func (f *installedScanFields) targets() []any {
	return []any{&f.id, &f.name, &f.publisher, &f.location, &f.version, &f.registryKey, &f.tags, &f.scannedAt}
}

// toInstalledApp converts scanned fields to an InstalledApp.
func (f *installedScanFields) toInstalledApp() catalog.InstalledApp {
	return catalog.InstalledApp{
		ID:              f.id,
		Name:            f.name.String,
		Publisher:       f.publisher.String,
		InstallLocation: f.location.String,
		Version:         f.version.String,
		RegistryKey:     f.registryKey.String,
		Tags:            f.tags.String,
		ScannedAt:       parseTime(f.scannedAt),
	}
}

func scanInstalledApp(row *sql.Row) (*catalog.InstalledApp, error) {
	var f installedScanFields
	if err := row.Scan(f.targets()...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a := f.toInstalledApp()
	return &a, nil
}

func scanInstalledApps(rows *sql.Rows) ([]catalog.InstalledApp, error) {
	var apps []catalog.InstalledApp
	for rows.Next() {
		var f installedScanFields
		if err := rows.Scan(f.targets()...); err != nil {
			return nil, err
		}
		apps = append(apps, f.toInstalledApp())
	}
	return apps, rows.Err()
}

// CountInstalledApps returns the number of installed apps.
func (d *DB) CountInstalledApps() (int, error) {
	var n int
	if err := d.q.QueryRow(`SELECT COUNT(*) FROM installed_apps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting installed apps: %w", err)
	}
	return n, nil
}
