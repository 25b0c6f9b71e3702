package storage

import (
	"database/sql"
	"fmt"

	"github.com/snapkit/snapkit/internal/catalog"
)

const selectPinnedFields = `p.id, p.installed_app_id, p.launch_command, p.tags, p.pinned_at,
	a.id, a.name, a.publisher, a.install_location, a.version, a.registry_key, a.tags, a.scanned_at`

const fromPinnedJoin = ` FROM pinned_apps p JOIN installed_apps a ON a.id = p.installed_app_id`

// PinApp pins an installed app. If the app is already pinned the existing pin
// is returned with created=false. Returns ErrNotFound for an unknown app.
func (d *DB) PinApp(installedAppID int64) (pin *catalog.PinnedApp, created bool, err error) {
	app, err := d.GetInstalledApp(installedAppID)
	if err != nil {
		return nil, false, err
	}
	if app == nil {
		return nil, false, fmt.Errorf("installed app %d: %w", installedAppID, ErrNotFound)
	}

	existing, err := d.FindPinByInstalledID(installedAppID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	p := &catalog.PinnedApp{InstalledAppID: installedAppID}
	if err := d.AddPinnedApp(p); err != nil {
		return nil, false, err
	}
	p.App = *app
	return p, true, nil
}

// AddPinnedApp inserts a pin row as-is and sets its ID.
func (d *DB) AddPinnedApp(p *catalog.PinnedApp) error {
	if p.PinnedAt.IsZero() {
		p.PinnedAt = nowUTC()
	}
	p.Tags = catalog.NormalizeTags(p.Tags)

	res, err := d.q.Exec(`
		INSERT INTO pinned_apps (installed_app_id, launch_command, tags, pinned_at)
		VALUES (?, ?, ?, ?)
	`, p.InstalledAppID, nullableStringValue(p.LaunchCommand), nullableStringValue(p.Tags), formatTime(p.PinnedAt))
	if err != nil {
		return fmt.Errorf("pinning installed app %d: %w", p.InstalledAppID, err)
	}

	p.ID, err = res.LastInsertId()
	return err
}

// UnpinApp removes a pin.
func (d *DB) UnpinApp(pinID int64) error {
	res, err := d.q.Exec(`DELETE FROM pinned_apps WHERE id = ?`, pinID)
	if err != nil {
		return fmt.Errorf("unpinning %d: %w", pinID, err)
	}
	return requireAffected(res)
}

// SetLaunchCommand sets (or, with an empty command, clears) the launch command of a pin.
func (d *DB) SetLaunchCommand(pinID int64, command string) error {
	res, err := d.q.Exec(`UPDATE pinned_apps SET launch_command = ? WHERE id = ?`,
		nullableStringValue(command), pinID)
	if err != nil {
		return fmt.Errorf("setting launch command for %d: %w", pinID, err)
	}
	return requireAffected(res)
}

// GetPinnedApp retrieves a pin joined with its installed app. Returns nil if absent.
func (d *DB) GetPinnedApp(pinID int64) (*catalog.PinnedApp, error) {
	row := d.q.QueryRow(`SELECT `+selectPinnedFields+fromPinnedJoin+` WHERE p.id = ?`, pinID)
	return scanPinnedApp(row)
}

// FindPinByInstalledID returns the pin for an installed app, or nil.
func (d *DB) FindPinByInstalledID(installedAppID int64) (*catalog.PinnedApp, error) {
	row := d.q.QueryRow(`SELECT `+selectPinnedFields+fromPinnedJoin+` WHERE p.installed_app_id = ?`, installedAppID)
	return scanPinnedApp(row)
}

// ListPinnedApps returns pins ordered by app name. Search matches the app name.
func (d *DB) ListPinnedApps(f ListFilter) ([]catalog.PinnedApp, error) {
	where, args := searchClause("a.name", f.Search)
	rows, err := d.q.Query(`SELECT `+selectPinnedFields+fromPinnedJoin+where+
		` ORDER BY a.name COLLATE NOCASE, p.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying pinned apps: %w", err)
	}
	defer rows.Close()

	pins, err := scanPinnedApps(rows)
	if err != nil {
		return nil, err
	}
	if f.Tag == "" {
		return pins, nil
	}

	var filtered []catalog.PinnedApp
	for _, p := range pins {
		if catalog.HasTag(p.Tags, f.Tag) || catalog.HasTag(p.App.Tags, f.Tag) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// pinnedScanFields holds the scan targets for a pinned_apps row joined with installed_apps.
type pinnedScanFields struct {
	id, installedAppID int64

	launchCommand, tags, pinnedAt sql.NullString
	app                           installedScanFields
}

func (f *pinnedScanFields) targets() []any {
	return append([]any{&f.id, &f.installedAppID, &f.launchCommand, &f.tags, &f.pinnedAt}, f.app.targets()...)
}

// toPinnedApp converts scanned fields to a PinnedApp.
func (f *pinnedScanFields) toPinnedApp() catalog.PinnedApp {
	return catalog.PinnedApp{
		ID:             f.id,
		InstalledAppID: f.installedAppID,
		LaunchCommand:  f.launchCommand.String,
		Tags:           f.tags.String,
		PinnedAt:       parseTime(f.pinnedAt),
		App:            f.app.toInstalledApp(),
	}
}

func scanPinnedApp(row *sql.Row) (*catalog.PinnedApp, error) {
	var f pinnedScanFields
	if err := row.Scan(f.targets()...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p := f.toPinnedApp()
	return &p, nil
}

func scanPinnedApps(rows *sql.Rows) ([]catalog.PinnedApp, error) {
	var pins []catalog.PinnedApp
	for rows.Next() {
		var f pinnedScanFields
		if err := rows.Scan(f.targets()...); err != nil {
			return nil, err
		}
		pins = append(pins, f.toPinnedApp())
	}
	return pins, rows.Err()
}
