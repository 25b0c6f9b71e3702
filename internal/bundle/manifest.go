// Package bundle exports the catalog to a portable zip bundle and imports it back.
//
// A bundle holds:
//
//	snapkit_data.json   manifest with the rows of all four tables
//	files/<id>_<name>   copies of local resources (files or whole folders)
//	file_map.json       resource id -> copied name, present when files were copied
//	checksums.json      blake2b-256 of every copied file
//
// Rows carry no database IDs. On import a row is skipped when a row with the
// same natural key already exists, so importing a bundle twice is a no-op.
package bundle

import (
	"errors"
	"time"

	"github.com/snapkit/snapkit/internal/catalog"
	"go.uber.org/zap"
)

// Bundle entry names.
const (
	ManifestName  = "snapkit_data.json"
	FileMapName   = "file_map.json"
	ChecksumsName = "checksums.json"
	FilesDir      = "files"
)

// FormatVersion is written to every manifest. Manifests without a version
// are treated as version 1.
const FormatVersion = 1

// ErrInvalidBundle is returned for archives that are not SnapKit bundles.
var ErrInvalidBundle = errors.New("invalid bundle")

// Manifest is the JSON document at the root of a bundle.
type Manifest struct {
	FormatVersion    int                  `json:"format_version"`
	BundleID         string               `json:"bundle_id,omitempty"`
	ExportedAt       string               `json:"exported_at"`
	InstalledApps    []InstalledRecord    `json:"installed_apps"`
	PinnedApps       []PinnedRecord       `json:"pinned_apps"`
	NotInstalledApps []NotInstalledRecord `json:"not_installed_apps"`
	ResourceItems    []ResourceRecord     `json:"resource_items"`
}

// InstalledRecord is the portable form of an installed app.
type InstalledRecord struct {
	Name            string  `json:"name"`
	Publisher       *string `json:"publisher"`
	InstallLocation *string `json:"install_location"`
	Version         *string `json:"version"`
	RegistryKey     *string `json:"registry_key"`
	Tags            *string `json:"tags"`
}

// PinnedRecord refers to its installed app by registry key.
type PinnedRecord struct {
	InstalledAppRegistryKey *string `json:"installed_app_registry_key"`
	LaunchCommand           *string `json:"launch_command"`
	Tags                    *string `json:"tags"`
}

// NotInstalledRecord is the portable form of a not-installed app.
type NotInstalledRecord struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	DownloadURL *string `json:"download_url"`
	Tags        *string `json:"tags"`
}

// ResourceRecord is the portable form of a resource item.
type ResourceRecord struct {
	Name         string  `json:"name"`
	Path         string  `json:"path"`
	ResourceType string  `json:"resource_type"`
	Tags         *string `json:"tags"`
}

// Counts reports rows written (or, for a dry run, that would be written) per table.
type Counts struct {
	InstalledApps    int `json:"installed_apps"`
	PinnedApps       int `json:"pinned_apps"`
	NotInstalledApps int `json:"not_installed_apps"`
	ResourceItems    int `json:"resource_items"`
}

// Total returns the sum over all tables.
func (c Counts) Total() int {
	return c.InstalledApps + c.PinnedApps + c.NotInstalledApps + c.ResourceItems
}

func installedRecord(a catalog.InstalledApp) InstalledRecord {
	return InstalledRecord{
		Name:            a.Name,
		Publisher:       optional(a.Publisher),
		InstallLocation: optional(a.InstallLocation),
		Version:         optional(a.Version),
		RegistryKey:     optional(a.RegistryKey),
		Tags:            optional(a.Tags),
	}
}

func (r InstalledRecord) toInstalledApp(now time.Time) catalog.InstalledApp {
	return catalog.InstalledApp{
		Name:            r.Name,
		Publisher:       deref(r.Publisher),
		InstallLocation: deref(r.InstallLocation),
		Version:         deref(r.Version),
		RegistryKey:     deref(r.RegistryKey),
		Tags:            deref(r.Tags),
		ScannedAt:       now,
	}
}

func pinnedRecord(p catalog.PinnedApp) PinnedRecord {
	return PinnedRecord{
		InstalledAppRegistryKey: optional(p.App.RegistryKey),
		LaunchCommand:           optional(p.LaunchCommand),
		Tags:                    optional(p.Tags),
	}
}

func notInstalledRecord(a catalog.NotInstalledApp) NotInstalledRecord {
	return NotInstalledRecord{
		Name:        a.Name,
		Description: optional(a.Description),
		DownloadURL: optional(a.DownloadURL),
		Tags:        optional(a.Tags),
	}
}

func (r NotInstalledRecord) toNotInstalledApp(now time.Time) catalog.NotInstalledApp {
	return catalog.NotInstalledApp{
		Name:        r.Name,
		Description: deref(r.Description),
		DownloadURL: deref(r.DownloadURL),
		Tags:        deref(r.Tags),
		AddedAt:     now,
	}
}

func resourceRecord(r catalog.ResourceItem) ResourceRecord {
	return ResourceRecord{
		Name:         r.Name,
		Path:         r.Path,
		ResourceType: string(r.Type),
		Tags:         optional(r.Tags),
	}
}

func (r ResourceRecord) toResourceItem(now time.Time) catalog.ResourceItem {
	return catalog.ResourceItem{
		Name:    r.Name,
		Path:    r.Path,
		Type:    catalog.ResourceType(r.ResourceType),
		Tags:    deref(r.Tags),
		AddedAt: now,
	}
}

// optional maps "" to a JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
