// Package catalog defines the core domain types for the SnapKit catalog.
package catalog

import (
	"errors"
	"time"
)

// InstalledApp is an application discovered by a registry scan or entered manually.
type InstalledApp struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`                       // Required
	Publisher       string    `json:"publisher,omitempty"`        // Optional
	InstallLocation string    `json:"install_location,omitempty"` // Optional: directory holding the executables
	Version         string    `json:"version,omitempty"`          // Optional
	RegistryKey     string    `json:"registry_key,omitempty"`     // Empty for manual entries
	Tags            string    `json:"tags,omitempty"`             // Comma-separated
	ScannedAt       time.Time `json:"scanned_at"`
}

// PinnedApp is a favorited installed app with an optional explicit launch command.
type PinnedApp struct {
	ID             int64        `json:"id"`
	InstalledAppID int64        `json:"installed_app_id"`
	LaunchCommand  string       `json:"launch_command,omitempty"` // Empty means infer from install location
	Tags           string       `json:"tags,omitempty"`
	PinnedAt       time.Time    `json:"pinned_at"`
	App            InstalledApp `json:"app"`
}

// NotInstalledApp is an app the user wants to track before installing it.
type NotInstalledApp struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"` // Required
	Description string    `json:"description,omitempty"`
	DownloadURL string    `json:"download_url,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

// ResourceItem is a tracked file, folder, or URL.
type ResourceItem struct {
	ID      int64        `json:"id"`
	Name    string       `json:"name"` // Required
	Path    string       `json:"path"` // Required: filesystem path or URL
	Type    ResourceType `json:"resource_type"`
	Tags    string       `json:"tags,omitempty"`
	AddedAt time.Time    `json:"added_at"`
}

// Kind names one of the four catalog tables.
type Kind string

const (
	KindInstalled    Kind = "installed"
	KindPinned       Kind = "pinned"
	KindNotInstalled Kind = "notinstalled"
	KindResource     Kind = "resource"
)

// ValidKinds lists the accepted Kind values.
var ValidKinds = []Kind{KindInstalled, KindPinned, KindNotInstalled, KindResource}

// ParseKind validates a table kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range ValidKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrInvalidKind
}

// Validation errors.
var (
	ErrEmptyName   = errors.New("name is required")
	ErrEmptyPath   = errors.New("path is required")
	ErrInvalidKind = errors.New("kind must be one of: installed, pinned, notinstalled, resource")
)

// Validate checks the required fields of an installed app.
func (a *InstalledApp) Validate() error {
	if a.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Validate checks the required fields of a not-installed app.
func (a *NotInstalledApp) Validate() error {
	if a.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Validate checks the required fields and type of a resource item.
func (r *ResourceItem) Validate() error {
	if r.Name == "" {
		return ErrEmptyName
	}
	if r.Path == "" {
		return ErrEmptyPath
	}
	if _, err := ParseResourceType(string(r.Type)); err != nil {
		return err
	}
	return nil
}
