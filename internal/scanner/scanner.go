// Package scanner discovers installed applications and records them in the catalog.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/snapkit/snapkit/internal/storage"
	"go.uber.org/zap"
)

// RegistryPaths are the uninstall keys enumerated under each hive.
var RegistryPaths = []string{
	`SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`,
	`SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
}

// ScannedApp is one application reported by a scan.
type ScannedApp struct {
	Name            string `json:"name"`
	Publisher       string `json:"publisher,omitempty"`
	InstallLocation string `json:"install_location,omitempty"`
	Version         string `json:"version,omitempty"`
	RegistryKey     string `json:"registry_key"`
}

var mockApps = []ScannedApp{
	{
		Name:            "Mozilla Firefox",
		Publisher:       "Mozilla Corporation",
		InstallLocation: `C:\Program Files\Mozilla Firefox`,
		Version:         "120.0",
		RegistryKey:     `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\Firefox`,
	},
	{
		Name:            "Visual Studio Code",
		Publisher:       "Microsoft Corporation",
		InstallLocation: `C:\Users\user\AppData\Local\Programs\Microsoft VS Code`,
		Version:         "1.85.0",
		RegistryKey:     `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\VSCode`,
	},
	{
		Name:            "Git",
		Publisher:       "The Git Development Community",
		InstallLocation: `C:\Program Files\Git`,
		Version:         "2.43.0",
		RegistryKey:     `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\Git`,
	},
	{
		Name:            "Python 3.12",
		Publisher:       "Python Software Foundation",
		InstallLocation: `C:\Users\user\AppData\Local\Programs\Python\Python312`,
		Version:         "3.12.1",
		RegistryKey:     `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\Python312`,
	},
	{
		Name:            "7-Zip",
		Publisher:       "Igor Pavlov",
		InstallLocation: `C:\Program Files\7-Zip`,
		Version:         "23.01",
		RegistryKey:     `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\7-Zip`,
	},
}

// MockApps returns fixed development data for systems without a registry.
// The returned slice is a fresh copy.
func MockApps() []ScannedApp {
	apps := make([]ScannedApp, len(mockApps))
	copy(apps, mockApps)
	return apps
}

// Save upserts scanned apps by registry key and returns how many were new.
// Existing rows keep their tags; name, publisher, location, version and
// scan time are refreshed.
func Save(ctx context.Context, db *storage.DB, apps []ScannedApp, logger *zap.Logger) (int, error) {
	unlock, err := db.LockForWrite(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	added := 0
	err = db.WithTx(ctx, func(tx *storage.DB) error {
		for _, s := range apps {
			existing, err := tx.FindInstalledByRegistryKey(s.RegistryKey)
			if err != nil {
				return fmt.Errorf("looking up %q: %w", s.RegistryKey, err)
			}

			if existing != nil {
				existing.Name = s.Name
				existing.Publisher = s.Publisher
				existing.InstallLocation = s.InstallLocation
				existing.Version = s.Version
				existing.ScannedAt = time.Now().UTC()
				if err := tx.UpdateInstalledApp(existing); err != nil {
					return err
				}
				logger.Debug("refreshed installed app", zap.String("name", s.Name), zap.Int64("id", existing.ID))
				continue
			}

			a := &catalog.InstalledApp{
				Name:            s.Name,
				Publisher:       s.Publisher,
				InstallLocation: s.InstallLocation,
				Version:         s.Version,
				RegistryKey:     s.RegistryKey,
			}
			if err := tx.AddInstalledApp(a); err != nil {
				return err
			}
			logger.Debug("added installed app", zap.String("name", s.Name), zap.Int64("id", a.ID))
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
