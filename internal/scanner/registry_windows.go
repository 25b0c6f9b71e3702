//go:build windows

package scanner

import (
	"context"

	"golang.org/x/sys/windows/registry"
)

// hives are scanned in order; the first occurrence of a registry key wins.
var hives = []registry.Key{registry.LOCAL_MACHINE, registry.CURRENT_USER}

// ScanRegistry enumerates the uninstall keys of the local machine and the
// current user. Keys that cannot be opened are skipped, as are entries
// without a DisplayName.
func ScanRegistry(ctx context.Context) ([]ScannedApp, error) {
	var apps []ScannedApp
	seen := make(map[string]bool)

	for _, hive := range hives {
		for _, regPath := range RegistryPaths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			key, err := registry.OpenKey(hive, regPath, registry.ENUMERATE_SUB_KEYS)
			if err != nil {
				continue
			}
			names, err := key.ReadSubKeyNames(-1)
			key.Close()
			if err != nil {
				continue
			}

			for _, name := range names {
				app, ok := readSubkey(hive, regPath, name)
				if !ok || seen[app.RegistryKey] {
					continue
				}
				seen[app.RegistryKey] = true
				apps = append(apps, app)
			}
		}
	}
	return apps, nil
}

// readSubkey reads one uninstall entry.
func readSubkey(hive registry.Key, regPath, name string) (ScannedApp, bool) {
	subkey, err := registry.OpenKey(hive, regPath+`\`+name, registry.QUERY_VALUE)
	if err != nil {
		return ScannedApp{}, false
	}
	defer subkey.Close()

	val := func(value string) string {
		s, _, err := subkey.GetStringValue(value)
		if err != nil {
			return ""
		}
		return s
	}

	displayName := val("DisplayName")
	if displayName == "" {
		return ScannedApp{}, false
	}

	return ScannedApp{
		Name:            displayName,
		Publisher:       val("Publisher"),
		InstallLocation: val("InstallLocation"),
		Version:         val("DisplayVersion"),
		RegistryKey:     regPath + `\` + name,
	}, true
}
