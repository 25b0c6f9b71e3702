//go:build !windows

package scanner

import "context"

// ScanRegistry reports no applications on systems without a Windows registry.
func ScanRegistry(ctx context.Context) ([]ScannedApp, error) {
	return []ScannedApp{}, nil
}
