package catalog

// CopyText returns the text copied to the clipboard for an installed app:
// its install location, or its name when the location is unknown.
func (a *InstalledApp) CopyText() string {
	if a.InstallLocation != "" {
		return a.InstallLocation
	}
	return a.Name
}

// CopyText returns the explicit launch command, falling back to the app's text.
func (p *PinnedApp) CopyText() string {
	if p.LaunchCommand != "" {
		return p.LaunchCommand
	}
	return p.App.CopyText()
}

// CopyText returns the download URL, or the name when no URL is known.
func (a *NotInstalledApp) CopyText() string {
	if a.DownloadURL != "" {
		return a.DownloadURL
	}
	return a.Name
}

// CopyText returns the resource path or URL.
func (r *ResourceItem) CopyText() string {
	return r.Path
}
