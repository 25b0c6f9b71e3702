package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/snapkit/snapkit/internal/catalog"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func addInstalled(t *testing.T, db *DB, name, regKey string) *catalog.InstalledApp {
	t.Helper()
	a := &catalog.InstalledApp{Name: name, RegistryKey: regKey}
	if err := db.AddInstalledApp(a); err != nil {
		t.Fatalf("AddInstalledApp(%q) error = %v", name, err)
	}
	return a
}

func TestOpenDB_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "snapkit.db")
	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}

	addInstalled(t, db, "Firefox", "Uninstall\\Firefox")

	// Reopen and verify persistence
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	db2, err := OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB() reopen error = %v", err)
	}
	defer db2.Close()

	counts, err := db2.CountAll()
	if err != nil {
		t.Fatalf("CountAll() error = %v", err)
	}
	if counts.InstalledApps != 1 {
		t.Errorf("InstalledApps = %d, want 1", counts.InstalledApps)
	}
}

func TestInstalledApps(t *testing.T) {
	db := openTestDB(t)

	addInstalled(t, db, "Git", "Uninstall\\Git")
	ff := addInstalled(t, db, "firefox", "Uninstall\\Firefox")
	manual := &catalog.InstalledApp{Name: "Portable Tool", InstallLocation: "/opt/tool", Tags: "dev, tools"}
	if err := db.AddInstalledApp(manual); err != nil {
		t.Fatalf("AddInstalledApp() error = %v", err)
	}

	if err := db.AddInstalledApp(&catalog.InstalledApp{}); err != catalog.ErrEmptyName {
		t.Errorf("AddInstalledApp(empty) error = %v, want %v", err, catalog.ErrEmptyName)
	}

	apps, err := db.ListInstalledApps(ListFilter{})
	if err != nil {
		t.Fatalf("ListInstalledApps() error = %v", err)
	}
	if len(apps) != 3 {
		t.Fatalf("ListInstalledApps() len = %d, want 3", len(apps))
	}
	// Case-insensitive name ordering
	if apps[0].Name != "firefox" || apps[1].Name != "Git" || apps[2].Name != "Portable Tool" {
		t.Errorf("ordering = %q, %q, %q", apps[0].Name, apps[1].Name, apps[2].Name)
	}
	if apps[2].Tags != "dev,tools" {
		t.Errorf("Tags = %q, want normalized %q", apps[2].Tags, "dev,tools")
	}
	if apps[0].ScannedAt.IsZero() {
		t.Error("ScannedAt should be set")
	}

	got, err := db.GetInstalledApp(ff.ID)
	if err != nil {
		t.Fatalf("GetInstalledApp() error = %v", err)
	}
	if got == nil || got.RegistryKey != "Uninstall\\Firefox" {
		t.Errorf("GetInstalledApp() = %+v", got)
	}

	missing, err := db.GetInstalledApp(999)
	if err != nil || missing != nil {
		t.Errorf("GetInstalledApp(999) = %v, %v; want nil, nil", missing, err)
	}

	byKey, err := db.FindInstalledByRegistryKey("Uninstall\\Git")
	if err != nil || byKey == nil || byKey.Name != "Git" {
		t.Errorf("FindInstalledByRegistryKey() = %v, %v", byKey, err)
	}
	if none, _ := db.FindInstalledByRegistryKey(""); none != nil {
		t.Error("FindInstalledByRegistryKey(\"\") should never match")
	}

	got.Version = "121.0"
	if err := db.UpdateInstalledApp(got); err != nil {
		t.Fatalf("UpdateInstalledApp() error = %v", err)
	}
	updated, _ := db.GetInstalledApp(ff.ID)
	if updated.Version != "121.0" {
		t.Errorf("Version = %q, want %q", updated.Version, "121.0")
	}

	manualByName, err := db.FindManualInstalledByName("Portable Tool")
	if err != nil || manualByName == nil || manualByName.ID != manual.ID {
		t.Errorf("FindManualInstalledByName() = %v, %v", manualByName, err)
	}
	if scanned, _ := db.FindManualInstalledByName("Git"); scanned != nil {
		t.Error("FindManualInstalledByName() should skip scanned apps")
	}

	n, err := db.CountInstalledApps()
	if err != nil || n != 3 {
		t.Errorf("CountInstalledApps() = %d, %v; want 3", n, err)
	}
}

func TestListFilter(t *testing.T) {
	db := openTestDB(t)

	for _, a := range []catalog.InstalledApp{
		{Name: "Visual Studio Code", Tags: "dev,editor"},
		{Name: "Visual Studio", Tags: "dev"},
		{Name: "Paint.NET", Tags: "graphics"},
		{Name: "100%_Tool", Tags: "devops"},
	} {
		a := a
		if err := db.AddInstalledApp(&a); err != nil {
			t.Fatalf("AddInstalledApp() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter ListFilter
		want   int
	}{
		{"no filter", ListFilter{}, 4},
		{"search substring", ListFilter{Search: "studio"}, 2},
		{"search case-insensitive", ListFilter{Search: "PAINT"}, 1},
		{"search escapes wildcards", ListFilter{Search: "%_"}, 1},
		{"tag whole match", ListFilter{Tag: "dev"}, 2},
		{"tag and search", ListFilter{Tag: "editor", Search: "visual"}, 1},
		{"no matches", ListFilter{Search: "blender"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps, err := db.ListInstalledApps(tt.filter)
			if err != nil {
				t.Fatalf("ListInstalledApps() error = %v", err)
			}
			if len(apps) != tt.want {
				t.Errorf("len = %d, want %d", len(apps), tt.want)
			}
		})
	}
}

func TestPinApp(t *testing.T) {
	db := openTestDB(t)
	ff := addInstalled(t, db, "Firefox", "Uninstall\\Firefox")

	pin, created, err := db.PinApp(ff.ID)
	if err != nil {
		t.Fatalf("PinApp() error = %v", err)
	}
	if !created {
		t.Error("first PinApp() should create")
	}
	if pin.App.Name != "Firefox" {
		t.Errorf("pin.App.Name = %q, want Firefox", pin.App.Name)
	}

	again, created, err := db.PinApp(ff.ID)
	if err != nil {
		t.Fatalf("PinApp() again error = %v", err)
	}
	if created {
		t.Error("second PinApp() should not create")
	}
	if again.ID != pin.ID {
		t.Errorf("second PinApp() ID = %d, want %d", again.ID, pin.ID)
	}

	if _, _, err := db.PinApp(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("PinApp(999) error = %v, want ErrNotFound", err)
	}

	if err := db.SetLaunchCommand(pin.ID, `"C:\Program Files\Mozilla Firefox\firefox.exe" -private`); err != nil {
		t.Fatalf("SetLaunchCommand() error = %v", err)
	}
	got, err := db.GetPinnedApp(pin.ID)
	if err != nil || got == nil {
		t.Fatalf("GetPinnedApp() = %v, %v", got, err)
	}
	if got.LaunchCommand == "" {
		t.Error("LaunchCommand should be set")
	}
	if err := db.SetLaunchCommand(999, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetLaunchCommand(999) error = %v, want ErrNotFound", err)
	}

	pins, err := db.ListPinnedApps(ListFilter{})
	if err != nil {
		t.Fatalf("ListPinnedApps() error = %v", err)
	}
	if len(pins) != 1 || pins[0].App.RegistryKey != "Uninstall\\Firefox" {
		t.Errorf("ListPinnedApps() = %+v", pins)
	}

	if err := db.UnpinApp(pin.ID); err != nil {
		t.Fatalf("UnpinApp() error = %v", err)
	}
	if err := db.UnpinApp(pin.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("UnpinApp() twice error = %v, want ErrNotFound", err)
	}
}

func TestDeleteInstalledApp_CascadesPin(t *testing.T) {
	db := openTestDB(t)
	git := addInstalled(t, db, "Git", "Uninstall\\Git")
	if _, _, err := db.PinApp(git.ID); err != nil {
		t.Fatalf("PinApp() error = %v", err)
	}

	if err := db.DeleteInstalledApp(git.ID); err != nil {
		t.Fatalf("DeleteInstalledApp() error = %v", err)
	}

	counts, err := db.CountAll()
	if err != nil {
		t.Fatalf("CountAll() error = %v", err)
	}
	if counts.PinnedApps != 0 {
		t.Errorf("PinnedApps = %d, want 0 after cascade", counts.PinnedApps)
	}
}

func TestNotInstalledApps(t *testing.T) {
	db := openTestDB(t)

	blender := &catalog.NotInstalledApp{Name: "Blender", DownloadURL: "https://blender.org", Tags: "3d"}
	if err := db.AddNotInstalledApp(blender); err != nil {
		t.Fatalf("AddNotInstalledApp() error = %v", err)
	}

	found, err := db.FindNotInstalledByName("Blender")
	if err != nil || found == nil || found.ID != blender.ID {
		t.Errorf("FindNotInstalledByName() = %v, %v", found, err)
	}
	if none, _ := db.FindNotInstalledByName("blender"); none != nil {
		t.Error("FindNotInstalledByName() should be exact")
	}

	apps, err := db.ListNotInstalledApps(ListFilter{Tag: "3D"})
	if err != nil || len(apps) != 1 {
		t.Errorf("ListNotInstalledApps(tag) = %v, %v", apps, err)
	}

	if err := db.DeleteNotInstalledApp(blender.ID); err != nil {
		t.Fatalf("DeleteNotInstalledApp() error = %v", err)
	}
	if got, _ := db.GetNotInstalledApp(blender.ID); got != nil {
		t.Error("GetNotInstalledApp() after delete should be nil")
	}
}

func TestResources(t *testing.T) {
	db := openTestDB(t)

	notes := &catalog.ResourceItem{Name: "Notes", Path: "/tmp/notes.txt", Type: catalog.ResourceFile}
	if err := db.AddResource(notes); err != nil {
		t.Fatalf("AddResource() error = %v", err)
	}
	if err := db.AddResource(&catalog.ResourceItem{Name: "Bad", Path: "x", Type: "movie"}); err == nil {
		t.Error("AddResource() with invalid type should fail")
	}

	found, err := db.FindResource("Notes", "/tmp/notes.txt")
	if err != nil || found == nil || found.Type != catalog.ResourceFile {
		t.Errorf("FindResource() = %v, %v", found, err)
	}
	if none, _ := db.FindResource("Notes", "/other"); none != nil {
		t.Error("FindResource() should require both name and path")
	}

	if err := db.SetTags(catalog.KindResource, notes.ID, "work, ,Work"); err != nil {
		t.Fatalf("SetTags() error = %v", err)
	}
	got, _ := db.GetResource(notes.ID)
	if got.Tags != "work" {
		t.Errorf("Tags = %q, want %q", got.Tags, "work")
	}
	if err := db.SetTags(catalog.KindResource, 999, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetTags(999) error = %v, want ErrNotFound", err)
	}
	if err := db.SetTags("bogus", notes.ID, "x"); err != catalog.ErrInvalidKind {
		t.Errorf("SetTags(bogus) error = %v, want ErrInvalidKind", err)
	}

	if err := db.DeleteResource(notes.ID); err != nil {
		t.Fatalf("DeleteResource() error = %v", err)
	}
	if err := db.DeleteResource(notes.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteResource() twice error = %v, want ErrNotFound", err)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx *DB) error {
		if err := tx.AddInstalledApp(&catalog.InstalledApp{Name: "Git"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	counts, _ := db.CountAll()
	if counts.InstalledApps != 0 {
		t.Errorf("InstalledApps = %d, want 0 after rollback", counts.InstalledApps)
	}

	err = db.WithTx(ctx, func(tx *DB) error {
		return tx.AddInstalledApp(&catalog.InstalledApp{Name: "Git"})
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
	counts, _ = db.CountAll()
	if counts.InstalledApps != 1 {
		t.Errorf("InstalledApps = %d, want 1 after commit", counts.InstalledApps)
	}
}
