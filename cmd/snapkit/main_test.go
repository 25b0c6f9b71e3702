package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/snapkit/snapkit/internal/bundle"
	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/snapkit/snapkit/internal/storage"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("pin 3: %w", storage.ErrNotFound), ExitNotFound},
		{"invalid bundle", fmt.Errorf("%w: missing manifest", bundle.ErrInvalidBundle), ExitDataError},
		{"checksum", fmt.Errorf("files/1_a.txt: %w", bundle.ErrChecksumMismatch), ExitDataError},
		{"empty name", catalog.ErrEmptyName, ExitDataError},
		{"empty path", catalog.ErrEmptyPath, ExitDataError},
		{"invalid kind", catalog.ErrInvalidKind, ExitDataError},
		{"other", errors.New("disk full"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{" 42 ", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseIDList(t *testing.T) {
	got, err := parseIDList("1, 4,,7")
	if err != nil {
		t.Fatalf("parseIDList() error = %v", err)
	}
	want := []int64{1, 4, 7}
	if len(got) != len(want) {
		t.Fatalf("parseIDList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseIDList()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if _, err := parseIDList("1,x"); err == nil {
		t.Error("parseIDList() expected error for non-numeric entry")
	}
}

func TestParseResourceSelection(t *testing.T) {
	all, err := parseResourceSelection("")
	if err != nil || all != nil {
		t.Errorf(`parseResourceSelection("") = %v, %v; want nil, nil`, all, err)
	}

	none, err := parseResourceSelection("none")
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf(`parseResourceSelection("none") = %v, %v; want empty non-nil`, none, err)
	}

	some, err := parseResourceSelection("2,3")
	if err != nil || len(some) != 2 {
		t.Errorf(`parseResourceSelection("2,3") = %v, %v`, some, err)
	}

	if _, err := parseResourceSelection(" , "); err == nil {
		t.Error("parseResourceSelection() expected error for an empty list")
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"Firefox", 10, "Firefox"},
		{"Visual Studio Code", 10, "Visual ..."},
		{"Blender", 3, "Ble"},
		{"Éditeur de texte", 8, "Édite..."},
	}

	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestDefaultExportName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	if got := defaultExportName(ts); got != "snapkit_export_20240309_140507.zip" {
		t.Errorf("defaultExportName() = %q", got)
	}
}

func TestResolveResourceType(t *testing.T) {
	dir := t.TempDir()

	got, err := resolveResourceType(autoType, dir)
	if err != nil || got != catalog.ResourceFolder {
		t.Errorf("resolveResourceType(auto, dir) = %q, %v; want folder", got, err)
	}

	got, err = resolveResourceType("", "https://go.dev")
	if err != nil || got != catalog.ResourceURL {
		t.Errorf(`resolveResourceType("", url) = %q, %v; want url`, got, err)
	}

	got, err = resolveResourceType("video", filepath.Join(dir, "clip"))
	if err != nil || got != catalog.ResourceVideo {
		t.Errorf("resolveResourceType(video) = %q, %v", got, err)
	}

	if _, err := resolveResourceType("movie", dir); err == nil {
		t.Error("resolveResourceType() expected error for an unknown type")
	}
}

func TestCopyText(t *testing.T) {
	db, err := storage.OpenDB(storage.MemoryPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	loc := t.TempDir()
	app := &catalog.InstalledApp{Name: "Git", InstallLocation: loc}
	if err := db.AddInstalledApp(app); err != nil {
		t.Fatal(err)
	}
	pin, _, err := db.PinApp(app.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SetLaunchCommand(pin.ID, "git gui"); err != nil {
		t.Fatal(err)
	}
	wish := &catalog.NotInstalledApp{Name: "Blender"}
	if err := db.AddNotInstalledApp(wish); err != nil {
		t.Fatal(err)
	}
	notes := filepath.Join(loc, "notes.txt")
	if err := os.WriteFile(notes, []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	res := &catalog.ResourceItem{Name: "Notes", Path: notes, Type: catalog.ResourceFile}
	if err := db.AddResource(res); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		kind catalog.Kind
		id   int64
		want string
	}{
		{catalog.KindInstalled, app.ID, loc},
		{catalog.KindPinned, pin.ID, "git gui"},
		{catalog.KindNotInstalled, wish.ID, "Blender"},
		{catalog.KindResource, res.ID, notes},
	}
	for _, tt := range tests {
		got, err := copyText(db, tt.kind, tt.id)
		if err != nil {
			t.Errorf("copyText(%s, %d) error = %v", tt.kind, tt.id, err)
			continue
		}
		if got != tt.want {
			t.Errorf("copyText(%s, %d) = %q, want %q", tt.kind, tt.id, got, tt.want)
		}
	}

	for _, kind := range catalog.ValidKinds {
		if _, err := copyText(db, kind, 999); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("copyText(%s, 999) error = %v, want ErrNotFound", kind, err)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	for _, in := range []string{"log-level", "log_level", "LOG-LEVEL"} {
		if got := normalizeKey(in); got != "log-level" {
			t.Errorf("normalizeKey(%q) = %q", in, got)
		}
	}
}

func TestCompletionArgs(t *testing.T) {
	kinds, _ := kindArgs(nil, nil, "")
	if len(kinds) != len(catalog.ValidKinds) {
		t.Errorf("kindArgs() = %v", kinds)
	}
	if more, _ := kindArgs(nil, []string{"pinned"}, ""); len(more) != 0 {
		t.Errorf("kindArgs() after the kind = %v, want none", more)
	}

	types, _ := resourceTypeArgs(nil, nil, "")
	if types[0] != autoType || len(types) != len(catalog.ValidResourceTypes)+1 {
		t.Errorf("resourceTypeArgs() = %v", types)
	}
}
