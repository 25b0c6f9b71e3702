package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "dev", []string{"dev"}},
		{"trims whitespace", " dev , tools ", []string{"dev", "tools"}},
		{"drops empties", "dev,,tools,", []string{"dev", "tools"}},
		{"dedupes case-insensitively", "Dev,dev,DEV,tools", []string{"Dev", "tools"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTags(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHasTag(t *testing.T) {
	tests := []struct {
		tags string
		tag  string
		want bool
	}{
		{"dev,tools", "dev", true},
		{"dev,tools", "DEV", true},
		{"devops,tools", "dev", false},
		{"", "dev", false},
		{"dev", "", true},
	}

	for _, tt := range tests {
		if got := HasTag(tt.tags, tt.tag); got != tt.want {
			t.Errorf("HasTag(%q, %q) = %v, want %v", tt.tags, tt.tag, got, tt.want)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	if got := NormalizeTags(" a, b ,a,,c "); got != "a,b,c" {
		t.Errorf("NormalizeTags() = %q, want %q", got, "a,b,c")
	}
	if got := JoinTags([]string{"x", " y", "X"}); got != "x,y" {
		t.Errorf("JoinTags() = %q, want %q", got, "x,y")
	}
}

func TestParseResourceType(t *testing.T) {
	for _, rt := range ValidResourceTypes {
		got, err := ParseResourceType(string(rt))
		if err != nil {
			t.Errorf("ParseResourceType(%q) error = %v", rt, err)
		}
		if got != rt {
			t.Errorf("ParseResourceType(%q) = %q", rt, got)
		}
	}

	if _, err := ParseResourceType("movie"); err == nil {
		t.Error("ParseResourceType(\"movie\") expected error")
	}
}

func TestResourceTypeIsLocal(t *testing.T) {
	if ResourceURL.IsLocal() {
		t.Error("url should not be local")
	}
	for _, rt := range []ResourceType{ResourceFile, ResourceFolder, ResourceVideo, ResourceArchive} {
		if !rt.IsLocal() {
			t.Errorf("%s should be local", rt)
		}
	}
}

func TestDetectResourceType(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("hello world\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// Minimal PNG signature plus IHDR chunk header.
	pngPath := filepath.Join(dir, "pic.png")
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}
	if err := os.WriteFile(pngPath, png, 0644); err != nil {
		t.Fatal(err)
	}

	gzPath := filepath.Join(dir, "data.gz")
	if err := os.WriteFile(gzPath, []byte{0x1f, 0x8b, 0x08, 0, 0, 0, 0, 0, 0, 0xff}, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want ResourceType
	}{
		{"https url", "https://blender.org", ResourceURL},
		{"mailto url", "mailto:me@example.com", ResourceURL},
		{"directory", dir, ResourceFolder},
		{"text file", textPath, ResourceDocument},
		{"png file", pngPath, ResourceImage},
		{"gzip file", gzPath, ResourceArchive},
		{"missing file", filepath.Join(dir, "missing.bin"), ResourceFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectResourceType(tt.path); got != tt.want {
				t.Errorf("DetectResourceType(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	r := ResourceItem{Name: "Notes", Path: "/tmp/notes.txt", Type: ResourceFile}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	r.Path = ""
	if err := r.Validate(); err != ErrEmptyPath {
		t.Errorf("Validate() error = %v, want %v", err, ErrEmptyPath)
	}

	r = ResourceItem{Name: "x", Path: "y", Type: "bogus"}
	if err := r.Validate(); err == nil {
		t.Error("Validate() expected error for bogus type")
	}

	a := InstalledApp{}
	if err := a.Validate(); err != ErrEmptyName {
		t.Errorf("InstalledApp.Validate() error = %v, want %v", err, ErrEmptyName)
	}

	n := NotInstalledApp{Name: "Blender"}
	if err := n.Validate(); err != nil {
		t.Errorf("NotInstalledApp.Validate() error = %v", err)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("resource"); err != nil || k != KindResource {
		t.Errorf("ParseKind(resource) = %q, %v", k, err)
	}
	if _, err := ParseKind("apps"); err != ErrInvalidKind {
		t.Errorf("ParseKind(apps) error = %v, want %v", err, ErrInvalidKind)
	}
}

func TestCopyText(t *testing.T) {
	app := InstalledApp{Name: "Git", InstallLocation: `C:\Program Files\Git`}
	manual := InstalledApp{Name: "Portable"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"installed location", app.CopyText(), `C:\Program Files\Git`},
		{"installed name", manual.CopyText(), "Portable"},
		{"pinned command", (&PinnedApp{LaunchCommand: "git-bash.exe", App: app}).CopyText(), "git-bash.exe"},
		{"pinned falls back to app", (&PinnedApp{App: app}).CopyText(), `C:\Program Files\Git`},
		{"not installed url", (&NotInstalledApp{Name: "Blender", DownloadURL: "https://blender.org"}).CopyText(), "https://blender.org"},
		{"not installed name", (&NotInstalledApp{Name: "Blender"}).CopyText(), "Blender"},
		{"resource path", (&ResourceItem{Name: "Docs", Path: "/docs"}).CopyText(), "/docs"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: CopyText() = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
