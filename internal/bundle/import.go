package bundle

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/snapkit/snapkit/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// ImportOptions controls file restoration and dry runs.
type ImportOptions struct {
	// RestoreTo receives the bundled resource files. Empty skips restoring.
	RestoreTo string
	// DryRun reports what would be imported without writing anything.
	DryRun bool
	Logger *zap.Logger
}

// ImportResult reports the rows and files an import added.
type ImportResult struct {
	Counts        Counts `json:"counts"`
	FilesRestored int    `json:"files_restored"`
	DryRun        bool   `json:"dry_run,omitempty"`
}

// ErrChecksumMismatch is returned when a restored file does not match checksums.json.
var ErrChecksumMismatch = errors.New("checksum mismatch")

var errDryRun = errors.New("dry run")

// Import merges a bundle into db. Rows whose natural key already exists are
// skipped. All rows and restored files are handled under one transaction: a
// failure, including a checksum mismatch, leaves the database unchanged and
// overwrites no file in the restore directory.
func Import(ctx context.Context, db *storage.DB, zipPath string, opts ImportOptions) (*ImportResult, error) {
	logger := loggerOrNop(opts.Logger)

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	defer zr.Close()

	b, err := readBundle(&zr.Reader)
	if err != nil {
		return nil, err
	}

	unlock, err := db.LockForWrite(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	result := &ImportResult{DryRun: opts.DryRun}
	err = db.WithTx(ctx, func(tx *storage.DB) error {
		counts, err := importRows(tx, b.manifest, logger)
		if err != nil {
			return err
		}
		result.Counts = counts

		if opts.DryRun {
			return errDryRun
		}

		if opts.RestoreTo != "" && len(b.fileMap) > 0 {
			n, err := b.restore(ctx, opts.RestoreTo, logger)
			if err != nil {
				return err
			}
			result.FilesRestored = n
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, err
	}

	logger.Info("imported bundle",
		zap.String("path", zipPath),
		zap.String("bundle_id", b.manifest.BundleID),
		zap.Int("rows", result.Counts.Total()),
		zap.Int("files", result.FilesRestored),
		zap.Bool("dry_run", opts.DryRun))
	return result, nil
}

// ReadManifest returns the manifest of a bundle without importing it.
func ReadManifest(zipPath string) (*Manifest, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	defer zr.Close()

	b, err := readBundle(&zr.Reader)
	if err != nil {
		return nil, err
	}
	return b.manifest, nil
}

type bundle struct {
	manifest  *Manifest
	fileMap   map[string]string
	checksums map[string]string
	entries   map[string]*zip.File
}

// readBundle validates entry names and decodes the JSON documents.
func readBundle(zr *zip.Reader) (*bundle, error) {
	b := &bundle{entries: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, "/")
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return nil, fmt.Errorf("%w: unsafe entry %q", ErrInvalidBundle, f.Name)
		}
		b.entries[name] = f
	}

	mf, ok := b.entries[ManifestName]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidBundle, ManifestName)
	}
	b.manifest = &Manifest{}
	if err := decodeEntry(mf, b.manifest); err != nil {
		return nil, err
	}
	if b.manifest.FormatVersion == 0 {
		b.manifest.FormatVersion = 1
	}
	if b.manifest.FormatVersion > FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrInvalidBundle, b.manifest.FormatVersion)
	}

	if f, ok := b.entries[FileMapName]; ok {
		if err := decodeEntry(f, &b.fileMap); err != nil {
			return nil, err
		}
		for _, dest := range b.fileMap {
			if dest == "." || dest != filepath.Base(dest) || !filepath.IsLocal(dest) || strings.ContainsAny(dest, `/\`) {
				return nil, fmt.Errorf("%w: unsafe file map entry %q", ErrInvalidBundle, dest)
			}
		}
	}
	if f, ok := b.entries[ChecksumsName]; ok {
		if err := decodeEntry(f, &b.checksums); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func decodeEntry(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrInvalidBundle, f.Name, err)
	}
	defer rc.Close()
	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrInvalidBundle, f.Name, err)
	}
	return nil
}

// importRows inserts every manifest row whose natural key is absent.
// Installed apps go first so pins can resolve their registry keys.
func importRows(tx *storage.DB, m *Manifest, logger *zap.Logger) (Counts, error) {
	var c Counts
	now := time.Now().UTC()

	for _, rec := range m.InstalledApps {
		if rec.Name == "" {
			logger.Debug("skipping installed app without name")
			continue
		}
		var existing *catalog.InstalledApp
		var err error
		if key := deref(rec.RegistryKey); key != "" {
			existing, err = tx.FindInstalledByRegistryKey(key)
		} else {
			existing, err = tx.FindManualInstalledByName(rec.Name)
		}
		if err != nil {
			return c, err
		}
		if existing != nil {
			continue
		}
		app := rec.toInstalledApp(now)
		if err := tx.AddInstalledApp(&app); err != nil {
			return c, err
		}
		c.InstalledApps++
	}

	for _, rec := range m.PinnedApps {
		key := deref(rec.InstalledAppRegistryKey)
		if key == "" {
			logger.Debug("skipping pin without registry key")
			continue
		}
		app, err := tx.FindInstalledByRegistryKey(key)
		if err != nil {
			return c, err
		}
		if app == nil {
			logger.Debug("skipping pin for unknown app", zap.String("registry_key", key))
			continue
		}
		existing, err := tx.FindPinByInstalledID(app.ID)
		if err != nil {
			return c, err
		}
		if existing != nil {
			continue
		}
		pin := catalog.PinnedApp{
			InstalledAppID: app.ID,
			LaunchCommand:  deref(rec.LaunchCommand),
			Tags:           deref(rec.Tags),
			PinnedAt:       now,
		}
		if err := tx.AddPinnedApp(&pin); err != nil {
			return c, err
		}
		c.PinnedApps++
	}

	for _, rec := range m.NotInstalledApps {
		if rec.Name == "" {
			continue
		}
		existing, err := tx.FindNotInstalledByName(rec.Name)
		if err != nil {
			return c, err
		}
		if existing != nil {
			continue
		}
		app := rec.toNotInstalledApp(now)
		if err := tx.AddNotInstalledApp(&app); err != nil {
			return c, err
		}
		c.NotInstalledApps++
	}

	for _, rec := range m.ResourceItems {
		if rec.Name == "" || rec.Path == "" {
			continue
		}
		existing, err := tx.FindResource(rec.Name, rec.Path)
		if err != nil {
			return c, err
		}
		if existing != nil {
			continue
		}
		item := rec.toResourceItem(now)
		if _, err := catalog.ParseResourceType(rec.ResourceType); err != nil {
			item.Type = catalog.ResourceFile
		}
		if err := tx.AddResource(&item); err != nil {
			return c, err
		}
		c.ResourceItems++
	}
	return c, nil
}

// restore extracts every mapped file or folder into dir. Folders merge with
// what is already there and files with the same name are overwritten. Every
// file is staged and verified before any destination is touched. It returns
// the number of regular files written.
func (b *bundle) restore(ctx context.Context, dir string, logger *zap.Logger) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("creating restore directory: %w", err)
	}

	dests := make([]string, 0, len(b.fileMap))
	for _, dest := range b.fileMap {
		dests = append(dests, dest)
	}
	sort.Strings(dests)

	var staged []stagedFile
	defer func() {
		for _, sf := range staged {
			os.Remove(sf.tmp)
		}
	}()

	for _, dest := range dests {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		prefix := path.Join(FilesDir, dest)

		names := make([]string, 0)
		for name := range b.entries {
			if name == prefix || strings.HasPrefix(name, prefix+"/") {
				names = append(names, name)
			}
		}
		if len(names) == 0 {
			logger.Warn("file map entry has no files", zap.String("dest", dest))
			continue
		}
		sort.Strings(names)

		for _, name := range names {
			f := b.entries[name]
			out := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(name, FilesDir+"/")))
			if f.FileInfo().IsDir() {
				if err := os.MkdirAll(out, 0755); err != nil {
					return 0, err
				}
				continue
			}
			sf, err := b.stage(f, name, out)
			if err != nil {
				return 0, err
			}
			staged = append(staged, sf)
		}
	}

	written := 0
	for _, sf := range staged {
		if err := os.Rename(sf.tmp, sf.out); err != nil {
			return written, fmt.Errorf("restoring %s: %w", sf.out, err)
		}
		written++
	}
	staged = nil
	logger.Debug("restored files", zap.String("dir", dir), zap.Int("files", written))
	return written, nil
}

type stagedFile struct {
	tmp string
	out string
}

// stage writes one archive entry to a temporary file beside out and checks
// its digest. The caller renames the temporary file into place.
func (b *bundle) stage(f *zip.File, name, out string) (stagedFile, error) {
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return stagedFile{}, err
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return stagedFile{}, fmt.Errorf("restoring %s: destination is a directory", out)
	}

	rc, err := f.Open()
	if err != nil {
		return stagedFile{}, fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	w, err := os.CreateTemp(filepath.Dir(out), ".snapkit-restore-*")
	if err != nil {
		return stagedFile{}, err
	}
	tmpPath := w.Name()
	fail := func(err error) (stagedFile, error) {
		w.Close()
		os.Remove(tmpPath)
		return stagedFile{}, err
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return fail(err)
	}
	if _, err := io.Copy(io.MultiWriter(w, h), rc); err != nil {
		return fail(fmt.Errorf("extracting %s: %w", name, err))
	}
	if err := w.Close(); err != nil {
		os.Remove(tmpPath)
		return stagedFile{}, err
	}

	if want, ok := b.checksums[name]; ok {
		if got := hex.EncodeToString(h.Sum(nil)); got != want {
			os.Remove(tmpPath)
			return stagedFile{}, fmt.Errorf("%w: %s", ErrChecksumMismatch, name)
		}
	}
	return stagedFile{tmp: tmpPath, out: out}, nil
}
