package bundle

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/snapkit/snapkit/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// ExportOptions controls which resource files are copied into the bundle.
type ExportOptions struct {
	// IncludeResources lists the resource IDs whose files are copied.
	// Nil copies every local resource; an empty slice copies none.
	// The manifest always lists every row.
	IncludeResources []int64
	Logger           *zap.Logger
}

// ExportResult describes a written bundle.
type ExportResult struct {
	Path        string `json:"path"`
	BundleID    string `json:"bundle_id"`
	Counts      Counts `json:"counts"`
	FilesCopied int    `json:"files_copied"`
	Bytes       int64  `json:"bytes"`
}

// Export writes the whole catalog, plus copies of the selected local
// resources, to a zip bundle at outputPath. The bundle is written to a
// temporary file next to outputPath and renamed into place.
func Export(ctx context.Context, db *storage.DB, outputPath string, opts ExportOptions) (*ExportResult, error) {
	logger := loggerOrNop(opts.Logger)

	manifest, resources, err := buildManifest(db)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapkit-export-*.zip")
	if err != nil {
		return nil, fmt.Errorf("creating temporary bundle: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	w := &bundleWriter{zw: zip.NewWriter(tmp), checksums: make(map[string]string)}
	if err := w.writeJSON(ManifestName, manifest); err != nil {
		return nil, err
	}

	fileMap := make(map[string]string)
	for _, res := range selectResources(resources, opts.IncludeResources) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !res.Type.IsLocal() {
			continue
		}
		info, err := os.Stat(res.Path)
		if err != nil {
			logger.Debug("skipping missing resource", zap.Int64("id", res.ID), zap.String("path", res.Path))
			continue
		}

		destName := fmt.Sprintf("%d_%s", res.ID, filepath.Base(res.Path))
		destPath := path.Join(FilesDir, destName)
		if info.IsDir() {
			err = w.addDir(ctx, res.Path, destPath)
		} else {
			err = w.addFile(res.Path, destPath, info)
		}
		if err != nil {
			return nil, fmt.Errorf("copying resource %d (%s): %w", res.ID, res.Path, err)
		}
		fileMap[strconv.FormatInt(res.ID, 10)] = destName
		logger.Debug("copied resource into bundle", zap.Int64("id", res.ID), zap.String("dest", destPath))
	}

	if len(fileMap) > 0 {
		if err := w.writeJSON(FileMapName, fileMap); err != nil {
			return nil, err
		}
		if err := w.writeJSON(ChecksumsName, w.checksums); err != nil {
			return nil, err
		}
	}

	if err := w.zw.Close(); err != nil {
		return nil, fmt.Errorf("finishing zip: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing bundle: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return nil, fmt.Errorf("moving bundle into place: %w", err)
	}
	committed = true

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("checking bundle: %w", err)
	}

	result := &ExportResult{
		Path:     outputPath,
		BundleID: manifest.BundleID,
		Counts: Counts{
			InstalledApps:    len(manifest.InstalledApps),
			PinnedApps:       len(manifest.PinnedApps),
			NotInstalledApps: len(manifest.NotInstalledApps),
			ResourceItems:    len(manifest.ResourceItems),
		},
		FilesCopied: len(fileMap),
		Bytes:       info.Size(),
	}
	logger.Info("exported bundle",
		zap.String("path", outputPath),
		zap.String("bundle_id", result.BundleID),
		zap.Int("rows", result.Counts.Total()),
		zap.Int("files", result.FilesCopied))
	return result, nil
}

// buildManifest dumps all four tables.
func buildManifest(db *storage.DB) (*Manifest, []catalog.ResourceItem, error) {
	installed, err := db.ListInstalledApps(storage.ListFilter{})
	if err != nil {
		return nil, nil, err
	}
	pinned, err := db.ListPinnedApps(storage.ListFilter{})
	if err != nil {
		return nil, nil, err
	}
	notInstalled, err := db.ListNotInstalledApps(storage.ListFilter{})
	if err != nil {
		return nil, nil, err
	}
	resources, err := db.ListResources(storage.ListFilter{})
	if err != nil {
		return nil, nil, err
	}

	m := &Manifest{
		FormatVersion:    FormatVersion,
		BundleID:         uuid.NewString(),
		ExportedAt:       time.Now().UTC().Format(time.RFC3339),
		InstalledApps:    make([]InstalledRecord, 0, len(installed)),
		PinnedApps:       make([]PinnedRecord, 0, len(pinned)),
		NotInstalledApps: make([]NotInstalledRecord, 0, len(notInstalled)),
		ResourceItems:    make([]ResourceRecord, 0, len(resources)),
	}
	for _, a := range installed {
		m.InstalledApps = append(m.InstalledApps, installedRecord(a))
	}
	for _, p := range pinned {
		m.PinnedApps = append(m.PinnedApps, pinnedRecord(p))
	}
	for _, a := range notInstalled {
		m.NotInstalledApps = append(m.NotInstalledApps, notInstalledRecord(a))
	}
	for _, r := range resources {
		m.ResourceItems = append(m.ResourceItems, resourceRecord(r))
	}
	return m, resources, nil
}

// selectResources applies the include list. A nil list selects everything.
func selectResources(all []catalog.ResourceItem, include []int64) []catalog.ResourceItem {
	if include == nil {
		return all
	}
	wanted := make(map[int64]bool, len(include))
	for _, id := range include {
		wanted[id] = true
	}
	var selected []catalog.ResourceItem
	for _, r := range all {
		if wanted[r.ID] {
			selected = append(selected, r)
		}
	}
	return selected
}

// bundleWriter adds entries to the zip and records file checksums.
type bundleWriter struct {
	zw        *zip.Writer
	checksums map[string]string
}

func (w *bundleWriter) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	f, err := w.zw.Create(name)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// addFile copies one file into the archive under name.
func (w *bundleWriter) addFile(src, name string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	out, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return err
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return err
	}
	if _, err := io.Copy(io.MultiWriter(out, h), in); err != nil {
		return err
	}
	w.checksums[name] = hex.EncodeToString(h.Sum(nil))
	return nil
}

// addDir copies a directory tree into the archive under name. Symlinks and
// other special files are skipped; empty directories are kept.
func (w *bundleWriter) addDir(ctx context.Context, root, name string) error {
	type entry struct {
		rel   string
		isDir bool
	}

	var (
		mu      sync.Mutex
		entries []entry
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == root || !(d.IsDir() || d.Type().IsRegular()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		mu.Lock()
		entries = append(entries, entry{rel: filepath.ToSlash(rel), isDir: d.IsDir()})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	// fastwalk visits in parallel; sort for a reproducible archive.
	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })

	if _, err := w.zw.Create(name + "/"); err != nil {
		return err
	}
	for _, e := range entries {
		target := path.Join(name, e.rel)
		if e.isDir {
			if _, err := w.zw.Create(target + "/"); err != nil {
				return err
			}
			continue
		}
		src := filepath.Join(root, filepath.FromSlash(e.rel))
		info, err := os.Stat(src)
		if err != nil {
			return err
		}
		if err := w.addFile(src, target, info); err != nil {
			return err
		}
	}
	return nil
}
