package catalog

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ResourceType tags what a ResourceItem points at.
type ResourceType string

const (
	ResourceFile     ResourceType = "file"
	ResourceFolder   ResourceType = "folder"
	ResourceURL      ResourceType = "url"
	ResourceVideo    ResourceType = "video"
	ResourceImage    ResourceType = "image"
	ResourceDocument ResourceType = "document"
	ResourceArchive  ResourceType = "archive"
)

// ValidResourceTypes lists the supported resource types.
var ValidResourceTypes = []ResourceType{
	ResourceFile, ResourceFolder, ResourceURL,
	ResourceVideo, ResourceImage, ResourceDocument, ResourceArchive,
}

// ParseResourceType validates a resource type string.
func ParseResourceType(s string) (ResourceType, error) {
	for _, t := range ValidResourceTypes {
		if string(t) == s {
			return t, nil
		}
	}
	names := make([]string, len(ValidResourceTypes))
	for i, t := range ValidResourceTypes {
		names[i] = string(t)
	}
	return "", fmt.Errorf("invalid resource type %q (valid: %s)", s, strings.Join(names, ", "))
}

// IsLocal reports whether the resource lives on the filesystem.
func (t ResourceType) IsLocal() bool {
	return t != ResourceURL
}

// urlSchemes are treated as remote resources regardless of content.
var urlSchemes = map[string]bool{
	"http": true, "https": true, "ftp": true, "ftps": true, "mailto": true,
}

var archiveMIMEs = map[string]bool{
	"application/zip":              true,
	"application/x-tar":            true,
	"application/gzip":             true,
	"application/x-7z-compressed":  true,
	"application/x-rar-compressed": true,
	"application/x-bzip2":          true,
	"application/x-xz":             true,
	"application/zstd":             true,
}

var documentMIMEs = map[string]bool{
	"application/pdf":      true,
	"application/msword":   true,
	"application/rtf":      true,
	"text/rtf":             true,
	"application/epub+zip": true,
}

// IsURL reports whether path looks like a remote URL.
func IsURL(path string) bool {
	u, err := url.Parse(path)
	if err != nil || u.Scheme == "" {
		return false
	}
	return urlSchemes[strings.ToLower(u.Scheme)]
}

// DetectResourceType guesses the resource type for a path or URL.
// Files are classified by sniffing their content.
func DetectResourceType(path string) ResourceType {
	if IsURL(path) {
		return ResourceURL
	}

	info, err := os.Stat(path)
	if err != nil {
		return ResourceFile
	}
	if info.IsDir() {
		return ResourceFolder
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return ResourceFile
	}
	return classifyMIME(mtype)
}

// classifyMIME walks from the detected type up through its parents, so that
// e.g. a .docx (a zip underneath) is reported as a document.
func classifyMIME(m *mimetype.MIME) ResourceType {
	for ; m != nil; m = m.Parent() {
		mime := m.String()
		if i := strings.IndexByte(mime, ';'); i >= 0 {
			mime = mime[:i]
		}
		switch {
		case strings.HasPrefix(mime, "video/"):
			return ResourceVideo
		case strings.HasPrefix(mime, "image/"):
			return ResourceImage
		case documentMIMEs[mime],
			strings.HasPrefix(mime, "text/"),
			strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument."),
			strings.HasPrefix(mime, "application/vnd.oasis.opendocument."),
			strings.HasPrefix(mime, "application/vnd.ms-"):
			return ResourceDocument
		case archiveMIMEs[mime]:
			return ResourceArchive
		}
	}
	return ResourceFile
}
