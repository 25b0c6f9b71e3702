package catalog

import "strings"

// SplitTags splits a comma-separated tag string into trimmed, non-empty tags.
// Duplicates are dropped case-insensitively; the first spelling wins.
func SplitTags(s string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}

// JoinTags normalizes tags into the stored comma-separated form.
func JoinTags(tags []string) string {
	return strings.Join(SplitTags(strings.Join(tags, ",")), ",")
}

// NormalizeTags cleans up a user-entered tag string.
func NormalizeTags(s string) string {
	return strings.Join(SplitTags(s), ",")
}

// HasTag reports whether the tag string contains tag as a whole tag.
func HasTag(tags, tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return true
	}
	for _, t := range SplitTags(tags) {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
