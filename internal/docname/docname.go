// Package docname derives document and index locations from the file name
// typed by the user.
package docname

import (
	"path/filepath"
	"strings"

	"docqa/internal/models"
)

// TrimLeadingSeparator removes a single leading '/' or '\'. Only one is
// removed, so "//doc.pdf" keeps its second slash.
func TrimLeadingSeparator(name string) string {
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return name[1:]
	}
	return name
}

// IndexName strips every ".pdf" occurrence and appends the index suffix.
// The name is expected to be normalized already.
func IndexName(name string) string {
	return strings.ReplaceAll(name, models.DocumentExtension, "") + models.IndexSuffix
}

// DocumentPath is the location of the named document under docsDir.
func DocumentPath(docsDir, name string) string {
	return filepath.Join(docsDir, name)
}

// IndexPath is the index directory for the named document under indexDir.
func IndexPath(indexDir, name string) string {
	return filepath.Join(indexDir, IndexName(name))
}
