// internal/importer/renamer.go
package importer

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultTemplate names a library entry after its canonical title.
const DefaultTemplate = "{title}"

// Naming holds the values a template may reference.
type Naming struct {
	Title      string // Canonical title
	Platform   string // Platform slug
	ExternalID string // Catalog slug or id
}

// Renamer applies a naming template to build a path relative to a library root.
type Renamer struct {
	template string
}

// NewRenamer creates a Renamer. An empty template uses DefaultTemplate.
func NewRenamer(template string) *Renamer {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	return &Renamer{template: template}
}

// Path returns the relative target path. Every template segment is sanitized on
// its own so a title can never introduce extra directories. ext, when set, is
// appended to the last segment.
func (r *Renamer) Path(n Naming, ext string) string {
	vars := map[string]string{
		"title":    n.Title,
		"platform": n.Platform,
		"id":       n.ExternalID,
	}

	var parts []string
	for _, seg := range strings.Split(filepath.ToSlash(r.template), "/") {
		name := SanitizeFilename(applyTemplate(seg, vars))
		if name != "" {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	parts[len(parts)-1] += ext
	return filepath.Join(parts...)
}

// formatPattern matches {name} placeholders.
var formatPattern = regexp.MustCompile(`\{(\w+)\}`)

// applyTemplate substitutes variables into a template string. Unknown
// placeholders are left as written.
func applyTemplate(template string, vars map[string]string) string {
	return formatPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		if val, ok := vars[name]; ok {
			return val
		}
		return match
	})
}
