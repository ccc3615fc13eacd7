// internal/importer/paths.go
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vmunix/gamarr/pkg/release"
)

// maxCollisionSuffix is the largest " (N)" suffix tried for a taken target.
const maxCollisionSuffix = 99

// illegalChars are characters not allowed in filenames on common filesystems.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

var multiSpace = regexp.MustCompile(`\s+`)

var multiDot = regexp.MustCompile(`\.{2,}`)

// SanitizeFilename turns a catalog title into a single safe path element.
// Trademark symbols are dropped and separators never survive.
func SanitizeFilename(name string) string {
	name = release.StripTrademarks(name)
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.ReplaceAll(name, "/", " ")
	name = strings.ReplaceAll(name, "\\", " ")
	name = illegalChars.ReplaceAllString(name, " ")
	name = multiDot.ReplaceAllString(name, ".")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.Trim(name, " .")
}

// ValidatePath ensures path lies strictly inside root.
// Returns ErrPathTraversal if the path is root itself or would escape it.
func ValidatePath(path, root string) error {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(root)

	rel, err := filepath.Rel(cleanRoot, cleanPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s outside %s", ErrPathTraversal, path, root)
	}
	return nil
}

// uniqueTarget returns target, or the first free "name (N)ext" variant of it.
// ext is kept after the suffix so "Game.iso" becomes "Game (2).iso".
func uniqueTarget(target, ext string) (string, error) {
	free, err := pathFree(target)
	if err != nil || free {
		return target, err
	}

	base := strings.TrimSuffix(target, ext)
	for n := 2; n <= maxCollisionSuffix; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		free, err := pathFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrCollision, target)
}

func pathFree(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}
