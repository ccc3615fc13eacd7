// internal/importer/hash.go
package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Digest is the content hash and total size of a file or tree.
type Digest struct {
	Hash string // Hex SHA-256
	Size int64
}

// HashPath hashes a file, or a directory tree as the digest over its sorted
// relative paths and per-file digests.
func HashPath(path string) (Digest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Digest{}, err
	}
	if !info.IsDir() {
		sum, err := hashFile(path)
		if err != nil {
			return Digest{}, err
		}
		return Digest{Hash: sum, Size: info.Size()}, nil
	}

	tree := sha256.New()
	var total int64
	// WalkDir visits entries in lexical order
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		sum, err := hashFile(p)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		total += fi.Size()
		writeTreeLine(tree, filepath.ToSlash(rel), sum)
		return nil
	})
	if err != nil {
		return Digest{}, fmt.Errorf("hash tree %s: %w", path, err)
	}
	return Digest{Hash: hex.EncodeToString(tree.Sum(nil)), Size: total}, nil
}

func writeTreeLine(h hash.Hash, rel, sum string) {
	_, _ = io.WriteString(h, rel)
	_, _ = h.Write([]byte{0})
	_, _ = io.WriteString(h, sum)
	_, _ = h.Write([]byte{'\n'})
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// PathSize returns the size of a file or the summed size of a tree's files.
func PathSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var total int64
	err = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		total += fi.Size()
		return nil
	})
	return total, err
}

// NewestModTime returns the latest modification time of path or anything under it.
func NewestModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	newest := info.ModTime()
	if !info.IsDir() {
		return newest, nil
	}

	err = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
		return nil
	})
	return newest, err
}
