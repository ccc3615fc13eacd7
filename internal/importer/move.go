// internal/importer/move.go
package importer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
)

// Mover relocates a download into the library. Renames are atomic; across
// filesystems the tree is copied, verified against the source, and only then
// is the source removed.
type Mover struct {
	rename    func(oldpath, newpath string) error
	copy      func(src, dst string) error
	removeAll func(path string) error
	log       *slog.Logger
}

// NewMover creates a Mover backed by the real filesystem.
func NewMover(log *slog.Logger) *Mover {
	if log == nil {
		log = slog.Default()
	}
	return &Mover{
		rename:    os.Rename,
		copy:      copyTree,
		removeAll: os.RemoveAll,
		log:       log.With("component", "mover"),
	}
}

// MoveResult describes a completed move.
type MoveResult struct {
	Digest Digest // Content hash of the destination
	Copied bool   // True when the move fell back to copy and delete
}

// Move moves src to dst and returns the destination digest.
//
// On a verification failure the partial destination is removed and
// ErrIntegrity is returned with a nil result; the source is untouched. When a
// verified copy leaves a source that cannot be deleted, ErrIntegrity is
// returned together with a valid result: the destination is complete.
func (m *Mover) Move(src, dst string) (*MoveResult, error) {
	return m.move(src, dst, true)
}

// Rollback moves a previously moved dst back to src.
func (m *Mover) Rollback(src, dst string) error {
	_, err := m.move(dst, src, false)
	if err != nil {
		return fmt.Errorf("rollback %s: %w", dst, err)
	}
	m.log.Info("move rolled back", "path", src)
	return nil
}

func (m *Mover) move(src, dst string, wantDigest bool) (*MoveResult, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("create parent: %w", err)
	}

	err := m.rename(src, dst)
	if err == nil {
		m.log.Debug("renamed", "src", src, "dest", dst)
		res := &MoveResult{}
		if wantDigest {
			if res.Digest, err = HashPath(dst); err != nil {
				return nil, fmt.Errorf("hash destination: %w", err)
			}
		}
		return res, nil
	}
	if !isCrossDevice(err) {
		return nil, fmt.Errorf("rename: %w", err)
	}

	m.log.Debug("cross-device move, copying", "src", src, "dest", dst)
	want, err := HashPath(src)
	if err != nil {
		return nil, fmt.Errorf("hash source: %w", err)
	}

	if err := m.copy(src, dst); err != nil {
		m.discard(dst)
		return nil, fmt.Errorf("copy: %w", err)
	}

	got, err := HashPath(dst)
	if err != nil || got != want {
		m.discard(dst)
		m.log.Error("copy verification failed",
			"src", src, "dest", dst,
			"want_size", want.Size, "got_size", got.Size,
			"want_hash", want.Hash, "got_hash", got.Hash, "error", err)
		return nil, fmt.Errorf("%w: %s does not match %s", ErrIntegrity, dst, src)
	}

	res := &MoveResult{Digest: got, Copied: true}
	if err := m.removeAll(src); err != nil {
		m.log.Error("source removal failed after verified copy", "src", src, "dest", dst, "error", err)
		return res, fmt.Errorf("%w: remove source %s: %v", ErrIntegrity, src, err)
	}

	m.log.Info("copied across filesystems", "src", src, "dest", dst, "size", humanize.IBytes(uint64(max(got.Size, 0))))
	return res, nil
}

func (m *Mover) discard(path string) {
	if err := m.removeAll(path); err != nil {
		m.log.Warn("failed to remove partial copy", "path", path, "error", err)
	}
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// copyTree copies a file or directory tree, keeping modes and mod times.
func copyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst, info)
	}

	if err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		fi, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, fi.Mode().Perm()|0o700)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			return copyFile(p, target, fi)
		}
		return nil
	}); err != nil {
		return err
	}
	return restoreDirTimes(src, dst)
}

// restoreDirTimes runs after the copy since writing into a directory bumps its mtime.
func restoreDirTimes(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return os.Chtimes(filepath.Join(dst, rel), fi.ModTime(), fi.ModTime())
	})
}

func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
