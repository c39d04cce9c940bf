package xfer

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// Transfer copies one source entry to the destination path. A regular
// file takes the hardlink fast path when allowed; a directory is always
// a full recursive copy of its tree. A cross-device failure from the
// fast path is retried exactly once with hardlinking disabled.
func Transfer(src, dst string, hardlink bool) (Totals, error) {
	return Fallback(hardlink, func(hardlink bool) (Totals, error) {
		return transfer(src, dst, hardlink)
	})
}

// Fallback runs one transfer attempt and, only on a cross-device link
// failure while the fast path was in use, exactly one more attempt with
// hardlinking disabled. Any other failure, or a failure of the second
// attempt, is final.
func Fallback(hardlink bool, attempt func(hardlink bool) (Totals, error)) (Totals, error) {
	totals, err := attempt(hardlink)
	if err != nil && hardlink && errors.Is(err, syscall.EXDEV) {
		totals, err = attempt(false)
	}
	return totals, err
}

// SameFile reports whether the two paths resolve to the same underlying
// file, as they do after a hardlinked round trip.
func SameFile(a, b string) bool {
	ainfo, err := os.Stat(a)
	if err != nil {
		return false
	}
	binfo, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ainfo, binfo)
}

func transfer(src, dst string, hardlink bool) (Totals, error) {
	var totals Totals

	info, err := os.Lstat(src)
	if err != nil {
		return totals, err
	}

	switch {
	case info.IsDir():
		// never hardlink trees; always a structural copy
		if err := copyTree(src, dst); err != nil {
			return totals, err
		}
		totals.Directories = 1

	case info.Mode()&os.ModeSymlink != 0:
		if err := copySymlink(src, dst); err != nil {
			return totals, err
		}
		totals.Files = 1

	case info.Mode().IsRegular():
		if hardlink {
			err = os.Link(src, dst)
		} else {
			err = copyFile(src, dst, info.Mode().Perm())
		}
		if err != nil {
			return totals, err
		}
		totals.Files = 1
		totals.Bytes = info.Size()

	default:
		return totals, &ErrNotTransferable{path: src, mode: info.Mode().String()}
	}

	return totals, nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	sink, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	_, err = io.Copy(sink, source)
	if err != nil {
		sink.Close()
		os.Remove(dst)
		return err
	}

	return sink.Close()
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	return os.Symlink(target, dst)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := entry.Info()
		if err != nil {
			return err
		}

		switch {
		case entry.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&os.ModeSymlink != 0:
			return copySymlink(path, target)
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		}

		// sockets, devices and the like are skipped
		return nil
	})
}
