package store

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Clipboard is the on-disk state of one named clipboard: a data area
// holding either a single raw content file (text mode) or a set of
// copied entries (item mode), and a metadata area holding the originals
// list, the lock marker and the note. Pure addressing and queries; the
// transfer logic lives elsewhere.
type Clipboard struct {
	name       string
	root       string
	persistent bool
}

func (cb *Clipboard) Name() string {
	return cb.name
}

func (cb *Clipboard) Root() string {
	return cb.root
}

func (cb *Clipboard) Persistent() bool {
	return cb.persistent
}

func (cb *Clipboard) DataDir() string {
	return filepath.Join(cb.root, dataDirName)
}

func (cb *Clipboard) RawFile() string {
	return filepath.Join(cb.root, dataDirName, rawFileName)
}

func (cb *Clipboard) MetadataDir() string {
	return filepath.Join(cb.root, metadataDirName)
}

func (cb *Clipboard) originalsFile() string {
	return filepath.Join(cb.root, metadataDirName, originalsFileName)
}

func (cb *Clipboard) lockFile() string {
	return filepath.Join(cb.root, metadataDirName, lockFileName)
}

func (cb *Clipboard) notesFile() string {
	return filepath.Join(cb.root, metadataDirName, notesFileName)
}

// EnsureDirs creates the data and metadata areas; clipboards are
// created lazily on first write.
func (cb *Clipboard) EnsureDirs() error {
	err := os.MkdirAll(cb.DataDir(), 0700)
	if err != nil {
		return err
	}
	return os.MkdirAll(cb.MetadataDir(), 0700)
}

// IsText reports whether the clipboard holds a single raw content file.
func (cb *Clipboard) IsText() bool {
	info, err := os.Stat(cb.RawFile())
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// IsEmpty reports whether the data area is missing or holds nothing.
// Metadata contents do not count.
func (cb *Clipboard) IsEmpty() bool {
	entries, err := os.ReadDir(cb.DataDir())
	if err != nil {
		return true
	}
	return len(entries) == 0
}

// Entries lists the data area in directory enumeration order; the
// order is not required to be stable across runs.
func (cb *Clipboard) Entries() ([]os.DirEntry, error) {
	dir, err := os.Open(cb.DataDir())
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	return dir.ReadDir(-1)
}

// EntryNames lists the data area sorted, for status and show output.
func (cb *Clipboard) EntryNames() ([]string, error) {
	entries, err := cb.Entries()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return names, nil
}

func (cb *Clipboard) ReadRaw() ([]byte, error) {
	return os.ReadFile(cb.RawFile())
}

func (cb *Clipboard) WriteRaw(data []byte) (int, error) {
	err := cb.EnsureDirs()
	if err != nil {
		return 0, err
	}
	err = os.WriteFile(cb.RawFile(), data, 0600)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func (cb *Clipboard) AppendRaw(data []byte) (int, error) {
	err := cb.EnsureDirs()
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(cb.RawFile(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return f.Write(data)
}

// AppendOriginal records an absolute source path for later removal;
// written when the operation is a cut.
func (cb *Clipboard) AppendOriginal(path string) error {
	err := cb.EnsureDirs()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(cb.originalsFile(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(path + "\n")
	return err
}

// Originals returns the recorded source paths, one per line.
func (cb *Clipboard) Originals() ([]string, error) {
	data, err := os.ReadFile(cb.originalsFile())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			paths = append(paths, line)
		}
	}

	return paths, nil
}

func (cb *Clipboard) ClearOriginals() error {
	err := os.Remove(cb.originalsFile())
	if err != nil && os.IsNotExist(err) == false {
		return err
	}
	return nil
}

func (cb *Clipboard) Note() (string, error) {
	data, err := os.ReadFile(cb.notesFile())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func (cb *Clipboard) SetNote(note string) error {
	err := cb.EnsureDirs()
	if err != nil {
		return err
	}
	return os.WriteFile(cb.notesFile(), []byte(note), 0600)
}

func (cb *Clipboard) ClearNote() error {
	err := os.Remove(cb.notesFile())
	if err != nil && os.IsNotExist(err) == false {
		return err
	}
	return nil
}

// LockedBy returns the pid recorded in the lock marker and whether the
// marker is present. The engine only reads this; acquisition and
// release are the caller's business.
func (cb *Clipboard) LockedBy() (int, bool) {
	data, err := os.ReadFile(cb.lockFile())
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}

	return pid, true
}

func (cb *Clipboard) Lock(pid int) error {
	err := cb.EnsureDirs()
	if err != nil {
		return err
	}
	return os.WriteFile(cb.lockFile(), []byte(strconv.Itoa(pid)), 0600)
}

func (cb *Clipboard) Unlock() error {
	err := os.Remove(cb.lockFile())
	if err != nil && os.IsNotExist(err) == false {
		return err
	}
	return nil
}

// ClearData removes every entry in the data area, leaving the area
// itself and the metadata in place.
func (cb *Clipboard) ClearData() error {
	entries, err := cb.Entries()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		err := os.RemoveAll(filepath.Join(cb.DataDir(), entry.Name()))
		if err != nil {
			return err
		}
	}

	return nil
}

// Delete removes the whole clipboard directory; it will be recreated
// lazily on the next write.
func (cb *Clipboard) Delete() error {
	return os.RemoveAll(cb.root)
}
