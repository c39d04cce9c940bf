package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// on-disk layout; must stay stable for compatibility
	dataDirName       = "data"
	rawFileName       = "rawdata.clipboard"
	metadataDirName   = "metadata"
	originalsFileName = "originals"
	lockFileName      = "lock"
	notesFileName     = "notes"

	// DefaultName is the clipboard used when no name is given.
	DefaultName = "0"

	// PersistentPrefix marks a clipboard name as living under the
	// persistent root rather than the temporary one.
	PersistentPrefix = "_"
)

// Store resolves named clipboards to their on-disk roots. Clipboards
// whose name begins with an underscore live under the persistent root;
// all others live under the temporary root.
type Store struct {
	temporaryRoot  string
	persistentRoot string
}

func New(temporaryRoot, persistentRoot string) *Store {
	st := Store{
		temporaryRoot:  temporaryRoot,
		persistentRoot: persistentRoot,
	}
	return &st
}

// Open addresses a clipboard by name. Nothing is created on disk;
// clipboards come into being lazily on first write.
func (st *Store) Open(name string) *Clipboard {
	if name == "" {
		name = DefaultName
	}

	persistent := strings.HasPrefix(name, PersistentPrefix)
	root := st.temporaryRoot
	if persistent {
		root = st.persistentRoot
	}

	cb := Clipboard{
		name:       name,
		root:       filepath.Join(root, name),
		persistent: persistent,
	}
	return &cb
}

// Summary is one line of a status listing.
type Summary struct {
	Name       string
	Persistent bool
	Text       bool
	Preview    []string
}

// List returns a summary for every clipboard with a non-empty data
// area, across both roots, sorted by name.
func (st *Store) List() ([]Summary, error) {
	var summaries []Summary

	roots := []string{st.temporaryRoot, st.persistentRoot}
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		for _, entry := range entries {
			if entry.IsDir() == false {
				continue
			}

			cb := st.Open(entry.Name())
			if cb.IsEmpty() {
				continue
			}

			summary := Summary{
				Name:       cb.Name(),
				Persistent: cb.Persistent(),
				Text:       cb.IsText(),
			}
			if summary.Text {
				raw, err := cb.ReadRaw()
				if err != nil {
					return nil, err
				}
				line := strings.ReplaceAll(string(raw), "\n", "")
				summary.Preview = []string{line}
			} else {
				names, err := cb.EntryNames()
				if err != nil {
					return nil, err
				}
				summary.Preview = names
			}

			summaries = append(summaries, summary)
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	return summaries, nil
}
