package store

import (
	"os"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
)

// Info describes one clipboard for display.
type Info struct {
	Name        string
	Location    string
	Persistent  bool
	Text        bool
	RawBytes    int64
	ContentType string
	Files       int
	Directories int
	TotalBytes  int64
	Locked      bool
	LockPid     int
	Note        string
}

// Info gathers the details of this clipboard: mode, entry counts, the
// recursive size of the data area, the detected content type of the raw
// buffer, the lock holder and the note. Read-only; the walk transfers
// nothing.
func (cb *Clipboard) Info() (*Info, error) {
	info := Info{
		Name:       cb.name,
		Location:   cb.root,
		Persistent: cb.persistent,
		Text:       cb.IsText(),
	}

	if info.Text {
		st, err := os.Stat(cb.RawFile())
		if err != nil {
			return nil, err
		}
		info.RawBytes = st.Size()

		mtype, err := mimetype.DetectFile(cb.RawFile())
		if err == nil {
			info.ContentType = mtype.String()
		}
	} else {
		entries, err := cb.Entries()
		if err != nil && os.IsNotExist(err) == false {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				info.Directories += 1
			} else {
				info.Files += 1
			}
		}
	}

	total, err := cb.dataSize()
	if err != nil {
		return nil, err
	}
	info.TotalBytes = total

	info.LockPid, info.Locked = cb.LockedBy()

	note, err := cb.Note()
	if err != nil {
		return nil, err
	}
	info.Note = note

	return &info, nil
}

func (cb *Clipboard) dataSize() (int64, error) {
	if _, err := os.Stat(cb.DataDir()); err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	// the walk runs callbacks in parallel, so tally atomically
	var total int64

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, cb.DataDir(), func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.Type().IsRegular() {
			st, err := entry.Info()
			if err != nil {
				return err
			}
			atomic.AddInt64(&total, st.Size())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}
