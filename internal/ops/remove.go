package ops

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/studio1767/fsclip/internal/match"
)

// Remove deletes by pattern. In text mode every pattern is applied as a
// global substring removal against the buffer; in item mode every
// stored entry whose name matches is deleted. Matching nothing fails
// the whole operation and leaves the clipboard unchanged.
func (op *Op) Remove() error {
	err := op.checkLock()
	if err != nil {
		return err
	}
	if op.patterns.Empty() {
		return &ErrNoMatch{msg: "no patterns provided to remove with"}
	}

	if op.clip.IsText() {
		return op.removeFromText()
	}
	return op.removeItems()
}

func (op *Op) removeFromText() error {
	stripper, ok := op.patterns.(match.Stripper)
	if ok == false {
		return &ErrWrongMode{msg: "glob patterns cannot rewrite text: use the regex dialect"}
	}

	content, err := op.clip.ReadRaw()
	if err != nil {
		return err
	}

	stripped := stripper.Strip(string(content))
	delta := len(content) - len(stripped)
	if delta == 0 {
		return &ErrNoMatch{msg: "the patterns matched nothing in the text"}
	}

	_, err = op.clip.WriteRaw([]byte(stripped))
	if err != nil {
		return err
	}
	op.Totals.Bytes += int64(delta)

	op.syncer.ContentsChanged(op.clip)
	return nil
}

func (op *Op) removeItems() error {
	if op.clip.IsEmpty() {
		return &ErrEmptySource{name: op.clip.Name()}
	}

	entries, err := op.clip.Entries()
	if err != nil {
		return err
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if op.patterns.Selects(name) == false {
			continue
		}

		err := os.RemoveAll(filepath.Join(op.clip.DataDir(), name))
		if err != nil {
			op.fail(name, err)
			continue
		}

		// each deletion counts once, however many patterns matched
		removed += 1
		if entry.IsDir() {
			op.Totals.Directories += 1
		} else {
			op.Totals.Files += 1
		}
		op.log.Debug("removed", zap.String("item", name))
	}

	if removed == 0 && len(op.Failed) == 0 {
		return &ErrNoMatch{msg: "the patterns matched no stored entries"}
	}

	op.syncer.ContentsChanged(op.clip)
	return nil
}

// Clear deletes the whole clipboard directory; it is recreated lazily
// on the next write.
func (op *Op) Clear() error {
	err := op.checkLock()
	if err != nil {
		return err
	}

	err = op.clip.Delete()
	if err != nil {
		return err
	}

	op.syncer.ContentsChanged(op.clip)
	return nil
}

// Entries returns the stored entry names selected by the pattern set,
// sorted for display.
func (op *Op) Entries() ([]string, error) {
	names, err := op.clip.EntryNames()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var selected []string
	for _, name := range names {
		if op.patterns.Selects(name) {
			selected = append(selected, name)
		}
	}

	return selected, nil
}
