package ops

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/studio1767/fsclip/internal/xfer"
)

// Paste materializes the clipboard's stored entries into the
// destination directory. Entries are filtered by the pattern set and
// processed in directory enumeration order; collisions go through the
// running policy. Afterwards cleanup erases any cut sources.
func (op *Op) Paste(dst string) error {
	err := op.checkLock()
	if err != nil {
		return err
	}
	if op.clip.IsEmpty() {
		return &ErrEmptySource{name: op.clip.Name()}
	}

	entries, err := op.clip.Entries()
	if err != nil {
		return err
	}

	resolver := xfer.NewResolver(op.decider)

	matched := 0
	for _, entry := range entries {
		name := entry.Name()
		if op.patterns.Selects(name) == false {
			continue
		}
		matched += 1

		source := filepath.Join(op.clip.DataDir(), name)
		target := filepath.Join(dst, name)

		err := op.pasteItem(resolver, source, target, name)
		if err != nil {
			// a decider failure is fatal; per-item transfer
			// failures were already accumulated
			return err
		}
	}

	if matched == 0 && op.patterns.Empty() == false {
		return &ErrNoMatch{msg: "no stored entries matched the patterns"}
	}

	op.cleanup()
	if op.cut {
		op.syncer.ContentsChanged(op.clip)
	}

	return nil
}

func (op *Op) pasteItem(resolver *xfer.Resolver, source, target, name string) error {
	if _, err := os.Lstat(target); err == nil {
		// already the same underlying file: a no-op success, so a
		// hardlinked round trip never errors
		if xfer.SameFile(source, target) {
			op.Totals.Add(noopTotals(source))
			op.log.Debug("already present", zap.String("item", name))
			return nil
		}

		replace, err := resolver.Resolve(name)
		if err != nil {
			return err
		}
		if replace == false {
			op.log.Debug("skipped", zap.String("item", name))
			return nil
		}

		err = os.RemoveAll(target)
		if err != nil {
			op.fail(name, err)
			return nil
		}
	}

	totals, err := xfer.Transfer(source, target, op.hardlink)
	if err != nil {
		op.fail(name, err)
		return nil
	}

	op.Totals.Add(totals)
	op.log.Debug("pasted", zap.String("item", name))
	return nil
}

// PipeOut streams every stored entry's bytes to the sink, exactly as
// stored. A write failure aborts the loop immediately; on success the
// same cleanup as Paste erases any cut sources.
func (op *Op) PipeOut(out io.Writer) error {
	err := op.checkLock()
	if err != nil {
		return err
	}
	if op.clip.IsEmpty() {
		return &ErrEmptySource{name: op.clip.Name()}
	}

	counter := xfer.NewWriteCounter(out)

	err = filepath.WalkDir(op.clip.DataDir(), func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.Type().IsRegular() == false {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(counter, f)
		return err
	})

	op.Totals.Bytes += counter.TotalBytes()
	if err != nil {
		return err
	}

	op.cleanup()
	if op.cut {
		op.syncer.ContentsChanged(op.clip)
	}

	return nil
}
