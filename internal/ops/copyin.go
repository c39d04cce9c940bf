package ops

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/studio1767/fsclip/internal/xfer"
)

// CopyIn stages each source path in the clipboard's data area.
// Same-named stored entries are replaced silently; on a cut, each
// source's absolute path is recorded in the originals list.
func (op *Op) CopyIn(paths []string) error {
	err := op.checkLock()
	if err != nil {
		return err
	}
	err = op.clip.EnsureDirs()
	if err != nil {
		return err
	}

	for _, path := range paths {
		op.copyItem(path)
	}

	op.syncer.ContentsChanged(op.clip)
	return nil
}

func (op *Op) copyItem(path string) {
	name := itemName(path)
	target := filepath.Join(op.clip.DataDir(), name)

	if _, err := os.Lstat(target); err == nil {
		if xfer.SameFile(path, target) {
			op.Totals.Add(noopTotals(path))
			op.recordOriginal(path, name)
			return
		}
		// silent replace; prompting applies to paste only
		err := os.RemoveAll(target)
		if err != nil {
			op.fail(name, err)
			return
		}
	}

	totals, err := xfer.Transfer(path, target, op.hardlink)
	if err != nil {
		op.fail(name, err)
		return
	}
	op.Totals.Add(totals)
	op.log.Debug("copied in",
		zap.String("clipboard", op.clip.Name()),
		zap.String("item", name))

	op.recordOriginal(path, name)
}

func (op *Op) recordOriginal(path, name string) {
	if op.cut == false {
		return
	}

	abs, err := filepath.Abs(path)
	if err == nil {
		err = op.clip.AppendOriginal(abs)
	}
	if err != nil {
		op.fail(name, err)
	}
}

// CopyText replaces the clipboard's raw content file wholesale. A cut
// records the raw file's own path as the original, so the later cleanup
// clears the buffer.
func (op *Op) CopyText(text string) error {
	err := op.checkLock()
	if err != nil {
		return err
	}

	size, err := op.clip.WriteRaw([]byte(text))
	if err != nil {
		return err
	}
	op.Totals.Bytes += int64(size)

	if op.cut {
		err = op.clip.AppendOriginal(op.clip.RawFile())
		if err != nil {
			return err
		}
	}

	op.syncer.ContentsChanged(op.clip)
	return nil
}

// PipeIn replaces the raw content file with everything read from the
// stream until end of stream.
func (op *Op) PipeIn(in io.Reader) error {
	err := op.checkLock()
	if err != nil {
		return err
	}

	counter := xfer.NewReadCounter(in)
	data, err := io.ReadAll(counter)
	if err != nil {
		return err
	}

	_, err = op.clip.WriteRaw(data)
	if err != nil {
		return err
	}
	op.Totals.Bytes += counter.TotalBytes()

	if op.cut {
		err = op.clip.AppendOriginal(op.clip.RawFile())
		if err != nil {
			return err
		}
	}

	op.syncer.ContentsChanged(op.clip)
	return nil
}

// AddFiles stages further items in an item-mode clipboard; adding items
// to text is a wrong-mode failure, checked before any mutation.
func (op *Op) AddFiles(paths []string) error {
	if op.clip.IsText() {
		return &ErrWrongMode{msg: "cannot add items to text: copy the text again or add text instead"}
	}
	return op.CopyIn(paths)
}

// AddText appends to a text-mode clipboard's buffer. An item-mode
// clipboard with entries is a wrong-mode failure; an empty clipboard
// starts a fresh text buffer.
func (op *Op) AddText(text string) error {
	err := op.checkLock()
	if err != nil {
		return err
	}

	if op.clip.IsText() {
		size, err := op.clip.AppendRaw([]byte(text))
		if err != nil {
			return err
		}
		op.Totals.Bytes += int64(size)
		op.syncer.ContentsChanged(op.clip)
		return nil
	}

	if op.clip.IsEmpty() == false {
		return &ErrWrongMode{msg: "cannot add text to items: copy a file again or add items instead"}
	}

	return op.CopyText(text)
}

// AddPipe appends everything read from the stream, with the same mode
// rules as AddText.
func (op *Op) AddPipe(in io.Reader) error {
	err := op.checkLock()
	if err != nil {
		return err
	}

	if op.clip.IsText() {
		counter := xfer.NewReadCounter(in)
		data, err := io.ReadAll(counter)
		if err != nil {
			return err
		}
		_, err = op.clip.AppendRaw(data)
		if err != nil {
			return err
		}
		op.Totals.Bytes += counter.TotalBytes()
		op.syncer.ContentsChanged(op.clip)
		return nil
	}

	if op.clip.IsEmpty() == false {
		return &ErrWrongMode{msg: "cannot add text to items: copy a file again or add items instead"}
	}

	return op.PipeIn(in)
}
