package ops

import (
	"go.uber.org/zap"

	"github.com/studio1767/fsclip/internal/store"
	"github.com/studio1767/fsclip/internal/xfer"
)

// Load replaces the full contents of each destination clipboard with
// this clipboard's contents. Loading a clipboard into itself and
// loading from an empty clipboard are refused before anything is
// touched; per-destination failures accumulate without stopping the
// other destinations.
func (op *Op) Load(st *store.Store, destinations []string) error {
	if len(destinations) == 0 {
		destinations = []string{store.DefaultName}
	}

	if op.clip.IsEmpty() {
		return &ErrEmptySource{name: op.clip.Name()}
	}
	for _, destination := range destinations {
		if destination == op.clip.Name() {
			return &ErrSelfLoad{name: destination}
		}
	}

	for _, destination := range destinations {
		cb := st.Open(destination)

		if pid, held := cb.LockedBy(); held && pid != op.pid {
			op.fail(destination, &ErrLocked{name: destination, pid: pid})
			continue
		}

		err := op.loadInto(cb)
		if err != nil {
			op.fail(destination, err)
			continue
		}

		op.Totals.Directories += 1
		op.log.Debug("loaded",
			zap.String("from", op.clip.Name()),
			zap.String("into", destination))
		op.syncer.ContentsChanged(cb)
	}

	return nil
}

func (op *Op) loadInto(cb *store.Clipboard) error {
	err := cb.EnsureDirs()
	if err != nil {
		return err
	}
	err = cb.ClearData()
	if err != nil {
		return err
	}

	// a full structural copy of the data area; never hardlinked
	_, err = xfer.Transfer(op.clip.DataDir(), cb.DataDir(), false)
	return err
}
