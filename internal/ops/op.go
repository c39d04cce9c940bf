package ops

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/studio1767/fsclip/internal/match"
	"github.com/studio1767/fsclip/internal/store"
	"github.com/studio1767/fsclip/internal/xfer"
)

// Syncer is told when a clipboard's contents have changed so a platform
// integration can mirror them to the native clipboard. The engine only
// signals; the default does nothing.
type Syncer interface {
	ContentsChanged(cb *store.Clipboard)
}

type nopSyncer struct{}

func (nopSyncer) ContentsChanged(cb *store.Clipboard) {}

// unattendedDecider refuses to resolve collisions; operations that can
// collide need a real decision collaborator.
type unattendedDecider struct{}

func (unattendedDecider) Decide(name string) (xfer.Policy, error) {
	return xfer.Undecided, &ErrNoDecider{name: name}
}

type ErrNoDecider struct {
	name string
}

func (e *ErrNoDecider) Error() string {
	return "'" + e.name + "' already exists and no decision maker is available"
}

// Config carries the options of one operation.
type Config struct {
	// Cut marks sources for removal once the paste or pipe-out of the
	// staged copy succeeds.
	Cut bool

	// SafeCopy disables the hardlink fast path.
	SafeCopy bool

	// Patterns restricts which entries participate; nil selects all.
	Patterns match.Set

	// Decider resolves collisions when no running policy applies.
	Decider xfer.Decider

	// Syncer is notified after the clipboard's contents change.
	Syncer Syncer

	Logger *zap.Logger
}

// Op is the explicit context of one operation: the clipboard it works
// on, the options governing it, and the accumulated outcomes. All
// orchestrators are methods on it; there is no ambient state.
type Op struct {
	clip     *store.Clipboard
	cut      bool
	hardlink bool
	patterns match.Set
	decider  xfer.Decider
	syncer   Syncer
	log      *zap.Logger
	pid      int

	Totals xfer.Totals
	Failed []xfer.FailedItem
}

func New(clip *store.Clipboard, cfg Config) *Op {
	op := Op{
		clip:     clip,
		cut:      cfg.Cut,
		hardlink: cfg.SafeCopy == false,
		patterns: cfg.Patterns,
		decider:  cfg.Decider,
		syncer:   cfg.Syncer,
		log:      cfg.Logger,
		pid:      os.Getpid(),
	}

	if op.patterns == nil {
		op.patterns, _ = match.NewRegexSet(nil)
	}
	if op.decider == nil {
		op.decider = unattendedDecider{}
	}
	if op.syncer == nil {
		op.syncer = nopSyncer{}
	}
	if op.log == nil {
		op.log = zap.NewNop()
	}

	return &op
}

func (op *Op) Clipboard() *store.Clipboard {
	return op.clip
}

// fail records one per-item failure; the enclosing loop continues.
func (op *Op) fail(name string, err error) {
	op.Failed = append(op.Failed, xfer.FailedItem{Name: name, Err: err})
	op.log.Warn("item failed",
		zap.String("clipboard", op.clip.Name()),
		zap.String("item", name),
		zap.Error(err))
}

// checkLock refuses to mutate a clipboard locked by another process.
// The engine never acquires or releases the lock itself.
func (op *Op) checkLock() error {
	pid, held := op.clip.LockedBy()
	if held && pid != op.pid {
		return &ErrLocked{name: op.clip.Name(), pid: pid}
	}
	return nil
}

// cleanup erases the cut sources recorded in the originals list and
// clears the clipboard's stored data. A silent no-op when nothing was
// cut; idempotent, and safe when some per-item transfers failed. The
// originals list itself survives if the operation accumulated failures.
func (op *Op) cleanup() {
	originals, err := op.clip.Originals()
	if err != nil {
		op.fail(op.clip.Name(), err)
		return
	}
	if len(originals) == 0 {
		return
	}

	for _, original := range originals {
		err := os.RemoveAll(original)
		if err != nil {
			op.fail(original, err)
			continue
		}
		op.log.Debug("removed cut source", zap.String("path", original))
	}

	err = op.clip.ClearData()
	if err != nil {
		op.fail(op.clip.Name(), err)
	}

	if len(op.Failed) == 0 {
		err = op.clip.ClearOriginals()
		if err != nil {
			op.fail(op.clip.Name(), err)
		}
	}
}

// noopTotals is the success credited when the destination already is
// the source, e.g. after a hardlinked round trip.
func noopTotals(src string) xfer.Totals {
	var totals xfer.Totals

	info, err := os.Stat(src)
	if err != nil {
		return totals
	}

	if info.IsDir() {
		totals.Directories = 1
	} else {
		totals.Files = 1
		totals.Bytes = info.Size()
	}

	return totals
}

// itemName is the stored name of a source path: its own filename, or
// its parent's name when the path ends in a separator.
func itemName(path string) string {
	return filepath.Base(filepath.Clean(path))
}
