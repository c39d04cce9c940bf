package ops_test

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/stretchr/testify/require"
	"testing"

	"github.com/studio1767/fsclip/internal/match"
	"github.com/studio1767/fsclip/internal/ops"
	"github.com/studio1767/fsclip/internal/store"
	"github.com/studio1767/fsclip/internal/xfer"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	base := t.TempDir()
	return store.New(filepath.Join(base, "tmp"), filepath.Join(base, "persist"))
}

func newClip(t *testing.T) *store.Clipboard {
	t.Helper()
	return newStore(t).Open("0")
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func patterns(t *testing.T, raw ...string) match.Set {
	t.Helper()
	set, err := match.NewRegexSet(raw)
	require.NoError(t, err)
	return set
}

// scriptedDecider answers collisions in order and counts consultations.
type scriptedDecider struct {
	answers []xfer.Policy
	asked   int
}

func (d *scriptedDecider) Decide(name string) (xfer.Policy, error) {
	if d.asked >= len(d.answers) {
		return xfer.Undecided, errors.New("decider consulted more often than scripted")
	}
	answer := d.answers[d.asked]
	d.asked += 1
	return answer, nil
}

// countingSyncer records change notifications.
type countingSyncer struct {
	changed int
}

func (s *countingSyncer) ContentsChanged(cb *store.Clipboard) {
	s.changed += 1
}

func TestCopyThenPasteRoundTrip(t *testing.T) {
	clip := newClip(t)
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeFile(t, src, "ten bytes.")

	op := ops.New(clip, ops.Config{})
	require.NoError(t, op.CopyIn([]string{src}))
	require.Empty(t, op.Failed)
	require.Equal(t, 1, op.Totals.Files)
	require.Equal(t, int64(10), op.Totals.Bytes)

	dst := t.TempDir()
	paste := ops.New(clip, ops.Config{})
	require.NoError(t, paste.Paste(dst))
	require.Empty(t, paste.Failed)
	require.Equal(t, 1, paste.Totals.Files)
	require.Equal(t, int64(10), paste.Totals.Bytes)

	content, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "ten bytes.", string(content))

	// a copy leaves the source and the clipboard alone
	_, err = os.Stat(src)
	require.NoError(t, err)
	require.False(t, clip.IsEmpty())
}

func TestCutRecordsOriginalsAndCleansUpAfterPaste(t *testing.T) {
	clip := newClip(t)
	srcDir := t.TempDir()
	proj := filepath.Join(srcDir, "proj")
	require.NoError(t, os.Mkdir(proj, 0755))
	writeFile(t, filepath.Join(proj, "one.txt"), "first")
	writeFile(t, filepath.Join(proj, "two.txt"), "second")

	op := ops.New(clip, ops.Config{Cut: true})
	require.NoError(t, op.CopyIn([]string{proj}))
	require.Empty(t, op.Failed)
	require.Equal(t, 1, op.Totals.Directories)

	// the source is recorded but still on disk before the paste
	originals, err := clip.Originals()
	require.NoError(t, err)
	require.Equal(t, []string{proj}, originals)
	_, err = os.Stat(proj)
	require.NoError(t, err)

	dst := t.TempDir()
	paste := ops.New(clip, ops.Config{Cut: true})
	require.NoError(t, paste.Paste(dst))
	require.Empty(t, paste.Failed)

	content, err := os.ReadFile(filepath.Join(dst, "proj", "one.txt"))
	require.NoError(t, err)
	require.Equal(t, "first", string(content))
	content, err = os.ReadFile(filepath.Join(dst, "proj", "two.txt"))
	require.NoError(t, err)
	require.Equal(t, "second", string(content))

	// cleanup removed the source and emptied the clipboard
	_, err = os.Stat(proj)
	require.True(t, os.IsNotExist(err))
	require.True(t, clip.IsEmpty())

	originals, err = clip.Originals()
	require.NoError(t, err)
	require.Empty(t, originals)
}

func TestPasteOntoSameFileIsANoOpSuccess(t *testing.T) {
	clip := newClip(t)
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeFile(t, src, "ten bytes.")

	op := ops.New(clip, ops.Config{})
	require.NoError(t, op.CopyIn([]string{src}))

	// pasting back beside the hardlinked source never errors and never
	// consults the decider
	decider := scriptedDecider{}
	paste := ops.New(clip, ops.Config{Decider: &decider})
	require.NoError(t, paste.Paste(srcDir))

	require.Empty(t, paste.Failed)
	require.Equal(t, 0, decider.asked)
	require.Equal(t, 1, paste.Totals.Files)
	require.Equal(t, int64(10), paste.Totals.Bytes)
}

func TestSkipAllPromptsOnlyOnce(t *testing.T) {
	clip := newClip(t)
	srcDir := t.TempDir()
	var names []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		writeFile(t, filepath.Join(srcDir, name), "staged "+name)
		names = append(names, filepath.Join(srcDir, name))
	}

	op := ops.New(clip, ops.Config{SafeCopy: true})
	require.NoError(t, op.CopyIn(names))

	// destination already has different versions of all three
	dst := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		writeFile(t, filepath.Join(dst, name), "existing")
	}

	decider := scriptedDecider{answers: []xfer.Policy{xfer.SkipAll}}
	paste := ops.New(clip, ops.Config{Decider: &decider})
	require.NoError(t, paste.Paste(dst))

	require.Equal(t, 1, decider.asked)
	require.True(t, paste.Totals.Empty())

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		content, err := os.ReadFile(filepath.Join(dst, name))
		require.NoError(t, err)
		require.Equal(t, "existing", string(content))
	}
}

func TestReplaceOnceReplacesOneThenPromptsAgain(t *testing.T) {
	clip := newClip(t)
	srcDir := t.TempDir()
	var names []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		writeFile(t, filepath.Join(srcDir, name), "staged")
		names = append(names, filepath.Join(srcDir, name))
	}

	op := ops.New(clip, ops.Config{SafeCopy: true})
	require.NoError(t, op.CopyIn(names))

	dst := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		writeFile(t, filepath.Join(dst, name), "existing")
	}

	decider := scriptedDecider{answers: []xfer.Policy{xfer.ReplaceOnce, xfer.SkipOnce, xfer.SkipOnce}}
	paste := ops.New(clip, ops.Config{Decider: &decider})
	require.NoError(t, paste.Paste(dst))

	// every collision after the consumed replace prompts afresh
	require.Equal(t, 3, decider.asked)
	require.Equal(t, 1, paste.Totals.Files)

	replaced := 0
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		content, err := os.ReadFile(filepath.Join(dst, name))
		require.NoError(t, err)
		if string(content) == "staged" {
			replaced += 1
		}
	}
	require.Equal(t, 1, replaced)
}

func TestReplaceAllReplacesEverythingSilently(t *testing.T) {
	clip := newClip(t)
	srcDir := t.TempDir()
	var names []string
	for _, name := range []string{"a.txt", "b.txt"} {
		writeFile(t, filepath.Join(srcDir, name), "staged")
		names = append(names, filepath.Join(srcDir, name))
	}

	op := ops.New(clip, ops.Config{SafeCopy: true})
	require.NoError(t, op.CopyIn(names))

	dst := t.TempDir()
	writeFile(t, filepath.Join(dst, "a.txt"), "existing")
	writeFile(t, filepath.Join(dst, "b.txt"), "existing")

	decider := scriptedDecider{answers: []xfer.Policy{xfer.ReplaceAll}}
	paste := ops.New(clip, ops.Config{Decider: &decider})
	require.NoError(t, paste.Paste(dst))

	require.Equal(t, 1, decider.asked)
	require.Equal(t, 2, paste.Totals.Files)

	for _, name := range []string{"a.txt", "b.txt"} {
		content, err := os.ReadFile(filepath.Join(dst, name))
		require.NoError(t, err)
		require.Equal(t, "staged", string(content))
	}
}

func TestPasteWithUnmatchedPatternsFails(t *testing.T) {
	clip := newClip(t)
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeFile(t, src, "staged")

	op := ops.New(clip, ops.Config{})
	require.NoError(t, op.CopyIn([]string{src}))

	dst := t.TempDir()
	paste := ops.New(clip, ops.Config{Patterns: patterns(t, `.*\.png`)})
	err := paste.Paste(dst)
	require.Error(t, err)

	var nomatch *ops.ErrNoMatch
	require.ErrorAs(t, err, &nomatch)

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestPasteSelectsBySubsetPattern(t *testing.T) {
	clip := newClip(t)
	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "keep.txt"), "keep")
	writeFile(t, filepath.Join(srcDir, "drop.log"), "drop")

	op := ops.New(clip, ops.Config{})
	require.NoError(t, op.CopyIn([]string{
		filepath.Join(srcDir, "keep.txt"),
		filepath.Join(srcDir, "drop.log"),
	}))

	dst := t.TempDir()
	paste := ops.New(clip, ops.Config{Patterns: patterns(t, `.*\.txt`)})
	require.NoError(t, paste.Paste(dst))

	_, err := os.Stat(filepath.Join(dst, "keep.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dst, "drop.log"))
	require.True(t, os.IsNotExist(err))
}

func TestPasteFromEmptyClipboardFails(t *testing.T) {
	clip := newClip(t)

	paste := ops.New(clip, ops.Config{})
	err := paste.Paste(t.TempDir())
	require.Error(t, err)

	var empty *ops.ErrEmptySource
	require.ErrorAs(t, err, &empty)
}

func TestPasteFailureIsAccumulatedNotFatal(t *testing.T) {
	clip := newClip(t)
	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "a.txt"), "first")
	writeFile(t, filepath.Join(srcDir, "b.txt"), "second")

	op := ops.New(clip, ops.Config{})
	require.NoError(t, op.CopyIn([]string{
		filepath.Join(srcDir, "a.txt"),
		filepath.Join(srcDir, "b.txt"),
	}))

	// a destination that is a file, not a directory, fails every item
	// but aborts nothing
	dst := filepath.Join(t.TempDir(), "notadir")
	writeFile(t, dst, "in the way")

	paste := ops.New(clip, ops.Config{})
	require.NoError(t, paste.Paste(dst))
	require.Len(t, paste.Failed, 2)
	require.True(t, paste.Totals.Empty())
}

func TestMutationRefusedWhenLockedByAnotherProcess(t *testing.T) {
	clip := newClip(t)
	require.NoError(t, clip.Lock(os.Getpid()+1))

	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeFile(t, src, "staged")

	op := ops.New(clip, ops.Config{})
	err := op.CopyIn([]string{src})
	require.Error(t, err)

	var locked *ops.ErrLocked
	require.ErrorAs(t, err, &locked)
	require.True(t, clip.IsEmpty())
}

func TestOwnLockDoesNotBlock(t *testing.T) {
	clip := newClip(t)
	require.NoError(t, clip.Lock(os.Getpid()))

	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeFile(t, src, "staged")

	op := ops.New(clip, ops.Config{})
	require.NoError(t, op.CopyIn([]string{src}))
	require.False(t, clip.IsEmpty())
}

func TestSyncerIsNotifiedOnContentChanges(t *testing.T) {
	clip := newClip(t)
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeFile(t, src, "staged")

	syncer := countingSyncer{}
	op := ops.New(clip, ops.Config{Syncer: &syncer})
	require.NoError(t, op.CopyIn([]string{src}))
	require.Equal(t, 1, syncer.changed)
}
