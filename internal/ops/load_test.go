package ops_test

import (
	"os"
	"path/filepath"

	"github.com/stretchr/testify/require"
	"testing"

	"github.com/studio1767/fsclip/internal/ops"
)

func TestLoadIntoSelfIsRejectedBeforeAnyMutation(t *testing.T) {
	st := newStore(t)
	work := st.Open("work")

	op := ops.New(work, ops.Config{})
	require.NoError(t, op.CopyText("precious"))

	other := st.Open("other")
	_, err := other.WriteRaw([]byte("also precious"))
	require.NoError(t, err)

	load := ops.New(work, ops.Config{})
	err = load.Load(st, []string{"other", "work"})
	require.Error(t, err)

	var self *ops.ErrSelfLoad
	require.ErrorAs(t, err, &self)

	// nothing was touched, including the valid destination
	data, err := other.ReadRaw()
	require.NoError(t, err)
	require.Equal(t, "also precious", string(data))
}

func TestLoadFromEmptyClipboardIsRejected(t *testing.T) {
	st := newStore(t)
	source := st.Open("source")

	load := ops.New(source, ops.Config{})
	err := load.Load(st, []string{"dest"})
	require.Error(t, err)

	var empty *ops.ErrEmptySource
	require.ErrorAs(t, err, &empty)
}

func TestLoadReplacesDestinationContents(t *testing.T) {
	st := newStore(t)
	source := st.Open("source")

	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "a.txt"), "loaded content")

	op := ops.New(source, ops.Config{})
	require.NoError(t, op.CopyIn([]string{filepath.Join(srcDir, "a.txt")}))

	// the destination holds something else entirely
	dest := st.Open("dest")
	_, err := dest.WriteRaw([]byte("old text"))
	require.NoError(t, err)

	load := ops.New(source, ops.Config{})
	require.NoError(t, load.Load(st, []string{"dest"}))
	require.Empty(t, load.Failed)
	require.Equal(t, 1, load.Totals.Directories)

	require.False(t, dest.IsText())
	names, err := dest.EntryNames()
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt"}, names)

	content, err := os.ReadFile(filepath.Join(dest.DataDir(), "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "loaded content", string(content))

	// the source keeps its contents
	require.False(t, source.IsEmpty())
}

func TestLoadIntoMultipleDestinations(t *testing.T) {
	st := newStore(t)
	source := st.Open("source")

	op := ops.New(source, ops.Config{})
	require.NoError(t, op.CopyText("fan out"))

	load := ops.New(source, ops.Config{})
	require.NoError(t, load.Load(st, []string{"one", "two", "_three"}))
	require.Empty(t, load.Failed)

	for _, name := range []string{"one", "two", "_three"} {
		cb := st.Open(name)
		require.True(t, cb.IsText(), name)
		data, err := cb.ReadRaw()
		require.NoError(t, err)
		require.Equal(t, "fan out", string(data))
	}
}

func TestLoadDefaultsToTheDefaultClipboard(t *testing.T) {
	st := newStore(t)
	source := st.Open("source")

	op := ops.New(source, ops.Config{})
	require.NoError(t, op.CopyText("to default"))

	load := ops.New(source, ops.Config{})
	require.NoError(t, load.Load(st, nil))

	data, err := st.Open("0").ReadRaw()
	require.NoError(t, err)
	require.Equal(t, "to default", string(data))
}

func TestLoadSkipsLockedDestination(t *testing.T) {
	st := newStore(t)
	source := st.Open("source")

	op := ops.New(source, ops.Config{})
	require.NoError(t, op.CopyText("spread"))

	locked := st.Open("locked")
	require.NoError(t, locked.Lock(os.Getpid()+1))

	load := ops.New(source, ops.Config{})
	require.NoError(t, load.Load(st, []string{"locked", "open"}))

	// the locked destination failed, the other one loaded
	require.Len(t, load.Failed, 1)
	require.Equal(t, "locked", load.Failed[0].Name)
	require.True(t, locked.IsEmpty())

	data, err := st.Open("open").ReadRaw()
	require.NoError(t, err)
	require.Equal(t, "spread", string(data))
}
