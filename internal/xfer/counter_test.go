package xfer_test

import (
	"bytes"
	"crypto/rand"

	"github.com/stretchr/testify/require"
	"testing"

	"github.com/studio1767/fsclip/internal/xfer"
)

func TestWriteCounterIsZeroWhenCreated(t *testing.T) {
	wc := xfer.NewWriteCounter(new(bytes.Buffer))

	require.Equal(t, 0, wc.TotalWrites())
	require.Equal(t, int64(0), wc.TotalBytes())
}

func TestOneWriteCountsOne(t *testing.T) {
	wc := xfer.NewWriteCounter(new(bytes.Buffer))

	var dsize int64 = 1024
	data := make([]byte, dsize)
	size, err := wc.Write(data)

	require.NoError(t, err)
	require.Equal(t, dsize, int64(size))
	require.Equal(t, 1, wc.TotalWrites())
	require.Equal(t, dsize, wc.TotalBytes())
}

func TestFiveWritesCountsFive(t *testing.T) {
	wc := xfer.NewWriteCounter(new(bytes.Buffer))

	var dsize int64 = 1024
	data := make([]byte, dsize)
	for i := 0; i < 5; i++ {
		size, err := wc.Write(data)
		require.NoError(t, err)
		require.Equal(t, dsize, int64(size))
	}

	require.Equal(t, 5, wc.TotalWrites())
	require.Equal(t, 5*dsize, wc.TotalBytes())
}

func TestWrittenDataMatches(t *testing.T) {
	wbuffer := bytes.NewBuffer(nil)
	wc := xfer.NewWriteCounter(wbuffer)

	var dsize int64 = 1024
	data := make([]byte, dsize)
	rndsize, err := rand.Read(data)

	require.NoError(t, err)
	require.Equal(t, dsize, int64(rndsize))

	size, err := wc.Write(data)

	require.NoError(t, err)
	require.Equal(t, dsize, int64(size))
	require.Equal(t, 1, wc.TotalWrites())
	require.Equal(t, dsize, wc.TotalBytes())
	require.Equal(t, dsize, int64(wbuffer.Len()))
	require.Zero(t, bytes.Compare(data, wbuffer.Bytes()))
}

func TestReadCounterIsZeroWhenCreated(t *testing.T) {
	rc := xfer.NewReadCounter(new(bytes.Buffer))

	require.Equal(t, 0, rc.TotalReads())
	require.Equal(t, int64(0), rc.TotalBytes())
}

func TestOneReadCountsOne(t *testing.T) {
	var dsize int64 = 1024

	srcData := make([]byte, dsize)
	rc := xfer.NewReadCounter(bytes.NewBuffer(srcData))

	dstData := make([]byte, dsize)
	size, err := rc.Read(dstData)

	require.NoError(t, err)
	require.Equal(t, dsize, int64(size))
	require.Equal(t, 1, rc.TotalReads())
	require.Equal(t, dsize, rc.TotalBytes())
}

func TestFiveReadsCountsFive(t *testing.T) {
	var dsize int64 = 1024

	srcData := make([]byte, dsize*5)
	rc := xfer.NewReadCounter(bytes.NewBuffer(srcData))

	dstData := make([]byte, dsize)

	for i := 0; i < 5; i++ {
		size, err := rc.Read(dstData)
		require.NoError(t, err)
		require.Equal(t, dsize, int64(size))
	}

	require.Equal(t, 5, rc.TotalReads())
	require.Equal(t, 5*dsize, rc.TotalBytes())
}

func TestReadDataMatches(t *testing.T) {
	var dsize int64 = 1024

	srcData := make([]byte, dsize)
	rndsize, err := rand.Read(srcData)

	require.NoError(t, err)
	require.Equal(t, dsize, int64(rndsize))

	rc := xfer.NewReadCounter(bytes.NewBuffer(srcData))

	dstData := make([]byte, dsize)
	size, err := rc.Read(dstData)

	require.NoError(t, err)
	require.Equal(t, dsize, int64(size))
	require.Equal(t, 1, rc.TotalReads())
	require.Equal(t, dsize, rc.TotalBytes())
	require.Zero(t, bytes.Compare(srcData, dstData))
}
