package xfer

// Totals accumulates the successful outcomes of one operation. The
// engine populates it; rendering is the caller's concern.
type Totals struct {
	Files       int
	Directories int
	Bytes       int64
}

func (t *Totals) Add(other Totals) {
	t.Files += other.Files
	t.Directories += other.Directories
	t.Bytes += other.Bytes
}

func (t *Totals) Empty() bool {
	return t.Files == 0 && t.Directories == 0 && t.Bytes == 0
}

// FailedItem records one entry whose transfer failed. Failures are
// accumulated and reported at the end; they never abort the operation.
type FailedItem struct {
	Name string
	Err  error
}
