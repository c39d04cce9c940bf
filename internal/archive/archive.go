package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"github.com/klauspost/compress/gzip"

	"github.com/studio1767/fsclip/internal/store"
	"github.com/studio1767/fsclip/internal/xfer"
)

const lockEntry = "metadata/lock"

type ErrBadBundle struct {
	msg string
}

func (e *ErrBadBundle) Error() string {
	return e.msg
}

// Export writes the clipboard's data and metadata as a gzipped tar
// stream, passphrase-encrypted when a passphrase is given. The lock
// marker is never exported. Returns the bytes written to the sink
// after compression and encryption.
func Export(cb *store.Clipboard, sink io.Writer, passphrase string) (int64, error) {

	if _, err := os.Stat(cb.Root()); err != nil {
		return 0, err
	}

	// count what actually lands in the sink
	counter := xfer.NewWriteCounter(sink)

	var out io.Writer = counter
	var encrypter io.WriteCloser

	if passphrase != "" {
		recipient, err := age.NewScryptRecipient(passphrase)
		if err != nil {
			return 0, err
		}
		encrypter, err = age.Encrypt(counter, recipient)
		if err != nil {
			return 0, err
		}
		out = encrypter
	}

	gzwriter := gzip.NewWriter(out)
	twriter := tar.NewWriter(gzwriter)

	err := addTree(twriter, cb.Root())

	// close in stream order so trailers are flushed
	if cerr := twriter.Close(); err == nil {
		err = cerr
	}
	if cerr := gzwriter.Close(); err == nil {
		err = cerr
	}
	if encrypter != nil {
		if cerr := encrypter.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return 0, err
	}

	return counter.TotalBytes(), nil
}

func addTree(twriter *tar.Writer, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		name := filepath.ToSlash(rel)
		if name == lockEntry {
			return nil
		}

		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			link, err = os.Readlink(path)
			if err != nil {
				return err
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = name
		if info.IsDir() {
			header.Name += "/"
		}

		err = twriter.WriteHeader(header)
		if err != nil {
			return err
		}

		if info.Mode().IsRegular() == false {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(twriter, file)
		return err
	})
}

// Import restores a bundle into the clipboard, replacing its contents
// entirely. The passphrase must match how the bundle was exported.
// Returns the bytes read from the source.
func Import(cb *store.Clipboard, source io.Reader, passphrase string) (int64, error) {

	counter := xfer.NewReadCounter(source)

	var in io.Reader = counter

	if passphrase != "" {
		identity, err := age.NewScryptIdentity(passphrase)
		if err != nil {
			return 0, err
		}
		in, err = age.Decrypt(in, identity)
		if err != nil {
			return 0, err
		}
	}

	gzreader, err := gzip.NewReader(in)
	if err != nil {
		return 0, err
	}
	defer gzreader.Close()

	treader := tar.NewReader(gzreader)

	// the bundle replaces the clipboard wholesale
	err = cb.Delete()
	if err != nil {
		return 0, err
	}
	err = cb.EnsureDirs()
	if err != nil {
		return 0, err
	}

	for {
		header, err := treader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}

		name := filepath.ToSlash(filepath.Clean(header.Name))
		if name == "." || name == lockEntry {
			continue
		}
		if filepath.IsAbs(name) || strings.HasPrefix(name, "..") {
			return 0, &ErrBadBundle{
				msg: fmt.Sprintf("bundle entry escapes the clipboard: %s", header.Name),
			}
		}

		target := filepath.Join(cb.Root(), filepath.FromSlash(name))

		switch header.Typeflag {
		case tar.TypeDir:
			err = os.MkdirAll(target, os.FileMode(header.Mode).Perm())
		case tar.TypeSymlink:
			err = os.Symlink(header.Linkname, target)
		case tar.TypeReg:
			err = extractFile(treader, target, os.FileMode(header.Mode).Perm())
		default:
			continue
		}
		if err != nil {
			return 0, err
		}
	}

	return counter.TotalBytes(), nil
}

func extractFile(treader *tar.Reader, target string, perm os.FileMode) error {
	err := os.MkdirAll(filepath.Dir(target), 0700)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	_, err = io.Copy(file, treader)
	if err != nil {
		file.Close()
		os.Remove(target)
		return err
	}

	return file.Close()
}
