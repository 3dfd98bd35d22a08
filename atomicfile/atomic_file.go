package atomicfile

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Some references:
// - https://www.slideshare.net/nan1nan1/eat-my-data
// - https://lwn.net/Articles/457667/

var (
	// ErrCancelled is returned by calls subsequent to Cancel()
	ErrCancelled = errors.New("cancelled")

	_ io.WriteCloser = &File{}
)

// File is a buffered writer whose content replaces destination on Close
type File struct {
	dstPath string
	dir     string
	tmpFile *os.File
	w       *bufio.Writer
	err     error
}

// New creates a temporary file next to path
func New(path string) (*File, error) {
	dir, fName := filepath.Split(path)
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if fName == "" {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	tmpFile, err := os.CreateTemp(dir, fName+".tmp-")
	if err != nil {
		return nil, err
	}
	return &File{
		dstPath: path,
		dir:     dir,
		tmpFile: tmpFile,
		w:       bufio.NewWriter(tmpFile),
	}, nil
}

func (f *File) Write(d []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.w.Write(d)
	if err != nil {
		f.err = err
	}
	return n, err
}

// Cancel removes the temporary file. No-op after Close
func (f *File) Cancel() {
	if f == nil || f.tmpFile == nil {
		return
	}
	f.err = ErrCancelled
	_ = f.Close()
}

// Close commits the file. Can be called multiple times
func (f *File) Close() error {
	if f.tmpFile == nil {
		// return the first error we encountered
		return f.err
	}
	tmpFile := f.tmpFile
	f.tmpFile = nil
	tmpPath := tmpFile.Name()

	errFlush := f.w.Flush()
	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	errSync := tmpFile.Sync()
	errClose := tmpFile.Close()

	didRename := false
	defer func() {
		if !didRename {
			_ = os.Remove(tmpPath)
		}
	}()

	if f.err != nil {
		return f.err
	}
	err := errors.Join(errFlush, errSync, errClose)
	if err == nil {
		err = os.Rename(tmpPath, f.dstPath)
		didRename = err == nil
		// sync directory after rename, it's a nice to have
		if fdir, _ := os.Open(f.dir); fdir != nil {
			_ = fdir.Sync()
			_ = fdir.Close()
		}
	}
	f.err = err
	return err
}

// WriteFile replaces path with content written by fn.
// If fn returns an error, path is not modified.
func WriteFile(path string, fn func(w io.Writer) error) error {
	f, err := New(path)
	if err != nil {
		return err
	}
	defer f.Cancel()
	if err = fn(f); err != nil {
		return err
	}
	return f.Close()
}

// CopyFrom replaces path with content of r
func CopyFrom(path string, r io.Reader) (int64, error) {
	var n int64
	err := WriteFile(path, func(w io.Writer) error {
		var err error
		n, err = io.Copy(w, r)
		return err
	})
	return n, err
}
