// Package backup copies a table file and its structural index to
// remote storage and back.
//
// Files are compressed with zstd or brotli before upload. A backup of
// data.txt under prefix "daily" with zstd is stored as
// "daily/data.txt.zst" and "daily/data.txt.pos.zst".
package backup

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kjk/tabdb/atomicfile"
	"github.com/kjk/tabdb/u"
)

// IndexPath returns path of the structural index of a table file
func IndexPath(primaryPath string) string {
	return primaryPath + ".pos"
}

func validateCodec(codec string) error {
	switch codec {
	case "", u.CodecNone, u.CodecZstd, u.CodecBrotli:
		return nil
	}
	return fmt.Errorf("backup: unknown codec '%s', must be one of: %s, %s, %s", codec, u.CodecNone, u.CodecZstd, u.CodecBrotli)
}

// RemoteKeys returns remote names of the table file and its index
func RemoteKeys(prefix string, primaryPath string, codec string) (string, string) {
	name := filepath.Base(primaryPath)
	prefix = strings.Trim(prefix, "/")
	ext := u.CodecExt(codec)
	primary := path.Join(prefix, name) + ext
	index := path.Join(prefix, IndexPath(name)) + ext
	return primary, index
}

// localFiles returns paths of files that make a store, all must exist
func localFiles(primaryPath string) ([]string, error) {
	res := []string{primaryPath, IndexPath(primaryPath)}
	for _, path := range res {
		if !u.FileExists(path) {
			return nil, fmt.Errorf("backup: '%s' doesn't exist: %w", path, os.ErrNotExist)
		}
	}
	return res, nil
}

// readCompressed reads the file at path and compresses it with codec
func readCompressed(path string, codec string) ([]byte, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return u.CompressData(codec, d)
}

// writeDecompressed decompresses content of r and atomically
// writes it to dstPath
func writeDecompressed(dstPath string, codec string, r io.Reader) error {
	d, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	d, err = u.DecompressData(codec, d)
	if err != nil {
		return fmt.Errorf("backup: failed to decompress '%s': %w", dstPath, err)
	}
	if err = os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return err
	}
	_, err = atomicfile.CopyFrom(dstPath, bytes.NewReader(d))
	return err
}
