package u

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// names of supported compression codecs
const (
	CodecNone   = "none"
	CodecZstd   = "zstd"
	CodecBrotli = "br"
)

func getErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// CodecExt returns file extension for a codec, "" for no compression
func CodecExt(codec string) string {
	switch codec {
	case CodecZstd:
		return ".zst"
	case CodecBrotli:
		return ".br"
	}
	return ""
}

// CompressData compresses d with a given codec
func CompressData(codec string, d []byte) ([]byte, error) {
	switch codec {
	case CodecNone, "":
		return d, nil
	case CodecZstd:
		return ZstdCompressData(d)
	case CodecBrotli:
		return BrCompressDataBest(d)
	}
	return nil, fmt.Errorf("unknown compression codec '%s'", codec)
}

// DecompressData reverses CompressData
func DecompressData(codec string, d []byte) ([]byte, error) {
	switch codec {
	case CodecNone, "":
		return d, nil
	case CodecZstd:
		return ZstdDecompressData(d)
	case CodecBrotli:
		return BrDecompressData(d)
	}
	return nil, fmt.Errorf("unknown compression codec '%s'", codec)
}

func BrCompressData(d []byte, level int) ([]byte, error) {
	var dst bytes.Buffer
	w := brotli.NewWriterLevel(&dst, level)
	_, err := w.Write(d)
	err2 := w.Close()
	if err = getErr(err, err2); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func BrCompressDataBest(d []byte) ([]byte, error) {
	return BrCompressData(d, brotli.BestCompression)
}

func BrDecompressData(d []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(d))
	return io.ReadAll(r)
}

func zstdNewWriter(dst io.Writer) (*zstd.Encoder, error) {
	// in my tests:
	// - zstd.SpeedBestCompression is much slower and not much better
	// - default concurrency is GONUMPROCS() but adding concurrency of any value
	//   doesn't consistently speed things up
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
}

func ZstdCompressData(d []byte) ([]byte, error) {
	var dst bytes.Buffer
	w, err := zstdNewWriter(&dst)
	if err != nil {
		return nil, err
	}
	_, err = w.Write(d)
	if err != nil {
		return nil, err
	}
	err = w.Close()
	if err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func ZstdDecompressData(d []byte) ([]byte, error) {
	r := bytes.NewReader(d)
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
